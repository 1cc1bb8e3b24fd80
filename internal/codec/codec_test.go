// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package codec

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/parley-tui/internal/protocol"
	"github.com/jeranaias/parley-tui/internal/registry"
)

var fixedNow = time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)

func newTestCodec() *Codec {
	return New(registry.Default(nil),
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(func() string { return "id-1" }),
	)
}

// =============================================================================
// DECODE TESTS
// =============================================================================

func TestDecode_DetailBecomesError(t *testing.T) {
	c := newTestCodec()

	env, err := c.Decode([]byte(`{"detail":"channel not found"}`))
	require.NoError(t, err)
	assert.Equal(t, protocol.TypeError, env.Type)
	assert.Equal(t, fixedNow, env.Timestamp)
	assert.Equal(t, protocol.Error{Detail: "channel not found"}, env.Payload)
}

func TestDecode_StructuredDetail(t *testing.T) {
	c := newTestCodec()

	env, err := c.Decode([]byte(`{"detail":[{"msg":"field required"}]}`))
	require.NoError(t, err)
	assert.Equal(t, protocol.Error{Detail: `[{"msg":"field required"}]`}, env.Payload)
}

func TestDecode_Failures(t *testing.T) {
	c := newTestCodec()

	tests := []struct {
		name  string
		frame string
		kind  protocol.DecodeErrorKind
	}{
		{"not json", `{"type":`, protocol.KindUnparsable},
		{"json array", `[1,2]`, protocol.KindUnparsable},
		{"empty object", `{}`, protocol.KindMissingType},
		{"null", `null`, protocol.KindMissingType},
		{"unknown type", `{"type":"chat_broadcast","payload":{}}`, protocol.KindUnknownType},
		{"bad payload", `{"type":"chat_send","payload":{"channel_id":"x"}}`, protocol.KindInvalidPayload},
		{"non-string type", `{"type":7}`, protocol.KindUnparsable},
		{"null detail", `{"detail":null}`, protocol.KindMissingType},
		{"empty detail", `{"detail":""}`, protocol.KindMissingType},
		{"blank detail", `{"detail":"  "}`, protocol.KindMissingType},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			env, err := c.Decode([]byte(tc.frame))
			assert.Nil(t, env)
			require.Error(t, err)
			assert.True(t, protocol.IsDecodeKind(err, tc.kind), "got %v", err)
		})
	}
}

func TestDecode_Unregistered(t *testing.T) {
	c := New(registry.New(nil))
	_, err := c.Decode([]byte(`{"type":"hello","payload":{}}`))
	assert.True(t, protocol.IsDecodeKind(err, protocol.KindUnregistered), "got %v", err)
}

func TestDecode_ChatSend(t *testing.T) {
	c := newTestCodec()

	frame := `{
		"type": "chat_send",
		"timestamp": "2025-05-04T10:11:12.123456Z",
		"id": "5f0c",
		"payload": {"channel_id": 2, "sender": {"username": "alice"}, "content": "hi"}
	}`
	env, err := c.Decode([]byte(frame))
	require.NoError(t, err)

	assert.Equal(t, protocol.TypeChatSend, env.Type)
	assert.Equal(t, "5f0c", env.ID)
	assert.Equal(t, time.Date(2025, 5, 4, 10, 11, 12, 123456000, time.UTC), env.Timestamp)

	msg := env.Payload.(protocol.ChatSend)
	assert.Equal(t, 2, msg.ChannelID)
	assert.Equal(t, "alice", msg.Sender.Name())
	assert.Equal(t, "hi", msg.Content)
}

func TestDecode_Timestamps(t *testing.T) {
	c := newTestCodec()

	tests := []struct {
		name string
		ts   string
		want time.Time
	}{
		{"rfc3339", `"2025-01-02T03:04:05Z"`, time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)},
		{"naive", `"2025-01-02T03:04:05.5"`, time.Date(2025, 1, 2, 3, 4, 5, 500000000, time.UTC)},
		{"space separated", `"2025-01-02 03:04:05"`, time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)},
		{"garbage", `"yesterday"`, fixedNow},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			frame := `{"type":"error","timestamp":` + tc.ts + `,"payload":{"detail":"x"}}`
			env, err := c.Decode([]byte(frame))
			require.NoError(t, err)
			assert.True(t, tc.want.Equal(env.Timestamp), "got %v want %v", env.Timestamp, tc.want)
		})
	}

	env, err := c.Decode([]byte(`{"type":"error","payload":{"detail":"x"}}`))
	require.NoError(t, err)
	assert.Equal(t, fixedNow, env.Timestamp, "missing timestamp uses local clock")
}

func TestDecode_NumericID(t *testing.T) {
	c := newTestCodec()
	env, err := c.Decode([]byte(`{"type":"error","id":42,"payload":{"detail":"x"}}`))
	require.NoError(t, err)
	assert.Equal(t, "42", env.ID)
}

// =============================================================================
// ENCODE TESTS
// =============================================================================

func TestEncode_StampsEnvelope(t *testing.T) {
	c := newTestCodec()

	data, env, err := c.Encode(protocol.ChatSend{ChannelID: 1, Content: "hello"})
	require.NoError(t, err)
	assert.Equal(t, protocol.TypeChatSend, env.Type)
	assert.Equal(t, "id-1", env.ID)
	assert.Equal(t, fixedNow, env.Timestamp)

	var wire map[string]any
	require.NoError(t, json.Unmarshal(data, &wire))
	assert.Equal(t, "chat_send", wire["type"])
	assert.Equal(t, "id-1", wire["id"])
	assert.Equal(t, "2025-06-01T09:30:00Z", wire["timestamp"])
	assert.Equal(t, map[string]any{"channel_id": float64(1), "content": "hello"}, wire["payload"])
}

func TestEncode_DefaultIDsAreUnique(t *testing.T) {
	c := New(registry.Default(nil))
	_, a, err := c.Encode(protocol.Hello{})
	require.NoError(t, err)
	_, b, err := c.Encode(protocol.Hello{})
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Len(t, a.ID, 36)
}

func TestEncode_NilPayload(t *testing.T) {
	_, _, err := newTestCodec().Encode(nil)
	assert.Error(t, err)
}

func TestRoundTrip_Moderation(t *testing.T) {
	c := newTestCodec()
	d := 60

	data, _, err := c.Encode(protocol.ChatMute{Moderation: protocol.Moderation{
		ChannelID: 5, Target: "bob", Duration: &d, Reason: "flood",
	}})
	require.NoError(t, err)

	env, err := c.Decode(data)
	require.NoError(t, err)
	mute := env.Payload.(protocol.ChatMute)
	require.NotNil(t, mute.Duration)
	assert.Equal(t, 60, *mute.Duration)
	assert.Equal(t, "bob", mute.Target)
	assert.Equal(t, "id-1", env.ID)
}
