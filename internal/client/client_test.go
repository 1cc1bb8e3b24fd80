// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package client

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jeranaias/parley-tui/internal/commands"
	"github.com/jeranaias/parley-tui/internal/config"
	"github.com/jeranaias/parley-tui/internal/protocol"
	"github.com/jeranaias/parley-tui/internal/registry"
	"github.com/jeranaias/parley-tui/internal/transport"
)

// =============================================================================
// FAKES
// =============================================================================

type fakeConn struct {
	inbound chan []byte
	done    chan struct{}

	mu      sync.Mutex
	written [][]byte
	closed  bool
}

func newFakeConn() *fakeConn {
	return &fakeConn{inbound: make(chan []byte, 16), done: make(chan struct{})}
}

func (c *fakeConn) ReadMessage() ([]byte, error) {
	select {
	case data := <-c.inbound:
		return data, nil
	case <-c.done:
		return nil, errors.New("connection closed")
	}
}

func (c *fakeConn) WriteMessage(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errors.New("write on closed connection")
	}
	c.written = append(c.written, append([]byte(nil), data...))
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.done)
	}
	return nil
}

// frames returns the decoded frames written so far.
func (c *fakeConn) frames(t *testing.T) []map[string]any {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]map[string]any, 0, len(c.written))
	for _, raw := range c.written {
		var m map[string]any
		require.NoError(t, json.Unmarshal(raw, &m))
		out = append(out, m)
	}
	return out
}

func (c *fakeConn) types(t *testing.T) []string {
	var out []string
	for _, f := range c.frames(t) {
		out = append(out, f["type"].(string))
	}
	return out
}

func (c *fakeConn) push(t *testing.T, typ, id string, payload map[string]any) {
	t.Helper()
	data, err := json.Marshal(map[string]any{
		"type":      typ,
		"id":        id,
		"timestamp": "2025-06-01T09:30:00Z",
		"payload":   payload,
	})
	require.NoError(t, err)
	c.inbound <- data
}

type fakeDialer struct {
	mu    sync.Mutex
	conns []*fakeConn
}

func (d *fakeDialer) Dial(ctx context.Context, url string) (transport.Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	c := newFakeConn()
	d.conns = append(d.conns, c)
	return c, nil
}

func (d *fakeDialer) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.conns)
}

func (d *fakeDialer) last() *fakeConn {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.conns[len(d.conns)-1]
}

// =============================================================================
// HELPERS
// =============================================================================

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Auth.TokenFile = filepath.Join(dir, "token")
	cfg.Auth.IdentityFile = filepath.Join(dir, "identity.json")
	cfg.Reconnect.InitialDelayMs = 10
	cfg.Reconnect.MaxDelayMs = 50
	cfg.Reconnect.ExplicitDelayMs = 10
	cfg.UI.DefaultChannel = 1
	return cfg
}

// startReady starts a client and completes the handshake as alice.
func startReady(t *testing.T, cfg *config.Config) (*Client, *fakeDialer) {
	t.Helper()
	dialer := &fakeDialer{}
	c, err := New(Options{Config: cfg, Dialer: dialer})
	require.NoError(t, err)
	t.Cleanup(c.Close)

	require.NoError(t, c.Start(context.Background()))
	require.Eventually(t, func() bool { return dialer.count() == 1 }, time.Second, 5*time.Millisecond)

	dialer.last().push(t, "hello", "", map[string]any{
		"user": map[string]any{"username": "alice", "is_guest": false},
	})
	require.Eventually(t, func() bool { return c.Status().Ready }, time.Second, 5*time.Millisecond)
	// The default channel is joined once the handshake completes.
	require.Eventually(t, c.Ready, time.Second, 5*time.Millisecond)
	return c, dialer
}

// =============================================================================
// TESTS
// =============================================================================

func TestNew_RequiresConfig(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
}

func TestNew_RegistersPresentersAndSeals(t *testing.T) {
	present := func(env *protocol.Envelope) string { return "x" }
	c, err := New(Options{
		Config:     testConfig(t),
		Dialer:     &fakeDialer{},
		Presenters: map[protocol.Type]registry.PresentFunc{protocol.TypeChatSend: present},
	})
	require.NoError(t, err)
	defer c.Close()

	assert.True(t, c.Registry().Sealed())
	_, ok := c.Registry().Presenter(protocol.TypeChatSend)
	assert.True(t, ok)
}

func TestStart_HandshakeBindsIdentityAndJoinsDefaultChannel(t *testing.T) {
	c, dialer := startReady(t, testConfig(t))

	assert.Equal(t, "alice", c.Identity().Username())
	assert.Equal(t, []string{"hello", "channel_join"}, dialer.last().types(t))
	require.Eventually(t, func() bool { return c.Session().Joined(1) }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "alice", c.View().Identity.Username)
}

func TestInbound_ChatAppearsInView(t *testing.T) {
	c, dialer := startReady(t, testConfig(t))

	dialer.last().push(t, "chat_send", "m1", map[string]any{
		"channel_id": 1,
		"sender":     map[string]any{"username": "bob"},
		"content":    "hi alice",
	})
	// Duplicate delivery is folded.
	dialer.last().push(t, "chat_send", "m1", map[string]any{
		"channel_id": 1,
		"sender":     map[string]any{"username": "bob"},
		"content":    "hi alice",
	})

	require.Eventually(t, func() bool { return len(c.View().Messages) == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	v := c.View()
	require.Len(t, v.Messages, 1)
	assert.Equal(t, "hi alice", v.Messages[0].Payload.(protocol.ChatSend).Content)
	assert.True(t, v.Status.Ready)
}

func TestSendChat(t *testing.T) {
	c, dialer := startReady(t, testConfig(t))

	assert.ErrorIs(t, c.SendChat("   "), ErrEmptyMessage)
	require.NoError(t, c.SendChat("hello world"))

	require.Eventually(t, func() bool {
		frames := dialer.last().frames(t)
		last := frames[len(frames)-1]
		return last["type"] == "chat_send"
	}, time.Second, 5*time.Millisecond)
	frames := dialer.last().frames(t)
	payload := frames[len(frames)-1]["payload"].(map[string]any)
	assert.Equal(t, "hello world", payload["content"])
	assert.Equal(t, float64(1), payload["channel_id"])
}

func TestSendChat_RefusedWhileMuted(t *testing.T) {
	c, dialer := startReady(t, testConfig(t))

	dialer.last().push(t, "chat_mute", "mute-1", map[string]any{
		"channel_id": 1,
		"target":     "alice",
		"reason":     "spam",
	})
	require.Eventually(t, c.Session().IsMuted, time.Second, 5*time.Millisecond)

	assert.ErrorIs(t, c.SendChat("let me talk"), ErrMuted)
	assert.True(t, c.View().Mute.Indefinite)

	dialer.last().push(t, "chat_unmute", "unmute-1", map[string]any{
		"channel_id": 1,
		"target":     "alice",
	})
	require.Eventually(t, func() bool { return !c.Session().IsMuted() }, time.Second, 5*time.Millisecond)
	assert.NoError(t, c.SendChat("thanks"))
}

func TestSubmit_Commands(t *testing.T) {
	c, dialer := startReady(t, testConfig(t))

	res, err := c.Submit("/kick bob being rude")
	require.NoError(t, err)
	assert.Equal(t, "/kick", res.Command.Name)
	require.Eventually(t, func() bool {
		types := dialer.last().types(t)
		return types[len(types)-1] == "chat_kick"
	}, time.Second, 5*time.Millisecond)
	frames := dialer.last().frames(t)
	payload := frames[len(frames)-1]["payload"].(map[string]any)
	assert.Equal(t, "bob", payload["target"])
	assert.Equal(t, "being rude", payload["reason"])

	_, err = c.Submit("/frobnicate")
	var cmdErr *commands.CommandError
	assert.ErrorAs(t, err, &cmdErr)

	_, err = c.Submit("/mute")
	require.ErrorAs(t, err, &cmdErr)
	assert.NotEmpty(t, cmdErr.Usage)

	res, err = c.Submit("/help")
	require.NoError(t, err)
	assert.Equal(t, commands.ActionHelp, res.Action)
}

func TestSubmit_JoinSwitchesChannel(t *testing.T) {
	c, _ := startReady(t, testConfig(t))

	_, err := c.Submit("/join 5")
	require.NoError(t, err)
	assert.Equal(t, 5, c.Channel())
	assert.True(t, c.Session().Joined(5))

	_, err = c.Submit("/join lobby")
	var verr *commands.ValidationError
	assert.ErrorAs(t, err, &verr)

	_, err = c.Submit("/leave")
	require.NoError(t, err)
	assert.False(t, c.Session().Joined(5))
}

func TestJoin_InvalidChannel(t *testing.T) {
	c, err := New(Options{Config: testConfig(t), Dialer: &fakeDialer{}})
	require.NoError(t, err)
	defer c.Close()

	assert.ErrorIs(t, c.Join(0), ErrInvalidChannel)
	assert.ErrorIs(t, c.SetChannel(-1), ErrInvalidChannel)
}

func TestCompose_ThrottlesTypingSignals(t *testing.T) {
	c, dialer := startReady(t, testConfig(t))
	before := len(dialer.last().types(t))

	c.Compose("h")
	c.Compose("he")
	c.Compose("hel")
	c.Compose("/kick")

	require.Eventually(t, func() bool {
		return len(dialer.last().types(t)) == before+1
	}, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	types := dialer.last().types(t)
	assert.Len(t, types, before+1)
	assert.Equal(t, "chat_typing", types[len(types)-1])
}

func TestCompose_SendDoesNotReopenWindow(t *testing.T) {
	c, dialer := startReady(t, testConfig(t))
	conn := dialer.last()

	c.Compose("hello")
	require.NoError(t, c.SendChat("hello"))
	conn.push(t, "chat_send", "echo-1", map[string]any{
		"channel_id": 1,
		"sender":     map[string]any{"username": "alice"},
		"content":    "hello",
	})
	require.Eventually(t, func() bool {
		return len(c.Session().Messages(1)) == 1
	}, time.Second, 5*time.Millisecond)
	c.Compose("h")

	typing := 0
	for _, typ := range conn.types(t) {
		if typ == "chat_typing" {
			typing++
		}
	}
	assert.Equal(t, 1, typing, "one typing signal per window")
}

func TestClose_LogsSessionStats(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	dialer := &fakeDialer{}
	c, err := New(Options{Config: testConfig(t), Dialer: dialer, Logger: zap.New(core)})
	require.NoError(t, err)
	require.NoError(t, c.Start(context.Background()))
	require.Eventually(t, func() bool { return dialer.count() == 1 }, time.Second, 5*time.Millisecond)
	dialer.last().push(t, "hello", "", map[string]any{"user": map[string]any{"username": "alice"}})
	require.Eventually(t, c.Ready, time.Second, 5*time.Millisecond)

	dialer.last().push(t, "chat_send", "m-1", map[string]any{"channel_id": 1, "sender": map[string]any{"username": "bob"}, "content": "hi"})
	require.Eventually(t, func() bool { return len(c.Session().Messages(1)) == 1 }, time.Second, 5*time.Millisecond)

	c.Close()
	c.Close()

	closed := logs.FilterMessage("session closed").All()
	require.Len(t, closed, 1)
	fields := closed[0].ContextMap()
	assert.EqualValues(t, 1, fields["entries"])
	assert.EqualValues(t, 1, fields["seen"])
}

func TestReact(t *testing.T) {
	c, dialer := startReady(t, testConfig(t))

	require.NoError(t, c.React("m1", "👍", true))
	require.NoError(t, c.React("m1", "👍", false))
	assert.Error(t, c.React("", "👍", true))

	require.Eventually(t, func() bool {
		types := dialer.last().types(t)
		n := len(types)
		return n >= 2 && types[n-2] == "chat_react_add" && types[n-1] == "chat_react_remove"
	}, time.Second, 5*time.Millisecond)
}

func TestLogin_ReconnectsWithToken(t *testing.T) {
	c, dialer := startReady(t, testConfig(t))

	require.NoError(t, c.Login("opaque-token"))
	require.Eventually(t, func() bool { return dialer.count() == 2 }, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool { return len(dialer.last().frames(t)) > 0 }, time.Second, 5*time.Millisecond)

	hello := dialer.last().frames(t)[0]
	assert.Equal(t, "hello", hello["type"])
	assert.Equal(t, "opaque-token", hello["payload"].(map[string]any)["token"])
}

func TestLogout_ForgetsIdentity(t *testing.T) {
	c, dialer := startReady(t, testConfig(t))

	require.NoError(t, c.Logout())
	assert.Empty(t, c.Identity().Username())
	require.Eventually(t, func() bool { return dialer.count() == 2 }, time.Second, 5*time.Millisecond)
}

func TestOnChange_Fires(t *testing.T) {
	c, err := New(Options{Config: testConfig(t), Dialer: &fakeDialer{}})
	require.NoError(t, err)
	defer c.Close()

	var mu sync.Mutex
	calls := 0
	c.OnChange(func() {
		mu.Lock()
		calls++
		mu.Unlock()
	})
	require.NoError(t, c.SetChannel(3))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, calls)
}
