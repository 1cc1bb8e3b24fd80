// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package codec encodes outbound payloads into wire frames and decodes
// inbound frames into typed envelopes.
//
// The codec is a pure transform: apart from the injected clock and id
// generator it has no state and no side effects. Decode never panics; every
// failure is a *protocol.DecodeError the caller may log and drop.
package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/parley-tui/internal/protocol"
	"github.com/jeranaias/parley-tui/internal/registry"
)

// timestampLayouts are tried in order. The zone-less forms cover naive
// datetimes serialized by the server; they are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
}

// Codec converts between payloads and wire frames.
type Codec struct {
	reg   *registry.Registry
	now   func() time.Time
	newID func() string
}

// Option customizes a Codec.
type Option func(*Codec)

// WithClock overrides the time source used for stamping and for frames
// without a usable timestamp.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) { c.now = now }
}

// WithIDGenerator overrides the outbound id generator.
func WithIDGenerator(fn func() string) Option {
	return func(c *Codec) { c.newID = fn }
}

// New creates a codec that dispatches payload decoding through reg.
func New(reg *registry.Registry, opts ...Option) *Codec {
	c := &Codec{
		reg:   reg,
		now:   time.Now,
		newID: func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// =============================================================================
// ENCODE
// =============================================================================

// Stamp wraps p in an envelope with its type, the current time and a fresh id.
func (c *Codec) Stamp(p protocol.Payload) *protocol.Envelope {
	return &protocol.Envelope{
		Type:      p.MessageType(),
		Timestamp: c.now(),
		ID:        c.newID(),
		Payload:   p,
	}
}

// Encode stamps p and serializes it.
func (c *Codec) Encode(p protocol.Payload) ([]byte, *protocol.Envelope, error) {
	if p == nil {
		return nil, nil, errors.New("codec: nil payload")
	}
	env := c.Stamp(p)
	data, err := json.Marshal(env)
	if err != nil {
		return nil, nil, err
	}
	return data, env, nil
}

// =============================================================================
// DECODE
// =============================================================================

type inboundFrame struct {
	Type      *string         `json:"type"`
	Timestamp *string         `json:"timestamp"`
	ID        json.RawMessage `json:"id"`
	Payload   json.RawMessage `json:"payload"`
	Detail    json.RawMessage `json:"detail"`
}

// Decode parses frame into an envelope.
func (c *Codec) Decode(frame []byte) (*protocol.Envelope, error) {
	var in inboundFrame
	if err := json.Unmarshal(frame, &in); err != nil {
		return nil, &protocol.DecodeError{Kind: protocol.KindUnparsable, Err: err}
	}

	if in.Type == nil || *in.Type == "" {
		if detail := detailText(in.Detail); detail != "" {
			return &protocol.Envelope{
				Type:      protocol.TypeError,
				Timestamp: c.now(),
				Payload:   protocol.Error{Detail: detail},
			}, nil
		}
		return nil, &protocol.DecodeError{Kind: protocol.KindMissingType}
	}

	typ := protocol.Type(*in.Type)
	if !typ.Known() {
		return nil, &protocol.DecodeError{Kind: protocol.KindUnknownType, Type: typ}
	}

	payload, err := c.reg.Decode(typ, in.Payload)
	if err != nil {
		kind := protocol.KindInvalidPayload
		if errors.Is(err, registry.ErrNoDecoder) {
			kind = protocol.KindUnregistered
		}
		return nil, &protocol.DecodeError{Kind: kind, Type: typ, Err: err}
	}

	return &protocol.Envelope{
		Type:      typ,
		Timestamp: c.parseTimestamp(in.Timestamp),
		ID:        idText(in.ID),
		Payload:   payload,
	}, nil
}

// parseTimestamp falls back to the local clock for missing or unparsable
// values.
func (c *Codec) parseTimestamp(s *string) time.Time {
	if s == nil {
		return c.now()
	}
	v := strings.TrimSpace(*s)
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, v); err == nil {
			return ts
		}
	}
	return c.now()
}

// idText accepts string or numeric ids.
func idText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// detailText keeps string details verbatim; structured details (validation
// error lists, for instance) are carried as their JSON text. A null or blank
// detail yields "".
func detailText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	return string(raw)
}
