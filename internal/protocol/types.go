// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package protocol defines the chat wire schema.
package protocol

import (
	"encoding/json"
	"time"
)

// =============================================================================
// MESSAGE TYPES
// =============================================================================

// Type is the envelope discriminant.
type Type string

const (
	TypeHello              Type = "hello"
	TypeChatSend           Type = "chat_send"
	TypeChatReactAdd       Type = "chat_react_add"
	TypeChatReactRemove    Type = "chat_react_remove"
	TypeChannelJoin        Type = "channel_join"
	TypeChannelJoinRequest Type = "channel_join_request"
	TypeChannelLeave       Type = "channel_leave"
	TypeChannelMembers     Type = "channel_members"
	TypeChatTyping         Type = "chat_typing"
	TypeChatKick           Type = "chat_kick"
	TypeChatMute           Type = "chat_mute"
	TypeChatUnmute         Type = "chat_unmute"
	TypeError              Type = "error"
)

var allTypes = []Type{
	TypeHello,
	TypeChatSend,
	TypeChatReactAdd,
	TypeChatReactRemove,
	TypeChannelJoin,
	TypeChannelJoinRequest,
	TypeChannelLeave,
	TypeChannelMembers,
	TypeChatTyping,
	TypeChatKick,
	TypeChatMute,
	TypeChatUnmute,
	TypeError,
}

// AllTypes returns every known discriminant in declaration order.
func AllTypes() []Type {
	out := make([]Type, len(allTypes))
	copy(out, allTypes)
	return out
}

// Known reports whether t is a member of the discriminant set.
func (t Type) Known() bool {
	for _, k := range allTypes {
		if k == t {
			return true
		}
	}
	return false
}

// String returns the wire representation.
func (t Type) String() string {
	return string(t)
}

// IsModeration reports whether t is a kick, mute or unmute event.
func (t Type) IsModeration() bool {
	return t == TypeChatKick || t == TypeChatMute || t == TypeChatUnmute
}

// =============================================================================
// ENVELOPE
// =============================================================================

// Envelope is a decoded frame.
type Envelope struct {
	Type      Type
	Timestamp time.Time
	// ID is optional on inbound frames; it drives de-duplication and
	// addresses reactions.
	ID      string
	Payload Payload
}

// wireEnvelope is the JSON shape of an envelope.
type wireEnvelope struct {
	Type      Type            `json:"type"`
	Timestamp string          `json:"timestamp"`
	ID        string          `json:"id,omitempty"`
	Payload   json.RawMessage `json:"payload"`
}

// TimestampLayout is used for every outbound timestamp.
const TimestampLayout = time.RFC3339Nano

// MarshalJSON encodes the envelope in wire form.
func (e *Envelope) MarshalJSON() ([]byte, error) {
	payload := json.RawMessage("{}")
	if e.Payload != nil {
		raw, err := json.Marshal(e.Payload)
		if err != nil {
			return nil, err
		}
		payload = raw
	}
	return json.Marshal(wireEnvelope{
		Type:      e.Type,
		Timestamp: e.Timestamp.UTC().Format(TimestampLayout),
		ID:        e.ID,
		Payload:   payload,
	})
}

// ChannelID returns the channel the envelope is scoped to, if any.
func (e *Envelope) ChannelID() (int, bool) {
	if s, ok := e.Payload.(ChannelScoped); ok {
		return s.Channel(), true
	}
	return 0, false
}
