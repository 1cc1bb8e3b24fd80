// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package protocol defines the chat wire schema.
package protocol

// =============================================================================
// PAYLOAD INTERFACES
// =============================================================================

// Payload is the type-specific body of an envelope. The set of
// implementations is closed to this package.
type Payload interface {
	MessageType() Type
	sealed()
}

// ChannelScoped is implemented by payloads addressed to a single channel.
type ChannelScoped interface {
	Channel() int
}

// UserRef identifies a user on the wire.
type UserRef struct {
	Username string `json:"username"`
	IsGuest  bool   `json:"is_guest,omitempty"`
}

// Name returns the username or "" for a nil reference.
func (u *UserRef) Name() string {
	if u == nil {
		return ""
	}
	return u.Username
}

// Member is one entry of a channel roster.
type Member struct {
	Username string `json:"username"`
	IsGuest  bool   `json:"is_guest"`
}

// =============================================================================
// HELLO
// =============================================================================

// Hello is sent by the client with an optional bearer token; the server
// answers with the assigned user and optionally a fresh token.
type Hello struct {
	Token string   `json:"token,omitempty"`
	User  *UserRef `json:"user,omitempty"`
}

func (Hello) MessageType() Type { return TypeHello }
func (Hello) sealed()           {}

// =============================================================================
// CHAT
// =============================================================================

// ChatSend carries a chat line. Sender is only set on server broadcasts.
type ChatSend struct {
	ChannelID int      `json:"channel_id"`
	Sender    *UserRef `json:"sender,omitempty"`
	Content   string   `json:"content"`
}

func (ChatSend) MessageType() Type { return TypeChatSend }
func (ChatSend) sealed()           {}
func (p ChatSend) Channel() int    { return p.ChannelID }

// Reaction is the shared body of reaction add/remove messages.
type Reaction struct {
	Emote     string   `json:"emote"`
	MessageID string   `json:"message_id"`
	ChannelID int      `json:"channel_id"`
	User      *UserRef `json:"user,omitempty"`
}

// Channel returns the channel the reaction belongs to.
func (r Reaction) Channel() int { return r.ChannelID }

// ReactAdd adds an emote to a message.
type ReactAdd struct{ Reaction }

func (ReactAdd) MessageType() Type { return TypeChatReactAdd }
func (ReactAdd) sealed()           {}

// ReactRemove removes an emote from a message.
type ReactRemove struct{ Reaction }

func (ReactRemove) MessageType() Type { return TypeChatReactRemove }
func (ReactRemove) sealed()           {}

// ChatTyping signals that a user is composing in a channel.
type ChatTyping struct {
	ChannelID int      `json:"channel_id"`
	User      *UserRef `json:"user,omitempty"`
}

func (ChatTyping) MessageType() Type { return TypeChatTyping }
func (ChatTyping) sealed()           {}
func (p ChatTyping) Channel() int    { return p.ChannelID }

// =============================================================================
// CHANNELS
// =============================================================================

// ChannelRef is the shared body of join/leave messages.
type ChannelRef struct {
	ChannelID int      `json:"channel_id"`
	User      *UserRef `json:"user,omitempty"`
}

// Channel returns the referenced channel.
func (c ChannelRef) Channel() int { return c.ChannelID }

// ChannelJoin announces (or requests) that a user joined a channel.
type ChannelJoin struct{ ChannelRef }

func (ChannelJoin) MessageType() Type { return TypeChannelJoin }
func (ChannelJoin) sealed()           {}

// ChannelJoinRequest asks the server for membership.
type ChannelJoinRequest struct{ ChannelRef }

func (ChannelJoinRequest) MessageType() Type { return TypeChannelJoinRequest }
func (ChannelJoinRequest) sealed()           {}

// ChannelLeave announces (or requests) that a user left a channel.
type ChannelLeave struct{ ChannelRef }

func (ChannelLeave) MessageType() Type { return TypeChannelLeave }
func (ChannelLeave) sealed()           {}

// ChannelMembers is an authoritative roster snapshot. Server to client only.
type ChannelMembers struct {
	ChannelID int      `json:"channel_id"`
	Members   []Member `json:"members"`
}

func (ChannelMembers) MessageType() Type { return TypeChannelMembers }
func (ChannelMembers) sealed()           {}
func (p ChannelMembers) Channel() int    { return p.ChannelID }

// =============================================================================
// MODERATION
// =============================================================================

// Moderation is the shared body of kick/mute/unmute messages.
type Moderation struct {
	ChannelID int    `json:"channel_id"`
	Target    string `json:"target"`
	Reason    string `json:"reason,omitempty"`
	// Duration is in seconds. Nil on a mute means indefinite.
	Duration *int `json:"duration,omitempty"`
}

// Channel returns the channel the action applies to.
func (m Moderation) Channel() int { return m.ChannelID }

// ChatKick removes Target from the channel.
type ChatKick struct{ Moderation }

func (ChatKick) MessageType() Type { return TypeChatKick }
func (ChatKick) sealed()           {}

// ChatMute silences Target, for Duration seconds or indefinitely.
type ChatMute struct{ Moderation }

func (ChatMute) MessageType() Type { return TypeChatMute }
func (ChatMute) sealed()           {}

// ChatUnmute lifts a mute on Target.
type ChatUnmute struct{ Moderation }

func (ChatUnmute) MessageType() Type { return TypeChatUnmute }
func (ChatUnmute) sealed()           {}

// =============================================================================
// ERROR
// =============================================================================

// Error is a server-originated protocol error.
type Error struct {
	Detail string `json:"detail"`
}

func (Error) MessageType() Type { return TypeError }
func (Error) sealed()           {}
