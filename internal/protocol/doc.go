// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package protocol defines the chat wire schema.
//
// Every frame exchanged with the chat server is a JSON envelope:
//
//	{"type": "...", "timestamp": "...", "id": "...", "payload": {...}}
//
// The type field is a discriminant drawn from a fixed set (see AllTypes) and
// fully determines the shape of the payload. Payloads are modelled as one Go
// struct per discriminant behind the sealed Payload interface, so consumers
// switch on the concrete type rather than on strings.
//
// # Key Types
//
//   - Type: the discriminant enum
//   - Envelope: a decoded frame with its typed payload
//   - Payload: implemented by Hello, ChatSend, ChannelMembers, ...
//   - DecodeError: returned for malformed or unrecognized frames
package protocol
