// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package transport owns the WebSocket connection to the chat server.
//
// A Manager holds at most one live connection. It performs the HELLO
// handshake, reports the identity the server assigns, reconnects with
// jittered exponential backoff after unexpected closes and gates outbound
// sends on connection state.
//
// # Lifecycle
//
//	Disconnected -> Connecting -> Open -> Ready -> Disconnected
//	                                          \-> Reconnecting -> Connecting
//	                                          \-> Failed (max attempts)
//
// Disconnect is intentional: it suppresses the reconnect that the resulting
// close would otherwise schedule. Reconnect replaces the transport outright,
// which is how an identity change (login/logout) takes effect since identity
// is bound at HELLO time.
//
// # Concurrency
//
// Inbound frames are decoded and delivered on the read-loop goroutine of the
// live connection, strictly in arrival order. Callbacks from a connection
// that has since been detached are ignored. Writes are serialized.
package transport
