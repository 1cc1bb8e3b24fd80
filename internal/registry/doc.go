// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package registry maps message discriminants to decode and present handlers.
//
// Decoders and presenters are keyed independently: control messages such as
// hello or channel_members have a decoder but nothing to present. Handlers
// may be registered in any order during startup; Seal freezes the tables and
// every later registration fails with ErrSealed.
//
// A Registry is an ordinary value built once and handed to its consumers.
// There is no package-level table.
//
// # Usage
//
//	reg := registry.Default(logger) // decoders for every protocol.Type
//	_ = reg.RegisterPresenter(protocol.TypeChatSend, renderChat)
//	reg.Seal()
//
//	payload, err := reg.Decode(protocol.TypeChatSend, raw)
//	present, ok := reg.Presenter(protocol.TypeChatSend)
package registry
