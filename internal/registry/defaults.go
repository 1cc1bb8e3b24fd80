// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package registry maps message discriminants to decode and present handlers.
package registry

import (
	"bytes"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/jeranaias/parley-tui/internal/protocol"
)

// Default returns an unsealed registry with a decoder for every known type.
func Default(log *zap.Logger) *Registry {
	r := New(log)
	for t, fn := range builtinDecoders() {
		// Cannot fail: the registry is fresh and every key is a known type.
		_ = r.RegisterDecoder(t, fn)
	}
	return r
}

func builtinDecoders() map[protocol.Type]DecodeFunc {
	return map[protocol.Type]DecodeFunc{
		protocol.TypeHello:              decodeInto[protocol.Hello],
		protocol.TypeChatSend:           decodeInto[protocol.ChatSend],
		protocol.TypeChatReactAdd:       decodeInto[protocol.ReactAdd],
		protocol.TypeChatReactRemove:    decodeInto[protocol.ReactRemove],
		protocol.TypeChannelJoin:        decodeInto[protocol.ChannelJoin],
		protocol.TypeChannelJoinRequest: decodeInto[protocol.ChannelJoinRequest],
		protocol.TypeChannelLeave:       decodeInto[protocol.ChannelLeave],
		protocol.TypeChannelMembers:     decodeInto[protocol.ChannelMembers],
		protocol.TypeChatTyping:         decodeInto[protocol.ChatTyping],
		protocol.TypeChatKick:           decodeInto[protocol.ChatKick],
		protocol.TypeChatMute:           decodeInto[protocol.ChatMute],
		protocol.TypeChatUnmute:         decodeInto[protocol.ChatUnmute],
		protocol.TypeError:              decodeInto[protocol.Error],
	}
}

// decodeInto unmarshals raw into T. An absent or null payload yields the
// zero value.
func decodeInto[T protocol.Payload](raw json.RawMessage) (protocol.Payload, error) {
	var p T
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return p, nil
	}
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return nil, err
	}
	return p, nil
}
