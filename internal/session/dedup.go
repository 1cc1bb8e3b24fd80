// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru"

	"github.com/jeranaias/parley-tui/internal/protocol"
)

// ledger remembers the identities of processed envelopes. It is bounded: the
// least recently seen identity is evicted once capacity is reached.
type ledger struct {
	seen     *lru.Cache
	position uint64
}

func newLedger(capacity int) (*ledger, error) {
	cache, err := lru.New(capacity)
	if err != nil {
		return nil, fmt.Errorf("dedup ledger: %w", err)
	}
	return &ledger{seen: cache}, nil
}

// observe records env and reports whether it is new.
func (l *ledger) observe(env *protocol.Envelope) bool {
	l.position++
	key := identityKey(env, l.position)
	if l.seen.Contains(key) {
		// Refresh recency so a redelivery storm keeps the key alive.
		l.seen.Get(key)
		return false
	}
	l.seen.Add(key, struct{}{})
	return true
}

func (l *ledger) len() int {
	return l.seen.Len()
}

// identityKey is the envelope id or, without one, a composite of timestamp,
// type and delivery position.
func identityKey(env *protocol.Envelope, position uint64) string {
	if env.ID != "" {
		return "id:" + env.ID
	}
	return fmt.Sprintf("%s|%s|%d", env.Timestamp.UTC().Format(time.RFC3339Nano), env.Type, position)
}
