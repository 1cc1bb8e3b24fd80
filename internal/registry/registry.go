// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package registry maps message discriminants to decode and present handlers.
package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/jeranaias/parley-tui/internal/logging"
	"github.com/jeranaias/parley-tui/internal/protocol"
)

var (
	// ErrSealed is returned by registrations after Seal.
	ErrSealed = errors.New("registry: sealed")

	// ErrNoDecoder is returned by Decode for a type without a decoder.
	ErrNoDecoder = errors.New("registry: no decoder registered")
)

// DecodeFunc turns a raw payload into its typed form.
type DecodeFunc func(raw json.RawMessage) (protocol.Payload, error)

// PresentFunc renders an envelope for display.
type PresentFunc func(env *protocol.Envelope) string

// =============================================================================
// REGISTRY
// =============================================================================

// Registry holds the decode and present dispatch tables.
type Registry struct {
	mu         sync.RWMutex
	sealed     bool
	decoders   map[protocol.Type]DecodeFunc
	presenters map[protocol.Type]PresentFunc
	log        *zap.Logger
}

// New creates an empty, unsealed registry.
func New(log *zap.Logger) *Registry {
	return &Registry{
		decoders:   make(map[protocol.Type]DecodeFunc),
		presenters: make(map[protocol.Type]PresentFunc),
		log:        logging.OrNop(log).Named("registry"),
	}
}

// RegisterDecoder adds the decoder for t.
func (r *Registry) RegisterDecoder(t protocol.Type, fn DecodeFunc) error {
	if fn == nil {
		return fmt.Errorf("registry: nil decoder for %q", t)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkLocked(t); err != nil {
		return err
	}
	if _, exists := r.decoders[t]; exists {
		return fmt.Errorf("registry: decoder for %q already registered", t)
	}
	r.decoders[t] = fn
	r.log.Debug("registered decoder", zap.String("type", string(t)))
	return nil
}

// RegisterPresenter adds the presentation handler for t.
func (r *Registry) RegisterPresenter(t protocol.Type, fn PresentFunc) error {
	if fn == nil {
		return fmt.Errorf("registry: nil presenter for %q", t)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkLocked(t); err != nil {
		return err
	}
	if _, exists := r.presenters[t]; exists {
		return fmt.Errorf("registry: presenter for %q already registered", t)
	}
	r.presenters[t] = fn
	r.log.Debug("registered presenter", zap.String("type", string(t)))
	return nil
}

func (r *Registry) checkLocked(t protocol.Type) error {
	if r.sealed {
		return ErrSealed
	}
	if !t.Known() {
		return fmt.Errorf("registry: unknown message type %q", t)
	}
	return nil
}

// Seal freezes the registry. It is idempotent.
func (r *Registry) Seal() {
	r.mu.Lock()
	r.sealed = true
	r.mu.Unlock()
}

// Sealed reports whether Seal has been called.
func (r *Registry) Sealed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sealed
}

// =============================================================================
// DISPATCH
// =============================================================================

// Decode dispatches raw to the decoder for t. A missing decoder is logged
// and reported as ErrNoDecoder.
func (r *Registry) Decode(t protocol.Type, raw json.RawMessage) (protocol.Payload, error) {
	r.mu.RLock()
	fn, ok := r.decoders[t]
	r.mu.RUnlock()

	if !ok {
		r.log.Warn("no decoder for message type", zap.String("type", string(t)))
		return nil, ErrNoDecoder
	}
	return fn(raw)
}

// Presenter returns the presentation handler for t.
func (r *Registry) Presenter(t protocol.Type) (PresentFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.presenters[t]
	return fn, ok
}

// Present renders env with its registered presenter.
func (r *Registry) Present(env *protocol.Envelope) (string, bool) {
	fn, ok := r.Presenter(env.Type)
	if !ok {
		return "", false
	}
	return fn(env), true
}

// DecoderTypes lists the types that have a decoder, sorted.
func (r *Registry) DecoderTypes() []protocol.Type {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.decoders)
}

// PresenterTypes lists the types that have a presenter, sorted.
func (r *Registry) PresenterTypes() []protocol.Type {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.presenters)
}

func sortedKeys[V any](m map[protocol.Type]V) []protocol.Type {
	out := make([]protocol.Type, 0, len(m))
	for t := range m {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
