// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package identity holds the local user's identity as assigned by the server
// at HELLO time.
//
// The identity is remembered across runs so the view can show the last known
// name before the handshake completes. Usernames are compared after Unicode
// NFC normalization, so a name typed with combining marks matches the
// server's precomposed form.
package identity

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"github.com/jeranaias/parley-tui/internal/logging"
	"github.com/jeranaias/parley-tui/internal/util"
)

// Identity is a snapshot of the local user.
type Identity struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name,omitempty"`
	IsGuest     bool   `json:"is_guest"`
}

// Provider tracks the local identity. It is safe for concurrent use.
type Provider struct {
	path string
	log  *zap.Logger

	mu       sync.RWMutex
	current  Identity
	onChange func(Identity)
}

// NewProvider creates a provider persisted at path. An empty path keeps the
// identity in memory only. A missing or unreadable file starts empty.
func NewProvider(path string, log *zap.Logger) *Provider {
	p := &Provider{path: path, log: logging.OrNop(log).Named("identity")}
	if path == "" {
		return p
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			p.log.Warn("could not read identity", zap.Error(err))
		}
		return p
	}
	var id Identity
	if err := json.Unmarshal(data, &id); err != nil {
		p.log.Warn("ignoring corrupt identity file", zap.String("path", path), zap.Error(err))
		return p
	}
	id.Username = Normalize(id.Username)
	p.current = id
	return p
}

// Normalize returns the NFC form of a username.
func Normalize(name string) string {
	return norm.NFC.String(name)
}

// Equal reports whether two usernames name the same user.
func Equal(a, b string) bool {
	return Normalize(a) == Normalize(b)
}

// OnChange sets the callback invoked after the identity changes.
func (p *Provider) OnChange(fn func(Identity)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onChange = fn
}

// Current returns the current identity.
func (p *Provider) Current() Identity {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

// Username returns the assigned username, or "" before the first HELLO.
func (p *Provider) Username() string {
	return p.Current().Username
}

// DisplayName returns the display name, falling back to the username.
func (p *Provider) DisplayName() string {
	id := p.Current()
	if id.DisplayName != "" {
		return id.DisplayName
	}
	return id.Username
}

// IsGuest reports whether the server assigned a guest identity.
func (p *Provider) IsGuest() bool {
	return p.Current().IsGuest
}

// IsSelf reports whether username is the local user.
func (p *Provider) IsSelf(username string) bool {
	own := p.Username()
	return own != "" && Equal(own, username)
}

// OnIdentityAssigned records the identity from a HELLO response.
func (p *Provider) OnIdentityAssigned(username string, isGuest bool) {
	username = Normalize(username)

	p.mu.Lock()
	prev := p.current
	p.current.Username = username
	p.current.IsGuest = isGuest
	if prev.Username != username {
		// A display name belongs to the previous account.
		p.current.DisplayName = ""
	}
	id := p.current
	fn := p.onChange
	p.mu.Unlock()

	if prev == id {
		return
	}
	p.log.Info("identity changed", zap.String("username", username), zap.Bool("guest", isGuest))
	if err := p.save(id); err != nil {
		p.log.Warn("could not persist identity", zap.Error(err))
	}
	if fn != nil {
		fn(id)
	}
}

// SetDisplayName sets a local display name for the current user.
func (p *Provider) SetDisplayName(name string) error {
	p.mu.Lock()
	p.current.DisplayName = name
	id := p.current
	fn := p.onChange
	p.mu.Unlock()

	if err := p.save(id); err != nil {
		return err
	}
	if fn != nil {
		fn(id)
	}
	return nil
}

// Reset forgets the identity, as on logout.
func (p *Provider) Reset() error {
	p.mu.Lock()
	p.current = Identity{}
	fn := p.onChange
	p.mu.Unlock()

	if p.path != "" {
		if err := os.Remove(p.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("reset identity: %w", err)
		}
	}
	if fn != nil {
		fn(Identity{})
	}
	return nil
}

func (p *Provider) save(id Identity) error {
	if p.path == "" {
		return nil
	}
	data, err := json.MarshalIndent(id, "", "  ")
	if err != nil {
		return fmt.Errorf("encode identity: %w", err)
	}
	if err := util.AtomicWriteFile(p.path, data, 0600); err != nil {
		return fmt.Errorf("save identity: %w", err)
	}
	return nil
}
