// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/jeranaias/parley-tui/internal/logging"
	"github.com/jeranaias/parley-tui/internal/util"
)

// ErrEmptyToken is returned by SetToken for a blank token.
var ErrEmptyToken = errors.New("auth: empty token")

// expirySkew treats tokens about to expire as already expired so HELLO does
// not race the deadline.
const expirySkew = 5 * time.Second

// Store is a file-backed token store. It is safe for concurrent use.
type Store struct {
	path string
	log  *zap.Logger
	now  func() time.Time

	mu    sync.RWMutex
	token string
}

// NewStore opens the store at path, loading a token if the file exists.
func NewStore(path string, log *zap.Logger) (*Store, error) {
	s := &Store{
		path: filepath.Clean(path),
		log:  logging.OrNop(log).Named("auth"),
		now:  time.Now,
	}
	if _, err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the token file path.
func (s *Store) Path() string {
	return s.path
}

// Token returns the stored token when one is present and not expired.
func (s *Store) Token() (string, bool) {
	s.mu.RLock()
	tok := s.token
	s.mu.RUnlock()
	if tok == "" || s.expired(tok) {
		return "", false
	}
	return tok, true
}

// HasValidToken reports whether Token would return a token.
func (s *Store) HasValidToken() bool {
	_, ok := s.Token()
	return ok
}

// Expiry returns the exp claim of the stored token, if it has one.
func (s *Store) Expiry() (time.Time, bool) {
	s.mu.RLock()
	tok := s.token
	s.mu.RUnlock()
	return tokenExpiry(tok)
}

// SetToken replaces and persists the token.
func (s *Store) SetToken(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrEmptyToken
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := util.AtomicWriteFile(s.path, []byte(token+"\n"), 0600); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	s.token = token
	s.log.Info("token saved", zap.String("path", s.path))
	return nil
}

// SaveToken persists a token issued in the HELLO response.
func (s *Store) SaveToken(token string) error {
	return s.SetToken(token)
}

// ClearToken forgets the token and removes the file.
func (s *Store) ClearToken() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clear token: %w", err)
	}
	s.log.Info("token cleared")
	return nil
}

// Reload rereads the token file and reports whether the token changed.
func (s *Store) Reload() (bool, error) {
	data, err := os.ReadFile(s.path)
	if err != nil && !os.IsNotExist(err) {
		return false, fmt.Errorf("read token: %w", err)
	}
	tok := strings.TrimSpace(string(data))

	s.mu.Lock()
	defer s.mu.Unlock()
	if tok == s.token {
		return false, nil
	}
	s.token = tok
	return true, nil
}

func (s *Store) expired(tok string) bool {
	exp, ok := tokenExpiry(tok)
	if !ok {
		// Opaque or exp-less tokens are the server's call.
		return false
	}
	return !s.now().Add(expirySkew).Before(exp)
}

// tokenExpiry reads the exp claim without verifying the signature; the
// server is the only party that can verify it.
func tokenExpiry(tok string) (time.Time, bool) {
	if tok == "" {
		return time.Time{}, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
