// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package identity

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEqual_NFC(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"alice", "alice", true},
		{"alice", "Alice", false},
		{"jos\u00e9", "jose\u0301", true},
		{"", "", true},
		{"bob", "bobby", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Equal(tt.a, tt.b), "%q vs %q", tt.a, tt.b)
	}
}

func TestProvider_AssignAndIsSelf(t *testing.T) {
	p := NewProvider("", nil)
	assert.False(t, p.IsSelf(""))
	assert.False(t, p.IsSelf("anyone"), "no identity before HELLO")

	var got []Identity
	p.OnChange(func(id Identity) { got = append(got, id) })

	p.OnIdentityAssigned("jose\u0301", true)
	assert.Equal(t, "jos\u00e9", p.Username(), "stored in NFC form")
	assert.True(t, p.IsGuest())
	assert.True(t, p.IsSelf("jos\u00e9"))
	assert.True(t, p.IsSelf("jose\u0301"))
	assert.False(t, p.IsSelf("jose"))

	// Same identity again is not a change.
	p.OnIdentityAssigned("jos\u00e9", true)
	assert.Len(t, got, 1)
}

func TestProvider_DisplayName(t *testing.T) {
	p := NewProvider("", nil)
	p.OnIdentityAssigned("alice", false)
	assert.Equal(t, "alice", p.DisplayName())

	require.NoError(t, p.SetDisplayName("Alice L."))
	assert.Equal(t, "Alice L.", p.DisplayName())

	p.OnIdentityAssigned("guest_7", true)
	assert.Equal(t, "guest_7", p.DisplayName(), "display name does not follow a new account")
}

func TestProvider_Persistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "identity.json")

	p := NewProvider(path, nil)
	p.OnIdentityAssigned("alice", false)

	reopened := NewProvider(path, nil)
	assert.Equal(t, Identity{Username: "alice"}, reopened.Current())

	require.NoError(t, reopened.Reset())
	assert.Equal(t, "", reopened.Username())
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestProvider_CorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "identity.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	p := NewProvider(path, nil)
	assert.Equal(t, Identity{}, p.Current())
}
