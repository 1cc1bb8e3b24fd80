// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/parley-tui/internal/auth"
	"github.com/jeranaias/parley-tui/internal/config"
	"github.com/jeranaias/parley-tui/internal/identity"
	"github.com/jeranaias/parley-tui/internal/transport"
)

// =============================================================================
// ARG PARSER TESTS (args.go)
// =============================================================================

func TestArgParser_BasicParsing(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		bools    []string
		wantSub  string
		validate func(*testing.T, *ArgParser)
	}{
		{
			name:    "simple subcommand",
			args:    []string{"show"},
			wantSub: "show",
		},
		{
			name:    "flag with value",
			args:    []string{"-c", "3", "hello"},
			wantSub: "hello",
			validate: func(t *testing.T, p *ArgParser) {
				if p.Flag("c") != "3" {
					t.Errorf("Flag(c) = %q, want %q", p.Flag("c"), "3")
				}
			},
		},
		{
			name:    "flag with equals",
			args:    []string{"get", "--format=json"},
			wantSub: "get",
			validate: func(t *testing.T, p *ArgParser) {
				if p.Flag("format") != "json" {
					t.Errorf("Flag(format) = %q, want %q", p.Flag("format"), "json")
				}
			},
		},
		{
			name:    "declared boolean does not swallow next arg",
			args:    []string{"init", "--force", "extra"},
			bools:   []string{"force"},
			wantSub: "init",
			validate: func(t *testing.T, p *ArgParser) {
				if !p.BoolFlag("force") {
					t.Error("BoolFlag(force) should be true")
				}
				if p.Positional(1) != "extra" {
					t.Errorf("Positional(1) = %q, want %q", p.Positional(1), "extra")
				}
			},
		},
		{
			name:    "double dash ends flags",
			args:    []string{"--", "-1", "is", "--not", "a", "flag"},
			wantSub: "-1",
			validate: func(t *testing.T, p *ArgParser) {
				got := strings.Join(p.PositionalFrom(0), " ")
				if got != "-1 is --not a flag" {
					t.Errorf("PositionalFrom(0) = %q", got)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := NewArgParser(tt.args, tt.bools...)
			if parser.Subcommand() != tt.wantSub {
				t.Errorf("Subcommand() = %q, want %q", parser.Subcommand(), tt.wantSub)
			}
			if tt.validate != nil {
				tt.validate(t, parser)
			}
		})
	}
}

func TestArgParser_FlagIntOrDefault(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want int
	}{
		{"flag present", []string{"--channel", "10"}, 10},
		{"flag missing uses default", []string{}, 5},
		{"invalid int uses default", []string{"--channel", "abc"}, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewArgParser(tt.args).FlagIntOrDefault("channel", 5)
			if got != tt.want {
				t.Errorf("FlagIntOrDefault() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestArgParser_EmptyArgs(t *testing.T) {
	p := NewArgParser(nil)
	assert.Equal(t, "", p.Subcommand())
	assert.Equal(t, 0, p.PositionalCount())
	assert.Equal(t, "", p.Positional(3))
	assert.Empty(t, p.PositionalFrom(1))
	assert.False(t, p.HasFlag("x"))
}

func TestParseBoolString(t *testing.T) {
	for _, s := range []string{"true", "YES", "y", "1", "on"} {
		got, err := ParseBoolString(s)
		assert.NoError(t, err, s)
		assert.True(t, got, s)
	}
	for _, s := range []string{"false", "No", "n", "0", "off"} {
		got, err := ParseBoolString(s)
		assert.NoError(t, err, s)
		assert.False(t, got, s)
	}
	_, err := ParseBoolString("maybe")
	assert.Error(t, err)
}

func TestParseIntWithValidation(t *testing.T) {
	_, err := ParseIntWithValidation("", "channel")
	assert.Error(t, err)
	_, err = ParseIntWithValidation("zero", "channel")
	assert.Error(t, err)
	_, err = ParseIntWithValidation("0", "channel")
	assert.Error(t, err)
	n, err := ParseIntWithValidation("4", "channel")
	assert.NoError(t, err)
	assert.Equal(t, 4, n)
}

// =============================================================================
// COMMAND PARSING TESTS (cli.go)
// =============================================================================

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name     string
		argv     []string
		wantCmd  Command
		validate func(*testing.T, Args)
	}{
		{"no args starts tui", nil, CmdTUI, nil},
		{"explicit tui", []string{"tui"}, CmdTUI, nil},
		{"version", []string{"version"}, CmdVersion, nil},
		{"help", []string{"--help"}, CmdHelp, nil},
		{"unknown command shows help", []string{"frobnicate"}, CmdHelp, func(t *testing.T, a Args) {
			assert.Equal(t, []string{"frobnicate"}, a.Raw)
		}},
		{"global flags anywhere", []string{"--url", "ws://h:1/ws", "tui", "-v", "--channel=4"}, CmdTUI, func(t *testing.T, a Args) {
			assert.Equal(t, "ws://h:1/ws", a.URL)
			assert.True(t, a.Verbose)
			assert.Equal(t, 4, a.Channel)
		}},
		{"send with short channel flag", []string{"send", "-c", "2", "deploy", "done"}, CmdSend, func(t *testing.T, a Args) {
			assert.Equal(t, 2, a.Channel)
			assert.Equal(t, "deploy done", a.Text)
		}},
		{"send with global channel flag", []string{"--channel", "7", "send", "hi"}, CmdSend, func(t *testing.T, a Args) {
			assert.Equal(t, 7, a.Channel)
			assert.Equal(t, "hi", a.Text)
		}},
		{"send text after double dash", []string{"send", "--", "--url", "is", "text"}, CmdSend, func(t *testing.T, a Args) {
			assert.Empty(t, a.URL)
			assert.Equal(t, "--url is text", a.Text)
		}},
		{"config set", []string{"config", "set", "ui.theme", "light"}, CmdConfig, func(t *testing.T, a Args) {
			assert.Equal(t, "set", a.Subcommand)
			assert.Equal(t, "ui.theme", a.ConfigKey)
			assert.Equal(t, "light", a.ConfigVal)
		}},
		{"config file flag", []string{"--config", "/tmp/p.toml", "config", "path"}, CmdConfig, func(t *testing.T, a Args) {
			assert.Equal(t, "/tmp/p.toml", a.ConfigPath)
			assert.Equal(t, "path", a.Subcommand)
		}},
		{"login with token", []string{"login", "abc.def.ghi"}, CmdLogin, func(t *testing.T, a Args) {
			assert.Equal(t, "abc.def.ghi", a.Token)
		}},
		{"login with user", []string{"login", "--user", "alice"}, CmdLogin, func(t *testing.T, a Args) {
			assert.Equal(t, "alice", a.User)
			assert.Empty(t, a.Token)
		}},
		{"signup short flag", []string{"--url", "ws://h/ws", "signup", "-u", "bob"}, CmdSignup, func(t *testing.T, a Args) {
			assert.Equal(t, "bob", a.User)
			assert.Equal(t, "ws://h/ws", a.URL)
		}},
		{"logout", []string{"logout"}, CmdLogout, nil},
		{"whoami", []string{"whoami"}, CmdWhoami, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, args := ParseArgs(tt.argv)
			if cmd != tt.wantCmd {
				t.Errorf("ParseArgs(%v) command = %v, want %v", tt.argv, cmd, tt.wantCmd)
			}
			if tt.validate != nil {
				tt.validate(t, args)
			}
		})
	}
}

// =============================================================================
// CONFIG COMMAND TESTS (config.go)
// =============================================================================

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	for _, k := range []string{"PARLEY_URL", "PARLEY_API_URL", "PARLEY_TOKEN_FILE", "PARLEY_LOG_LEVEL", "PARLEY_LOG_FILE", "PARLEY_CHANNEL"} {
		t.Setenv(k, "")
	}
	return home
}

func TestLoadConfig_FlagOverrides(t *testing.T) {
	isolate(t)

	cfg, err := LoadConfig(Args{URL: "wss://chat.example.com/ws", Channel: 9, Verbose: true})
	require.NoError(t, err)
	assert.Equal(t, "wss://chat.example.com/ws", cfg.Server.URL)
	assert.Equal(t, 9, cfg.UI.DefaultChannel)
	assert.Equal(t, "debug", cfg.Log.Level)

	_, err = LoadConfig(Args{URL: "http://wrong"})
	assert.Error(t, err)
}

func TestLoadConfig_OverridesDoNotLeak(t *testing.T) {
	isolate(t)

	first, err := LoadConfig(Args{URL: "wss://one.example.com/ws"})
	require.NoError(t, err)
	second, err := LoadConfig(Args{})
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.Equal(t, "wss://one.example.com/ws", first.Server.URL)
	assert.Equal(t, "ws://localhost:8000/ws", second.Server.URL)
}

func TestConfigCommand_InitSetGet(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "parley.toml")
	base := Args{ConfigPath: path}

	var out bytes.Buffer
	initArgs := base
	initArgs.Subcommand = "init"
	require.NoError(t, runConfig(&out, initArgs))
	assert.FileExists(t, path)

	// A second init refuses to clobber.
	assert.Error(t, runConfig(&out, initArgs))
	initArgs.Raw = []string{"init", "--force"}
	assert.NoError(t, runConfig(&out, initArgs))

	set := base
	set.Subcommand, set.ConfigKey, set.ConfigVal = "set", "reconnect.max_attempts", "12"
	require.NoError(t, runConfig(&out, set))

	bad := base
	bad.Subcommand, bad.ConfigKey, bad.ConfigVal = "set", "reconnect.jitter", "3"
	assert.Error(t, runConfig(&out, bad), "invalid values are not saved")

	out.Reset()
	get := base
	get.Subcommand, get.ConfigKey = "get", "reconnect.max_attempts"
	require.NoError(t, runConfig(&out, get))
	assert.Equal(t, "12\n", out.String())
}

func TestConfigCommand_ShowAndPath(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "parley.toml")

	var out bytes.Buffer
	require.NoError(t, runConfig(&out, Args{ConfigPath: path, Subcommand: "path"}))
	assert.Equal(t, path+"\n", out.String())

	require.NoError(t, config.SaveTOML(config.Default(), path))
	out.Reset()
	require.NoError(t, runConfig(&out, Args{ConfigPath: path}))
	assert.Contains(t, out.String(), "[server]")
	assert.Contains(t, out.String(), "ws://localhost:8000/ws")

	out.Reset()
	require.NoError(t, runConfig(&out, Args{ConfigPath: path, Subcommand: "show", JSON: true}))
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Contains(t, decoded, "reconnect")

	assert.Error(t, runConfig(&out, Args{ConfigPath: path, Subcommand: "bogus"}))
}

// =============================================================================
// CREDENTIAL COMMAND TESTS (login.go)
// =============================================================================

func TestStoreTokenAndWhoami(t *testing.T) {
	dir := t.TempDir()
	tokenPath := filepath.Join(dir, "token")

	var out bytes.Buffer
	require.NoError(t, storeToken(&out, tokenPath, "opaque"))
	assert.Contains(t, out.String(), "Token saved")

	data, err := os.ReadFile(tokenPath)
	require.NoError(t, err)
	assert.Equal(t, "opaque\n", string(data))

	store, err := auth.NewStore(tokenPath, nil)
	require.NoError(t, err)
	out.Reset()
	printWhoami(&out, identity.Identity{Username: "alice", IsGuest: true}, store)
	assert.Contains(t, out.String(), "alice (guest)")
	assert.Contains(t, out.String(), "present")

	assert.Error(t, storeToken(&out, tokenPath, "   "))
}

func TestReadToken_FromPipe(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()
	_, err = w.WriteString("  tok-123 \n")
	require.NoError(t, err)
	w.Close()

	got, err := readSecret(r, &bytes.Buffer{}, "Token")
	require.NoError(t, err)
	assert.Equal(t, "tok-123", got)
}

// accountServer answers the account endpoints for alice/wonderland.
func accountServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/auth/signup", func(w http.ResponseWriter, r *http.Request) {
		var c auth.Credentials
		_ = json.NewDecoder(r.Body).Decode(&c)
		if c.Username == "alice" {
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"detail":"Username already exists."}`))
			return
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":9,"username":"` + c.Username + `","is_guest":false}`))
	})
	mux.HandleFunc("/api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var c auth.Credentials
		_ = json.NewDecoder(r.Body).Decode(&c)
		if c.Username == "alice" && c.Password != "wonderland" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"Incorrect username or password"}`))
			return
		}
		_, _ = w.Write([]byte(`{"access_token":"tok-` + c.Username + `","token_type":"bearer"}`))
	})
	mux.HandleFunc("/api/v1/auth/me", func(w http.ResponseWriter, r *http.Request) {
		name, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer tok-")
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"Could not validate credentials"}`))
			return
		}
		_, _ = w.Write([]byte(`{"id":1,"username":"` + name + `","is_guest":false}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func credentialFixtures(t *testing.T) (*auth.Store, *identity.Provider) {
	t.Helper()
	dir := t.TempDir()
	store, err := auth.NewStore(filepath.Join(dir, "token"), nil)
	require.NoError(t, err)
	return store, identity.NewProvider(filepath.Join(dir, "identity.json"), nil)
}

func TestPasswordLogin(t *testing.T) {
	api := auth.NewAPIClient(accountServer(t).URL, nil)
	store, ident := credentialFixtures(t)
	ctx := context.Background()

	var out bytes.Buffer
	err := passwordLogin(ctx, &out, api, store, ident, auth.Credentials{Username: "alice", Password: "wonderland"})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Logged in")

	tok, ok := store.Token()
	require.True(t, ok)
	assert.Equal(t, "tok-alice", tok)
	assert.Equal(t, "alice", ident.Username())
	assert.False(t, ident.IsGuest())
}

func TestPasswordLogin_Refused(t *testing.T) {
	api := auth.NewAPIClient(accountServer(t).URL, nil)
	store, ident := credentialFixtures(t)

	err := passwordLogin(context.Background(), &bytes.Buffer{}, api, store, ident, auth.Credentials{Username: "alice", Password: "guess"})
	require.Error(t, err)
	ae, ok := auth.AsAuthError(err)
	require.True(t, ok)
	assert.Equal(t, "Incorrect username or password", ae.Detail)
	assert.Contains(t, err.Error(), "login refused")

	_, has := store.Token()
	assert.False(t, has, "nothing stored on failure")
}

func TestSignupAccount(t *testing.T) {
	api := auth.NewAPIClient(accountServer(t).URL, nil)
	store, ident := credentialFixtures(t)
	ctx := context.Background()

	var out bytes.Buffer
	require.NoError(t, signupAccount(ctx, &out, api, store, ident, auth.Credentials{Username: "bob", Password: "builder"}))
	assert.Contains(t, out.String(), "Account created:")
	tok, _ := store.Token()
	assert.Equal(t, "tok-bob", tok)
	assert.Equal(t, "bob", ident.Username())

	err := signupAccount(ctx, &out, api, store, ident, auth.Credentials{Username: "alice", Password: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is taken")
	ae, ok := auth.AsAuthError(err)
	require.True(t, ok)
	assert.True(t, ae.Conflict())
}

func TestPrintServerAccount(t *testing.T) {
	api := auth.NewAPIClient(accountServer(t).URL, nil)
	store, _ := credentialFixtures(t)
	ctx := context.Background()

	var out bytes.Buffer
	printServerAccount(ctx, &out, api, store)
	assert.Empty(t, out.String(), "no token, no request")

	require.NoError(t, store.SetToken("tok-alice"))
	printServerAccount(ctx, &out, api, store)
	assert.Contains(t, out.String(), "alice (id 1)")

	out.Reset()
	require.NoError(t, store.SetToken("stale"))
	printServerAccount(ctx, &out, api, store)
	assert.Contains(t, out.String(), "token rejected (Could not validate credentials)")

	out.Reset()
	require.NoError(t, store.SetToken("tok-alice"))
	printServerAccount(ctx, &out, auth.NewAPIClient("http://127.0.0.1:1", nil), store)
	assert.Contains(t, out.String(), "unreachable")
}

// =============================================================================
// SEND TESTS (send.go)
// =============================================================================

// helloServer is a transport.Conn that answers HELLO like the chat server.
type helloServer struct {
	inbound chan []byte
	done    chan struct{}

	mu      sync.Mutex
	written []string
	closed  bool
}

func (s *helloServer) ReadMessage() ([]byte, error) {
	select {
	case data := <-s.inbound:
		return data, nil
	case <-s.done:
		return nil, errors.New("closed")
	}
}

func (s *helloServer) WriteMessage(data []byte) error {
	var frame struct {
		Type string `json:"type"`
	}
	_ = json.Unmarshal(data, &frame)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.New("closed")
	}
	s.written = append(s.written, frame.Type)
	if frame.Type == "hello" {
		s.inbound <- []byte(`{"type":"hello","payload":{"user":{"username":"bot","is_guest":true}}}`)
	}
	return nil
}

func (s *helloServer) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.done)
	}
	return nil
}

func (s *helloServer) types() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.written...)
}

type helloDialer struct{ conn *helloServer }

func (d *helloDialer) Dial(ctx context.Context, url string) (transport.Conn, error) {
	return d.conn, nil
}

type refusingDialer struct{}

func (refusingDialer) Dial(ctx context.Context, url string) (transport.Conn, error) {
	return nil, errors.New("connection refused")
}

func sendConfig(t *testing.T) *config.Config {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Auth.TokenFile = filepath.Join(dir, "token")
	cfg.Auth.IdentityFile = filepath.Join(dir, "identity.json")
	cfg.UI.DefaultChannel = 2
	return cfg
}

func TestSendOnce(t *testing.T) {
	conn := &helloServer{inbound: make(chan []byte, 4), done: make(chan struct{})}

	err := sendOnce(context.Background(), sendConfig(t), nil, &helloDialer{conn: conn}, "build green")
	require.NoError(t, err)
	assert.Equal(t, []string{"hello", "channel_join", "chat_send"}, conn.types())
}

func TestSendOnce_NoChannel(t *testing.T) {
	cfg := sendConfig(t)
	cfg.UI.DefaultChannel = 0
	err := sendOnce(context.Background(), cfg, nil, refusingDialer{}, "hi")
	assert.Error(t, err)
}

func TestSendOnce_Unreachable(t *testing.T) {
	cfg := sendConfig(t)
	cfg.Reconnect.MaxAttempts = 1
	cfg.Reconnect.InitialDelayMs = 10
	cfg.Reconnect.MaxDelayMs = 10

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := sendOnce(ctx, cfg, nil, refusingDialer{}, "hi")
	assert.Error(t, err)
}
