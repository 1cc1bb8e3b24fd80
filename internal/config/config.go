// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"

	"github.com/jeranaias/parley-tui/internal/auth"
	"github.com/jeranaias/parley-tui/internal/logging"
	"github.com/jeranaias/parley-tui/internal/session"
	"github.com/jeranaias/parley-tui/internal/transport"
	"github.com/jeranaias/parley-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete parley configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	Server    ServerConfig    `toml:"server" json:"server"`
	Reconnect ReconnectConfig `toml:"reconnect" json:"reconnect"`
	Session   SessionConfig   `toml:"session" json:"session"`
	Outbound  OutboundConfig  `toml:"outbound" json:"outbound"`
	Auth      AuthConfig      `toml:"auth" json:"auth"`
	Log       LogConfig       `toml:"log" json:"log"`
	UI        UIConfig        `toml:"ui" json:"ui"`
}

// ServerConfig locates the chat server.
type ServerConfig struct {
	// URL is the WebSocket endpoint (ws:// or wss://)
	URL string `toml:"url" json:"url"`
	// APIURL is the HTTP base for account requests; empty derives it from URL
	APIURL string `toml:"api_url" json:"api_url"`
	// HandshakeTimeoutSecs bounds the WebSocket opening handshake
	HandshakeTimeoutSecs int `toml:"handshake_timeout_secs" json:"handshake_timeout_secs"`
	// HelloTimeoutSecs drops a connection whose HELLO goes unanswered (0 = wait forever)
	HelloTimeoutSecs int `toml:"hello_timeout_secs" json:"hello_timeout_secs"`
	// WriteTimeoutSecs bounds a single frame write
	WriteTimeoutSecs int `toml:"write_timeout_secs" json:"write_timeout_secs"`
}

// ReconnectConfig controls automatic reconnection.
type ReconnectConfig struct {
	InitialDelayMs int     `toml:"initial_delay_ms" json:"initial_delay_ms"`
	MaxDelayMs     int     `toml:"max_delay_ms" json:"max_delay_ms"`
	Multiplier     float64 `toml:"multiplier" json:"multiplier"`
	// Jitter is the randomization factor applied to each delay (0.0-1.0)
	Jitter float64 `toml:"jitter" json:"jitter"`
	// MaxAttempts gives up after this many consecutive failures (0 = never)
	MaxAttempts int `toml:"max_attempts" json:"max_attempts"`
	// ExplicitDelayMs separates close and connect on an explicit reconnect
	ExplicitDelayMs int `toml:"explicit_delay_ms" json:"explicit_delay_ms"`
}

// SessionConfig tunes the derived session state.
type SessionConfig struct {
	TypingTimeoutSecs  int `toml:"typing_timeout_secs" json:"typing_timeout_secs"`
	TypingThrottleSecs int `toml:"typing_throttle_secs" json:"typing_throttle_secs"`
	MuteTickMs         int `toml:"mute_tick_ms" json:"mute_tick_ms"`
	DedupCapacity      int `toml:"dedup_capacity" json:"dedup_capacity"`
	MaxLogEntries      int `toml:"max_log_entries" json:"max_log_entries"`
}

// OutboundConfig controls sends made before the handshake completes.
type OutboundConfig struct {
	QueueEnabled bool `toml:"queue_enabled" json:"queue_enabled"`
	QueueSize    int  `toml:"queue_size" json:"queue_size"`
}

// AuthConfig locates the credential files.
type AuthConfig struct {
	TokenFile    string `toml:"token_file" json:"token_file"`
	IdentityFile string `toml:"identity_file" json:"identity_file"`
}

// LogConfig configures the log file.
type LogConfig struct {
	// Level is debug, info, warn or error
	Level string `toml:"level" json:"level"`
	// File is the log path; "-" logs to stderr
	File string `toml:"file" json:"file"`
}

// UIConfig contains terminal view settings.
type UIConfig struct {
	// DefaultChannel is joined on startup (0 = none)
	DefaultChannel int  `toml:"default_channel" json:"default_channel"`
	ShowTimestamps bool `toml:"show_timestamps" json:"show_timestamps"`
	// Theme is "dark" or "light"
	Theme string `toml:"theme" json:"theme"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with the default values. File paths are filled
// in by fillDefaults since they depend on the home directory.
func Default() *Config {
	return &Config{
		Version: "1",

		Server: ServerConfig{
			URL:                  "ws://localhost:8000/ws",
			HandshakeTimeoutSecs: 10,
			HelloTimeoutSecs:     10,
			WriteTimeoutSecs:     10,
		},

		Reconnect: ReconnectConfig{
			InitialDelayMs:  3000,
			MaxDelayMs:      30000,
			Multiplier:      2,
			Jitter:          0.2,
			MaxAttempts:     0,
			ExplicitDelayMs: 500,
		},

		Session: SessionConfig{
			TypingTimeoutSecs:  10,
			TypingThrottleSecs: 8,
			MuteTickMs:         100,
			DedupCapacity:      4096,
			MaxLogEntries:      1000,
		},

		Outbound: OutboundConfig{
			QueueEnabled: true,
			QueueSize:    64,
		},

		Log: LogConfig{
			Level: "info",
		},

		UI: UIConfig{
			DefaultChannel: 1,
			ShowTimestamps: true,
			Theme:          "dark",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the parley configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".parley"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	return pathInConfigDir("config.toml")
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	return pathInConfigDir("config.json")
}

func pathInConfigDir(name string) (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

// defaultPath returns name inside the config directory, or a path relative
// to the working directory when there is no home.
func defaultPath(name string) string {
	p, err := pathInConfigDir(name)
	if err != nil {
		return filepath.Join(".parley", name)
	}
	return p
}

// ensureSecurePermissions tightens a config file to 0600.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode := info.Mode().Perm(); mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the default location. TOML is tried first,
// then JSON, then built-in defaults. Environment overrides are applied last.
// A file that fails to parse is reported alongside the defaults.
func Load() (*Config, error) {
	var loadErr error

	for _, locate := range []func() (string, error){ConfigPathTOML, ConfigPathJSON} {
		path, err := locate()
		if err != nil {
			continue
		}
		if _, statErr := os.Stat(path); statErr != nil {
			continue
		}
		cfg, err := LoadFromPath(path)
		if err != nil {
			loadErr = err
			break
		}
		return cfg, nil
	}

	cfg := Default()
	cfg.ApplyEnvOverrides()
	if err := finish(cfg); err != nil {
		return nil, err
	}
	return cfg, loadErr
}

// LoadFromPath loads configuration from a specific file with full
// validation. Files ending in .json are read as JSON, anything else as TOML.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if err := ensureSecurePermissions(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	cfg.ApplyEnvOverrides()
	if err := finish(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadTOML decodes a TOML file over cfg.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON decodes a JSON file over cfg.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

func finish(cfg *Config) error {
	fillDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// fillDefaults fills in missing values. Zero numbers are treated as unset
// except where zero is meaningful (hello timeout, max attempts, default
// channel).
func fillDefaults(cfg *Config) {
	defaults := Default()

	if cfg.Version == "" {
		cfg.Version = defaults.Version
	}

	if cfg.Server.URL == "" {
		cfg.Server.URL = defaults.Server.URL
	}
	if cfg.Server.HandshakeTimeoutSecs == 0 {
		cfg.Server.HandshakeTimeoutSecs = defaults.Server.HandshakeTimeoutSecs
	}
	if cfg.Server.WriteTimeoutSecs == 0 {
		cfg.Server.WriteTimeoutSecs = defaults.Server.WriteTimeoutSecs
	}

	if cfg.Reconnect.InitialDelayMs == 0 {
		cfg.Reconnect.InitialDelayMs = defaults.Reconnect.InitialDelayMs
	}
	if cfg.Reconnect.MaxDelayMs == 0 {
		cfg.Reconnect.MaxDelayMs = defaults.Reconnect.MaxDelayMs
	}
	if cfg.Reconnect.Multiplier == 0 {
		cfg.Reconnect.Multiplier = defaults.Reconnect.Multiplier
	}
	if cfg.Reconnect.ExplicitDelayMs == 0 {
		cfg.Reconnect.ExplicitDelayMs = defaults.Reconnect.ExplicitDelayMs
	}

	if cfg.Session.TypingTimeoutSecs == 0 {
		cfg.Session.TypingTimeoutSecs = defaults.Session.TypingTimeoutSecs
	}
	if cfg.Session.TypingThrottleSecs == 0 {
		cfg.Session.TypingThrottleSecs = defaults.Session.TypingThrottleSecs
	}
	if cfg.Session.MuteTickMs == 0 {
		cfg.Session.MuteTickMs = defaults.Session.MuteTickMs
	}
	if cfg.Session.DedupCapacity == 0 {
		cfg.Session.DedupCapacity = defaults.Session.DedupCapacity
	}
	if cfg.Session.MaxLogEntries == 0 {
		cfg.Session.MaxLogEntries = defaults.Session.MaxLogEntries
	}

	if cfg.Outbound.QueueSize == 0 {
		cfg.Outbound.QueueSize = defaults.Outbound.QueueSize
	}

	if cfg.Auth.TokenFile == "" {
		cfg.Auth.TokenFile = defaultPath("token")
	}
	if cfg.Auth.IdentityFile == "" {
		cfg.Auth.IdentityFile = defaultPath("identity.json")
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = defaults.Log.Level
	}
	if cfg.Log.File == "" {
		cfg.Log.File = defaultPath("parley.log")
	}

	if cfg.UI.Theme == "" {
		cfg.UI.Theme = defaults.UI.Theme
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes the configuration as TOML with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# parley configuration file\n")
	buf.WriteString("# Durations are in the unit named by each key.\n\n")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveJSON writes the configuration as JSON with 0600 permissions.
func SaveJSON(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns ValidateErrors listing
// every problem, or nil.
func (c *Config) Validate() error {
	var errs ValidateErrors
	add := func(field, format string, args ...interface{}) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	// Server
	if u, err := url.Parse(c.Server.URL); err != nil {
		add("server.url", "invalid URL: %v", err)
	} else if u.Scheme != "ws" && u.Scheme != "wss" {
		add("server.url", "scheme must be ws or wss, got '%s'", u.Scheme)
	} else if u.Host == "" {
		add("server.url", "missing host")
	}
	if c.Server.APIURL != "" {
		if u, err := url.Parse(c.Server.APIURL); err != nil {
			add("server.api_url", "invalid URL: %v", err)
		} else if u.Scheme != "http" && u.Scheme != "https" {
			add("server.api_url", "scheme must be http or https, got '%s'", u.Scheme)
		} else if u.Host == "" {
			add("server.api_url", "missing host")
		}
	}
	if c.Server.HandshakeTimeoutSecs < 0 {
		add("server.handshake_timeout_secs", "must not be negative")
	}
	if c.Server.HelloTimeoutSecs < 0 {
		add("server.hello_timeout_secs", "must not be negative")
	}
	if c.Server.WriteTimeoutSecs < 0 {
		add("server.write_timeout_secs", "must not be negative")
	}

	// Reconnect
	if c.Reconnect.InitialDelayMs < 0 {
		add("reconnect.initial_delay_ms", "must not be negative")
	}
	if c.Reconnect.MaxDelayMs < c.Reconnect.InitialDelayMs {
		add("reconnect.max_delay_ms", "must be at least initial_delay_ms (%d)", c.Reconnect.InitialDelayMs)
	}
	if c.Reconnect.Multiplier < 1 {
		add("reconnect.multiplier", "must be at least 1, got %g", c.Reconnect.Multiplier)
	}
	if c.Reconnect.Jitter < 0 || c.Reconnect.Jitter > 1 {
		add("reconnect.jitter", "must be between 0 and 1, got %g", c.Reconnect.Jitter)
	}
	if c.Reconnect.MaxAttempts < 0 {
		add("reconnect.max_attempts", "must not be negative")
	}
	if c.Reconnect.ExplicitDelayMs < 0 {
		add("reconnect.explicit_delay_ms", "must not be negative")
	}

	// Session
	if c.Session.TypingTimeoutSecs < 0 {
		add("session.typing_timeout_secs", "must not be negative")
	}
	if c.Session.TypingThrottleSecs < 0 {
		add("session.typing_throttle_secs", "must not be negative")
	}
	if c.Session.MuteTickMs <= 0 || c.Session.MuteTickMs > 1000 {
		add("session.mute_tick_ms", "must be between 1 and 1000")
	}
	if c.Session.DedupCapacity < 0 {
		add("session.dedup_capacity", "must not be negative")
	}
	if c.Session.MaxLogEntries < 0 {
		add("session.max_log_entries", "must not be negative")
	}

	// Outbound
	if c.Outbound.QueueSize < 0 {
		add("outbound.queue_size", "must not be negative")
	}

	// Log
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		add("log.level", "%v", err)
	}

	// UI
	if c.UI.DefaultChannel < 0 {
		add("ui.default_channel", "must not be negative")
	}
	if t := strings.ToLower(c.UI.Theme); t != "" && t != "dark" && t != "light" {
		add("ui.theme", "invalid theme '%s', must be one of: dark, light", c.UI.Theme)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides:
//   - PARLEY_URL: overrides server.url
//   - PARLEY_API_URL: overrides server.api_url
//   - PARLEY_TOKEN_FILE: overrides auth.token_file
//   - PARLEY_LOG_LEVEL: overrides log.level
//   - PARLEY_LOG_FILE: overrides log.file
//   - PARLEY_CHANNEL: overrides ui.default_channel
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("PARLEY_URL"); v != "" {
		c.Server.URL = v
	}
	if v := os.Getenv("PARLEY_API_URL"); v != "" {
		c.Server.APIURL = v
	}
	if v := os.Getenv("PARLEY_TOKEN_FILE"); v != "" {
		c.Auth.TokenFile = v
	}
	if v := os.Getenv("PARLEY_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("PARLEY_LOG_FILE"); v != "" {
		c.Log.File = v
	}
	if v := os.Getenv("PARLEY_CHANNEL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.UI.DefaultChannel = n
		}
	}
}

// =============================================================================
// COMPONENT CONFIGURATION
// =============================================================================

func secs(n int) time.Duration { return time.Duration(n) * time.Second }
func millis(n int) time.Duration { return time.Duration(n) * time.Millisecond }

// TransportConfig returns the connection manager settings.
func (c *Config) TransportConfig() transport.Config {
	return transport.Config{
		URL:                    c.Server.URL,
		HelloTimeout:           secs(c.Server.HelloTimeoutSecs),
		ReconnectDelay:         millis(c.Reconnect.InitialDelayMs),
		ReconnectMaxDelay:      millis(c.Reconnect.MaxDelayMs),
		ReconnectMultiplier:    c.Reconnect.Multiplier,
		ReconnectJitter:        c.Reconnect.Jitter,
		MaxReconnectAttempts:   c.Reconnect.MaxAttempts,
		ExplicitReconnectDelay: millis(c.Reconnect.ExplicitDelayMs),
		QueueEnabled:           c.Outbound.QueueEnabled,
		QueueSize:              c.Outbound.QueueSize,
	}
}

// Dialer returns the production WebSocket dialer.
func (c *Config) Dialer() *transport.WebsocketDialer {
	return &transport.WebsocketDialer{
		HandshakeTimeout: secs(c.Server.HandshakeTimeoutSecs),
		WriteTimeout:     secs(c.Server.WriteTimeoutSecs),
	}
}

// APIBaseURL returns server.api_url, or the scheme and host of server.url
// mapped to http (ws) or https (wss).
func (c *Config) APIBaseURL() string {
	if c.Server.APIURL != "" {
		return strings.TrimSuffix(c.Server.APIURL, "/")
	}
	u, err := url.Parse(c.Server.URL)
	if err != nil || u.Host == "" {
		return auth.DefaultAPIURL
	}
	scheme := "http"
	if u.Scheme == "wss" {
		scheme = "https"
	}
	return scheme + "://" + u.Host
}

// AuthAPI returns the account client, bounded by the handshake timeout.
func (c *Config) AuthAPI(log *zap.Logger) *auth.APIClient {
	return auth.NewAPIClient(c.APIBaseURL(), log).WithTimeout(secs(c.Server.HandshakeTimeoutSecs))
}

// SessionConfig returns the reducer settings.
func (c *Config) SessionConfig() session.Config {
	return session.Config{
		TypingTimeout:  secs(c.Session.TypingTimeoutSecs),
		TypingThrottle: secs(c.Session.TypingThrottleSecs),
		MuteTick:       millis(c.Session.MuteTickMs),
		DedupCapacity:  c.Session.DedupCapacity,
		MaxLogEntries:  c.Session.MaxLogEntries,
	}
}

// LogOptions returns the logger settings.
func (c *Config) LogOptions() logging.Options {
	return logging.Options{Level: c.Log.Level, File: c.Log.File}
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g., "server.url").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a configuration value using dot notation. String values are
// converted to the field's type.
func (c *Config) Set(key string, value interface{}) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

func (c *Config) lookup(key string) (reflect.Value, error) {
	if key == "" {
		return reflect.Value{}, errors.New("empty key")
	}
	parts := strings.Split(key, ".")

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)
		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})
		if !field.IsValid() {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}
		if i == len(parts)-1 {
			return field, nil
		}
		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName converts a snake_case or kebab-case name to its Go field equivalent.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})

	var result strings.Builder
	for _, part := range parts {
		if len(part) > 0 {
			result.WriteString(strings.ToUpper(string(part[0])))
			result.WriteString(strings.ToLower(part[1:]))
		}
	}
	return result.String()
}

// setFieldValue sets a reflect.Value from an interface{} value with type conversion.
func setFieldValue(field reflect.Value, value interface{}) error {
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Float64:
			floatVal, err := strconv.ParseFloat(strVal, 64)
			if err != nil {
				return fmt.Errorf("invalid float value: %v", err)
			}
			field.SetFloat(floatVal)
			return nil
		case reflect.Bool:
			lower := strings.ToLower(strVal)
			field.SetBool(lower == "1" || lower == "true" || lower == "yes")
			return nil
		}
	}

	val := reflect.ValueOf(value)
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) {
		field.Set(val.Convert(field.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// GetAllKeys returns all configuration keys in dot notation.
func GetAllKeys() []string {
	return []string{
		"version",
		"server.url",
		"server.api_url",
		"server.handshake_timeout_secs",
		"server.hello_timeout_secs",
		"server.write_timeout_secs",
		"reconnect.initial_delay_ms",
		"reconnect.max_delay_ms",
		"reconnect.multiplier",
		"reconnect.jitter",
		"reconnect.max_attempts",
		"reconnect.explicit_delay_ms",
		"session.typing_timeout_secs",
		"session.typing_throttle_secs",
		"session.mute_tick_ms",
		"session.dedup_capacity",
		"session.max_log_entries",
		"outbound.queue_enabled",
		"outbound.queue_size",
		"auth.token_file",
		"auth.identity_file",
		"log.level",
		"log.file",
		"ui.default_channel",
		"ui.show_timestamps",
		"ui.theme",
	}
}

// String returns the config as indented JSON for display.
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}
