// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for parley.
//
// Supports both TOML and JSON configuration formats, with defaults,
// environment variable overrides, and validation.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - ServerConfig: Chat server endpoint and handshake timeouts
//   - ReconnectConfig: Backoff schedule for automatic reconnection
//   - SessionConfig: Typing, mute and dedup tuning
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (PARLEY_*)
//   - ~/.parley/config.toml
//   - ~/.parley/config.json
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	mgr := transport.NewManager(cfg.TransportConfig(), cfg.Dialer(), c, opts)
package config
