// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth stores the bearer token presented in HELLO and talks to the
// server's account endpoints (signup, login, me) over HTTP.
//
// The token lives in a single file (default ~/.parley/token, mode 0600).
// Tokens are issued by the server; this package only keeps them, checks
// the JWT exp claim without verifying the signature, and watches the file
// so a login or logout done by another parley process is picked up.
//
// # Usage
//
//	store, err := auth.NewStore(path, log)
//	if tok, ok := store.Token(); ok {
//	    // send tok with HELLO
//	}
//	store.Watch(ctx, func() { manager.Reconnect() })
//
//	api := auth.NewAPIClient("http://localhost:8000", log)
//	tok, err := api.Login(ctx, auth.Credentials{Username: "alice", Password: pw})
//	store.SetToken(tok.AccessToken)
package auth
