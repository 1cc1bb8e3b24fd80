// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package client wires the chat session core together.
//
// A Client owns the codec, the connection manager, the session reducer and
// the credential and identity collaborators. Inbound envelopes flow from the
// manager's read loop into the reducer; outbound intents from the composer
// go through the command interpreter and the codec to the manager.
//
// # Usage
//
//	c, err := client.New(client.Options{Config: cfg, Logger: log})
//	if err != nil {
//	    return err
//	}
//	defer c.Close()
//	_ = c.Start(ctx)
//	_, err = c.Submit("/mute bob 60 cool off")
package client
