// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across parley.
//
// # Key Functions
//
// File Operations:
//   - AtomicWriteFile: crash-safe file writing with fsync, used for the
//     config, token and identity files
//
// String Utilities:
//   - TruncateRunes: UTF-8 safe truncation with ellipsis
//   - TruncateWidth, StringWidth: display-width aware helpers for the
//     chat view, backed by go-runewidth
//
// # Usage
//
//	err := util.AtomicWriteFile(path, data, 0600)
//	line := util.TruncateWidth(content, width)
package util
