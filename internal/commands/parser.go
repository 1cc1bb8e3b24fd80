// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"strings"
	"unicode"
)

// =============================================================================
// PARSE RESULT
// =============================================================================

// ParseResult contains the result of parsing composer input.
type ParseResult struct {
	// IsCommand is true if the input starts with /
	IsCommand bool

	// Command is the matched command (nil if not found)
	Command *Command

	// CommandName is the raw command name as typed (e.g., "/Mute")
	CommandName string

	// Args are the whitespace-separated arguments
	Args []string

	// RawInput is the trimmed input
	RawInput string
}

// =============================================================================
// PARSER
// =============================================================================

// Parser splits slash commands into a name and arguments.
type Parser struct {
	registry *Registry
}

// NewParser creates a parser with the given registry.
func NewParser(registry *Registry) *Parser {
	return &Parser{registry: registry}
}

// Parse parses composer input. IsCommand is false if the input does not
// start with /.
func (p *Parser) Parse(input string) ParseResult {
	input = strings.TrimSpace(input)
	result := ParseResult{RawInput: input}

	if !strings.HasPrefix(input, "/") {
		return result
	}
	result.IsCommand = true

	parts := strings.Fields(input)
	result.CommandName = parts[0]
	if len(parts) > 1 {
		result.Args = parts[1:]
	}
	if result.CommandName != "/" {
		result.Command = p.registry.Get(result.CommandName)
	}
	return result
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// IsCommand returns true if the input appears to be a command.
func IsCommand(input string) bool {
	return strings.HasPrefix(strings.TrimSpace(input), "/")
}

// ExtractCommandName extracts just the command name from input.
// e.g., "/mute bob 30" -> "/mute"
func ExtractCommandName(input string) string {
	input = strings.TrimSpace(input)
	if !strings.HasPrefix(input, "/") {
		return ""
	}
	end := strings.IndexFunc(input, unicode.IsSpace)
	if end == -1 {
		return input
	}
	return input[:end]
}

// GetPartialCommand returns the partial command being typed, or "" once the
// name is complete.
func GetPartialCommand(input string) string {
	if !strings.HasPrefix(input, "/") {
		return ""
	}
	if strings.IndexFunc(input, unicode.IsSpace) == -1 {
		return input
	}
	return ""
}

// GetPartialArg returns the index and text of the argument being typed.
func GetPartialArg(input string) (int, string) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return 0, ""
	}
	if strings.HasSuffix(input, " ") {
		return len(parts) - 1, ""
	}
	if len(parts) == 1 {
		return 0, ""
	}
	return len(parts) - 2, parts[len(parts)-1]
}
