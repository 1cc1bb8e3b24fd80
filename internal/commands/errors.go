// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

// CommandError is a malformed or unknown slash command. It is shown to the
// user and never sent.
type CommandError struct {
	Command string
	Message string
	// Usage is set when the arguments did not fit the command.
	Usage string
}

func (e *CommandError) Error() string {
	msg := e.Message
	if e.Command != "" {
		msg = e.Command + ": " + msg
	}
	if e.Usage != "" {
		msg += " (usage: " + e.Usage + ")"
	}
	return msg
}

// ValidationError is an argument with the right arity but a bad value, such
// as a non-numeric channel id.
type ValidationError struct {
	Command  string
	Arg      string
	Message  string
	Got      string
	Expected string
}

func (e *ValidationError) Error() string {
	msg := e.Command + ": " + e.Message
	if e.Arg != "" {
		msg += " for argument '" + e.Arg + "'"
	}
	if e.Got != "" {
		msg += " (got: " + e.Got + ")"
	}
	if e.Expected != "" {
		msg += " - expected: " + e.Expected
	}
	return msg
}
