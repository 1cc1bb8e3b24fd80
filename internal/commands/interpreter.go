// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"github.com/jeranaias/parley-tui/internal/protocol"
)

// Result is an interpreted command.
type Result struct {
	Command *Command
	Args    []string
	Action  Action
	// Payload is set for ActionSend.
	Payload protocol.Payload
}

// Interpreter validates parsed commands and builds their payloads.
type Interpreter struct {
	registry *Registry
	parser   *Parser
}

// NewInterpreter creates an interpreter over registry.
func NewInterpreter(registry *Registry) *Interpreter {
	return &Interpreter{registry: registry, parser: NewParser(registry)}
}

// Registry returns the command registry.
func (i *Interpreter) Registry() *Registry {
	return i.registry
}

// Parse exposes the underlying parser.
func (i *Interpreter) Parse(input string) ParseResult {
	return i.parser.Parse(input)
}

// Interpret parses input and builds the command's payload. Input that is
// not a command yields a *CommandError; callers check IsCommand first.
func (i *Interpreter) Interpret(input string, ctx Context) (Result, error) {
	parsed := i.parser.Parse(input)
	if !parsed.IsCommand {
		return Result{}, &CommandError{Message: "not a command"}
	}
	if parsed.Command == nil {
		return Result{}, &CommandError{Command: parsed.CommandName, Message: "unknown command"}
	}

	cmd := parsed.Command
	if !cmd.AcceptsArgs(len(parsed.Args)) {
		return Result{}, &CommandError{
			Command: cmd.Name,
			Message: "wrong number of arguments",
			Usage:   cmd.Usage,
		}
	}

	res := Result{Command: cmd, Args: parsed.Args, Action: cmd.Action}
	if cmd.Action != ActionSend {
		return res, nil
	}
	payload, err := cmd.Build(ctx, parsed.Args)
	if err != nil {
		return Result{}, err
	}
	res.Payload = payload
	return res, nil
}
