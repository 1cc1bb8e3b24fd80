// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"sort"
	"strings"

	"github.com/jeranaias/parley-tui/internal/protocol"
)

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

// Context is what a command needs to know about the composer it was typed in.
type Context struct {
	// Channel is the active channel id.
	Channel int
}

// Action tells the caller what to do with an interpreted command.
type Action int

const (
	// ActionSend means Result.Payload should be sent.
	ActionSend Action = iota
	// ActionHelp asks the view to show command help.
	ActionHelp
	// ActionQuit asks the application to exit.
	ActionQuit
)

// BuildFunc builds the outbound payload for a command. args has already
// passed the arity check.
type BuildFunc func(ctx Context, args []string) (protocol.Payload, error)

// Command represents a slash command.
type Command struct {
	// Name is the primary command name (e.g., "/kick")
	Name string

	// Aliases are alternative names (e.g., "/k")
	Aliases []string

	// Description is shown in help and completion
	Description string

	// Usage shows argument syntax (e.g., "/kick <target> [reason...]")
	Usage string

	// Args describes positional arguments for completion
	Args []ArgDef

	// MinArgs and MaxArgs bound the argument count. MaxArgs < 0 means
	// unbounded.
	MinArgs int
	MaxArgs int

	// Action is ActionSend for commands that produce a payload
	Action Action

	// Build produces the payload for ActionSend commands
	Build BuildFunc

	// Category for grouping in help display
	Category string
}

// AcceptsArgs reports whether n arguments fit the command's arity.
func (c *Command) AcceptsArgs(n int) bool {
	if n < c.MinArgs {
		return false
	}
	return c.MaxArgs < 0 || n <= c.MaxArgs
}

// ArgDef defines an argument for a command.
type ArgDef struct {
	Name        string
	Required    bool
	Type        ArgType
	Description string
}

// ArgType indicates what kind of completion to provide.
type ArgType int

const (
	ArgTypeString   ArgType = iota // Free-form text
	ArgTypeMember                  // Username from the channel roster
	ArgTypeDuration                // Seconds
	ArgTypeChannel                 // Channel id
)

// =============================================================================
// COMMAND REGISTRY
// =============================================================================

// Registry holds all registered commands. Names are matched without regard
// to case.
type Registry struct {
	commands map[string]*Command
	aliases  map[string]*Command
}

// NewRegistry creates a registry with the built-in commands.
func NewRegistry() *Registry {
	r := &Registry{
		commands: make(map[string]*Command),
		aliases:  make(map[string]*Command),
	}
	r.registerBuiltins()
	return r
}

// Register adds a command to the registry.
func (r *Registry) Register(cmd *Command) {
	r.commands[strings.ToLower(cmd.Name)] = cmd
	for _, alias := range cmd.Aliases {
		r.aliases[strings.ToLower(alias)] = cmd
	}
}

// Get retrieves a command by name or alias. The leading slash is optional.
func (r *Registry) Get(name string) *Command {
	name = strings.ToLower(name)
	if !strings.HasPrefix(name, "/") {
		name = "/" + name
	}
	if cmd, ok := r.commands[name]; ok {
		return cmd
	}
	if cmd, ok := r.aliases[name]; ok {
		return cmd
	}
	return nil
}

// All returns all registered commands sorted by name.
func (r *Registry) All() []*Command {
	cmds := make([]*Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		cmds = append(cmds, cmd)
	}
	sort.Slice(cmds, func(i, j int) bool { return cmds[i].Name < cmds[j].Name })
	return cmds
}

// ByCategory returns commands grouped by category.
func (r *Registry) ByCategory() map[string][]*Command {
	result := make(map[string][]*Command)
	for _, cmd := range r.All() {
		category := cmd.Category
		if category == "" {
			category = "General"
		}
		result[category] = append(result[category], cmd)
	}
	return result
}

// =============================================================================
// BUILT-IN COMMANDS
// =============================================================================

func (r *Registry) registerBuiltins() {
	r.Register(&Command{
		Name:        "/kick",
		Aliases:     []string{"/k"},
		Description: "Remove a user from the channel",
		Usage:       "/kick <target> [reason...]",
		Args: []ArgDef{
			{Name: "target", Required: true, Type: ArgTypeMember, Description: "Username to kick"},
			{Name: "reason", Type: ArgTypeString, Description: "Reason shown to the channel"},
		},
		MinArgs:  1,
		MaxArgs:  -1,
		Category: "Moderation",
		Build:    buildKick,
	})

	r.Register(&Command{
		Name:        "/mute",
		Aliases:     []string{"/m"},
		Description: "Silence a user, for a number of seconds or indefinitely",
		Usage:       "/mute <target> [seconds] [reason...]",
		Args: []ArgDef{
			{Name: "target", Required: true, Type: ArgTypeMember, Description: "Username to mute"},
			{Name: "seconds", Type: ArgTypeDuration, Description: "Mute length; omit for indefinite"},
			{Name: "reason", Type: ArgTypeString, Description: "Reason shown to the channel"},
		},
		MinArgs:  1,
		MaxArgs:  -1,
		Category: "Moderation",
		Build:    buildMute,
	})

	r.Register(&Command{
		Name:        "/unmute",
		Aliases:     []string{"/um"},
		Description: "Lift a mute",
		Usage:       "/unmute <target>",
		Args: []ArgDef{
			{Name: "target", Required: true, Type: ArgTypeMember, Description: "Username to unmute"},
		},
		MinArgs:  1,
		MaxArgs:  1,
		Category: "Moderation",
		Build:    buildUnmute,
	})

	r.Register(&Command{
		Name:        "/join",
		Aliases:     []string{"/j"},
		Description: "Join a channel",
		Usage:       "/join <channel_id>",
		Args: []ArgDef{
			{Name: "channel_id", Required: true, Type: ArgTypeChannel, Description: "Numeric channel id"},
		},
		MinArgs:  1,
		MaxArgs:  1,
		Category: "Channels",
		Build:    buildJoin,
	})

	r.Register(&Command{
		Name:        "/leave",
		Aliases:     []string{"/part"},
		Description: "Leave the active channel or the given one",
		Usage:       "/leave [channel_id]",
		Args: []ArgDef{
			{Name: "channel_id", Type: ArgTypeChannel, Description: "Numeric channel id"},
		},
		MinArgs:  0,
		MaxArgs:  1,
		Category: "Channels",
		Build:    buildLeave,
	})

	r.Register(&Command{
		Name:        "/help",
		Aliases:     []string{"/h", "/?"},
		Description: "Show available commands",
		Usage:       "/help",
		MaxArgs:     -1,
		Action:      ActionHelp,
		Category:    "General",
	})

	r.Register(&Command{
		Name:        "/quit",
		Aliases:     []string{"/q", "/exit"},
		Description: "Exit parley",
		Usage:       "/quit",
		Action:      ActionQuit,
		Category:    "General",
	})
}
