// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"sort"
	"strconv"
	"strings"
)

// Completion is a single completion candidate.
type Completion struct {
	Value       string
	Display     string
	Description string
	Score       int
}

// =============================================================================
// COMPLETER
// =============================================================================

// Completer handles tab completion for commands and arguments.
type Completer struct {
	registry *Registry

	// Callbacks for dynamic completion, set by the application.
	MembersFn  func() []string // usernames in the active channel
	ChannelsFn func() []int    // joined channel ids
}

// NewCompleter creates a completer with the given registry.
func NewCompleter(registry *Registry) *Completer {
	return &Completer{registry: registry}
}

// Complete returns completions for input with the cursor at cursorPos.
func (c *Completer) Complete(input string, cursorPos int) []Completion {
	if cursorPos >= 0 && cursorPos < len(input) {
		input = input[:cursorPos]
	}
	input = strings.TrimLeft(input, " \t")
	if !strings.HasPrefix(input, "/") {
		return nil
	}

	parts := strings.Fields(input)
	trailingSpace := strings.HasSuffix(input, " ")

	if len(parts) == 1 && !trailingSpace {
		return c.completeCommands(parts[0], 0)
	}

	cmd := c.registry.Get(parts[0])
	if cmd == nil {
		return nil
	}

	argIndex, partial := GetPartialArg(input)
	return c.completeArg(cmd, argIndex, partial)
}

// =============================================================================
// COMMAND COMPLETION
// =============================================================================

// completeCommands returns command names matching partial. Commands that
// cannot take argCount arguments are left out.
func (c *Completer) completeCommands(partial string, argCount int) []Completion {
	var completions []Completion
	partial = strings.ToLower(partial)

	for _, cmd := range c.registry.All() {
		if cmd.MaxArgs >= 0 && argCount > cmd.MaxArgs {
			continue
		}
		if strings.HasPrefix(strings.ToLower(cmd.Name), partial) {
			completions = append(completions, Completion{
				Value:       cmd.Name,
				Display:     cmd.Usage,
				Description: cmd.Description,
				Score:       calculateScore(cmd.Name, partial),
			})
		}
		for _, alias := range cmd.Aliases {
			if strings.HasPrefix(strings.ToLower(alias), partial) {
				completions = append(completions, Completion{
					Value:       alias,
					Display:     alias + " -> " + cmd.Name,
					Description: cmd.Description,
					Score:       calculateScore(alias, partial) - 10, // Slightly lower score for aliases
				})
			}
		}
	}

	sortCompletions(completions)
	return completions
}

// CommandsFor returns command names matching partial that accept argCount
// arguments, for hinting while the user types.
func (c *Completer) CommandsFor(partial string, argCount int) []Completion {
	return c.completeCommands(partial, argCount)
}

// =============================================================================
// ARGUMENT COMPLETION
// =============================================================================

func (c *Completer) completeArg(cmd *Command, argIndex int, partial string) []Completion {
	if argIndex < 0 || argIndex >= len(cmd.Args) {
		return nil
	}
	if cmd.MaxArgs >= 0 && argIndex >= cmd.MaxArgs {
		return nil
	}

	switch cmd.Args[argIndex].Type {
	case ArgTypeMember:
		if c.MembersFn == nil {
			return nil
		}
		return completeFromList(c.MembersFn(), partial)
	case ArgTypeChannel:
		if c.ChannelsFn == nil {
			return nil
		}
		ids := c.ChannelsFn()
		values := make([]string, len(ids))
		for i, id := range ids {
			values[i] = strconv.Itoa(id)
		}
		return completeFromList(values, partial)
	case ArgTypeDuration:
		return completeFromList([]string{"30", "60", "300", "600", "3600"}, partial)
	default:
		return nil
	}
}

func completeFromList(values []string, partial string) []Completion {
	var completions []Completion
	partial = strings.ToLower(partial)

	for _, value := range values {
		if strings.HasPrefix(strings.ToLower(value), partial) {
			completions = append(completions, Completion{
				Value:   value,
				Display: value,
				Score:   calculateScore(value, partial),
			})
		}
	}

	sortCompletions(completions)
	return completions
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// calculateScore ranks a completion. Higher is better.
func calculateScore(value, partial string) int {
	value = strings.ToLower(value)
	partial = strings.ToLower(partial)

	score := 100
	if value == partial {
		return score + 100
	}
	if strings.HasPrefix(value, partial) {
		score += 50
		score += 20 - len(value)
	}
	score -= len(value) / 2
	return score
}

// sortCompletions sorts by score (descending), then alphabetically.
func sortCompletions(completions []Completion) {
	sort.Slice(completions, func(i, j int) bool {
		if completions[i].Score != completions[j].Score {
			return completions[i].Score > completions[j].Score
		}
		return completions[i].Value < completions[j].Value
	})
}

// =============================================================================
// COMPLETION NAVIGATION
// =============================================================================

// CompletionState holds the state for cycling through completions.
type CompletionState struct {
	OriginalInput string
	Completions   []Completion
	Selected      int
	Visible       bool
}

// NewCompletionState creates an empty completion state.
func NewCompletionState() *CompletionState {
	return &CompletionState{Selected: -1}
}

// Update replaces the candidates and selects the first.
func (cs *CompletionState) Update(input string, completions []Completion) {
	cs.OriginalInput = input
	cs.Completions = completions
	cs.Selected = 0
	cs.Visible = len(completions) > 0
}

// Next moves to the next completion.
func (cs *CompletionState) Next() {
	if len(cs.Completions) == 0 {
		return
	}
	cs.Selected = (cs.Selected + 1) % len(cs.Completions)
}

// Prev moves to the previous completion.
func (cs *CompletionState) Prev() {
	if len(cs.Completions) == 0 {
		return
	}
	cs.Selected--
	if cs.Selected < 0 {
		cs.Selected = len(cs.Completions) - 1
	}
}

// Accept returns the input with the selected candidate substituted for the
// token being completed.
func (cs *CompletionState) Accept() string {
	sel := cs.GetSelected()
	if sel == nil {
		return cs.OriginalInput
	}
	input := cs.OriginalInput
	if strings.HasSuffix(input, " ") || input == "" {
		return input + sel.Value + " "
	}
	cut := strings.LastIndexAny(input, " \t")
	return input[:cut+1] + sel.Value + " "
}

// Clear clears the completion state.
func (cs *CompletionState) Clear() {
	cs.OriginalInput = ""
	cs.Completions = nil
	cs.Selected = -1
	cs.Visible = false
}

// GetSelected returns the selected completion, or nil.
func (cs *CompletionState) GetSelected() *Completion {
	if cs.Selected < 0 || cs.Selected >= len(cs.Completions) {
		return nil
	}
	return &cs.Completions[cs.Selected]
}
