// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing for parley.

package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/jeranaias/parley-tui/internal/config"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdSend
	CmdConfig
	CmdLogin
	CmdSignup
	CmdLogout
	CmdWhoami
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	URL        string
	ConfigPath string
	Channel    int
	Verbose    bool
	JSON       bool

	// Command-specific
	Text       string
	Token      string
	User       string
	Subcommand string
	ConfigKey  string
	ConfigVal  string

	// Raw args remaining after the command name
	Raw []string
}

const usageText = `parley - terminal chat client

Usage:
  parley                          Start the chat TUI (default)
  parley tui                      Start the chat TUI
  parley send [--channel N] TEXT  Send one message and exit
  parley login --user NAME        Log in with a password (prompted)
  parley login [TOKEN]            Store a bearer token (prompts when omitted)
  parley signup --user NAME       Create an account and log in
  parley logout                   Forget the stored token and identity
  parley whoami                   Show the stored identity and ask the server
  parley config [subcommand]      Configuration
  parley version                  Show version information
  parley help                     Show this help

Config Commands:
  parley config show              Display the effective configuration
  parley config path              Show the configuration file location
  parley config init              Write a default config file
    --force                       Overwrite an existing file
  parley config get KEY           Print one value (dot notation)
  parley config set KEY VALUE     Change one value and save
  parley config keys              List every key

Global Flags:
  --url URL        Chat server WebSocket URL (overrides config)
  --config FILE    Use FILE instead of ~/.parley/config.toml
  --channel N      Channel to open or send to
  -v, --verbose    Debug logging
  --json           JSON output where supported

Environment:
  PARLEY_URL, PARLEY_API_URL, PARLEY_TOKEN_FILE, PARLEY_LOG_LEVEL, PARLEY_LOG_FILE, PARLEY_CHANNEL

Chat Commands (inside the TUI):
  /join N, /leave [N]             Switch channels
  /kick USER [reason]             Remove a user from the channel
  /mute USER [seconds] [reason]   Silence a user (indefinitely without seconds)
  /unmute USER                    Lift a mute
  /help, /quit

Version: %s
`

// PrintUsage prints the usage/help text.
func PrintUsage() {
	fmt.Printf(usageText, Version)
}

// PrintVersion prints version information.
func PrintVersion() {
	fmt.Printf("parley version %s\n", Version)
	fmt.Printf("  Git commit: %s\n", GitCommit)
	fmt.Printf("  Build date: %s\n", BuildDate)
}

// Parse parses os.Args.
func Parse() (Command, Args) {
	return ParseArgs(os.Args[1:])
}

// ParseArgs parses argv (without the program name) into a command and args.
func ParseArgs(argv []string) (Command, Args) {
	remaining, parsedArgs := parseGlobalFlags(argv)

	if len(remaining) == 0 {
		return CmdTUI, parsedArgs
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	parsedArgs.Raw = remaining

	switch cmd {
	case "tui", "chat":
		return CmdTUI, parsedArgs

	case "send", "say":
		parseSendArgs(&parsedArgs, remaining)
		return CmdSend, parsedArgs

	case "config":
		parseConfigArgs(&parsedArgs, remaining)
		return CmdConfig, parsedArgs

	case "login":
		parseCredentialArgs(&parsedArgs, remaining)
		return CmdLogin, parsedArgs

	case "signup", "register":
		parseCredentialArgs(&parsedArgs, remaining)
		return CmdSignup, parsedArgs

	case "logout":
		return CmdLogout, parsedArgs

	case "whoami", "status":
		return CmdWhoami, parsedArgs

	case "version", "--version":
		return CmdVersion, parsedArgs

	case "help", "-h", "--help":
		return CmdHelp, parsedArgs

	default:
		parsedArgs.Raw = append([]string{cmd}, remaining...)
		return CmdHelp, parsedArgs
	}
}

func parseGlobalFlags(args []string) ([]string, Args) {
	var remaining []string
	var parsedArgs Args

	// value returns the flag's value from "--flag=value" or the next arg.
	value := func(i *int, flag string) (string, bool) {
		arg := args[*i]
		if v, ok := strings.CutPrefix(arg, flag+"="); ok {
			return v, true
		}
		if arg == flag && *i+1 < len(args) {
			*i++
			return args[*i], true
		}
		return "", false
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			remaining = append(remaining, args[i:]...)
			break
		}
		switch {
		case arg == "-v" || arg == "--verbose":
			parsedArgs.Verbose = true
		case arg == "--json":
			parsedArgs.JSON = true
		case strings.HasPrefix(arg, "--url"):
			if v, ok := value(&i, "--url"); ok {
				parsedArgs.URL = v
			} else {
				remaining = append(remaining, arg)
			}
		case strings.HasPrefix(arg, "--config"):
			if v, ok := value(&i, "--config"); ok {
				parsedArgs.ConfigPath = v
			} else {
				remaining = append(remaining, arg)
			}
		case strings.HasPrefix(arg, "--channel"):
			if v, ok := value(&i, "--channel"); ok {
				if n, err := strconv.Atoi(v); err == nil {
					parsedArgs.Channel = n
				}
			} else {
				remaining = append(remaining, arg)
			}
		default:
			remaining = append(remaining, arg)
		}
	}

	return remaining, parsedArgs
}

func parseSendArgs(args *Args, remaining []string) {
	p := NewArgParser(remaining)
	if n := p.FlagIntOrDefault("c", 0); n != 0 {
		args.Channel = n
	}
	args.Text = strings.Join(p.PositionalFrom(0), " ")
}

func parseCredentialArgs(args *Args, remaining []string) {
	p := NewArgParser(remaining)
	args.User = p.FlagOrDefault("user", p.Flag("u"))
	args.Token = p.Positional(0)
}

func parseConfigArgs(args *Args, remaining []string) {
	p := NewArgParser(remaining, "force")
	args.Subcommand = p.Subcommand()
	args.ConfigKey = p.Positional(1)
	args.ConfigVal = strings.Join(p.PositionalFrom(2), " ")
}

// =============================================================================
// CONFIG RESOLUTION
// =============================================================================

// LoadConfig loads the configuration named by the global flags and applies
// the flag overrides on top of file and environment values.
func LoadConfig(args Args) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if args.ConfigPath != "" {
		cfg, err = config.LoadFromPath(args.ConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if cfg == nil {
		return nil, err
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
	}

	if args.URL != "" {
		cfg.Server.URL = args.URL
	}
	if args.Channel != 0 {
		cfg.UI.DefaultChannel = args.Channel
	}
	if args.Verbose {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	return cfg, nil
}
