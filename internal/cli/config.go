// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config.go - Config command implementation for parley.
//
// Command: config [subcommand]
// Short:   View and modify configuration
//
// Subcommands:
//   show (default)      Display the effective configuration
//   path                Show configuration file path
//   init [--force]      Write a default config file
//   get <key>           Print one value
//   set <key> <value>   Set a value and save
//   keys                List every key
//
// Examples:
//   parley config
//   parley config set server.url wss://chat.example.com/ws
//   parley config set reconnect.max_attempts 10
//   parley config get session.typing_timeout_secs
//   parley --config ./dev.toml config show --json

package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/parley-tui/internal/config"
)

// =============================================================================
// CONFIG STYLES
// =============================================================================

var (
	configTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")). // Cyan
				MarginBottom(1)

	configSectionStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("255")) // White

	configKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")). // Light gray
			Width(26)

	configValueStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("82")) // Green

	configSuccessStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("82")).
				Bold(true)

	configPathStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Italic(true)
)

// =============================================================================
// CONFIG COMMAND
// =============================================================================

// HandleConfig handles the "config" command.
func HandleConfig(args Args) error {
	return runConfig(os.Stdout, args)
}

func runConfig(w io.Writer, args Args) error {
	switch args.Subcommand {
	case "", "show":
		cfg, err := LoadConfig(args)
		if err != nil {
			return err
		}
		if args.JSON {
			fmt.Fprintln(w, cfg.String())
			return nil
		}
		showConfig(w, cfg, configFilePath(args))
		return nil

	case "path":
		fmt.Fprintln(w, configFilePath(args))
		return nil

	case "init":
		return initConfig(w, args, hasForce(args))

	case "get":
		if args.ConfigKey == "" {
			return fmt.Errorf("usage: parley config get KEY")
		}
		cfg, err := LoadConfig(args)
		if err != nil {
			return err
		}
		val, err := cfg.Get(args.ConfigKey)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, val)
		return nil

	case "set":
		if args.ConfigKey == "" || args.ConfigVal == "" {
			return fmt.Errorf("usage: parley config set KEY VALUE")
		}
		return setConfig(w, args)

	case "keys":
		for _, k := range config.GetAllKeys() {
			fmt.Fprintln(w, k)
		}
		return nil

	default:
		return fmt.Errorf("unknown config subcommand %q (try show, path, init, get, set, keys)", args.Subcommand)
	}
}

func hasForce(args Args) bool {
	return NewArgParser(args.Raw, "force").BoolFlag("force")
}

// configFilePath returns the file the config commands read and write.
func configFilePath(args Args) string {
	if args.ConfigPath != "" {
		return args.ConfigPath
	}
	path, err := config.ConfigPathTOML()
	if err != nil {
		return ""
	}
	return path
}

func saveTo(cfg *config.Config, path string) error {
	if strings.HasSuffix(path, ".json") {
		return config.SaveJSON(cfg, path)
	}
	return config.SaveTOML(cfg, path)
}

func initConfig(w io.Writer, args Args, force bool) error {
	path := configFilePath(args)
	if path == "" {
		return fmt.Errorf("could not determine config path")
	}
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := saveTo(config.Default(), path); err != nil {
		return err
	}
	fmt.Fprintln(w, configSuccessStyle.Render("Wrote default configuration"))
	fmt.Fprintln(w, configPathStyle.Render(path))
	return nil
}

// setConfig edits the file itself, so environment and flag overrides are
// not written back.
func setConfig(w io.Writer, args Args) error {
	path := configFilePath(args)

	cfg := config.Default()
	if _, err := os.Stat(path); err == nil {
		if strings.HasSuffix(path, ".json") {
			err = config.LoadJSON(cfg, path)
		} else {
			err = config.LoadTOML(cfg, path)
		}
		if err != nil {
			return err
		}
	}

	if err := cfg.Set(args.ConfigKey, args.ConfigVal); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("not saved: %w", err)
	}
	if err := saveTo(cfg, path); err != nil {
		return err
	}
	fmt.Fprintf(w, "%s %s = %s\n", configSuccessStyle.Render("Set"), args.ConfigKey, args.ConfigVal)
	return nil
}

func showConfig(w io.Writer, cfg *config.Config, path string) {
	fmt.Fprintln(w, configTitleStyle.Render("parley Configuration"))

	section := ""
	for _, key := range config.GetAllKeys() {
		head, name, ok := strings.Cut(key, ".")
		if !ok {
			head, name = "", key
		}
		if head != section {
			fmt.Fprintln(w)
			fmt.Fprintln(w, configSectionStyle.Render("["+head+"]"))
			section = head
		}
		val, err := cfg.Get(key)
		if err != nil {
			continue
		}
		fmt.Fprintf(w, "  %s %s\n", configKeyStyle.Render(name+":"), configValueStyle.Render(fmt.Sprint(val)))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, configPathStyle.Render("File: "+path))
}
