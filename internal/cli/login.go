// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// login.go - Credential commands.
//
// Commands:
//   login --user NAME   Log in with a password (prompted) and store the token
//   login [TOKEN]       Store a bearer token. Without TOKEN (or with "-") the
//                       token is read from stdin, hidden when stdin is a terminal.
//   signup --user NAME  Create an account, then log in as it
//   logout              Forget the token and the cached identity
//   whoami              Show the cached identity and token status, and ask
//                       the server who the token belongs to
//
// A running TUI watches the token file and reconnects on change.

package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/jeranaias/parley-tui/internal/auth"
	"github.com/jeranaias/parley-tui/internal/config"
	"github.com/jeranaias/parley-tui/internal/identity"
)

var (
	loginLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Width(12)

	loginWarnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))
)

// ErrPasswordMismatch is returned when a signup confirmation differs.
var ErrPasswordMismatch = errors.New("passwords do not match")

// credentialStores opens the token store and identity cache named by cfg.
func credentialStores(cfg *config.Config) (*auth.Store, *identity.Provider, error) {
	store, err := auth.NewStore(cfg.Auth.TokenFile, nil)
	if err != nil {
		return nil, nil, err
	}
	return store, identity.NewProvider(cfg.Auth.IdentityFile, nil), nil
}

// HandleLogin handles the "login" command.
func HandleLogin(ctx context.Context, args Args) error {
	cfg, err := LoadConfig(args)
	if err != nil {
		return err
	}

	if args.User != "" {
		password, err := readSecret(os.Stdin, os.Stderr, "Password")
		if err != nil {
			return err
		}
		store, ident, err := credentialStores(cfg)
		if err != nil {
			return err
		}
		creds := auth.Credentials{Username: args.User, Password: password}
		return passwordLogin(ctx, os.Stdout, cfg.AuthAPI(nil), store, ident, creds)
	}

	token := args.Token
	if token == "" || token == "-" {
		token, err = readSecret(os.Stdin, os.Stderr, "Token")
		if err != nil {
			return err
		}
	}
	return storeToken(os.Stdout, cfg.Auth.TokenFile, token)
}

// HandleSignup handles the "signup" command.
func HandleSignup(ctx context.Context, args Args) error {
	if args.User == "" {
		return errors.New("signup needs --user NAME")
	}
	cfg, err := LoadConfig(args)
	if err != nil {
		return err
	}

	password, err := readSecret(os.Stdin, os.Stderr, "Password")
	if err != nil {
		return err
	}
	if term.IsTerminal(int(os.Stdin.Fd())) {
		again, err := readSecret(os.Stdin, os.Stderr, "Confirm")
		if err != nil {
			return err
		}
		if again != password {
			return ErrPasswordMismatch
		}
	}

	store, ident, err := credentialStores(cfg)
	if err != nil {
		return err
	}
	creds := auth.Credentials{Username: args.User, Password: password}
	return signupAccount(ctx, os.Stdout, cfg.AuthAPI(nil), store, ident, creds)
}

// passwordLogin exchanges creds for a token, stores it and records the
// account the server reports for it.
func passwordLogin(ctx context.Context, w io.Writer, api *auth.APIClient, store *auth.Store, ident *identity.Provider, creds auth.Credentials) error {
	tok, err := api.Login(ctx, creds)
	if err != nil {
		return loginError(err)
	}
	if err := store.SetToken(tok.AccessToken); err != nil {
		return err
	}

	if user, err := api.Me(ctx, tok.AccessToken); err == nil {
		ident.OnIdentityAssigned(user.Username, user.IsGuest)
	} else if err := ident.Reset(); err != nil {
		return err
	}

	fmt.Fprintf(w, "%s as %s\n", configSuccessStyle.Render("Logged in"), creds.Username)
	printTokenStatus(w, store)
	return nil
}

// signupAccount creates the account and logs in as it.
func signupAccount(ctx context.Context, w io.Writer, api *auth.APIClient, store *auth.Store, ident *identity.Provider, creds auth.Credentials) error {
	user, err := api.Signup(ctx, creds)
	if err != nil {
		if ae, ok := auth.AsAuthError(err); ok && ae.Conflict() {
			return fmt.Errorf("username %q is taken: %w", creds.Username, err)
		}
		return err
	}
	fmt.Fprintf(w, "%s %s\n", configSuccessStyle.Render("Account created:"), user.Username)
	return passwordLogin(ctx, w, api, store, ident, creds)
}

func loginError(err error) error {
	if ae, ok := auth.AsAuthError(err); ok && ae.Unauthorized() {
		return fmt.Errorf("login refused: %w", err)
	}
	return err
}

// readSecret reads one line from in, without echo when in is a terminal.
func readSecret(in *os.File, prompt io.Writer, label string) (string, error) {
	fd := int(in.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprintf(prompt, "%s: ", label)
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(prompt)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", strings.ToLower(label), err)
		}
		return strings.TrimSpace(string(b)), nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimSpace(line), nil
}

func storeToken(w io.Writer, path, token string) error {
	store, err := auth.NewStore(path, nil)
	if err != nil {
		return err
	}
	if err := store.SetToken(token); err != nil {
		return err
	}
	fmt.Fprintln(w, configSuccessStyle.Render("Token saved"))
	printTokenStatus(w, store)
	return nil
}

// HandleLogout handles the "logout" command.
func HandleLogout(args Args) error {
	cfg, err := LoadConfig(args)
	if err != nil {
		return err
	}
	store, ident, err := credentialStores(cfg)
	if err != nil {
		return err
	}
	if err := store.ClearToken(); err != nil {
		return err
	}
	if err := ident.Reset(); err != nil {
		return err
	}
	fmt.Println(configSuccessStyle.Render("Logged out"))
	return nil
}

// HandleWhoami handles the "whoami" command.
func HandleWhoami(ctx context.Context, args Args) error {
	cfg, err := LoadConfig(args)
	if err != nil {
		return err
	}
	store, ident, err := credentialStores(cfg)
	if err != nil {
		return err
	}
	printWhoami(os.Stdout, ident.Current(), store)
	printServerAccount(ctx, os.Stdout, cfg.AuthAPI(nil), store)
	return nil
}

func printWhoami(w io.Writer, id identity.Identity, store *auth.Store) {
	user := id.Username
	switch {
	case user == "":
		user = "(not connected yet)"
	case id.IsGuest:
		user += " (guest)"
	}
	fmt.Fprintf(w, "%s %s\n", loginLabelStyle.Render("User:"), user)
	if id.DisplayName != "" {
		fmt.Fprintf(w, "%s %s\n", loginLabelStyle.Render("Display:"), id.DisplayName)
	}
	printTokenStatus(w, store)
}

// printServerAccount asks the server who the stored token belongs to. It
// prints nothing without a usable token.
func printServerAccount(ctx context.Context, w io.Writer, api *auth.APIClient, store *auth.Store) {
	tok, ok := store.Token()
	if !ok {
		return
	}
	label := loginLabelStyle.Render("Server:")
	user, err := api.Me(ctx, tok)
	if ae, isAuth := auth.AsAuthError(err); isAuth && ae.Unauthorized() {
		fmt.Fprintf(w, "%s %s\n", label, loginWarnStyle.Render("token rejected ("+ae.Detail+")"))
		return
	}
	if err != nil {
		fmt.Fprintf(w, "%s %s\n", label, loginWarnStyle.Render("unreachable: "+err.Error()))
		return
	}
	name := user.Username
	if user.IsGuest {
		name += " (guest)"
	}
	fmt.Fprintf(w, "%s %s (id %d) at %s\n", label, name, user.ID, api.BaseURL())
}

func printTokenStatus(w io.Writer, store *auth.Store) {
	label := loginLabelStyle.Render("Token:")
	_, present := store.Token()
	exp, hasExp := store.Expiry()
	switch {
	case !present && hasExp:
		fmt.Fprintf(w, "%s %s\n", label, loginWarnStyle.Render("expired "+exp.Local().Format(time.RFC1123)))
	case !present:
		fmt.Fprintf(w, "%s none (guest access)\n", label)
	case hasExp:
		fmt.Fprintf(w, "%s valid until %s\n", label, exp.Local().Format(time.RFC1123))
	default:
		fmt.Fprintf(w, "%s present\n", label)
	}
	fmt.Fprintf(w, "%s %s\n", loginLabelStyle.Render("File:"), store.Path())
}
