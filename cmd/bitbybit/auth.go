package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/bitbybit-prep/bitbybit-cli/internal/api"
	"github.com/bitbybit-prep/bitbybit-cli/internal/auth"
	"github.com/bitbybit-prep/bitbybit-cli/internal/model"
)

func isAuthError(err error) bool {
	return errors.Is(err, api.ErrUnauthorized) ||
		errors.Is(err, auth.ErrNotAuthenticated) ||
		errors.Is(err, auth.ErrSessionExpired)
}

func prompt(label string) string {
	fmt.Print(label)
	reader := bufio.NewReader(os.Stdin)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

func promptPassword(label string) (string, error) {
	fmt.Print(label)
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println() // Newline after password input
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(raw), nil
}

func (a *app) cmdLogin() error {
	username := prompt("Username: ")
	if username == "" {
		return errors.New("username is required")
	}
	password, err := promptPassword("Password: ")
	if err != nil {
		return err
	}

	ctx := context.Background()
	pair, err := a.client.Login(ctx, username, password)
	if err != nil {
		return err
	}

	// Probe the account with the fresh token before persisting anything:
	// staff accounts belong in the admin portal flow, same as the web app.
	probe := a.client.WithTokens(api.StaticToken(pair.Access))
	user, err := probe.Me(ctx)
	if err != nil {
		return err
	}
	if user.IsStaff || user.IsSuperuser {
		fmt.Println("Note: this is a staff account; admin subcommands are available.")
	}

	creds := &auth.Credentials{Access: pair.Access, Refresh: pair.Refresh, Username: user.Username}
	if err := a.store.Save(creds); err != nil {
		return err
	}

	fmt.Printf("Logged in as %s\n", user.Username)
	return nil
}

func (a *app) cmdLogout() error {
	if err := a.store.Clear(); err != nil {
		return err
	}
	fmt.Println("Logged out.")
	return nil
}

func (a *app) cmdRegister() error {
	req := model.RegisterRequest{
		Username: prompt("Username: "),
		Email:    prompt("Email: "),
	}

	password, err := promptPassword("Password: ")
	if err != nil {
		return err
	}
	rePassword, err := promptPassword("Repeat password: ")
	if err != nil {
		return err
	}
	if password != rePassword {
		return errors.New("passwords do not match")
	}
	req.Password = password
	req.RePassword = rePassword

	if err := a.client.Register(context.Background(), req); err != nil {
		return err
	}
	fmt.Println("Registration successful. You can now log in: bitbybit login")
	return nil
}

// cmdResetPassword drives both halves of the Djoser reset flow: request an
// email, or redeem the emailed uid/token with --confirm.
func (a *app) cmdResetPassword(args []string) error {
	ctx := context.Background()

	if len(args) > 0 && args[0] == "--confirm" {
		uid := prompt("UID from the email: ")
		token := prompt("Token from the email: ")
		password, err := promptPassword("New password: ")
		if err != nil {
			return err
		}
		if err := a.client.ConfirmPasswordReset(ctx, uid, token, password); err != nil {
			return err
		}
		fmt.Println("Password changed. Log in with the new password: bitbybit login")
		return nil
	}

	email := prompt("Account email: ")
	if email == "" {
		return errors.New("email is required")
	}
	if err := a.client.RequestPasswordReset(ctx, email); err != nil {
		return err
	}
	fmt.Println("If that account exists, a reset email is on its way.")
	fmt.Println("Finish with: bitbybit reset-password --confirm")
	return nil
}

func (a *app) cmdWhoami() error {
	if err := auth.RequireSession(a.store); err != nil {
		return err
	}
	user, err := a.client.Me(context.Background())
	if err != nil {
		return err
	}
	fmt.Printf("%s <%s>\n", user.Username, user.Email)
	if user.FirstName != "" || user.LastName != "" {
		fmt.Printf("Name: %s %s\n", user.FirstName, user.LastName)
	}
	if user.IsStaff {
		fmt.Println("Role: staff")
	}
	return nil
}

func (a *app) cmdProfile(args []string) error {
	if err := auth.RequireSession(a.store); err != nil {
		return err
	}
	ctx := context.Background()

	if len(args) > 0 && args[0] == "--edit" {
		req := model.UpdateProfileRequest{
			FirstName: prompt("First name: "),
			LastName:  prompt("Last name: "),
		}
		if err := a.client.UpdateProfile(ctx, req); err != nil {
			return err
		}
		fmt.Println("Profile updated.")
		return nil
	}

	return a.cmdWhoami()
}
