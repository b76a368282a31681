package api

import (
	"context"
	"fmt"

	"github.com/bitbybit-prep/bitbybit-cli/internal/model"
)

// Login exchanges credentials for a JWT pair. The caller decides whether
// to persist the tokens (the login flow probes the account role first).
func (c *Client) Login(ctx context.Context, username, password string) (*model.TokenPair, error) {
	req := model.LoginRequest{Username: username, Password: password}
	var pair model.TokenPair
	if err := c.post(ctx, "/auth/jwt/create/", req, &pair); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return &pair, nil
}

// Register creates a new student account.
func (c *Client) Register(ctx context.Context, req model.RegisterRequest) error {
	if err := c.post(ctx, "/auth/users/", req, nil); err != nil {
		return fmt.Errorf("register: %w", err)
	}
	return nil
}

// Me returns the authenticated account.
func (c *Client) Me(ctx context.Context) (*model.User, error) {
	var user model.User
	if err := c.get(ctx, "/auth/users/me/", &user); err != nil {
		return nil, fmt.Errorf("fetch profile: %w", err)
	}
	return &user, nil
}

// UpdateProfile patches the mutable profile fields.
func (c *Client) UpdateProfile(ctx context.Context, req model.UpdateProfileRequest) error {
	if err := c.patch(ctx, "/auth/users/me/", req, nil); err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}

// RequestPasswordReset triggers the reset email flow.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	body := map[string]string{"email": email}
	if err := c.post(ctx, "/auth/users/reset_password/", body, nil); err != nil {
		return fmt.Errorf("request password reset: %w", err)
	}
	return nil
}

// ConfirmPasswordReset completes the reset flow with the emailed uid/token.
func (c *Client) ConfirmPasswordReset(ctx context.Context, uid, token, newPassword string) error {
	body := map[string]string{
		"uid":          uid,
		"token":        token,
		"new_password": newPassword,
	}
	if err := c.post(ctx, "/auth/users/reset_password_confirm/", body, nil); err != nil {
		return fmt.Errorf("confirm password reset: %w", err)
	}
	return nil
}
