package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Credentials is what the client persists between runs, the terminal
// equivalent of the browser's local storage entries.
type Credentials struct {
	Access   string `json:"access"`
	Refresh  string `json:"refresh"`
	Username string `json:"username"`
}

// TokenStore persists credentials to a JSON file and doubles as the API
// client's TokenSource.
type TokenStore struct {
	path string
}

// NewTokenStore creates a store backed by the given file path.
func NewTokenStore(path string) *TokenStore {
	return &TokenStore{path: path}
}

// Load reads stored credentials. Returns (nil, nil) when none exist.
func (s *TokenStore) Load() (*Credentials, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}

	var creds Credentials
	if err := json.Unmarshal(raw, &creds); err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	return &creds, nil
}

// Save writes credentials with owner-only permissions.
func (s *TokenStore) Save(creds *Credentials) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create credentials dir: %w", err)
	}
	raw, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0o600); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	return nil
}

// Clear removes stored credentials. Missing file is not an error.
func (s *TokenStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove credentials: %w", err)
	}
	return nil
}

// Token implements api.TokenSource. Absent credentials yield an empty
// token, which the client sends as an anonymous request.
func (s *TokenStore) Token() (string, error) {
	creds, err := s.Load()
	if err != nil {
		return "", err
	}
	if creds == nil {
		return "", nil
	}
	return creds.Access, nil
}
