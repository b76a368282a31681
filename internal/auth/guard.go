package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Guard errors.
var (
	ErrNotAuthenticated = errors.New("not logged in")
	ErrSessionExpired   = errors.New("session expired, please log in again")
)

// RequireSession is the client-side route guard: it verifies that a token
// exists locally and that its exp claim has not passed. The token is parsed
// without signature verification: only the backend holds the secret and it
// re-validates every request; the guard just avoids sending calls that are
// guaranteed to bounce.
func RequireSession(store *TokenStore) error {
	creds, err := store.Load()
	if err != nil {
		return err
	}
	if creds == nil || creds.Access == "" {
		return ErrNotAuthenticated
	}

	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(creds.Access, &claims); err != nil {
		return fmt.Errorf("%w: %v", ErrNotAuthenticated, err)
	}

	if claims.ExpiresAt != nil && claims.ExpiresAt.Before(time.Now()) {
		return ErrSessionExpired
	}
	return nil
}
