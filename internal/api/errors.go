package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Sentinel errors for the status classes callers branch on.
var (
	// ErrUnauthorized means the token is missing, expired or rejected.
	// The surrounding flow should send the user back to login.
	ErrUnauthorized = errors.New("not authenticated")

	// ErrForbidden means the account lacks access, e.g. premium content.
	ErrForbidden = errors.New("access denied")

	// ErrNotFound means the resource does not exist.
	ErrNotFound = errors.New("not found")
)

// Error is a structured API failure decoded from an error response body.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %s (HTTP %d)", e.Message, e.Status)
	}
	return fmt.Sprintf("api: HTTP %d", e.Status)
}

// Unwrap maps well-known statuses onto sentinel errors so callers can use
// errors.Is without inspecting status codes.
func (e *Error) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	}
	return nil
}

// decodeError extracts a human-readable message from an error body. The
// backend is inconsistent here: some views return {"error": "..."}, the
// auth layer returns {"detail": "..."}, and validation failures return a
// field → messages map.
func decodeError(status int, raw []byte) error {
	apiErr := &Error{Status: status}

	var body map[string]json.RawMessage
	if err := json.Unmarshal(raw, &body); err != nil {
		return apiErr
	}

	for _, key := range []string{"error", "detail"} {
		var msg string
		if v, ok := body[key]; ok && json.Unmarshal(v, &msg) == nil {
			apiErr.Message = msg
			return apiErr
		}
	}

	// Field validation map: flatten to "field: msg1, msg2; ..." form.
	var parts []string
	for field, v := range body {
		var msgs []string
		if json.Unmarshal(v, &msgs) == nil {
			parts = append(parts, field+": "+strings.Join(msgs, ", "))
		}
	}
	apiErr.Message = strings.Join(parts, "; ")
	return apiErr
}
