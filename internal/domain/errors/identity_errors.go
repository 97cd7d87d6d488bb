package errors

import "fmt"

// Identity error types
const (
	ErrTypeIdentityUnavailable  = "IDENTITY_UNAVAILABLE"
	ErrTypeIdentityUnauthorized = "IDENTITY_UNAUTHORIZED"
)

// IdentityError is returned when the auth platform cannot answer a user lookup.
type IdentityError struct {
	Type   string
	UserID string
	Cause  error
}

func (e *IdentityError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: user lookup failed for %s - %v", e.Type, e.UserID, e.Cause)
	}
	return fmt.Sprintf("%s: user lookup failed for %s", e.Type, e.UserID)
}

func (e *IdentityError) Unwrap() error {
	return e.Cause
}

// NewIdentityUnavailableError creates an error for transport or decode failures
func NewIdentityUnavailableError(userID string, cause error) *IdentityError {
	return &IdentityError{Type: ErrTypeIdentityUnavailable, UserID: userID, Cause: cause}
}

// NewIdentityUnauthorizedError creates an error for a rejected service key
func NewIdentityUnauthorizedError(userID string) *IdentityError {
	return &IdentityError{Type: ErrTypeIdentityUnauthorized, UserID: userID}
}
