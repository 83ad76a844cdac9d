package identity

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotAuthenticated is returned by operations that need a current identity
// when there is none.
var ErrNotAuthenticated = errors.New("not authenticated")

// CredentialError is a sign-up rejection: duplicate account, weak password,
// malformed input. Always recoverable; Message is safe to show users.
type CredentialError struct {
	Code    string
	Message string
}

func (e *CredentialError) Error() string {
	return fmt.Sprintf("credential rejected: %s", e.Code)
}

// AuthError is a sign-in rejection: wrong password, unknown account, disabled
// account. Message is safe to show users.
type AuthError struct {
	Code    string
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed: %s", e.Code)
}

// Provider is the external identity service. Implementations emit an Event on
// every auth-state transition, including the initial restore-or-absent
// determination; Events has a single consumer for the provider's lifetime.
type Provider interface {
	SignUp(ctx context.Context, email, password string) (*Identity, error)
	SignIn(ctx context.Context, email, password string) (*Identity, error)
	SignOut(ctx context.Context) error
	UpdateProfile(ctx context.Context, patch Profile) (*Identity, error)
	Events() <-chan Event
}
