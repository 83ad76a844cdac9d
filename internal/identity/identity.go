// Package identity binds the external identity provider: sign-up, sign-in,
// sign-out, profile updates, and a stream of auth-state changes. The provider
// owns the principal; everything here is a transient cached copy.
package identity

import "time"

// Identity is the provider-issued authenticated principal. It is replaced
// wholesale on every auth-state change and absent after sign-out.
type Identity struct {
	UID         string
	Email       string
	DisplayName string
	PhotoURL    string
	// IDToken is the bearer credential the backend accepts. Its lifetime is
	// independent of this struct; durable storage is the caller's job.
	IDToken   string
	ExpiresAt time.Time
}

// Profile is a partial display-profile update.
type Profile struct {
	DisplayName string
	PhotoURL    string
}

// Event is one auth-state transition. Identity is nil when the state became
// signed-out.
type Event struct {
	Identity *Identity
}
