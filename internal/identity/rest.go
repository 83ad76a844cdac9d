package identity

import (
	"context"
	"sync"
)

// Provider REST error codes. The set mirrors the hosted identity-toolkit API
// the marketplace uses; anything unlisted maps to a generic message.
const (
	codeEmailExists      = "EMAIL_EXISTS"
	codeWeakPassword     = "WEAK_PASSWORD"
	codeInvalidEmail     = "INVALID_EMAIL"
	codeEmailNotFound    = "EMAIL_NOT_FOUND"
	codeInvalidPassword  = "INVALID_PASSWORD"
	codeInvalidLogin     = "INVALID_LOGIN_CREDENTIALS"
	codeUserDisabled     = "USER_DISABLED"
	codeTooManyAttempts  = "TOO_MANY_ATTEMPTS_TRY_LATER"
	codeCredentialTooOld = "CREDENTIAL_TOO_OLD_LOGIN_AGAIN"
)

var userMessages = map[string]string{
	codeEmailExists:      "An account with this email already exists.",
	codeWeakPassword:     "Password is too weak. Use at least 6 characters.",
	codeInvalidEmail:     "Please enter a valid email address.",
	codeEmailNotFound:    "No account found with this email.",
	codeInvalidPassword:  "Incorrect password. Please try again.",
	codeInvalidLogin:     "Invalid email or password.",
	codeUserDisabled:     "This account has been disabled.",
	codeTooManyAttempts:  "Too many attempts. Please try again later.",
	codeCredentialTooOld: "Your session is too old. Please sign in again.",
}

func userMessage(code string) string {
	if msg, ok := userMessages[code]; ok {
		return msg
	}
	return "Authentication failed. Please try again."
}

// RESTProvider implements Provider on top of a Client. It keeps the current
// identity in memory and emits an auth-state event on every transition, which
// makes it the binding for single-user embeddings such as the CLI.
type RESTProvider struct {
	client *Client

	mu      sync.Mutex
	current *Identity
	events  chan Event
}

// NewRESTProvider creates a provider for the identity API at endpoint,
// authenticating calls with apiKey. The returned provider has already emitted
// its initial signed-out event into the (buffered) event stream, so the first
// consumer observes the unauthenticated resolution.
func NewRESTProvider(endpoint, apiKey string, opts ...ClientOption) *RESTProvider {
	p := &RESTProvider{
		client: NewClient(endpoint, apiKey, opts...),
		events: make(chan Event, 16),
	}
	// Initial auth-state determination: no restorable session.
	p.events <- Event{Identity: nil}
	return p
}

// Restore seeds the provider with a previously persisted identity (e.g. a
// credential loaded from disk at startup) and emits the matching event.
func (p *RESTProvider) Restore(id *Identity) {
	p.mu.Lock()
	p.current = id
	p.mu.Unlock()
	p.emit(id)
}

// Events returns the auth-state change stream. Single consumer.
func (p *RESTProvider) Events() <-chan Event {
	return p.events
}

// Current returns the in-memory identity, or nil when signed out.
func (p *RESTProvider) Current() *Identity {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// SignUp creates an account. Provider rejections surface as *CredentialError.
func (p *RESTProvider) SignUp(ctx context.Context, email, password string) (*Identity, error) {
	id, err := p.client.SignUp(ctx, email, password)
	if err != nil {
		return nil, err
	}
	p.setCurrent(id)
	return id, nil
}

// SignIn resolves an identity for the credentials. Provider rejections
// surface as *AuthError.
func (p *RESTProvider) SignIn(ctx context.Context, email, password string) (*Identity, error) {
	id, err := p.client.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}
	p.setCurrent(id)
	return id, nil
}

// SignOut drops the current identity. Idempotent; signing out while signed
// out emits nothing.
func (p *RESTProvider) SignOut(ctx context.Context) error {
	p.mu.Lock()
	wasSignedIn := p.current != nil
	p.current = nil
	p.mu.Unlock()

	if wasSignedIn {
		p.emit(nil)
	}
	return nil
}

// UpdateProfile pushes display-name/photo changes to the provider for the
// current identity.
func (p *RESTProvider) UpdateProfile(ctx context.Context, patch Profile) (*Identity, error) {
	p.mu.Lock()
	cur := p.current
	p.mu.Unlock()
	if cur == nil {
		return nil, ErrNotAuthenticated
	}

	resp, err := p.client.UpdateProfile(ctx, cur.IDToken, patch)
	if err != nil {
		return nil, err
	}

	updated := *cur
	if resp.DisplayName != "" {
		updated.DisplayName = resp.DisplayName
	}
	if resp.PhotoURL != "" {
		updated.PhotoURL = resp.PhotoURL
	}
	if resp.IDToken != "" {
		updated.IDToken = resp.IDToken
	}
	p.setCurrent(&updated)
	return &updated, nil
}

func (p *RESTProvider) setCurrent(id *Identity) {
	p.mu.Lock()
	p.current = id
	p.mu.Unlock()
	p.emit(id)
}

func (p *RESTProvider) emit(id *Identity) {
	p.events <- Event{Identity: id}
}
