// Package session stores the bearer credential in a secure cookie: the web
// rendering of the browser client's durable token entry.
package session

import (
	"net/http"

	"github.com/gorilla/sessions"
)

const (
	// SessionName is the name of the session cookie
	SessionName = "bazaar_session"

	// TokenKey is the session key for storing the bearer credential
	TokenKey = "token"
)

// Manager wraps gorilla/sessions for credential storage
type Manager struct {
	store *sessions.CookieStore
}

// NewManager creates a session manager. secretKey should be 32 bytes.
func NewManager(secretKey []byte) *Manager {
	store := sessions.NewCookieStore(secretKey)

	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   30 * 24 * 60 * 60, // 30 days
		HttpOnly: true,
		Secure:   false, // set true behind HTTPS
		SameSite: http.SameSiteLaxMode,
	}

	return &Manager{store: store}
}

// SetToken stores the bearer credential in the session
func (m *Manager) SetToken(r *http.Request, w http.ResponseWriter, token string) error {
	session, err := m.store.Get(r, SessionName)
	if err != nil {
		session, _ = m.store.New(r, SessionName)
	}

	session.Values[TokenKey] = token
	return session.Save(r, w)
}

// GetToken retrieves the bearer credential, or "" when none is stored
func (m *Manager) GetToken(r *http.Request) string {
	session, err := m.store.Get(r, SessionName)
	if err != nil {
		return ""
	}
	token, _ := session.Values[TokenKey].(string)
	return token
}

// ClearToken removes the session (sign-out or credential purge)
func (m *Manager) ClearToken(r *http.Request, w http.ResponseWriter) error {
	session, err := m.store.Get(r, SessionName)
	if err != nil {
		return nil // nothing to clear
	}

	session.Options.MaxAge = -1
	return session.Save(r, w)
}

// HasToken checks whether a credential is stored
func (m *Manager) HasToken(r *http.Request) bool {
	return m.GetToken(r) != ""
}

// RequestTokens adapts one request's cookie to the api.TokenStore interface,
// so the HTTP client adapter's 401 interceptor purges the cookie credential
// the same way the store purges a file credential.
type RequestTokens struct {
	Manager *Manager
	Request *http.Request
	Writer  http.ResponseWriter
}

func (t *RequestTokens) Load() (string, error) {
	return t.Manager.GetToken(t.Request), nil
}

func (t *RequestTokens) Save(token string) error {
	return t.Manager.SetToken(t.Request, t.Writer, token)
}

func (t *RequestTokens) Clear() error {
	return t.Manager.ClearToken(t.Request, t.Writer)
}
