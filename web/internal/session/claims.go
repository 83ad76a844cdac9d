package session

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/localchefbazaar/bazaar/internal/identity"
)

var (
	// ErrNoToken is returned when no credential is stored in the session
	ErrNoToken = errors.New("no token in session")

	// ErrInvalidToken is returned when the token cannot be parsed
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired is returned when the token has expired
	ErrTokenExpired = errors.New("token expired")

	// ErrMissingSubject is returned when the token carries no subject claim
	ErrMissingSubject = errors.New("token missing subject claim")
)

// ParseIdentity extracts the identity from the provider-issued ID token.
// The token is parsed without verification: the backend verifies signatures,
// the web layer only needs the display claims and expiry.
func ParseIdentity(tokenString string) (*identity.Identity, error) {
	if tokenString == "" {
		return nil, ErrNoToken
	}

	token, _, err := new(jwt.Parser).ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	id := &identity.Identity{IDToken: tokenString}

	if exp, ok := claims["exp"].(float64); ok {
		id.ExpiresAt = time.Unix(int64(exp), 0)
		if time.Now().After(id.ExpiresAt) {
			return nil, ErrTokenExpired
		}
	}

	// The provider issues the subject as "user_id" (alias "sub").
	if uid, ok := claims["user_id"].(string); ok {
		id.UID = uid
	} else if sub, ok := claims["sub"].(string); ok {
		id.UID = sub
	}

	if email, ok := claims["email"].(string); ok {
		id.Email = email
	}
	if name, ok := claims["name"].(string); ok {
		id.DisplayName = name
	}
	if picture, ok := claims["picture"].(string); ok {
		id.PhotoURL = picture
	}

	if id.UID == "" {
		return nil, ErrMissingSubject
	}

	return id, nil
}

// Identity retrieves and validates the identity from the session cookie.
// Returns an error when not authenticated, expired, or malformed.
func (m *Manager) Identity(r *http.Request) (*identity.Identity, error) {
	token := m.GetToken(r)
	if token == "" {
		return nil, ErrNoToken
	}
	return ParseIdentity(token)
}
