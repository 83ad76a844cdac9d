package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

// Client is the stateless REST binding to the identity service's token API.
// It holds no session state; the web frontend calls it per request, and
// RESTProvider wraps it with auth-state tracking for single-user embeddings.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
	log      *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the HTTP client, mainly for tests.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the client logger.
func WithLogger(log *slog.Logger) ClientOption {
	return func(c *Client) { c.log = log.With(slog.String("component", "identity")) }
}

// NewClient creates a client for the identity API at endpoint, authenticating
// calls with apiKey.
func NewClient(endpoint, apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		http:     &http.Client{Timeout: 15 * time.Second},
		log:      slog.Default().With(slog.String("component", "identity")),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type tokenResponse struct {
	LocalID     string `json:"localId"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoUrl"`
	IDToken     string `json:"idToken"`
	ExpiresIn   string `json:"expiresIn"`
}

func (r *tokenResponse) identity() *Identity {
	id := &Identity{
		UID:         r.LocalID,
		Email:       r.Email,
		DisplayName: r.DisplayName,
		PhotoURL:    r.PhotoURL,
		IDToken:     r.IDToken,
	}
	if secs, err := strconv.Atoi(r.ExpiresIn); err == nil {
		id.ExpiresAt = time.Now().Add(time.Duration(secs) * time.Second)
	}
	return id
}

// SignUp creates an account. Provider rejections surface as *CredentialError.
func (c *Client) SignUp(ctx context.Context, email, password string) (*Identity, error) {
	resp, err := c.call(ctx, "accounts:signUp", map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	})
	if err != nil {
		if code, ok := providerCode(err); ok {
			return nil, &CredentialError{Code: code, Message: userMessage(code)}
		}
		return nil, err
	}
	return resp.identity(), nil
}

// SignIn resolves an identity for the credentials. Provider rejections
// surface as *AuthError.
func (c *Client) SignIn(ctx context.Context, email, password string) (*Identity, error) {
	resp, err := c.call(ctx, "accounts:signInWithPassword", map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	})
	if err != nil {
		if code, ok := providerCode(err); ok {
			return nil, &AuthError{Code: code, Message: userMessage(code)}
		}
		return nil, err
	}
	return resp.identity(), nil
}

// UpdateProfile pushes display-name/photo changes for the identity behind
// idToken and returns the refreshed identity fields.
func (c *Client) UpdateProfile(ctx context.Context, idToken string, patch Profile) (*Identity, error) {
	if idToken == "" {
		return nil, ErrNotAuthenticated
	}

	body := map[string]any{
		"idToken":           idToken,
		"returnSecureToken": true,
	}
	if patch.DisplayName != "" {
		body["displayName"] = patch.DisplayName
	}
	if patch.PhotoURL != "" {
		body["photoUrl"] = patch.PhotoURL
	}

	resp, err := c.call(ctx, "accounts:update", body)
	if err != nil {
		if code, ok := providerCode(err); ok {
			return nil, &AuthError{Code: code, Message: userMessage(code)}
		}
		return nil, err
	}
	return resp.identity(), nil
}

type providerError struct {
	code   string
	status int
}

func (e *providerError) Error() string {
	return fmt.Sprintf("identity provider: %d %s", e.status, e.code)
}

func providerCode(err error) (string, bool) {
	if pe, ok := err.(*providerError); ok {
		return pe.code, true
	}
	return "", false
}

func (c *Client) call(ctx context.Context, method string, body map[string]any) (*tokenResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode %s request: %w", method, err)
	}

	url := fmt.Sprintf("%s/%s?key=%s", c.endpoint, method, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errBody struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		if decodeErr := json.NewDecoder(io.LimitReader(resp.Body, 8192)).Decode(&errBody); decodeErr != nil {
			return nil, &providerError{code: "UNKNOWN", status: resp.StatusCode}
		}
		c.log.Debug("provider rejected request",
			slog.String("method", method),
			slog.String("code", errBody.Error.Message))
		return nil, &providerError{code: errBody.Error.Message, status: resp.StatusCode}
	}

	var out tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", method, err)
	}
	return &out, nil
}
