package api

import (
	"log/slog"
	"net/http"
)

// TokenStore is the durable home of the bearer credential. Load returns an
// empty string when no credential is stored; that is not an error.
type TokenStore interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// authTransport injects the stored bearer credential into every outbound
// request and purges it when the backend answers 401, so a stale token is
// never re-sent. It never swallows the response or retries; callers decide
// what a 401 means for them.
type authTransport struct {
	base   http.RoundTripper
	tokens TokenStore
	log    *slog.Logger
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token, err := t.tokens.Load()
	if err != nil {
		t.log.Debug("no bearer credential available", slog.String("error", err.Error()))
	} else if token != "" {
		// Clone before mutating; RoundTrippers must not modify the caller's request.
		req = req.Clone(req.Context())
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		// The credential is stale or revoked. Purge it so no further request
		// leaks it; the caller still sees the 401 unchanged.
		if clearErr := t.tokens.Clear(); clearErr != nil {
			t.log.Error("failed to purge stale credential", slog.String("error", clearErr.Error()))
		} else {
			t.log.Info("purged stale bearer credential after 401",
				slog.String("path", req.URL.Path))
		}
	}

	return resp, nil
}
