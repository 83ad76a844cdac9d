package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/localchefbazaar/bazaar/internal/api"
	"github.com/localchefbazaar/bazaar/internal/identity"
	core "github.com/localchefbazaar/bazaar/internal/session"
	"github.com/localchefbazaar/bazaar/web/internal/session"
)

type contextKey string

const viewerKey contextKey = "viewer"

// Viewer is the authenticated request context: the identity parsed from the
// stored credential and the backend user record (nil when the fetch degraded).
type Viewer struct {
	Identity *identity.Identity
	Record   *api.User
}

// Role is the viewer's effective role; an absent record defaults to user.
func (v *Viewer) Role() api.Role {
	if v.Record == nil {
		return api.RoleUser
	}
	return api.ParseRole(string(v.Record.Role))
}

// ViewerFrom extracts the authenticated viewer from the request context.
func ViewerFrom(ctx context.Context) (*Viewer, bool) {
	v, ok := ctx.Value(viewerKey).(*Viewer)
	return v, ok
}

// AuthMiddleware gates protected routes on the stored credential and,
// optionally, on the backend role.
type AuthMiddleware struct {
	sessions *session.Manager
	backend  string
	log      *slog.Logger
}

// NewAuthMiddleware creates the route guard middleware.
func NewAuthMiddleware(sessions *session.Manager, backendBaseURL string, log *slog.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		sessions: sessions,
		backend:  backendBaseURL,
		log:      log.With(slog.String("component", "route_guard")),
	}
}

// Require guards a route. With no roles, any authenticated user passes; with
// roles, the effective backend role must be in the set. Unauthenticated
// requests are redirected to login carrying the original path; authenticated
// but unauthorized ones land on the dashboard.
func (m *AuthMiddleware) Require(roles ...api.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := m.sessions.GetToken(r)

			var id *identity.Identity
			if token != "" {
				var err error
				id, err = session.ParseIdentity(token)
				if err != nil {
					// Expired or malformed credential: purge it so the guard
					// below reads an absent token, not a stale one.
					m.log.Info("purging unusable credential",
						slog.String("error", err.Error()))
					m.sessions.ClearToken(r, w)
					token = ""
				}
			}

			// The record is resolved for every authenticated route, not just
			// role-gated ones: handlers and templates need the backend role
			// and account standing (fraud blocking, role-aware menus) even
			// when the route itself admits any role.
			var record *api.User
			if id != nil {
				record = m.fetchRecord(r, w, id.Email)
			}

			decision := core.Evaluate(core.GuardInput{
				Snapshot:     core.Snapshot{Identity: id, Record: record, Resolved: true},
				Token:        token,
				AllowedRoles: roles,
			})

			switch decision {
			case core.DecisionDenied:
				m.sessions.ClearToken(r, w)
				m.redirectToLogin(w, r)
			case core.DecisionForbidden:
				m.log.Info("role not permitted for route",
					slog.String("path", r.URL.Path),
					slog.String("email", id.Email))
				http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
			case core.DecisionAllowed:
				viewer := &Viewer{Identity: id, Record: record}
				next.ServeHTTP(w, r.WithContext(
					context.WithValue(r.Context(), viewerKey, viewer)))
			default:
				// Server-side resolution happens inline, so LOADING cannot
				// occur here; treat it as denied if it ever does.
				m.redirectToLogin(w, r)
			}
		})
	}
}

// fetchRecord looks up the session record, degrading to nil (effective role
// "user") on any failure. The guard decides what nil means for the route.
func (m *AuthMiddleware) fetchRecord(r *http.Request, w http.ResponseWriter, email string) *api.User {
	tokens := &session.RequestTokens{Manager: m.sessions, Request: r, Writer: w}
	client := api.NewClient(m.backend, tokens, api.WithLogger(m.log))

	record, err := client.UserByEmail(r.Context(), email)
	if err != nil {
		m.log.Warn("session record fetch failed",
			slog.String("email", email),
			slog.String("error", err.Error()))
		return nil
	}
	return record
}

// redirectToLogin sends the user to login, preserving the originally
// requested location so a successful sign-in can return them there.
func (m *AuthMiddleware) redirectToLogin(w http.ResponseWriter, r *http.Request) {
	next := r.URL.RequestURI()
	http.Redirect(w, r, "/login?next="+url.QueryEscape(next), http.StatusSeeOther)
}
