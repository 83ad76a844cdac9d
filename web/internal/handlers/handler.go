package handlers

import (
	"log/slog"
	"net/http"

	"github.com/localchefbazaar/bazaar/internal/api"
	"github.com/localchefbazaar/bazaar/internal/identity"
	"github.com/localchefbazaar/bazaar/web/internal/forms"
	"github.com/localchefbazaar/bazaar/web/internal/middleware"
	"github.com/localchefbazaar/bazaar/web/internal/render"
	"github.com/localchefbazaar/bazaar/web/internal/session"
)

// Handler holds dependencies for all web handlers
type Handler struct {
	backend        string
	idp            *identity.Client
	sessionManager *session.Manager
	templates      *render.TemplateSet
	log            *slog.Logger
}

// New creates a new handler with dependencies
func New(backendBaseURL string, idp *identity.Client, sessionManager *session.Manager, templates *render.TemplateSet, logger *slog.Logger) *Handler {
	return &Handler{
		backend:        backendBaseURL,
		idp:            idp,
		sessionManager: sessionManager,
		templates:      templates,
		log:            logger.With(slog.String("component", "web_handler")),
	}
}

// client creates a per-request backend client backed by the request's cookie
// credential, so the 401 interceptor can purge the cookie when the backend
// rejects the token.
func (h *Handler) client(r *http.Request, w http.ResponseWriter) *api.Client {
	tokens := &session.RequestTokens{Manager: h.sessionManager, Request: r, Writer: w}
	return api.NewClient(h.backend, tokens, api.WithLogger(h.log))
}

// viewer returns the authenticated viewer placed in the context by the route
// guard, or nil on public routes.
func (h *Handler) viewer(r *http.Request) *middleware.Viewer {
	v, ok := middleware.ViewerFrom(r.Context())
	if !ok {
		return nil
	}
	return v
}

// currentIdentity parses the identity from the session cookie on public
// routes, where the guard has not run. Returns nil when signed out.
func (h *Handler) currentIdentity(r *http.Request) *identity.Identity {
	id, err := h.sessionManager.Identity(r)
	if err != nil {
		if err != session.ErrNoToken {
			h.log.Debug("session identity unusable", slog.String("error", err.Error()))
		}
		return nil
	}
	return id
}

// newTemplateData creates a new template data map with standard fields
// populated. Callers add page-specific fields to the returned map.
func (h *Handler) newTemplateData(r *http.Request) map[string]interface{} {
	data := map[string]interface{}{
		"Viewer": (*middleware.Viewer)(nil),
		"Errors": forms.Errors(nil),
	}
	if v := h.viewer(r); v != nil {
		data["Viewer"] = v
		data["Identity"] = v.Identity
		data["Role"] = string(v.Role())
	} else if id := h.currentIdentity(r); id != nil {
		data["Viewer"] = &middleware.Viewer{Identity: id}
		data["Identity"] = id
		data["Role"] = string(api.RoleUser)
	}
	return data
}

// renderTemplate renders a template with data
func (h *Handler) renderTemplate(w http.ResponseWriter, name string, data interface{}) {
	if h.templates == nil {
		http.Error(w, "Templates not loaded", http.StatusInternalServerError)
		return
	}

	if err := h.templates.Execute(w, name, data); err != nil {
		h.log.Error("template rendering failed",
			slog.String("template", name),
			slog.String("error", err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// renderError renders the error page with a message and status code.
func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	data := h.newTemplateData(r)
	data["Status"] = status
	data["ErrorMessage"] = message
	w.WriteHeader(status)
	h.renderTemplate(w, "error.html", data)
}

// NotFound renders the not-found page.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.renderError(w, r, http.StatusNotFound, "The page you are looking for does not exist.")
}

// Health is the liveness endpoint.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
