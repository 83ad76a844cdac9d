package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/localchefbazaar/bazaar/internal/api"
	"github.com/localchefbazaar/bazaar/internal/identity"
	"github.com/localchefbazaar/bazaar/web/internal/forms"
)

// safeNext validates a post-login redirect target. Only same-site paths are
// allowed; anything else falls back to the home page.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return "/"
	}
	return next
}

// LoginPage renders the sign-in form.
func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if h.currentIdentity(r) != nil {
		http.Redirect(w, r, safeNext(r.URL.Query().Get("next")), http.StatusSeeOther)
		return
	}

	data := h.newTemplateData(r)
	data["Next"] = r.URL.Query().Get("next")
	h.renderTemplate(w, "login.html", data)
}

// Login handles the sign-in form submission: exchange credentials with the
// identity provider, persist the ID token in the session cookie, then return
// the user to where they were headed.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, http.StatusBadRequest, "Could not read the form.")
		return
	}

	form := forms.LoginForm{
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
		Next:     r.PostFormValue("next"),
	}

	data := h.newTemplateData(r)
	data["Form"] = form
	data["Next"] = form.Next

	if errs := forms.Check(form); errs != nil {
		data["Errors"] = errs
		h.renderTemplate(w, "login.html", data)
		return
	}

	id, err := h.idp.SignIn(r.Context(), form.Email, form.Password)
	if err != nil {
		var authErr *identity.AuthError
		if errors.As(err, &authErr) {
			data["Message"] = authErr.Message
			h.renderTemplate(w, "login.html", data)
			return
		}
		h.log.Error("sign-in failed", slog.String("error", err.Error()))
		h.renderError(w, r, http.StatusBadGateway, "Sign-in is unavailable right now. Please try again.")
		return
	}

	if err := h.sessionManager.SetToken(r, w, id.IDToken); err != nil {
		h.log.Error("failed to save session", slog.String("error", err.Error()))
		h.renderError(w, r, http.StatusInternalServerError, "Could not save your session.")
		return
	}

	h.log.Info("user signed in", slog.String("email", id.Email))
	http.Redirect(w, r, safeNext(form.Next), http.StatusSeeOther)
}

// RegisterPage renders the sign-up form.
func (h *Handler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	if h.currentIdentity(r) != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.renderTemplate(w, "register.html", h.newTemplateData(r))
}

// Register handles sign-up: create the provider account, push the display
// profile, persist the credential, then create the backend user record.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, http.StatusBadRequest, "Could not read the form.")
		return
	}

	form := forms.RegisterForm{
		Name:     strings.TrimSpace(r.PostFormValue("name")),
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
		PhotoURL: strings.TrimSpace(r.PostFormValue("photoURL")),
	}

	data := h.newTemplateData(r)
	data["Form"] = form

	if errs := forms.Check(form); errs != nil {
		data["Errors"] = errs
		h.renderTemplate(w, "register.html", data)
		return
	}

	id, err := h.idp.SignUp(r.Context(), form.Email, form.Password)
	if err != nil {
		var credErr *identity.CredentialError
		if errors.As(err, &credErr) {
			data["Message"] = credErr.Message
			h.renderTemplate(w, "register.html", data)
			return
		}
		h.log.Error("sign-up failed", slog.String("error", err.Error()))
		h.renderError(w, r, http.StatusBadGateway, "Sign-up is unavailable right now. Please try again.")
		return
	}

	// Push the display profile; the refreshed token carries the name claim.
	if updated, err := h.idp.UpdateProfile(r.Context(), id.IDToken, identity.Profile{
		DisplayName: form.Name,
		PhotoURL:    form.PhotoURL,
	}); err != nil {
		h.log.Warn("profile update after sign-up failed", slog.String("error", err.Error()))
	} else if updated.IDToken != "" {
		id = updated
	}

	if err := h.sessionManager.SetToken(r, w, id.IDToken); err != nil {
		h.log.Error("failed to save session", slog.String("error", err.Error()))
		h.renderError(w, r, http.StatusInternalServerError, "Could not save your session.")
		return
	}

	if _, err := h.client(r, w).RegisterUser(r.Context(), api.UserInput{
		Name:     form.Name,
		Email:    form.Email,
		PhotoURL: form.PhotoURL,
	}); err != nil {
		// The provider account exists; the record lookup will retry creation
		// server-side on first sign-in, so sign the user in anyway.
		h.log.Warn("backend user record creation failed",
			slog.String("email", form.Email),
			slog.String("error", err.Error()))
	}

	h.log.Info("user registered", slog.String("email", form.Email))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout clears the session cookie and returns to the home page.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessionManager.ClearToken(r, w); err != nil {
		h.log.Error("error clearing session", slog.String("error", err.Error()))
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
