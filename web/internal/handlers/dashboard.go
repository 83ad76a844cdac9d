package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/localchefbazaar/bazaar/internal/api"
	"github.com/localchefbazaar/bazaar/internal/identity"
	"github.com/localchefbazaar/bazaar/web/internal/forms"
)

// Dashboard renders the profile page with the role-upgrade request form.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	data := h.newTemplateData(r)
	if msg := r.URL.Query().Get("msg"); msg != "" {
		data["Message"] = flashMessage(msg)
	}
	h.renderTemplate(w, "dashboard.html", data)
}

// flashMessage maps redirect flash codes to copy. Codes keep user text out of
// the query string.
func flashMessage(code string) string {
	switch code {
	case "profile-saved":
		return "Your profile has been updated."
	case "request-sent":
		return "Your role request has been submitted for review."
	case "request-pending":
		return "You already have a pending request."
	default:
		return ""
	}
}

// UpdateProfile handles the display-profile form: push the change to the
// identity provider and refresh the stored credential so the new name claim
// renders immediately.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	v := h.viewer(r)
	if v == nil || v.Identity == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, http.StatusBadRequest, "Could not read the form.")
		return
	}

	form := forms.ProfileForm{
		DisplayName: strings.TrimSpace(r.PostFormValue("displayName")),
		PhotoURL:    strings.TrimSpace(r.PostFormValue("photoURL")),
	}

	if errs := forms.Check(form); errs != nil {
		data := h.newTemplateData(r)
		data["Form"] = form
		data["Errors"] = errs
		h.renderTemplate(w, "dashboard.html", data)
		return
	}

	updated, err := h.idp.UpdateProfile(r.Context(), v.Identity.IDToken, identity.Profile{
		DisplayName: form.DisplayName,
		PhotoURL:    form.PhotoURL,
	})
	if err != nil {
		h.log.Error("profile update failed",
			slog.String("email", v.Identity.Email),
			slog.String("error", err.Error()))
		h.renderError(w, r, http.StatusBadGateway, "Could not update your profile. Please try again.")
		return
	}

	if updated.IDToken != "" {
		if err := h.sessionManager.SetToken(r, w, updated.IDToken); err != nil {
			h.log.Error("failed to refresh session credential", slog.String("error", err.Error()))
		}
	}

	http.Redirect(w, r, "/dashboard?msg=profile-saved", http.StatusSeeOther)
}

// RequestRole submits a role-upgrade request from the profile page. A request
// already pending surfaces as information, not an error.
func (h *Handler) RequestRole(w http.ResponseWriter, r *http.Request) {
	v := h.viewer(r)
	if v == nil || v.Identity == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, http.StatusBadRequest, "Could not read the form.")
		return
	}

	var reqType api.RequestType
	switch r.PostFormValue("requestType") {
	case string(api.RequestChef):
		reqType = api.RequestChef
	case string(api.RequestAdmin):
		reqType = api.RequestAdmin
	default:
		h.renderError(w, r, http.StatusBadRequest, "Unknown role request type.")
		return
	}

	name := v.Identity.DisplayName
	if v.Record != nil && v.Record.Name != "" {
		name = v.Record.Name
	}

	err := h.client(r, w).SubmitRoleRequest(r.Context(), name, v.Identity.Email, reqType)
	switch {
	case err == nil:
		http.Redirect(w, r, "/dashboard?msg=request-sent", http.StatusSeeOther)
	case api.IsConflict(err):
		http.Redirect(w, r, "/dashboard?msg=request-pending", http.StatusSeeOther)
	default:
		h.log.Error("role request failed",
			slog.String("email", v.Identity.Email),
			slog.String("error", err.Error()))
		h.renderError(w, r, http.StatusBadGateway, "Could not submit your request. Please try again.")
	}
}

// MyReviews lists the viewer's reviews with inline edit and delete.
func (h *Handler) MyReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.client(r, w).UserReviews(r.Context())
	if err != nil {
		h.log.Error("review listing failed", slog.String("error", err.Error()))
		h.renderError(w, r, http.StatusBadGateway, "Could not load your reviews. Please try again.")
		return
	}

	data := h.newTemplateData(r)
	data["Reviews"] = reviews
	data["EditingID"] = r.URL.Query().Get("edit")
	h.renderTemplate(w, "my-reviews.html", data)
}

// UpdateReview edits one of the viewer's reviews.
func (h *Handler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	reviewID := mux.Vars(r)["id"]

	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, http.StatusBadRequest, "Could not read the form.")
		return
	}

	rating, _ := strconv.Atoi(r.PostFormValue("rating"))
	form := forms.ReviewForm{
		Rating:  rating,
		Comment: strings.TrimSpace(r.PostFormValue("comment")),
	}

	if errs := forms.Check(form); errs != nil {
		reviews, err := h.client(r, w).UserReviews(r.Context())
		if err != nil {
			h.renderError(w, r, http.StatusBadGateway, "Could not load your reviews. Please try again.")
			return
		}
		data := h.newTemplateData(r)
		data["Reviews"] = reviews
		data["EditingID"] = reviewID
		data["Form"] = form
		data["Errors"] = errs
		h.renderTemplate(w, "my-reviews.html", data)
		return
	}

	err := h.client(r, w).UpdateReview(r.Context(), reviewID, api.ReviewInput{
		Rating:  form.Rating,
		Comment: form.Comment,
	})
	if err != nil {
		h.log.Error("review update failed",
			slog.String("review_id", reviewID),
			slog.String("error", err.Error()))
		h.renderError(w, r, http.StatusBadGateway, "Could not update your review. Please try again.")
		return
	}

	http.Redirect(w, r, "/dashboard/my-reviews", http.StatusSeeOther)
}

// DeleteReview removes one of the viewer's reviews.
func (h *Handler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	reviewID := mux.Vars(r)["id"]

	if err := h.client(r, w).DeleteReview(r.Context(), reviewID); err != nil {
		h.log.Error("review delete failed",
			slog.String("review_id", reviewID),
			slog.String("error", err.Error()))
		h.renderError(w, r, http.StatusBadGateway, "Could not delete your review. Please try again.")
		return
	}

	http.Redirect(w, r, "/dashboard/my-reviews", http.StatusSeeOther)
}

// Favorites lists the viewer's saved meals.
func (h *Handler) Favorites(w http.ResponseWriter, r *http.Request) {
	favorites, err := h.client(r, w).Favorites(r.Context())
	if err != nil {
		h.log.Error("favorites listing failed", slog.String("error", err.Error()))
		h.renderError(w, r, http.StatusBadGateway, "Could not load your favorites. Please try again.")
		return
	}

	data := h.newTemplateData(r)
	data["Favorites"] = favorites
	h.renderTemplate(w, "favorites.html", data)
}

// RemoveFavorite drops one saved meal.
func (h *Handler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	favoriteID := mux.Vars(r)["id"]

	if err := h.client(r, w).RemoveFavorite(r.Context(), favoriteID); err != nil {
		h.log.Error("favorite removal failed",
			slog.String("favorite_id", favoriteID),
			slog.String("error", err.Error()))
		h.renderError(w, r, http.StatusBadGateway, "Could not remove this favorite. Please try again.")
		return
	}

	http.Redirect(w, r, "/dashboard/favorites", http.StatusSeeOther)
}
