package handlers

import (
	"log/slog"
	"net/http"

	"github.com/localchefbazaar/bazaar/internal/api"
)

// Home renders the landing page: six featured meals and the six most recent
// reviews. Both sections degrade to empty when the backend is unreachable.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		h.NotFound(w, r)
		return
	}

	client := h.client(r, w)
	data := h.newTemplateData(r)

	page, err := client.Meals(r.Context(), api.MealQuery{Page: 1, Limit: 6})
	if err != nil {
		h.log.Warn("featured meals fetch failed", slog.String("error", err.Error()))
	} else {
		data["FeaturedMeals"] = page.Meals
	}

	reviews, err := client.RecentReviews(r.Context(), 6)
	if err != nil {
		h.log.Warn("recent reviews fetch failed", slog.String("error", err.Error()))
	} else {
		data["RecentReviews"] = reviews
	}

	h.renderTemplate(w, "home.html", data)
}

// PaymentSuccess renders the landing page after a completed checkout.
func (h *Handler) PaymentSuccess(w http.ResponseWriter, r *http.Request) {
	data := h.newTemplateData(r)
	data["OrderID"] = r.URL.Query().Get("order")
	h.renderTemplate(w, "payment-success.html", data)
}
