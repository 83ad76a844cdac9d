package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/gosimple/slug"

	"github.com/localchefbazaar/bazaar/internal/api"
	"github.com/localchefbazaar/bazaar/web/internal/forms"
)

const mealsPerPage = 9

// Meals renders the browse page. Search, price sorting, and pagination are
// query parameters passed straight through to the backend.
func (h *Handler) Meals(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	query := api.MealQuery{
		Page:   1,
		Limit:  mealsPerPage,
		Search: strings.TrimSpace(q.Get("search")),
	}
	if p, err := strconv.Atoi(q.Get("page")); err == nil && p > 0 {
		query.Page = p
	}
	switch q.Get("order") {
	case "asc", "desc":
		query.Sort = "price"
		query.Order = q.Get("order")
	}

	data := h.newTemplateData(r)
	data["Search"] = query.Search
	data["Order"] = query.Order

	page, err := h.client(r, w).Meals(r.Context(), query)
	if err != nil {
		h.log.Error("meal listing failed", slog.String("error", err.Error()))
		h.renderError(w, r, http.StatusBadGateway, "Could not load meals. Please try again.")
		return
	}

	data["Meals"] = page.Meals
	data["Page"] = page.Page
	data["TotalPages"] = page.TotalPages
	data["Total"] = page.Total
	h.renderTemplate(w, "meals.html", data)
}

// MealDetail renders one meal with its reviews. The canonical URL carries a
// name slug; requests with a missing or stale slug redirect to it.
func (h *Handler) MealDetail(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	mealID := vars["id"]

	client := h.client(r, w)

	meal, err := client.Meal(r.Context(), mealID)
	if err != nil {
		if api.IsNotFound(err) {
			h.NotFound(w, r)
			return
		}
		h.log.Error("meal fetch failed",
			slog.String("meal_id", mealID),
			slog.String("error", err.Error()))
		h.renderError(w, r, http.StatusBadGateway, "Could not load this meal. Please try again.")
		return
	}

	canonical := slug.Make(meal.FoodName)
	if vars["slug"] != canonical {
		http.Redirect(w, r, "/meals/"+mealID+"/"+canonical, http.StatusMovedPermanently)
		return
	}

	data := h.newTemplateData(r)
	data["Meal"] = meal

	reviews, err := client.MealReviews(r.Context(), mealID)
	if err != nil {
		h.log.Warn("meal reviews fetch failed",
			slog.String("meal_id", mealID),
			slog.String("error", err.Error()))
	} else {
		data["Reviews"] = reviews
	}

	h.renderTemplate(w, "meal.html", data)
}

// AddFavorite saves the meal to the viewer's favorites and returns to the
// meal page. Duplicates surface as an informational flash, not an error.
func (h *Handler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	mealID := mux.Vars(r)["id"]

	err := h.client(r, w).AddFavorite(r.Context(), mealID)
	switch {
	case err == nil:
	case api.IsConflict(err):
		// Already favorited; nothing to do.
	default:
		h.log.Error("add favorite failed",
			slog.String("meal_id", mealID),
			slog.String("error", err.Error()))
		h.renderError(w, r, http.StatusBadGateway, "Could not save this favorite. Please try again.")
		return
	}

	http.Redirect(w, r, "/meals/"+mealID, http.StatusSeeOther)
}

// PostReview handles the review form on the meal page.
func (h *Handler) PostReview(w http.ResponseWriter, r *http.Request) {
	mealID := mux.Vars(r)["id"]

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
		// Re-render the meal page with the rejected form inline.
		client := h.client(r, w)
		meal, err := client.Meal(r.Context(), mealID)
		if err != nil {
			h.NotFound(w, r)
			return
		}
		data := h.newTemplateData(r)
		data["Meal"] = meal
		data["ReviewForm"] = form
		data["Errors"] = errs
		if reviews, err := client.MealReviews(r.Context(), mealID); err == nil {
			data["Reviews"] = reviews
		}
		h.renderTemplate(w, "meal.html", data)
		return
	}

	_, err := h.client(r, w).CreateReview(r.Context(), api.ReviewInput{
		FoodID:  mealID,
		Rating:  form.Rating,
		Comment: form.Comment,
	})
	if err != nil {
		h.log.Error("review creation failed",
			slog.String("meal_id", mealID),
			slog.String("error", err.Error()))
		h.renderError(w, r, http.StatusBadGateway, "Could not post your review. Please try again.")
		return
	}

	http.Redirect(w, r, "/meals/"+mealID, http.StatusSeeOther)
}
