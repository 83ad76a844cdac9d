package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/localchefbazaar/bazaar/internal/api"
	"github.com/localchefbazaar/bazaar/web/internal/forms"
)

const chefOrdersPerPage = 10

// parseMealForm reads the create/edit meal form. Ingredients arrive as one
// comma-separated field.
func parseMealForm(r *http.Request) forms.MealForm {
	price, _ := strconv.ParseFloat(r.PostFormValue("price"), 64)

	var ingredients []string
	for _, part := range strings.Split(r.PostFormValue("ingredients"), ",") {
		if part = strings.TrimSpace(part); part != "" {
			ingredients = append(ingredients, part)
		}
	}

	return forms.MealForm{
		FoodName:              strings.TrimSpace(r.PostFormValue("foodName")),
		FoodImage:             strings.TrimSpace(r.PostFormValue("foodImage")),
		Price:                 price,
		EstimatedDeliveryTime: strings.TrimSpace(r.PostFormValue("estimatedDeliveryTime")),
		ChefExperience:        strings.TrimSpace(r.PostFormValue("chefExperience")),
		Ingredients:           ingredients,
		DeliveryArea:          strings.TrimSpace(r.PostFormValue("deliveryArea")),
	}
}

func mealInput(form forms.MealForm) api.MealInput {
	return api.MealInput{
		FoodName:              form.FoodName,
		FoodImage:             form.FoodImage,
		Price:                 form.Price,
		Ingredients:           form.Ingredients,
		DeliveryArea:          form.DeliveryArea,
		EstimatedDeliveryTime: form.EstimatedDeliveryTime,
		ChefExperience:        form.ChefExperience,
	}
}

// CreateMealPage renders the empty meal form.
func (h *Handler) CreateMealPage(w http.ResponseWriter, r *http.Request) {
	h.renderTemplate(w, "create-meal.html", h.newTemplateData(r))
}

// CreateMeal handles the new-meal form submission.
func (h *Handler) CreateMeal(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, http.StatusBadRequest, "Could not read the form.")
		return
	}

	form := parseMealForm(r)
	if errs := forms.Check(form); errs != nil {
		data := h.newTemplateData(r)
		data["Form"] = form
		data["Errors"] = errs
		h.renderTemplate(w, "create-meal.html", data)
		return
	}

	meal, err := h.client(r, w).CreateMeal(r.Context(), mealInput(form))
	if err != nil {
		h.log.Error("meal creation failed", slog.String("error", err.Error()))
		h.renderError(w, r, http.StatusBadGateway, "Could not create the meal. Please try again.")
		return
	}

	h.log.Info("meal created",
		slog.String("meal_id", meal.ID),
		slog.String("food_name", meal.FoodName))
	http.Redirect(w, r, "/dashboard/my-meals", http.StatusSeeOther)
}

// MyMeals lists the chef's own meals with edit and delete actions.
func (h *Handler) MyMeals(w http.ResponseWriter, r *http.Request) {
	meals, err := h.client(r, w).ChefMeals(r.Context())
	if err != nil {
		h.log.Error("chef meal listing failed", slog.String("error", err.Error()))
		h.renderError(w, r, http.StatusBadGateway, "Could not load your meals. Please try again.")
		return
	}

	data := h.newTemplateData(r)
	data["Meals"] = meals
	h.renderTemplate(w, "my-meals.html", data)
}

// EditMealPage renders the meal form pre-filled with an existing meal.
func (h *Handler) EditMealPage(w http.ResponseWriter, r *http.Request) {
	mealID := mux.Vars(r)["id"]

	meal, err := h.client(r, w).Meal(r.Context(), mealID)
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

	data := h.newTemplateData(r)
	data["Meal"] = meal
	data["Form"] = forms.MealForm{
		FoodName:              meal.FoodName,
		FoodImage:             meal.FoodImage,
		Price:                 meal.Price,
		EstimatedDeliveryTime: meal.EstimatedDeliveryTime,
		ChefExperience:        meal.ChefExperience,
		Ingredients:           meal.Ingredients,
		DeliveryArea:          meal.DeliveryArea,
	}
	h.renderTemplate(w, "edit-meal.html", data)
}

// UpdateMeal handles the edit-meal form submission.
func (h *Handler) UpdateMeal(w http.ResponseWriter, r *http.Request) {
	mealID := mux.Vars(r)["id"]

	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, http.StatusBadRequest, "Could not read the form.")
		return
	}

	form := parseMealForm(r)
	if errs := forms.Check(form); errs != nil {
		data := h.newTemplateData(r)
		data["Form"] = form
		data["Errors"] = errs
		data["MealID"] = mealID
		h.renderTemplate(w, "edit-meal.html", data)
		return
	}

	if err := h.client(r, w).UpdateMeal(r.Context(), mealID, mealInput(form)); err != nil {
		h.log.Error("meal update failed",
			slog.String("meal_id", mealID),
			slog.String("error", err.Error()))
		h.renderError(w, r, http.StatusBadGateway, "Could not update the meal. Please try again.")
		return
	}

	http.Redirect(w, r, "/dashboard/my-meals", http.StatusSeeOther)
}

// DeleteMeal removes one of the chef's meals.
func (h *Handler) DeleteMeal(w http.ResponseWriter, r *http.Request) {
	mealID := mux.Vars(r)["id"]

	if err := h.client(r, w).DeleteMeal(r.Context(), mealID); err != nil {
		h.log.Error("meal delete failed",
			slog.String("meal_id", mealID),
			slog.String("error", err.Error()))
		h.renderError(w, r, http.StatusBadGateway, "Could not delete the meal. Please try again.")
		return
	}

	http.Redirect(w, r, "/dashboard/my-meals", http.StatusSeeOther)
}

// OrderRequests lists incoming orders for the chef, paginated.
func (h *Handler) OrderRequests(w http.ResponseWriter, r *http.Request) {
	page := 1
	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
		page = p
	}

	orders, err := h.client(r, w).ChefOrders(r.Context(), page, chefOrdersPerPage)
	if err != nil {
		h.log.Error("chef order listing failed", slog.String("error", err.Error()))
		h.renderError(w, r, http.StatusBadGateway, "Could not load order requests. Please try again.")
		return
	}

	data := h.newTemplateData(r)
	data["Orders"] = orders.Orders
	data["Page"] = orders.Page
	data["TotalPages"] = orders.TotalPages
	h.renderTemplate(w, "order-requests.html", data)
}

// AcceptOrder moves a pending order to accepted.
func (h *Handler) AcceptOrder(w http.ResponseWriter, r *http.Request) {
	h.transitionOrder(w, r, api.OrderAccepted)
}

// DeliverOrder moves an accepted order to delivered.
func (h *Handler) DeliverOrder(w http.ResponseWriter, r *http.Request) {
	h.transitionOrder(w, r, api.OrderDelivered)
}

func (h *Handler) transitionOrder(w http.ResponseWriter, r *http.Request, status api.OrderStatus) {
	orderID := mux.Vars(r)["id"]

	if err := h.client(r, w).UpdateOrderStatus(r.Context(), orderID, status); err != nil {
		h.log.Error("order transition failed",
			slog.String("order_id", orderID),
			slog.String("status", string(status)),
			slog.String("error", err.Error()))
		h.renderError(w, r, http.StatusBadGateway, "Could not update this order. Please try again.")
		return
	}

	http.Redirect(w, r, "/dashboard/order-requests", http.StatusSeeOther)
}
