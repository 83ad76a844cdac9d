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

// viewerBlocked reports whether the viewer's account standing disallows
// placing orders. The backend enforces this too; checking here gives the
// user a message instead of a rejected submission.
func (h *Handler) viewerBlocked(r *http.Request) bool {
	v := h.viewer(r)
	return v != nil && v.Record != nil && v.Record.Status == api.StatusFraud
}

// OrderPage renders the place-order form for a meal.
func (h *Handler) OrderPage(w http.ResponseWriter, r *http.Request) {
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
	data["Blocked"] = h.viewerBlocked(r)
	h.renderTemplate(w, "order.html", data)
}

// PlaceOrder handles the order form submission.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	mealID := mux.Vars(r)["id"]

	if h.viewerBlocked(r) {
		h.renderError(w, r, http.StatusForbidden,
			"Your account is restricted and cannot place orders.")
		return
	}

	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, http.StatusBadRequest, "Could not read the form.")
		return
	}

	quantity, _ := strconv.Atoi(r.PostFormValue("quantity"))
	form := forms.OrderForm{
		Quantity:    quantity,
		UserAddress: strings.TrimSpace(r.PostFormValue("address")),
	}

	if errs := forms.Check(form); errs != nil {
		meal, err := h.client(r, w).Meal(r.Context(), mealID)
		if err != nil {
			h.NotFound(w, r)
			return
		}
		data := h.newTemplateData(r)
		data["Meal"] = meal
		data["Form"] = form
		data["Errors"] = errs
		h.renderTemplate(w, "order.html", data)
		return
	}

	order, err := h.client(r, w).PlaceOrder(r.Context(), api.OrderInput{
		FoodID:      mealID,
		Quantity:    form.Quantity,
		UserAddress: form.UserAddress,
	})
	if err != nil {
		if api.IsForbidden(err) {
			h.renderError(w, r, http.StatusForbidden,
				"Your account is restricted and cannot place orders.")
			return
		}
		h.log.Error("order placement failed",
			slog.String("meal_id", mealID),
			slog.String("error", err.Error()))
		h.renderError(w, r, http.StatusBadGateway, "Could not place your order. Please try again.")
		return
	}

	h.log.Info("order placed",
		slog.String("order_id", order.ID),
		slog.String("meal_id", mealID))
	http.Redirect(w, r, "/dashboard/my-orders", http.StatusSeeOther)
}

// MyOrders lists the viewer's orders: cancel while pending, pay once the chef
// has accepted and payment is still due.
func (h *Handler) MyOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.client(r, w).UserOrders(r.Context())
	if err != nil {
		h.log.Error("order listing failed", slog.String("error", err.Error()))
		h.renderError(w, r, http.StatusBadGateway, "Could not load your orders. Please try again.")
		return
	}

	data := h.newTemplateData(r)
	data["Orders"] = orders
	h.renderTemplate(w, "my-orders.html", data)
}

// CancelOrder cancels one of the viewer's pending orders.
func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	orderID := mux.Vars(r)["id"]

	if err := h.client(r, w).UpdateOrderStatus(r.Context(), orderID, api.OrderCancelled); err != nil {
		h.log.Error("order cancel failed",
			slog.String("order_id", orderID),
			slog.String("error", err.Error()))
		h.renderError(w, r, http.StatusBadGateway, "Could not cancel this order. Please try again.")
		return
	}

	http.Redirect(w, r, "/dashboard/my-orders", http.StatusSeeOther)
}

// PayOrder starts a checkout session for an accepted order and redirects the
// browser to the payment provider.
func (h *Handler) PayOrder(w http.ResponseWriter, r *http.Request) {
	orderID := mux.Vars(r)["id"]

	session, err := h.client(r, w).CreatePaymentSession(r.Context(), orderID)
	if err != nil {
		h.log.Error("payment session creation failed",
			slog.String("order_id", orderID),
			slog.String("error", err.Error()))
		h.renderError(w, r, http.StatusBadGateway, "Could not start checkout. Please try again.")
		return
	}

	http.Redirect(w, r, session.URL, http.StatusSeeOther)
}
