package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
)

// ManageUsers lists all users with fraud-marking actions.
func (h *Handler) ManageUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.client(r, w).Users(r.Context())
	if err != nil {
		h.log.Error("user listing failed", slog.String("error", err.Error()))
		h.renderError(w, r, http.StatusBadGateway, "Could not load users. Please try again.")
		return
	}

	data := h.newTemplateData(r)
	data["Users"] = users
	h.renderTemplate(w, "manage-users.html", data)
}

// MarkFraud flags a user account as fraudulent and refreshes the list.
func (h *Handler) MarkFraud(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["id"]

	if err := h.client(r, w).MarkUserFraud(r.Context(), userID); err != nil {
		h.log.Error("fraud marking failed",
			slog.String("user_id", userID),
			slog.String("error", err.Error()))
		h.renderError(w, r, http.StatusBadGateway, "Could not update this user. Please try again.")
		return
	}

	h.log.Info("user marked as fraud", slog.String("user_id", userID))
	http.Redirect(w, r, "/dashboard/manage-users", http.StatusSeeOther)
}

// ManageRequests lists role-upgrade requests with approve and reject actions.
func (h *Handler) ManageRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := h.client(r, w).RoleRequests(r.Context())
	if err != nil {
		h.log.Error("role request listing failed", slog.String("error", err.Error()))
		h.renderError(w, r, http.StatusBadGateway, "Could not load requests. Please try again.")
		return
	}

	data := h.newTemplateData(r)
	data["Requests"] = requests
	h.renderTemplate(w, "manage-requests.html", data)
}

// ApproveRequest approves a role-upgrade request.
func (h *Handler) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	requestID := mux.Vars(r)["id"]

	if err := h.client(r, w).ApproveRoleRequest(r.Context(), requestID); err != nil {
		h.log.Error("request approval failed",
			slog.String("request_id", requestID),
			slog.String("error", err.Error()))
		h.renderError(w, r, http.StatusBadGateway, "Could not approve this request. Please try again.")
		return
	}

	http.Redirect(w, r, "/dashboard/manage-requests", http.StatusSeeOther)
}

// RejectRequest rejects a role-upgrade request.
func (h *Handler) RejectRequest(w http.ResponseWriter, r *http.Request) {
	requestID := mux.Vars(r)["id"]

	if err := h.client(r, w).RejectRoleRequest(r.Context(), requestID); err != nil {
		h.log.Error("request rejection failed",
			slog.String("request_id", requestID),
			slog.String("error", err.Error()))
		h.renderError(w, r, http.StatusBadGateway, "Could not reject this request. Please try again.")
		return
	}

	http.Redirect(w, r, "/dashboard/manage-requests", http.StatusSeeOther)
}

// StatisticsPage renders the platform aggregate counters.
func (h *Handler) StatisticsPage(w http.ResponseWriter, r *http.Request) {
	stats, err := h.client(r, w).Statistics(r.Context())
	if err != nil {
		h.log.Error("statistics fetch failed", slog.String("error", err.Error()))
		h.renderError(w, r, http.StatusBadGateway, "Could not load statistics. Please try again.")
		return
	}

	data := h.newTemplateData(r)
	data["Stats"] = stats
	h.renderTemplate(w, "statistics.html", data)
}
