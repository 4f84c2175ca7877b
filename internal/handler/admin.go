package handler

import (
	"log/slog"
	"net/http"

	"github.com/storerate/webapp/internal/backend"
	"github.com/storerate/webapp/internal/logger"
	"github.com/storerate/webapp/internal/view"
)

// AdminDashboard lists every user with their role controls.
func (h *Handler) AdminDashboard(w http.ResponseWriter, r *http.Request) {
	data := h.loadAdminPage(r)
	h.render(w, r, http.StatusOK, "admin", data)
}

// SetUserRole changes a user's role and redirects back to the
// dashboard, whose fresh render shows the new role. A rejected change
// re-renders the page with the backend's message inline instead of
// silently keeping the stale role.
func (h *Handler) SetUserRole(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}

	role := r.PostFormValue("role")
	if !backend.IsValidRole(role) {
		data := h.loadAdminPage(r)
		data.Error = "Unknown role: " + role
		h.render(w, r, http.StatusUnprocessableEntity, "admin", data)
		return
	}

	if _, err := h.backend.SetUserRole(r.Context(), h.token(r), id, role); err != nil {
		logger.FromContext(r.Context()).Warn("role change rejected",
			slog.Int64("target_user_id", id),
			slog.String("role", role),
			slog.String("error", err.Error()),
		)
		data := h.loadAdminPage(r)
		data.Error = err.Error()
		h.render(w, r, errorStatus(err), "admin", data)
		return
	}

	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// loadAdminPage fetches the user list. A fetch failure renders the page
// with the error inline and an empty list.
func (h *Handler) loadAdminPage(r *http.Request) view.AdminData {
	data := view.AdminData{Base: h.base(r), Roles: backend.ValidRoles()}

	users, err := h.backend.ListUsers(r.Context(), h.token(r))
	if err != nil {
		logger.FromContext(r.Context()).Error("list users",
			slog.String("error", err.Error()),
		)
		data.Error = err.Error()
		return data
	}

	data.Users = users
	return data
}
