package handler

import (
	"log/slog"
	"net/http"

	"github.com/storerate/webapp/internal/backend"
	"github.com/storerate/webapp/internal/logger"
	"github.com/storerate/webapp/internal/validator"
	"github.com/storerate/webapp/internal/view"
)

type storeForm struct {
	Name        string `validate:"required,min=2,max=100"`
	Description string `validate:"max=500"`
	Address     string `validate:"max=200"`
}

// OwnerDashboard lists stores with the create form.
func (h *Handler) OwnerDashboard(w http.ResponseWriter, r *http.Request) {
	data := h.loadOwnerPage(r)
	h.render(w, r, http.StatusOK, "owner", data)
}

// CreateStore handles the add-store form. Success redirects back so the
// reloaded list includes the new store and the form comes back empty.
func (h *Handler) CreateStore(w http.ResponseWriter, r *http.Request) {
	form := storeForm{
		Name:        r.PostFormValue("name"),
		Description: r.PostFormValue("description"),
		Address:     r.PostFormValue("address"),
	}

	if err := validator.Validate(form); err != nil {
		data := h.loadOwnerPage(r)
		data.Form = view.StoreForm{Name: form.Name, Description: form.Description, Address: form.Address}
		data.Error = err.Error()
		h.render(w, r, http.StatusUnprocessableEntity, "owner", data)
		return
	}

	in := backend.StoreInput{
		Name:        form.Name,
		Description: form.Description,
		Address:     form.Address,
	}
	if _, err := h.backend.CreateStore(r.Context(), h.token(r), in); err != nil {
		logger.FromContext(r.Context()).Warn("create store rejected",
			slog.String("error", err.Error()),
		)
		data := h.loadOwnerPage(r)
		data.Form = view.StoreForm{Name: form.Name, Description: form.Description, Address: form.Address}
		data.Error = err.Error()
		h.render(w, r, errorStatus(err), "owner", data)
		return
	}

	http.Redirect(w, r, "/owner", http.StatusSeeOther)
}

// DeleteStore removes a store and reloads the dashboard.
func (h *Handler) DeleteStore(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		http.Redirect(w, r, "/owner", http.StatusSeeOther)
		return
	}

	if err := h.backend.DeleteStore(r.Context(), h.token(r), id); err != nil {
		logger.FromContext(r.Context()).Warn("delete store rejected",
			slog.Int64("store_id", id),
			slog.String("error", err.Error()),
		)
		data := h.loadOwnerPage(r)
		data.Error = err.Error()
		h.render(w, r, errorStatus(err), "owner", data)
		return
	}

	http.Redirect(w, r, "/owner", http.StatusSeeOther)
}

// loadOwnerPage fetches the store list for the dashboard. A fetch
// failure renders the page with the error inline and an empty list.
func (h *Handler) loadOwnerPage(r *http.Request) view.OwnerData {
	data := view.OwnerData{Base: h.base(r)}

	list, err := h.backend.ListStores(r.Context(), h.token(r), "", ownerStoreLimit)
	if err != nil {
		logger.FromContext(r.Context()).Error("list stores for owner dashboard",
			slog.String("error", err.Error()),
		)
		data.Error = err.Error()
		return data
	}

	data.Stores = list.Items
	return data
}
