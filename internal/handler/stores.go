package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/storerate/webapp/internal/backend"
	"github.com/storerate/webapp/internal/logger"
	"github.com/storerate/webapp/internal/validator"
	"github.com/storerate/webapp/internal/view"
)

// reviewForm is the review submission on the store detail page.
type reviewForm struct {
	Rating  int    `validate:"required,gte=1,lte=5"`
	Comment string `validate:"max=500"`
}

// Home renders the store listing. The q parameter is forwarded to the
// backend verbatim; filtering happens server-side only.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	data := view.HomeData{Base: h.base(r), Query: q}

	list, err := h.backend.ListStores(r.Context(), h.token(r), q, 0)
	if err != nil {
		logger.FromContext(r.Context()).Error("list stores",
			slog.String("error", err.Error()),
		)
		data.Error = err.Error()
		h.render(w, r, errorStatus(err), "home", data)
		return
	}

	data.Stores = list.Items
	data.Total = list.Total
	h.render(w, r, http.StatusOK, "home", data)
}

// StoreDetail renders a single store with its reviews. The store and
// review fetches are sequential, so a rendered page is always
// internally consistent.
func (h *Handler) StoreDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	data, status, ok := h.loadStorePage(w, r, id)
	if !ok {
		return
	}
	data.Form = view.ReviewForm{Rating: 5}
	h.render(w, r, status, "store_detail", data)
}

// loadStorePage fetches the store and its reviews. A missing store
// redirects home; other failures render the error page. The bool result
// reports whether the caller should continue rendering.
func (h *Handler) loadStorePage(w http.ResponseWriter, r *http.Request, id int64) (view.StoreDetailData, int, bool) {
	token := h.token(r)

	store, err := h.backend.GetStore(r.Context(), token, id)
	if err != nil {
		if status := errorStatus(err); status == http.StatusNotFound {
			http.Redirect(w, r, "/", http.StatusSeeOther)
		} else {
			logger.FromContext(r.Context()).Error("get store",
				slog.Int64("store_id", id),
				slog.String("error", err.Error()),
			)
			h.renderError(w, r, status, err.Error())
		}
		return view.StoreDetailData{}, 0, false
	}

	reviews, err := h.backend.ListReviews(r.Context(), token, id)
	if err != nil {
		logger.FromContext(r.Context()).Error("list reviews",
			slog.Int64("store_id", id),
			slog.String("error", err.Error()),
		)
		h.renderError(w, r, errorStatus(err), err.Error())
		return view.StoreDetailData{}, 0, false
	}

	return view.StoreDetailData{
		Base:    h.base(r),
		Store:   *store,
		Reviews: reviews.Items,
	}, http.StatusOK, true
}

// SubmitReview handles the review form. Success redirects back to the
// detail page so the re-rendered aggregate reflects the new review;
// failure re-renders the page with the message inline and the entered
// values preserved.
func (h *Handler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	rating, _ := strconv.Atoi(r.PostFormValue("rating"))
	form := reviewForm{
		Rating:  rating,
		Comment: r.PostFormValue("comment"),
	}

	if err := validator.Validate(form); err != nil {
		h.rerenderStorePage(w, r, id, form, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	in := backend.ReviewInput{Rating: form.Rating, Comment: form.Comment}
	if _, err := h.backend.AddReview(r.Context(), h.token(r), id, in); err != nil {
		logger.FromContext(r.Context()).Warn("add review rejected",
			slog.Int64("store_id", id),
			slog.String("error", err.Error()),
		)
		h.rerenderStorePage(w, r, id, form, err.Error(), errorStatus(err))
		return
	}

	http.Redirect(w, r, "/stores/"+strconv.FormatInt(id, 10), http.StatusSeeOther)
}

// rerenderStorePage reloads the detail page with an inline error and
// the submitted form values intact.
func (h *Handler) rerenderStorePage(w http.ResponseWriter, r *http.Request, id int64, form reviewForm, message string, status int) {
	data, _, ok := h.loadStorePage(w, r, id)
	if !ok {
		return
	}
	data.Form = view.ReviewForm{Rating: form.Rating, Comment: form.Comment}
	data.Error = message
	h.render(w, r, status, "store_detail", data)
}
