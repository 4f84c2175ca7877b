// Package handler implements the HTTP pages of the web frontend. Every
// handler is a thin translation layer: parse the form, call the
// backend, render a template or redirect. All domain state lives in the
// backend.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/storerate/webapp/internal/backend"
	"github.com/storerate/webapp/internal/logger"
	"github.com/storerate/webapp/internal/session"
	"github.com/storerate/webapp/internal/view"
)

// ownerStoreLimit caps the owner dashboard listing.
const ownerStoreLimit = 100

// Backend is the slice of the API client the page handlers use.
// Narrowed to an interface so tests can fake the backend.
type Backend interface {
	Login(ctx context.Context, creds backend.Credentials) (*backend.AuthResult, error)
	Register(ctx context.Context, in backend.RegisterInput) (*backend.AuthResult, error)
	ListStores(ctx context.Context, token, q string, limit int) (*backend.StoreList, error)
	GetStore(ctx context.Context, token string, id int64) (*backend.Store, error)
	CreateStore(ctx context.Context, token string, in backend.StoreInput) (*backend.Store, error)
	DeleteStore(ctx context.Context, token string, id int64) error
	ListReviews(ctx context.Context, token string, storeID int64) (*backend.ReviewList, error)
	AddReview(ctx context.Context, token string, storeID int64, in backend.ReviewInput) (*backend.Review, error)
	ListUsers(ctx context.Context, token string) ([]backend.User, error)
	SetUserRole(ctx context.Context, token string, id int64, role string) (*backend.User, error)
}

// Handler holds the dependencies shared by all page handlers.
type Handler struct {
	backend  Backend
	renderer *view.Renderer
	sessions *session.Manager
	logger   *slog.Logger
}

// New creates the page handler set.
func New(b Backend, renderer *view.Renderer, sessions *session.Manager, l *slog.Logger) *Handler {
	return &Handler{
		backend:  b,
		renderer: renderer,
		sessions: sessions,
		logger:   l,
	}
}

// base builds the layout data for the current session.
func (h *Handler) base(r *http.Request) view.Base {
	return view.Base{User: session.FromContext(r.Context()).User}
}

// token returns the validated backend token for the current request, or
// "" when anonymous. The session middleware is the sole reader of the
// raw cookie; a token it rejected is never forwarded to the backend.
func (h *Handler) token(r *http.Request) string {
	return session.FromContext(r.Context()).Token
}

// render executes a page template, logging the error if the write fails
// mid-response.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, page string, data any) {
	if err := h.renderer.Render(w, status, page, data); err != nil {
		logger.FromContext(r.Context()).Error("render page",
			slog.String("page", page),
			slog.String("error", err.Error()),
		)
	}
}

// renderError shows the generic error page.
func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	h.render(w, r, status, "error", view.ErrorData{Base: h.base(r), Message: message})
}

// idParam parses the {id} route parameter.
func idParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// errorStatus maps a backend failure to the HTTP status the page is
// served with. Transport failures surface as 502, backend rejections
// keep their status.
func errorStatus(err error) int {
	var berr *backend.Error
	if errors.As(err, &berr) && berr.Status > 0 {
		return berr.Status
	}
	return http.StatusBadGateway
}
