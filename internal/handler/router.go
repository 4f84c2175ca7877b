package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/storerate/webapp/internal/backend"
	"github.com/storerate/webapp/internal/config"
	"github.com/storerate/webapp/internal/health"
	"github.com/storerate/webapp/internal/middleware"
	"github.com/storerate/webapp/internal/session"
	"github.com/storerate/webapp/internal/view"
)

// NewRouter creates the chi router with the global middleware stack,
// health and metrics endpoints, and all page routes.
func NewRouter(cfg *config.Config, h *Handler, sessions *session.Manager, healthHandler *health.Handler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware stack (applied in order). Recovery sits
	// outermost so a panic anywhere below it, the rate limiter
	// included, still turns into a 500 page.
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst, logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("web"))
	r.Use(middleware.Tracing("web"))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints (no session required).
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	// Embedded assets.
	r.Handle("/static/*", view.StaticHandler())

	// Page routes resolve the session from the token cookie first.
	r.Group(func(r chi.Router) {
		r.Use(sessions.Middleware)

		r.Get("/", h.Home)
		r.Get("/stores/{id}", h.StoreDetail)

		r.Get("/login", h.LoginPage)
		r.Post("/login", h.Login)
		r.Get("/register", h.RegisterPage)
		r.Post("/register", h.Register)
		r.Post("/logout", h.Logout)

		r.Group(func(r chi.Router) {
			r.Use(requires(session.AuthAny))
			r.Get("/profile", h.Profile)
			r.Post("/stores/{id}/reviews", h.SubmitReview)
		})

		r.Route("/owner", func(r chi.Router) {
			r.Use(requires(session.Roles(backend.RoleOwner, backend.RoleAdmin)))
			r.Get("/", h.OwnerDashboard)
			r.Post("/stores", h.CreateStore)
			r.Post("/stores/{id}/delete", h.DeleteStore)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(requires(session.Roles(backend.RoleAdmin)))
			r.Get("/", h.AdminDashboard)
			r.Post("/users/{id}/role", h.SetUserRole)
		})

		// Unknown paths fall back to the listing, like the catch-all
		// route of a single page app.
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/", http.StatusSeeOther)
		})
	})

	return r
}
