package session

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/storerate/webapp/internal/backend"
	"github.com/storerate/webapp/internal/logger"
)

// CookieName is the single durable key holding the raw backend token.
// Absence means anonymous.
const CookieName = "storerate_token"

// Session is the identity derived for one request. User is nil for
// anonymous visitors. Token is the validated backend token, empty for
// anonymous visitors and for tokens the identity check rejected; it is
// what handlers forward on backend calls, never the raw cookie. Views
// read the session and never mutate it; the backend's /api/users/me
// response is the sole authority for its contents.
type Session struct {
	User  *backend.User
	Token string
}

// Anonymous returns the session of a visitor without a valid token.
func Anonymous() *Session {
	return &Session{}
}

// Authenticated reports whether the session carries a logged-in user.
func (s *Session) Authenticated() bool {
	return s != nil && s.User != nil
}

// Role returns the session's role, or the empty string when anonymous.
func (s *Session) Role() string {
	if !s.Authenticated() {
		return ""
	}
	return s.User.Role
}

type contextKey struct{}

// NewContext returns a context carrying the given session.
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session stored in ctx, or an anonymous
// session when the middleware has not run.
func FromContext(ctx context.Context) *Session {
	if s, ok := ctx.Value(contextKey{}).(*Session); ok {
		return s
	}
	return Anonymous()
}

// CookieStore reads and writes the token cookie.
type CookieStore struct {
	// Secure marks the cookie as HTTPS-only; enabled outside development.
	Secure bool
}

// Token returns the stored token, or "" when absent.
func (cs CookieStore) Token(r *http.Request) string {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

// SetToken stores the token. An empty token removes the cookie.
func (cs CookieStore) SetToken(w http.ResponseWriter, token string) {
	c := &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   cs.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	if token == "" {
		c.MaxAge = -1
	}
	http.SetCookie(w, c)
}

// UserFetcher resolves a token to its user. Implemented by the backend
// client; faked in tests.
type UserFetcher interface {
	CurrentUser(ctx context.Context, token string) (*backend.User, error)
}

// Manager derives the session for every request from the token cookie.
type Manager struct {
	fetcher UserFetcher
	cookies CookieStore
	logger  *slog.Logger
}

// NewManager creates a session manager backed by the given user fetcher.
func NewManager(fetcher UserFetcher, cookies CookieStore, l *slog.Logger) *Manager {
	return &Manager{fetcher: fetcher, cookies: cookies, logger: l}
}

// Cookies exposes the underlying cookie store for handlers that set or
// clear the token (login, register, logout).
func (m *Manager) Cookies() CookieStore {
	return m.cookies
}

// Middleware resolves the token cookie to a session and stores it in the
// request context. Any failure of the identity check leaves the request
// anonymous and clears the cookie; no error reaches the visitor.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := Anonymous()

		if token := m.cookies.Token(r); token != "" {
			user, err := m.fetcher.CurrentUser(r.Context(), token)
			switch {
			case err == nil:
				sess = &Session{User: user, Token: token}
			case backend.IsUnauthorized(err):
				m.logger.Debug("stored token rejected, clearing cookie")
				m.cookies.SetToken(w, "")
			default:
				m.logger.Warn("identity check failed, treating request as anonymous",
					slog.String("error", err.Error()),
				)
				m.cookies.SetToken(w, "")
			}
		}

		ctx := NewContext(r.Context(), sess)
		if sess.Authenticated() {
			ctx = logger.NewContext(ctx, logger.FromContext(ctx).With(
				slog.Int64("user_id", sess.User.ID),
			))
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
