package handler

import (
	"net/http"

	"github.com/storerate/webapp/internal/session"
)

// requires returns middleware enforcing a route requirement against the
// session resolved earlier in the chain. Anonymous visitors go to the
// login page; authenticated users outside the allowed roles go home.
func requires(req session.Requirement) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch session.Check(session.FromContext(r.Context()), req) {
			case session.Allow:
				next.ServeHTTP(w, r)
			case session.RedirectLogin:
				http.Redirect(w, r, "/login", http.StatusSeeOther)
			default:
				http.Redirect(w, r, "/", http.StatusSeeOther)
			}
		})
	}
}
