package handler

import (
	"log/slog"
	"net/http"

	"github.com/storerate/webapp/internal/backend"
	"github.com/storerate/webapp/internal/logger"
	"github.com/storerate/webapp/internal/session"
	"github.com/storerate/webapp/internal/validator"
	"github.com/storerate/webapp/internal/view"
)

type loginForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

type registerForm struct {
	Name     string `validate:"required,min=2,max=100"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8"`
}

// LoginPage renders the login form. Authenticated visitors are sent home.
func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if session.FromContext(r.Context()).Authenticated() {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.render(w, r, http.StatusOK, "login", view.LoginData{Base: h.base(r)})
}

// Login authenticates against the backend. Success stores the token
// cookie and redirects home; failure re-renders the form with the
// backend's message and the entered email preserved.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	form := loginForm{
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	}
	data := view.LoginData{Base: h.base(r), Email: form.Email}

	if err := validator.Validate(form); err != nil {
		data.Error = err.Error()
		h.render(w, r, http.StatusUnprocessableEntity, "login", data)
		return
	}

	res, err := h.backend.Login(r.Context(), backend.Credentials{
		Email:    form.Email,
		Password: form.Password,
	})
	if err != nil {
		logger.FromContext(r.Context()).Info("login rejected",
			slog.String("error", err.Error()),
		)
		data.Error = err.Error()
		h.render(w, r, errorStatus(err), "login", data)
		return
	}

	h.sessions.Cookies().SetToken(w, res.Token)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// RegisterPage renders the registration form.
func (h *Handler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	if session.FromContext(r.Context()).Authenticated() {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.render(w, r, http.StatusOK, "register", view.RegisterData{Base: h.base(r)})
}

// Register creates an account. The backend immediately returns a token,
// so a successful registration logs the visitor in.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	form := registerForm{
		Name:     r.PostFormValue("name"),
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	}
	data := view.RegisterData{Base: h.base(r), Name: form.Name, Email: form.Email}

	if err := validator.Validate(form); err != nil {
		data.Error = err.Error()
		h.render(w, r, http.StatusUnprocessableEntity, "register", data)
		return
	}

	res, err := h.backend.Register(r.Context(), backend.RegisterInput{
		Name:     form.Name,
		Email:    form.Email,
		Password: form.Password,
	})
	if err != nil {
		logger.FromContext(r.Context()).Info("registration rejected",
			slog.String("error", err.Error()),
		)
		data.Error = err.Error()
		h.render(w, r, errorStatus(err), "register", data)
		return
	}

	h.sessions.Cookies().SetToken(w, res.Token)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout discards the token cookie. The backend holds no session state
// for this client, so no backend call is needed.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Cookies().SetToken(w, "")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Profile renders the read-only profile page.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "profile", view.ProfileData{Base: h.base(r)})
}
