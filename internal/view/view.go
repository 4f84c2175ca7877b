// Package view renders the server-side HTML pages from embedded
// templates. Each page template is parsed together with the shared
// layout so role-gated navigation stays consistent across pages.
package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"math"
	"net/http"

	"github.com/storerate/webapp/internal/backend"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// StaticHandler serves the embedded stylesheet and other assets under
// the /static/ prefix.
func StaticHandler() http.Handler {
	return http.StripPrefix("/static/", http.FileServer(http.FS(mustSub(staticFS, "static"))))
}

func mustSub(fsys embed.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}

var pages = []string{
	"home",
	"store_detail",
	"login",
	"register",
	"profile",
	"owner",
	"admin",
	"error",
}

// Renderer holds the parsed template set for every page.
type Renderer struct {
	templates map[string]*template.Template
}

// New parses all embedded page templates. It fails fast so a broken
// template is caught at startup rather than on first render.
func New() (*Renderer, error) {
	funcs := template.FuncMap{
		"stars":    stars,
		"truncate": truncate,
		"ratings":  ratings,
	}

	templates := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html",
			"templates/"+page+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", page, err)
		}
		templates[page] = t
	}

	return &Renderer{templates: templates}, nil
}

// Render writes the named page with the given status code. Page data
// must embed Base so the layout can render the session-aware header.
func (r *Renderer) Render(w http.ResponseWriter, status int, page string, data any) error {
	t, ok := r.templates[page]
	if !ok {
		return fmt.Errorf("unknown page template %q", page)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	return t.ExecuteTemplate(w, "layout.html", data)
}

// RenderTo executes a page template to an arbitrary writer (used in tests).
func (r *Renderer) RenderTo(w io.Writer, page string, data any) error {
	t, ok := r.templates[page]
	if !ok {
		return fmt.Errorf("unknown page template %q", page)
	}
	return t.ExecuteTemplate(w, "layout.html", data)
}

// Base carries the session user into every page so the layout can show
// the right navigation links.
type Base struct {
	User *backend.User
}

// IsOwner reports whether the nav should show the owner dashboard link.
func (b Base) IsOwner() bool {
	return b.User != nil && b.User.Role == backend.RoleOwner
}

// IsAdmin reports whether the nav should show the admin dashboard link.
func (b Base) IsAdmin() bool {
	return b.User != nil && b.User.Role == backend.RoleAdmin
}

// HomeData renders the store listing with the search box.
type HomeData struct {
	Base
	Query  string
	Stores []backend.Store
	Total  int
	Error  string
}

// ReviewForm holds entered review values for re-rendering on failure.
type ReviewForm struct {
	Rating  int
	Comment string
}

// StoreDetailData renders a single store with its reviews and, for
// authenticated visitors, the review form.
type StoreDetailData struct {
	Base
	Store   backend.Store
	Reviews []backend.Review
	Form    ReviewForm
	Error   string
}

// LoginData re-renders the login form with the entered email preserved.
type LoginData struct {
	Base
	Email string
	Error string
}

// RegisterData re-renders the register form with entered values preserved.
type RegisterData struct {
	Base
	Name  string
	Email string
	Error string
}

// ProfileData renders the read-only profile page.
type ProfileData struct {
	Base
}

// StoreForm holds entered store values for re-rendering on failure.
type StoreForm struct {
	Name        string
	Description string
	Address     string
}

// OwnerData renders the owner dashboard with the create form.
type OwnerData struct {
	Base
	Stores []backend.Store
	Form   StoreForm
	Error  string
}

// AdminData renders the user management page.
type AdminData struct {
	Base
	Users []backend.User
	Roles []string
	Error string
}

// ErrorData renders the generic error page.
type ErrorData struct {
	Base
	Message string
}

// star is a single cell of the 5-star indicator.
type star struct {
	Filled bool
}

// stars converts a rating to five filled/empty cells, rounding to the
// nearest whole star the way the listing displays it. Accepts both the
// float averages on stores and the integer ratings on reviews.
func stars(value any) []star {
	var filled int
	switch v := value.(type) {
	case float64:
		filled = int(math.Round(v))
	case int:
		filled = v
	case int64:
		filled = int(v)
	}
	if filled < 0 {
		filled = 0
	}
	if filled > 5 {
		filled = 5
	}
	out := make([]star, 5)
	for i := 0; i < 5; i++ {
		out[i] = star{Filled: i < filled}
	}
	return out
}

// truncate shortens a string to at most n runes, appending an ellipsis
// when anything was cut.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "…"
}

// ratings returns the selectable rating values for the review form.
func ratings() []int {
	return []int{1, 2, 3, 4, 5}
}
