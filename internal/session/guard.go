package session

// Requirement describes what a route demands from the current session.
type Requirement struct {
	authRequired bool
	roles        []string
}

// Public is satisfied by every session, anonymous included.
var Public = Requirement{}

// AuthAny requires a logged-in user of any role.
var AuthAny = Requirement{authRequired: true}

// Roles requires a logged-in user whose role is in the given set.
func Roles(roles ...string) Requirement {
	return Requirement{authRequired: true, roles: roles}
}

// Decision is the outcome of a guard check.
type Decision int

const (
	// Allow grants the navigation.
	Allow Decision = iota
	// RedirectLogin sends an anonymous visitor to the login page.
	RedirectLogin
	// RedirectHome sends an authenticated but under-privileged user home.
	RedirectHome
)

// Check decides whether a navigation is permitted. It is a pure function
// of the session and the route requirement: anonymous visitors are sent
// to login, authenticated users outside the allowed role set are sent
// home, everyone else passes.
func Check(s *Session, req Requirement) Decision {
	if !req.authRequired {
		return Allow
	}
	if !s.Authenticated() {
		return RedirectLogin
	}
	if len(req.roles) == 0 {
		return Allow
	}
	for _, role := range req.roles {
		if s.Role() == role {
			return Allow
		}
	}
	return RedirectHome
}
