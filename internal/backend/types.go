package backend

// Role constants define the allowed user roles.
const (
	RoleUser  = "user"
	RoleOwner = "owner"
	RoleAdmin = "admin"
)

// ValidRoles returns the set of valid user roles.
func ValidRoles() []string {
	return []string{RoleUser, RoleOwner, RoleAdmin}
}

// IsValidRole checks whether the given role string is a valid user role.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles() {
		if r == role {
			return true
		}
	}
	return false
}

// User is a backend user account. The session copy is read-only on this
// side; only the backend mutates users.
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Store is a store listing. AverageRating and ReviewsCount are derived
// by the backend and never written by this client.
type Store struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	Address       string  `json:"address"`
	AverageRating float64 `json:"average_rating"`
	ReviewsCount  int     `json:"reviews_count"`
}

// Review is a single store review.
type Review struct {
	ID       int64  `json:"id"`
	StoreID  int64  `json:"store_id"`
	Rating   int    `json:"rating"`
	Comment  string `json:"comment"`
	UserName string `json:"user_name"`
}

// StoreList is the paginated envelope returned by the store listing endpoint.
type StoreList struct {
	Items []Store `json:"items"`
	Total int     `json:"total"`
}

// ReviewList is the envelope returned by the review listing endpoint.
type ReviewList struct {
	Items []Review `json:"items"`
}

// AuthResult is the response of the login and register endpoints.
type AuthResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Credentials is the login request body.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterInput is the register request body.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// StoreInput is the create/update store request body.
type StoreInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Address     string `json:"address"`
}

// ReviewInput is the add-review request body.
type ReviewInput struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}
