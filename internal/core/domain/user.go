package domain

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User is an account as the API reports it. Login responses carry Role; the
// user listing carries Active and CreatedAt instead.
type User struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email,omitempty"`
	Role      string `json:"role,omitempty"`
	Active    bool   `json:"active,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// Credentials is the login payload. Fields are only checked for presence;
// the API decides what a valid identifier is.
type Credentials struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Registration is the sign-up payload. The API accepts "name" as an alias of username.
type Registration struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}
