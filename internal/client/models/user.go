package models

// User is the identity of a logged-in librarian.
type User struct {
	ID        int64  `json:"id"`
	UserName  string `json:"user_name"`
	Email     string `json:"email,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

type Credentials struct {
	UserName string `json:"user_name" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is the body of a successful login: a token pair and the
// user identity fields at the same level.
type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User
}
