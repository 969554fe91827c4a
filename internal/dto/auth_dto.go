package dto

// RegisterRequest creates a new account. Passwords must match.
type RegisterRequest struct {
	Username        string `json:"username" binding:"required,min=3,max=150"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=8"`
	PasswordConfirm string `json:"password_confirm" binding:"required"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

// AuthResponse mirrors the token payload the frontend consumes.
type AuthResponse struct {
	User    *UserResponse `json:"user"`
	Access  string        `json:"access"`
	Refresh string        `json:"refresh"`
}
