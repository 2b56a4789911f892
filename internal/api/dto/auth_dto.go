package dto

import "time"

// RegisterRequest payload for public registration. Role is optional and may
// not request admin; elevated accounts go through the admin endpoint.
type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password" validate:"required,userpassword"`
	Role        string `json:"role" validate:"omitempty,oneof=customer guest"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ChangePasswordRequest payload for rotating the caller's own password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,userpassword"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=NewPassword"`
}

// RegisterResponse echoes the created account; the digest never leaves the
// service.
type RegisterResponse struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// AuthResponse standard response for login.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
