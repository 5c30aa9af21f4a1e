package models

import "github.com/golang-jwt/jwt/v5"

// LoginRequest carries the credentials posted to /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginResponse returns the signed token and the authenticated profile.
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// JWTClaims embeds the registered claims plus the fields the middleware and
// handlers need without a second lookup.
type JWTClaims struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
	MemberID string `json:"member_id,omitempty"`
	Kelas    string `json:"kelas,omitempty"`
	jwt.RegisteredClaims
}
