package model

import (
	"time"

	"github.com/google/uuid"
)

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	// Role is set by the portal the login came from (user/doctor/admin).
	// When present it must match the stored role.
	Role string `json:"role" binding:"omitempty,oneof=user doctor admin"`
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role" binding:"omitempty,oneof=user doctor"`
	Mobile   string `json:"mobile"`
	Gender   string `json:"gender" binding:"omitempty,oneof=Male Female Other"`

	// Doctor registration details.
	Specialization  string  `json:"specialization"`
	Experience      string  `json:"experience"`
	Qualification   string  `json:"qualification"`
	ClinicName      string  `json:"clinic_name"`
	ClinicAddress   string  `json:"clinic_address"`
	City            string  `json:"city"`
	ConsultationFee float64 `json:"consultation_fee" binding:"omitempty,gte=0"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

// AuthResponse is returned on successful login or registration.
type AuthResponse struct {
	Account *Account `json:"account"`
	Token   string   `json:"token"`
}

// TokenClaims is the validated identity carried by a session token.
type TokenClaims struct {
	AccountID    uuid.UUID `json:"account_id"`
	Role         string    `json:"role"`
	TokenVersion int       `json:"token_version"`
	ExpiresAt    time.Time `json:"expires_at"`
}
