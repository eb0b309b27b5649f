package dto

import (
	"github.com/spec-kit/account-service/internal/domain"
	"github.com/spec-kit/account-service/internal/validation"
)

// SignupRequest payload for new accounts.
type SignupRequest = validation.SignupForm

// LoginRequest payload for login.
type LoginRequest = validation.LoginForm

// SignupResponse is the 201 body of POST /api/auth/signup.
type SignupResponse struct {
	Msg   string `json:"msg"`
	Token string `json:"token"`
}

// LoginResponse is the 200 body of POST /api/auth/login.
type LoginResponse struct {
	Token string            `json:"token"`
	User  domain.PublicUser `json:"user"`
}

// MeResponse is the 200 body of GET /api/auth/me.
type MeResponse struct {
	User domain.PublicUser `json:"user"`
}
