// Package types provides the request and response shapes exchanged between the
// gateway, its callers, and the backend services.
package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// SignupRequest represents the request to register a new account.
type SignupRequest struct {
	Name     string `json:"name" validate:"required,min=1"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginRequest represents the login request.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ForgotPasswordRequest asks the auth service to send a reset link.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest completes a password reset.
type ResetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

// TokenResponse is what the auth service returns for login, register and refresh.
type TokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
	User         *User  `json:"user,omitempty"`
}

// ID is a backend identifier that may arrive as a JSON string or number.
type ID string

// UnmarshalJSON accepts both "abc" and 123.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// User represents a user profile as returned by the profile service.
type User struct {
	ID       ID       `json:"id,omitempty"`
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Phone    string   `json:"phone,omitempty"`
	Location string   `json:"location,omitempty"`
	Headline string   `json:"headline,omitempty"`
	Skills   []string `json:"skills,omitempty"`
}

// UpdateProfileRequest represents a partial profile update.
type UpdateProfileRequest struct {
	Name     string   `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Phone    string   `json:"phone,omitempty" validate:"omitempty,max=40"`
	Location string   `json:"location,omitempty" validate:"omitempty,max=200"`
	Headline string   `json:"headline,omitempty" validate:"omitempty,max=300"`
	Skills   []string `json:"skills,omitempty" validate:"omitempty,max=100,dive,min=1,max=100"`
}

// SessionInfo is the cached identity shown by the UI shell.
type SessionInfo struct {
	Authenticated bool   `json:"authenticated"`
	UserName      string `json:"userName,omitempty"`
	UserEmail     string `json:"userEmail,omitempty"`
}

// Normalize trims whitespace and lower-cases the email.
func (r *LoginRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

// Normalize trims whitespace and lower-cases the email.
func (r *SignupRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}
