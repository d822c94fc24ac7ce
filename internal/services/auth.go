// Package services holds one thin wrapper per backend concern. Each method
// shapes a request, hands it to the shared API client, and returns the
// response. Errors propagate unchanged; callers decide how to surface them.
package services

import (
	"context"

	"github.com/akshayks13/genai-frontend-sub000/internal/apiclient"
	"github.com/akshayks13/genai-frontend-sub000/internal/schemas"
	"github.com/akshayks13/genai-frontend-sub000/internal/types"
)

// Auth wraps the /auth endpoints.
type Auth struct {
	client *apiclient.Client
}

// NewAuth creates an Auth wrapper.
func NewAuth(client *apiclient.Client) *Auth {
	return &Auth{client: client}
}

// Register creates an account.
func (a *Auth) Register(ctx context.Context, req types.SignupRequest) (*apiclient.Response, error) {
	return a.client.Post(ctx, "/auth/register", req)
}

// Login exchanges credentials for an access token.
func (a *Auth) Login(ctx context.Context, req types.LoginRequest) (*apiclient.Response, error) {
	return a.client.Post(ctx, "/auth/login", req, apiclient.WithSchema(schemas.Token))
}

// ForgotPassword asks the auth service to email a reset link.
func (a *Auth) ForgotPassword(ctx context.Context, req types.ForgotPasswordRequest) (*apiclient.Response, error) {
	return a.client.Post(ctx, "/auth/forgot-password", req)
}

// ResetPassword sets a new password using a reset token.
func (a *Auth) ResetPassword(ctx context.Context, req types.ResetPasswordRequest) (*apiclient.Response, error) {
	return a.client.Post(ctx, "/auth/reset-password", req)
}

// VerifyToken checks an access token with the auth service.
func (a *Auth) VerifyToken(ctx context.Context, token string) (*apiclient.Response, error) {
	return a.client.Get(ctx, "/auth/verify", apiclient.WithBearer(token))
}

// RefreshToken trades the current (possibly expired) token for a new one.
func (a *Auth) RefreshToken(ctx context.Context, token string) (*apiclient.Response, error) {
	return a.client.Post(ctx, "/auth/refresh", map[string]string{},
		apiclient.WithBearer(token), apiclient.WithSchema(schemas.Token))
}
