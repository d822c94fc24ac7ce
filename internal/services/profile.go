package services

import (
	"context"

	"github.com/akshayks13/genai-frontend-sub000/internal/apiclient"
	"github.com/akshayks13/genai-frontend-sub000/internal/schemas"
	"github.com/akshayks13/genai-frontend-sub000/internal/types"
)

// Profile wraps the /profile endpoints. Every call needs the user's token.
type Profile struct {
	client *apiclient.Client
}

// NewProfile creates a Profile wrapper.
func NewProfile(client *apiclient.Client) *Profile {
	return &Profile{client: client}
}

// User fetches the signed-in user's profile.
func (p *Profile) User(ctx context.Context, token string) (*apiclient.Response, error) {
	return p.client.Get(ctx, "/profile/user", apiclient.WithBearer(token), apiclient.WithSchema(schemas.User))
}

// UpdateUser applies a partial profile update.
func (p *Profile) UpdateUser(ctx context.Context, token string, req types.UpdateProfileRequest) (*apiclient.Response, error) {
	return p.client.Put(ctx, "/profile/user", req, apiclient.WithBearer(token), apiclient.WithSchema(schemas.User))
}

// Dashboard fetches the dashboard summary.
func (p *Profile) Dashboard(ctx context.Context, token string) (*apiclient.Response, error) {
	return p.client.Get(ctx, "/profile/dashboard", apiclient.WithBearer(token))
}

// Resume fetches metadata about the stored resume.
func (p *Profile) Resume(ctx context.Context, token string) (*apiclient.Response, error) {
	return p.client.Get(ctx, "/profile/resume", apiclient.WithBearer(token))
}

// UploadResume stores a compiled resume PDF.
func (p *Profile) UploadResume(ctx context.Context, token string, pdf []byte) (*apiclient.Response, error) {
	return p.client.PostMultipart(ctx, "/profile/resume", "file", "resume.pdf", pdf, apiclient.WithBearer(token))
}

// EnhanceResume asks the backend to improve resume source.
func (p *Profile) EnhanceResume(ctx context.Context, token string, req types.EnhanceResumeRequest) (*apiclient.Response, error) {
	return p.client.Post(ctx, "/profile/resume/enhance", req, apiclient.WithBearer(token))
}

// ResumeSource fetches the stored LaTeX source.
func (p *Profile) ResumeSource(ctx context.Context, token string) (*apiclient.Response, error) {
	return p.client.Get(ctx, "/profile/resume/source", apiclient.WithBearer(token))
}

// SaveResumeSource replaces the stored LaTeX source.
func (p *Profile) SaveResumeSource(ctx context.Context, token string, req types.SaveResumeSourceRequest) (*apiclient.Response, error) {
	return p.client.Put(ctx, "/profile/resume/source", req, apiclient.WithBearer(token))
}
