package services

import (
	"context"

	"github.com/akshayks13/genai-frontend-sub000/internal/apiclient"
	"github.com/akshayks13/genai-frontend-sub000/internal/schemas"
)

// Explore wraps /explore (career listings) and /prompt (assistant).
type Explore struct {
	client *apiclient.Client
}

// NewExplore creates an Explore wrapper.
func NewExplore(client *apiclient.Client) *Explore {
	return &Explore{client: client}
}

// Listings fetches the full career and job listing set. Callers filter it.
func (e *Explore) Listings(ctx context.Context, token string) (*apiclient.Response, error) {
	return e.client.Get(ctx, "/explore", apiclient.WithBearer(token), apiclient.WithSchema(schemas.Explore))
}

// Prompt sends an English prompt to the assistant backend.
func (e *Explore) Prompt(ctx context.Context, token, prompt string) (*apiclient.Response, error) {
	return e.client.Post(ctx, "/prompt", map[string]string{"prompt": prompt},
		apiclient.WithBearer(token), apiclient.WithSchema(schemas.Prompt))
}
