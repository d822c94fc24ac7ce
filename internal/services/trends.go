package services

import (
	"context"

	"github.com/akshayks13/genai-frontend-sub000/internal/apiclient"
	"github.com/akshayks13/genai-frontend-sub000/internal/schemas"
)

// Trends wraps /trends and /overview.
type Trends struct {
	client *apiclient.Client
}

// NewTrends creates a Trends wrapper.
func NewTrends(client *apiclient.Client) *Trends {
	return &Trends{client: client}
}

// Trends fetches market trend entries.
func (t *Trends) Trends(ctx context.Context, token string) (*apiclient.Response, error) {
	return t.client.Get(ctx, "/trends", apiclient.WithBearer(token), apiclient.WithSchema(schemas.Trends))
}

// Overview fetches the market overview shown on the dashboard.
func (t *Trends) Overview(ctx context.Context, token string) (*apiclient.Response, error) {
	return t.client.Get(ctx, "/overview", apiclient.WithBearer(token))
}
