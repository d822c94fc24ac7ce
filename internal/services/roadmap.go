package services

import (
	"context"
	"net/url"

	"github.com/akshayks13/genai-frontend-sub000/internal/apiclient"
	"github.com/akshayks13/genai-frontend-sub000/internal/schemas"
	"github.com/akshayks13/genai-frontend-sub000/internal/types"
)

// Roadmap wraps /roadmaps.
type Roadmap struct {
	client *apiclient.Client
}

// NewRoadmap creates a Roadmap wrapper.
func NewRoadmap(client *apiclient.Client) *Roadmap {
	return &Roadmap{client: client}
}

// Roadmaps lists the user's roadmaps.
func (r *Roadmap) Roadmaps(ctx context.Context, token string) (*apiclient.Response, error) {
	return r.client.Get(ctx, "/roadmaps", apiclient.WithBearer(token), apiclient.WithSchema(schemas.Roadmaps))
}

// Roadmap fetches a single roadmap.
func (r *Roadmap) Roadmap(ctx context.Context, token, id string) (*apiclient.Response, error) {
	return r.client.Get(ctx, "/roadmaps/"+url.PathEscape(id), apiclient.WithBearer(token))
}

// CreateRoadmap asks the backend to generate a roadmap.
func (r *Roadmap) CreateRoadmap(ctx context.Context, token string, req types.CreateRoadmapRequest) (*apiclient.Response, error) {
	return r.client.Post(ctx, "/roadmaps", req, apiclient.WithBearer(token))
}
