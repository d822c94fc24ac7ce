// Package listings serves the careers and trends pages: it fetches the
// backend lists and filters and sorts them locally.
package listings

import (
	"context"
	"fmt"

	"github.com/akshayks13/genai-frontend-sub000/internal/apiclient"
	"github.com/akshayks13/genai-frontend-sub000/internal/types"
)

// SummaryLength caps job summaries, in characters.
const SummaryLength = 280

// ListingsAPI fetches the unfiltered career listings.
type ListingsAPI interface {
	Listings(ctx context.Context, token string) (*apiclient.Response, error)
}

// TrendsAPI fetches trends.
type TrendsAPI interface {
	Trends(ctx context.Context, token string) (*apiclient.Response, error)
}

// Service serves filtered listings.
type Service struct {
	listings ListingsAPI
	trends   TrendsAPI
}

// New creates a Service.
func New(listings ListingsAPI, trends TrendsAPI) *Service {
	return &Service{listings: listings, trends: trends}
}

// Careers returns listings matching f, with descriptions as plain text. Every
// filter, the free-text query included, runs here on the cleaned text.
func (s *Service) Careers(ctx context.Context, token string, f JobFilter) (*types.ExploreResponse, error) {
	resp, err := s.listings.Listings(ctx, token)
	if err != nil {
		return nil, err
	}

	var body types.ExploreResponse
	if err := resp.Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode listings: %w", err)
	}

	for i := range body.Jobs {
		j := &body.Jobs[i]
		j.Description = PlainText(j.Description)
		if j.Summary == "" {
			j.Summary = Summarize(j.Description, SummaryLength)
		} else {
			j.Summary = Summarize(PlainText(j.Summary), SummaryLength)
		}
	}

	return &types.ExploreResponse{Jobs: FilterJobs(body.Jobs, f)}, nil
}

// Trends returns trends matching f.
func (s *Service) Trends(ctx context.Context, token string, f TrendFilter) (*types.TrendsResponse, error) {
	resp, err := s.trends.Trends(ctx, token)
	if err != nil {
		return nil, err
	}

	var body types.TrendsResponse
	if err := resp.Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode trends: %w", err)
	}
	return &types.TrendsResponse{Trends: FilterTrends(body.Trends, f)}, nil
}
