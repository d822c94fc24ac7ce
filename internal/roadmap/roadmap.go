// Package roadmap lists and creates learning roadmaps and copies their steps
// to Google Tasks.
package roadmap

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/akshayks13/genai-frontend-sub000/internal/apiclient"
	"github.com/akshayks13/genai-frontend-sub000/internal/services"
	"github.com/akshayks13/genai-frontend-sub000/internal/types"
)

// ErrNoGoogleToken is returned by Sync when no Google token was supplied.
var ErrNoGoogleToken = errors.New("a Google token is required to sync roadmaps")

// API is the backend roadmap service.
type API interface {
	Roadmaps(ctx context.Context, token string) (*apiclient.Response, error)
	Roadmap(ctx context.Context, token, id string) (*apiclient.Response, error)
	CreateRoadmap(ctx context.Context, token string, req types.CreateRoadmapRequest) (*apiclient.Response, error)
}

// TaskWriter creates Google Tasks.
type TaskWriter interface {
	AddTask(ctx context.Context, token, title, notes string, due time.Time) (*services.Task, error)
}

// Service implements the roadmap page.
type Service struct {
	api   API
	tasks TaskWriter
}

// New creates a Service. tasks may be nil, which disables Sync.
func New(api API, tasks TaskWriter) *Service {
	return &Service{api: api, tasks: tasks}
}

// List returns the user's roadmaps.
func (s *Service) List(ctx context.Context, token string) (*types.RoadmapsResponse, error) {
	resp, err := s.api.Roadmaps(ctx, token)
	if err != nil {
		return nil, err
	}
	var out types.RoadmapsResponse
	if err := resp.Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode roadmaps: %w", err)
	}
	if out.Roadmaps == nil {
		out.Roadmaps = []types.Roadmap{}
	}
	return &out, nil
}

// Create asks the backend for a new roadmap and relays its reply.
func (s *Service) Create(ctx context.Context, token string, req types.CreateRoadmapRequest) (*apiclient.Response, error) {
	return s.api.CreateRoadmap(ctx, token, req)
}

// Sync creates one Google Task per roadmap step, in order. Steps without a
// title are skipped. On failure the result lists what was created so far.
func (s *Service) Sync(ctx context.Context, token, googleToken, id string) (*types.SyncResult, error) {
	if googleToken == "" || s.tasks == nil {
		return nil, ErrNoGoogleToken
	}

	resp, err := s.api.Roadmap(ctx, token, id)
	if err != nil {
		return nil, err
	}
	var rm types.Roadmap
	if err := resp.Decode(&rm); err != nil {
		return nil, fmt.Errorf("failed to decode roadmap: %w", err)
	}

	result := &types.SyncResult{Created: []string{}}
	for i, step := range rm.Steps {
		title := strings.TrimSpace(step.Title)
		if title == "" {
			result.Skipped = append(result.Skipped, fmt.Sprintf("step %d", i+1))
			continue
		}

		notes := step.Description
		if rm.Title != "" {
			notes = strings.TrimSpace(rm.Title + "\n\n" + notes)
		}

		task, err := s.tasks.AddTask(ctx, googleToken, title, notes, dueDate(step.Due))
		if err != nil {
			return result, fmt.Errorf("sync stopped at %q: %w", title, err)
		}
		result.Created = append(result.Created, task.Title)
	}
	return result, nil
}

// dueDate parses an RFC 3339 timestamp or a bare date. Anything else means no
// due date.
func dueDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t
	}
	return time.Time{}
}
