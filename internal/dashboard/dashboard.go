// Package dashboard assembles the dashboard page from the profile, overview
// and Google Workspace services in parallel.
package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/akshayks13/genai-frontend-sub000/internal/apiclient"
	"github.com/akshayks13/genai-frontend-sub000/internal/services"
	"github.com/akshayks13/genai-frontend-sub000/internal/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	eventLimit = 5
	taskLimit  = 10
)

// Messages shown in place of a failed Google section. The cause is logged.
const (
	EventsUnavailable = "Calendar events are unavailable right now"
	TasksUnavailable  = "Tasks are unavailable right now"
)

// ProfileAPI provides the user and their dashboard summary.
type ProfileAPI interface {
	User(ctx context.Context, token string) (*apiclient.Response, error)
	Dashboard(ctx context.Context, token string) (*apiclient.Response, error)
}

// OverviewAPI provides the market overview.
type OverviewAPI interface {
	Overview(ctx context.Context, token string) (*apiclient.Response, error)
}

// Workspace provides calendar events and tasks for a Google token.
type Workspace interface {
	UpcomingEvents(ctx context.Context, token string, now time.Time, limit int64) ([]services.Event, error)
	OpenTasks(ctx context.Context, token string, limit int64) ([]services.Task, error)
}

// Events is the calendar section of the page.
type Events struct {
	Items   []services.Event `json:"items"`
	Skipped bool             `json:"skipped,omitempty"`
	Error   string           `json:"error,omitempty"`
}

// Tasks is the tasks section of the page.
type Tasks struct {
	Items   []services.Task `json:"items"`
	Skipped bool            `json:"skipped,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Page is the dashboard page data.
type Page struct {
	User      *types.User     `json:"user"`
	Dashboard json.RawMessage `json:"dashboard"`
	Overview  json.RawMessage `json:"overview"`
	Events    Events          `json:"events"`
	Tasks     Tasks           `json:"tasks"`
}

// Service builds dashboard pages.
type Service struct {
	profile   ProfileAPI
	overview  OverviewAPI
	workspace Workspace
	logger    *zap.Logger
	now       func() time.Time
}

// New creates a Service. workspace may be nil to disable Google sections.
func New(profile ProfileAPI, overview OverviewAPI, workspace Workspace, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{profile: profile, overview: overview, workspace: workspace, logger: logger, now: time.Now}
}

// Page fetches every section concurrently. A failing backend section fails
// the page; a failing Google section is logged and shows a fixed message.
func (s *Service) Page(ctx context.Context, token, googleToken string) (*Page, error) {
	page := &Page{
		Events: Events{Items: []services.Event{}},
		Tasks:  Tasks{Items: []services.Task{}},
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		resp, err := s.profile.User(gctx, token)
		if err != nil {
			return err
		}
		var user types.User
		if err := resp.Decode(&user); err != nil {
			return fmt.Errorf("failed to decode user: %w", err)
		}
		page.User = &user
		return nil
	})

	g.Go(func() error {
		resp, err := s.profile.Dashboard(gctx, token)
		if err != nil {
			return err
		}
		page.Dashboard = resp.Body
		return nil
	})

	g.Go(func() error {
		resp, err := s.overview.Overview(gctx, token)
		if err != nil {
			return err
		}
		page.Overview = resp.Body
		return nil
	})

	if googleToken == "" || s.workspace == nil {
		page.Events.Skipped = true
		page.Tasks.Skipped = true
	} else {
		g.Go(func() error {
			items, err := s.workspace.UpcomingEvents(gctx, googleToken, s.now(), eventLimit)
			if err != nil {
				s.logger.Warn("calendar section failed", zap.Error(err))
				page.Events.Error = EventsUnavailable
				return nil
			}
			page.Events.Items = items
			return nil
		})
		g.Go(func() error {
			items, err := s.workspace.OpenTasks(gctx, googleToken, taskLimit)
			if err != nil {
				s.logger.Warn("tasks section failed", zap.Error(err))
				page.Tasks.Error = TasksUnavailable
				return nil
			}
			page.Tasks.Items = items
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return page, nil
}
