package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"
)

// defaultTaskList is the user's default Google Tasks list.
const defaultTaskList = "@default"

// Event is a calendar entry as the dashboard shows it.
type Event struct {
	Title string `json:"title"`
	Start string `json:"start"`
	End   string `json:"end,omitempty"`
	Link  string `json:"link,omitempty"`
}

// Task is a Google Tasks entry.
type Task struct {
	ID     string `json:"id,omitempty"`
	Title  string `json:"title"`
	Due    string `json:"due,omitempty"`
	Status string `json:"status,omitempty"`
}

// Workspace talks to Google Calendar and Google Tasks with a user's OAuth
// access token. A new API service is built per call because tokens are per user.
type Workspace struct {
	opts []option.ClientOption
}

// NewWorkspace creates a Workspace. opts are appended to every service.
func NewWorkspace(opts ...option.ClientOption) *Workspace {
	return &Workspace{opts: opts}
}

func (w *Workspace) clientOptions(token string) []option.ClientOption {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
	return append([]option.ClientOption{option.WithTokenSource(ts)}, w.opts...)
}

// UpcomingEvents lists up to limit events on the primary calendar starting after now.
func (w *Workspace) UpcomingEvents(ctx context.Context, token string, now time.Time, limit int64) ([]Event, error) {
	svc, err := calendar.NewService(ctx, w.clientOptions(token)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar client: %w", err)
	}

	resp, err := svc.Events.List("primary").
		TimeMin(now.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(limit).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list calendar events: %w", err)
	}

	events := make([]Event, 0, len(resp.Items))
	for _, item := range resp.Items {
		events = append(events, Event{
			Title: item.Summary,
			Start: eventTime(item.Start),
			End:   eventTime(item.End),
			Link:  item.HtmlLink,
		})
	}
	return events, nil
}

// AddEvent creates an all-day event on the primary calendar.
func (w *Workspace) AddEvent(ctx context.Context, token, title string, day time.Time) (*Event, error) {
	svc, err := calendar.NewService(ctx, w.clientOptions(token)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar client: %w", err)
	}

	created, err := svc.Events.Insert("primary", &calendar.Event{
		Summary: title,
		Start:   &calendar.EventDateTime{Date: day.Format(time.DateOnly)},
		End:     &calendar.EventDateTime{Date: day.AddDate(0, 0, 1).Format(time.DateOnly)},
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar event: %w", err)
	}

	return &Event{Title: created.Summary, Start: eventTime(created.Start), End: eventTime(created.End), Link: created.HtmlLink}, nil
}

// OpenTasks lists incomplete tasks on the default list.
func (w *Workspace) OpenTasks(ctx context.Context, token string, limit int64) ([]Task, error) {
	svc, err := tasks.NewService(ctx, w.clientOptions(token)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks client: %w", err)
	}

	resp, err := svc.Tasks.List(defaultTaskList).ShowCompleted(false).MaxResults(limit).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	out := make([]Task, 0, len(resp.Items))
	for _, item := range resp.Items {
		out = append(out, Task{ID: item.Id, Title: item.Title, Due: item.Due, Status: item.Status})
	}
	return out, nil
}

// AddTask creates a task on the default list. due may be zero.
func (w *Workspace) AddTask(ctx context.Context, token, title, notes string, due time.Time) (*Task, error) {
	svc, err := tasks.NewService(ctx, w.clientOptions(token)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks client: %w", err)
	}

	task := &tasks.Task{Title: title, Notes: notes}
	if !due.IsZero() {
		task.Due = due.UTC().Format(time.RFC3339)
	}

	created, err := svc.Tasks.Insert(defaultTaskList, task).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return &Task{ID: created.Id, Title: created.Title, Due: created.Due, Status: created.Status}, nil
}

func eventTime(t *calendar.EventDateTime) string {
	if t == nil {
		return ""
	}
	if t.DateTime != "" {
		return t.DateTime
	}
	return t.Date
}
