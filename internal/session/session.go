// Package session keeps per-browser state on the server: the access token and
// cached identity, plus the explore chat transcript.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/akshayks13/genai-frontend-sub000/internal/types"
	"github.com/google/uuid"
)

// ErrNotFound is returned when a session does not exist or has expired.
var ErrNotFound = errors.New("session not found")

// Record is one browser session.
type Record struct {
	ID          string          `json:"id"`
	AccessToken string          `json:"accessToken,omitempty"`
	UserName    string          `json:"userName,omitempty"`
	UserEmail   string          `json:"userEmail,omitempty"`
	Messages    []types.Message `json:"messages,omitempty"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Info returns the identity part of the record.
func (r *Record) Info() types.SessionInfo {
	return types.SessionInfo{
		Authenticated: r.AccessToken != "",
		UserName:      r.UserName,
		UserEmail:     r.UserEmail,
	}
}

// ClearIdentity forgets the token and cached identity. The transcript is kept
// until the session expires.
func (r *Record) ClearIdentity() {
	r.AccessToken = ""
	r.UserName = ""
	r.UserEmail = ""
}

// Store persists session records with a TTL that is refreshed on every write.
type Store interface {
	// Get returns a copy of the record or ErrNotFound.
	Get(ctx context.Context, id string) (*Record, error)
	// Update applies fn to the record atomically, creating it when missing.
	Update(ctx context.Context, id string, fn func(*Record) error) (*Record, error)
	// Delete removes the record. Deleting a missing record is not an error.
	Delete(ctx context.Context, id string) error
	Close() error
}

// NewID returns a fresh opaque session identifier.
func NewID() string {
	return uuid.NewString()
}
