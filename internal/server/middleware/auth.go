// Package middleware provides HTTP middleware for sessions and the auth guard.
package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/akshayks13/genai-frontend-sub000/internal/authguard"
	"github.com/akshayks13/genai-frontend-sub000/internal/observability"
	"github.com/akshayks13/genai-frontend-sub000/internal/session"
	"go.uber.org/zap"
)

// ContextKey is a typed key for context values to avoid collisions.
type ContextKey string

const (
	tokenKey   ContextKey = "accessToken"
	sessionKey ContextKey = "sessionID"
)

// Checker decides whether a token may reach a protected route.
type Checker interface {
	Check(ctx context.Context, token, currentPath string) authguard.Decision
}

// Guard wires the auth guard into the HTTP stack.
type Guard struct {
	checker Checker
	store   session.Store
	logger  *zap.Logger
	metrics *observability.Metrics
}

// NewGuard creates the guard middleware. metrics may be nil.
func NewGuard(checker Checker, store session.Store, logger *zap.Logger, metrics *observability.Metrics) *Guard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Guard{checker: checker, store: store, logger: logger, metrics: metrics}
}

// Require runs the guard before next. The token comes from the session named
// by the session cookie, or from an Authorization bearer header when the
// session has none.
func (g *Guard) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sid := SessionID(r)

		token := ""
		if sid != "" {
			rec, err := g.store.Get(ctx, sid)
			switch {
			case err == nil:
				token = rec.AccessToken
			case !errors.Is(err, session.ErrNotFound):
				g.logger.Warn("failed to load session", zap.Error(err))
			}
		}
		if token == "" {
			token = bearerToken(r)
		}

		decision := g.checker.Check(ctx, token, r.URL.RequestURI())
		if g.metrics != nil {
			g.metrics.GuardDecisions.WithLabelValues(string(decision.State), strconv.FormatBool(decision.Refreshed)).Inc()
		}

		if decision.State != authguard.Authorized {
			if sid != "" && token != "" {
				g.forget(ctx, sid)
			}
			deny(w, r, decision.RedirectTo)
			return
		}

		if decision.Refreshed && sid != "" {
			g.remember(ctx, sid, decision)
		}

		ctx = context.WithValue(ctx, tokenKey, decision.Token)
		ctx = context.WithValue(ctx, sessionKey, sid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (g *Guard) remember(ctx context.Context, sid string, d authguard.Decision) {
	name, email := Identity(d.Token, d.User)
	_, err := g.store.Update(ctx, sid, func(rec *session.Record) error {
		rec.AccessToken = d.Token
		if name != "" {
			rec.UserName = name
		}
		if email != "" {
			rec.UserEmail = email
		}
		return nil
	})
	if err != nil {
		g.logger.Warn("failed to store refreshed token", zap.Error(err))
	}
}

func (g *Guard) forget(ctx context.Context, sid string) {
	_, err := g.store.Update(ctx, sid, func(rec *session.Record) error {
		rec.ClearIdentity()
		return nil
	})
	if err != nil {
		g.logger.Warn("failed to clear session identity", zap.Error(err))
	}
}

// deny sends browser navigations to the login page and tells API callers
// where to go.
func deny(w http.ResponseWriter, r *http.Request, location string) {
	if location == "" {
		location = authguard.LoginPath
	}
	if strings.Contains(r.Header.Get("Accept"), "text/html") {
		http.Redirect(w, r, location, http.StatusFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":    "Unauthorized",
		"redirect": location,
	})
}

// bearerToken parses "Authorization: Bearer <token>", case-insensitively.
func bearerToken(r *http.Request) string {
	parts := strings.Fields(r.Header.Get("Authorization"))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// GetAccessToken extracts the guarded access token from the request context.
func GetAccessToken(r *http.Request) (string, error) {
	token, ok := r.Context().Value(tokenKey).(string)
	if !ok || token == "" {
		return "", fmt.Errorf("access token not found in request context")
	}
	return token, nil
}

// GetSessionID returns the session bound by the guard, or "" for bearer-only
// callers.
func GetSessionID(r *http.Request) string {
	sid, _ := r.Context().Value(sessionKey).(string)
	return sid
}

// WithAccessToken returns ctx carrying token, as the guard would set it.
func WithAccessToken(ctx context.Context, token, sessionID string) context.Context {
	ctx = context.WithValue(ctx, tokenKey, token)
	return context.WithValue(ctx, sessionKey, sessionID)
}
