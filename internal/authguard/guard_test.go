package authguard

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/akshayks13/genai-frontend-sub000/internal/apiclient"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProfile struct {
	calls []string
	resp  *apiclient.Response
	err   error
}

func (f *fakeProfile) User(_ context.Context, token string) (*apiclient.Response, error) {
	f.calls = append(f.calls, token)
	return f.resp, f.err
}

type fakeRefresher struct {
	calls []string
	resp  *apiclient.Response
	err   error
}

func (f *fakeRefresher) RefreshToken(_ context.Context, token string) (*apiclient.Response, error) {
	f.calls = append(f.calls, token)
	return f.resp, f.err
}

func jsonResponse(t *testing.T, v any) *apiclient.Response {
	t.Helper()
	body, err := json.Marshal(v)
	require.NoError(t, err)
	return &apiclient.Response{Status: http.StatusOK, Body: body}
}

func TestGuard_NoToken_RedirectsWithNext(t *testing.T) {
	profile := &fakeProfile{}
	refresher := &fakeRefresher{}
	g := New(profile, refresher)

	d := g.Check(context.Background(), "", "/dashboard")

	assert.Equal(t, Redirecting, d.State)
	assert.Equal(t, "/auth/login?next=%2Fdashboard", d.RedirectTo)
	assert.Empty(t, profile.calls, "no backend call without a token")
	assert.Empty(t, refresher.calls)
}

func TestGuard_ValidToken_Authorizes(t *testing.T) {
	profile := &fakeProfile{resp: jsonResponse(t, map[string]string{"name": "Ada", "email": "ada@example.com"})}
	refresher := &fakeRefresher{}
	g := New(profile, refresher)

	d := g.Check(context.Background(), "good", "/profile")

	assert.Equal(t, Authorized, d.State)
	assert.Equal(t, "good", d.Token)
	assert.False(t, d.Refreshed)
	assert.Empty(t, d.RedirectTo)
	require.NotNil(t, d.User)
	assert.Equal(t, "Ada", d.User.Name)
	assert.Equal(t, []string{"good"}, profile.calls)
	assert.Empty(t, refresher.calls)
}

func TestGuard_AuthErrorThenRefreshSucceeds(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			profile := &fakeProfile{err: &apiclient.APIError{Status: status, Message: "expired"}}
			refresher := &fakeRefresher{resp: jsonResponse(t, map[string]string{"accessToken": "fresh"})}
			g := New(profile, refresher)

			d := g.Check(context.Background(), "stale", "/explore")

			assert.Equal(t, Authorized, d.State)
			assert.Equal(t, "fresh", d.Token)
			assert.True(t, d.Refreshed)
			assert.Empty(t, d.RedirectTo)
			assert.Equal(t, []string{"stale"}, refresher.calls)
		})
	}
}

func TestGuard_AuthErrorThenRefreshFails(t *testing.T) {
	tests := []struct {
		name      string
		refresher *fakeRefresher
	}{
		{"refresh rejected", &fakeRefresher{err: &apiclient.APIError{Status: http.StatusUnauthorized}}},
		{"refresh unreachable", &fakeRefresher{err: &apiclient.TransportError{Path: "/auth/refresh", Message: "down"}}},
		{"refresh without token", &fakeRefresher{resp: &apiclient.Response{Body: []byte(`{"accessToken": ""}`)}}},
		{"refresh garbage", &fakeRefresher{resp: &apiclient.Response{Body: []byte(`[]`)}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile := &fakeProfile{err: &apiclient.APIError{Status: http.StatusUnauthorized}}
			g := New(profile, tt.refresher)

			d := g.Check(context.Background(), "stale", "/resume?tab=editor")

			assert.Equal(t, Redirecting, d.State)
			assert.Equal(t, "/auth/login?next=%2Fresume%3Ftab%3Deditor", d.RedirectTo)
			assert.Empty(t, d.Token)
		})
	}
}

func TestGuard_NonAuthErrorProceeds(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"server error", &apiclient.APIError{Status: http.StatusInternalServerError}},
		{"network error", &apiclient.TransportError{Path: "/profile/user", Message: "connection refused"}},
		{"bad shape", &apiclient.ShapeError{Path: "/profile/user"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			refresher := &fakeRefresher{}
			g := New(&fakeProfile{err: tt.err}, refresher)

			d := g.Check(context.Background(), "tok", "/trends")

			assert.Equal(t, Authorized, d.State)
			assert.Equal(t, "tok", d.Token)
			assert.Nil(t, d.User)
			assert.Empty(t, refresher.calls, "only auth errors trigger a refresh")
		})
	}
}

func TestGuard_ExpiredJWTSkipsProfileCheck(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": now.Add(-time.Minute).Unix(),
	}).SignedString([]byte("k"))
	require.NoError(t, err)

	profile := &fakeProfile{}
	refresher := &fakeRefresher{resp: jsonResponse(t, map[string]any{
		"accessToken": "fresh",
		"user":        map[string]string{"name": "Ada"},
	})}
	g := New(profile, refresher)
	g.now = func() time.Time { return now }

	d := g.Check(context.Background(), expired, "/dashboard")

	assert.Equal(t, Authorized, d.State)
	assert.Equal(t, "fresh", d.Token)
	assert.Empty(t, profile.calls)
	require.NotNil(t, d.User)
	assert.Equal(t, "Ada", d.User.Name)
}

func TestLoginURL(t *testing.T) {
	assert.Equal(t, "/auth/login", LoginURL(""))
	assert.Equal(t, "/auth/login?next=%2Fcareers%3Fq%3Dgo%26sort%3Dsalary", LoginURL("/careers?q=go&sort=salary"))
}
