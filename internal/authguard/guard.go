// Package authguard decides whether a request may see a protected page: it
// validates the stored access token against the profile service, tries one
// silent refresh on 401/403, and otherwise sends the caller to the login page.
package authguard

import (
	"context"
	"net/url"
	"time"

	"github.com/akshayks13/genai-frontend-sub000/internal/apiclient"
	"github.com/akshayks13/genai-frontend-sub000/internal/session"
	"github.com/akshayks13/genai-frontend-sub000/internal/types"
)

// LoginPath is where unauthenticated callers are sent.
const LoginPath = "/auth/login"

// State is the guard's position in its three-state machine.
type State string

const (
	// Checking is the initial state while the token is being validated.
	Checking State = "checking"
	// Authorized means the protected content may be rendered.
	Authorized State = "authorized"
	// Redirecting means the caller must go to the login page.
	Redirecting State = "redirecting"
)

// ProfileChecker validates a token by fetching the user's profile.
type ProfileChecker interface {
	User(ctx context.Context, token string) (*apiclient.Response, error)
}

// TokenRefresher trades a rejected token for a new one.
type TokenRefresher interface {
	RefreshToken(ctx context.Context, token string) (*apiclient.Response, error)
}

// Decision is the guard's verdict for one request.
type Decision struct {
	State      State
	Token      string // Token to use downstream; differs from the input after a refresh
	Refreshed  bool
	RedirectTo string
	User       *types.User // Set when the profile check succeeded
}

// Guard runs the check. It is safe for concurrent use.
type Guard struct {
	profile ProfileChecker
	auth    TokenRefresher
	now     func() time.Time
}

// New creates a Guard.
func New(profile ProfileChecker, auth TokenRefresher) *Guard {
	return &Guard{profile: profile, auth: auth, now: time.Now}
}

// Check runs the state machine for token on behalf of a request to
// currentPath (path plus query). It never returns Checking.
func (g *Guard) Check(ctx context.Context, token, currentPath string) Decision {
	if token == "" {
		return redirect(currentPath)
	}

	// A JWT that is visibly expired goes straight to refresh.
	if claims, err := session.ParseClaims(token); err == nil && claims.Expired(g.now()) {
		return g.refresh(ctx, token, currentPath)
	}

	resp, err := g.profile.User(ctx, token)
	switch {
	case err == nil:
		d := Decision{State: Authorized, Token: token}
		var user types.User
		if resp.Decode(&user) == nil {
			d.User = &user
		}
		return d
	case apiclient.IsAuthError(err):
		return g.refresh(ctx, token, currentPath)
	default:
		// Network or server trouble is not evidence the token is bad.
		return Decision{State: Authorized, Token: token}
	}
}

func (g *Guard) refresh(ctx context.Context, token, currentPath string) Decision {
	resp, err := g.auth.RefreshToken(ctx, token)
	if err != nil {
		return redirect(currentPath)
	}

	var tr types.TokenResponse
	if err := resp.Decode(&tr); err != nil || tr.AccessToken == "" {
		return redirect(currentPath)
	}

	return Decision{State: Authorized, Token: tr.AccessToken, Refreshed: true, User: tr.User}
}

func redirect(currentPath string) Decision {
	return Decision{State: Redirecting, RedirectTo: LoginURL(currentPath)}
}

// LoginURL builds the login redirect carrying next=currentPath.
func LoginURL(currentPath string) string {
	if currentPath == "" {
		return LoginPath
	}
	return LoginPath + "?" + url.Values{"next": {currentPath}}.Encode()
}
