package middleware

import (
	"net/http"
	"time"

	"github.com/akshayks13/genai-frontend-sub000/internal/session"
	"github.com/akshayks13/genai-frontend-sub000/internal/types"
)

// SessionCookie names the cookie holding the opaque session ID.
const SessionCookie = "session_id"

// SessionID returns the session cookie's value, or "".
func SessionID(r *http.Request) string {
	c, err := r.Cookie(SessionCookie)
	if err != nil {
		return ""
	}
	return c.Value
}

// EnsureSessionID returns the request's session ID, issuing a new cookie when
// there is none.
func EnsureSessionID(w http.ResponseWriter, r *http.Request, ttl time.Duration, secure bool) string {
	if sid := SessionID(r); sid != "" {
		return sid
	}
	sid := session.NewID()
	SetSessionCookie(w, sid, ttl, secure)
	return sid
}

// SetSessionCookie writes the session cookie.
func SetSessionCookie(w http.ResponseWriter, sid string, ttl time.Duration, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    sid,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Identity picks the display name and email for a token: the user record
// when the backend sent one, otherwise the token's own claims.
func Identity(token string, user *types.User) (name, email string) {
	if user != nil {
		name, email = user.Name, user.Email
	}
	if name != "" && email != "" {
		return name, email
	}
	claims, err := session.ParseClaims(token)
	if err != nil {
		return name, email
	}
	if name == "" {
		name = claims.Name
	}
	if email == "" {
		email = claims.Email
	}
	return name, email
}
