package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the identity the gateway can read from an access token without
// verifying it. The backend remains the authority on validity.
type Claims struct {
	Name      string
	Email     string
	ExpiresAt time.Time
}

// Expired reports whether the token carried an exp claim that has passed.
func (c *Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

// ParseClaims reads name, email and exp from a JWT access token. Tokens that
// are not JWTs return an error; callers treat that as "no local information".
func ParseClaims(token string) (*Claims, error) {
	mc := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, mc); err != nil {
		return nil, fmt.Errorf("token is not a readable JWT: %w", err)
	}

	c := &Claims{}
	if name, ok := mc["name"].(string); ok {
		c.Name = name
	}
	if email, ok := mc["email"].(string); ok {
		c.Email = email
	}
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		c.ExpiresAt = exp.Time
	}
	return c, nil
}
