package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the subset of the backend token payload the console reads.
type Claims struct {
	UserID string `json:"user_id,omitempty"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// ParseClaims decodes token claims without verifying the signature. The
// backend verifies tokens; the console only reads expiry and role.
func ParseClaims(token string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// Expired reports whether the exp claim is set and not after now.
func (c *Claims) Expired(now time.Time) bool {
	if c == nil || c.ExpiresAt == nil {
		return false
	}
	return !now.Before(c.ExpiresAt.Time)
}
