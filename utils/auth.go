package utils

import (
	"time"

	"github.com/dgrijalva/jwt-go"
)

// Claims represents the JWT claims the backend puts in its bearer tokens
type Claims struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.StandardClaims
}

// InspectToken decodes the claims of a bearer JWT without checking its
// signature; only the backend holds the signing key.
func InspectToken(token string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(token, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// TokenExpired reports whether token is a JWT whose expiry has passed.
// Opaque (non-JWT) tokens are never considered expired locally.
func TokenExpired(token string, now time.Time) bool {
	claims, err := InspectToken(token)
	if err != nil {
		return false
	}
	return claims.ExpiresAt != 0 && now.Unix() > claims.ExpiresAt
}
