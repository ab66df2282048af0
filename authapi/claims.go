package authapi

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/journal-session/users"
)

// AccessClaims are the claims carried by an access token.
type AccessClaims struct {
	Email string     `json:"email"`
	Name  string     `json:"name"`
	Role  users.Role `json:"role"`
	jwt.RegisteredClaims
}

// PeekClaims decodes the claims of an access token without checking its
// signature. Clients use it for display only; the backend stays authoritative.
func PeekClaims(raw string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil, err
	}
	return claims, nil
}
