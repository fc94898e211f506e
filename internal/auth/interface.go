package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims are the JWT claims this service cares about. The subject is the
// stable user id; name and email seed the lazily created user row and the
// default folder name.
type Claims struct {
	jwt.RegisteredClaims
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

// TokenVerifier validates bearer tokens and extracts claims.
type TokenVerifier interface {
	VerifyToken(tokenString string) (*Claims, error)
	Close() error
}
