package auth

import (
	"errors"

	"github.com/dgrijalva/jwt-go"
)

// RoleAdmin is the role claim required by admin-only endpoints.
const RoleAdmin = "ADMIN"

var (
	// ErrInvalidToken is returned for missing, malformed, expired or badly signed tokens.
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrForbidden is returned when a valid token lacks the admin role.
	ErrForbidden = errors.New("admin role required")
)

// Claims carried by bearer tokens issued by the admin service.
type Claims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role"`
	jwt.StandardClaims
}

// Verifier validates bearer tokens.
type Verifier interface {
	Verify(tokenString string) (*Claims, error)
}
