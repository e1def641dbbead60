package auth

import (
	"fmt"
	"strings"

	"github.com/dgrijalva/jwt-go"
)

type hmacVerifier struct {
	key []byte
}

// NewVerifier creates a verifier for HS256 tokens signed with secret.
func NewVerifier(secret string) Verifier {
	return &hmacVerifier{key: []byte(secret)}
}

func (v *hmacVerifier) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.key, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims, nil
}

// IsAdmin reports whether the claims carry the admin role. Spring-style
// "ROLE_ADMIN" authorities are accepted as well.
func (c *Claims) IsAdmin() bool {
	return strings.EqualFold(strings.TrimPrefix(strings.ToUpper(c.Role), "ROLE_"), RoleAdmin)
}
