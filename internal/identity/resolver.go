// Package identity resolves the authenticated applicant behind a request.
//
// The portal does not own sign-up or sessions; the authentication provider
// issues HMAC-signed JWTs carrying the applicant's email and display name.
// This resolver only verifies and extracts.
package identity

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"agentportal/internal/platform/middleware"
	"agentportal/pkg/email"
)

// JWTResolver validates bearer tokens with a shared HMAC key.
type JWTResolver struct {
	signingKey []byte
}

// NewJWTResolver creates a resolver for tokens signed with the given key.
func NewJWTResolver(signingKey string) *JWTResolver {
	return &JWTResolver{signingKey: []byte(signingKey)}
}

type claims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// Resolve verifies the token and returns the applicant identity. The email
// claim is mandatory; everything downstream is keyed by it.
func (r *JWTResolver) Resolve(token string) (middleware.Identity, error) {
	var c claims
	parsed, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return r.signingKey, nil
	})
	if err != nil {
		return middleware.Identity{}, fmt.Errorf("parse token: %w", err)
	}
	if !parsed.Valid {
		return middleware.Identity{}, fmt.Errorf("invalid token")
	}
	if c.Email == "" {
		return middleware.Identity{}, fmt.Errorf("token missing email claim")
	}
	if !email.Valid(c.Email) {
		return middleware.Identity{}, fmt.Errorf("token email claim is not an address")
	}
	return middleware.Identity{Email: c.Email, DisplayName: c.Name}, nil
}
