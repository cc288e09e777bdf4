package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the identity facts the client reads out of a backend token:
// subject (the account email), role, and expiry.
//
// The client never holds the signing secret, so tokens are decoded without
// signature verification. That is safe here: claims only steer which views
// render, and every backend call re-verifies the token server-side.
type Claims struct {
	jwt.RegisteredClaims

	Role string `json:"role"`
}

var claimsParser = jwt.NewParser()

// DecodeClaims reads claims from a token without verifying its signature.
// A malformed token is an error; missing claims are not.
func DecodeClaims(token string) (Claims, error) {
	var claims Claims
	if _, _, err := claimsParser.ParseUnverified(token, &claims); err != nil {
		return Claims{}, err
	}
	return claims, nil
}

// Expired reports whether the token's expiry has passed. A token without an
// exp claim never expires client-side; the backend is free to disagree and
// will do so with a 401.
func (c Claims) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && c.ExpiresAt.Before(now)
}
