package session

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// UserClaims are the claims the remote API puts in its tokens.
type UserClaims struct {
	UserID string `json:"id"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// ParseUserClaims decodes token without verifying its signature. The
// storefront never holds the API's signing key; the API verifies the token
// on every call, so the claims only label the session and address
// user-scoped endpoints such as /orders/user/{id}.
func ParseUserClaims(token string) (*UserClaims, error) {
	claims := &UserClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("decoding token: %w", err)
	}
	if claims.UserID == "" {
		return nil, errors.New("token carries no user id")
	}
	return claims, nil
}
