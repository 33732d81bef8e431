// Package auth implements the token signer: HS256-signed access tokens
// carrying identity claims, and refresh tokens carrying only the subject
// plus a type marker. Expiry is absolute (issued-at + configured TTL) on
// the server's UTC clock.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/MohamedLemine13/JobPortal/internal/common"
)

const (
	// TypeAccess and TypeRefresh are the token type markers. Refresh must
	// never be accepted where an access token is expected, and vice versa.
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

// Claims is the private claim set of both token kinds. Email and Role are
// populated on access tokens only.
type Claims struct {
	jwt.RegisteredClaims
	Email     string `json:"email,omitempty"`
	Role      string `json:"role,omitempty"`
	TokenType string `json:"typ"`
}

// GenerateAccessToken signs a short-lived token carrying the user's
// identity and role.
func GenerateAccessToken(userID, email, role string, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now().UTC()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		Email:     email,
		Role:      role,
		TokenType: TypeAccess,
	})

	return token.SignedString(secretKey)
}

// GenerateRefreshToken signs a longer-lived token carrying only the subject
// and the refresh type marker.
func GenerateRefreshToken(userID string, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now().UTC()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		TokenType: TypeRefresh,
	})

	return token.SignedString(secretKey)
}

// ParseAccessToken verifies an access token and returns its claims.
func ParseAccessToken(tokenString string, secretKey []byte) (*Claims, error) {
	return parseToken(tokenString, secretKey, TypeAccess)
}

// ParseRefreshToken verifies a refresh token and returns its claims.
func ParseRefreshToken(tokenString string, secretKey []byte) (*Claims, error) {
	return parseToken(tokenString, secretKey, TypeRefresh)
}

// parseToken verifies signature, structure, expiry, and the type marker.
// Every failure collapses to common.ErrInvalidToken so callers cannot be
// used as an oracle for why a token was rejected.
func parseToken(tokenString string, secretKey []byte, wantType string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) { return secretKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return nil, common.ErrInvalidToken
	}
	if !token.Valid || claims.TokenType != wantType {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
