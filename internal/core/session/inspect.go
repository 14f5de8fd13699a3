package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenInfo describes a credential as far as the client can tell without the
// signing key. Nothing here is trusted; it is display-only.
type TokenInfo struct {
	Opaque    bool
	Subject   string
	UserID    string
	TokenType string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the token carries an expiry that is before now.
func (t TokenInfo) Expired(now time.Time) bool {
	return !t.ExpiresAt.IsZero() && now.After(t.ExpiresAt)
}

// inspectClaims matches what a simplejwt-style backend issues.
type inspectClaims struct {
	UserID    any    `json:"user_id"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// Inspect decodes token without verifying its signature. Tokens that are not JWTs
// are reported as opaque.
func Inspect(token string) (TokenInfo, error) {
	if token == "" {
		return TokenInfo{}, errors.New("empty token")
	}

	var claims inspectClaims
	_, _, err := jwt.NewParser().ParseUnverified(token, &claims)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenMalformed) {
			return TokenInfo{Opaque: true}, nil
		}
		return TokenInfo{}, fmt.Errorf("decode token: %w", err)
	}

	info := TokenInfo{
		Subject:   claims.Subject,
		TokenType: claims.TokenType,
	}
	if claims.UserID != nil {
		info.UserID = fmt.Sprint(claims.UserID)
	}
	if claims.IssuedAt != nil {
		info.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
	}

	return info, nil
}
