package shoptest

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	tokenAccess  = "access"
	tokenRefresh = "refresh"
)

type claims struct {
	jwt.RegisteredClaims
	UserID    int    `json:"user_id"`
	TokenType string `json:"token_type"`
	// Generation lets tests expire every outstanding access credential at once.
	Generation int `json:"gen"`
}

func (s *Server) mint(u *user, typ string, ttl time.Duration) (string, error) {
	now := s.now()
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.Username,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:     u.ID,
		TokenType:  typ,
		Generation: s.generation,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
}

func (s *Server) pair(u *user) (map[string]string, error) {
	access, err := s.mint(u, tokenAccess, s.AccessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := s.mint(u, tokenRefresh, s.RefreshTTL)
	if err != nil {
		return nil, err
	}
	return map[string]string{"access": access, "refresh": refresh}, nil
}

var errTokenInvalid = errors.New("token not valid")

// verify parses raw and checks its type, generation and revocation. Callers
// hold s.mu.
func (s *Server) verify(raw, typ string) (*claims, error) {
	var c claims
	_, err := jwt.ParseWithClaims(raw, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, errTokenInvalid
	}
	if c.TokenType != typ {
		return nil, errTokenInvalid
	}
	if typ == tokenAccess && c.Generation < s.generation {
		return nil, errTokenInvalid
	}
	if typ == tokenRefresh && s.revoked[c.ID] {
		return nil, errTokenInvalid
	}
	return &c, nil
}
