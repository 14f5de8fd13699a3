package shop

import (
	"context"
	"fmt"
	"time"

	"github.com/hay-kot/shop/internal/api"
	"github.com/hay-kot/shop/internal/core/session"
)

// RegisterRequest is the payload for register/.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

// Login exchanges credentials for a token pair and stores it.
func (s *Service) Login(ctx context.Context, username, password string) (session.Session, error) {
	if err := validateCredentials(username, password); err != nil {
		return session.Session{}, err
	}

	var pair TokenPair
	err := s.client.Post(ctx, api.PathLogin, map[string]string{
		"username": username,
		"password": password,
	}, &pair)
	if err != nil {
		return session.Session{}, fmt.Errorf("login: %w", err)
	}
	if pair.Access == "" {
		return session.Session{}, fmt.Errorf("login: response did not include an access credential")
	}

	sess := session.Session{Access: pair.Access, Refresh: pair.Refresh}
	if err := s.store.Set(ctx, sess); err != nil {
		return session.Session{}, fmt.Errorf("login: %w", err)
	}

	s.log.Info().Str("username", username).Msg("logged in")
	return sess, nil
}

// Register creates an account. It does not log in.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (Customer, error) {
	if err := validateRegistration(req); err != nil {
		return Customer{}, err
	}

	var c Customer
	if err := s.client.Post(ctx, "register/", req, &c); err != nil {
		return Customer{}, fmt.Errorf("register: %w", err)
	}

	s.log.Info().Str("username", req.Username).Msg("registered")
	return c, nil
}

// Logout revokes the refresh credential on the backend and clears the local
// session. The local session is cleared even if the backend call fails.
func (s *Service) Logout(ctx context.Context) error {
	sess, err := s.store.Get(ctx)
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}

	if sess.CanRefresh() {
		err := s.client.Post(ctx, "logout/", map[string]string{"refresh_token": sess.Refresh}, nil)
		if err != nil {
			s.log.Warn().Err(err).Msg("backend logout failed, clearing local session anyway")
		}
	}

	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}

	s.log.Info().Msg("logged out")
	return nil
}

// AuthStatus describes the local session.
type AuthStatus struct {
	LoggedIn   bool
	CanRefresh bool
	Access     session.TokenInfo
	Refresh    session.TokenInfo
}

// Status inspects the stored credentials without contacting the backend.
func (s *Service) Status(ctx context.Context) (AuthStatus, error) {
	sess, err := s.store.Get(ctx)
	if err != nil {
		return AuthStatus{}, err
	}

	st := AuthStatus{LoggedIn: sess.LoggedIn(), CanRefresh: sess.CanRefresh()}
	if sess.LoggedIn() {
		if info, err := session.Inspect(sess.Access); err == nil {
			st.Access = info
		}
	}
	if sess.CanRefresh() {
		if info, err := session.Inspect(sess.Refresh); err == nil {
			st.Refresh = info
		}
	}
	return st, nil
}

// Expiring reports whether the access credential expires within d.
func (st AuthStatus) Expiring(now time.Time, d time.Duration) bool {
	return !st.Access.ExpiresAt.IsZero() && st.Access.ExpiresAt.Before(now.Add(d))
}
