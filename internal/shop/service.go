// Package shop exposes the storefront's operations as typed calls on top of the
// authenticated API client.
package shop

import (
	"context"
	"fmt"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/hay-kot/shop/internal/api"
	"github.com/hay-kot/shop/internal/core/session"
)

// Service is the single entry point views and commands use to reach the backend.
type Service struct {
	client *api.Client
	store  session.Store
	log    zerolog.Logger
	media  *url.URL
}

// New creates a Service. The session store is the one the client reads from.
func New(client *api.Client, log zerolog.Logger) *Service {
	return &Service{
		client: client,
		store:  client.Store(),
		log:    log,
	}
}

// Client returns the underlying API client.
func (s *Service) Client() *api.Client {
	return s.client
}

// Session returns the stored session.
func (s *Service) Session(ctx context.Context) (session.Session, error) {
	return s.store.Get(ctx)
}

// LoggedIn reports whether an access credential is stored.
func (s *Service) LoggedIn(ctx context.Context) (bool, error) {
	sess, err := s.store.Get(ctx)
	if err != nil {
		return false, err
	}
	return sess.LoggedIn(), nil
}

// RequireSession returns the stored session, or session.ErrNoSession when
// nobody is logged in.
func (s *Service) RequireSession(ctx context.Context) (session.Session, error) {
	sess, err := s.store.Get(ctx)
	if err != nil {
		return session.Session{}, err
	}
	if !sess.LoggedIn() {
		return session.Session{}, session.ErrNoSession
	}
	return sess, nil
}

// OnSessionCleared registers fn to run when a failed refresh logs the user out.
func (s *Service) OnSessionCleared(fn func()) {
	s.client.OnSessionCleared(fn)
}

// SetMediaURL sets where product images are served from. Empty resets it to
// the backend origin.
func (s *Service) SetMediaURL(raw string) error {
	if raw == "" {
		s.media = nil
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("parse media url: %w", err)
	}
	s.media = u
	return nil
}

// MediaURL resolves a product image path against the media URL, or the
// backend origin when none is set.
func (s *Service) MediaURL(path string) string {
	if path == "" {
		return ""
	}
	base := s.client.BaseURL()
	if s.media != nil {
		base = s.media
	}
	ref, err := base.Parse(path)
	if err != nil {
		return path
	}
	return ref.String()
}

func pathf(format string, args ...any) string {
	return fmt.Sprintf(format, args...)
}
