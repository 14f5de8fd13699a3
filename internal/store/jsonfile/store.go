// Package jsonfile provides JSON file-backed persistence for the client's
// credentials, scoped per backend origin.
package jsonfile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hay-kot/shop/internal/core/session"
)

// SessionStore implements session.Store on top of a KVStore.
type SessionStore struct {
	kv *KVStore
}

// New creates a session store at path scoped to origin.
func New(path, origin string) *SessionStore {
	return &SessionStore{kv: NewKVStore(path, origin)}
}

// Describe names the session file and origin, and when the credentials were
// last written.
func (s *SessionStore) Describe(ctx context.Context) (string, error) {
	where := fmt.Sprintf("%s [%s]", s.kv.Path(), s.kv.Origin())

	e, err := s.kv.Get(ctx, session.KeyAccess)
	switch {
	case errors.Is(err, ErrKeyNotFound):
		return where, nil
	case err != nil:
		return "", fmt.Errorf("read session: %w", err)
	}
	return where + ", written " + e.UpdatedAt.Format(time.RFC3339), nil
}

// Get returns the stored session, or the zero Session if nothing is stored.
func (s *SessionStore) Get(ctx context.Context) (session.Session, error) {
	values, err := s.kv.Values(ctx)
	if err != nil {
		return session.Session{}, fmt.Errorf("read session: %w", err)
	}

	return session.Session{
		Access:  values[session.KeyAccess],
		Refresh: values[session.KeyRefresh],
	}, nil
}

// Set writes both credentials in one atomic file replacement.
func (s *SessionStore) Set(ctx context.Context, sess session.Session) error {
	err := s.kv.SetValues(ctx, map[string]string{
		session.KeyAccess:  sess.Access,
		session.KeyRefresh: sess.Refresh,
	})
	if err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// Clear removes both credentials for the origin.
func (s *SessionStore) Clear(ctx context.Context) error {
	if err := s.kv.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
