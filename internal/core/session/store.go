package session

import (
	"context"
	"errors"
	"net/url"
	"strings"
)

// ErrNoSession is returned by callers that require a logged-in session.
var ErrNoSession = errors.New("not logged in")

// Store persists at most one Session per backend origin.
type Store interface {
	// Get returns the current session. An empty store returns the zero Session and no error.
	Get(ctx context.Context) (Session, error)
	// Set replaces the stored session.
	Set(ctx context.Context, s Session) error
	// Clear removes both credentials.
	Clear(ctx context.Context) error
}

// Origin returns the scheme://host[:port] part of rawURL, lowercased. Stores use it
// to scope credentials to the backend they were issued by.
func Origin(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", errors.New("url must be absolute")
	}
	return strings.ToLower(u.Scheme + "://" + u.Host), nil
}
