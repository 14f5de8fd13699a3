// Package session defines the client-side credential pair and the store that persists it.
package session

// Storage keys for the two credentials. Every store implementation uses these names
// so a session written by one backend is readable by another.
const (
	KeyAccess  = "access_token"
	KeyRefresh = "refresh_token"
)

// Session is the pair of credentials representing a logged-in user.
// The zero value means logged out.
type Session struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// LoggedIn reports whether the session carries an access credential.
// A request is authenticated iff a non-empty access credential is attached.
func (s Session) LoggedIn() bool {
	return s.Access != ""
}

// CanRefresh reports whether a refresh credential is available.
func (s Session) CanRefresh() bool {
	return s.Refresh != ""
}

// Rotate returns the session after a refresh. The backend may omit the refresh
// credential when rotation is disabled, in which case the current one is kept.
func (s Session) Rotate(access, refresh string) Session {
	if refresh == "" {
		refresh = s.Refresh
	}
	return Session{Access: access, Refresh: refresh}
}
