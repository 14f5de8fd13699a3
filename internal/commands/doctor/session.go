package doctor

import (
	"context"
	"fmt"
	"time"

	"github.com/hay-kot/shop/internal/core/session"
)

// Pinger is implemented by session stores backed by a server.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Describer is implemented by session stores that can say where the session
// is kept.
type Describer interface {
	Describe(ctx context.Context) (string, error)
}

// SessionCheck inspects the stored credentials.
type SessionCheck struct {
	store   session.Store
	backend string
	fix     bool
	now     func() time.Time
}

// NewSessionCheck creates a session check. If fix is true, a session whose
// refresh credential has expired is cleared.
func NewSessionCheck(store session.Store, backend string, fix bool) *SessionCheck {
	return &SessionCheck{
		store:   store,
		backend: backend,
		fix:     fix,
		now:     time.Now,
	}
}

func (c *SessionCheck) Name() string {
	return "Session"
}

func (c *SessionCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	if p, ok := c.store.(Pinger); ok {
		if err := p.Ping(ctx); err != nil {
			result.Items = append(result.Items, CheckItem{
				Label:  "Store reachable",
				Status: StatusFail,
				Detail: fmt.Sprintf("%s: %v", c.backend, err),
			})
			return result
		}
	}

	sess, err := c.store.Get(ctx)
	if err != nil {
		result.Items = append(result.Items, CheckItem{
			Label:  "Read session",
			Status: StatusFail,
			Detail: err.Error(),
		})
		return result
	}

	store := CheckItem{Label: "Store", Status: StatusPass, Detail: c.backend}
	if d, ok := c.store.(Describer); ok {
		if where, err := d.Describe(ctx); err != nil {
			store.Status = StatusWarn
			store.Detail += ": " + err.Error()
		} else {
			store.Detail += ": " + where
		}
	}
	result.Items = append(result.Items, store)

	if !sess.LoggedIn() {
		result.Items = append(result.Items, CheckItem{
			Label:  "Logged in",
			Status: StatusWarn,
			Detail: "no session, run 'shop login'",
		})
		return result
	}

	now := c.now()
	result.Items = append(result.Items, c.inspect("Access credential", sess.Access, now, StatusWarn))

	if !sess.CanRefresh() {
		result.Items = append(result.Items, CheckItem{
			Label:  "Refresh credential",
			Status: StatusWarn,
			Detail: "missing, the session cannot be renewed",
		})
		return result
	}

	item := c.inspect("Refresh credential", sess.Refresh, now, StatusFail)
	if item.Status == StatusFail {
		item.Fixable = true
		if c.fix {
			if err := c.store.Clear(ctx); err != nil {
				item.Detail += fmt.Sprintf(" (clear failed: %v)", err)
			} else {
				item.Status = StatusPass
				item.Detail += " (cleared)"
			}
		}
	}
	result.Items = append(result.Items, item)

	return result
}

// inspect reports a credential's expiry. expired is the status used once it
// has lapsed.
func (c *SessionCheck) inspect(label, token string, now time.Time, expired Status) CheckItem {
	info, err := session.Inspect(token)
	switch {
	case err != nil:
		return CheckItem{Label: label, Status: StatusWarn, Detail: err.Error()}
	case info.Opaque:
		return CheckItem{Label: label, Status: StatusPass, Detail: "opaque"}
	case info.ExpiresAt.IsZero():
		return CheckItem{Label: label, Status: StatusPass, Detail: "no expiry"}
	case info.Expired(now):
		return CheckItem{Label: label, Status: expired, Detail: "expired " + info.ExpiresAt.Format(time.RFC3339)}
	default:
		return CheckItem{Label: label, Status: StatusPass, Detail: "expires in " + info.ExpiresAt.Sub(now).Round(time.Second).String()}
	}
}
