// Package doctor runs health checks against the shop configuration, the
// stored session and the storefront backend.
package doctor

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

type Status int

const (
	StatusPass Status = iota
	StatusWarn
	StatusFail
)

func (s Status) String() string {
	switch s {
	case StatusPass:
		return "pass"
	case StatusWarn:
		return "warn"
	case StatusFail:
		return "fail"
	default:
		return "unknown"
	}
}

// MarshalText renders the status by name in JSON reports.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// CheckItem is one line of a check's report. Fixable items can be repaired by
// running the check again with fixing enabled.
type CheckItem struct {
	Label   string `json:"label"`
	Status  Status `json:"status"`
	Detail  string `json:"detail,omitempty"`
	Fixable bool   `json:"fixable,omitempty"`
}

func (i CheckItem) unhealthy() bool {
	return i.Status == StatusWarn || i.Status == StatusFail
}

type Result struct {
	Name  string      `json:"name"`
	Items []CheckItem `json:"items"`
}

// Check inspects one area of the installation. Run reports problems as
// items and never returns an error.
type Check interface {
	Name() string
	Run(ctx context.Context) Result
}

// DefaultTimeout bounds a single check when RunAll is given no timeout.
const DefaultTimeout = 10 * time.Second

// RunAll runs the checks concurrently, each bounded by timeout, and returns
// their results in the order the checks were given.
func RunAll(ctx context.Context, checks []Check, timeout time.Duration) []Result {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	results := make([]Result, len(checks))

	var g errgroup.Group
	g.SetLimit(4)
	for i, check := range checks {
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			results[i] = check.Run(cctx)
			if results[i].Name == "" {
				results[i].Name = check.Name()
			}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// Tally counts report items by status.
type Tally struct {
	Passed  int `json:"passed"`
	Warned  int `json:"warned"`
	Failed  int `json:"failed"`
	Fixable int `json:"fixable"`
}

// Healthy reports whether no item failed. Warnings do not count.
func (t Tally) Healthy() bool {
	return t.Failed == 0
}

// Count tallies the items of every result.
func Count(results []Result) Tally {
	var t Tally
	for _, r := range results {
		for _, item := range r.Items {
			switch item.Status {
			case StatusPass:
				t.Passed++
			case StatusWarn:
				t.Warned++
			case StatusFail:
				t.Failed++
			}
			if item.Fixable && item.unhealthy() {
				t.Fixable++
			}
		}
	}
	return t
}
