package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hay-kot/shop/internal/router"
	"github.com/hay-kot/shop/internal/shop"
)

// Run starts the storefront and blocks until the shopper quits.
func Run(ctx context.Context, svc *shop.Service, r *router.Router, opts Options) error {
	m := New(ctx, svc, r, opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	svc.OnSessionCleared(func() {
		r.SetLoggedIn(false)
		p.Send(SessionCleared())
	})

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
