// Package views renders the storefront's screens. Each view owns its local
// state, loads through the shop service and renders to a string; the TUI and
// the open command decide where the string goes.
package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/hay-kot/shop/internal/core/session"
	"github.com/hay-kot/shop/internal/shop"
	"github.com/hay-kot/shop/internal/styles"
)

// Service is what views need from the storefront.
type Service interface {
	FilterProducts(ctx context.Context, f shop.Filter) ([]shop.Product, error)
	ProductPage(ctx context.Context, id int) (shop.ProductPage, error)
	AddToCart(ctx context.Context, productID, qty int) (shop.CartItem, error)
	AddReview(ctx context.Context, req shop.ReviewRequest) (shop.Review, error)
	Cart(ctx context.Context) (shop.Cart, error)
	RemoveCartItem(ctx context.Context, itemID int) error
	ProcessPayment(ctx context.Context, req shop.CheckoutRequest) (shop.Order, error)
	Login(ctx context.Context, username, password string) (session.Session, error)
	Register(ctx context.Context, req shop.RegisterRequest) (shop.Customer, error)
	Orders(ctx context.Context) ([]shop.Order, error)
	Account(ctx context.Context) (shop.Customer, error)
	UpdateAccount(ctx context.Context, c shop.Customer) (shop.Customer, error)
	MediaURL(path string) string
}

// Options control rendering.
type Options struct {
	Width int
	// MarkdownStyle is a glamour standard style ("dark", "light", "notty").
	// Empty disables markdown rendering.
	MarkdownStyle string
}

func (o Options) width() int {
	if o.Width <= 0 {
		return 80
	}
	return o.Width
}

// errorLine renders err the way a shopper should see it.
func errorLine(err error) string {
	if err == nil {
		return ""
	}
	return styles.ErrorStyle.Render("✘ " + shop.UserMessage(err))
}

func title(s string) string {
	return styles.TitleStyle.Render(s)
}

func muted(s string) string {
	return styles.MutedStyle.Render(s)
}

func divider(width int) string {
	return styles.DividerStyle.Render(strings.Repeat("─", width))
}

// markdown renders md with glamour. It falls back to the raw text when the
// renderer is disabled or fails.
func markdown(md string, opts Options) string {
	if opts.MarkdownStyle == "" || strings.TrimSpace(md) == "" {
		return md
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(opts.MarkdownStyle),
		glamour.WithWordWrap(opts.width()-4),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.Trim(out, "\n")
}

func join(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, "\n")
}

func qtyLine(qty int, name string, price shop.Price) string {
	return fmt.Sprintf("%d x %s - %s", qty, name, styles.PriceStyle.Render(price.String()))
}
