package views

import (
	"context"
	"strings"

	"github.com/hay-kot/shop/internal/shop"
	"github.com/hay-kot/shop/internal/styles"
)

// Cart is the cart screen.
type Cart struct {
	Cart   shop.Cart
	Cursor int
	Err    error
	Loaded bool
}

// Load fetches the cart.
func (v *Cart) Load(ctx context.Context, svc Service) error {
	c, err := svc.Cart(ctx)
	v.Loaded = true
	v.Err = err
	if err != nil {
		return err
	}
	v.Cart = c
	v.Move(0)
	return nil
}

// Move shifts the cursor by delta, staying in bounds.
func (v *Cart) Move(delta int) {
	v.Cursor += delta
	if v.Cursor >= len(v.Cart.Items) {
		v.Cursor = len(v.Cart.Items) - 1
	}
	if v.Cursor < 0 {
		v.Cursor = 0
	}
}

// RemoveSelected deletes the line under the cursor and reloads.
func (v *Cart) RemoveSelected(ctx context.Context, svc Service) error {
	if v.Cursor >= len(v.Cart.Items) {
		return nil
	}
	if err := svc.RemoveCartItem(ctx, v.Cart.Items[v.Cursor].ID); err != nil {
		v.Err = err
		return err
	}
	return v.Load(ctx, svc)
}

// CanCheckout reports whether the checkout action is offered.
func (v *Cart) CanCheckout() bool {
	return v.Err == nil && !v.Cart.Empty()
}

// Render draws the cart.
func (v *Cart) Render(_ Options, cursor bool) string {
	lines := []string{title("Your Cart")}

	switch {
	case v.Err != nil:
		lines = append(lines, errorLine(v.Err))
	case !v.Loaded:
		lines = append(lines, muted("Loading..."))
	case v.Cart.Empty():
		lines = append(lines, "Cart is empty.")
	}

	for i, it := range v.Cart.Items {
		prefix := "  "
		if cursor && i == v.Cursor {
			prefix = styles.SelectedStyle.Render("▸ ")
		}
		lines = append(lines, prefix+qtyLine(it.Quantity, it.Product.Name, it.Product.Price))
	}

	if v.CanCheckout() {
		lines = append(lines,
			"",
			"Subtotal: "+styles.PriceStyle.Render(v.Cart.Subtotal().String())+muted("  (final total is computed at checkout)"),
			muted("Press enter to check out."),
		)
	}

	return strings.Join(lines, "\n")
}
