package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/hay-kot/shop/internal/shop"
	"github.com/hay-kot/shop/internal/styles"
)

// OrderSummary shows the order Checkout produced. It has nothing to load; the
// order is handed over on navigation.
type OrderSummary struct {
	Order *shop.Order
}

// Render draws the summary.
func (v *OrderSummary) Render(_ Options) string {
	if v.Order == nil {
		return join(title("Order Summary"), "No order summary available.")
	}

	o := v.Order
	body := join(
		fmt.Sprintf("Order #%d", o.ID),
		"Status: "+o.Status,
		"Shipping Address: "+o.ShippingAddress,
		"Billing Address: "+o.BillingAddress,
		"",
		itemLines(o.Items),
		"",
		"Total: "+styles.PriceStyle.Render(o.TotalPrice.String()),
	)
	return join(title("Order Summary"), styles.BoxStyle.Render(body))
}

func itemLines(items []shop.OrderItem) string {
	lines := make([]string, 0, len(items))
	for _, it := range items {
		lines = append(lines, fmt.Sprintf("%d x %s", it.Quantity, it.Product.Name()))
	}
	return strings.Join(lines, "\n")
}

// OrderHistory lists past orders.
type OrderHistory struct {
	Orders []shop.Order
	Err    error
	Loaded bool
}

// Load fetches the history.
func (v *OrderHistory) Load(ctx context.Context, svc Service) error {
	orders, err := svc.Orders(ctx)
	v.Loaded = true
	v.Err = err
	if err != nil {
		return err
	}
	v.Orders = orders
	return nil
}

// Render draws the history, newest first.
func (v *OrderHistory) Render(_ Options) string {
	lines := []string{title("Order History")}

	switch {
	case v.Err != nil:
		lines = append(lines, errorLine(v.Err))
	case !v.Loaded:
		lines = append(lines, muted("Loading..."))
	case len(v.Orders) == 0:
		lines = append(lines, "You have not placed any orders yet.")
	}

	for i := len(v.Orders) - 1; i >= 0; i-- {
		o := v.Orders[i]
		date := ""
		if !o.CreatedAt.IsZero() {
			date = muted("  " + o.CreatedAt.Local().Format("2006-01-02"))
		}
		lines = append(lines,
			fmt.Sprintf("Order #%d  %s  %s%s", o.ID, o.Status, styles.PriceStyle.Render(o.TotalPrice.String()), date),
			muted("  "+strings.ReplaceAll(itemLines(o.Items), "\n", "\n  ")),
		)
	}

	return strings.Join(lines, "\n")
}
