package views

import (
	"context"
	"strings"

	"github.com/hay-kot/shop/internal/shop"
)

// Checkout collects addresses and submits payment.
type Checkout struct {
	Request shop.CheckoutRequest
	Err     error
}

// Prefill copies saved addresses from the account, leaving typed values alone.
func (v *Checkout) Prefill(c shop.Customer) {
	if v.Request.ShippingAddress == "" {
		v.Request.ShippingAddress = c.ShippingAddress
	}
	if v.Request.BillingAddress == "" {
		v.Request.BillingAddress = c.BillingAddress
	}
}

// Submit charges the card and places the order. On success the caller shows
// the order summary with the returned order.
func (v *Checkout) Submit(ctx context.Context, svc Service) (shop.Order, error) {
	order, err := svc.ProcessPayment(ctx, v.Request)
	v.Err = err
	return order, err
}

// Render draws the form state and the last error.
func (v *Checkout) Render(_ Options) string {
	lines := []string{
		title("Checkout"),
		"Shipping Address: " + orPlaceholder(v.Request.ShippingAddress),
		"Billing Address:  " + orPlaceholder(v.Request.BillingAddress),
	}
	if v.Err != nil {
		lines = append(lines, "", errorLine(v.Err))
	}
	return strings.Join(lines, "\n")
}

func orPlaceholder(s string) string {
	if s == "" {
		return muted("(not set)")
	}
	return s
}
