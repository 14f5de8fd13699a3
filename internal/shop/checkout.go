package shop

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/hay-kot/shop/internal/api"
)

// CheckoutRequest is the payload for checkout/ and process_payment/.
type CheckoutRequest struct {
	ShippingAddress string `json:"shipping_address"`
	BillingAddress  string `json:"billing_address"`
	CreditCardInfo  string `json:"credit_card_info,omitempty"`
}

// Checkout turns the cart into an order.
func (s *Service) Checkout(ctx context.Context, req CheckoutRequest) (Order, error) {
	return s.placeOrder(ctx, "checkout/", req)
}

// ProcessPayment charges the card and places the order in one call. A declined
// card is reported as 402.
func (s *Service) ProcessPayment(ctx context.Context, req CheckoutRequest) (Order, error) {
	return s.placeOrder(ctx, "process_payment/", req)
}

func (s *Service) placeOrder(ctx context.Context, path string, req CheckoutRequest) (Order, error) {
	if err := validateCheckout(req); err != nil {
		return Order{}, err
	}

	var order Order
	if err := s.client.Post(ctx, path, req, &order); err != nil {
		if isEmptyCart(err) {
			return Order{}, fmt.Errorf("checkout: %w: %w", ErrEmptyCart, err)
		}
		return Order{}, fmt.Errorf("checkout: %w", err)
	}

	s.log.Info().Int("order_id", order.ID).Str("total", order.TotalPrice.String()).Msg("order placed")
	return order, nil
}

func isEmptyCart(err error) bool {
	if !api.IsStatus(err, http.StatusBadRequest) {
		return false
	}
	var se *api.StatusError
	if !errors.As(err, &se) {
		return false
	}
	return strings.Contains(strings.ToLower(se.Detail), "cart is empty")
}
