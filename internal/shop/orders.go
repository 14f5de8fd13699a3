package shop

import (
	"context"
	"fmt"
)

// Orders lists the user's order history.
func (s *Service) Orders(ctx context.Context) ([]Order, error) {
	var out []Order
	if err := s.client.Get(ctx, "orders/", nil, &out); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return out, nil
}

// Account fetches the profile of the logged-in user.
func (s *Service) Account(ctx context.Context) (Customer, error) {
	var c Customer
	if err := s.client.Get(ctx, "account/", nil, &c); err != nil {
		return Customer{}, fmt.Errorf("get account: %w", err)
	}
	return c, nil
}

// UpdateAccount replaces the profile.
func (s *Service) UpdateAccount(ctx context.Context, c Customer) (Customer, error) {
	var out Customer
	if err := s.client.Put(ctx, "account/", c, &out); err != nil {
		return Customer{}, fmt.Errorf("update account: %w", err)
	}
	return out, nil
}
