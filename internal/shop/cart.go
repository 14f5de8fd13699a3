package shop

import (
	"context"
	"fmt"
)

// Cart fetches the current cart. The backend answers 204 for an empty cart.
func (s *Service) Cart(ctx context.Context) (Cart, error) {
	var items []CartItem
	if err := s.client.Get(ctx, "cart/", nil, &items); err != nil {
		return Cart{}, fmt.Errorf("get cart: %w", err)
	}
	return Cart{Items: items}, nil
}

// AddToCart sets the quantity of productID in the cart, creating the line if needed.
func (s *Service) AddToCart(ctx context.Context, productID, qty int) (CartItem, error) {
	if err := validateQuantity(qty); err != nil {
		return CartItem{}, err
	}

	var item CartItem
	err := s.client.Post(ctx, "cart/add/", map[string]int{
		"product_id": productID,
		"quantity":   qty,
	}, &item)
	if err != nil {
		return CartItem{}, fmt.Errorf("add to cart: %w", err)
	}
	return item, nil
}

// UpdateCartItem changes the quantity of a cart line.
func (s *Service) UpdateCartItem(ctx context.Context, itemID, qty int) (CartItem, error) {
	if err := validateQuantity(qty); err != nil {
		return CartItem{}, err
	}

	var item CartItem
	if err := s.client.Put(ctx, pathf("cart/update/%d/", itemID), map[string]int{"quantity": qty}, &item); err != nil {
		return CartItem{}, fmt.Errorf("update cart item %d: %w", itemID, err)
	}
	return item, nil
}

// RemoveCartItem deletes a cart line.
func (s *Service) RemoveCartItem(ctx context.Context, itemID int) error {
	if err := s.client.Delete(ctx, pathf("cart/remove/%d/", itemID), nil); err != nil {
		return fmt.Errorf("remove cart item %d: %w", itemID, err)
	}
	return nil
}

// ClearCart empties the cart.
func (s *Service) ClearCart(ctx context.Context) error {
	if err := s.client.Delete(ctx, "cart/", nil); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}
