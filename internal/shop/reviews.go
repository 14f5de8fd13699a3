package shop

import (
	"context"
	"fmt"
)

// ReviewRequest is the payload for reviews/add/.
type ReviewRequest struct {
	ProductID int    `json:"product"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
}

// Reviews lists the reviews of a product.
func (s *Service) Reviews(ctx context.Context, productID int) ([]Review, error) {
	var out []Review
	if err := s.client.Get(ctx, pathf("products/%d/reviews/", productID), nil, &out); err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return out, nil
}

// AddReview posts a review as the logged-in user.
func (s *Service) AddReview(ctx context.Context, req ReviewRequest) (Review, error) {
	if err := validateReview(req); err != nil {
		return Review{}, err
	}

	var r Review
	if err := s.client.Post(ctx, "reviews/add/", req, &r); err != nil {
		return Review{}, fmt.Errorf("add review: %w", err)
	}
	return r, nil
}
