package shop

import (
	"context"
	"fmt"
	"net/url"

	"golang.org/x/sync/errgroup"
)

// Filter narrows products/filter/. Empty fields are omitted.
type Filter struct {
	Category string
	Search   string
	SortBy   string
}

// Empty reports whether no criteria are set.
func (f Filter) Empty() bool {
	return f.Category == "" && f.Search == "" && f.SortBy == ""
}

func (f Filter) query() url.Values {
	q := url.Values{}
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.SortBy != "" {
		q.Set("sort_by", f.SortBy)
	}
	return q
}

// Products lists the whole catalog.
func (s *Service) Products(ctx context.Context) ([]Product, error) {
	var out []Product
	if err := s.client.Get(ctx, "products/", nil, &out); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return out, nil
}

// FilterProducts lists products matching f. An empty filter lists everything.
func (s *Service) FilterProducts(ctx context.Context, f Filter) ([]Product, error) {
	if f.Empty() {
		return s.Products(ctx)
	}

	var out []Product
	if err := s.client.Get(ctx, "products/filter/", f.query(), &out); err != nil {
		return nil, fmt.Errorf("filter products: %w", err)
	}
	return out, nil
}

// Product fetches a single product.
func (s *Service) Product(ctx context.Context, id int) (Product, error) {
	var p Product
	if err := s.client.Get(ctx, pathf("products/%d/", id), nil, &p); err != nil {
		return Product{}, fmt.Errorf("get product %d: %w", id, err)
	}
	return p, nil
}

// Categories lists product categories.
func (s *Service) Categories(ctx context.Context) ([]Category, error) {
	var out []Category
	if err := s.client.Get(ctx, "categories/", nil, &out); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return out, nil
}

// ProductPage is everything the product detail view shows.
type ProductPage struct {
	Product Product  `json:"product"`
	Reviews []Review `json:"reviews"`
}

// ProductPage fetches the product and its reviews concurrently.
func (s *Service) ProductPage(ctx context.Context, id int) (ProductPage, error) {
	var page ProductPage

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.Product(gctx, id)
		page.Product = p
		return err
	})
	g.Go(func() error {
		r, err := s.Reviews(gctx, id)
		page.Reviews = r
		return err
	})

	if err := g.Wait(); err != nil {
		return ProductPage{}, err
	}
	return page, nil
}
