package doctor

import (
	"context"
	"fmt"
	"time"

	"github.com/hay-kot/shop/internal/shop"
)

// Catalog is the one backend call the reachability check needs.
type Catalog interface {
	Products(ctx context.Context) ([]shop.Product, error)
}

// BackendCheck verifies the storefront API answers.
type BackendCheck struct {
	catalog Catalog
	baseURL string
}

// NewBackendCheck creates a backend reachability check.
func NewBackendCheck(catalog Catalog, baseURL string) *BackendCheck {
	return &BackendCheck{catalog: catalog, baseURL: baseURL}
}

func (c *BackendCheck) Name() string {
	return "Backend"
}

func (c *BackendCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	start := time.Now()
	products, err := c.catalog.Products(ctx)
	elapsed := time.Since(start).Round(time.Millisecond)

	if err != nil {
		result.Items = append(result.Items, CheckItem{
			Label:  c.baseURL,
			Status: StatusFail,
			Detail: fmt.Sprintf("%s (%v)", shop.UserMessage(err), err),
		})
		return result
	}

	result.Items = append(result.Items, CheckItem{
		Label:  c.baseURL,
		Status: StatusPass,
		Detail: fmt.Sprintf("%d products in %s", len(products), elapsed),
	})
	return result
}
