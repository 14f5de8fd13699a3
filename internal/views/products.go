package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/hay-kot/shop/internal/shop"
	"github.com/hay-kot/shop/internal/styles"
)

// ProductList is the catalog screen.
type ProductList struct {
	Filter   shop.Filter
	Products []shop.Product
	Cursor   int
	Err      error
	Loaded   bool
}

// Load fetches the catalog, applying the filter when one is set.
func (v *ProductList) Load(ctx context.Context, svc Service) error {
	products, err := svc.FilterProducts(ctx, v.Filter)
	v.Loaded = true
	v.Err = err
	if err != nil {
		return err
	}
	v.Products = products
	v.clamp()
	return nil
}

// Move shifts the cursor by delta, staying in bounds.
func (v *ProductList) Move(delta int) {
	v.Cursor += delta
	v.clamp()
}

func (v *ProductList) clamp() {
	if v.Cursor >= len(v.Products) {
		v.Cursor = len(v.Products) - 1
	}
	if v.Cursor < 0 {
		v.Cursor = 0
	}
}

// Selected returns the product under the cursor.
func (v *ProductList) Selected() (shop.Product, bool) {
	if v.Cursor < 0 || v.Cursor >= len(v.Products) {
		return shop.Product{}, false
	}
	return v.Products[v.Cursor], true
}

// Render draws the list. cursor highlights the selected row when true.
func (v *ProductList) Render(opts Options, cursor bool) string {
	var b strings.Builder

	heading := "Products"
	if !v.Filter.Empty() {
		heading += muted(" " + describeFilter(v.Filter))
	}
	b.WriteString(title(heading) + "\n")

	switch {
	case v.Err != nil:
		b.WriteString(errorLine(v.Err) + "\n")
	case !v.Loaded:
		b.WriteString(muted("Loading...") + "\n")
	case len(v.Products) == 0:
		b.WriteString(muted("No products found.") + "\n")
	}

	for i, p := range v.Products {
		line := fmt.Sprintf("%s - %s", p.Name, styles.PriceStyle.Render(p.Price.String()))
		if p.Category != "" {
			line += muted("  " + p.Category)
		}
		if !p.InStock() {
			line += "  " + styles.WarnStyle.Render("out of stock")
		}

		prefix := "  "
		if cursor && i == v.Cursor {
			prefix = styles.SelectedStyle.Render("▸ ")
			line = styles.SelectedStyle.Render(p.Name) + strings.TrimPrefix(line, p.Name)
		}
		b.WriteString(prefix + line + "\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

func describeFilter(f shop.Filter) string {
	var parts []string
	if f.Category != "" {
		parts = append(parts, "category="+f.Category)
	}
	if f.Search != "" {
		parts = append(parts, "search="+f.Search)
	}
	if f.SortBy != "" {
		parts = append(parts, "sort="+f.SortBy)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// ProductDetail shows one product, its reviews and an add-to-cart quantity.
type ProductDetail struct {
	ID       int
	Page     shop.ProductPage
	Quantity int
	Err      error
	Notice   string
	Loaded   bool
}

// NewProductDetail creates the view for product id with quantity 1.
func NewProductDetail(id int) *ProductDetail {
	return &ProductDetail{ID: id, Quantity: 1}
}

// Load fetches the product and its reviews.
func (v *ProductDetail) Load(ctx context.Context, svc Service) error {
	page, err := svc.ProductPage(ctx, v.ID)
	v.Loaded = true
	v.Err = err
	if err != nil {
		return err
	}
	v.Page = page
	return nil
}

// SetQuantity bounds qty to [1, inventory].
func (v *ProductDetail) SetQuantity(qty int) {
	if maxQty := v.Page.Product.InventoryQuantity; v.Loaded && maxQty > 0 && qty > maxQty {
		qty = maxQty
	}
	if qty < 1 {
		qty = 1
	}
	v.Quantity = qty
}

// AddToCart puts the chosen quantity in the cart. On success the caller
// navigates to the cart.
func (v *ProductDetail) AddToCart(ctx context.Context, svc Service) (shop.CartItem, error) {
	item, err := svc.AddToCart(ctx, v.ID, v.Quantity)
	v.Err = err
	if err != nil {
		return shop.CartItem{}, err
	}
	v.Notice = fmt.Sprintf("Added %d x %s to your cart.", item.Quantity, item.Product.Name)
	return item, nil
}

// AddReview posts a review and refreshes the review list on success.
func (v *ProductDetail) AddReview(ctx context.Context, svc Service, rating int, comment string) error {
	r, err := svc.AddReview(ctx, shop.ReviewRequest{ProductID: v.ID, Rating: rating, Comment: comment})
	v.Err = err
	if err != nil {
		return err
	}
	v.Page.Reviews = append(v.Page.Reviews, r)
	v.Notice = "Thanks for your review."
	return nil
}

// Render draws the product page.
func (v *ProductDetail) Render(opts Options, svc Service) string {
	if !v.Loaded {
		return title("Product") + "\n" + muted("Loading...")
	}
	if v.Page.Product.ID == 0 {
		return title("Product") + "\n" + errorLine(v.Err)
	}

	p := v.Page.Product
	stock := styles.WarnStyle.Render("out of stock")
	if p.InStock() {
		stock = muted(fmt.Sprintf("%d in stock", p.InventoryQuantity))
	}

	image := ""
	if p.Image != "" && svc != nil {
		image = muted("Image: " + svc.MediaURL(p.Image))
	}

	reviews := []string{styles.SubtitleStyle.Render("Reviews")}
	if len(v.Page.Reviews) == 0 {
		reviews = append(reviews, muted("No reviews yet."))
	}
	for _, r := range v.Page.Reviews {
		line := fmt.Sprintf("%s %s", stars(r.Rating), r.User.String())
		if r.Comment != "" {
			line += ": " + r.Comment
		}
		reviews = append(reviews, line)
	}

	return join(
		title(p.Name),
		markdown(p.Description, opts),
		"",
		styles.PriceStyle.Render(p.Price.String())+"  "+stock,
		image,
		fmt.Sprintf("Quantity: %d", v.Quantity),
		"",
		strings.Join(reviews, "\n"),
		noticeLine(v.Notice, v.Err),
	)
}

func stars(rating int) string {
	if rating < 0 {
		rating = 0
	}
	if rating > 5 {
		rating = 5
	}
	return styles.WarnStyle.Render(strings.Repeat("★", rating) + strings.Repeat("☆", 5-rating))
}

func noticeLine(notice string, err error) string {
	if err != nil {
		return "\n" + errorLine(err)
	}
	if notice != "" {
		return "\n" + styles.PriceStyle.Render("✔ "+notice)
	}
	return ""
}
