package shop

import (
	"encoding/json"
	"strconv"
	"time"
)

// Product is a catalog entry.
type Product struct {
	ID                int    `json:"id"`
	Name              string `json:"name"`
	Description       string `json:"description"`
	Price             Price  `json:"price"`
	Category          string `json:"category"`
	Image             string `json:"image"`
	InventoryQuantity int    `json:"inventory_quantity"`
}

// InStock reports whether any inventory remains.
func (p Product) InStock() bool {
	return p.InventoryQuantity > 0
}

// ProductRef is a product as referenced from another resource. Depending on the
// serializer the backend sends either the bare id or the nested product.
type ProductRef struct {
	ID      int
	Product *Product
}

// Name returns the product name, or a placeholder when only the id is known.
func (r ProductRef) Name() string {
	if r.Product != nil {
		return r.Product.Name
	}
	return "product #" + strconv.Itoa(r.ID)
}

func (r ProductRef) MarshalJSON() ([]byte, error) {
	if r.Product != nil {
		return json.Marshal(r.Product)
	}
	return json.Marshal(r.ID)
}

func (r *ProductRef) UnmarshalJSON(data []byte) error {
	var id int
	if err := json.Unmarshal(data, &id); err == nil {
		*r = ProductRef{ID: id}
		return nil
	}

	var p Product
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = ProductRef{ID: p.ID, Product: &p}
	return nil
}

// Category is a product category. The backend may list plain names or objects.
type Category struct {
	ID   int    `json:"id,omitempty"`
	Name string `json:"name"`
}

func (c *Category) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		*c = Category{Name: name}
		return nil
	}

	var obj struct {
		ID       int    `json:"id"`
		Name     string `json:"name"`
		Category string `json:"category"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	if obj.Name == "" {
		obj.Name = obj.Category
	}
	*c = Category{ID: obj.ID, Name: obj.Name}
	return nil
}

// CartItem is a line in the server-owned cart.
type CartItem struct {
	ID       int     `json:"id"`
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// LineTotal is for display only; the server computes authoritative totals.
func (i CartItem) LineTotal() Price {
	return i.Product.Price.Times(i.Quantity)
}

// Cart is the current user's cart.
type Cart struct {
	Items []CartItem `json:"items"`
}

// Empty reports whether the cart has no items.
func (c Cart) Empty() bool {
	return len(c.Items) == 0
}

// Count returns the total quantity across all lines.
func (c Cart) Count() int {
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

// Subtotal sums line totals for display.
func (c Cart) Subtotal() Price {
	var total Price
	for _, it := range c.Items {
		total += it.LineTotal()
	}
	return total
}

// OrderItem is a line of a placed order.
type OrderItem struct {
	ID       int        `json:"id"`
	Product  ProductRef `json:"product"`
	Quantity int        `json:"quantity"`
}

// Order is a placed order. The client only displays it.
type Order struct {
	ID              int         `json:"id"`
	Status          string      `json:"status"`
	ShippingAddress string      `json:"shipping_address"`
	BillingAddress  string      `json:"billing_address"`
	Items           []OrderItem `json:"items"`
	TotalPrice      Price       `json:"total_price"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// User is the account identity.
type User struct {
	ID       int    `json:"id,omitempty"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Customer is the account profile returned by account/ and register/.
type Customer struct {
	User            User   `json:"user"`
	BillingAddress  string `json:"billing_address"`
	ShippingAddress string `json:"shipping_address"`
	CreditCardInfo  string `json:"credit_card_info"`
}

// UserRef identifies a review author, sent as an id, a username or an object.
type UserRef struct {
	ID       int
	Username string
}

func (u UserRef) String() string {
	if u.Username != "" {
		return u.Username
	}
	if u.ID != 0 {
		return "user #" + strconv.Itoa(u.ID)
	}
	return "anonymous"
}

func (u UserRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(User{ID: u.ID, Username: u.Username})
}

func (u *UserRef) UnmarshalJSON(data []byte) error {
	var id int
	if err := json.Unmarshal(data, &id); err == nil {
		*u = UserRef{ID: id}
		return nil
	}
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		*u = UserRef{Username: name}
		return nil
	}
	var obj User
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*u = UserRef{ID: obj.ID, Username: obj.Username}
	return nil
}

// Review is a product review.
type Review struct {
	ID        int       `json:"id"`
	Product   int       `json:"product"`
	User      UserRef   `json:"user"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// TokenPair is what login/ and token/refresh/ return.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}
