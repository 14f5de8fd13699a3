package shoptest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
)

type ctxKey struct{}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func detail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"detail": msg})
}

func fieldError(w http.ResponseWriter, field, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string][]string{field: {msg}})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		detail(w, http.StatusBadRequest, fmt.Sprintf("JSON parse error - %v", err))
		return false
	}
	return true
}

func pathID(r *http.Request) int {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	return id
}

func currentUser(r *http.Request) *user {
	u, _ := r.Context().Value(ctxKey{}).(*user)
	return u
}

// auth rejects requests without a valid access credential. Handlers wrapped by
// it run with s.mu held.
func (s *Server) auth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()

		if s.force401 > 0 {
			s.force401--
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"detail": "Given token not valid for any token type",
				"code":   "token_not_valid",
			})
			return
		}

		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || raw == "" {
			detail(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
			return
		}

		c, err := s.verify(raw, tokenAccess)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"detail": "Given token not valid for any token type",
				"code":   "token_not_valid",
			})
			return
		}

		u, ok := s.users[c.Subject]
		if !ok {
			detail(w, http.StatusUnauthorized, "User not found")
			return
		}

		next(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, u)))
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if !decode(w, r, &body) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[body.Username]
	if !ok || u.Password != body.Password {
		detail(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	p, err := s.pair(u)
	if err != nil {
		detail(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Refresh string `json:"refresh"`
	}
	if !decode(w, r, &body) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if body.Refresh == "" {
		fieldError(w, "refresh", "This field is required.")
		return
	}

	c, err := s.verify(body.Refresh, tokenRefresh)
	if err != nil || s.failRefresh {
		writeJSON(w, http.StatusUnauthorized, map[string]string{
			"detail": "Token is invalid or expired",
			"code":   "token_not_valid",
		})
		return
	}

	u, ok := s.users[c.Subject]
	if !ok {
		detail(w, http.StatusUnauthorized, "User not found")
		return
	}

	// Rotation: the old refresh credential is spent.
	s.revoked[c.ID] = true

	p, err := s.pair(u)
	if err != nil {
		detail(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Email    string `json:"email"`
	}
	if !decode(w, r, &body) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case body.Username == "":
		fieldError(w, "username", "This field is required.")
		return
	case body.Password == "":
		fieldError(w, "password", "This field is required.")
		return
	}
	if _, exists := s.users[body.Username]; exists {
		fieldError(w, "username", "A user with that username already exists.")
		return
	}

	u := &user{
		ID:       s.id(),
		Username: body.Username,
		Email:    body.Email,
		Password: body.Password,
	}
	s.users[u.Username] = u
	writeJSON(w, http.StatusCreated, customerJSON(u))
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RefreshToken string `json:"refresh_token"`
	}
	if !decode(w, r, &body) {
		return
	}

	c, err := s.verify(body.RefreshToken, tokenRefresh)
	if err != nil {
		detail(w, http.StatusBadRequest, "Token is invalid or expired")
		return
	}
	s.revoked[c.ID] = true
	w.WriteHeader(http.StatusResetContent)
}

func (s *Server) handleProducts(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.products)
}

func (s *Server) handleFilterProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	category := q.Get("category")
	search := strings.ToLower(q.Get("search"))

	s.mu.Lock()
	out := make([]Product, 0, len(s.products))
	for _, p := range s.products {
		if category != "" && !strings.EqualFold(p.Category, category) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Description), search) {
			continue
		}
		out = append(out, p)
	}
	s.mu.Unlock()

	switch q.Get("sort_by") {
	case "price":
		sort.SliceStable(out, func(i, j int) bool { return cents(out[i].Price) < cents(out[j].Price) })
	case "-price":
		sort.SliceStable(out, func(i, j int) bool { return cents(out[i].Price) > cents(out[j].Price) })
	case "name":
		sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	}

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleProduct(w http.ResponseWriter, r *http.Request) {
	p, ok := s.product(pathID(r))
	if !ok {
		detail(w, http.StatusNotFound, "Product not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleProductReviews(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	out := []review{}
	for _, rv := range s.reviews {
		if rv.Product == id {
			out = append(out, rv)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCategories(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := map[string]bool{}
	out := []string{}
	for _, p := range s.products {
		if !seen[p.Category] {
			seen[p.Category] = true
			out = append(out, p.Category)
		}
	}
	sort.Strings(out)
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAddReview(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Product int    `json:"product"`
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
	if !decode(w, r, &body) {
		return
	}

	if _, ok := s.product(body.Product); !ok {
		detail(w, http.StatusNotFound, "Product not found")
		return
	}
	if body.Rating < 1 || body.Rating > 5 {
		fieldError(w, "rating", "Ensure this value is between 1 and 5.")
		return
	}

	rv := review{
		ID:        s.id(),
		Product:   body.Product,
		User:      currentUser(r).Username,
		Rating:    body.Rating,
		Comment:   body.Comment,
		CreatedAt: s.now().UTC(),
	}
	s.reviews = append(s.reviews, rv)
	writeJSON(w, http.StatusCreated, rv)
}

func (s *Server) handleCart(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	items := s.carts[u.ID]
	if len(items) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	out := make([]map[string]any, 0, len(items))
	for _, it := range items {
		out = append(out, s.cartItemJSON(it))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleClearCart(w http.ResponseWriter, r *http.Request) {
	delete(s.carts, currentUser(r).ID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddToCart(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ProductID int `json:"product_id"`
		Quantity  int `json:"quantity"`
	}
	if !decode(w, r, &body) {
		return
	}

	if _, ok := s.product(body.ProductID); !ok {
		detail(w, http.StatusNotFound, "Product not found")
		return
	}
	if body.Quantity < 1 {
		fieldError(w, "quantity", "Ensure this value is greater than or equal to 1.")
		return
	}

	u := currentUser(r)
	items := s.carts[u.ID]
	for i := range items {
		if items[i].ProductID == body.ProductID {
			items[i].Quantity = body.Quantity
			writeJSON(w, http.StatusCreated, s.cartItemJSON(items[i]))
			return
		}
	}

	it := cartItem{ID: s.id(), ProductID: body.ProductID, Quantity: body.Quantity}
	s.carts[u.ID] = append(items, it)
	writeJSON(w, http.StatusCreated, s.cartItemJSON(it))
}

func (s *Server) handleUpdateCartItem(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Quantity int `json:"quantity"`
	}
	if !decode(w, r, &body) {
		return
	}
	if body.Quantity < 1 {
		fieldError(w, "quantity", "Ensure this value is greater than or equal to 1.")
		return
	}

	items := s.carts[currentUser(r).ID]
	id := pathID(r)
	for i := range items {
		if items[i].ID == id {
			items[i].Quantity = body.Quantity
			writeJSON(w, http.StatusOK, s.cartItemJSON(items[i]))
			return
		}
	}
	detail(w, http.StatusNotFound, "Cart item not found")
}

func (s *Server) handleRemoveCartItem(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	items := s.carts[u.ID]
	id := pathID(r)
	for i := range items {
		if items[i].ID == id {
			s.carts[u.ID] = append(items[:i], items[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	detail(w, http.StatusNotFound, "Cart item not found")
}

type checkoutBody struct {
	ShippingAddress string `json:"shipping_address"`
	BillingAddress  string `json:"billing_address"`
	CreditCardInfo  string `json:"credit_card_info"`
}

func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	var body checkoutBody
	if !decode(w, r, &body) {
		return
	}
	s.placeOrder(w, currentUser(r), body)
}

// handleProcessPayment authorizes the card before placing the order. Cards
// ending in 0002 are declined, as is an empty card with none on file.
func (s *Server) handleProcessPayment(w http.ResponseWriter, r *http.Request) {
	var body checkoutBody
	if !decode(w, r, &body) {
		return
	}

	u := currentUser(r)
	card := body.CreditCardInfo
	if card == "" {
		card = u.CreditCardInfo
	}
	if len(s.carts[u.ID]) > 0 && (card == "" || strings.HasSuffix(card, "0002")) {
		detail(w, http.StatusPaymentRequired, "Credit card authorization failed")
		return
	}

	s.placeOrder(w, u, body)
}

func (s *Server) placeOrder(w http.ResponseWriter, u *user, body checkoutBody) {
	items := s.carts[u.ID]
	if len(items) == 0 {
		detail(w, http.StatusBadRequest, "Cart is empty")
		return
	}
	if body.ShippingAddress == "" {
		fieldError(w, "shipping_address", "This field is required.")
		return
	}
	if body.BillingAddress == "" {
		fieldError(w, "billing_address", "This field is required.")
		return
	}

	now := s.now().UTC()
	o := order{
		ID:              s.id(),
		UserID:          u.ID,
		Status:          "Pending",
		ShippingAddress: body.ShippingAddress,
		BillingAddress:  body.BillingAddress,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	var total int64
	for _, it := range items {
		for i := range s.products {
			if s.products[i].ID == it.ProductID {
				total += cents(s.products[i].Price) * int64(it.Quantity)
				s.products[i].InventoryQuantity -= it.Quantity
			}
		}
		o.Items = append(o.Items, orderItem{ID: s.id(), Order: o.ID, Product: it.ProductID, Quantity: it.Quantity})
	}
	o.TotalPrice = fmt.Sprintf("%d.%02d", total/100, total%100)

	s.orders = append(s.orders, o)
	delete(s.carts, u.ID)
	writeJSON(w, http.StatusCreated, o)
}

func (s *Server) handleOrders(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	out := []order{}
	for _, o := range s.orders {
		if o.UserID == u.ID {
			out = append(out, o)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAccount(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, customerJSON(currentUser(r)))
}

func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	var body struct {
		User struct {
			Email string `json:"email"`
		} `json:"user"`
		BillingAddress  string `json:"billing_address"`
		ShippingAddress string `json:"shipping_address"`
		CreditCardInfo  string `json:"credit_card_info"`
	}
	if !decode(w, r, &body) {
		return
	}

	u := currentUser(r)
	if body.User.Email != "" {
		u.Email = body.User.Email
	}
	u.BillingAddress = body.BillingAddress
	u.ShippingAddress = body.ShippingAddress
	u.CreditCardInfo = body.CreditCardInfo
	writeJSON(w, http.StatusOK, customerJSON(u))
}

// product looks up a product. Callers hold s.mu unless noted.
func (s *Server) product(id int) (Product, bool) {
	for _, p := range s.products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

func (s *Server) cartItemJSON(it cartItem) map[string]any {
	p, _ := s.product(it.ProductID)
	return map[string]any{
		"id":       it.ID,
		"product":  p,
		"quantity": it.Quantity,
	}
}

func customerJSON(u *user) map[string]any {
	return map[string]any{
		"user": map[string]any{
			"id":       u.ID,
			"username": u.Username,
			"email":    u.Email,
		},
		"billing_address":  u.BillingAddress,
		"shipping_address": u.ShippingAddress,
		"credit_card_info": u.CreditCardInfo,
	}
}

func cents(price string) int64 {
	whole, frac, _ := strings.Cut(price, ".")
	w, _ := strconv.ParseInt(whole, 10, 64)
	frac = (frac + "00")[:2]
	f, _ := strconv.ParseInt(frac, 10, 64)
	return w*100 + f
}
