// Package shoptest runs an in-memory storefront backend for tests. It speaks
// the same REST dialect as the real backend: trailing-slash paths, decimal
// strings for prices, JWT bearer credentials and a refresh endpoint.
package shoptest

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
)

// Password is the password of every seeded user.
const Password = "hunter2"

// Product is a seeded catalog entry.
type Product struct {
	ID                int    `json:"id"`
	Name              string `json:"name"`
	Description       string `json:"description"`
	Price             string `json:"price"`
	Category          string `json:"category"`
	Image             string `json:"image"`
	InventoryQuantity int    `json:"inventory_quantity"`
}

type user struct {
	ID              int
	Username        string
	Email           string
	Password        string
	BillingAddress  string
	ShippingAddress string
	CreditCardInfo  string
}

type cartItem struct {
	ID        int
	ProductID int
	Quantity  int
}

type orderItem struct {
	ID       int `json:"id"`
	Order    int `json:"order"`
	Product  int `json:"product"`
	Quantity int `json:"quantity"`
}

type order struct {
	ID              int         `json:"id"`
	UserID          int         `json:"-"`
	Status          string      `json:"status"`
	ShippingAddress string      `json:"shipping_address"`
	BillingAddress  string      `json:"billing_address"`
	TotalPrice      string      `json:"total_price"`
	Items           []orderItem `json:"items"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

type review struct {
	ID        int       `json:"id"`
	Product   int       `json:"product"`
	User      string    `json:"user"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// Server is a fake backend. The zero value is not usable; call New.
type Server struct {
	*httptest.Server

	AccessTTL  time.Duration
	RefreshTTL time.Duration

	mu         sync.Mutex
	secret     []byte
	clock      func() time.Time
	generation int
	revoked    map[string]bool
	nextID     int

	products []Product
	users    map[string]*user
	carts    map[int][]cartItem
	orders   []order
	reviews  []review

	force401    int
	failRefresh bool
	calls       map[string]int
}

// New starts a fake backend seeded with a small catalog and the users "alice"
// and "bob". It is closed when the test ends.
func New(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		AccessTTL:  5 * time.Minute,
		RefreshTTL: 24 * time.Hour,
		secret:     []byte("shoptest-secret"),
		clock:      time.Now,
		revoked:    map[string]bool{},
		nextID:     100,
		users:      map[string]*user{},
		carts:      map[int][]cartItem{},
		calls:      map[string]int{},
	}
	s.seed()

	s.Server = httptest.NewServer(s.routes())
	t.Cleanup(s.Close)
	return s
}

// APIURL is the base URL clients should be configured with.
func (s *Server) APIURL() string {
	return s.URL + "/api/"
}

func (s *Server) routes() http.Handler {
	r := mux.NewRouter()
	r.Use(s.countCalls)

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/login/", s.handleLogin).Methods(http.MethodPost)
	api.HandleFunc("/token/refresh/", s.handleRefresh).Methods(http.MethodPost)
	api.HandleFunc("/register/", s.handleRegister).Methods(http.MethodPost)
	api.HandleFunc("/logout/", s.auth(s.handleLogout)).Methods(http.MethodPost)

	api.HandleFunc("/products/", s.handleProducts).Methods(http.MethodGet)
	api.HandleFunc("/products/filter/", s.handleFilterProducts).Methods(http.MethodGet)
	api.HandleFunc("/products/{id:[0-9]+}/", s.auth(s.handleProduct)).Methods(http.MethodGet)
	api.HandleFunc("/products/{id:[0-9]+}/reviews/", s.handleProductReviews).Methods(http.MethodGet)
	api.HandleFunc("/categories/", s.handleCategories).Methods(http.MethodGet)
	api.HandleFunc("/reviews/add/", s.auth(s.handleAddReview)).Methods(http.MethodPost)

	api.HandleFunc("/cart/", s.auth(s.handleCart)).Methods(http.MethodGet)
	api.HandleFunc("/cart/", s.auth(s.handleClearCart)).Methods(http.MethodDelete)
	api.HandleFunc("/cart/add/", s.auth(s.handleAddToCart)).Methods(http.MethodPost)
	api.HandleFunc("/cart/update/{id:[0-9]+}/", s.auth(s.handleUpdateCartItem)).Methods(http.MethodPut)
	api.HandleFunc("/cart/remove/{id:[0-9]+}/", s.auth(s.handleRemoveCartItem)).Methods(http.MethodDelete)

	api.HandleFunc("/checkout/", s.auth(s.handleCheckout)).Methods(http.MethodPost)
	api.HandleFunc("/process_payment/", s.auth(s.handleProcessPayment)).Methods(http.MethodPost)
	api.HandleFunc("/orders/", s.auth(s.handleOrders)).Methods(http.MethodGet)
	api.HandleFunc("/account/", s.auth(s.handleAccount)).Methods(http.MethodGet)
	api.HandleFunc("/account/", s.auth(s.handleUpdateAccount)).Methods(http.MethodPut)

	return r
}

func (s *Server) countCalls(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + strings.TrimPrefix(r.URL.Path, "/api/")
		s.mu.Lock()
		s.calls[key]++
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) now() time.Time {
	return s.clock()
}

func (s *Server) id() int {
	s.nextID++
	return s.nextID
}

// Calls returns how many times METHOD path was requested, e.g.
// Calls("POST", "token/refresh/").
func (s *Server) Calls(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method+" "+path]
}

// ForceUnauthorized makes the next n authenticated requests answer 401
// regardless of the credential sent.
func (s *Server) ForceUnauthorized(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.force401 = n
}

// ExpireAccess invalidates every access credential issued so far. Refresh
// credentials keep working.
func (s *Server) ExpireAccess() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
}

// FailRefresh makes token/refresh/ reject every credential.
func (s *Server) FailRefresh(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failRefresh = fail
}

// SetClock replaces the clock used to mint and verify credentials.
func (s *Server) SetClock(fn func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock = fn
}

// Login mints a credential pair for username without going through login/.
func (s *Server) Login(t testing.TB, username string) (access, refresh string) {
	t.Helper()

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[username]
	if !ok {
		t.Fatalf("shoptest: unknown user %q", username)
	}
	p, err := s.pair(u)
	if err != nil {
		t.Fatalf("shoptest: mint credentials: %v", err)
	}
	return p["access"], p["refresh"]
}

// CartSize returns the number of lines in username's cart.
func (s *Server) CartSize(username string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[username]
	if !ok {
		return 0
	}
	return len(s.carts[u.ID])
}

// AddProduct appends p to the catalog and returns its id.
func (s *Server) AddProduct(p Product) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == 0 {
		p.ID = s.id()
	}
	s.products = append(s.products, p)
	return p.ID
}

// SetCard replaces the credit card on file for username.
func (s *Server) SetCard(username, card string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[username]; ok {
		u.CreditCardInfo = card
	}
}
