// Package router maps storefront paths to views and gates the ones that need
// a logged-in shopper.
package router

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// ErrNoRoute is returned for paths no route matches.
var ErrNoRoute = errors.New("no route")

// Name identifies a view.
type Name string

const (
	ProductList   Name = "product-list"
	ProductDetail Name = "product-detail"
	Cart          Name = "cart"
	Checkout      Name = "checkout"
	Login         Name = "login"
	Register      Name = "register"
	OrderSummary  Name = "order-summary"
	OrderHistory  Name = "order-history"
	Account       Name = "account"
)

// Route binds a path pattern to a view. Segments starting with ":" capture a
// parameter.
type Route struct {
	Name          Name
	Pattern       string
	RequiresLogin bool
}

// Routes is the storefront's route table.
var Routes = []Route{
	{Name: ProductList, Pattern: "/"},
	{Name: ProductDetail, Pattern: "/products/:id"},
	{Name: Cart, Pattern: "/cart", RequiresLogin: true},
	{Name: Checkout, Pattern: "/checkout", RequiresLogin: true},
	{Name: Login, Pattern: "/login"},
	{Name: Register, Pattern: "/register"},
	{Name: OrderSummary, Pattern: "/order-summary"},
	{Name: OrderHistory, Pattern: "/orders", RequiresLogin: true},
	{Name: Account, Pattern: "/account", RequiresLogin: true},
}

// Match is a resolved path.
type Match struct {
	Route  Route
	Path   string
	Params map[string]string
	// From is set when a login gate redirected here; it holds the path that
	// was asked for.
	From string
}

// Param returns a captured path parameter.
func (m Match) Param(name string) string {
	return m.Params[name]
}

// IntParam returns a captured path parameter parsed as an integer.
func (m Match) IntParam(name string) (int, error) {
	v, ok := m.Params[name]
	if !ok {
		return 0, fmt.Errorf("missing parameter %q", name)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parameter %q: %w", name, err)
	}
	return n, nil
}

// Resolve matches path against the route table. It does not apply login gates.
func Resolve(path string) (Match, error) {
	clean := normalize(path)
	segs := split(clean)

	for _, r := range Routes {
		params, ok := match(split(r.Pattern), segs)
		if ok {
			return Match{Route: r, Path: clean, Params: params}, nil
		}
	}
	return Match{}, fmt.Errorf("%w for %q", ErrNoRoute, path)
}

// PathFor builds the path of a route, substituting params.
func PathFor(name Name, params map[string]string) (string, error) {
	for _, r := range Routes {
		if r.Name != name {
			continue
		}
		segs := split(r.Pattern)
		for i, s := range segs {
			if key, ok := strings.CutPrefix(s, ":"); ok {
				v, ok := params[key]
				if !ok || v == "" {
					return "", fmt.Errorf("route %s: missing parameter %q", name, key)
				}
				segs[i] = v
			}
		}
		return "/" + strings.Join(segs, "/"), nil
	}
	return "", fmt.Errorf("%w named %q", ErrNoRoute, name)
}

func normalize(path string) string {
	path, _, _ = strings.Cut(path, "?")
	path, _, _ = strings.Cut(path, "#")
	path = "/" + strings.Trim(strings.TrimSpace(path), "/")
	return path
}

func split(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

func match(pattern, segs []string) (map[string]string, bool) {
	if len(pattern) != len(segs) {
		return nil, false
	}

	params := map[string]string{}
	for i, p := range pattern {
		if key, ok := strings.CutPrefix(p, ":"); ok {
			if segs[i] == "" {
				return nil, false
			}
			params[key] = segs[i]
			continue
		}
		if p != segs[i] {
			return nil, false
		}
	}
	return params, true
}

// Router tracks the current location, the back stack and whether the shopper
// is logged in. It is safe for concurrent use; the API client's session
// cleared hook may flip the flag from another goroutine.
type Router struct {
	mu       sync.RWMutex
	loggedIn bool
	current  Match
	history  []Match
}

// New creates a Router positioned at "/".
func New(loggedIn bool) *Router {
	home, _ := Resolve("/")
	return &Router{loggedIn: loggedIn, current: home}
}

// LoggedIn reports the logged-in flag.
func (r *Router) LoggedIn() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loggedIn
}

// SetLoggedIn updates the flag after login, logout or a cleared session.
func (r *Router) SetLoggedIn(v bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loggedIn = v
}

// Current returns the active match.
func (r *Router) Current() Match {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// Navigate resolves path and makes it current, pushing the previous location
// onto the back stack. Gated routes redirect to /login while logged out.
func (r *Router) Navigate(path string) (Match, error) {
	m, err := Resolve(path)
	if err != nil {
		return Match{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	m = r.gate(m)
	if m.Path == r.current.Path {
		r.current = m
		return m, nil
	}

	r.history = append(r.history, r.current)
	r.current = m
	return m, nil
}

// Replace is Navigate without touching the back stack.
func (r *Router) Replace(path string) (Match, error) {
	m, err := Resolve(path)
	if err != nil {
		return Match{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	m = r.gate(m)
	r.current = m
	return m, nil
}

// Back pops the back stack. Gated entries are re-checked against the current
// flag. It reports false when there is nowhere to go back to.
func (r *Router) Back() (Match, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.history) == 0 {
		return r.current, false
	}

	prev := r.history[len(r.history)-1]
	r.history = r.history[:len(r.history)-1]
	r.current = r.gate(prev)
	return r.current, true
}

// Depth returns the size of the back stack.
func (r *Router) Depth() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.history)
}

// gate redirects m to /login when it needs a session the shopper does not have.
// Callers hold r.mu.
func (r *Router) gate(m Match) Match {
	if !m.Route.RequiresLogin || r.loggedIn {
		return m
	}
	login, _ := Resolve("/login")
	login.From = m.Path
	return login
}
