package router

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		path   string
		want   Name
		params map[string]string
	}{
		{path: "/", want: ProductList, params: map[string]string{}},
		{path: "", want: ProductList, params: map[string]string{}},
		{path: "/products/42", want: ProductDetail, params: map[string]string{"id": "42"}},
		{path: "/products/42/", want: ProductDetail, params: map[string]string{"id": "42"}},
		{path: "/cart", want: Cart, params: map[string]string{}},
		{path: "/checkout?step=1", want: Checkout, params: map[string]string{}},
		{path: "/login", want: Login, params: map[string]string{}},
		{path: "/register", want: Register, params: map[string]string{}},
		{path: "/order-summary", want: OrderSummary, params: map[string]string{}},
		{path: "/orders", want: OrderHistory, params: map[string]string{}},
		{path: "account", want: Account, params: map[string]string{}},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			m, err := Resolve(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.Route.Name)
			assert.Equal(t, tt.params, m.Params)
		})
	}
}

func TestResolve_NoRoute(t *testing.T) {
	for _, path := range []string{"/nope", "/products", "/products/1/reviews"} {
		_, err := Resolve(path)
		require.ErrorIs(t, err, ErrNoRoute, path)
	}
}

func TestMatch_IntParam(t *testing.T) {
	m, err := Resolve("/products/7")
	require.NoError(t, err)

	id, err := m.IntParam("id")
	require.NoError(t, err)
	assert.Equal(t, 7, id)

	m, err = Resolve("/products/abc")
	require.NoError(t, err)
	_, err = m.IntParam("id")
	assert.Error(t, err)

	_, err = m.IntParam("missing")
	assert.Error(t, err)
}

func TestPathFor(t *testing.T) {
	p, err := PathFor(ProductDetail, map[string]string{"id": "3"})
	require.NoError(t, err)
	assert.Equal(t, "/products/3", p)

	p, err = PathFor(ProductList, nil)
	require.NoError(t, err)
	assert.Equal(t, "/", p)

	_, err = PathFor(ProductDetail, nil)
	assert.Error(t, err)

	_, err = PathFor("bogus", nil)
	assert.ErrorIs(t, err, ErrNoRoute)
}

func TestRouter_LoginGate(t *testing.T) {
	gated := []string{"/cart", "/checkout", "/orders", "/account"}

	for _, path := range gated {
		t.Run(path, func(t *testing.T) {
			r := New(false)

			m, err := r.Navigate(path)
			require.NoError(t, err)
			assert.Equal(t, Login, m.Route.Name)
			assert.Equal(t, path, m.From)

			r.SetLoggedIn(true)
			m, err = r.Navigate(path)
			require.NoError(t, err)
			assert.NotEqual(t, Login, m.Route.Name)
			assert.Empty(t, m.From)
		})
	}
}

func TestRouter_OpenRoutesIgnoreFlag(t *testing.T) {
	r := New(false)
	for _, path := range []string{"/", "/products/1", "/login", "/register", "/order-summary"} {
		m, err := r.Navigate(path)
		require.NoError(t, err)
		assert.Equal(t, normalize(path), m.Path)
	}
}

func TestRouter_History(t *testing.T) {
	r := New(true)

	_, ok := r.Back()
	assert.False(t, ok, "nothing to go back to")

	_, err := r.Navigate("/products/1")
	require.NoError(t, err)
	_, err = r.Navigate("/cart")
	require.NoError(t, err)
	_, err = r.Navigate("/cart")
	require.NoError(t, err)
	assert.Equal(t, 2, r.Depth(), "navigating to the current path does not push")

	m, ok := r.Back()
	require.True(t, ok)
	assert.Equal(t, ProductDetail, m.Route.Name)

	m, ok = r.Back()
	require.True(t, ok)
	assert.Equal(t, ProductList, m.Route.Name)
	assert.Equal(t, 0, r.Depth())
}

func TestRouter_BackRechecksGate(t *testing.T) {
	r := New(true)

	_, err := r.Navigate("/orders")
	require.NoError(t, err)
	_, err = r.Navigate("/products/2")
	require.NoError(t, err)

	r.SetLoggedIn(false)

	m, ok := r.Back()
	require.True(t, ok)
	assert.Equal(t, Login, m.Route.Name)
	assert.Equal(t, "/orders", m.From)
}

func TestRouter_Replace(t *testing.T) {
	r := New(true)

	_, err := r.Navigate("/checkout")
	require.NoError(t, err)
	m, err := r.Replace("/order-summary")
	require.NoError(t, err)
	assert.Equal(t, OrderSummary, m.Route.Name)
	assert.Equal(t, 1, r.Depth())
}

func TestRouter_ConcurrentFlag(t *testing.T) {
	r := New(false)

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.SetLoggedIn(i%2 == 0)
			_, _ = r.Navigate("/cart")
			_ = r.LoggedIn()
		}()
	}
	wg.Wait()
}
