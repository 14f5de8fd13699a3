package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/shop/internal/api"
	"github.com/hay-kot/shop/internal/core/session"
	"github.com/hay-kot/shop/internal/router"
	"github.com/hay-kot/shop/internal/shop"
	"github.com/hay-kot/shop/internal/shoptest"
)

func newModel(t *testing.T, srv *shoptest.Server, username string) (Model, *session.MemoryStore) {
	t.Helper()

	var sess session.Session
	if username != "" {
		sess.Access, sess.Refresh = srv.Login(t, username)
	}
	store := session.NewMemoryStore(sess)

	client, err := api.New(api.Config{BaseURL: srv.APIURL(), Logger: zerolog.Nop()}, store)
	require.NoError(t, err)

	svc := shop.New(client, zerolog.Nop())
	m := New(context.Background(), svc, router.New(sess.LoggedIn()), Options{Logger: zerolog.Nop()})
	return m, store
}

// drain feeds msg and every command it produces back through Update until the
// model settles or opens a form.
func drain(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()

	for range 20 {
		next, cmd := m.Update(msg)
		m = next.(Model)
		if cmd == nil || m.form != nil {
			return m
		}
		msg = cmd()
		if msg == nil {
			return m
		}
	}
	t.Fatal("model did not settle")
	return m
}

func keyPress(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModel_ProductList(t *testing.T) {
	srv := shoptest.New(t)
	m, _ := newModel(t, srv, "")

	m = drain(t, m, navigateMsg{path: "/"})
	require.NotNil(t, m.list)
	assert.True(t, m.list.Loaded)
	assert.False(t, m.loading)

	out := m.View()
	assert.Contains(t, out, "Mint Storefront")
	assert.Contains(t, out, "Mint Tea")
	assert.Contains(t, out, "Login")
}

func TestModel_OpenDetailAndAddToCart(t *testing.T) {
	srv := shoptest.New(t)
	m, _ := newModel(t, srv, "alice")

	m = drain(t, m, navigateMsg{path: "/"})
	m = drain(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, router.ProductDetail, m.router.Current().Route.Name)
	require.NotNil(t, m.detail)
	assert.Equal(t, "Mint Tea", m.detail.Page.Product.Name)

	m = drain(t, m, keyPress("+"))
	assert.Equal(t, 2, m.detail.Quantity)

	m = drain(t, m, keyPress("a"))
	assert.Equal(t, router.Cart, m.router.Current().Route.Name)
	assert.Equal(t, "Added 2 x Mint Tea to your cart.", m.flash)
	assert.Equal(t, 1, srv.CartSize("alice"))
	require.NotNil(t, m.cart)
	assert.Contains(t, m.View(), "Mint Tea")
}

func TestModel_GatedRouteRedirectsToLogin(t *testing.T) {
	srv := shoptest.New(t)
	m, _ := newModel(t, srv, "")

	m = drain(t, m, navigateMsg{path: "/cart"})

	current := m.router.Current()
	assert.Equal(t, router.Login, current.Route.Name)
	assert.Equal(t, "/cart", current.From)
	require.NotNil(t, m.form)
	assert.Equal(t, formLogin, m.form.kind)
}

func TestModel_LoginReturnsToGatedRoute(t *testing.T) {
	srv := shoptest.New(t)
	m, store := newModel(t, srv, "")

	m = drain(t, m, navigateMsg{path: "/orders"})
	require.NotNil(t, m.form)

	active := m.form
	active.data.Username = "alice"
	active.data.Password = shoptest.Password
	m.form = nil

	m = drain(t, m, m.submit(active)())

	assert.True(t, m.router.LoggedIn())
	assert.Equal(t, router.OrderHistory, m.router.Current().Route.Name)
	require.NotNil(t, m.history)
	assert.True(t, m.history.Loaded)

	sess, err := store.Get(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Refresh)
}

func TestModel_LoginFailureStays(t *testing.T) {
	srv := shoptest.New(t)
	m, _ := newModel(t, srv, "")

	m = drain(t, m, navigateMsg{path: "/login"})
	active := m.form
	active.data.Username = "alice"
	active.data.Password = "nope"
	m.form = nil

	m = drain(t, m, m.submit(active)())

	assert.False(t, m.router.LoggedIn())
	assert.Equal(t, router.Login, m.router.Current().Route.Name)
	require.NotNil(t, m.login)
	require.Error(t, m.login.Err)
	assert.Contains(t, m.View(), "Invalid username or password.")
}

func TestModel_CheckoutShowsSummary(t *testing.T) {
	srv := shoptest.New(t)
	m, _ := newModel(t, srv, "alice")
	ctx := context.Background()

	_, err := m.svc.AddToCart(ctx, 2, 1)
	require.NoError(t, err)

	m = drain(t, m, navigateMsg{path: "/checkout"})
	require.NotNil(t, m.form)
	assert.Equal(t, formCheckout, m.form.kind)
	assert.Equal(t, "1 Main St", m.form.data.Shipping)

	active := m.form
	m.form = nil
	m = drain(t, m, m.submit(active)())

	assert.Equal(t, router.OrderSummary, m.router.Current().Route.Name)
	require.NotNil(t, m.summary)
	require.NotNil(t, m.summary.Order)
	assert.Contains(t, m.View(), "Order Summary")
	assert.Contains(t, m.View(), "$18.00")
	assert.Equal(t, 0, srv.CartSize("alice"))
}

func TestModel_Logout(t *testing.T) {
	srv := shoptest.New(t)
	m, store := newModel(t, srv, "alice")

	m = drain(t, m, navigateMsg{path: "/account"})
	assert.Equal(t, router.Account, m.router.Current().Route.Name)

	m = drain(t, m, keyPress("L"))

	assert.False(t, m.router.LoggedIn())
	assert.Equal(t, router.ProductList, m.router.Current().Route.Name)
	sess, err := store.Get(context.Background())
	require.NoError(t, err)
	assert.False(t, sess.LoggedIn())
}

func TestModel_SessionClearedRegates(t *testing.T) {
	srv := shoptest.New(t)
	m, _ := newModel(t, srv, "alice")

	m = drain(t, m, navigateMsg{path: "/orders"})
	assert.Equal(t, router.OrderHistory, m.router.Current().Route.Name)

	m = drain(t, m, SessionCleared())

	assert.False(t, m.router.LoggedIn())
	assert.Equal(t, router.Login, m.router.Current().Route.Name)
	assert.Equal(t, "Your session has expired. Please log in again.", m.flash)
}

func TestModel_Back(t *testing.T) {
	srv := shoptest.New(t)
	m, _ := newModel(t, srv, "alice")

	m = drain(t, m, navigateMsg{path: "/"})
	m = drain(t, m, navigateMsg{path: "/products/2"})
	assert.Equal(t, "Ceramic Mug", m.detail.Page.Product.Name)

	m = drain(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, router.ProductList, m.router.Current().Route.Name)
}

func TestModel_FilterForm(t *testing.T) {
	srv := shoptest.New(t)
	m, _ := newModel(t, srv, "")

	m = drain(t, m, navigateMsg{path: "/"})
	m = drain(t, m, keyPress("/"))
	require.NotNil(t, m.form)
	assert.Equal(t, formFilter, m.form.kind)

	active := m.form
	active.data.Category = "Kitchen"
	m.form = nil
	m = drain(t, m, m.submit(active)())

	require.Len(t, m.list.Products, 1)
	assert.Equal(t, "Ceramic Mug", m.list.Products[0].Name)
}
