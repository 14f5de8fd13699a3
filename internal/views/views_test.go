package views_test

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/shop/internal/api"
	"github.com/hay-kot/shop/internal/core/session"
	"github.com/hay-kot/shop/internal/router"
	"github.com/hay-kot/shop/internal/shop"
	"github.com/hay-kot/shop/internal/shoptest"
	"github.com/hay-kot/shop/internal/views"
)

var _ views.Service = (*shop.Service)(nil)

var plain = views.Options{Width: 80}

func newService(t *testing.T, srv *shoptest.Server, username string) *shop.Service {
	t.Helper()

	var sess session.Session
	if username != "" {
		sess.Access, sess.Refresh = srv.Login(t, username)
	}

	client, err := api.New(api.Config{BaseURL: srv.APIURL(), Logger: zerolog.Nop()}, session.NewMemoryStore(sess))
	require.NoError(t, err)
	return shop.New(client, zerolog.Nop())
}

func TestNavbar(t *testing.T) {
	out := views.Navbar{LoggedIn: false}.Links()
	assert.Equal(t, []string{"Home", "Login", "Signup"}, out)

	out = views.Navbar{LoggedIn: true}.Links()
	assert.Equal(t, []string{"Home", "Cart", "Orders", "Profile", "Logout"}, out)

	rendered := views.Navbar{LoggedIn: true, Active: router.Cart}.Render(0)
	assert.Contains(t, rendered, "Mint Storefront")
	assert.Contains(t, rendered, "Profile")
	assert.NotContains(t, rendered, "Signup")
}

func TestProductList(t *testing.T) {
	srv := shoptest.New(t)
	svc := newService(t, srv, "")
	ctx := context.Background()

	v := &views.ProductList{}
	assert.Contains(t, v.Render(plain, true), "Loading...")

	require.NoError(t, v.Load(ctx, svc))
	out := v.Render(plain, true)
	assert.Contains(t, out, "Mint Tea")
	assert.Contains(t, out, "$12.50")
	assert.Contains(t, out, "out of stock")

	v.Move(10)
	p, ok := v.Selected()
	require.True(t, ok)
	assert.Equal(t, "Green Tea", p.Name)

	v.Move(-10)
	p, _ = v.Selected()
	assert.Equal(t, "Mint Tea", p.Name)
}

func TestProductList_Filter(t *testing.T) {
	srv := shoptest.New(t)
	svc := newService(t, srv, "")

	v := &views.ProductList{Filter: shop.Filter{Category: "Kitchen"}}
	require.NoError(t, v.Load(context.Background(), svc))

	out := v.Render(plain, false)
	assert.Contains(t, out, "category=Kitchen")
	assert.Contains(t, out, "Ceramic Mug")
	assert.NotContains(t, out, "Mint Tea")

	v = &views.ProductList{Filter: shop.Filter{Search: "nothing matches"}}
	require.NoError(t, v.Load(context.Background(), svc))
	assert.Contains(t, v.Render(plain, false), "No products found.")
}

func TestProductList_NetworkError(t *testing.T) {
	srv := shoptest.New(t)
	svc := newService(t, srv, "")
	srv.Close()

	v := &views.ProductList{}
	require.Error(t, v.Load(context.Background(), svc))
	assert.Contains(t, v.Render(plain, false), "Could not reach the store. Please try again later.")
}

func TestProductDetail(t *testing.T) {
	srv := shoptest.New(t)
	svc := newService(t, srv, "alice")
	ctx := context.Background()

	v := views.NewProductDetail(1)
	require.NoError(t, v.Load(ctx, svc))

	out := v.Render(views.Options{Width: 80, MarkdownStyle: "notty"}, svc)
	assert.Contains(t, out, "Mint Tea")
	assert.Contains(t, out, "peppermint")
	assert.Contains(t, out, "$12.50")
	assert.Contains(t, out, srv.URL+"/media/product_images/mint-tea.jpg")
	assert.Contains(t, out, "Great tea.")

	v.SetQuantity(1000)
	assert.Equal(t, 40, v.Quantity)
	v.SetQuantity(-1)
	assert.Equal(t, 1, v.Quantity)

	v.SetQuantity(3)
	item, err := v.AddToCart(ctx, svc)
	require.NoError(t, err)
	assert.Equal(t, 3, item.Quantity)
	assert.Contains(t, v.Render(plain, svc), "Added 3 x Mint Tea to your cart.")

	require.NoError(t, v.AddReview(ctx, svc, 4, "Fresh."))
	assert.Contains(t, v.Render(plain, svc), "Fresh.")
}

func TestProductDetail_LoggedOut(t *testing.T) {
	srv := shoptest.New(t)
	svc := newService(t, srv, "")

	v := views.NewProductDetail(1)
	require.Error(t, v.Load(context.Background(), svc))
	assert.Contains(t, v.Render(plain, svc), "You must be logged in to continue.")
}

func TestCart(t *testing.T) {
	srv := shoptest.New(t)
	svc := newService(t, srv, "alice")
	ctx := context.Background()

	v := &views.Cart{}
	require.NoError(t, v.Load(ctx, svc))
	assert.Contains(t, v.Render(plain, true), "Cart is empty.")
	assert.False(t, v.CanCheckout())

	_, err := svc.AddToCart(ctx, 1, 2)
	require.NoError(t, err)
	_, err = svc.AddToCart(ctx, 2, 1)
	require.NoError(t, err)

	require.NoError(t, v.Load(ctx, svc))
	out := v.Render(plain, true)
	assert.Contains(t, out, "2 x Mint Tea - $12.50")
	assert.Contains(t, out, "1 x Ceramic Mug - $18.00")
	assert.Contains(t, out, "$43.00")
	assert.True(t, v.CanCheckout())

	require.NoError(t, v.RemoveSelected(ctx, svc))
	assert.Len(t, v.Cart.Items, 1)
	assert.NotContains(t, v.Render(plain, true), "Mint Tea")
}

func TestCheckoutAndSummary(t *testing.T) {
	srv := shoptest.New(t)
	svc := newService(t, srv, "alice")
	ctx := context.Background()

	_, err := svc.AddToCart(ctx, 2, 2)
	require.NoError(t, err)

	account, err := svc.Account(ctx)
	require.NoError(t, err)

	v := &views.Checkout{}
	v.Prefill(account)
	assert.Equal(t, "1 Main St", v.Request.ShippingAddress)

	order, err := v.Submit(ctx, svc)
	require.NoError(t, err)

	summary := (&views.OrderSummary{Order: &order}).Render(plain)
	assert.Contains(t, summary, "Order Summary")
	assert.Contains(t, summary, "Pending")
	assert.Contains(t, summary, "$36.00")
	assert.Contains(t, summary, "2 x product #2")
}

func TestCheckout_Declined(t *testing.T) {
	srv := shoptest.New(t)
	svc := newService(t, srv, "bob")
	ctx := context.Background()

	_, err := svc.AddToCart(ctx, 1, 1)
	require.NoError(t, err)

	v := &views.Checkout{Request: shop.CheckoutRequest{ShippingAddress: "x", BillingAddress: "y"}}
	_, err = v.Submit(ctx, svc)
	require.Error(t, err)
	assert.Contains(t, v.Render(plain), "Credit card authorization failed.")
}

func TestOrderSummary_Empty(t *testing.T) {
	out := (&views.OrderSummary{}).Render(plain)
	assert.Contains(t, out, "No order summary available.")
}

func TestLoginAndRegister(t *testing.T) {
	srv := shoptest.New(t)
	svc := newService(t, srv, "")
	ctx := context.Background()

	reg := &views.Register{Request: shop.RegisterRequest{Username: "alice", Password: "x", Email: "a@example.com"}}
	require.Error(t, reg.Submit(ctx, svc))
	assert.Contains(t, reg.Render(plain), "already exists")

	reg = &views.Register{Request: shop.RegisterRequest{Username: "erin", Password: "pw", Email: "erin@example.com"}}
	require.NoError(t, reg.Submit(ctx, svc))
	assert.True(t, reg.Done)
	assert.Empty(t, reg.Request.Password)

	login := &views.Login{Username: "erin", Password: "wrong", From: "/cart"}
	require.Error(t, login.Submit(ctx, svc))
	out := login.Render(plain)
	assert.Contains(t, out, "/cart")
	assert.Contains(t, out, "Invalid username or password.")

	login.Password = "pw"
	require.NoError(t, login.Submit(ctx, svc))
	assert.Equal(t, "/cart", login.Next())
	assert.Empty(t, login.Password)

	ok, err := svc.LoggedIn(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAccount(t *testing.T) {
	srv := shoptest.New(t)
	svc := newService(t, srv, "alice")
	ctx := context.Background()

	v := &views.Account{}
	require.NoError(t, v.Load(ctx, svc))
	out := v.Render(plain)
	assert.Contains(t, out, "Username: alice")
	assert.Contains(t, out, "4242")
	assert.NotContains(t, out, "4242424242424242")

	v.Customer.BillingAddress = "9 Elm St"
	require.NoError(t, v.Save(ctx, svc))
	out = v.Render(plain)
	assert.Contains(t, out, "9 Elm St")
	assert.Contains(t, out, "Account updated successfully.")
}

func TestOrderHistory(t *testing.T) {
	srv := shoptest.New(t)
	svc := newService(t, srv, "alice")
	ctx := context.Background()

	v := &views.OrderHistory{}
	require.NoError(t, v.Load(ctx, svc))
	assert.Contains(t, v.Render(plain), "You have not placed any orders yet.")

	for _, id := range []int{1, 2} {
		_, err := svc.AddToCart(ctx, id, 1)
		require.NoError(t, err)
		_, err = svc.Checkout(ctx, shop.CheckoutRequest{ShippingAddress: "a", BillingAddress: "b"})
		require.NoError(t, err)
	}

	require.NoError(t, v.Load(ctx, svc))
	out := v.Render(plain)
	first := strings.Index(out, "$18.00")
	second := strings.Index(out, "$12.50")
	require.NotEqual(t, -1, first)
	require.NotEqual(t, -1, second)
	assert.Less(t, first, second, "newest order is listed first")
}

func TestMaskCard(t *testing.T) {
	assert.Equal(t, "", views.MaskCard(""))
	assert.Equal(t, "1234", views.MaskCard("1234"))
	assert.Equal(t, "••••5678", views.MaskCard("1234 5678"))
}
