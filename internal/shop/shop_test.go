package shop_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/hay-kot/criterio"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/shop/internal/api"
	"github.com/hay-kot/shop/internal/core/session"
	"github.com/hay-kot/shop/internal/shop"
	"github.com/hay-kot/shop/internal/shoptest"
)

func newService(t *testing.T, srv *shoptest.Server, sess session.Session) (*shop.Service, *session.MemoryStore) {
	t.Helper()

	store := session.NewMemoryStore(sess)
	client, err := api.New(api.Config{BaseURL: srv.APIURL(), Logger: zerolog.Nop()}, store)
	require.NoError(t, err)

	return shop.New(client, zerolog.Nop()), store
}

func loggedIn(t *testing.T, srv *shoptest.Server, username string) (*shop.Service, *session.MemoryStore) {
	t.Helper()
	access, refresh := srv.Login(t, username)
	return newService(t, srv, session.Session{Access: access, Refresh: refresh})
}

func TestLogin_PersistsBothCredentials(t *testing.T) {
	srv := shoptest.New(t)
	svc, store := newService(t, srv, session.Session{})
	ctx := context.Background()

	sess, err := svc.Login(ctx, "alice", shoptest.Password)
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Access)
	assert.NotEmpty(t, sess.Refresh)

	stored, err := store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, sess, stored)

	ok, err := svc.LoggedIn(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	srv := shoptest.New(t)
	svc, store := newService(t, srv, session.Session{})
	ctx := context.Background()

	_, err := svc.Login(ctx, "alice", "wrong")
	require.Error(t, err)
	assert.Equal(t, shop.KindUnauthorized, shop.Classify(err))
	assert.Equal(t, 0, srv.Calls("POST", "token/refresh/"), "login 401 must not refresh")

	stored, err := store.Get(ctx)
	require.NoError(t, err)
	assert.False(t, stored.LoggedIn())
}

func TestLogin_ValidatesBeforeSending(t *testing.T) {
	srv := shoptest.New(t)
	svc, _ := newService(t, srv, session.Session{})

	_, err := svc.Login(context.Background(), "", "")
	require.Error(t, err)
	assert.Equal(t, shop.KindValidation, shop.Classify(err))
	assert.Len(t, shop.FieldErrors(err), 2)
	assert.Equal(t, 0, srv.Calls("POST", "login/"))
}

func TestRegister(t *testing.T) {
	srv := shoptest.New(t)
	svc, _ := newService(t, srv, session.Session{})
	ctx := context.Background()

	c, err := svc.Register(ctx, shop.RegisterRequest{Username: "carol", Password: "pw", Email: "carol@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "carol", c.User.Username)
	assert.Equal(t, "carol@example.com", c.User.Email)

	_, err = svc.Register(ctx, shop.RegisterRequest{Username: "carol", Password: "pw", Email: "carol@example.com"})
	require.Error(t, err)
	assert.Equal(t, shop.KindValidation, shop.Classify(err))
	assert.Contains(t, shop.UserMessage(err), "already exists")

	_, err = svc.Register(ctx, shop.RegisterRequest{Username: "dave", Password: "pw", Email: "not-an-email"})
	require.Error(t, err)
	fes := shop.FieldErrors(err)
	require.Len(t, fes, 1)
	assert.Equal(t, "email", fes[0].Field)
}

func TestLogout_ClearsSession(t *testing.T) {
	srv := shoptest.New(t)
	svc, store := loggedIn(t, srv, "alice")
	ctx := context.Background()

	require.NoError(t, svc.Logout(ctx))
	assert.Equal(t, 1, srv.Calls("POST", "logout/"))

	stored, err := store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, session.Session{}, stored)
}

func TestLogout_ClearsEvenWhenBackendFails(t *testing.T) {
	srv := shoptest.New(t)
	svc, store := loggedIn(t, srv, "alice")
	ctx := context.Background()

	srv.ExpireAccess()
	srv.FailRefresh(true)

	require.NoError(t, svc.Logout(ctx))

	stored, err := store.Get(ctx)
	require.NoError(t, err)
	assert.False(t, stored.LoggedIn())
}

func TestStatus(t *testing.T) {
	srv := shoptest.New(t)
	svc, _ := loggedIn(t, srv, "alice")

	st, err := svc.Status(context.Background())
	require.NoError(t, err)
	assert.True(t, st.LoggedIn)
	assert.True(t, st.CanRefresh)
	assert.Equal(t, "alice", st.Access.Subject)
	assert.Equal(t, "access", st.Access.TokenType)
	assert.Equal(t, "refresh", st.Refresh.TokenType)
	assert.False(t, st.Access.ExpiresAt.IsZero())
}

func TestProducts(t *testing.T) {
	srv := shoptest.New(t)
	svc, _ := newService(t, srv, session.Session{})

	products, err := svc.Products(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 3)
	assert.Equal(t, "Mint Tea", products[0].Name)
	assert.Equal(t, shop.Price(1250), products[0].Price)
	assert.False(t, products[2].InStock())
}

func TestFilterProducts(t *testing.T) {
	srv := shoptest.New(t)
	svc, _ := newService(t, srv, session.Session{})
	ctx := context.Background()

	tests := []struct {
		name   string
		filter shop.Filter
		want   []string
	}{
		{name: "empty filter lists all", filter: shop.Filter{}, want: []string{"Mint Tea", "Ceramic Mug", "Green Tea"}},
		{name: "category", filter: shop.Filter{Category: "tea"}, want: []string{"Mint Tea", "Green Tea"}},
		{name: "search", filter: shop.Filter{Search: "mug"}, want: []string{"Ceramic Mug"}},
		{name: "sort by price", filter: shop.Filter{Category: "Tea", SortBy: "price"}, want: []string{"Green Tea", "Mint Tea"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			products, err := svc.FilterProducts(ctx, tt.filter)
			require.NoError(t, err)

			names := make([]string, 0, len(products))
			for _, p := range products {
				names = append(names, p.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestCategories(t *testing.T) {
	srv := shoptest.New(t)
	svc, _ := newService(t, srv, session.Session{})

	cats, err := svc.Categories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []shop.Category{{Name: "Kitchen"}, {Name: "Tea"}}, cats)
}

func TestProductPage(t *testing.T) {
	srv := shoptest.New(t)
	svc, _ := loggedIn(t, srv, "alice")

	page, err := svc.ProductPage(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Mint Tea", page.Product.Name)
	require.Len(t, page.Reviews, 1)
	assert.Equal(t, "bob", page.Reviews[0].User.String())
}

func TestProduct_RequiresLogin(t *testing.T) {
	srv := shoptest.New(t)
	svc, _ := newService(t, srv, session.Session{})

	_, err := svc.Product(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, shop.KindUnauthorized, shop.Classify(err))
	assert.Equal(t, "You must be logged in to continue.", shop.UserMessage(err))
}

func TestProduct_NotFound(t *testing.T) {
	srv := shoptest.New(t)
	svc, _ := loggedIn(t, srv, "alice")

	_, err := svc.Product(context.Background(), 999)
	require.Error(t, err)
	assert.Equal(t, shop.KindNotFound, shop.Classify(err))
	assert.Equal(t, "Product not found", shop.UserMessage(err))
}

func TestCart_Lifecycle(t *testing.T) {
	srv := shoptest.New(t)
	svc, _ := loggedIn(t, srv, "alice")
	ctx := context.Background()

	cart, err := svc.Cart(ctx)
	require.NoError(t, err)
	assert.True(t, cart.Empty(), "204 decodes to an empty cart")

	item, err := svc.AddToCart(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, "Mint Tea", item.Product.Name)

	_, err = svc.AddToCart(ctx, 2, 1)
	require.NoError(t, err)

	cart, err = svc.Cart(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, cart.Count())
	assert.Equal(t, shop.Price(1250*2+1800), cart.Subtotal())

	updated, err := svc.UpdateCartItem(ctx, item.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Quantity)

	require.NoError(t, svc.RemoveCartItem(ctx, item.ID))
	assert.Equal(t, 1, srv.CartSize("alice"))

	require.NoError(t, svc.ClearCart(ctx))
	assert.Equal(t, 0, srv.CartSize("alice"))
}

func TestAddToCart_InvalidQuantity(t *testing.T) {
	srv := shoptest.New(t)
	svc, _ := loggedIn(t, srv, "alice")

	_, err := svc.AddToCart(context.Background(), 1, 0)
	require.Error(t, err)
	assert.Equal(t, shop.KindValidation, shop.Classify(err))
	assert.Equal(t, 0, srv.Calls("POST", "cart/add/"))
}

func TestCheckout(t *testing.T) {
	srv := shoptest.New(t)
	svc, _ := loggedIn(t, srv, "alice")
	ctx := context.Background()

	_, err := svc.AddToCart(ctx, 1, 2)
	require.NoError(t, err)

	order, err := svc.Checkout(ctx, shop.CheckoutRequest{ShippingAddress: "1 Main St", BillingAddress: "1 Main St"})
	require.NoError(t, err)
	assert.Equal(t, "Pending", order.Status)
	assert.Equal(t, shop.Price(2500), order.TotalPrice)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 1, order.Items[0].Product.ID)

	orders, err := svc.Orders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, order.ID, orders[0].ID)
	assert.Equal(t, 0, srv.CartSize("alice"))
}

func TestCheckout_EmptyCart(t *testing.T) {
	srv := shoptest.New(t)
	svc, _ := loggedIn(t, srv, "alice")

	_, err := svc.Checkout(context.Background(), shop.CheckoutRequest{ShippingAddress: "a", BillingAddress: "b"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, shop.ErrEmptyCart))
	assert.Equal(t, "Cart is empty", shop.UserMessage(err))
}

func TestProcessPayment_Declined(t *testing.T) {
	srv := shoptest.New(t)
	svc, _ := loggedIn(t, srv, "alice")
	ctx := context.Background()

	_, err := svc.AddToCart(ctx, 2, 1)
	require.NoError(t, err)

	_, err = svc.ProcessPayment(ctx, shop.CheckoutRequest{
		ShippingAddress: "1 Main St",
		BillingAddress:  "1 Main St",
		CreditCardInfo:  "4000000000000002",
	})
	require.Error(t, err)
	assert.Equal(t, shop.KindPayment, shop.Classify(err))
	assert.Equal(t, "Credit card authorization failed.", shop.UserMessage(err))
	assert.Equal(t, 1, srv.CartSize("alice"), "declined payment keeps the cart")

	order, err := svc.ProcessPayment(ctx, shop.CheckoutRequest{ShippingAddress: "1 Main St", BillingAddress: "1 Main St"})
	require.NoError(t, err)
	assert.Equal(t, shop.Price(1800), order.TotalPrice)
}

func TestAccount(t *testing.T) {
	srv := shoptest.New(t)
	svc, _ := loggedIn(t, srv, "bob")
	ctx := context.Background()

	c, err := svc.Account(ctx)
	require.NoError(t, err)
	assert.Equal(t, "bob", c.User.Username)
	assert.Empty(t, c.ShippingAddress)

	c.ShippingAddress = "2 Side St"
	c.CreditCardInfo = "4242424242424242"
	updated, err := svc.UpdateAccount(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, "2 Side St", updated.ShippingAddress)

	again, err := svc.Account(ctx)
	require.NoError(t, err)
	assert.Equal(t, updated, again)
}

func TestReviews(t *testing.T) {
	srv := shoptest.New(t)
	svc, _ := loggedIn(t, srv, "alice")
	ctx := context.Background()

	r, err := svc.AddReview(ctx, shop.ReviewRequest{ProductID: 2, Rating: 4, Comment: "Solid mug."})
	require.NoError(t, err)
	assert.Equal(t, "alice", r.User.String())

	reviews, err := svc.Reviews(ctx, 2)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, "Solid mug.", reviews[0].Comment)

	_, err = svc.AddReview(ctx, shop.ReviewRequest{ProductID: 2, Rating: 9})
	require.Error(t, err)
	assert.Equal(t, shop.KindValidation, shop.Classify(err))
}

func TestExpiredAccess_RefreshesTransparently(t *testing.T) {
	srv := shoptest.New(t)
	svc, store := loggedIn(t, srv, "alice")
	ctx := context.Background()

	before, err := store.Get(ctx)
	require.NoError(t, err)

	srv.ExpireAccess()

	orders, err := svc.Orders(ctx)
	require.NoError(t, err)
	assert.Empty(t, orders)
	assert.Equal(t, 1, srv.Calls("POST", "token/refresh/"))

	after, err := store.Get(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, before.Access, after.Access)
	assert.NotEqual(t, before.Refresh, after.Refresh, "rotated refresh credential is persisted")
}

func TestRefreshFailure_LogsOut(t *testing.T) {
	srv := shoptest.New(t)
	svc, store := loggedIn(t, srv, "alice")
	ctx := context.Background()

	var cleared sync.WaitGroup
	cleared.Add(1)
	svc.OnSessionCleared(cleared.Done)

	srv.ExpireAccess()
	srv.FailRefresh(true)

	_, err := svc.Cart(ctx)
	require.Error(t, err)
	assert.Equal(t, shop.KindRefreshFailed, shop.Classify(err))
	cleared.Wait()

	stored, err := store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, session.Session{}, stored)
}

func TestProductPage_AfterExpiry(t *testing.T) {
	srv := shoptest.New(t)
	svc, _ := loggedIn(t, srv, "alice")
	ctx := context.Background()

	srv.ExpireAccess()

	page, err := svc.ProductPage(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Product.ID)
	assert.Equal(t, 1, srv.Calls("POST", "token/refresh/"))
}

func TestMediaURL(t *testing.T) {
	srv := shoptest.New(t)
	svc, _ := newService(t, srv, session.Session{})

	assert.Empty(t, svc.MediaURL(""))
	assert.Equal(t, srv.URL+"/media/mint.jpg", svc.MediaURL("/media/mint.jpg"))

	require.NoError(t, svc.SetMediaURL("https://cdn.example.com/"))
	assert.Equal(t, "https://cdn.example.com/media/mint.jpg", svc.MediaURL("/media/mint.jpg"))
	assert.Equal(t, "https://img.example.com/a.jpg", svc.MediaURL("https://img.example.com/a.jpg"))
}

func TestInputValidation_FieldErrors(t *testing.T) {
	srv := shoptest.New(t)
	svc, _ := newService(t, srv, session.Session{})
	ctx := context.Background()

	tests := []struct {
		name   string
		call   func() error
		fields []string
	}{
		{
			name: "register with bad email",
			call: func() error {
				_, err := svc.Register(ctx, shop.RegisterRequest{Username: "carol", Password: "pw", Email: "not-an-email"})
				return err
			},
			fields: []string{"email"},
		},
		{
			name: "register with nothing",
			call: func() error {
				_, err := svc.Register(ctx, shop.RegisterRequest{})
				return err
			},
			fields: []string{"username", "password", "email"},
		},
		{
			name: "review without product or rating",
			call: func() error {
				_, err := svc.AddReview(ctx, shop.ReviewRequest{Rating: 6})
				return err
			},
			fields: []string{"product", "rating"},
		},
		{
			name: "checkout with blank addresses",
			call: func() error {
				_, err := svc.Checkout(ctx, shop.CheckoutRequest{ShippingAddress: "  "})
				return err
			},
			fields: []string{"shipping_address", "billing_address"},
		},
		{
			name: "zero quantity",
			call: func() error {
				_, err := svc.AddToCart(ctx, 1, 0)
				return err
			},
			fields: []string{"quantity"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			require.Error(t, err)
			assert.Equal(t, shop.KindValidation, shop.Classify(err))

			var fieldErrs criterio.FieldErrors
			require.ErrorAs(t, err, &fieldErrs)

			got := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				got = append(got, fe.Field)
			}
			assert.Equal(t, tt.fields, got)
		})
	}

	assert.Zero(t, srv.Calls("POST", "register/"))
	assert.Zero(t, srv.Calls("POST", "reviews/add/"))
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in      string
		want    shop.Price
		wantErr bool
	}{
		{in: "19.99", want: 1999},
		{in: "$12.50", want: 1250},
		{in: " 7 ", want: 700},
		{in: "-3.10", want: -310},
		{in: "0.005", want: 1},
		{in: "", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "NaN", wantErr: true},
		{in: "Inf", wantErr: true},
		{in: "-Infinity", wantErr: true},
		{in: "1e400", wantErr: true},
		{in: "1e300", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := shop.ParsePrice(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPrice_UnmarshalRejectsNonFinite(t *testing.T) {
	var p shop.Price
	assert.Error(t, json.Unmarshal([]byte(`"NaN"`), &p))
	assert.Error(t, json.Unmarshal([]byte(`"Infinity"`), &p))

	require.NoError(t, json.Unmarshal([]byte(`12.5`), &p))
	assert.Equal(t, shop.Price(1250), p)
}
