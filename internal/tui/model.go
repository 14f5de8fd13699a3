// Package tui implements the Bubble Tea storefront.
package tui

import (
	"context"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/hay-kot/shop/internal/router"
	"github.com/hay-kot/shop/internal/shop"
	"github.com/hay-kot/shop/internal/styles"
	"github.com/hay-kot/shop/internal/views"
)

// Options configures the TUI.
type Options struct {
	View views.Options
	// Start is the first path shown. Defaults to "/".
	Start  string
	Logger zerolog.Logger
}

// Model is the main Bubble Tea model for the TUI.
type Model struct {
	ctx    context.Context
	svc    *shop.Service
	router *router.Router
	opts   views.Options
	log    zerolog.Logger
	start  string

	keys    keyMap
	help    help.Model
	spinner spinner.Model

	width    int
	height   int
	loading  bool
	quitting bool
	flash    string

	list     *views.ProductList
	detail   *views.ProductDetail
	cart     *views.Cart
	checkout *views.Checkout
	login    *views.Login
	register *views.Register
	account  *views.Account
	summary  *views.OrderSummary
	history  *views.OrderHistory

	form *activeForm
}

// loadedMsg carries a freshly loaded view. Loads run on a copy so the view
// being rendered is never written from another goroutine.
type loadedMsg struct {
	route router.Name
	view  any
}

// actionMsg reports the outcome of a form submission or key action.
type actionMsg struct {
	route router.Name
	view  any
	err   error
	// next is where to go on success; replace keeps it off the back stack.
	next     string
	replace  bool
	flash    string
	loggedIn *bool
}

// sessionClearedMsg is sent when a failed refresh logs the shopper out.
type sessionClearedMsg struct{}

// SessionCleared is the message to send into a running program when the API
// client clears the session.
func SessionCleared() tea.Msg {
	return sessionClearedMsg{}
}

// New creates a new TUI model.
func New(ctx context.Context, svc *shop.Service, r *router.Router, opts Options) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.ColorBlue)

	h := help.New()
	h.ShortSeparator = " • "
	h.Styles.ShortKey = styles.MutedStyle
	h.Styles.ShortDesc = styles.MutedStyle
	h.Styles.ShortSeparator = styles.MutedStyle

	start := opts.Start
	if start == "" {
		start = "/"
	}

	return Model{
		ctx:     ctx,
		svc:     svc,
		router:  r,
		opts:    opts.View,
		log:     opts.Logger,
		start:   start,
		keys:    newKeyMap(),
		help:    h,
		spinner: s,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, func() tea.Msg { return navigateMsg{path: m.start} })
}

type navigateMsg struct {
	path    string
	replace bool
}

func navigate(path string) tea.Cmd {
	return func() tea.Msg { return navigateMsg{path: path} }
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.opts.Width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case navigateMsg:
		return m.goTo(msg.path, msg.replace)

	case loadedMsg:
		m.loading = false
		m.setView(msg.route, msg.view)
		if msg.route == router.Checkout && m.router.Current().Route.Name == router.Checkout {
			return m.openForm(formCheckout)
		}
		return m, nil

	case actionMsg:
		return m.handleAction(msg)

	case sessionClearedMsg:
		m.router.SetLoggedIn(false)
		m.flash = "Your session has expired. Please log in again."
		if m.router.Current().Route.RequiresLogin {
			return m.goTo(m.router.Current().Path, true)
		}
		return m, nil

	case tea.KeyMsg:
		if m.form != nil {
			return m.handleFormKey(msg)
		}
		return m.handleKey(msg)
	}

	if m.form != nil {
		return m.updateForm(msg)
	}
	return m, nil
}

func (m Model) goTo(path string, replace bool) (tea.Model, tea.Cmd) {
	var (
		match router.Match
		err   error
	)
	if replace {
		match, err = m.router.Replace(path)
	} else {
		match, err = m.router.Navigate(path)
	}
	if err != nil {
		m.flash = err.Error()
		return m, nil
	}
	return m.enter(match)
}

// enter prepares the view for match and starts whatever it needs to load.
func (m Model) enter(match router.Match) (tea.Model, tea.Cmd) {
	m.form = nil
	m.keys.route = match.Route.Name

	switch match.Route.Name {
	case router.ProductList:
		filter := shop.Filter{}
		if m.list != nil {
			filter = m.list.Filter
		}
		if m.list == nil || !m.list.Loaded || m.list.Err != nil {
			m.list = &views.ProductList{Filter: filter}
			return m.load(router.ProductList, m.list)
		}
		return m, nil

	case router.ProductDetail:
		id, err := match.IntParam("id")
		if err != nil {
			m.flash = "Unknown product."
			return m, nil
		}
		m.detail = views.NewProductDetail(id)
		return m.load(router.ProductDetail, m.detail)

	case router.Cart:
		m.cart = &views.Cart{}
		return m.load(router.Cart, m.cart)

	case router.Checkout:
		m.checkout = &views.Checkout{}
		return m.load(router.Checkout, m.checkout)

	case router.Login:
		m.login = &views.Login{From: match.From}
		return m.openForm(formLogin)

	case router.Register:
		m.register = &views.Register{}
		return m.openForm(formRegister)

	case router.OrderSummary:
		if m.summary == nil {
			m.summary = &views.OrderSummary{}
		}
		return m, nil

	case router.OrderHistory:
		m.history = &views.OrderHistory{}
		return m.load(router.OrderHistory, m.history)

	case router.Account:
		m.account = &views.Account{}
		return m.load(router.Account, m.account)
	}

	return m, nil
}

// load fetches a copy of v in the background.
func (m Model) load(route router.Name, v any) (tea.Model, tea.Cmd) {
	m.loading = true
	ctx, svc := m.ctx, m.svc

	return m, func() tea.Msg {
		switch v := v.(type) {
		case *views.ProductList:
			c := *v
			_ = c.Load(ctx, svc)
			return loadedMsg{route: route, view: &c}
		case *views.ProductDetail:
			c := *v
			_ = c.Load(ctx, svc)
			return loadedMsg{route: route, view: &c}
		case *views.Cart:
			c := *v
			_ = c.Load(ctx, svc)
			return loadedMsg{route: route, view: &c}
		case *views.Checkout:
			c := *v
			if acct, err := svc.Account(ctx); err == nil {
				c.Prefill(acct)
			}
			return loadedMsg{route: route, view: &c}
		case *views.OrderHistory:
			c := *v
			_ = c.Load(ctx, svc)
			return loadedMsg{route: route, view: &c}
		case *views.Account:
			c := *v
			_ = c.Load(ctx, svc)
			return loadedMsg{route: route, view: &c}
		}
		return loadedMsg{route: route}
	}
}

func (m *Model) setView(route router.Name, v any) {
	switch v := v.(type) {
	case *views.ProductList:
		m.list = v
	case *views.ProductDetail:
		m.detail = v
	case *views.Cart:
		m.cart = v
	case *views.Checkout:
		m.checkout = v
	case *views.Login:
		m.login = v
	case *views.Register:
		m.register = v
	case *views.Account:
		m.account = v
	case *views.OrderHistory:
		m.history = v
	case *views.OrderSummary:
		m.summary = v
	default:
		m.log.Debug().Str("route", string(route)).Msg("no view in message")
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.flash = ""
	m.keys.loggedIn = m.router.LoggedIn()
	current := m.router.Current()

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Back):
		if prev, ok := m.router.Back(); ok {
			return m.enter(prev)
		}
		return m, nil
	case key.Matches(msg, m.keys.Home):
		return m.goTo("/", false)
	case key.Matches(msg, m.keys.Reload):
		if current.Route.Name == router.ProductList && m.list != nil {
			m.list.Loaded = false
		}
		return m.enter(current)
	}

	if m.keys.loggedIn {
		switch {
		case key.Matches(msg, m.keys.Cart):
			return m.goTo("/cart", false)
		case key.Matches(msg, m.keys.Orders):
			return m.goTo("/orders", false)
		case key.Matches(msg, m.keys.Account) && current.Route.Name != router.Account:
			return m.goTo("/account", false)
		case key.Matches(msg, m.keys.Logout):
			return m, m.logout()
		}
	} else {
		switch {
		case key.Matches(msg, m.keys.Login):
			return m.goTo("/login", false)
		case key.Matches(msg, m.keys.Signup):
			return m.goTo("/register", false)
		}
	}

	switch current.Route.Name {
	case router.ProductList:
		return m.handleListKey(msg)
	case router.ProductDetail:
		return m.handleDetailKey(msg)
	case router.Cart:
		return m.handleCartKey(msg)
	case router.Checkout:
		if msg.String() == keyEnter {
			return m.openForm(formCheckout)
		}
	case router.Account:
		if key.Matches(msg, m.keys.Edit) && m.account != nil && m.account.Loaded {
			return m.openForm(formAccount)
		}
	case router.Login:
		if msg.String() == keyEnter {
			return m.openForm(formLogin)
		}
	case router.Register:
		if msg.String() == keyEnter {
			return m.openForm(formRegister)
		}
	}

	return m, nil
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.list == nil {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Up):
		m.list.Move(-1)
	case key.Matches(msg, m.keys.Down):
		m.list.Move(1)
	case key.Matches(msg, m.keys.Search):
		return m.openForm(formFilter)
	case key.Matches(msg, m.keys.Open):
		if p, ok := m.list.Selected(); ok {
			return m.goTo("/products/"+strconv.Itoa(p.ID), false)
		}
	}
	return m, nil
}

func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.detail == nil || !m.detail.Loaded {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.More):
		m.detail.SetQuantity(m.detail.Quantity + 1)
	case key.Matches(msg, m.keys.Less):
		m.detail.SetQuantity(m.detail.Quantity - 1)
	case key.Matches(msg, m.keys.AddCart):
		c := *m.detail
		ctx, svc := m.ctx, m.svc
		m.loading = true
		return m, func() tea.Msg {
			_, err := c.AddToCart(ctx, svc)
			return actionMsg{route: router.ProductDetail, view: &c, err: err, next: "/cart", flash: c.Notice}
		}
	case key.Matches(msg, m.keys.Review):
		return m.openForm(formReview)
	}
	return m, nil
}

func (m Model) handleCartKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.cart == nil {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Up):
		m.cart.Move(-1)
	case key.Matches(msg, m.keys.Down):
		m.cart.Move(1)
	case key.Matches(msg, m.keys.Remove):
		c := *m.cart
		ctx, svc := m.ctx, m.svc
		m.loading = true
		return m, func() tea.Msg {
			err := c.RemoveSelected(ctx, svc)
			return actionMsg{route: router.Cart, view: &c, err: err}
		}
	case msg.String() == keyEnter:
		if m.cart.CanCheckout() {
			return m.goTo("/checkout", false)
		}
	}
	return m, nil
}

func (m Model) logout() tea.Cmd {
	ctx, svc := m.ctx, m.svc
	return func() tea.Msg {
		err := svc.Logout(ctx)
		out := false
		return actionMsg{err: err, next: "/", replace: true, flash: "Logged out.", loggedIn: &out}
	}
}

func (m Model) handleAction(msg actionMsg) (tea.Model, tea.Cmd) {
	m.loading = false
	if msg.view != nil {
		m.setView(msg.route, msg.view)
	}
	if msg.loggedIn != nil {
		m.router.SetLoggedIn(*msg.loggedIn)
	}
	if msg.err != nil {
		// Views render their own errors.
		if msg.view == nil {
			m.flash = shop.UserMessage(msg.err)
		}
		return m, nil
	}
	if msg.flash != "" {
		m.flash = msg.flash
	}
	if msg.next != "" {
		return m, func() tea.Msg { return navigateMsg{path: msg.next, replace: msg.replace} }
	}
	return m, nil
}

func (m Model) openForm(kind formKind) (tea.Model, tea.Cmd) {
	data := &formData{}

	switch kind {
	case formLogin:
		if m.login != nil {
			data.Username = m.login.Username
		}
	case formCheckout:
		if m.checkout != nil {
			data.Shipping = m.checkout.Request.ShippingAddress
			data.Billing = m.checkout.Request.BillingAddress
		}
	case formFilter:
		if m.list != nil {
			data.Search = m.list.Filter.Search
			data.Category = m.list.Filter.Category
			data.SortBy = m.list.Filter.SortBy
		}
	case formAccount:
		if m.account != nil {
			data.Billing = m.account.Customer.BillingAddress
			data.Shipping = m.account.Customer.ShippingAddress
			data.Card = m.account.Customer.CreditCardInfo
		}
	}

	m.form = newForm(kind, data, m.width)
	return m, m.form.form.Init()
}

func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case keyCtrlC:
		m.quitting = true
		return m, tea.Quit
	case keyEsc:
		m.form = nil
		return m, nil
	}
	return m.updateForm(msg)
}

// updateForm routes any message to the active form and submits it once huh
// reports completion.
func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	model, cmd := m.form.form.Update(msg)
	f, ok := model.(*huh.Form)
	if !ok {
		return m, cmd
	}
	m.form.form = f

	switch f.State {
	case huh.StateAborted:
		m.form = nil
		return m, nil
	case huh.StateCompleted:
		active := m.form
		m.form = nil
		m.loading = true
		return m, m.submit(active)
	}
	return m, cmd
}

// submit runs the action behind a completed form.
func (m Model) submit(f *activeForm) tea.Cmd {
	ctx, svc := m.ctx, m.svc
	d := *f.data

	switch f.kind {
	case formLogin:
		v := views.Login{}
		if m.login != nil {
			v = *m.login
		}
		v.Username, v.Password = d.Username, d.Password
		return func() tea.Msg {
			err := v.Submit(ctx, svc)
			in := err == nil
			msg := actionMsg{route: router.Login, view: &v, err: err}
			if in {
				msg.loggedIn, msg.next, msg.replace, msg.flash = &in, v.Next(), true, "Logged in as "+v.Username+"."
			}
			return msg
		}

	case formRegister:
		v := views.Register{Request: shop.RegisterRequest{Username: d.Username, Password: d.Password, Email: d.Email}}
		return func() tea.Msg {
			err := v.Submit(ctx, svc)
			return actionMsg{route: router.Register, view: &v, err: err, next: "/login", replace: true, flash: "Account created. You can log in now."}
		}

	case formCheckout:
		v := views.Checkout{Request: shop.CheckoutRequest{ShippingAddress: d.Shipping, BillingAddress: d.Billing, CreditCardInfo: d.Card}}
		return func() tea.Msg {
			order, err := v.Submit(ctx, svc)
			if err != nil {
				return actionMsg{route: router.Checkout, view: &v, err: err}
			}
			return actionMsg{route: router.OrderSummary, view: &views.OrderSummary{Order: &order}, next: "/order-summary", replace: true}
		}

	case formReview:
		if m.detail == nil {
			return nil
		}
		v := *m.detail
		v.Page.Reviews = append([]shop.Review(nil), v.Page.Reviews...)
		return func() tea.Msg {
			err := v.AddReview(ctx, svc, d.Rating, strings.TrimSpace(d.Comment))
			return actionMsg{route: router.ProductDetail, view: &v, err: err}
		}

	case formFilter:
		v := &views.ProductList{Filter: shop.Filter{
			Search:   strings.TrimSpace(d.Search),
			Category: strings.TrimSpace(d.Category),
			SortBy:   d.SortBy,
		}}
		_, cmd := m.load(router.ProductList, v)
		return cmd

	case formAccount:
		if m.account == nil {
			return nil
		}
		v := *m.account
		v.Customer.BillingAddress = d.Billing
		v.Customer.ShippingAddress = d.Shipping
		v.Customer.CreditCardInfo = d.Card
		return func() tea.Msg {
			err := v.Save(ctx, svc)
			return actionMsg{route: router.Account, view: &v, err: err}
		}
	}

	return nil
}

// View renders the TUI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	current := m.router.Current()
	m.keys.route = current.Route.Name
	m.keys.loggedIn = m.router.LoggedIn()

	nav := views.Navbar{LoggedIn: m.keys.loggedIn, Active: current.Route.Name}.Render(m.width)

	parts := []string{nav, m.body(current)}

	if m.form != nil {
		parts = append(parts, "", m.form.form.View())
	}
	if m.loading {
		parts = append(parts, "", m.spinner.View()+" Loading...")
	}
	if m.flash != "" {
		parts = append(parts, "", styles.WarnStyle.Render(m.flash))
	}
	if m.form == nil {
		parts = append(parts, "", m.help.View(m.keys))
	}

	return lipgloss.NewStyle().PaddingLeft(1).Render(strings.Join(parts, "\n"))
}

func (m Model) body(current router.Match) string {
	switch current.Route.Name {
	case router.ProductList:
		if m.list != nil {
			return m.list.Render(m.opts, true)
		}
	case router.ProductDetail:
		if m.detail != nil {
			return m.detail.Render(m.opts, m.svc)
		}
	case router.Cart:
		if m.cart != nil {
			return m.cart.Render(m.opts, true)
		}
	case router.Checkout:
		if m.checkout != nil {
			return m.checkout.Render(m.opts)
		}
	case router.Login:
		if m.login != nil {
			return m.login.Render(m.opts)
		}
	case router.Register:
		if m.register != nil {
			return m.register.Render(m.opts)
		}
	case router.OrderSummary:
		if m.summary != nil {
			return m.summary.Render(m.opts)
		}
	case router.OrderHistory:
		if m.history != nil {
			return m.history.Render(m.opts)
		}
	case router.Account:
		if m.account != nil {
			return m.account.Render(m.opts)
		}
	}
	return ""
}
