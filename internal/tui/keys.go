package tui

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/hay-kot/shop/internal/router"
)

// Key constants for event handling.
const (
	keyEnter = "enter"
	keyCtrlC = "ctrl+c"
	keyEsc   = "esc"
)

// keyMap holds every binding. Which ones are shown depends on the active route.
type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Open    key.Binding
	Back    key.Binding
	Home    key.Binding
	Cart    key.Binding
	Orders  key.Binding
	Account key.Binding
	Login   key.Binding
	Signup  key.Binding
	Logout  key.Binding
	Search  key.Binding
	Reload  key.Binding
	More    key.Binding
	Less    key.Binding
	AddCart key.Binding
	Review  key.Binding
	Remove  key.Binding
	Edit    key.Binding
	Quit    key.Binding

	route    router.Name
	loggedIn bool
}

func newKeyMap() keyMap {
	return keyMap{
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Open:    key.NewBinding(key.WithKeys(keyEnter), key.WithHelp("enter", "open")),
		Back:    key.NewBinding(key.WithKeys(keyEsc, "backspace"), key.WithHelp("esc", "back")),
		Home:    key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "home")),
		Cart:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "cart")),
		Orders:  key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "orders")),
		Account: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "profile")),
		Login:   key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "login")),
		Signup:  key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "signup")),
		Logout:  key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "logout")),
		Search:  key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
		Reload:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		More:    key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+/-", "quantity")),
		Less:    key.NewBinding(key.WithKeys("-")),
		AddCart: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add to cart")),
		Review:  key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "write review")),
		Remove:  key.NewBinding(key.WithKeys("d", "x"), key.WithHelp("d", "remove")),
		Edit:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		Quit:    key.NewBinding(key.WithKeys("q", keyCtrlC), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	var out []key.Binding
	switch k.route {
	case router.ProductList:
		out = append(out, k.Up, k.Down, k.Open, k.Search)
	case router.ProductDetail:
		out = append(out, k.More, k.AddCart, k.Review)
	case router.Cart:
		out = append(out, k.Up, k.Down, k.Remove)
		out = append(out, key.NewBinding(key.WithKeys(keyEnter), key.WithHelp("enter", "checkout")))
	case router.Checkout:
		out = append(out, key.NewBinding(key.WithKeys(keyEnter), key.WithHelp("enter", "pay")))
	case router.Account:
		out = append(out, k.Edit)
	}
	out = append(out, k.Back, k.Reload, k.Quit)
	return out
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	nav := []key.Binding{k.Home}
	if k.loggedIn {
		nav = append(nav, k.Cart, k.Orders, k.Account, k.Logout)
	} else {
		nav = append(nav, k.Login, k.Signup)
	}
	return [][]key.Binding{k.ShortHelp(), nav}
}
