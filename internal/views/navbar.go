package views

import (
	"strings"

	"github.com/hay-kot/shop/internal/router"
	"github.com/hay-kot/shop/internal/styles"
)

// Navbar is the top line of every screen. Its links depend on the router's
// logged-in flag.
type Navbar struct {
	LoggedIn bool
	Active   router.Name
}

type navLink struct {
	label string
	key   string
	route router.Name
}

// Links returns the links shown for the current flag, in display order.
func (n Navbar) Links() []string {
	out := []string{}
	for _, l := range n.links() {
		out = append(out, l.label)
	}
	return out
}

func (n Navbar) links() []navLink {
	links := []navLink{{label: "Home", key: "h", route: router.ProductList}}
	if n.LoggedIn {
		return append(links,
			navLink{label: "Cart", key: "c", route: router.Cart},
			navLink{label: "Orders", key: "o", route: router.OrderHistory},
			navLink{label: "Profile", key: "p", route: router.Account},
			navLink{label: "Logout", key: "L"},
		)
	}
	return append(links,
		navLink{label: "Login", key: "l", route: router.Login},
		navLink{label: "Signup", key: "s", route: router.Register},
	)
}

// Render draws the navbar across width columns.
func (n Navbar) Render(width int) string {
	parts := []string{styles.NavBrandStyle.Render("Mint Storefront")}
	for _, l := range n.links() {
		label := l.label + " [" + l.key + "]"
		if l.route != "" && l.route == n.Active {
			parts = append(parts, styles.NavActiveStyle.Render(label))
		} else {
			parts = append(parts, label)
		}
	}

	style := styles.NavStyle
	if width > 0 {
		style = style.Width(width)
	}
	return style.Render(strings.Join(parts, "  "))
}
