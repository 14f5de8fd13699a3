package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/shop/internal/router"
	"github.com/hay-kot/shop/internal/views"
)

type OpenCmd struct {
	flags *Flags
}

// NewOpenCmd creates the open command.
func NewOpenCmd(flags *Flags) *OpenCmd {
	return &OpenCmd{flags: flags}
}

// Register adds the open command to the application.
func (cmd *OpenCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "open",
		Usage:     "Render a storefront page once",
		UsageText: "shop open PATH",
		Description: `Renders the page at PATH the way the interactive storefront shows it and exits.

Paths: /, /products/ID, /cart, /checkout, /login, /register, /order-summary,
/orders, /account. Pages that need a session show the login page when logged out.`,
		Action: cmd.run,
	})

	return app
}

func (cmd *OpenCmd) run(ctx context.Context, c *cli.Command) error {
	path := c.Args().First()
	if path == "" {
		path = "/"
	}

	r := cmd.flags.Router
	if r == nil {
		loggedIn, err := cmd.flags.Service.LoggedIn(ctx)
		if err != nil {
			return fmt.Errorf("read session: %w", err)
		}
		r = router.New(loggedIn)
	}

	match, err := r.Navigate(path)
	if err != nil {
		return err
	}

	opts := cmd.flags.ViewOptions()
	body, err := cmd.render(ctx, match, opts)
	if err != nil {
		return err
	}

	nav := views.Navbar{LoggedIn: r.LoggedIn(), Active: match.Route.Name}
	_, err = fmt.Fprintf(c.Root().Writer, "%s\n\n%s\n", nav.Render(opts.Width), body)
	return err
}

// render loads and draws the view for match. Load errors are part of the
// rendered page, not command failures.
func (cmd *OpenCmd) render(ctx context.Context, match router.Match, opts views.Options) (string, error) {
	svc := cmd.flags.Service

	switch match.Route.Name {
	case router.ProductList:
		v := &views.ProductList{}
		_ = v.Load(ctx, svc)
		return v.Render(opts, false), nil

	case router.ProductDetail:
		id, err := match.IntParam("id")
		if err != nil {
			return "", err
		}
		v := views.NewProductDetail(id)
		_ = v.Load(ctx, svc)
		return v.Render(opts, svc), nil

	case router.Cart:
		v := &views.Cart{}
		_ = v.Load(ctx, svc)
		return v.Render(opts, false), nil

	case router.Checkout:
		v := &views.Checkout{}
		if acct, err := svc.Account(ctx); err == nil {
			v.Prefill(acct)
		}
		return v.Render(opts), nil

	case router.Login:
		v := &views.Login{From: match.From}
		return v.Render(opts), nil

	case router.Register:
		v := &views.Register{}
		return v.Render(opts), nil

	case router.OrderSummary:
		v := &views.OrderSummary{}
		return v.Render(opts), nil

	case router.OrderHistory:
		v := &views.OrderHistory{}
		_ = v.Load(ctx, svc)
		return v.Render(opts), nil

	case router.Account:
		v := &views.Account{}
		_ = v.Load(ctx, svc)
		return v.Render(opts), nil
	}

	return "", fmt.Errorf("no view for %s", match.Route.Name)
}
