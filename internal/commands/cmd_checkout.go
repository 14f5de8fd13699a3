package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/hay-kot/shop/internal/printer"
	"github.com/hay-kot/shop/internal/shop"
	"github.com/hay-kot/shop/internal/styles"
	"github.com/hay-kot/shop/internal/views"
)

type CheckoutCmd struct {
	flags       *Flags
	req         shop.CheckoutRequest
	skipPayment bool
	format      string
}

// NewCheckoutCmd creates the checkout command.
func NewCheckoutCmd(flags *Flags) *CheckoutCmd {
	return &CheckoutCmd{flags: flags}
}

// Register adds the checkout command to the application.
func (cmd *CheckoutCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "checkout",
		Usage:     "Pay for the cart and place an order",
		UsageText: "shop checkout [--shipping ADDR] [--billing ADDR] [--card NUMBER]",
		Description: `Places an order for everything in the cart.

Addresses default to the ones saved on your account. When a terminal is
attached, missing values are prompted for. Leave the card empty to use the
card on file.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "shipping",
				Usage:       "shipping address",
				Destination: &cmd.req.ShippingAddress,
			},
			&cli.StringFlag{
				Name:        "billing",
				Usage:       "billing address",
				Destination: &cmd.req.BillingAddress,
			},
			&cli.StringFlag{
				Name:        "card",
				Usage:       "credit card number",
				Sources:     cli.EnvVars("SHOP_CARD"),
				Destination: &cmd.req.CreditCardInfo,
			},
			&cli.BoolFlag{
				Name:        "skip-payment",
				Usage:       "place the order without authorizing the card",
				Destination: &cmd.skipPayment,
			},
			formatFlag(&cmd.format),
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *CheckoutCmd) run(ctx context.Context, c *cli.Command) error {
	if err := checkFormat(cmd.format); err != nil {
		return err
	}

	svc := cmd.flags.Service
	if _, err := svc.RequireSession(ctx); err != nil {
		return err
	}

	v := &views.Checkout{Request: cmd.req}
	if acct, err := svc.Account(ctx); err == nil {
		v.Prefill(acct)
	} else if shop.Classify(err) == shop.KindRefreshFailed {
		return err
	}

	if v.Request.ShippingAddress == "" || v.Request.BillingAddress == "" {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return errors.New("shipping and billing addresses are required; pass --shipping and --billing")
		}
		if err := promptCheckout(&v.Request); err != nil {
			return err
		}
	}

	var (
		order shop.Order
		err   error
	)
	if cmd.skipPayment {
		order, err = svc.Checkout(ctx, v.Request)
	} else {
		order, err = v.Submit(ctx, svc)
	}
	if err != nil {
		if errors.Is(err, shop.ErrEmptyCart) {
			return fmt.Errorf("nothing to check out: %w", err)
		}
		return err
	}

	if cmd.format == formatJSON {
		return writeJSON(c.Root().Writer, order)
	}

	printer.Ctx(ctx).Successf("Order #%d placed", order.ID)
	summary := &views.OrderSummary{Order: &order}
	_, err = fmt.Fprintln(c.Root().Writer, summary.Render(cmd.flags.ViewOptions()))
	return err
}

func promptCheckout(req *shop.CheckoutRequest) error {
	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().Title("Shipping Address").Value(&req.ShippingAddress).Validate(requiredInput("shipping address")),
		huh.NewInput().Title("Billing Address").Value(&req.BillingAddress).Validate(requiredInput("billing address")),
		huh.NewInput().Title("Credit Card").Description("Leave empty to use the card on file.").
			EchoMode(huh.EchoModePassword).Value(&req.CreditCardInfo),
	)).WithTheme(styles.FormTheme())

	if err := form.Run(); err != nil {
		return fmt.Errorf("checkout form: %w", err)
	}
	return nil
}

func requiredInput(field string) func(string) error {
	return func(s string) error {
		if s == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}
