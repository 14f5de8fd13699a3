package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/shop/internal/printer"
	"github.com/hay-kot/shop/internal/views"
)

type AccountCmd struct {
	flags  *Flags
	format string
}

// NewAccountCmd creates the account command.
func NewAccountCmd(flags *Flags) *AccountCmd {
	return &AccountCmd{flags: flags}
}

// Register adds the account command to the application.
func (cmd *AccountCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "account",
		Usage:     "Show or update your profile",
		UsageText: "shop account [show|update]",
		Flags:     []cli.Flag{formatFlag(&cmd.format)},
		Action:    cmd.runShow,
		Commands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show your profile",
				Flags:  []cli.Flag{formatFlag(&cmd.format)},
				Action: cmd.runShow,
			},
			{
				Name:        "update",
				Usage:       "Update saved addresses and card",
				UsageText:   "shop account update [--billing ADDR] [--shipping ADDR] [--card NUMBER]",
				Description: `Only the flags given are changed; everything else keeps its saved value.`,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "billing", Usage: "billing address"},
					&cli.StringFlag{Name: "shipping", Usage: "shipping address"},
					&cli.StringFlag{Name: "card", Usage: "credit card number"},
				},
				Action: cmd.runUpdate,
			},
		},
	})

	return app
}

func (cmd *AccountCmd) runShow(ctx context.Context, c *cli.Command) error {
	if err := checkFormat(cmd.format); err != nil {
		return err
	}

	v := &views.Account{}
	if err := v.Load(ctx, cmd.flags.Service); err != nil {
		return err
	}

	if cmd.format == formatJSON {
		acct := v.Customer
		acct.CreditCardInfo = views.MaskCard(acct.CreditCardInfo)
		return writeJSON(c.Root().Writer, acct)
	}

	_, err := fmt.Fprintln(c.Root().Writer, v.Render(cmd.flags.ViewOptions()))
	return err
}

func (cmd *AccountCmd) runUpdate(ctx context.Context, c *cli.Command) error {
	v := &views.Account{}
	if err := v.Load(ctx, cmd.flags.Service); err != nil {
		return err
	}

	changed := false
	if c.IsSet("billing") {
		v.Customer.BillingAddress = c.String("billing")
		changed = true
	}
	if c.IsSet("shipping") {
		v.Customer.ShippingAddress = c.String("shipping")
		changed = true
	}
	if c.IsSet("card") {
		v.Customer.CreditCardInfo = c.String("card")
		changed = true
	}

	p := printer.Ctx(ctx)
	if !changed {
		p.Infof("Nothing to update. Pass --billing, --shipping or --card.")
		return nil
	}

	if err := v.Save(ctx, cmd.flags.Service); err != nil {
		return err
	}

	p.Successf("%s", v.Notice)
	return nil
}
