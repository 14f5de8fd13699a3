package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/shop/internal/printer"
)

type CartCmd struct {
	flags    *Flags
	format   string
	quantity int
	file     string
}

// NewCartCmd creates the cart command.
func NewCartCmd(flags *Flags) *CartCmd {
	return &CartCmd{flags: flags}
}

// Register adds the cart command to the application.
func (cmd *CartCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "cart",
		Usage:       "Manage your cart",
		UsageText:   "shop cart [ls|add|update|rm|clear|import]",
		Description: "With no subcommand, lists the cart.",
		Flags:       []cli.Flag{formatFlag(&cmd.format)},
		Action:      cmd.runList,
		Commands: []*cli.Command{
			{
				Name:      "ls",
				Usage:     "List cart items",
				UsageText: "shop cart ls",
				Flags:     []cli.Flag{formatFlag(&cmd.format)},
				Action:    cmd.runList,
			},
			{
				Name:      "add",
				Usage:     "Add a product to the cart",
				UsageText: "shop cart add PRODUCT_ID [--qty N]",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:        "qty",
						Aliases:     []string{"n"},
						Usage:       "quantity to add",
						Value:       1,
						Destination: &cmd.quantity,
					},
				},
				Action: cmd.runAdd,
			},
			{
				Name:      "update",
				Usage:     "Change the quantity of a cart item",
				UsageText: "shop cart update ITEM_ID QUANTITY",
				Action:    cmd.runUpdate,
			},
			{
				Name:      "rm",
				Usage:     "Remove a cart item",
				UsageText: "shop cart rm ITEM_ID",
				Action:    cmd.runRemove,
			},
			{
				Name:      "clear",
				Usage:     "Empty the cart",
				UsageText: "shop cart clear",
				Action:    cmd.runClear,
			},
			{
				Name:  "import",
				Usage: "Add several products from JSON input",
				UsageText: `shop cart import [options]

Read from stdin:
  echo '{"items":[{"product_id":1,"quantity":2}]}' | shop cart import

Read from file:
  shop cart import -f items.json`,
				Description: `Adds each item in order. Processing stops after 3 failures and the
remaining items are marked as skipped. Output is JSON.`,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "file",
						Aliases:     []string{"f"},
						Usage:       "path to JSON file (reads from stdin if not provided)",
						Destination: &cmd.file,
					},
				},
				Action: cmd.runImport,
			},
		},
	})

	return app
}

func (cmd *CartCmd) runList(ctx context.Context, c *cli.Command) error {
	if err := checkFormat(cmd.format); err != nil {
		return err
	}

	cart, err := cmd.flags.Service.Cart(ctx)
	if err != nil {
		return err
	}

	if cmd.format == formatJSON {
		return writeJSON(c.Root().Writer, cart)
	}

	if cart.Empty() {
		printer.Ctx(ctx).Infof("Cart is empty.")
		return nil
	}

	w := newTable(c.Root().Writer)
	_, _ = fmt.Fprintln(w, "ITEM\tPRODUCT\tQTY\tPRICE\tTOTAL")
	for _, it := range cart.Items {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\n", it.ID, it.Product.Name, it.Quantity, it.Product.Price, it.LineTotal())
	}
	_, _ = fmt.Fprintf(w, "\t\t%d\t\t%s\n", cart.Count(), cart.Subtotal())
	return w.Flush()
}

func (cmd *CartCmd) runAdd(ctx context.Context, c *cli.Command) error {
	id, err := intArg(c, 0, "product id")
	if err != nil {
		return err
	}

	item, err := cmd.flags.Service.AddToCart(ctx, id, cmd.quantity)
	if err != nil {
		return err
	}

	printer.Ctx(ctx).Successf("Added %d x %s to your cart.", cmd.quantity, item.Product.Name)
	return nil
}

func (cmd *CartCmd) runUpdate(ctx context.Context, c *cli.Command) error {
	id, err := intArg(c, 0, "item id")
	if err != nil {
		return err
	}
	qty, err := intArg(c, 1, "quantity")
	if err != nil {
		return err
	}

	item, err := cmd.flags.Service.UpdateCartItem(ctx, id, qty)
	if err != nil {
		return err
	}

	printer.Ctx(ctx).Successf("%s quantity is now %d.", item.Product.Name, item.Quantity)
	return nil
}

func (cmd *CartCmd) runRemove(ctx context.Context, c *cli.Command) error {
	id, err := intArg(c, 0, "item id")
	if err != nil {
		return err
	}

	if err := cmd.flags.Service.RemoveCartItem(ctx, id); err != nil {
		return err
	}

	printer.Ctx(ctx).Successf("Removed item %d.", id)
	return nil
}

func (cmd *CartCmd) runClear(ctx context.Context, _ *cli.Command) error {
	if err := cmd.flags.Service.ClearCart(ctx); err != nil {
		return err
	}

	printer.Ctx(ctx).Successf("Cart cleared.")
	return nil
}
