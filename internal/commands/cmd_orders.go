package commands

import (
	"context"
	"fmt"
	"slices"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/shop/internal/printer"
	"github.com/hay-kot/shop/internal/shop"
)

type OrdersCmd struct {
	flags  *Flags
	format string
}

// NewOrdersCmd creates the orders command.
func NewOrdersCmd(flags *Flags) *OrdersCmd {
	return &OrdersCmd{flags: flags}
}

// Register adds the orders command to the application.
func (cmd *OrdersCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "orders",
		Usage:       "List your orders",
		UsageText:   "shop orders",
		Description: "Lists placed orders, newest first.",
		Flags:       []cli.Flag{formatFlag(&cmd.format)},
		Action:      cmd.run,
	})

	return app
}

func (cmd *OrdersCmd) run(ctx context.Context, c *cli.Command) error {
	if err := checkFormat(cmd.format); err != nil {
		return err
	}

	orders, err := cmd.flags.Service.Orders(ctx)
	if err != nil {
		return err
	}

	slices.SortFunc(orders, func(a, b shop.Order) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	if cmd.format == formatJSON {
		return writeJSON(c.Root().Writer, orders)
	}

	if len(orders) == 0 {
		printer.Ctx(ctx).Infof("You have not placed any orders yet.")
		return nil
	}

	w := newTable(c.Root().Writer)
	_, _ = fmt.Fprintln(w, "ORDER\tSTATUS\tITEMS\tTOTAL\tPLACED")
	for _, o := range orders {
		items := 0
		for _, it := range o.Items {
			items += it.Quantity
		}
		_, _ = fmt.Fprintf(w, "#%d\t%s\t%d\t%s\t%s\n", o.ID, o.Status, items, o.TotalPrice, o.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	return w.Flush()
}
