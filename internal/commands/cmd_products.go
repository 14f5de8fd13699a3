package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/shop/internal/printer"
	"github.com/hay-kot/shop/internal/shop"
	"github.com/hay-kot/shop/internal/views"
)

type ProductsCmd struct {
	flags  *Flags
	filter shop.Filter
	format string
}

// NewProductsCmd creates the products and categories commands.
func NewProductsCmd(flags *Flags) *ProductsCmd {
	return &ProductsCmd{flags: flags}
}

// Register adds the products and categories commands to the application.
func (cmd *ProductsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands,
		&cli.Command{
			Name:  "products",
			Usage: "Browse the catalog",
			Commands: []*cli.Command{
				{
					Name:      "ls",
					Usage:     "List products",
					UsageText: "shop products ls [--category NAME] [--search TEXT] [--sort price|-price|name]",
					Description: `Lists the catalog. With any filter set the backend's filter endpoint is used;
otherwise the full product list is returned.`,
					Flags: []cli.Flag{
						&cli.StringFlag{
							Name:        "category",
							Usage:       "only products in this category",
							Destination: &cmd.filter.Category,
						},
						&cli.StringFlag{
							Name:        "search",
							Aliases:     []string{"s"},
							Usage:       "match name or description",
							Destination: &cmd.filter.Search,
						},
						&cli.StringFlag{
							Name:        "sort",
							Usage:       "sort order (price, -price, name)",
							Destination: &cmd.filter.SortBy,
						},
						formatFlag(&cmd.format),
					},
					Action: cmd.runList,
				},
				{
					Name:        "show",
					Usage:       "Show a product with its reviews",
					UsageText:   "shop products show ID",
					Description: "Product details require a logged-in session.",
					Flags:       []cli.Flag{formatFlag(&cmd.format)},
					Action:      cmd.runShow,
				},
			},
		},
		&cli.Command{
			Name:      "categories",
			Usage:     "List product categories",
			UsageText: "shop categories",
			Flags:     []cli.Flag{formatFlag(&cmd.format)},
			Action:    cmd.runCategories,
		},
	)

	return app
}

func (cmd *ProductsCmd) runList(ctx context.Context, c *cli.Command) error {
	if err := checkFormat(cmd.format); err != nil {
		return err
	}

	products, err := cmd.flags.Service.FilterProducts(ctx, cmd.filter)
	if err != nil {
		return err
	}

	if cmd.format == formatJSON {
		return writeJSON(c.Root().Writer, products)
	}

	if len(products) == 0 {
		printer.Ctx(ctx).Infof("No products found.")
		return nil
	}

	w := newTable(c.Root().Writer)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tPRICE\tCATEGORY\tSTOCK")
	for _, p := range products {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\n", p.ID, p.Name, p.Price, p.Category, p.InventoryQuantity)
	}
	return w.Flush()
}

func (cmd *ProductsCmd) runShow(ctx context.Context, c *cli.Command) error {
	if err := checkFormat(cmd.format); err != nil {
		return err
	}

	id, err := intArg(c, 0, "product id")
	if err != nil {
		return err
	}

	v := views.NewProductDetail(id)
	if err := v.Load(ctx, cmd.flags.Service); err != nil {
		return err
	}

	if cmd.format == formatJSON {
		return writeJSON(c.Root().Writer, v.Page)
	}

	_, err = fmt.Fprintln(c.Root().Writer, v.Render(cmd.flags.ViewOptions(), cmd.flags.Service))
	return err
}

func (cmd *ProductsCmd) runCategories(ctx context.Context, c *cli.Command) error {
	if err := checkFormat(cmd.format); err != nil {
		return err
	}

	categories, err := cmd.flags.Service.Categories(ctx)
	if err != nil {
		return err
	}

	if cmd.format == formatJSON {
		return writeJSON(c.Root().Writer, categories)
	}

	for _, cat := range categories {
		_, _ = fmt.Fprintln(c.Root().Writer, cat.Name)
	}
	return nil
}
