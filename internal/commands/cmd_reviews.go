package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/shop/internal/printer"
	"github.com/hay-kot/shop/internal/shop"
)

type ReviewsCmd struct {
	flags   *Flags
	format  string
	rating  int
	comment string
}

// NewReviewsCmd creates the reviews command.
func NewReviewsCmd(flags *Flags) *ReviewsCmd {
	return &ReviewsCmd{flags: flags}
}

// Register adds the reviews command to the application.
func (cmd *ReviewsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "reviews",
		Usage: "Read and write product reviews",
		Commands: []*cli.Command{
			{
				Name:      "ls",
				Usage:     "List reviews of a product",
				UsageText: "shop reviews ls PRODUCT_ID",
				Flags:     []cli.Flag{formatFlag(&cmd.format)},
				Action:    cmd.runList,
			},
			{
				Name:      "add",
				Usage:     "Review a product",
				UsageText: "shop reviews add PRODUCT_ID --rating 5 [--comment TEXT]",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:        "rating",
						Aliases:     []string{"r"},
						Usage:       "rating from 1 to 5",
						Value:       5,
						Destination: &cmd.rating,
					},
					&cli.StringFlag{
						Name:        "comment",
						Aliases:     []string{"m"},
						Usage:       "review text",
						Destination: &cmd.comment,
					},
				},
				Action: cmd.runAdd,
			},
		},
	})

	return app
}

func (cmd *ReviewsCmd) runList(ctx context.Context, c *cli.Command) error {
	if err := checkFormat(cmd.format); err != nil {
		return err
	}

	id, err := intArg(c, 0, "product id")
	if err != nil {
		return err
	}

	reviews, err := cmd.flags.Service.Reviews(ctx, id)
	if err != nil {
		return err
	}

	if cmd.format == formatJSON {
		return writeJSON(c.Root().Writer, reviews)
	}

	if len(reviews) == 0 {
		printer.Ctx(ctx).Infof("No reviews yet.")
		return nil
	}

	w := newTable(c.Root().Writer)
	_, _ = fmt.Fprintln(w, "RATING\tUSER\tCOMMENT")
	for _, r := range reviews {
		_, _ = fmt.Fprintf(w, "%d/5\t%s\t%s\n", r.Rating, r.User, r.Comment)
	}
	return w.Flush()
}

func (cmd *ReviewsCmd) runAdd(ctx context.Context, c *cli.Command) error {
	id, err := intArg(c, 0, "product id")
	if err != nil {
		return err
	}

	r, err := cmd.flags.Service.AddReview(ctx, shop.ReviewRequest{
		ProductID: id,
		Rating:    cmd.rating,
		Comment:   cmd.comment,
	})
	if err != nil {
		return err
	}

	printer.Ctx(ctx).Successf("Review #%d added (%d/5)", r.ID, r.Rating)
	return nil
}
