package commands

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/shop/internal/router"
	"github.com/hay-kot/shop/internal/tui"
)

type TuiCmd struct {
	flags *Flags
	start string
}

// NewTuiCmd creates a new tui command
func NewTuiCmd(flags *Flags) *TuiCmd {
	return &TuiCmd{
		flags: flags,
	}
}

// Flags returns the TUI-specific flags for registration on the root command
func (cmd *TuiCmd) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "start",
			Usage:       "page to open the storefront on (e.g. /cart)",
			Value:       "/",
			Destination: &cmd.start,
		},
	}
}

// Run executes the TUI. Exported for use as default command.
func (cmd *TuiCmd) Run(ctx context.Context, c *cli.Command) error {
	return cmd.run(ctx, c)
}

func (cmd *TuiCmd) run(ctx context.Context, _ *cli.Command) error {
	r := cmd.flags.Router
	if r == nil {
		loggedIn, _ := cmd.flags.Service.LoggedIn(ctx)
		r = router.New(loggedIn)
	}

	opts := tui.Options{
		View:   cmd.flags.ViewOptions(),
		Start:  cmd.start,
		Logger: log.With().Str("component", "tui").Logger(),
	}

	return tui.Run(ctx, cmd.flags.Service, r, opts)
}
