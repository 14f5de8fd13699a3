package commands

import (
	"context"
	"encoding/json"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/shop/internal/commands/doctor"
	"github.com/hay-kot/shop/internal/printer"
)

type DoctorCmd struct {
	flags   *Flags
	format  string
	fix     bool
	timeout time.Duration
}

func NewDoctorCmd(flags *Flags) *DoctorCmd {
	return &DoctorCmd{flags: flags}
}

func (cmd *DoctorCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "doctor",
		Usage:       "Run health checks on your shop setup",
		UsageText:   "shop doctor [options]",
		Description: "Runs diagnostic checks on configuration, the stored session, and backend reachability.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "format",
				Usage:       "output format (text, json)",
				Value:       "text",
				Destination: &cmd.format,
			},
			&cli.DurationFlag{
				Name:        "timeout",
				Usage:       "time limit for each check",
				Value:       doctor.DefaultTimeout,
				Destination: &cmd.timeout,
			},
			&cli.BoolFlag{
				Name:        "fix",
				Usage:       "clear a session whose refresh credential has expired",
				Destination: &cmd.fix,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *DoctorCmd) run(ctx context.Context, c *cli.Command) error {
	backend := ""
	baseURL := ""
	if cmd.flags.Config != nil {
		backend = cmd.flags.Config.Session.Backend
		baseURL = cmd.flags.Config.API.BaseURL
	}
	if cmd.flags.Service != nil {
		baseURL = cmd.flags.Service.Client().BaseURL().String()
	}

	checks := []doctor.Check{
		doctor.NewConfigCheck(cmd.flags.Config, cmd.flags.ConfigPath),
	}
	if cmd.flags.Store != nil {
		checks = append(checks, doctor.NewSessionCheck(cmd.flags.Store, backend, cmd.fix))
	}
	if cmd.flags.Service != nil {
		checks = append(checks, doctor.NewBackendCheck(cmd.flags.Service, baseURL))
	}

	results := doctor.RunAll(ctx, checks, cmd.timeout)

	if cmd.format == "json" {
		return cmd.outputJSON(c, results)
	}

	return cmd.outputText(ctx, results)
}

func (cmd *DoctorCmd) outputJSON(c *cli.Command, results []doctor.Result) error {
	tally := doctor.Count(results)

	out := struct {
		Healthy bool            `json:"healthy"`
		Summary doctor.Tally    `json:"summary"`
		Checks  []doctor.Result `json:"checks"`
	}{
		Healthy: tally.Healthy(),
		Summary: tally,
		Checks:  results,
	}

	enc := json.NewEncoder(c.Root().Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func (cmd *DoctorCmd) outputText(ctx context.Context, results []doctor.Result) error {
	p := printer.Ctx(ctx)

	for _, result := range results {
		p.Section(result.Name)

		for _, item := range result.Items {
			switch item.Status {
			case doctor.StatusPass:
				p.CheckItem(item.Label, item.Detail)
			case doctor.StatusWarn:
				p.WarnItem(item.Label, item.Detail)
			case doctor.StatusFail:
				p.FailItem(item.Label, item.Detail)
			}
		}

		p.Printf("")
	}

	tally := doctor.Count(results)
	p.Printf("Summary: %d passed, %d warnings, %d failed", tally.Passed, tally.Warned, tally.Failed)

	if tally.Fixable > 0 && !cmd.fix {
		p.Infof("%d issue(s) can be fixed with 'shop doctor --fix'", tally.Fixable)
	}

	if !tally.Healthy() {
		return cli.Exit("", 1)
	}

	return nil
}
