package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/hay-kot/criterio"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/hay-kot/shop/internal/core/config"
	"github.com/hay-kot/shop/internal/printer"
)

type ConfigCmd struct {
	flags  *Flags
	format string
}

func NewConfigCmd(flags *Flags) *ConfigCmd {
	return &ConfigCmd{flags: flags}
}

func (cmd *ConfigCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "config",
		Usage: "Inspect and validate configuration",
		Commands: []*cli.Command{
			{
				Name:        "validate",
				Usage:       "Validate the configuration file",
				UsageText:   "shop config validate [--format text|json]",
				Description: "Checks the API URL, trusted host patterns, the session backend and the data directory.",
				Flags:       []cli.Flag{formatFlag(&cmd.format)},
				Action:      cmd.runValidate,
			},
			{
				Name:        "show",
				Usage:       "Print the effective configuration",
				UsageText:   "shop config show",
				Description: "Prints the configuration after the file, environment overrides and defaults are applied. The redis password is masked.",
				Action:      cmd.runShow,
			},
		},
	})
	return app
}

type validationReport struct {
	Valid    bool                       `json:"valid"`
	Path     string                     `json:"path,omitempty"`
	Errors   []fieldMessage             `json:"errors,omitempty"`
	Warnings []config.ValidationWarning `json:"warnings,omitempty"`
}

type fieldMessage struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (cmd *ConfigCmd) runValidate(ctx context.Context, c *cli.Command) error {
	if err := checkFormat(cmd.format); err != nil {
		return err
	}
	cfg := cmd.flags.Config
	if cfg == nil {
		return errors.New("configuration not loaded")
	}

	report := validationReport{Path: cmd.flags.ConfigPath, Warnings: cfg.Warnings()}
	err := cfg.ValidateDeep(cmd.flags.ConfigPath)
	report.Valid = err == nil

	var fieldErrs criterio.FieldErrors
	switch {
	case err == nil:
	case errors.As(err, &fieldErrs):
		for _, fe := range fieldErrs {
			report.Errors = append(report.Errors, fieldMessage{Field: fe.Field, Message: fe.Err.Error()})
		}
	default:
		report.Errors = []fieldMessage{{Message: err.Error()}}
	}

	if cmd.format == formatJSON {
		if err := writeJSON(c.Root().Writer, report); err != nil {
			return err
		}
		if !report.Valid {
			return cli.Exit("", 1)
		}
		return nil
	}

	return printReport(printer.Ctx(ctx), report)
}

func printReport(p *printer.Printer, r validationReport) error {
	if len(r.Errors) > 0 {
		p.Section("Errors")
		for _, fe := range r.Errors {
			p.FailItem(fe.Field, fe.Message)
		}
		p.Printf("")
	}

	if len(r.Warnings) > 0 {
		p.Section("Warnings")
		for _, w := range r.Warnings {
			label := w.Category
			if w.Item != "" {
				label += "." + w.Item
			}
			p.WarnItem(label, w.Message)
		}
		p.Printf("")
	}

	if !r.Valid {
		p.Errorf("%d error(s), %d warning(s)", len(r.Errors), len(r.Warnings))
		return cli.Exit("", 1)
	}

	if len(r.Warnings) > 0 {
		p.Successf("Configuration is valid (%d warning(s))", len(r.Warnings))
	} else {
		p.Successf("Configuration is valid")
	}
	return nil
}

func (cmd *ConfigCmd) runShow(_ context.Context, c *cli.Command) error {
	if cmd.flags.Config == nil {
		return errors.New("configuration not loaded")
	}

	cfg := *cmd.flags.Config
	if cfg.Session.Redis.Password != "" {
		cfg.Session.Redis.Password = "********"
	}

	out, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	_, err = c.Root().Writer.Write(out)
	return err
}
