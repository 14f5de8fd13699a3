package doctor

import (
	"context"
	"errors"
	"os"

	"github.com/hay-kot/criterio"

	"github.com/hay-kot/shop/internal/core/config"
)

// ConfigCheck reports where configuration came from and any validation
// errors or warnings it carries.
type ConfigCheck struct {
	cfg  *config.Config
	path string
}

func NewConfigCheck(cfg *config.Config, path string) *ConfigCheck {
	return &ConfigCheck{cfg: cfg, path: path}
}

func (c *ConfigCheck) Name() string { return "Configuration" }

func (c *ConfigCheck) Run(_ context.Context) Result {
	res := Result{Name: c.Name()}
	add := func(label string, status Status, detail string) {
		res.Items = append(res.Items, CheckItem{Label: label, Status: status, Detail: detail})
	}

	if c.cfg == nil {
		add("Config loaded", StatusFail, "configuration not loaded")
		return res
	}

	err := c.cfg.ValidateDeep(c.path)
	if err == nil {
		add("Config valid", StatusPass, c.source())
	}

	var fieldErrs criterio.FieldErrors
	switch {
	case err == nil:
	case errors.As(err, &fieldErrs):
		for _, fe := range fieldErrs {
			label := fe.Field
			if label == "" {
				label = "validation"
			}
			add(label, StatusFail, fe.Err.Error())
		}
	default:
		add("validation", StatusFail, err.Error())
	}

	for _, w := range c.cfg.Warnings() {
		label := w.Category
		if w.Item != "" {
			label += " (" + w.Item + ")"
		}
		add(label, StatusWarn, w.Message)
	}

	return res
}

func (c *ConfigCheck) source() string {
	if c.path == "" {
		return "defaults"
	}
	if _, err := os.Stat(c.path); err != nil {
		return "defaults (" + c.path + " not found)"
	}
	return c.path
}
