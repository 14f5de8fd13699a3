package commands

import (
	"os"
	"path/filepath"

	"golang.org/x/term"

	"github.com/hay-kot/shop/internal/core/config"
	"github.com/hay-kot/shop/internal/core/session"
	"github.com/hay-kot/shop/internal/router"
	"github.com/hay-kot/shop/internal/shop"
	"github.com/hay-kot/shop/internal/views"
)

type Flags struct {
	LogLevel   string
	LogFile    string
	ConfigPath string
	DataDir    string
	// Ephemeral keeps the session in memory for this process only.
	Ephemeral bool

	// Config is loaded in the Before hook and available to all commands
	Config *config.Config

	// Store holds the credentials the API client reads and writes.
	Store session.Store

	// Service is the storefront service every command talks to the backend through
	Service *shop.Service

	// Router carries the logged-in flag for the TUI and 'shop open'.
	Router *router.Router
}

// DefaultConfigPath returns the default config file path using XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "shop", "config.yaml")
}

// DefaultDataDir returns the default data directory using XDG_DATA_HOME.
func DefaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "shop")
}

// ViewOptions returns render options for non-interactive output.
func (f *Flags) ViewOptions() views.Options {
	opts := views.Options{Width: 80}
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		opts.Width = w
	}
	if f.Config != nil {
		opts.MarkdownStyle = f.Config.MarkdownStyle()
	}
	return opts
}
