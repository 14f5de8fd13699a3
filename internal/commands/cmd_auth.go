package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/hay-kot/shop/internal/core/session"
	"github.com/hay-kot/shop/internal/printer"
	"github.com/hay-kot/shop/internal/shop"
	"github.com/hay-kot/shop/internal/styles"
	"github.com/hay-kot/shop/internal/views"
)

type AuthCmd struct {
	flags    *Flags
	username string
	password string
	email    string
	format   string
}

// NewAuthCmd creates the login, register, logout and auth commands.
func NewAuthCmd(flags *Flags) *AuthCmd {
	return &AuthCmd{flags: flags}
}

// Register adds the authentication commands to the application.
func (cmd *AuthCmd) Register(app *cli.Command) *cli.Command {
	credentials := func() []cli.Flag {
		return []cli.Flag{
			&cli.StringFlag{
				Name:        "username",
				Aliases:     []string{"u"},
				Usage:       "account username",
				Sources:     cli.EnvVars("SHOP_USERNAME"),
				Destination: &cmd.username,
			},
			&cli.StringFlag{
				Name:        "password",
				Aliases:     []string{"p"},
				Usage:       "account password (prompted for when omitted)",
				Sources:     cli.EnvVars("SHOP_PASSWORD"),
				Destination: &cmd.password,
			},
		}
	}

	app.Commands = append(app.Commands,
		&cli.Command{
			Name:      "login",
			Usage:     "Log in and store the session",
			UsageText: "shop login [--username NAME] [--password PASS]",
			Flags:     credentials(),
			Action:    cmd.runLogin,
		},
		&cli.Command{
			Name:      "register",
			Usage:     "Create an account",
			UsageText: "shop register --username NAME --email ADDR [--password PASS]",
			Flags: append(credentials(), &cli.StringFlag{
				Name:        "email",
				Aliases:     []string{"e"},
				Usage:       "email address",
				Destination: &cmd.email,
			}),
			Action: cmd.runRegister,
		},
		&cli.Command{
			Name:        "logout",
			Usage:       "Revoke and forget the stored session",
			UsageText:   "shop logout",
			Description: "The local session is cleared even when the backend cannot be reached.",
			Action:      cmd.runLogout,
		},
		&cli.Command{
			Name:  "auth",
			Usage: "Inspect stored credentials",
			Commands: []*cli.Command{
				{
					Name:        "status",
					Usage:       "Show who is logged in and when credentials expire",
					UsageText:   "shop auth status",
					Description: "Decodes the stored credentials locally; the backend is not contacted.",
					Flags:       []cli.Flag{formatFlag(&cmd.format)},
					Action:      cmd.runStatus,
				},
			},
		},
	)

	return app
}

func (cmd *AuthCmd) runLogin(ctx context.Context, _ *cli.Command) error {
	if cmd.username == "" || cmd.password == "" {
		if err := cmd.prompt(false); err != nil {
			return err
		}
	}

	v := &views.Login{Username: cmd.username, Password: cmd.password}
	if err := v.Submit(ctx, cmd.flags.Service); err != nil {
		if shop.Classify(err) == shop.KindUnauthorized {
			return fmt.Errorf("invalid username or password: %w", err)
		}
		return err
	}

	if cmd.flags.Router != nil {
		cmd.flags.Router.SetLoggedIn(true)
	}

	printer.Ctx(ctx).Successf("Logged in as %s", cmd.username)
	return nil
}

func (cmd *AuthCmd) runRegister(ctx context.Context, _ *cli.Command) error {
	if cmd.username == "" || cmd.password == "" || cmd.email == "" {
		if err := cmd.prompt(true); err != nil {
			return err
		}
	}

	v := &views.Register{Request: shop.RegisterRequest{
		Username: cmd.username,
		Password: cmd.password,
		Email:    cmd.email,
	}}
	if err := v.Submit(ctx, cmd.flags.Service); err != nil {
		return err
	}

	p := printer.Ctx(ctx)
	p.Successf("Account %s created", cmd.username)
	p.Infof("Run 'shop login' to sign in")
	return nil
}

func (cmd *AuthCmd) runLogout(ctx context.Context, _ *cli.Command) error {
	if err := cmd.flags.Service.Logout(ctx); err != nil {
		return err
	}

	if cmd.flags.Router != nil {
		cmd.flags.Router.SetLoggedIn(false)
	}

	printer.Ctx(ctx).Successf("Logged out")
	return nil
}

type tokenJSON struct {
	Subject   string     `json:"subject,omitempty"`
	UserID    string     `json:"user_id,omitempty"`
	Opaque    bool       `json:"opaque,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Expired   bool       `json:"expired"`
}

func (cmd *AuthCmd) runStatus(ctx context.Context, c *cli.Command) error {
	if err := checkFormat(cmd.format); err != nil {
		return err
	}

	st, err := cmd.flags.Service.Status(ctx)
	if err != nil {
		return fmt.Errorf("read session: %w", err)
	}
	now := time.Now()

	if cmd.format == formatJSON {
		out := struct {
			LoggedIn   bool       `json:"logged_in"`
			CanRefresh bool       `json:"can_refresh"`
			Access     *tokenJSON `json:"access,omitempty"`
			Refresh    *tokenJSON `json:"refresh,omitempty"`
		}{LoggedIn: st.LoggedIn, CanRefresh: st.CanRefresh}
		if st.LoggedIn {
			out.Access = toTokenJSON(st.Access, now)
		}
		if st.CanRefresh {
			out.Refresh = toTokenJSON(st.Refresh, now)
		}
		return writeJSON(c.Root().Writer, out)
	}

	p := printer.Ctx(ctx)
	if !st.LoggedIn {
		p.Infof("Not logged in")
		return nil
	}

	who := st.Access.Subject
	if who == "" {
		who = st.Access.UserID
	}
	if who != "" {
		p.Successf("Logged in (user %s)", who)
	} else {
		p.Successf("Logged in")
	}

	p.Printf("  access:  %s", describeToken(st.Access, now))
	if st.CanRefresh {
		p.Printf("  refresh: %s", describeToken(st.Refresh, now))
	} else {
		p.Warnf("No refresh credential; you will need to log in again when access expires")
	}
	if st.Access.Expired(now) && st.CanRefresh {
		p.Infof("Access has expired and will be refreshed on the next request")
	}
	return nil
}

func toTokenJSON(info session.TokenInfo, now time.Time) *tokenJSON {
	out := &tokenJSON{
		Subject: info.Subject,
		UserID:  info.UserID,
		Opaque:  info.Opaque,
		Expired: info.Expired(now),
	}
	if !info.ExpiresAt.IsZero() {
		exp := info.ExpiresAt
		out.ExpiresAt = &exp
	}
	return out
}

func describeToken(info session.TokenInfo, now time.Time) string {
	switch {
	case info.Opaque:
		return "opaque credential"
	case info.ExpiresAt.IsZero():
		return "no expiry"
	case info.Expired(now):
		return "expired " + now.Sub(info.ExpiresAt).Round(time.Second).String() + " ago"
	default:
		return "expires in " + info.ExpiresAt.Sub(now).Round(time.Second).String()
	}
}

// prompt asks for whatever credentials were not given as flags.
func (cmd *AuthCmd) prompt(withEmail bool) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return errors.New("username and password are required; pass --username and --password")
	}

	fields := []huh.Field{
		huh.NewInput().Title("Username").Value(&cmd.username).Validate(requiredInput("username")),
	}
	if withEmail {
		fields = append(fields, huh.NewInput().Title("Email").Value(&cmd.email).Validate(requiredInput("email")))
	}
	fields = append(fields,
		huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&cmd.password).Validate(requiredInput("password")),
	)

	if err := huh.NewForm(huh.NewGroup(fields...)).WithTheme(styles.FormTheme()).Run(); err != nil {
		return fmt.Errorf("credentials form: %w", err)
	}
	return nil
}
