package views

import (
	"context"
	"strings"

	"github.com/hay-kot/shop/internal/shop"
	"github.com/hay-kot/shop/internal/styles"
)

// Login is the login screen.
type Login struct {
	Username string
	Password string
	// From is where to go after a successful login; empty means home.
	From string
	Err  error
}

// Submit logs in. On success the caller flips the router's logged-in flag and
// navigates to Next.
func (v *Login) Submit(ctx context.Context, svc Service) error {
	_, err := svc.Login(ctx, v.Username, v.Password)
	v.Err = err
	if err == nil {
		v.Password = ""
	}
	return err
}

// Next is the path to show after logging in.
func (v *Login) Next() string {
	if v.From == "" {
		return "/"
	}
	return v.From
}

// Render draws the login screen.
func (v *Login) Render(_ Options) string {
	lines := []string{title("Login")}
	if v.From != "" {
		lines = append(lines, muted("Log in to continue to "+v.From+"."))
	}
	switch {
	case v.Err == nil:
	case shop.Classify(v.Err) == shop.KindUnauthorized:
		lines = append(lines, styles.ErrorStyle.Render("✘ Invalid username or password."))
	default:
		lines = append(lines, errorLine(v.Err))
	}
	return strings.Join(lines, "\n")
}

// Register is the signup screen.
type Register struct {
	Request shop.RegisterRequest
	Err     error
	Done    bool
}

// Submit creates the account. On success the caller navigates to /login.
func (v *Register) Submit(ctx context.Context, svc Service) error {
	_, err := svc.Register(ctx, v.Request)
	v.Err = err
	v.Done = err == nil
	if v.Done {
		v.Request.Password = ""
	}
	return err
}

// Render draws the signup screen.
func (v *Register) Render(_ Options) string {
	lines := []string{title("Register")}
	if v.Done {
		lines = append(lines, styles.PriceStyle.Render("✔ Account created. You can log in now."))
	}
	if v.Err != nil {
		lines = append(lines, errorLine(v.Err))
		for _, fe := range shop.FieldErrors(v.Err) {
			if fe.Field != "" {
				lines = append(lines, muted("  "+fe.Field+": "+fe.Err.Error()))
			}
		}
	}
	return strings.Join(lines, "\n")
}
