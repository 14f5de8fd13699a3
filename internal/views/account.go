package views

import (
	"context"
	"strings"

	"github.com/hay-kot/shop/internal/shop"
	"github.com/hay-kot/shop/internal/styles"
)

// Account shows and edits the profile.
type Account struct {
	Customer shop.Customer
	Err      error
	Notice   string
	Loaded   bool
}

// Load fetches the profile.
func (v *Account) Load(ctx context.Context, svc Service) error {
	c, err := svc.Account(ctx)
	v.Loaded = true
	v.Err = err
	if err != nil {
		return err
	}
	v.Customer = c
	return nil
}

// Save writes the edited profile back.
func (v *Account) Save(ctx context.Context, svc Service) error {
	c, err := svc.UpdateAccount(ctx, v.Customer)
	v.Err = err
	if err != nil {
		v.Notice = ""
		return err
	}
	v.Customer = c
	v.Notice = "Account updated successfully."
	return nil
}

// Render draws the profile.
func (v *Account) Render(_ Options) string {
	lines := []string{title("Account Information")}
	if !v.Loaded {
		return join(lines[0], muted("Loading..."))
	}

	if v.Customer.User.Username != "" {
		c := v.Customer
		lines = append(lines,
			styles.SubtitleStyle.Render("User Details"),
			"Username: "+c.User.Username,
			"Email: "+c.User.Email,
			"",
			styles.SubtitleStyle.Render("Billing Address"),
			orPlaceholder(c.BillingAddress),
			"",
			styles.SubtitleStyle.Render("Shipping Address"),
			orPlaceholder(c.ShippingAddress),
			"",
			styles.SubtitleStyle.Render("Credit Card Info"),
			orPlaceholder(MaskCard(c.CreditCardInfo)),
		)
	}

	if n := noticeLine(v.Notice, v.Err); n != "" {
		lines = append(lines, n)
	}
	return strings.Join(lines, "\n")
}

// MaskCard hides all but the last four digits.
func MaskCard(card string) string {
	card = strings.ReplaceAll(card, " ", "")
	if len(card) <= 4 {
		return card
	}
	return strings.Repeat("•", len(card)-4) + card[len(card)-4:]
}
