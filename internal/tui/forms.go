package tui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/hay-kot/shop/internal/styles"
)

type formKind int

const (
	formLogin formKind = iota
	formRegister
	formCheckout
	formReview
	formFilter
	formAccount
)

// formData backs every form field. It lives on the heap so the pointers huh
// holds stay valid while the model is copied through Update.
type formData struct {
	Username string
	Password string
	Email    string

	Shipping string
	Billing  string
	Card     string

	Rating  int
	Comment string

	Search   string
	Category string
	SortBy   string
}

type activeForm struct {
	kind formKind
	form *huh.Form
	data *formData
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errors.New(field + " is required")
		}
		return nil
	}
}

func newForm(kind formKind, data *formData, width int) *activeForm {
	var group *huh.Group

	switch kind {
	case formLogin:
		group = huh.NewGroup(
			huh.NewInput().Title("Username").Value(&data.Username).Validate(required("username")),
			huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&data.Password).Validate(required("password")),
		)
	case formRegister:
		group = huh.NewGroup(
			huh.NewInput().Title("Username").Value(&data.Username).Validate(required("username")),
			huh.NewInput().Title("Email").Value(&data.Email).Validate(required("email")),
			huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&data.Password).Validate(required("password")),
		)
	case formCheckout:
		group = huh.NewGroup(
			huh.NewInput().Title("Shipping Address").Value(&data.Shipping).Validate(required("shipping address")),
			huh.NewInput().Title("Billing Address").Value(&data.Billing).Validate(required("billing address")),
			huh.NewInput().Title("Credit Card").Description("Leave empty to use the card on file.").EchoMode(huh.EchoModePassword).Value(&data.Card),
		)
	case formReview:
		if data.Rating == 0 {
			data.Rating = 5
		}
		group = huh.NewGroup(
			huh.NewSelect[int]().Title("Rating").Options(
				huh.NewOption("★★★★★", 5),
				huh.NewOption("★★★★☆", 4),
				huh.NewOption("★★★☆☆", 3),
				huh.NewOption("★★☆☆☆", 2),
				huh.NewOption("★☆☆☆☆", 1),
			).Value(&data.Rating),
			huh.NewText().Title("Comment").Value(&data.Comment).CharLimit(1000),
		)
	case formFilter:
		group = huh.NewGroup(
			huh.NewInput().Title("Search").Value(&data.Search),
			huh.NewInput().Title("Category").Value(&data.Category),
			huh.NewSelect[string]().Title("Sort").Options(
				huh.NewOption("Default", ""),
				huh.NewOption("Price, low to high", "price"),
				huh.NewOption("Price, high to low", "-price"),
				huh.NewOption("Name", "name"),
			).Value(&data.SortBy),
		)
	case formAccount:
		group = huh.NewGroup(
			huh.NewInput().Title("Billing Address").Value(&data.Billing),
			huh.NewInput().Title("Shipping Address").Value(&data.Shipping),
			huh.NewInput().Title("Credit Card Info").Value(&data.Card),
		)
	}

	f := huh.NewForm(group).WithTheme(styles.FormTheme()).WithShowHelp(true)
	if width > 0 {
		f = f.WithWidth(min(width, 72))
	}

	return &activeForm{kind: kind, form: f, data: data}
}
