package shop

import (
	"errors"
	"net/mail"
	"strings"

	"github.com/hay-kot/criterio"
)

var (
	errRequired     = errors.New("is required")
	errQuantity     = errors.New("must be at least 1")
	errEmail        = errors.New("must be a valid email address")
	errRatingBounds = errors.New("must be between 1 and 5")
)

func required(errs criterio.FieldErrorsBuilder, field, value string) criterio.FieldErrorsBuilder {
	if strings.TrimSpace(value) == "" {
		return errs.Append(field, errRequired)
	}
	return errs
}

func validateCredentials(username, password string) error {
	var errs criterio.FieldErrorsBuilder
	errs = required(errs, "username", username)
	errs = required(errs, "password", password)
	return errs.ToError()
}

func validateRegistration(r RegisterRequest) error {
	var errs criterio.FieldErrorsBuilder
	errs = required(errs, "username", r.Username)
	errs = required(errs, "password", r.Password)
	if strings.TrimSpace(r.Email) == "" {
		errs = errs.Append("email", errRequired)
	} else if _, err := mail.ParseAddress(r.Email); err != nil {
		errs = errs.Append("email", errEmail)
	}
	return errs.ToError()
}

func validateQuantity(qty int) error {
	var errs criterio.FieldErrorsBuilder
	if qty < 1 {
		errs = errs.Append("quantity", errQuantity)
	}
	return errs.ToError()
}

func validateCheckout(r CheckoutRequest) error {
	var errs criterio.FieldErrorsBuilder
	errs = required(errs, "shipping_address", r.ShippingAddress)
	errs = required(errs, "billing_address", r.BillingAddress)
	return errs.ToError()
}

func validateReview(r ReviewRequest) error {
	var errs criterio.FieldErrorsBuilder
	if r.ProductID < 1 {
		errs = errs.Append("product", errRequired)
	}
	if r.Rating < 1 || r.Rating > 5 {
		errs = errs.Append("rating", errRatingBounds)
	}
	return errs.ToError()
}
