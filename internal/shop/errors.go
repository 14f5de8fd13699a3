package shop

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/hay-kot/criterio"

	"github.com/hay-kot/shop/internal/api"
	"github.com/hay-kot/shop/internal/core/session"
)

// ErrEmptyCart is returned by Checkout when the backend reports an empty cart.
var ErrEmptyCart = errors.New("cart is empty")

// Kind classifies an error for presentation.
type Kind int

const (
	KindNone Kind = iota
	KindValidation
	KindUnauthorized
	KindPayment
	KindNotFound
	KindNetwork
	KindRefreshFailed
	KindServer
	KindUnknown
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	case KindPayment:
		return "payment"
	case KindNotFound:
		return "not_found"
	case KindNetwork:
		return "network"
	case KindRefreshFailed:
		return "refresh_failed"
	case KindServer:
		return "server"
	default:
		return "unknown"
	}
}

// Classify maps err onto the storefront's error taxonomy.
func Classify(err error) Kind {
	if err == nil {
		return KindNone
	}

	var fieldErrs criterio.FieldErrors
	if errors.As(err, &fieldErrs) {
		return KindValidation
	}

	if errors.Is(err, session.ErrNoSession) {
		return KindUnauthorized
	}

	// A refresh failure wraps the refresh endpoint's status; check it first.
	if api.IsRefreshFailure(err) {
		return KindRefreshFailed
	}

	if code := api.StatusCode(err); code != 0 {
		switch {
		case code == http.StatusUnauthorized:
			return KindUnauthorized
		case code == http.StatusPaymentRequired:
			return KindPayment
		case code == http.StatusNotFound:
			return KindNotFound
		case code >= 500:
			return KindServer
		case code >= 400:
			return KindValidation
		}
	}

	if isNetwork(err) {
		return KindNetwork
	}

	return KindUnknown
}

func isNetwork(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// UserMessage returns the line shown to a shopper for err.
func UserMessage(err error) string {
	switch Classify(err) {
	case KindNone:
		return ""
	case KindValidation:
		return validationMessage(err)
	case KindUnauthorized:
		return "You must be logged in to continue."
	case KindRefreshFailed:
		return "Your session has expired. Please log in again."
	case KindPayment:
		return "Credit card authorization failed."
	case KindNotFound:
		if d := detail(err); d != "" {
			return d
		}
		return "Not found."
	case KindNetwork:
		return "Could not reach the store. Please try again later."
	case KindServer:
		return "The store is having trouble right now. Please try again later."
	default:
		return "An error occurred. Please try again."
	}
}

// FieldErrors returns validation failures as criterio.FieldErrors, whether
// they were caught locally or reported by the backend.
func FieldErrors(err error) criterio.FieldErrors {
	var fieldErrs criterio.FieldErrors
	if errors.As(err, &fieldErrs) {
		return fieldErrs
	}

	var se *api.StatusError
	if !errors.As(err, &se) {
		return nil
	}

	var out criterio.FieldErrors
	if se.Detail != "" {
		out = append(out, criterio.FieldErrors{{Err: errors.New(se.Detail)}}...)
	}
	for _, line := range se.FieldMessages() {
		field, msg, _ := strings.Cut(line, ": ")
		out = append(out, criterio.FieldErrors{{Field: field, Err: errors.New(msg)}}...)
	}
	return out
}

func validationMessage(err error) string {
	fes := FieldErrors(err)
	if len(fes) == 0 {
		return "An error occurred. Please try again."
	}

	parts := make([]string, 0, len(fes))
	for _, fe := range fes {
		if fe.Field != "" {
			parts = append(parts, fe.Field+": "+fe.Err.Error())
		} else {
			parts = append(parts, fe.Err.Error())
		}
	}
	return strings.Join(parts, "; ")
}

func detail(err error) string {
	var se *api.StatusError
	if errors.As(err, &se) {
		return se.Detail
	}
	return ""
}
