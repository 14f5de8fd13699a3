package printer

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"testing"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"

	"github.com/hay-kot/shop/internal/api"
)

func TestFatalError_Plain(t *testing.T) {
	var buf bytes.Buffer
	New(&buf).FatalError(errors.New("boom"))

	out := buf.String()
	assert.Contains(t, out, "╭ Error")
	assert.Contains(t, out, "boom")
}

func TestFatalError_FieldErrors(t *testing.T) {
	var buf bytes.Buffer
	err := fmt.Errorf("load config: %w", criterio.FieldErrors{{Field: "api.base_url", Err: errors.New("is required")}})
	New(&buf).FatalError(err)

	out := buf.String()
	assert.Contains(t, out, "Validation Error")
	assert.Contains(t, out, "api.base_url: ")
	assert.Contains(t, out, "is required")
	assert.Contains(t, out, "load config")
}

func TestFatalError_Payment(t *testing.T) {
	var buf bytes.Buffer
	err := fmt.Errorf("checkout: %w", &api.StatusError{StatusCode: 402, Detail: "declined"})
	New(&buf).FatalError(err)

	assert.Contains(t, buf.String(), "Credit card authorization failed.")
}

func TestFatalError_BackendValidation(t *testing.T) {
	var buf bytes.Buffer
	err := &api.StatusError{StatusCode: 400, Detail: "Cart is empty"}
	New(&buf).FatalError(err)

	out := buf.String()
	assert.Contains(t, out, "Validation Error")
	assert.Contains(t, out, "Cart is empty")
}

func TestFatalError_Nil(t *testing.T) {
	var buf bytes.Buffer
	New(&buf).FatalError(nil)
	assert.Empty(t, buf.String())
}

func TestFatalError_Network(t *testing.T) {
	var buf bytes.Buffer
	err := fmt.Errorf("load products: %w", &url.Error{Op: "Get", URL: "http://localhost:8000/api/products/", Err: errors.New("dial tcp: connection refused")})
	New(&buf).FatalError(err)

	out := buf.String()
	assert.Contains(t, out, "Could not reach the store. Please try again later.")
	assert.Contains(t, out, "connection refused")
}

func TestReportItems_NoColorOffTerminal(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf)
	p.Section("Session")
	p.CheckItem("Store reachable", "memory")
	p.FailItem("Refresh credential", "expired")

	assert.Equal(t, "Session\n  ✔ Store reachable: memory\n  ✘ Refresh credential: expired\n", buf.String())
}
