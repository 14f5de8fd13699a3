// Package printer writes human-facing command output: status lines, check
// reports and error boxes. Colors come from the shared styles palette and are
// dropped automatically when the writer is not a terminal.
package printer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/hay-kot/criterio"

	"github.com/hay-kot/shop/internal/shop"
	"github.com/hay-kot/shop/internal/styles"
)

const (
	Check = "✔"
	Cross = "✘"
	Dot   = "•"
)

type ctxKey struct{}

type Printer struct {
	w io.Writer

	red     lipgloss.Style
	green   lipgloss.Style
	yellow  lipgloss.Style
	gray    lipgloss.Style
	section lipgloss.Style
}

// New creates a Printer for w. The color profile is detected from w.
func New(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w:       w,
		red:     r.NewStyle().Foreground(styles.ColorRed),
		green:   r.NewStyle().Foreground(styles.ColorGreen),
		yellow:  r.NewStyle().Foreground(styles.ColorYellow),
		gray:    r.NewStyle().Foreground(styles.ColorGray),
		section: r.NewStyle().Bold(true).Underline(true),
	}
}

func NewContext(ctx context.Context, p *Printer) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// Ctx returns the printer attached to ctx, or one writing to stderr.
func Ctx(ctx context.Context) *Printer {
	if p, ok := ctx.Value(ctxKey{}).(*Printer); ok {
		return p
	}
	return New(os.Stderr)
}

func (p *Printer) line(s string) {
	_, _ = io.WriteString(p.w, s+"\n")
}

// FatalError prints err in a box. Storefront failures lead with the
// shopper-facing message; field errors get one line each. It does not exit.
func (p *Printer) FatalError(err error) {
	if err == nil {
		return
	}

	var fieldErrs criterio.FieldErrors
	if errors.As(err, &fieldErrs) {
		p.validationBox(err, fieldErrs)
		return
	}

	var body []string
	switch shop.Classify(err) {
	case shop.KindValidation:
		if fes := shop.FieldErrors(err); len(fes) > 0 {
			p.validationBox(err, fes)
			return
		}
		body = []string{p.gray.Render(err.Error())}
	case shop.KindNone, shop.KindUnknown:
		body = []string{p.gray.Render(err.Error())}
	default:
		body = []string{shop.UserMessage(err), p.gray.Render(err.Error())}
	}

	p.box("Error", body)
}

func (p *Printer) validationBox(err error, fieldErrs criterio.FieldErrors) {
	var body []string

	// Whatever wraps the field errors, e.g. "load config: invalid config".
	full, inner := err.Error(), fieldErrs.Error()
	if idx := strings.Index(full, inner); idx > 0 {
		body = append(body, p.gray.Render(strings.TrimSuffix(full[:idx], ": ")), "")
	}

	for _, fe := range fieldErrs {
		line := p.red.Render(Cross) + " "
		if fe.Field != "" {
			line += p.gray.Render(fe.Field + ": ")
		}
		body = append(body, line+fe.Err.Error())
	}

	p.box("Validation Error", body)
}

func (p *Printer) box(title string, body []string) {
	bar := p.red.Render("│")
	p.line(p.red.Render("╭ " + title))
	for _, l := range body {
		if l == "" {
			p.line(bar)
			continue
		}
		p.line(bar + " " + l)
	}
	p.line(p.red.Render("╵"))
}

func (p *Printer) Errorf(format string, args ...any) {
	p.line(p.red.Render(Cross + " " + fmt.Sprintf(format, args...)))
}

func (p *Printer) Successf(format string, args ...any) {
	p.line(p.green.Render(Check + " " + fmt.Sprintf(format, args...)))
}

func (p *Printer) Infof(format string, args ...any) {
	p.line(p.gray.Render(Dot + " " + fmt.Sprintf(format, args...)))
}

func (p *Printer) Warnf(format string, args ...any) {
	p.line(p.yellow.Render(Dot + " " + fmt.Sprintf(format, args...)))
}

// Printf prints an uncolored line.
func (p *Printer) Printf(format string, args ...any) {
	p.line(fmt.Sprintf(format, args...))
}

func (p *Printer) Section(title string) {
	p.line(p.section.Render(title))
}

// CheckItem, WarnItem and FailItem print indented report lines.
func (p *Printer) CheckItem(label, detail string) { p.item(p.green, Check, label, detail) }
func (p *Printer) WarnItem(label, detail string)  { p.item(p.yellow, Dot, label, detail) }
func (p *Printer) FailItem(label, detail string)  { p.item(p.red, Cross, label, detail) }

func (p *Printer) item(style lipgloss.Style, symbol, label, detail string) {
	line := "  " + style.Render(symbol) + " " + label
	if detail != "" {
		line += ": " + detail
	}
	p.line(line)
}
