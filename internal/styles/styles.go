// Package styles provides shared lipgloss styles for CLI and TUI components.
package styles

import (
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// Tokyo Night color palette.
var (
	ColorGreen  = lipgloss.Color("#9ece6a")
	ColorYellow = lipgloss.Color("#e0af68")
	ColorBlue   = lipgloss.Color("#7aa2f7")
	ColorGray   = lipgloss.Color("#565f89")
	ColorWhite  = lipgloss.Color("#c0caf5")
	ColorRed    = lipgloss.Color("#f7768e")
)

// TitleStyle styles view headings.
var TitleStyle = lipgloss.NewStyle().
	Foreground(ColorBlue).
	Bold(true).
	MarginBottom(1)

// SubtitleStyle styles section headings inside a view.
var SubtitleStyle = lipgloss.NewStyle().
	Foreground(ColorWhite).
	Bold(true)

// PriceStyle styles amounts.
var PriceStyle = lipgloss.NewStyle().
	Foreground(ColorGreen)

// MutedStyle styles secondary text.
var MutedStyle = lipgloss.NewStyle().
	Foreground(ColorGray)

// ErrorStyle styles user-facing error lines.
var ErrorStyle = lipgloss.NewStyle().
	Foreground(ColorRed)

// WarnStyle styles notices such as low stock.
var WarnStyle = lipgloss.NewStyle().
	Foreground(ColorYellow)

// SelectedStyle styles the row under the cursor.
var SelectedStyle = lipgloss.NewStyle().
	Foreground(ColorBlue).
	Bold(true)

// NavStyle styles the navbar; NavActiveStyle the link of the current view.
var (
	NavStyle = lipgloss.NewStyle().
			Foreground(ColorGray).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(ColorGray)

	NavActiveStyle = lipgloss.NewStyle().
			Foreground(ColorBlue).
			Bold(true)

	NavBrandStyle = lipgloss.NewStyle().
			Foreground(ColorGreen).
			Bold(true)
)

// BoxStyle frames summaries such as the order summary.
var BoxStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBlue).
	Padding(0, 1)

// DividerStyle styles horizontal dividers.
var DividerStyle = lipgloss.NewStyle().
	Foreground(ColorGray)

// FormTheme returns the huh theme used by every form.
func FormTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Base = t.Focused.Base.BorderForeground(ColorBlue)
	t.Focused.Title = t.Focused.Title.Foreground(ColorBlue).Bold(true)
	t.Focused.Description = t.Focused.Description.Foreground(ColorGray)
	t.Focused.ErrorIndicator = t.Focused.ErrorIndicator.Foreground(ColorRed)
	t.Focused.ErrorMessage = t.Focused.ErrorMessage.Foreground(ColorRed)
	t.Focused.SelectSelector = t.Focused.SelectSelector.Foreground(ColorBlue)
	t.Focused.SelectedOption = t.Focused.SelectedOption.Foreground(ColorGreen)
	t.Focused.FocusedButton = t.Focused.FocusedButton.Foreground(lipgloss.Color("#1a1b26")).Background(ColorBlue)
	t.Focused.BlurredButton = t.Focused.BlurredButton.Foreground(ColorWhite).Background(lipgloss.Color("#292e42"))
	t.Focused.TextInput.Cursor = t.Focused.TextInput.Cursor.Foreground(ColorBlue)
	t.Focused.TextInput.Placeholder = t.Focused.TextInput.Placeholder.Foreground(ColorGray)
	t.Focused.TextInput.Prompt = t.Focused.TextInput.Prompt.Foreground(ColorBlue)

	t.Blurred = t.Focused
	t.Blurred.Base = t.Blurred.Base.BorderStyle(lipgloss.HiddenBorder())

	return t
}
