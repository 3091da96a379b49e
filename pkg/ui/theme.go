package ui

import (
	"os"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"
)

// TermProfile holds the detected terminal color profile. Computed once at
// package init so every style helper can branch without re-detecting.
var TermProfile colorprofile.Profile

func init() {
	TermProfile = colorprofile.Detect(os.Stdout, os.Environ())
}

// ThemeBg returns the given hex color for TrueColor terminals and
// lipgloss.NoColor{} otherwise, so 16/256-color terminals keep their own
// background under the dimmed mask.
func ThemeBg(hex string) lipgloss.TerminalColor {
	if TermProfile < colorprofile.TrueColor {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(hex)
}

// ThemeFg returns the given hex color for ANSI256+ terminals and a safe
// ANSI white (color 7) for 16-color or lower terminals.
func ThemeFg(hex string) lipgloss.TerminalColor {
	if TermProfile < colorprofile.ANSI256 {
		return lipgloss.ANSIColor(7)
	}
	return lipgloss.Color(hex)
}

// Theme carries the colors and pre-built styles of the tour overlay and the
// host screens around it.
type Theme struct {
	Renderer *lipgloss.Renderer

	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Subtext   lipgloss.AdaptiveColor
	Border    lipgloss.AdaptiveColor
	Highlight lipgloss.AdaptiveColor
	Muted     lipgloss.AdaptiveColor
	Success   lipgloss.AdaptiveColor

	Base   lipgloss.Style
	Header lipgloss.Style

	// Mask paints dimmed cells; their text is kept but stripped of color.
	Mask lipgloss.Style
	// Ring draws the highlight border around the spotlight cut-out.
	Ring lipgloss.Style

	Tooltip      lipgloss.Style
	TooltipTitle lipgloss.Style
	StepCounter  lipgloss.Style
	KeyHint      lipgloss.Style
	KeyHintKey   lipgloss.Style

	ChecklistDone lipgloss.Style
	ChecklistTodo lipgloss.Style
}

// DefaultTheme returns the standard Dracula-inspired theme (adaptive).
func DefaultTheme(r *lipgloss.Renderer) Theme {
	t := Theme{
		Renderer: r,

		Primary:   lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"},
		Secondary: lipgloss.AdaptiveColor{Light: "#555555", Dark: "#6272A4"},
		Subtext:   lipgloss.AdaptiveColor{Light: "#666666", Dark: "#BFBFBF"},
		Border:    lipgloss.AdaptiveColor{Light: "#AAAAAA", Dark: "#44475A"},
		Highlight: lipgloss.AdaptiveColor{Light: "#E0E0E0", Dark: "#44475A"},
		Muted:     lipgloss.AdaptiveColor{Light: "#555555", Dark: "#6272A4"},
		Success:   lipgloss.AdaptiveColor{Light: "#007700", Dark: "#50FA7B"},
	}

	t.Base = r.NewStyle().Foreground(ColorText)

	t.Header = r.NewStyle().
		Background(t.Primary).
		Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#282A36"}).
		Bold(true).
		Padding(0, 1)

	t.Mask = r.NewStyle().
		Foreground(ColorMaskText).
		Background(ThemeBg("#141520")).
		Faint(true)

	t.Ring = r.NewStyle().Foreground(t.Primary).Bold(true)

	t.Tooltip = r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Primary).
		Background(ColorBg).
		Padding(0, 1)

	t.TooltipTitle = r.NewStyle().Foreground(t.Primary).Bold(true)
	t.StepCounter = r.NewStyle().Foreground(t.Muted)
	t.KeyHint = r.NewStyle().Foreground(t.Subtext)
	t.KeyHintKey = r.NewStyle().Foreground(t.Primary).Bold(true)

	t.ChecklistDone = r.NewStyle().Foreground(t.Success).Strikethrough(true)
	t.ChecklistTodo = r.NewStyle().Foreground(ColorText)

	return t
}

// TestTheme returns a theme suitable for use in tests.
func TestTheme() Theme {
	return DefaultTheme(lipgloss.NewRenderer(os.Stdout))
}
