package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines the colors used by the picker and the comic caption.
type Theme struct {
	Name string

	Background string

	SelectionBg   string
	SelectionText string

	Text   string
	Muted  string
	Faint  string
	Accent string
	Match  string
}

// Styles returns Lipgloss styles for this theme.
func (t Theme) Styles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Accent)).
			Foreground(lipgloss.Color(t.Background)).
			Bold(true).
			Padding(0, 1),

		Text: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Text)),

		MutedText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Muted)),

		FaintText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Faint)),

		Selected: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.SelectionText)).
			Background(lipgloss.Color(t.SelectionBg)).
			Bold(true),

		Match: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Match)).
			Underline(true),

		Heading: lipgloss.NewStyle().Bold(true),
	}
}

// Styles contains pre-built Lipgloss styles for the theme.
type Styles struct {
	Title     lipgloss.Style
	Text      lipgloss.Style
	MutedText lipgloss.Style
	FaintText lipgloss.Style
	Selected  lipgloss.Style
	Match     lipgloss.Style

	// Heading is the comic title printed above the image. It only sets
	// attributes so it reads on any terminal background.
	Heading lipgloss.Style
}

var themes = map[string]Theme{
	"dracula": draculaTheme(),
	"slate":   slateTheme(),
}

var themeOrder = []string{"Dracula", "Slate"}

// DefaultTheme is used when no theme is configured.
const DefaultTheme = "Dracula"

// GetTheme returns a theme by name, case-insensitively. Unknown names fall
// back to Dracula.
func GetTheme(name string) Theme {
	if t, ok := LookupTheme(name); ok {
		return t
	}
	return draculaTheme()
}

// LookupTheme returns the named theme and whether it exists.
func LookupTheme(name string) (Theme, bool) {
	t, ok := themes[strings.ToLower(strings.TrimSpace(name))]
	return t, ok
}

// ThemeNames returns available theme names.
func ThemeNames() []string {
	return themeOrder
}

func draculaTheme() Theme {
	// Official Dracula palette: https://draculatheme.com/spec
	return Theme{
		Name: "Dracula",

		Background: "#191A21", // BGDarker

		SelectionBg:   "#44475A", // Selection
		SelectionText: "#F8F8F2", // Foreground

		Text:   "#F8F8F2", // Foreground
		Muted:  "#6272A4", // Comment
		Faint:  "#44475A", // Selection
		Accent: "#BD93F9", // Purple
		Match:  "#50FA7B", // Green
	}
}

func slateTheme() Theme {
	// Tailwind CSS Slate/Sky palette: https://tailwindcss.com/docs/colors
	return Theme{
		Name: "Slate",

		Background: "#020617", // slate-950

		SelectionBg:   "#0284c7", // sky-600
		SelectionText: "#f8fafc", // slate-50

		Text:   "#f1f5f9", // slate-100
		Muted:  "#94a3b8", // slate-400
		Faint:  "#64748b", // slate-500
		Accent: "#38bdf8", // sky-400
		Match:  "#f59e0b", // amber-500
	}
}
