package ui

import (
	"github.com/charmbracelet/lipgloss"

	"karolbroda.com/encore/internal/artwork"
	"karolbroda.com/encore/internal/colors"
	"karolbroda.com/encore/internal/prefs"
)

type Theme struct {
	Name      string
	Text      string
	Muted     string
	Surface   string
	Error     string
	Primary   string
	Secondary string
	Accent    string
	Gradient  []string
}

// ThemeFor mixes the base light or dark colors with the album-art accents.
func ThemeFor(name string, palette *artwork.Palette) Theme {
	if palette == nil {
		palette = artwork.DefaultPalette()
	}

	if name == prefs.ThemeDark {
		return Theme{
			Name:      prefs.ThemeDark,
			Text:      "#ECECF1",
			Muted:     colors.BlendColors("#ECECF1", "#1E1E2E", mutedBlend),
			Surface:   "#1E1E2E",
			Error:     "#FF6B6B",
			Primary:   palette.Primary,
			Secondary: palette.Secondary,
			Accent:    palette.Accent,
			Gradient:  palette.Gradient,
		}
	}

	gradient := make([]string, len(palette.Gradient))
	for i, c := range palette.Gradient {
		gradient[i] = onLight(c)
	}
	return Theme{
		Name:      prefs.ThemeLight,
		Text:      "#1F1F28",
		Muted:     colors.BlendColors("#1F1F28", "#F2F2F5", mutedBlend),
		Surface:   "#F2F2F5",
		Error:     "#C0392B",
		Primary:   onLight(palette.Primary),
		Secondary: onLight(palette.Secondary),
		Accent:    onLight(palette.Accent),
		Gradient:  gradient,
	}
}

const mutedBlend = 0.45

// onLight darkens and slightly desaturates an accent so it reads on a light
// background.
func onLight(c string) string {
	return colors.Desaturate(colors.AdjustBrightness(c, 0.75), 0.15)
}

func (t Theme) fg(c string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(c))
}

func (t Theme) TextStyle() lipgloss.Style   { return t.fg(t.Text) }
func (t Theme) MutedStyle() lipgloss.Style  { return t.fg(t.Muted) }
func (t Theme) ErrorStyle() lipgloss.Style  { return t.fg(t.Error) }
func (t Theme) AccentStyle() lipgloss.Style { return t.fg(t.Accent) }

func (t Theme) TitleStyle() lipgloss.Style {
	return t.fg(t.Primary).Bold(true)
}

func (t Theme) SelectedStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(t.Surface)).
		Background(lipgloss.Color(t.Primary)).
		Bold(true)
}

func (t Theme) BoxStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(t.Secondary)).
		Padding(0, 1)
}
