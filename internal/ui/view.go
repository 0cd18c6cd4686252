package ui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"karolbroda.com/encore/internal/artwork"
	"karolbroda.com/encore/internal/colors"
	"karolbroda.com/encore/internal/lyrics"
	"karolbroda.com/encore/internal/terminal"
	"karolbroda.com/encore/internal/visualizer"
)

const visualizerHeight = 3

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	width := m.width
	height := m.height
	if width == 0 {
		width = 80
	}
	if height == 0 {
		height = 24
	}

	theme := ThemeFor(m.preferences().Theme, m.palette)

	var lines []string
	lines = append(lines, m.renderHeader(theme, width)...)
	lines = append(lines, m.renderVisualizer(width)...)
	lines = append(lines, m.renderTabs(theme, width))
	if m.mode == modeSearch || m.search.Value() != "" {
		lines = append(lines, "  "+m.search.View())
	}

	footer := []string{m.renderToast(theme, width), "  " + m.help.View(m.keys)}
	bodyHeight := height - len(lines) - len(footer)
	if bodyHeight < 3 {
		bodyHeight = 3
	}
	lines = append(lines, m.renderBody(theme, width, bodyHeight)...)
	lines = append(lines, footer...)

	if len(lines) > height {
		lines = lines[:height]
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderHeader(theme Theme, width int) []string {
	var lines []string
	lines = append(lines, "")

	artWidth := 12
	artHeight := 6
	if width < 80 {
		artWidth = 8
		artHeight = 4
	}
	if width < 50 || m.height < 25 || m.image == nil {
		artWidth = 0
		artHeight = 0
	}

	infoLines := m.renderTrackInfo(theme, width-artWidth-6)

	useKitty := m.termCaps != nil && m.termCaps.SupportsKittyGraphics && artWidth > 0
	if useKitty {
		if out := terminal.EncodeImageForKitty(m.image, artWidth, artHeight); out != "" {
			lines = append(lines, "  "+out)
			for i := 0; i < artHeight-1; i++ {
				lines = append(lines, "")
			}
			for _, info := range infoLines {
				lines = append(lines, "  "+info)
			}
			return append(lines, m.renderProgress(theme, width), m.renderStatus(theme))
		}
	}

	var art []string
	if artWidth > 0 {
		art = artwork.RenderHalfBlockArt(m.image, artWidth, artHeight)
	}

	rows := max(len(art), len(infoLines))
	for i := 0; i < rows; i++ {
		var line strings.Builder
		line.WriteString("  ")
		if artWidth > 0 {
			if i < len(art) {
				line.WriteString(art[i])
			} else {
				line.WriteString(strings.Repeat(" ", artWidth))
			}
			line.WriteString("  ")
		}
		if i < len(infoLines) {
			line.WriteString(infoLines[i])
		}
		lines = append(lines, line.String())
	}

	return append(lines, m.renderProgress(theme, width), m.renderStatus(theme))
}

func (m Model) renderTrackInfo(theme Theme, maxWidth int) []string {
	maxWidth = max(maxWidth, 20)

	song, ok := m.currentSong()
	if !ok {
		return []string{
			colors.RenderGradientText("encore", theme.Gradient, true),
			theme.MutedStyle().Italic(true).Render("Selecciona una canción para comenzar"),
		}
	}

	lines := []string{
		theme.TitleStyle().Render(truncate(song.Title, maxWidth)),
		theme.fg(theme.Secondary).Render(truncate(song.Artist, maxWidth)),
	}
	for _, info := range wrap(song.Info, maxWidth, 3) {
		lines = append(lines, theme.MutedStyle().Render(info))
	}
	return lines
}

func (m Model) renderProgress(theme Theme, width int) string {
	barWidth := max(width-20, 20)

	progress := 0.0
	if m.state.DurationKnown && m.state.Duration > 0 {
		progress = float64(m.state.Position) / float64(m.state.Duration)
	}
	progress = max(0, min(1, progress))
	filled := int(float64(barWidth) * progress)

	filledStyle := theme.fg(theme.Primary)
	emptyStyle := theme.MutedStyle().Faint(true)

	var bar strings.Builder
	for i := 0; i < barWidth; i++ {
		switch {
		case i < filled:
			bar.WriteString(filledStyle.Render("━"))
		case i == filled:
			bar.WriteString(filledStyle.Render("●"))
		default:
			bar.WriteString(emptyStyle.Render("─"))
		}
	}

	timeStyle := theme.MutedStyle()
	return fmt.Sprintf("  %s  %s  %s",
		timeStyle.Render(colors.FormatTime(m.state.Position, true)),
		bar.String(),
		timeStyle.Render(colors.FormatTime(m.state.Duration, m.state.DurationKnown)))
}

func (m Model) renderStatus(theme Theme) string {
	on := theme.AccentStyle().Bold(true)
	off := theme.MutedStyle().Faint(true)
	pick := func(active bool, label string) string {
		if active {
			return on.Render(label)
		}
		return off.Render(label)
	}

	playIcon := "▶"
	if m.state.Playing {
		playIcon = "⏸"
	}

	volume := fmt.Sprintf("vol %3d%%", int(m.state.Volume*100+0.5))
	if m.state.Muted {
		volume = "silenciado"
	}

	fav := "♡"
	if m.state.SongID != "" && m.preferencesFavorite(m.state.SongID) {
		fav = "♥"
	}

	return "  " + strings.Join([]string{
		theme.TitleStyle().Render(playIcon),
		pick(m.state.Shuffle, "⤨ aleatorio"),
		pick(m.state.Repeat, "↻ repetir"),
		pick(m.state.Muted, volume),
		theme.ErrorStyle().Render(fav),
	}, "   ")
}

func (m Model) preferencesFavorite(id string) bool {
	return slices.Contains(m.preferences().Favorites, id)
}

func (m Model) renderVisualizer(width int) []string {
	if m.frames == nil {
		return nil
	}
	frame := m.frames.Frame()
	if len(frame) == 0 {
		return nil
	}
	out := visualizer.Render(frame, width-4, visualizerHeight)
	lines := strings.Split(out, "\n")
	for i := range lines {
		lines[i] = "  " + lines[i]
	}
	return lines
}

func (m Model) renderTabs(theme Theme, width int) string {
	var parts []string
	for _, t := range tabs {
		label := " " + t.Label() + " "
		if t == m.tab {
			parts = append(parts, theme.SelectedStyle().Render(label))
		} else {
			parts = append(parts, theme.MutedStyle().Render(label))
		}
	}
	lang := theme.MutedStyle().Render("letras: " + languageLabel(m.lyrics.Lang))
	left := "  " + strings.Join(parts, " ")
	gap := width - lipgloss.Width(left) - lipgloss.Width(lang) - 2
	if gap < 1 {
		return left
	}
	return left + strings.Repeat(" ", gap) + lang
}

func (m Model) renderBody(theme Theme, width int, height int) []string {
	listWidth := width / 2
	if width < 70 {
		listWidth = width - 2
	}

	var left []string
	switch m.mode {
	case modeSettings:
		left = m.renderSettings(theme)
	case modeMenu:
		left = m.renderMenu(theme)
	default:
		left = m.renderPlaylist(theme, listWidth-2, height)
	}

	if width < 70 {
		return fit(left, height)
	}

	right := m.renderLyricsPanel(theme, width-listWidth-4, height)
	joined := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(listWidth).Render(strings.Join(fit(left, height), "\n")),
		"  ",
		strings.Join(fit(right, height), "\n"),
	)
	return strings.Split(joined, "\n")
}

func (m Model) renderPlaylist(theme Theme, width int, height int) []string {
	rows := m.rows()
	if len(rows) == 0 {
		msg := "No hay canciones"
		if m.search.Value() != "" {
			msg = "Sin resultados"
		}
		return []string{"  " + theme.MutedStyle().Italic(true).Render(msg)}
	}

	start := 0
	if m.cursor >= height {
		start = m.cursor - height + 1
	}

	var lines []string
	for i := start; i < len(rows) && len(lines) < height; i++ {
		lines = append(lines, m.renderRow(theme, rows[i], i == m.cursor && m.mode == modeBrowse, width))
	}
	return lines
}

func (m Model) renderRow(theme Theme, row Row, selected bool, width int) string {
	heart := " "
	if row.Favorite {
		heart = "♥"
	}
	marker := " "
	if row.Current {
		marker = "♪"
	}

	artistWidth := min(16, width/3)
	titleWidth := max(width-artistWidth-10, 8)
	text := fmt.Sprintf("%s%2d  %s  %s %s",
		marker,
		row.Number,
		pad(truncate(row.Song.Title, titleWidth), titleWidth),
		pad(truncate(row.Song.Artist, artistWidth), artistWidth),
		heart,
	)

	switch {
	case selected:
		return "  " + theme.SelectedStyle().Render(text)
	case row.Current:
		return "  " + theme.TitleStyle().Render(text)
	}
	return "  " + theme.TextStyle().Render(text)
}

func (m Model) renderLyricsPanel(theme Theme, width int, height int) []string {
	title := theme.TitleStyle().Render("Letras")
	if m.lyrics.Sync {
		title += theme.AccentStyle().Render("  ⟳ sync")
	}
	lines := []string{title, ""}
	height -= len(lines)

	switch {
	case m.lyrics.SongID == "":
		return append(lines, theme.MutedStyle().Italic(true).Render(lyricsEmptyState))
	case m.lyrics.Loading:
		frames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
		return append(lines, theme.fg(theme.Secondary).Render(frames[m.tickCount%len(frames)])+
			theme.MutedStyle().Render(" cargando letras"))
	case m.lyrics.Err != nil || len(m.lyrics.Lines) == 0:
		return append(lines, theme.ErrorStyle().Render(lyricsUnavailable))
	}

	center := -1
	if m.lyrics.Sync {
		center = int(m.animState.ScrollPosition + 0.5)
	}
	start := 0
	if center >= 0 {
		start = max(0, center-height/2)
	}

	for i := start; i < len(m.lyrics.Lines) && len(lines) < height+2; i++ {
		text := truncate(m.lyrics.Lines[i], width)
		switch {
		case m.lyrics.Sync && i == m.lyrics.Current:
			if m.animState.GlowIntensity > 0.3 {
				lines = append(lines, colors.RenderGradientText(text, theme.Gradient, true))
			} else {
				lines = append(lines, theme.TitleStyle().Render(text))
			}
		case m.lyrics.Sync && i < m.lyrics.Current:
			lines = append(lines, theme.MutedStyle().Render(text))
		default:
			lines = append(lines, theme.TextStyle().Render(text))
		}
	}
	return lines
}

func (m Model) renderSettings(theme Theme) []string {
	var body []string
	body = append(body, theme.TitleStyle().Render("Configuración"), "")
	for _, row := range m.settings.rows(m.preferences()) {
		line := fmt.Sprintf("%-24s %s", row.Label, row.Value)
		if row.Selected {
			body = append(body, theme.SelectedStyle().Render(line))
		} else {
			body = append(body, theme.TextStyle().Render(line))
		}
	}
	body = append(body, "", theme.MutedStyle().Render("←/→ cambiar · esc cerrar"))
	return strings.Split(theme.BoxStyle().Render(strings.Join(body, "\n")), "\n")
}

func (m Model) renderMenu(theme Theme) []string {
	var body []string
	body = append(body, theme.TitleStyle().Render(truncate(m.menu.song.Title, 32)), "")
	for a := menuAction(0); a < menuCount; a++ {
		label := a.Label(m.menu.favorite)
		if a == m.menu.cursor {
			body = append(body, theme.SelectedStyle().Render(" "+label+" "))
		} else {
			body = append(body, theme.TextStyle().Render(" "+label+" "))
		}
	}
	return strings.Split(theme.BoxStyle().Render(strings.Join(body, "\n")), "\n")
}

func (m Model) renderToast(theme Theme, width int) string {
	if m.toast == nil {
		return ""
	}
	text := truncate(m.toast.text, max(width-6, 10))
	if m.toast.kind == toastFailure {
		return "  " + theme.ErrorStyle().Bold(true).Render("✖ "+text)
	}
	return "  " + theme.AccentStyle().Render("● "+text)
}

func languageLabel(lang string) string {
	return strings.ToUpper(lang) + " " + lyrics.LanguageName(lang)
}

func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(s, width, "…")
}

func pad(s string, width int) string {
	if w := runewidth.StringWidth(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

// wrap breaks s into at most limit lines of width cells.
func wrap(s string, width int, limit int) []string {
	words := strings.Fields(s)
	var lines []string
	var line string
	for _, w := range words {
		switch {
		case line == "":
			line = w
		case runewidth.StringWidth(line)+1+runewidth.StringWidth(w) <= width:
			line += " " + w
		default:
			lines = append(lines, line)
			line = w
		}
	}
	if line != "" {
		lines = append(lines, line)
	}
	if len(lines) > limit {
		lines = lines[:limit]
		lines[limit-1] = truncate(lines[limit-1]+" …", width)
	}
	return lines
}

func fit(lines []string, height int) []string {
	if len(lines) > height {
		return lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	return lines
}
