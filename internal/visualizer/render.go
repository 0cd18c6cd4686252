package visualizer

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"karolbroda.com/encore/internal/colors"
)

// barWidthFactor widens every bar past its share of the canvas, so the
// highest bins fall off the right edge.
const barWidthFactor = 2.5

var eighths = []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Columns maps each terminal column to the bin drawn there, or -1 for empty.
func Columns(bins int, width int) []int {
	cols := make([]int, width)
	for i := range cols {
		cols[i] = -1
	}
	if bins == 0 || width == 0 {
		return cols
	}

	barWidth := float64(width) / float64(bins) * barWidthFactor
	x := 0.0
	for i := 0; i < bins && int(x) < width; i++ {
		start := int(x)
		end := int(math.Ceil(x + barWidth))
		for c := start; c < end && c < width; c++ {
			if cols[c] == -1 {
				cols[c] = i
			}
		}
		x += barWidth
	}
	return cols
}

// BarHeight is the bar height in eighths of a cell for a magnitude.
func BarHeight(v byte, height int) int {
	return int(math.Round(float64(v) / 255 * float64(height*8)))
}

// Render rasterizes a frame into height lines of width cells.
func Render(frame []byte, width int, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}

	cols := Columns(len(frame), width)
	lines := make([]string, height)
	styles := make(map[byte]lipgloss.Style)

	for row := 0; row < height; row++ {
		var line strings.Builder
		// row 0 is the top line
		floor := (height - 1 - row) * 8

		for _, bin := range cols {
			if bin < 0 {
				line.WriteRune(' ')
				continue
			}
			v := frame[bin]
			filled := BarHeight(v, height) - floor
			if filled <= 0 {
				line.WriteRune(' ')
				continue
			}
			style, ok := styles[v]
			if !ok {
				style = lipgloss.NewStyle().Foreground(lipgloss.Color(colors.BarColor(v)))
				styles[v] = style
			}
			line.WriteString(style.Render(string(eighths[min(filled, 8)])))
		}
		lines[row] = line.String()
	}

	return strings.Join(lines, "\n")
}
