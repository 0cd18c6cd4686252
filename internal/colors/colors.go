package colors

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

var white = colorful.Color{R: 1, G: 1, B: 1}

func parse(hex string) colorful.Color {
	c, err := colorful.Hex(hex)
	if err != nil {
		return white
	}
	return c
}

// GenerateGradient interpolates in HCL so the midpoints keep their chroma.
func GenerateGradient(startHex string, endHex string, steps int) []string {
	if steps < 2 {
		steps = 2
	}

	start := parse(startHex)
	end := parse(endHex)

	// very different endpoints get eased so the extremes hold longer
	needsSmoothing := start.DistanceCIEDE2000(end) > 0.4

	gradient := make([]string, steps)
	for i := 0; i < steps; i++ {
		t := float64(i) / float64(steps-1)
		if needsSmoothing {
			t = smoothStep(smoothStep(t))
		}
		gradient[i] = start.BlendHcl(end, t).Clamped().Hex()
	}
	return gradient
}

// CalculateGradientSmoothness returns the largest perceptual jump between
// neighbouring steps of the gradient, scaled to 0..100. Lower is smoother.
func CalculateGradientSmoothness(startHex string, endHex string, steps int) float64 {
	gradient := GenerateGradient(startHex, endHex, steps)
	maxJump := 0.0
	for i := 1; i < len(gradient); i++ {
		d := parse(gradient[i-1]).DistanceCIEDE2000(parse(gradient[i])) * 100
		maxJump = math.Max(maxJump, d)
	}
	return maxJump
}

// GetLightness returns perceived lightness on a 0-100 scale.
func GetLightness(hexColor string) float64 {
	_, _, l := parse(hexColor).Hcl()
	return l * 100
}

func BlendColors(hex1 string, hex2 string, t float64) string {
	return parse(hex1).BlendHcl(parse(hex2), t).Clamped().Hex()
}

func RGBToHex(r int, g int, b int) string {
	return fmt.Sprintf("#%02X%02X%02X", clampInt(r, 0, 255), clampInt(g, 0, 255), clampInt(b, 0, 255))
}

func HexToRGB(hex string) (int, int, int) {
	r, g, b := parse(hex).RGB255()
	return int(r), int(g), int(b)
}

func clampInt(val int, lo int, hi int) int {
	return max(lo, min(hi, val))
}

func AdjustBrightness(hex string, factor float64) string {
	r, g, b := HexToRGB(hex)
	return RGBToHex(int(float64(r)*factor), int(float64(g)*factor), int(float64(b)*factor))
}

func Desaturate(hex string, amount float64) string {
	h, s, l := parse(hex).Hsl()
	return colorful.Hsl(h, s*(1-amount), l).Clamped().Hex()
}

// BarColor is the visualizer color for a magnitude: rgb(min(v+100, 255), 50, 150).
func BarColor(v byte) string {
	return RGBToHex(min(int(v)+100, 255), 50, 150)
}

func smoothStep(t float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	return t * t * (3 - 2*t)
}

func RenderGradientText(text string, gradient []string, bold bool) string {
	if len(text) == 0 {
		return ""
	}
	if len(gradient) == 0 {
		return text
	}

	runes := []rune(text)
	var result strings.Builder

	for i, r := range runes {
		colorIdx := 0
		if len(runes) > 1 {
			colorIdx = i * (len(gradient) - 1) / (len(runes) - 1)
		}
		if colorIdx >= len(gradient) {
			colorIdx = len(gradient) - 1
		}

		style := lipgloss.NewStyle().Foreground(lipgloss.Color(gradient[colorIdx]))
		if bold {
			style = style.Bold(true)
		}
		result.WriteString(style.Render(string(r)))
	}

	return result.String()
}

// FormatTime renders m:ss. Negative or unknown durations render as 0:00.
func FormatTime(d time.Duration, known bool) string {
	if !known || d < 0 {
		return "0:00"
	}
	seconds := int64(d / time.Second)
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
