package artwork

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/EdlinOrg/prominentcolor"
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/nfnt/resize"

	"karolbroda.com/encore/internal/catalog"
	"karolbroda.com/encore/internal/colors"
	"karolbroda.com/encore/internal/media"
)

const (
	fetchTimeout  = 5 * time.Second
	maxImageBytes = 10 << 20
	gradientSteps = 20
)

var ErrNoArtwork = errors.New("no artwork available")

type Palette struct {
	Primary   string
	Secondary string
	Accent    string
	Dim       string
	Gradient  []string
}

// Load returns the album art, read from mediaRoot when the file is there and
// fetched from the companion server otherwise.
func Load(ctx context.Context, mediaRoot string, serverURL string) (image.Image, error) {
	if mediaRoot != "" {
		img, err := decodeFile(media.ResolvePath(mediaRoot, catalog.AlbumArtPath))
		if err == nil {
			return img, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}
	if serverURL == "" {
		return nil, ErrNoArtwork
	}
	return Fetch(ctx, strings.TrimRight(serverURL, "/")+catalog.AlbumArtPath)
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open artwork file: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode artwork image: %w", err)
	}
	return img, nil
}

func Fetch(ctx context.Context, artworkURL string) (image.Image, error) {
	if artworkURL == "" {
		return nil, ErrNoArtwork
	}
	if path, ok := strings.CutPrefix(artworkURL, "file://"); ok {
		return decodeFile(path)
	}

	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, artworkURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch artwork: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("artwork fetch returned status %d", resp.StatusCode)
	}

	img, _, err := image.Decode(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to decode artwork: %w", err)
	}
	return img, nil
}

type swatch struct {
	color      colorful.Color
	sat        float64
	brightness float64
	score      float64
}

// ExtractPalette picks three accents from the dominant colors of img,
// favoring saturated mid-bright swatches.
func ExtractPalette(img image.Image) *Palette {
	if img == nil {
		return DefaultPalette()
	}

	items, err := prominentcolor.KmeansWithAll(5, img, prominentcolor.ArgumentDefault, prominentcolor.DefaultSize, nil)
	if err != nil || len(items) < 3 {
		return DefaultPalette()
	}

	swatches := make([]swatch, len(items))
	for i, it := range items {
		c := colorful.Color{
			R: float64(it.Color.R) / 255,
			G: float64(it.Color.G) / 255,
			B: float64(it.Color.B) / 255,
		}
		_, s, v := c.Hsv()
		swatches[i] = swatch{color: c, sat: s, brightness: v, score: s * (1 - abs(v-0.6))}
	}

	return paletteFrom(swatches)
}

func paletteFrom(swatches []swatch) *Palette {
	primary := -1
	for i, sw := range swatches {
		if sw.brightness > 0.3 && sw.sat > 0.2 && (primary < 0 || sw.score > swatches[primary].score) {
			primary = i
		}
	}
	if primary < 0 {
		return DefaultPalette()
	}

	pick := func(minSat, minBright float64, skip ...int) int {
		for i, sw := range swatches {
			if slices.Contains(skip, i) || sw.color == swatches[primary].color && i != primary {
				continue
			}
			if sw.sat > minSat && sw.brightness > minBright {
				return i
			}
		}
		return -1
	}

	secondary := pick(0.15, 0.3, primary)
	if secondary < 0 {
		return DefaultPalette()
	}
	accent := pick(0.1, 0.25, primary, secondary)
	if accent < 0 {
		accent = secondary
	}

	chosen := []swatch{swatches[primary], swatches[secondary], swatches[accent]}
	slices.SortStableFunc(chosen, func(a, b swatch) int {
		switch {
		case a.brightness > b.brightness:
			return -1
		case a.brightness < b.brightness:
			return 1
		}
		return 0
	})

	p := boost(chosen[0])
	a := boost(chosen[1])
	s := boost(chosen[2])
	start, end := bestGradientPair(p, s, a)

	return &Palette{
		Primary:   p,
		Secondary: s,
		Accent:    a,
		Dim:       "#6272A4",
		Gradient:  colors.GenerateGradient(start, end, gradientSteps),
	}
}

// bestGradientPair returns the ordered pair with the smoothest gradient,
// preferring a brighter start when two pairs are close.
func bestGradientPair(primary, secondary, accent string) (string, string) {
	type pair struct {
		start, end string
		smoothness float64
	}

	pairs := []pair{
		{start: primary, end: secondary},
		{start: primary, end: accent},
		{start: secondary, end: primary},
		{start: secondary, end: accent},
		{start: accent, end: primary},
		{start: accent, end: secondary},
	}
	for i := range pairs {
		pairs[i].smoothness = colors.CalculateGradientSmoothness(pairs[i].start, pairs[i].end, gradientSteps)
	}

	best := 0
	for i := 1; i < len(pairs); i++ {
		if pairs[i].smoothness < pairs[best].smoothness {
			best = i
		}
	}
	for i := range pairs {
		if i == best {
			continue
		}
		if pairs[i].smoothness-pairs[best].smoothness < 5 &&
			colors.GetLightness(pairs[i].start) > colors.GetLightness(pairs[best].start) {
			best = i
		}
	}

	return pairs[best].start, pairs[best].end
}

func DefaultPalette() *Palette {
	return &Palette{
		Primary:   "#E0457B",
		Secondary: "#6A5ACD",
		Accent:    "#9B72CF",
		Dim:       "#6272A4",
		Gradient:  colors.GenerateGradient("#E0457B", "#6A5ACD", gradientSteps),
	}
}

// boost lifts dark swatches and tames washed-out bright ones so they read on
// both themes.
func boost(sw swatch) string {
	c := sw.color
	if sw.brightness > 0 && sw.brightness < 0.4 {
		factor := min(0.4/sw.brightness, 2.5)
		c = colorful.Color{R: c.R * factor, G: c.G * factor, B: c.B * factor}.Clamped()
	}
	if sw.brightness > 0.85 {
		avg := (c.R + c.G + c.B) / 3
		c = colorful.Color{
			R: avg + (c.R-avg)*0.7,
			G: avg + (c.G-avg)*0.7,
			B: avg + (c.B-avg)*0.7,
		}
	}
	return strings.ToUpper(c.Hex())
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// RenderHalfBlockArt draws img with upper half blocks, two pixel rows per
// terminal row.
func RenderHalfBlockArt(img image.Image, targetWidth int, targetHeight int) []string {
	if img == nil || targetWidth < 4 || targetHeight < 2 {
		return nil
	}

	resized := resize.Resize(uint(targetWidth), uint(targetHeight*2), img, resize.Lanczos3)
	bounds := resized.Bounds()

	lines := make([]string, targetHeight)
	for y := 0; y < targetHeight; y++ {
		var line strings.Builder
		topY := bounds.Min.Y + y*2
		bottomY := topY + 1
		if bottomY >= bounds.Max.Y {
			bottomY = topY
		}

		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			top, topOK := colorful.MakeColor(resized.At(x, topY))
			bottom, bottomOK := colorful.MakeColor(resized.At(x, bottomY))
			if !topOK && !bottomOK {
				line.WriteString(" ")
				continue
			}
			if !topOK {
				top = bottom
			}
			if !bottomOK {
				bottom = top
			}

			style := lipgloss.NewStyle().
				Foreground(lipgloss.Color(top.Hex())).
				Background(lipgloss.Color(bottom.Hex()))
			line.WriteString(style.Render("▀"))
		}
		lines[y] = line.String()
	}

	return lines
}
