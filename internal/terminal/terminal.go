package terminal

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"strings"

	"github.com/nfnt/resize"
	"golang.org/x/term"
)

const (
	cellWidthPx  = 10
	cellHeightPx = 20
	kittyChunk   = 4096
)

type Capabilities struct {
	SupportsKittyGraphics bool
	SupportsRGB           bool
	Interactive           bool
	TermProgram           string
}

// DetectCapabilities inspects the environment of the current process.
func DetectCapabilities() *Capabilities {
	caps := Detect(os.Getenv)
	caps.Interactive = term.IsTerminal(int(os.Stdout.Fd()))
	return caps
}

// Detect reads capabilities from getenv. Kitty graphics stay opt-in through
// ENCORE_USE_KITTY_GRAPHICS.
func Detect(getenv func(string) string) *Capabilities {
	caps := &Capabilities{
		TermProgram: getenv("TERM_PROGRAM"),
	}

	switch strings.ToLower(getenv("COLORTERM")) {
	case "truecolor", "24bit":
		caps.SupportsRGB = true
	}
	if strings.Contains(getenv("TERM"), "direct") || caps.TermProgram == "kitty" || caps.TermProgram == "WezTerm" {
		caps.SupportsRGB = true
	}

	switch strings.ToLower(getenv("ENCORE_USE_KITTY_GRAPHICS")) {
	case "1", "true", "yes", "on":
		caps.SupportsKittyGraphics = true
		caps.SupportsRGB = true
		if caps.TermProgram == "" {
			caps.TermProgram = "kitty"
		}
	}

	return caps
}

// Size reports the terminal size, falling back to 80x24 when stdout is not a
// terminal.
func Size() (int, int) {
	w, h, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 || h <= 0 {
		return 80, 24
	}
	return w, h
}

// Reset restores cursor, colors, the main screen and mouse reporting.
func Reset(w io.Writer) {
	if w == nil {
		w = os.Stdout
	}
	_, _ = io.WriteString(w, "\033[?25h\033[0m\033[?1049l\033[?1000l\033[?1002l\033[?1003l\033[?1006l")
	if f, ok := w.(*os.File); ok {
		_ = f.Sync()
	}
}

// ClearKittyImages deletes every image placed through the kitty protocol.
func ClearKittyImages() string {
	return "\x1b_Ga=d,d=A\x1b\\"
}

// EncodeImageForKitty scales img to fit cols x rows cells and returns the
// chunked transmit-and-display escape sequence.
func EncodeImageForKitty(img image.Image, cols int, rows int) string {
	if img == nil || cols <= 0 || rows <= 0 {
		return ""
	}

	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return ""
	}

	w, h := fitWithin(bounds.Dx(), bounds.Dy(), uint(cols*cellWidthPx), uint(rows*cellHeightPx))
	resized := resize.Resize(w, h, img, resize.Lanczos3)

	var buf bytes.Buffer
	if err := png.Encode(&buf, resized); err != nil {
		return ""
	}

	encoded := base64.StdEncoding.EncodeToString(buf.Bytes())

	var result strings.Builder
	for i := 0; i < len(encoded); i += kittyChunk {
		end := min(i+kittyChunk, len(encoded))
		more := 1
		if end >= len(encoded) {
			more = 0
		}
		if i == 0 {
			fmt.Fprintf(&result, "\x1b_Ga=T,f=100,c=%d,r=%d,m=%d;%s\x1b\\", cols, rows, more, encoded[i:end])
		} else {
			fmt.Fprintf(&result, "\x1b_Gm=%d;%s\x1b\\", more, encoded[i:end])
		}
	}

	return result.String()
}

func fitWithin(width, height int, maxW, maxH uint) (uint, uint) {
	aspect := float64(width) / float64(height)
	w, h := maxW, maxH
	if aspect > float64(maxW)/float64(maxH) {
		h = uint(float64(maxW) / aspect)
	} else {
		w = uint(float64(maxH) * aspect)
	}
	return max(w, 10), max(h, 10)
}
