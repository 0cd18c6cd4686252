package colors

import (
	"strings"
	"testing"
	"time"
)

func TestBarColor(t *testing.T) {
	tests := []struct {
		v        byte
		expected string
	}{
		{0, "#643296"},
		{100, "#C83296"},
		{155, "#FF3296"},
		{255, "#FF3296"},
	}
	for _, tt := range tests {
		if got := BarColor(tt.v); got != tt.expected {
			t.Errorf("BarColor(%d) = %s, expected %s", tt.v, got, tt.expected)
		}
	}
}

func TestFormatTime(t *testing.T) {
	tests := []struct {
		d        time.Duration
		known    bool
		expected string
	}{
		{0, true, "0:00"},
		{65 * time.Second, true, "1:05"},
		{10*time.Minute + 999*time.Millisecond, true, "10:00"},
		{-time.Second, true, "0:00"},
		{3 * time.Minute, false, "0:00"},
	}
	for _, tt := range tests {
		if got := FormatTime(tt.d, tt.known); got != tt.expected {
			t.Errorf("FormatTime(%v, %v) = %s, expected %s", tt.d, tt.known, got, tt.expected)
		}
	}
}

func TestGenerateGradientEndpoints(t *testing.T) {
	g := GenerateGradient("#8BA4E8", "#E8A4C8", 10)
	if len(g) != 10 {
		t.Fatalf("len = %d", len(g))
	}
	if !strings.EqualFold(g[0], "#8BA4E8") || !strings.EqualFold(g[9], "#E8A4C8") {
		t.Errorf("endpoints = %s, %s", g[0], g[9])
	}
	if len(GenerateGradient("#000000", "#FFFFFF", 1)) != 2 {
		t.Error("steps below 2 should be raised to 2")
	}
}

func TestHexRoundTrip(t *testing.T) {
	r, g, b := HexToRGB("#102030")
	if r != 16 || g != 32 || b != 48 {
		t.Errorf("HexToRGB = %d %d %d", r, g, b)
	}
	if got := RGBToHex(300, -5, 48); got != "#FF0030" {
		t.Errorf("RGBToHex clamps, got %s", got)
	}
	if r, g, b := HexToRGB("nonsense"); r != 255 || g != 255 || b != 255 {
		t.Errorf("invalid hex should be white, got %d %d %d", r, g, b)
	}
}

func TestLightnessOrdering(t *testing.T) {
	if GetLightness("#FFFFFF") <= GetLightness("#202020") {
		t.Error("white should be lighter than dark gray")
	}
	if CalculateGradientSmoothness("#FF0000", "#FF0000", 5) != 0 {
		t.Error("identical endpoints should be perfectly smooth")
	}
}

func TestBlendColorsLightnessBetween(t *testing.T) {
	tests := []struct {
		a, b string
		t    float64
	}{
		{"#ECECF1", "#1E1E2E", 0.45},
		{"#1F1F28", "#F2F2F5", 0.45},
		{"#FF0000", "#0000FF", 0.5},
	}
	for _, tt := range tests {
		got := BlendColors(tt.a, tt.b, tt.t)
		l := GetLightness(got)
		lo, hi := GetLightness(tt.a), GetLightness(tt.b)
		if lo > hi {
			lo, hi = hi, lo
		}
		if l < lo-1 || l > hi+1 {
			t.Errorf("BlendColors(%s, %s, %v) = %s with lightness %.1f, expected within [%.1f, %.1f]", tt.a, tt.b, tt.t, got, l, lo, hi)
		}
	}
}

func TestDesaturate(t *testing.T) {
	tests := []struct {
		name   string
		hex    string
		amount float64
	}{
		{"full red", "#FF0000", 1},
		{"full accent", "#7A5AF8", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, g, b := HexToRGB(Desaturate(tt.hex, tt.amount))
			if r != g || g != b {
				t.Errorf("Desaturate(%s, 1) = %d,%d,%d, expected gray", tt.hex, r, g, b)
			}
		})
	}
	if got := Desaturate("#7A5AF8", 0); !strings.EqualFold(got, "#7A5AF8") {
		t.Errorf("Desaturate by 0 = %s, expected unchanged", got)
	}
}
