package lyrics

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

type TimedLine struct {
	At   time.Duration
	Text string
}

// ParseSynced reads LRC-style "[mm:ss.xx] text" lines. Lines without a
// timestamp are skipped, so plain text yields nothing.
func ParseSynced(raw string) []TimedLine {
	if raw == "" {
		return nil
	}

	lines := strings.Split(raw, "\n")
	var result []TimedLine

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		timePart, text := splitLrcLine(trimmed)
		if timePart == "" || text == "" {
			continue
		}

		at, err := parseLrcTime(timePart)
		if err != nil {
			continue
		}

		result = append(result, TimedLine{At: at, Text: text})
	}

	return result
}

// FindCurrentLineIndex returns the last line at or before position, or -1.
func FindCurrentLineIndex(lines []TimedLine, position time.Duration) int {
	index := -1
	for i, line := range lines {
		if line.At > position {
			break
		}
		index = i
	}
	return index
}

// PlainText drops timestamps, leaving one lyric line per row.
func PlainText(raw string) string {
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if timePart, text := splitLrcLine(trimmed); timePart != "" {
			if _, err := parseLrcTime(timePart); err == nil {
				out = append(out, text)
				continue
			}
		}
		out = append(out, trimmed)
	}
	return strings.Join(out, "\n")
}

func splitLrcLine(line string) (string, string) {
	if !strings.HasPrefix(line, "[") {
		return "", ""
	}

	endIndex := strings.Index(line, "]")
	if endIndex <= 1 {
		return "", ""
	}

	timePart := line[1:endIndex]
	textPart := strings.TrimSpace(line[endIndex+1:])
	if textPart == "" {
		return "", ""
	}

	return timePart, textPart
}

func parseLrcTime(raw string) (time.Duration, error) {
	parts := strings.Split(raw, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid time format: %s", raw)
	}

	values := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return 0, fmt.Errorf("failed to parse %q: %w", p, err)
		}
		values[i] = v
	}

	total := 0.0
	for _, v := range values {
		total = total*60 + v
	}
	if total < 0 {
		return 0, errors.New("negative time not allowed")
	}

	return time.Duration(total * float64(time.Second)), nil
}
