// Package format renders catalog data for the terminal and as JSON or YAML.
package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// Output formats accepted by Encode
const (
	OutputConsole = "console"
	OutputJSON    = "json"
	OutputYAML    = "yaml"
)

// FormatYear returns the year part of a date, or "Unknown" when absent
func FormatYear(date string) string {
	if date == "" {
		return "Unknown"
	}
	if len(date) < 4 {
		return date
	}
	return date[:4]
}

// FormatRuntime renders minutes as "1h 5m" or "45m", or "N/A" when unknown
func FormatRuntime(minutes int) string {
	if minutes <= 0 {
		return "N/A"
	}
	hours, mins := minutes/60, minutes%60
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, mins)
	}
	return fmt.Sprintf("%dm", mins)
}

// FormatVote renders a vote average with one decimal, or "N/A"
func FormatVote(vote *float64) string {
	if vote == nil {
		return "N/A"
	}
	return strconv.FormatFloat(*vote, 'f', 1, 64)
}

// Truncate shortens s to at most n runes, ending with an ellipsis when cut
func Truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:n-1])) + "…"
}

// Encode writes v to w as JSON or YAML
func Encode(w io.Writer, output string, v any) error {
	switch strings.ToLower(output) {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case OutputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported output format %q (must be 'json' or 'yaml')", output)
	}
}
