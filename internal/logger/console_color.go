package logger

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/harrison/wsfix/internal/whitespace"
)

// colorScheme defines consistent colors for summary metrics.
// Green: success/positive metrics
// Red: failure/error metrics
// Yellow: pending changes
// Cyan: labels
type colorScheme struct {
	success *color.Color
	fail    *color.Color
	warn    *color.Color
	label   *color.Color
	value   *color.Color
}

// newColorScheme creates the standard color scheme for metrics.
func newColorScheme() *colorScheme {
	return &colorScheme{
		success: color.New(color.FgGreen),
		fail:    color.New(color.FgRed),
		warn:    color.New(color.FgYellow),
		label:   color.New(color.FgCyan),
		value:   color.New(color.FgWhite),
	}
}

// formatColorizedMetric formats a single metric with colorized label and value.
// Format: "label: value"
func formatColorizedMetric(label string, value interface{}, scheme *colorScheme) string {
	labelColored := scheme.label.Sprint(label)
	valueColored := scheme.value.Sprintf("%v", value)
	return fmt.Sprintf("%s: %s", labelColored, valueColored)
}

// totalsParts returns label/value pairs for the non-zero counters of s.
func totalsParts(s whitespace.Summary) [][2]string {
	var parts [][2]string
	if s.TrailingWhitespace > 0 {
		parts = append(parts, [2]string{"trailing", fmt.Sprint(s.TrailingWhitespace)})
	}
	if s.LineEndings > 0 {
		parts = append(parts, [2]string{"endings", fmt.Sprint(s.LineEndings)})
	}
	if s.BlankLinesRemoved > 0 {
		parts = append(parts, [2]string{"blank", fmt.Sprint(s.BlankLinesRemoved)})
	}
	return parts
}

// formatTotals formats run totals without color.
// Returns empty string if nothing was fixed.
// Format: "trailing: N, endings: N, blank: N, final newline: N files"
func formatTotals(s whitespace.Summary) string {
	var parts []string
	for _, p := range totalsParts(s) {
		parts = append(parts, fmt.Sprintf("%s: %s", p[0], p[1]))
	}
	if s.FinalNewlineAdded {
		parts = append(parts, "final newline added")
	}
	return strings.Join(parts, ", ")
}

// formatColorizedTotals formats run totals with color coding.
// Colors are automatically disabled when output is not a TTY via fatih/color's built-in detection.
func formatColorizedTotals(s whitespace.Summary) string {
	scheme := newColorScheme()
	var parts []string
	for _, p := range totalsParts(s) {
		parts = append(parts, formatColorizedMetric(p[0], p[1], scheme))
	}
	if s.FinalNewlineAdded {
		parts = append(parts, scheme.label.Sprint("final newline added"))
	}
	return strings.Join(parts, ", ")
}

// renderBar draws an ASCII ratio bar such as "[=======   ] 7/10 (70%)".
// Colored cyan while incomplete and green when n == total.
func renderBar(n, total, width int, enableColor bool) string {
	if width < 1 {
		width = 10
	}

	var perc int
	if total > 0 {
		perc = (n * 100) / total
	}
	if perc > 100 {
		perc = 100
	}
	if perc < 0 {
		perc = 0
	}

	filled := (perc * width) / 100
	bar := "[" + strings.Repeat("=", filled) + strings.Repeat(" ", width-filled) + "]"
	result := fmt.Sprintf("%s %d/%d (%d%%)", bar, n, total, perc)

	if !enableColor {
		return result
	}
	if perc == 100 {
		return color.New(color.FgGreen).Sprint(result)
	}
	return color.New(color.FgCyan).Sprint(result)
}
