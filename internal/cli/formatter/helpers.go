package formatter

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// RenderBox wraps content in a rounded-border box with an optional title.
func RenderBox(title string, content string) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		PaddingLeft(2).
		PaddingRight(2).
		PaddingTop(1).
		PaddingBottom(1)

	if title != "" {
		return boxStyle.Render(StyleHeader.Render(strings.ToUpper(title)) + "\n\n" + content)
	}
	return boxStyle.Render(content)
}

// HumanTimestampFrom returns a relative timestamp such as "5m ago", falling
// back to a calendar date after a day.
func HumanTimestampFrom(t, now time.Time) string {
	diff := now.Sub(t)
	switch {
	case diff < 0:
		return t.Format("Jan 2, 2006 15:04")
	case diff < time.Minute:
		return "Just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	default:
		return t.Format("Jan 2, 2006 15:04")
	}
}

// FormatHours renders decimal hours as "1h 30m".
func FormatHours(h float64) string {
	min := int(math.Round(h * 60))
	if min <= 0 {
		return "0m"
	}
	hh, mm := min/60, min%60
	switch {
	case hh > 0 && mm > 0:
		return fmt.Sprintf("%dh %dm", hh, mm)
	case hh > 0:
		return fmt.Sprintf("%dh", hh)
	default:
		return fmt.Sprintf("%dm", mm)
	}
}

// TruncID returns the first 8 characters of an ID, dimmed.
func TruncID(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return StyleDim.Render(id)
}

func orDash(s string) string {
	if s == "" {
		return Dim("--")
	}
	return s
}

func formatDate(t time.Time) string {
	return t.Format("2006-01-02")
}
