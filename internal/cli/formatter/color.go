package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/tasksync/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// RunStatusPill returns a colored indicator for a sync run outcome.
func RunStatusPill(status domain.RunStatus) string {
	switch status {
	case domain.RunSucceeded:
		return StyleGreen.Render("● succeeded")
	case domain.RunPartial:
		return StyleYellow.Render("◐ partial")
	case domain.RunFailed:
		return StyleRed.Render("✖ failed")
	case domain.RunDryRun:
		return StyleBlue.Render("○ dry run")
	default:
		return StyleDim.Render(string(status))
	}
}

// IntentBadge labels a planned write.
func IntentBadge(kind domain.IntentKind) string {
	switch kind {
	case domain.IntentCreate:
		return StyleGreen.Render("+ create")
	case domain.IntentUpdate:
		return StyleBlue.Render("~ update")
	default:
		return StyleDim.Render(string(kind))
	}
}

// CategoryBadge renders a task category.
func CategoryBadge(c domain.Category) string {
	switch c {
	case domain.CategoryClientWork:
		return StylePurple.Render(string(c))
	case domain.CategoryWork:
		return StyleBlue.Render(string(c))
	case domain.CategoryPersonal:
		return StyleGreen.Render(string(c))
	default:
		return Dim("--")
	}
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", len(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

func Dim(text string) string {
	return StyleDim.Render(text)
}

func Bold(text string) string {
	return StyleBold.Render(text)
}
