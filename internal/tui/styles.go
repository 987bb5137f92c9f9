package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Colors - warm lamplight aesthetic for long reading sessions.
// Brand colors: #E8A33D (lamplight gold), #5FB0A5 (agora teal)
var (
	// Brand colors
	colorBrand    = lipgloss.Color("#E8A33D") // Lamplight gold
	colorTeal     = lipgloss.Color("#5FB0A5") // Agora teal
	colorBrandDim = lipgloss.Color("#9C6F2A") // Dimmed gold for subtle accents

	// Role colors: user=teal, assistant=gold
	colorUser      = lipgloss.Color("#5FB0A5")
	colorAssistant = lipgloss.Color("#E8A33D")

	// Semantic colors
	colorWarning = lipgloss.Color("#D98E04")
	colorError   = lipgloss.Color("#E05555")
	colorMuted   = lipgloss.Color("#6E6A5E")

	// Backgrounds
	colorBgPanel = lipgloss.Color("#14120D")
	colorBorder  = lipgloss.Color("#3A3528")
)

var (
	// Header
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorBrand).
			MarginBottom(1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorBrand)

	// Conversation list
	convListStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBrandDim)

	convItemStyle = lipgloss.NewStyle().
			Foreground(colorTeal).
			Padding(0, 1)

	convItemSelectedStyle = lipgloss.NewStyle().
				Foreground(colorBgPanel).
				Background(colorBrand).
				Bold(true).
				Padding(0, 1)

	// Transcript
	transcriptStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBrandDim)

	userStyle = lipgloss.NewStyle().
			Foreground(colorUser).
			Bold(true)

	assistantStyle = lipgloss.NewStyle().
			Foreground(colorAssistant)

	// Composer
	composerStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorTeal).
			Padding(0, 1)

	composerBlockedStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorMuted).
				Padding(0, 1)

	// Affordances: new-messages pill and older-history banner
	pendingStyle = lipgloss.NewStyle().
			Foreground(colorBgPanel).
			Background(colorBrand).
			Bold(true).
			Padding(0, 1)

	archiveHintStyle = lipgloss.NewStyle().
				Foreground(colorMuted).
				Italic(true)

	// Processing entry
	processingStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Italic(true)

	// Errors
	errorStyle = lipgloss.NewStyle().
			Foreground(colorError).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(colorWarning)

	// Help
	helpStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(colorBrand).
			Background(colorBgPanel).
			Padding(1, 2).
			Margin(1)

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(colorTeal).
			Bold(true)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	// Dimmed/Disabled
	dimmedStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	labelStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	valueStyle = lipgloss.NewStyle().
			Foreground(colorBrand).
			Bold(true)
)

// RoleStyle returns the style for a message role prefix.
func RoleStyle(role string) lipgloss.Style {
	switch role {
	case "user":
		return userStyle
	case "assistant":
		return assistantStyle
	default:
		return dimmedStyle
	}
}

// renderSectionTitle renders a section title that spans the full width.
func renderSectionTitle(title string, width int) string {
	return renderSectionTitleWithSuffix(title, "", width)
}

// renderSectionTitleWithSuffix renders a section title with an optional
// suffix, like a scroll position indicator.
func renderSectionTitleWithSuffix(title, suffix string, width int) string {
	titleWithSpaces := " " + title + " "
	titleDisplayWidth := lipgloss.Width(titleWithSpaces)
	suffixDisplayWidth := lipgloss.Width(suffix)
	availableWidth := width - titleDisplayWidth - 4 - suffixDisplayWidth
	if availableWidth < 2 {
		availableWidth = 2
	}
	leftDashes := availableWidth / 2
	rightDashes := availableWidth - leftDashes

	line := "◈─" + strings.Repeat("─", leftDashes) + titleWithSpaces + strings.Repeat("─", rightDashes) + "─◈"
	if suffix != "" {
		line += suffix
	}
	return titleStyle.Width(width).Render(line)
}

// truncateToWidth truncates a string to fit within maxWidth display columns.
// Rune-aware to avoid cutting multi-byte characters.
func truncateToWidth(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	currentWidth := 0
	for i, r := range s {
		charWidth := lipgloss.Width(string(r))
		if currentWidth+charWidth > maxWidth {
			return s[:i]
		}
		currentWidth += charWidth
	}
	return s
}

func truncateWithEllipsis(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= maxWidth {
		return s
	}
	if maxWidth <= 3 {
		return truncateToWidth(s, maxWidth)
	}
	return truncateToWidth(s, maxWidth-3) + "..."
}
