package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type helpItem struct {
	key  string
	desc string
}

var helpItems = []helpItem{
	{"q / Ctrl+C", "Quit"},
	{"n", "New dialogue"},
	{"Enter", "Open dialogue / Send message"},
	{"Alt+Enter", "Line break in composer"},
	{"Esc", "Back to dialogue list"},
	{"PgUp / PgDn", "Scroll transcript"},
	{"Ctrl+O", "Load older messages"},
	{"End / Ctrl+G", "Jump to bottom"},
	{"Tab", "Cycle technique (new dialogue)"},
	{"?", "Toggle help"},
}

// RenderHelp renders the help overlay centered on screen.
func RenderHelp(width, height int) string {
	var lines []string
	lines = append(lines, titleStyle.Render("⌨ Keyboard Shortcuts"))
	lines = append(lines, "")

	maxKeyLen := 0
	for _, item := range helpItems {
		if len(item.key) > maxKeyLen {
			maxKeyLen = len(item.key)
		}
	}

	for _, item := range helpItems {
		key := helpKeyStyle.Render(padRight(item.key, maxKeyLen))
		desc := helpDescStyle.Render(item.desc)
		lines = append(lines, key+"  "+desc)
	}

	content := strings.Join(lines, "\n")
	box := helpStyle.Render(content)

	boxWidth := lipgloss.Width(box)
	boxHeight := lipgloss.Height(box)

	padLeft := (width - boxWidth) / 2
	padTop := (height - boxHeight) / 2
	if padLeft < 0 {
		padLeft = 0
	}
	if padTop < 0 {
		padTop = 0
	}

	leftPad := strings.Repeat(" ", padLeft)
	topPad := strings.Repeat("\n", padTop)

	boxLines := strings.Split(box, "\n")
	for i, line := range boxLines {
		boxLines[i] = leftPad + line
	}

	return topPad + strings.Join(boxLines, "\n")
}

func padRight(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return s + strings.Repeat(" ", length-len(s))
}
