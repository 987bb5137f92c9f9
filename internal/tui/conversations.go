package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/shettydev/mukti-tui/internal/chat"
)

// RenderConversationList renders the conversation picker.
func RenderConversationList(convs []chat.Conversation, selectedIdx int, width, height int) string {
	var sections []string

	header := renderSectionTitle("MUKTI · SOCRATIC DIALOGUES", width)
	sections = append(sections, header)

	var rows []string
	if len(convs) == 0 {
		rows = append(rows, dimmedStyle.Render("No dialogues yet. Press 'n' to begin one."))
	} else {
		for i, c := range convs {
			title := truncateWithEllipsis(c.Title, width-30)
			meta := fmt.Sprintf("%-14s %s", c.Technique, c.UpdatedAt.Local().Format("Jan 02 15:04"))

			line := fmt.Sprintf("%s  %s", title, dimmedStyle.Render(meta))
			if i == selectedIdx {
				line = convItemSelectedStyle.Render("▸ " + title + "  " + meta)
			} else {
				line = convItemStyle.Render("  " + line)
			}
			rows = append(rows, line)
		}
	}

	listHeight := height - 6
	if listHeight < 3 {
		listHeight = 3
	}
	for len(rows) < listHeight {
		rows = append(rows, "")
	}
	if len(rows) > listHeight {
		rows = rows[:listHeight]
	}

	list := convListStyle.Width(width - 2).Render(strings.Join(rows, "\n"))
	sections = append(sections, list)

	hint := dimmedStyle.Render("[ enter ] OPEN  ·  [ n ] NEW  ·  [ ? ] HELP  ·  [ q ] QUIT")
	sections = append(sections, hint)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
