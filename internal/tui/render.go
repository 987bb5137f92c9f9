package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/shettydev/mukti-tui/internal/chat"
)

// wrapText wraps text to fit within maxWidth display columns, preserving
// words. Long words that exceed maxWidth are hard-wrapped to prevent
// overflow.
func wrapText(text string, maxWidth int) []string {
	if maxWidth <= 0 {
		maxWidth = 80
	}

	var lines []string
	paragraphs := strings.Split(text, "\n")

	for _, para := range paragraphs {
		if para == "" {
			lines = append(lines, "")
			continue
		}

		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}

		currentLine := ""
		for _, word := range words {
			wordWidth := lipgloss.Width(word)

			if wordWidth > maxWidth {
				if currentLine != "" {
					lines = append(lines, currentLine)
					currentLine = ""
				}
				for len(word) > 0 {
					chunk := truncateToWidth(word, maxWidth)
					lines = append(lines, chunk)
					chunkRunes := []rune(chunk)
					wordRunes := []rune(word)
					if len(chunkRunes) < len(wordRunes) {
						word = string(wordRunes[len(chunkRunes):])
					} else {
						word = ""
					}
				}
				continue
			}

			if currentLine == "" {
				currentLine = word
			} else {
				lineWidth := lipgloss.Width(currentLine)
				if lineWidth+1+wordWidth <= maxWidth {
					currentLine += " " + word
				} else {
					lines = append(lines, currentLine)
					currentLine = word
				}
			}
		}
		if currentLine != "" {
			lines = append(lines, currentLine)
		}
	}

	return lines
}

// markdownRenderer wraps glamour for assistant messages, recreated when the
// wrap width changes. A nil renderer falls back to plain wrapping.
type markdownRenderer struct {
	renderer *glamour.TermRenderer
	width    int
}

func (r *markdownRenderer) render(content string, width int) []string {
	if r.renderer == nil || r.width != width {
		tr, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return wrapText(content, width)
		}
		r.renderer = tr
		r.width = width
	}

	out, err := r.renderer.Render(content)
	if err != nil {
		return wrapText(content, width)
	}
	// Glamour pads with blank lines top and bottom; the transcript adds
	// its own spacing.
	return strings.Split(strings.Trim(out, "\n"), "\n")
}

// renderMessage renders one transcript entry: a colored role prefix on the
// first line, wrapped content indented under it. Assistant messages go
// through the markdown renderer.
func renderMessage(m chat.Message, maxWidth int, md *markdownRenderer) []string {
	var rolePrefix string
	switch m.Role {
	case chat.RoleUser:
		rolePrefix = "YOU:"
	case chat.RoleAssistant:
		rolePrefix = "GUIDE:"
	default:
		rolePrefix = "???:"
	}

	timePrefix := "--:--"
	if !m.Timestamp.IsZero() {
		timePrefix = m.Timestamp.Local().Format("15:04")
	}

	prefix := fmt.Sprintf("%s %s", timePrefix, rolePrefix)
	prefixWidth := lipgloss.Width(prefix) + 1
	contentWidth := maxWidth - prefixWidth
	if contentWidth < 20 {
		contentWidth = 20
	}

	var wrapped []string
	if m.Role == chat.RoleAssistant && md != nil {
		wrapped = md.render(m.Content, contentWidth)
	} else {
		wrapped = wrapText(m.Content, contentWidth)
	}

	styledPrefix := RoleStyle(string(m.Role)).Render(prefix)
	indent := strings.Repeat(" ", prefixWidth)

	result := make([]string, 0, len(wrapped)+1)
	result = append(result, "")
	for i, line := range wrapped {
		if i == 0 {
			result = append(result, styledPrefix+" "+line)
		} else {
			result = append(result, indent+line)
		}
	}
	return result
}

// renderProcessingEntry renders the synthetic loading entry shown at the
// end of the transcript while the assistant works.
func renderProcessingEntry(p *chat.Processing, spinnerView string, now time.Time) []string {
	if !p.Active() {
		return nil
	}

	status := p.DisplayStatus(now)
	elapsed := int(p.Elapsed(now).Seconds())

	line := fmt.Sprintf("%s %s (%ds)", spinnerView, status, elapsed)
	if pos := p.QueuePosition(); pos > 0 {
		line += fmt.Sprintf("  ·  queue position %d", pos)
	}

	return []string{"", processingStyle.Render(line)}
}
