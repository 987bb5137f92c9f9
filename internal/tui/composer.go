package tui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/shettydev/mukti-tui/internal/constants"
)

// Composer is the message input at the bottom of the chat view. Plain
// enter submits; alt+enter or shift+enter inserts a line break. While a
// send is in flight the composer blocks further submits but keeps
// accepting typed input.
type Composer struct {
	textarea textarea.Model
	maxLen   int
	sending  bool
}

// NewComposer creates the composer.
func NewComposer(maxLen int) Composer {
	ta := textarea.New()
	ta.Placeholder = "Offer a thought..."
	ta.CharLimit = maxLen
	ta.SetHeight(constants.ComposerHeight)
	ta.ShowLineNumbers = false
	// Plain enter is reserved for submit; the app intercepts it before
	// the textarea sees it.
	ta.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("alt+enter", "shift+enter"))
	ta.Focus()

	return Composer{
		textarea: ta,
		maxLen:   maxLen,
	}
}

// Value returns the raw composer content.
func (c Composer) Value() string {
	return c.textarea.Value()
}

// TrimmedValue returns the content with surrounding whitespace removed.
// This is what gets sent; whitespace-only input never sends.
func (c Composer) TrimmedValue() string {
	return strings.TrimSpace(c.textarea.Value())
}

// CanSend reports whether a submit is currently allowed. The limit is
// counted in runes to match the textarea's CharLimit.
func (c Composer) CanSend() bool {
	v := c.TrimmedValue()
	return !c.sending && v != "" && utf8.RuneCountInString(v) <= c.maxLen
}

// Sending reports whether a send is in flight.
func (c Composer) Sending() bool {
	return c.sending
}

// SetSending marks a send in flight or finished. Content is untouched:
// on failure the draft must survive for retry.
func (c *Composer) SetSending(sending bool) {
	c.sending = sending
}

// Clear empties the composer after a successful send and keeps focus so
// the reader can continue typing.
func (c *Composer) Clear() {
	c.textarea.Reset()
	c.textarea.Focus()
}

// Focus returns the command to start the cursor blink.
func (c Composer) Focus() tea.Cmd {
	return textarea.Blink
}

// SetWidth sets the composer width.
func (c *Composer) SetWidth(width int) {
	c.textarea.SetWidth(width - 4)
}

// Update passes input through to the textarea.
func (c Composer) Update(msg tea.Msg) (Composer, tea.Cmd) {
	var cmd tea.Cmd
	c.textarea, cmd = c.textarea.Update(msg)
	return c, cmd
}

// View renders the composer with its character counter.
func (c Composer) View(width int) string {
	style := composerStyle
	if c.sending {
		style = composerBlockedStyle
	}

	content := c.textarea.View()

	// Counter appears once the reader is within 10% of the limit
	used := utf8.RuneCountInString(c.Value())
	if used >= c.maxLen-c.maxLen/10 {
		counter := fmt.Sprintf("%d/%d", used, c.maxLen)
		if used >= c.maxLen {
			counter = warningStyle.Render(counter)
		} else {
			counter = dimmedStyle.Render(counter)
		}
		content += "\n" + counter
	}

	if c.sending {
		content += "\n" + dimmedStyle.Render("sending...")
	}

	return style.Width(width - 2).Render(content)
}
