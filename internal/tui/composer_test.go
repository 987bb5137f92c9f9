package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func typeInto(c Composer, text string) Composer {
	for _, r := range text {
		c, _ = c.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return c
}

func TestComposerCanSendRequiresContent(t *testing.T) {
	c := NewComposer(100)

	if c.CanSend() {
		t.Error("empty composer must not send")
	}

	c = typeInto(c, "   ")
	if c.CanSend() {
		t.Error("whitespace-only input must not send")
	}

	c = typeInto(c, "What is virtue?")
	if !c.CanSend() {
		t.Error("non-empty input should send")
	}
}

func TestComposerTrimsBeforeSend(t *testing.T) {
	c := NewComposer(100)
	c = typeInto(c, "  a question  ")

	if got := c.TrimmedValue(); got != "a question" {
		t.Errorf("expected trimmed value, got %q", got)
	}
}

func TestComposerBlocksWhileSending(t *testing.T) {
	c := NewComposer(100)
	c = typeInto(c, "hello")

	c.SetSending(true)
	if c.CanSend() {
		t.Error("composer must not send while a send is in flight")
	}

	// Draft survives a failed send
	c.SetSending(false)
	if c.Value() != "hello" {
		t.Errorf("draft lost across send attempt: %q", c.Value())
	}
	if !c.CanSend() {
		t.Error("composer should re-enable after the send settles")
	}
}

func TestComposerClearAfterSuccess(t *testing.T) {
	c := NewComposer(100)
	c = typeInto(c, "sent")

	c.SetSending(false)
	c.Clear()
	if c.Value() != "" {
		t.Errorf("expected empty composer after clear, got %q", c.Value())
	}
	if c.CanSend() {
		t.Error("cleared composer must not send")
	}
}

func TestComposerEnforcesCharLimit(t *testing.T) {
	c := NewComposer(10)
	c = typeInto(c, strings.Repeat("x", 20))

	// The textarea caps input at the limit
	if len(c.Value()) > 10 {
		t.Errorf("input exceeded limit: %d chars", len(c.Value()))
	}
	if !c.CanSend() {
		t.Error("at-limit content should still send")
	}
}

func TestComposerLimitCountsRunes(t *testing.T) {
	// The textarea caps input in runes; eligibility and the counter must
	// count the same way or multibyte content at the limit gets stuck.
	c := NewComposer(10)
	c.SetWidth(60)
	c = typeInto(c, strings.Repeat("ψ", 10))

	if got := len([]rune(c.Value())); got != 10 {
		t.Fatalf("setup: expected 10 runes in the composer, got %d", got)
	}
	if !c.CanSend() {
		t.Error("a message of exactly the limit in runes must send")
	}
	if !strings.Contains(c.View(60), "10/10") {
		t.Error("counter should report rune count, not bytes")
	}
}

func TestComposerCounterAppearsNearLimit(t *testing.T) {
	c := NewComposer(20)
	c.SetWidth(60)
	c = typeInto(c, strings.Repeat("y", 19))

	view := c.View(60)
	if !strings.Contains(view, "19/20") {
		t.Error("expected character counter near the limit")
	}
}
