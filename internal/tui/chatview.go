package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/shettydev/mukti-tui/internal/chat"
	"github.com/shettydev/mukti-tui/internal/constants"
)

// ChatView is the transcript pane for one conversation: the merged message
// list in a scrollable viewport, the auto-scroll tracker, the synthetic
// processing entry, and the affordances for unseen messages and older
// history.
type ChatView struct {
	conversation chat.Conversation
	ledger       *chat.Ledger
	tracker      *chat.Tracker
	processing   chat.Processing

	viewport viewport.Model
	md       markdownRenderer
	spinner  spinner.Model

	hasArchived  bool
	loadingOlder bool
	totalLines   int
	width        int
	height       int

	clock func() time.Time
}

// NewChatView creates an empty chat view.
func NewChatView() ChatView {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(colorBrand)

	return ChatView{
		ledger:  chat.NewLedger(""),
		tracker: chat.NewTracker(constants.ScrollBottomThreshold),
		spinner: sp,
		clock:   time.Now,
	}
}

// SetSize sets the pane dimensions. The viewport keeps two lines for the
// section title and the affordance row.
func (v *ChatView) SetSize(width, height int) {
	v.width = width
	v.height = height
	v.viewport.Width = width - 4
	v.viewport.Height = height - 2
	if v.viewport.Height < 3 {
		v.viewport.Height = 3
	}
	v.refreshContent()
	v.observe()
}

// SetConversation mounts a conversation: fresh ledger and tracker, the
// recent window as initial content, and an instant jump to the bottom.
func (v *ChatView) SetConversation(conv chat.Conversation, recent []chat.Message, hasArchived bool) {
	v.conversation = conv
	v.ledger = chat.NewLedger(conv.ID)
	v.tracker = chat.NewTracker(constants.ScrollBottomThreshold)
	v.processing.Stop()
	v.hasArchived = hasArchived
	v.loadingOlder = false

	v.ledger.SetRecent(recent)
	v.refreshContent()
	v.viewport.GotoBottom()
	v.tracker.JumpedToBottom()
}

// Conversation returns the mounted conversation.
func (v *ChatView) Conversation() chat.Conversation {
	return v.conversation
}

// HasArchived reports whether older history remains unfetched.
func (v *ChatView) HasArchived() bool {
	return v.hasArchived
}

// LoadingOlder reports whether an archive fetch is in flight.
func (v *ChatView) LoadingOlder() bool {
	return v.loadingOlder
}

// SetLoadingOlder marks an archive fetch in flight.
func (v *ChatView) SetLoadingOlder(loading bool) {
	v.loadingOlder = loading
	v.refreshContent()
}

// OldestSequence returns the cursor for the next backward archive fetch.
func (v *ChatView) OldestSequence() (int64, bool) {
	return v.ledger.OldestSequence()
}

// AppendLive adds one stream-delivered message. The content updates
// immediately; the scroll decision is deferred to the batching window.
// Returns whether a flush should be scheduled and for which generation.
func (v *ChatView) AppendLive(m chat.Message) (schedule bool, gen int) {
	v.ledger.AppendLive(m)
	v.refreshContent()
	return v.tracker.NoteArrival()
}

// FlushScroll closes the batching window and applies its decision. A stale
// generation is a no-op.
func (v *ChatView) FlushScroll(gen int) {
	switch v.tracker.Flush(gen) {
	case chat.DecisionScrollSmooth:
		v.viewport.GotoBottom()
		v.tracker.JumpedToBottom()
	case chat.DecisionShowPending:
		// The affordance renders from tracker state; nothing to move.
	}
}

// PrependArchive merges one fetched archive page, preserving the reader's
// visual position by offsetting the viewport by the growth in content.
func (v *ChatView) PrependArchive(page chat.ArchivePage) {
	v.loadingOlder = false
	v.hasArchived = page.HasMore

	before := v.totalLines
	v.ledger.AddArchivePage(page.Messages)
	v.refreshContent()

	if grown := v.totalLines - before; grown > 0 {
		v.viewport.SetYOffset(v.viewport.YOffset + grown)
	}
	v.observe()
}

// JumpToBottom performs a programmatic scroll to the end, clearing the
// pending affordance.
func (v *ChatView) JumpToBottom() {
	v.viewport.GotoBottom()
	v.tracker.JumpedToBottom()
}

// PendingNewMessages reports whether unseen messages sit below the reader.
func (v *ChatView) PendingNewMessages() bool {
	return v.tracker.Pending()
}

// AtBottom reports whether the reader is within the bottom threshold.
func (v *ChatView) AtBottom() bool {
	return v.tracker.AtBottom()
}

// Processing exposes the in-flight response state.
func (v *ChatView) Processing() *chat.Processing {
	return &v.processing
}

// RefreshProcessing re-renders after a processing state change.
func (v *ChatView) RefreshProcessing() {
	v.refreshContent()
}

// Update forwards scroll keys and spinner ticks, then re-observes the
// viewport so the tracker sees every position change.
func (v ChatView) Update(msg tea.Msg) (ChatView, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case spinner.TickMsg:
		v.spinner, cmd = v.spinner.Update(msg)
		if v.processing.Active() {
			v.refreshContent()
		}
		return v, cmd
	default:
		v.viewport, cmd = v.viewport.Update(msg)
		v.observe()
		return v, cmd
	}
}

// SpinnerTick starts the spinner animation.
func (v ChatView) SpinnerTick() tea.Cmd {
	return v.spinner.Tick
}

// observe feeds the current geometry to the tracker. Scrolling into the
// bottom region while messages are pending clears the affordance.
func (v *ChatView) observe() {
	v.tracker.Observe(v.geometry())
}

func (v *ChatView) geometry() chat.Geometry {
	return chat.Geometry{
		Offset:   v.viewport.YOffset,
		Viewport: v.viewport.Height,
		Content:  v.totalLines,
	}
}

// refreshContent rebuilds the viewport content from the merged ledger plus
// the synthetic processing entry.
func (v *ChatView) refreshContent() {
	contentWidth := v.viewport.Width - 2
	if contentWidth < 24 {
		contentWidth = 24
	}

	var lines []string

	switch {
	case v.loadingOlder:
		lines = append(lines, archiveHintStyle.Render("fetching older messages..."))
	case v.hasArchived:
		lines = append(lines, archiveHintStyle.Render("older messages above · ctrl+o to load"))
	default:
		lines = append(lines, archiveHintStyle.Render("· the dialogue begins here ·"))
	}

	for _, m := range v.ledger.Merged() {
		lines = append(lines, renderMessage(m, contentWidth, &v.md)...)
	}

	lines = append(lines, renderProcessingEntry(&v.processing, v.spinner.View(), v.clock())...)

	v.totalLines = len(lines)
	v.viewport.SetContent(strings.Join(lines, "\n"))
}

// View renders the transcript pane: title row, viewport with scrollbar,
// and the affordance row.
func (v ChatView) View() string {
	title := truncateWithEllipsis(strings.ToUpper(v.conversation.Title), v.width/2)
	suffix := ""
	if v.conversation.Technique != "" {
		suffix = "  " + dimmedStyle.Render(v.conversation.Technique)
	}
	header := renderSectionTitleWithSuffix(title, suffix, v.width)

	scrollbarStr := renderScrollbar(v.viewport.Height, v.totalLines, v.viewport.YOffset)
	scrollbarLines := strings.Split(scrollbarStr, "\n")
	vpContentLines := strings.Split(v.viewport.View(), "\n")

	combinedLines := make([]string, v.viewport.Height)
	for i := 0; i < v.viewport.Height; i++ {
		var contentLine string
		if i < len(vpContentLines) {
			contentLine = vpContentLines[i]
		}
		var scrollLine string
		if i < len(scrollbarLines) {
			scrollLine = " " + scrollbarLines[i]
		} else {
			scrollLine = "  "
		}
		combinedLines[i] = contentLine + scrollLine
	}

	body := transcriptStyle.Width(v.width - 2).Render(strings.Join(combinedLines, "\n"))

	affordance := ""
	if v.tracker.Pending() {
		affordance = pendingStyle.Render("▼ new messages · end to view")
	} else if !v.tracker.AtBottom() {
		current := v.viewport.YOffset + v.viewport.Height
		if current > v.totalLines {
			current = v.totalLines
		}
		affordance = dimmedStyle.Render(fmt.Sprintf("line %d/%d", current, v.totalLines))
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, body, affordance)
}
