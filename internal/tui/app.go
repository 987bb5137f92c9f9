// Package tui provides the terminal user interface for Mukti.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/shettydev/mukti-tui/internal/api"
	"github.com/shettydev/mukti-tui/internal/chat"
	"github.com/shettydev/mukti-tui/internal/constants"
	"github.com/shettydev/mukti-tui/internal/session"
	"github.com/shettydev/mukti-tui/internal/stream"
)

// View represents the current view mode.
type View int

const (
	ViewList View = iota
	ViewNew
	ViewChat
)

// Model is the main TUI model.
type Model struct {
	service session.Service
	events  <-chan stream.Event
	offline bool

	view     View
	width    int
	height   int
	showHelp bool

	conversations []chat.Conversation
	selectedIdx   int

	chat     ChatView
	composer Composer
	conn     ConnIndicator

	titleInput   textinput.Model
	techniques   []string
	techniqueIdx int

	notice string
	err    error
}

// EventMsg wraps a live stream event.
type EventMsg struct {
	Event stream.Event
}

// scrollFlushMsg closes one arrival-batching window.
type scrollFlushMsg struct {
	gen int
}

// processingTickMsg drives the elapsed counter on the loading entry.
type processingTickMsg time.Time

type conversationsLoadedMsg struct {
	convs []chat.Conversation
	err   error
}

type conversationCreatedMsg struct {
	conv chat.Conversation
	err  error
}

type recentLoadedMsg struct {
	conv        chat.Conversation
	messages    []chat.Message
	hasArchived bool
	err         error
}

type archiveLoadedMsg struct {
	conversationID string
	page           chat.ArchivePage
	err            error
}

type sendResultMsg struct {
	ack chat.Ack
	err error
}

type techniquesLoadedMsg struct {
	techniques []string
}

// New creates the TUI model.
func New(svc session.Service, maxMessageLength int, offline bool) Model {
	ti := textinput.New()
	ti.Placeholder = "What shall we examine?"
	ti.CharLimit = 120
	ti.Width = 50

	m := Model{
		service:    svc,
		events:     svc.Bus().Subscribe(),
		offline:    offline,
		view:       ViewList,
		chat:       NewChatView(),
		composer:   NewComposer(maxMessageLength),
		titleInput: ti,
		techniques: constants.Techniques,
	}
	if offline {
		m.conn.SetState(ConnOffline)
	} else {
		m.conn.SetState(ConnReconnecting)
	}
	return m
}

// Init loads the conversation list and starts event delivery.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.loadConversations(),
		m.loadTechniques(),
		m.listenForEvents(),
	)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.composer.SetWidth(msg.Width)
		m.chat.SetSize(msg.Width, msg.Height-constants.ComposerHeight-5)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case EventMsg:
		cmd := m.handleEvent(msg.Event)
		return m, tea.Batch(cmd, m.listenForEvents())

	case scrollFlushMsg:
		m.chat.FlushScroll(msg.gen)
		return m, nil

	case processingTickMsg:
		if m.chat.Processing().Active() {
			m.chat.RefreshProcessing()
			return m, m.processingTick()
		}
		return m, nil

	case conversationsLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.conversations = msg.convs
		if m.selectedIdx >= len(m.conversations) {
			m.selectedIdx = 0
		}
		return m, nil

	case techniquesLoadedMsg:
		if len(msg.techniques) > 0 {
			m.techniques = msg.techniques
		}
		return m, nil

	case conversationCreatedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.view = ViewList
			return m, nil
		}
		m.conversations = append([]chat.Conversation{msg.conv}, m.conversations...)
		m.selectedIdx = 0
		return m, m.openConversation(msg.conv)

	case recentLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.chat.SetConversation(msg.conv, msg.messages, msg.hasArchived)
		m.view = ViewChat
		m.service.Attach(msg.conv.ID)
		return m, tea.Batch(m.composer.Focus(), m.chat.SpinnerTick())

	case archiveLoadedMsg:
		if msg.conversationID != m.chat.Conversation().ID {
			// Stale fetch for a conversation we already left.
			return m, nil
		}
		if msg.err != nil {
			m.err = msg.err
			m.chat.SetLoadingOlder(false)
			return m, nil
		}
		m.chat.PrependArchive(msg.page)
		return m, nil

	case sendResultMsg:
		m.composer.SetSending(false)
		if msg.err != nil {
			// Draft survives for retry.
			var rateErr *api.RateLimitError
			if errors.As(msg.err, &rateErr) {
				m.notice = fmt.Sprintf("Rate limited. Try again in %ds.", int(rateErr.RetryAfter.Seconds()))
			} else {
				m.err = msg.err
			}
			return m, nil
		}
		m.err = nil
		m.notice = ""
		m.composer.Clear()
		return m, nil

	default:
		if m.view == ViewChat {
			var cmd tea.Cmd
			m.chat, cmd = m.chat.Update(msg)
			return m, cmd
		}
		return m, nil
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	switch m.view {
	case ViewList:
		return m.handleListKey(msg)
	case ViewNew:
		return m.handleNewKey(msg)
	default:
		return m.handleChatKey(msg)
	}
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Help):
		m.showHelp = true

	case key.Matches(msg, keys.Up):
		if m.selectedIdx > 0 {
			m.selectedIdx--
		}

	case key.Matches(msg, keys.Down):
		if m.selectedIdx < len(m.conversations)-1 {
			m.selectedIdx++
		}

	case key.Matches(msg, keys.Enter):
		if len(m.conversations) > 0 && m.selectedIdx < len(m.conversations) {
			return m, m.openConversation(m.conversations[m.selectedIdx])
		}

	case key.Matches(msg, keys.New):
		m.view = ViewNew
		m.titleInput.Reset()
		m.titleInput.Focus()
		m.techniqueIdx = 0
		return m, textinput.Blink
	}

	return m, nil
}

func (m Model) handleNewKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Escape):
		m.view = ViewList
		return m, nil

	case key.Matches(msg, keys.Tab):
		if len(m.techniques) > 0 {
			m.techniqueIdx = (m.techniqueIdx + 1) % len(m.techniques)
		}
		return m, nil

	case key.Matches(msg, keys.Enter):
		title := strings.TrimSpace(m.titleInput.Value())
		if title == "" {
			return m, nil
		}
		technique := ""
		if len(m.techniques) > 0 {
			technique = m.techniques[m.techniqueIdx]
		}
		return m, m.createConversation(title, technique)
	}

	var cmd tea.Cmd
	m.titleInput, cmd = m.titleInput.Update(msg)
	return m, cmd
}

func (m Model) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit) && msg.String() == "ctrl+c":
		return m, tea.Quit

	case key.Matches(msg, keys.Escape):
		m.service.Detach()
		m.view = ViewList
		m.err = nil
		m.notice = ""
		return m, m.loadConversations()

	case key.Matches(msg, keys.Enter):
		if !m.composer.CanSend() {
			return m, nil
		}
		content := m.composer.TrimmedValue()
		m.composer.SetSending(true)
		return m, m.sendMessage(m.chat.Conversation().ID, content)

	case key.Matches(msg, keys.PageUp):
		// At the top with archive remaining, PgUp fetches instead of
		// scrolling into nothing.
		if m.chat.viewport.AtTop() && m.chat.HasArchived() && !m.chat.LoadingOlder() {
			return m.startArchiveFetch()
		}
		var cmd tea.Cmd
		m.chat, cmd = m.chat.Update(msg)
		return m, cmd

	case key.Matches(msg, keys.LoadOlder):
		if m.chat.HasArchived() && !m.chat.LoadingOlder() {
			return m.startArchiveFetch()
		}
		return m, nil

	case key.Matches(msg, keys.Bottom):
		m.chat.JumpToBottom()
		return m, nil

	case key.Matches(msg, keys.PageDown):
		var cmd tea.Cmd
		m.chat, cmd = m.chat.Update(msg)
		return m, cmd
	}

	// Everything else is typing.
	var cmd tea.Cmd
	m.composer, cmd = m.composer.Update(msg)
	return m, cmd
}

// handleEvent applies one live event and returns any follow-up command.
func (m *Model) handleEvent(ev stream.Event) tea.Cmd {
	// Connection events are global; the rest only apply to the mounted
	// conversation.
	switch ev.Type {
	case stream.EventStreamConnected:
		m.conn.SetState(ConnLive)
		return nil
	case stream.EventStreamDisconnected:
		m.conn.SetState(ConnReconnecting)
		return nil
	}

	if m.view != ViewChat || ev.ConversationID != m.chat.Conversation().ID {
		return nil
	}

	switch ev.Type {
	case stream.EventProcessingStarted:
		data, _ := ev.Data.(stream.ProcessingData)
		wasActive := m.chat.Processing().Active()
		m.chat.Processing().Start(data.Status, data.QueuePosition, time.Now())
		m.chat.RefreshProcessing()
		if !wasActive {
			return tea.Batch(m.processingTick(), m.chat.SpinnerTick())
		}
		return nil

	case stream.EventProgress:
		data, _ := ev.Data.(stream.ProcessingData)
		m.chat.Processing().Update(data.Status, data.QueuePosition)
		m.chat.RefreshProcessing()
		return nil

	case stream.EventMessage:
		data, ok := ev.Data.(stream.MessageData)
		if !ok {
			return nil
		}
		if schedule, gen := m.chat.AppendLive(data.Message); schedule {
			return m.scheduleFlush(gen)
		}
		return nil

	case stream.EventCompleted:
		m.chat.Processing().Stop()
		m.chat.RefreshProcessing()
		return nil

	case stream.EventError:
		m.chat.Processing().Stop()
		m.chat.RefreshProcessing()
		if data, ok := ev.Data.(stream.ErrorData); ok {
			m.err = errors.New(data.Message)
		}
		return nil

	case stream.EventRateLimited:
		if data, ok := ev.Data.(stream.RateLimitData); ok {
			m.notice = fmt.Sprintf("Rate limited. Try again in %ds.", data.RetryAfterSeconds)
		}
		return nil
	}

	return nil
}

// View renders the UI.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	if m.showHelp {
		return RenderHelp(m.width, m.height)
	}

	switch m.view {
	case ViewNew:
		return m.viewNewDialogue()
	case ViewChat:
		return m.viewChat()
	default:
		return RenderConversationList(m.conversations, m.selectedIdx, m.width, m.height)
	}
}

func (m Model) viewNewDialogue() string {
	var sections []string
	sections = append(sections, renderSectionTitle("NEW DIALOGUE", m.width))
	sections = append(sections, "")
	sections = append(sections, labelStyle.Render("Title:")+" "+m.titleInput.View())

	technique := "(default)"
	if len(m.techniques) > 0 {
		technique = m.techniques[m.techniqueIdx]
	}
	sections = append(sections, labelStyle.Render("Technique:")+" "+valueStyle.Render(technique)+dimmedStyle.Render("  (tab to cycle)"))
	sections = append(sections, "")
	sections = append(sections, dimmedStyle.Render("[ enter ] CREATE  ·  [ esc ] CANCEL"))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) viewChat() string {
	var sections []string

	sections = append(sections, m.chat.View())
	sections = append(sections, m.composer.View(m.width))

	footer := m.conn.View() + dimmedStyle.Render("  ·  [ esc ] BACK  ·  [ pgup ] OLDER  ·  [ end ] BOTTOM")
	sections = append(sections, footer)

	if m.notice != "" {
		sections = append(sections, warningStyle.Render(m.notice))
	}
	if m.err != nil {
		sections = append(sections, errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) loadConversations() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), constants.APIRequestTimeout)
		defer cancel()
		convs, err := m.service.Conversations(ctx)
		return conversationsLoadedMsg{convs: convs, err: err}
	}
}

func (m Model) loadTechniques() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), constants.APIRequestTimeout)
		defer cancel()
		techniques, err := m.service.Techniques(ctx)
		if err != nil {
			return techniquesLoadedMsg{}
		}
		return techniquesLoadedMsg{techniques: techniques}
	}
}

func (m Model) createConversation(title, technique string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), constants.APIRequestTimeout)
		defer cancel()
		conv, err := m.service.CreateConversation(ctx, title, technique)
		return conversationCreatedMsg{conv: conv, err: err}
	}
}

func (m Model) openConversation(conv chat.Conversation) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), constants.APIRequestTimeout)
		defer cancel()
		msgs, hasArchived, err := m.service.Recent(ctx, conv.ID)
		return recentLoadedMsg{conv: conv, messages: msgs, hasArchived: hasArchived, err: err}
	}
}

// startArchiveFetch marks the fetch in flight on the returned model and
// issues the command; the loading flag must live on the model the runtime
// keeps, not a copy inside the command closure.
func (m Model) startArchiveFetch() (tea.Model, tea.Cmd) {
	id := m.chat.Conversation().ID
	before, ok := m.chat.OldestSequence()
	if !ok {
		return m, nil
	}
	m.chat.SetLoadingOlder(true)

	svc := m.service
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), constants.APIRequestTimeout)
		defer cancel()
		page, err := svc.ArchivePage(ctx, id, before)
		return archiveLoadedMsg{conversationID: id, page: page, err: err}
	}
}

func (m Model) sendMessage(conversationID, content string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), constants.APIRequestTimeout)
		defer cancel()
		ack, err := m.service.Send(ctx, conversationID, content)
		return sendResultMsg{ack: ack, err: err}
	}
}

func (m Model) scheduleFlush(gen int) tea.Cmd {
	return tea.Tick(constants.ScrollBatchWindow, func(time.Time) tea.Msg {
		return scrollFlushMsg{gen: gen}
	})
}

func (m Model) processingTick() tea.Cmd {
	return tea.Tick(constants.ProcessingTickInterval, func(t time.Time) tea.Msg {
		return processingTickMsg(t)
	})
}

func (m Model) listenForEvents() tea.Cmd {
	return func() tea.Msg {
		event, ok := <-m.events
		if !ok {
			return nil
		}
		return EventMsg{Event: event}
	}
}

// Key bindings
var keys = struct {
	Quit      key.Binding
	Help      key.Binding
	Escape    key.Binding
	Enter     key.Binding
	Tab       key.Binding
	Up        key.Binding
	Down      key.Binding
	New       key.Binding
	PageUp    key.Binding
	PageDown  key.Binding
	LoadOlder key.Binding
	Bottom    key.Binding
}{
	Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c")),
	Help:      key.NewBinding(key.WithKeys("?")),
	Escape:    key.NewBinding(key.WithKeys("esc")),
	Enter:     key.NewBinding(key.WithKeys("enter")),
	Tab:       key.NewBinding(key.WithKeys("tab")),
	Up:        key.NewBinding(key.WithKeys("up", "k")),
	Down:      key.NewBinding(key.WithKeys("down", "j")),
	New:       key.NewBinding(key.WithKeys("n")),
	PageUp:    key.NewBinding(key.WithKeys("pgup")),
	PageDown:  key.NewBinding(key.WithKeys("pgdown")),
	LoadOlder: key.NewBinding(key.WithKeys("ctrl+o")),
	Bottom:    key.NewBinding(key.WithKeys("end", "ctrl+g")),
}
