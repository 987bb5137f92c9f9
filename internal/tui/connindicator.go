package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// ConnState is the live stream connection state shown in the chat header.
type ConnState int

const (
	ConnOffline ConnState = iota
	ConnLive
	ConnReconnecting
)

// ConnIndicator tracks the event stream connection for display. Offline
// practice mode stays ConnOffline for the whole session.
type ConnIndicator struct {
	state ConnState
}

// SetState sets the connection state.
func (c *ConnIndicator) SetState(state ConnState) {
	c.state = state
}

// State returns the current connection state.
func (c ConnIndicator) State() ConnState {
	return c.state
}

// View renders the indicator.
func (c ConnIndicator) View() string {
	switch c.state {
	case ConnLive:
		return lipgloss.NewStyle().Foreground(colorTeal).Bold(true).Render("◉ LIVE")
	case ConnReconnecting:
		return warningStyle.Render("◌ RECONNECTING")
	default:
		return dimmedStyle.Render("◌ OFFLINE")
	}
}
