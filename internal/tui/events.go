package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/malangee/malangee/internal/auth"
)

// busSize bounds queued messages before Send falls back to a goroutine.
const busSize = 64

// Bus carries messages produced outside the bubbletea loop (navigation
// requests from the session, debounced check results) into it.
type Bus struct {
	ch chan tea.Msg
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{ch: make(chan tea.Msg, busSize)}
}

// Send queues msg without blocking the caller.
func (b *Bus) Send(msg tea.Msg) {
	select {
	case b.ch <- msg:
	default:
		go func() { b.ch <- msg }()
	}
}

// Navigate implements auth.Navigator.
func (b *Bus) Navigate(route auth.Route) {
	b.Send(navigateMsg{route: route})
}

// busMsg wraps one message read off the bus.
type busMsg struct {
	msg tea.Msg
}

// listen blocks for the next bus message. The App re-arms it after each one.
func (b *Bus) listen() tea.Cmd {
	return func() tea.Msg {
		return busMsg{msg: <-b.ch}
	}
}

// navigateMsg asks the App to switch routes.
type navigateMsg struct {
	route auth.Route
}

// authStateMsg carries a fresh session state after a profile (re)fetch.
type authStateMsg struct {
	state auth.State
}

// scoped is implemented by results of work started from a view. The App
// drops them once the view they belong to has been left.
type scoped interface {
	scope() int
}

// scope tags a message with the navigation generation it was issued in.
type scope struct {
	gen int
}

func (s scope) scope() int { return s.gen }
