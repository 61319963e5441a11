// ABOUTME: TUI initialization and control
// ABOUTME: Wraps the bubbletea program and the channels it drives the soundboard with
package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// CommandKind identifies what the user asked for
type CommandKind int

const (
	CommandPlay CommandKind = iota
	CommandStop
	CommandPause
	CommandResume
)

// Command is a soundboard action triggered from the keyboard
type Command struct {
	Kind  CommandKind
	Sound string
	Loop  bool
	Echo  bool
}

// QuitMsg signals that the user quit the TUI
type QuitMsg struct{}

// Control holds channels for soundboard control communication
type Control struct {
	Commands chan Command
	Quit     chan QuitMsg
}

// NewControl creates a new control handler
func NewControl() *Control {
	return &Control{
		Commands: make(chan Command, 10),
		Quit:     make(chan QuitMsg, 1),
	}
}

// NewModel creates a new TUI model
func NewModel(sounds []string, control *Control) Model {
	return Model{
		sounds:  sounds,
		control: control,
	}
}

// Run creates the TUI program; the caller starts it
func Run(sounds []string, control *Control) (*tea.Program, error) {
	p := tea.NewProgram(NewModel(sounds, control), tea.WithAltScreen())
	return p, nil
}
