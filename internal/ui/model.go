// ABOUTME: Bubbletea model for the soundboard TUI
// ABOUTME: Defines soundboard state, key handling and rendering
package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/tilegame/soundcore/pkg/sound"
)

// Model represents the TUI state
type Model struct {
	// Bank
	sounds []string

	// Toggles applied to the next play
	echo bool
	loop bool

	// Playback
	paused bool
	stats  sound.Stats

	// Last thing that happened, shown under the list
	event string

	control *Control

	// Dimensions
	width  int
	height int
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case StatusMsg:
		m.applyStatus(msg)
	case EventMsg:
		m.event = string(msg)
	}

	return m, nil
}

// View renders the TUI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	s := ""
	s += m.renderHeader()
	s += m.renderSounds()
	s += m.renderStats()
	s += m.renderHelp()

	return s
}

// renderHeader renders pause state and toggles
func (m Model) renderHeader() string {
	state := "▶ Playing"
	if m.paused {
		state = "⏸ Paused"
	}

	return fmt.Sprintf(`┌─ Soundboard ─────────────────────────────────────────┐
│ %-10s  Echo: %-3s  Loop: %-3s%-22s │
├──────────────────────────────────────────────────────┤
`, state, onOff(m.echo), onOff(m.loop), "")
}

// renderSounds renders the numbered sound list
func (m Model) renderSounds() string {
	if len(m.sounds) == 0 {
		return "│ No sounds loaded                                     │\n"
	}

	s := ""
	for i, name := range m.sounds {
		if i >= len(soundKeys) {
			s += fmt.Sprintf("│   ... and %d more%-36s │\n", len(m.sounds)-i, "")
			break
		}
		s += fmt.Sprintf("│ [%s] %-48s │\n", soundKeys[i], truncate(name, 48))
	}
	if m.event != "" {
		s += "│                                                      │\n"
		s += fmt.Sprintf("│ %-52s │\n", truncate(m.event, 52))
	}
	return s
}

// renderStats renders scheduler statistics
func (m Model) renderStats() string {
	voiceBar := renderBar(int(m.stats.Active), max(m.stats.Workers, 1), 10)

	return fmt.Sprintf(`├──────────────────────────────────────────────────────┤
│ Voices: [%s] %d/%d  Queued: %-18d │
│ Played: %-6d Stopped: %-6d Failed: %-6d Drop: %-4d│
`, voiceBar, m.stats.Active, m.stats.Workers, m.stats.Queued,
		m.stats.Completed, m.stats.Interrupted, m.stats.Failed, m.stats.Rejected)
}

// renderHelp renders keyboard shortcuts
func (m Model) renderHelp() string {
	return `│ 1-9,0:Play  e:Echo  l:Loop  space:Pause  s:Stop  q:Quit│
└──────────────────────────────────────────────────────┘
`
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	switch key {
	case "q", "ctrl+c":
		if m.control != nil {
			select {
			case m.control.Quit <- QuitMsg{}:
			default:
			}
		}
		return m, tea.Quit
	case "e":
		m.echo = !m.echo
		return m, nil
	case "l":
		m.loop = !m.loop
		return m, nil
	case " ":
		m.paused = !m.paused
		kind := CommandPause
		if !m.paused {
			kind = CommandResume
		}
		m.send(Command{Kind: kind})
		return m, nil
	case "s":
		m.send(Command{Kind: CommandStop})
		return m, nil
	}

	if i := keyIndex(key); i >= 0 && i < len(m.sounds) {
		name := m.sounds[i]
		m.send(Command{Kind: CommandPlay, Sound: name, Loop: m.loop, Echo: m.echo})
	}

	return m, nil
}

// send forwards a command without blocking the UI
func (m *Model) send(cmd Command) {
	if m.control == nil {
		return
	}
	select {
	case m.control.Commands <- cmd:
	default:
		m.event = "Busy, command dropped"
	}
}

// applyStatus updates model from status message
func (m *Model) applyStatus(msg StatusMsg) {
	if msg.Sounds != nil {
		m.sounds = msg.Sounds
	}
	m.paused = msg.Stats.Paused
	m.stats = msg.Stats
}

// StatusMsg updates TUI state
type StatusMsg struct {
	Sounds []string // nil leaves the list unchanged
	Stats  sound.Stats
}

// EventMsg reports a one-line event such as a failed play
type EventMsg string

// Number keys in sound order
var soundKeys = []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "0"}

func keyIndex(key string) int {
	for i, k := range soundKeys {
		if k == key {
			return i
		}
	}
	return -1
}

// Utility functions
func renderBar(value, max, width int) string {
	filled := (value * width) / max
	bar := ""
	for i := 0; i < width; i++ {
		if i < filled {
			bar += "█"
		} else {
			bar += "░"
		}
	}
	return bar
}

func truncate(s string, length int) string {
	if len(s) <= length {
		return s
	}
	return s[:length-3] + "..."
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
