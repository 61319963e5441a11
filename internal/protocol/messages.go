// ABOUTME: Remote control message type definitions
// ABOUTME: Defines the JSON messages exchanged over the soundboard websocket
package protocol

import "github.com/tilegame/soundcore/pkg/sound"

// Message types
const (
	TypePlay   = "play"
	TypePause  = "pause"
	TypeResume = "resume"
	TypeStop   = "stop"
	TypeStatus = "status"
	TypePlayed = "played"
	TypeError  = "error"
)

// Message is the top-level wrapper for server to client messages
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Command is sent by clients to control playback
type Command struct {
	Type  string `json:"type"`
	Sound string `json:"sound,omitempty"`
	Loop  bool   `json:"loop,omitempty"`
	Echo  bool   `json:"echo,omitempty"`
}

// Status reports scheduler activity, pushed periodically
type Status struct {
	Paused bool        `json:"paused"`
	Sounds []string    `json:"sounds"`
	Stats  sound.Stats `json:"stats"`
}

// Played acknowledges a play command
type Played struct {
	Sound string `json:"sound"`
	Voice string `json:"voice"`
}

// Stopped acknowledges a stop command
type Stopped struct {
	Voices int `json:"voices"`
}

// Error reports a failed command
type Error struct {
	Command string `json:"command"`
	Message string `json:"message"`
}
