// ABOUTME: WebSocket client for the soundboard remote control
// ABOUTME: Sends commands and receives status updates from a running soundboard
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/tilegame/soundcore/internal/protocol"
	"github.com/tilegame/soundcore/internal/version"
)

// ErrRemote wraps errors reported by the soundboard
var ErrRemote = errors.New("soundboard error")

// replyTimeout bounds how long a command waits for its acknowledgement
const replyTimeout = 5 * time.Second

// Client represents a remote control connection
type Client struct {
	conn *websocket.Conn

	// writeMu serializes writes; cmdMu keeps one command awaiting a reply
	writeMu sync.Mutex
	cmdMu   sync.Mutex

	// Status receives periodic soundboard status; stale updates are dropped
	Status  chan protocol.Status
	replies chan reply

	ctx    context.Context
	cancel context.CancelFunc
}

type reply struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Dial connects to the soundboard at addr (host:port)
func Dial(addr string) (*Client, error) {
	u := url.URL{Scheme: "ws", Host: addr, Path: "/ws"}
	log.Printf("Connecting to %s", u.String())

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), http.Header{"User-Agent": {version.UserAgent()}})
	if err != nil {
		return nil, fmt.Errorf("dial failed: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Client{
		conn:    conn,
		Status:  make(chan protocol.Status, 1),
		replies: make(chan reply, 1),
		ctx:     ctx,
		cancel:  cancel,
	}

	go c.readMessages()
	return c, nil
}

// Play triggers a sound and returns the acknowledgement
func (c *Client) Play(sound string, loop, echo bool) (protocol.Played, error) {
	var played protocol.Played
	err := c.request(protocol.Command{Type: protocol.TypePlay, Sound: sound, Loop: loop, Echo: echo}, protocol.TypePlayed, &played)
	return played, err
}

// StopLoops stops every looping sound and returns how many were stopped
func (c *Client) StopLoops() (int, error) {
	var stopped protocol.Stopped
	err := c.request(protocol.Command{Type: protocol.TypeStop}, protocol.TypeStop, &stopped)
	return stopped.Voices, err
}

// SetPaused pauses or resumes the soundboard; the new state arrives on Status
func (c *Client) SetPaused(paused bool) error {
	cmd := protocol.Command{Type: protocol.TypeResume}
	if paused {
		cmd.Type = protocol.TypePause
	}
	return c.sendJSON(cmd)
}

// Close closes the connection
func (c *Client) Close() error {
	c.cancel()

	c.writeMu.Lock()
	c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.writeMu.Unlock()

	return c.conn.Close()
}

// request sends cmd and decodes the matching reply into out
func (c *Client) request(cmd protocol.Command, want string, out interface{}) error {
	c.cmdMu.Lock()
	defer c.cmdMu.Unlock()

	if err := c.sendJSON(cmd); err != nil {
		return err
	}

	select {
	case r := <-c.replies:
		if r.Type == protocol.TypeError {
			var remoteErr protocol.Error
			json.Unmarshal(r.Payload, &remoteErr)
			return fmt.Errorf("%w: %s", ErrRemote, remoteErr.Message)
		}
		if r.Type != want {
			return fmt.Errorf("unexpected reply %q to %q", r.Type, cmd.Type)
		}
		return json.Unmarshal(r.Payload, out)
	case <-time.After(replyTimeout):
		return fmt.Errorf("no reply to %s after %v", cmd.Type, replyTimeout)
	case <-c.ctx.Done():
		return errors.New("connection closed")
	}
}

// sendJSON sends a JSON message
func (c *Client) sendJSON(v interface{}) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.conn.WriteJSON(v); err != nil {
		return fmt.Errorf("failed to send: %w", err)
	}
	return nil
}

// readMessages routes incoming messages until the connection closes
func (c *Client) readMessages() {
	defer c.cancel()

	for {
		var r reply
		if err := c.conn.ReadJSON(&r); err != nil {
			if c.ctx.Err() == nil {
				log.Printf("Remote connection closed: %v", err)
			}
			return
		}

		switch r.Type {
		case protocol.TypeStatus:
			var status protocol.Status
			if err := json.Unmarshal(r.Payload, &status); err != nil {
				log.Printf("Bad status message: %v", err)
				continue
			}
			// Keep only the latest status
			select {
			case <-c.Status:
			default:
			}
			c.Status <- status
		default:
			select {
			case c.replies <- r:
			case <-c.ctx.Done():
				return
			}
		}
	}
}
