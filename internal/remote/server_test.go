// ABOUTME: Tests for the remote control server
// ABOUTME: Drives the HTTP API and websocket against a fake controller
package remote

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/tilegame/soundcore/internal/app"
	"github.com/tilegame/soundcore/internal/protocol"
	"github.com/tilegame/soundcore/internal/version"
	"github.com/tilegame/soundcore/pkg/sound"
)

type playCall struct {
	name string
	loop bool
	echo bool
}

type fakeController struct {
	mu      sync.Mutex
	plays   []playCall
	paused  bool
	stopped int
	playErr error
}

func (f *fakeController) Sounds() []string { return []string{"coin", "jump"} }

func (f *fakeController) Play(name string, loop, echo bool) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.playErr != nil {
		return "", f.playErr
	}
	if name != "coin" && name != "jump" {
		return "", fmt.Errorf("%w: %s", app.ErrUnknownSound, name)
	}
	f.plays = append(f.plays, playCall{name, loop, echo})
	return fmt.Sprintf("voice-%d", len(f.plays)), nil
}

func (f *fakeController) StopLoops() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped++
	return 2
}

func (f *fakeController) SetPaused(paused bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paused = paused
}

func (f *fakeController) Paused() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.paused
}

func (f *fakeController) Stats() sound.Stats {
	f.mu.Lock()
	defer f.mu.Unlock()
	return sound.Stats{Submitted: int64(len(f.plays)), Workers: 4, Paused: f.paused}
}

func (f *fakeController) Plays() []playCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]playCall(nil), f.plays...)
}

func newTestServer(t *testing.T, ctrl Controller) (*Server, *httptest.Server) {
	t.Helper()
	s := New(ctrl, Config{StatusInterval: 20 * time.Millisecond})
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		s.Stop()
		ts.Close()
	})
	return s, ts
}

func TestListSounds(t *testing.T) {
	_, ts := newTestServer(t, &fakeController{})

	resp, err := http.Get(ts.URL + "/sounds")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	var body struct {
		Sounds []string `json:"sounds"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(body.Sounds) != 2 || body.Sounds[0] != "coin" {
		t.Errorf("unexpected sounds: %v", body.Sounds)
	}
	if got := resp.Header.Get("Server"); got != version.UserAgent() {
		t.Errorf("expected Server header %q, got %q", version.UserAgent(), got)
	}
}

func TestPlayEndpoint(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		playErr  error
		status   int
		expected *playCall
	}{
		{"plain", "/sounds/jump/play", nil, http.StatusAccepted, &playCall{"jump", false, false}},
		{"loop and echo", "/sounds/coin/play?loop=1&echo=true", nil, http.StatusAccepted, &playCall{"coin", true, true}},
		{"unknown", "/sounds/boom/play", nil, http.StatusNotFound, nil},
		{"saturated", "/sounds/jump/play", sound.ErrQueueSaturated, http.StatusTooManyRequests, nil},
		{"closed", "/sounds/jump/play", sound.ErrClosed, http.StatusServiceUnavailable, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := &fakeController{playErr: tt.playErr}
			_, ts := newTestServer(t, ctrl)

			resp, err := http.Post(ts.URL+tt.path, "application/json", nil)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			resp.Body.Close()

			if resp.StatusCode != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, resp.StatusCode)
			}
			plays := ctrl.Plays()
			if tt.expected == nil {
				if len(plays) != 0 {
					t.Errorf("expected no plays, got %v", plays)
				}
				return
			}
			if len(plays) != 1 || plays[0] != *tt.expected {
				t.Errorf("expected %+v, got %v", *tt.expected, plays)
			}
		})
	}
}

func TestPauseResumeEndpoints(t *testing.T) {
	ctrl := &fakeController{}
	_, ts := newTestServer(t, ctrl)

	resp, err := http.Post(ts.URL+"/pause", "application/json", nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	var status protocol.Status
	json.NewDecoder(resp.Body).Decode(&status)
	resp.Body.Close()

	if !status.Paused || !ctrl.Paused() {
		t.Error("expected paused after POST /pause")
	}

	resp, err = http.Post(ts.URL+"/resume", "application/json", nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if ctrl.Paused() {
		t.Error("expected resumed after POST /resume")
	}
}

func TestStopEndpoint(t *testing.T) {
	ctrl := &fakeController{}
	_, ts := newTestServer(t, ctrl)

	resp, err := http.Post(ts.URL+"/stop", "application/json", nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	var stopped protocol.Stopped
	json.NewDecoder(resp.Body).Decode(&stopped)
	if stopped.Voices != 2 {
		t.Errorf("expected 2 voices stopped, got %d", stopped.Voices)
	}
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readUntil reads messages until one of the given type arrives
func readUntil(t *testing.T, conn *websocket.Conn, msgType string) json.RawMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		var msg struct {
			Type    string          `json:"type"`
			Payload json.RawMessage `json:"payload"`
		}
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("waiting for %s: %v", msgType, err)
		}
		if msg.Type == msgType {
			return msg.Payload
		}
	}
}

func TestWebSocketPushesStatus(t *testing.T) {
	_, ts := newTestServer(t, &fakeController{})
	conn := dial(t, ts)

	for i := 0; i < 2; i++ {
		var status protocol.Status
		if err := json.Unmarshal(readUntil(t, conn, protocol.TypeStatus), &status); err != nil {
			t.Fatalf("bad status: %v", err)
		}
		if status.Stats.Workers != 4 {
			t.Errorf("expected 4 workers, got %d", status.Stats.Workers)
		}
	}
}

func TestWebSocketCommands(t *testing.T) {
	ctrl := &fakeController{}
	_, ts := newTestServer(t, ctrl)
	conn := dial(t, ts)

	conn.WriteJSON(protocol.Command{Type: protocol.TypePlay, Sound: "coin", Loop: true})
	var played protocol.Played
	json.Unmarshal(readUntil(t, conn, protocol.TypePlayed), &played)
	if played.Sound != "coin" || played.Voice != "voice-1" {
		t.Errorf("unexpected ack: %+v", played)
	}

	conn.WriteJSON(protocol.Command{Type: protocol.TypePlay, Sound: "boom"})
	var failed protocol.Error
	json.Unmarshal(readUntil(t, conn, protocol.TypeError), &failed)
	if failed.Command != protocol.TypePlay || !strings.Contains(failed.Message, "boom") {
		t.Errorf("unexpected error: %+v", failed)
	}

	conn.WriteJSON(protocol.Command{Type: protocol.TypePause})
	deadline := time.Now().Add(2 * time.Second)
	for !ctrl.Paused() {
		if time.Now().After(deadline) {
			t.Fatal("pause command not applied")
		}
		time.Sleep(time.Millisecond)
	}

	conn.WriteMessage(websocket.TextMessage, []byte("not json"))
	readUntil(t, conn, protocol.TypeError)

	conn.WriteJSON(protocol.Command{Type: "rewind"})
	json.Unmarshal(readUntil(t, conn, protocol.TypeError), &failed)
	if failed.Command != "rewind" {
		t.Errorf("expected error for rewind, got %+v", failed)
	}
}

func TestStopClosesWebSockets(t *testing.T) {
	s, ts := newTestServer(t, &fakeController{})
	conn := dial(t, ts)
	readUntil(t, conn, protocol.TypeStatus)

	s.Stop()
	s.Stop()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseGoingAway) {
				t.Errorf("expected going-away close, got %v", err)
			}
			return
		}
	}
}

func TestStartAndStop(t *testing.T) {
	s := New(&fakeController{}, Config{Addr: "127.0.0.1:0"})
	addr, err := s.Start()
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}

	resp, err := http.Get("http://" + addr.String() + "/stats")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}

	s.Stop()
	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	if _, err := client.Get("http://" + addr.String() + "/stats"); err == nil {
		t.Error("expected requests to fail after stop")
	}
}
