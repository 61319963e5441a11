// ABOUTME: Public sound manager used by game code
// ABOUTME: Loads sounds, plays them through the scheduler and handles global pause
package sound

import (
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"sync"

	"github.com/tilegame/soundcore/pkg/audio"
	"github.com/tilegame/soundcore/pkg/audio/decode"
	"github.com/tilegame/soundcore/pkg/audio/filter"
	"github.com/tilegame/soundcore/pkg/audio/output"
	"github.com/tilegame/soundcore/pkg/audio/stream"
)

// Config holds manager configuration
type Config struct {
	// Device plays the voices (default: system audio through oto)
	Device output.Device

	// FS is where sounds are loaded from (default: current directory)
	FS fs.FS

	// Loader overrides FS when set
	Loader *decode.Loader

	// MaxVoices caps simultaneous voices (default: 32)
	MaxVoices int

	// QueueDepth is how many plays may wait for a free voice (default: 64)
	QueueDepth int
}

// Manager is the entry point for playing sound effects
type Manager struct {
	loader    *decode.Loader
	gate      *PauseGate
	scheduler *Scheduler

	mu     sync.Mutex
	voices map[string]*Voice
}

// New creates a manager and starts its scheduler
func New(config Config) (*Manager, error) {
	if config.MaxVoices <= 0 {
		config.MaxVoices = 32
	}
	if config.QueueDepth <= 0 {
		config.QueueDepth = 64
	}
	if config.Loader == nil {
		if config.FS == nil {
			config.FS = os.DirFS(".")
		}
		config.Loader = decode.NewLoader(config.FS, decode.LoaderConfig{})
	}
	if config.Device == nil {
		dev, err := output.NewOto(output.OtoConfig{MaxChannels: config.MaxVoices})
		if err != nil {
			return nil, fmt.Errorf("failed to open audio output: %w", err)
		}
		config.Device = dev
	}

	gate := NewPauseGate()
	return &Manager{
		loader: config.Loader,
		gate:   gate,
		scheduler: NewScheduler(config.Device, gate, SchedulerConfig{
			Workers:    config.MaxVoices,
			QueueDepth: config.QueueDepth,
		}),
		voices: make(map[string]*Voice),
	}, nil
}

// Loader returns the loader used by Load
func (m *Manager) Loader() *decode.Loader {
	return m.loader
}

// Load decodes a sound into the playback format
func (m *Manager) Load(name string) (*audio.SampleBuffer, error) {
	return m.loader.Load(name)
}

// LoadOr loads a sound, returning fallback (or audio.NoSound) on failure
func (m *Manager) LoadOr(name string, fallback *audio.SampleBuffer) *audio.SampleBuffer {
	return m.loader.LoadOr(name, fallback)
}

// Play plays a buffer once without filtering
func (m *Manager) Play(buf *audio.SampleBuffer) (*Voice, error) {
	return m.PlayWith(buf, nil, false)
}

// PlayWith plays a buffer through an optional filter, looping until stopped
// when loop is set. The filter must not be shared with another voice.
func (m *Manager) PlayWith(buf *audio.SampleBuffer, f filter.Filter, loop bool) (*Voice, error) {
	if !buf.Playable() {
		return nil, ErrUnplayable
	}

	var src io.Reader
	if loop {
		src = stream.NewLooping(buf)
	} else {
		src = stream.NewReader(buf)
	}
	if f != nil {
		src = stream.NewFiltered(src, f)
	}

	v := NewVoice(src, buf.Format())
	v.onFinish = m.forget

	m.mu.Lock()
	m.voices[v.ID()] = v
	m.mu.Unlock()

	if err := m.scheduler.Submit(v); err != nil {
		m.forget(v)
		return nil, err
	}
	return v, nil
}

// Voice looks up a live voice by ID
func (m *Manager) Voice(id string) (*Voice, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.voices[id]
	return v, ok
}

// StopAll stops every queued or playing voice and returns how many were stopped
func (m *Manager) StopAll() int {
	m.mu.Lock()
	voices := make([]*Voice, 0, len(m.voices))
	for _, v := range m.voices {
		voices = append(voices, v)
	}
	m.mu.Unlock()

	for _, v := range voices {
		v.Stop()
	}
	if len(voices) > 0 {
		log.Printf("Stopped %d voices", len(voices))
	}
	return len(voices)
}

// SetPaused pauses or resumes every voice
func (m *Manager) SetPaused(paused bool) {
	m.gate.SetPaused(paused)
}

// IsPaused reports whether playback is paused
func (m *Manager) IsPaused() bool {
	return m.gate.Paused()
}

// Stats returns scheduler statistics
func (m *Manager) Stats() Stats {
	return m.scheduler.Stats()
}

// Close interrupts every voice and releases the device. It blocks until all
// channels are closed and is safe to call more than once.
func (m *Manager) Close() error {
	return m.scheduler.Close()
}

func (m *Manager) forget(v *Voice) {
	m.mu.Lock()
	delete(m.voices, v.ID())
	m.mu.Unlock()
}
