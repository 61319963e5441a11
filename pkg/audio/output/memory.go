// ABOUTME: Headless in-memory output device
// ABOUTME: Records channel data for tests and runs without a sound card
package output

import (
	"bytes"
	"fmt"
	"sync"
	"time"

	"github.com/tilegame/soundcore/pkg/audio"
)

// MemoryConfig holds memory device configuration
type MemoryConfig struct {
	MaxChannels int           // Simultaneous channels (default: 32)
	WriteDelay  time.Duration // Simulated playback time per Write
	Realtime    bool          // Block each Write for the duration of its samples
	Discard     bool          // Count written bytes without keeping them
}

// MemoryStats describes channel usage of a memory device
type MemoryStats struct {
	Open   int // Channels currently open
	Peak   int // Most channels ever open at once
	Opened int // Channels opened in total
	Closed int // Channels closed in total
}

// Memory is an output device that keeps everything written to it
type Memory struct {
	config MemoryConfig

	mu       sync.Mutex
	stats    MemoryStats
	channels []*MemoryChannel
	closed   bool
}

// NewMemory creates a memory device
func NewMemory(config MemoryConfig) *Memory {
	if config.MaxChannels <= 0 {
		config.MaxChannels = 32
	}
	return &Memory{config: config}
}

// MaxChannels returns the configured channel limit
func (m *Memory) MaxChannels() int {
	return m.config.MaxChannels
}

// OpenChannel creates a recording channel
func (m *Memory) OpenChannel(format audio.Format, bufferSize int) (Channel, error) {
	if err := format.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedFormat, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrDeviceClosed
	}
	if m.stats.Open >= m.config.MaxChannels {
		return nil, fmt.Errorf("%w: %d of %d in use", ErrNoChannel, m.stats.Open, m.config.MaxChannels)
	}

	m.stats.Open++
	m.stats.Opened++
	m.stats.Peak = max(m.stats.Peak, m.stats.Open)

	ch := &MemoryChannel{
		device:     m,
		format:     format,
		bufferSize: bufferSize,
	}
	m.channels = append(m.channels, ch)
	return ch, nil
}

// Close marks the device closed. Channels already open keep working.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close has been called
func (m *Memory) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Stats returns channel usage counters
func (m *Memory) Stats() MemoryStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats
}

// Channels returns every channel opened so far, in order
func (m *Memory) Channels() []*MemoryChannel {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*MemoryChannel(nil), m.channels...)
}

// Written returns the total number of bytes written across all channels
func (m *Memory) Written() int {
	total := 0
	for _, ch := range m.Channels() {
		total += ch.Len()
	}
	return total
}

func (m *Memory) release() {
	m.mu.Lock()
	m.stats.Open--
	m.stats.Closed++
	m.mu.Unlock()
}

// MemoryChannel records the samples written to it
type MemoryChannel struct {
	device     *Memory
	format     audio.Format
	bufferSize int

	mu      sync.Mutex
	data    bytes.Buffer
	written int
	writes  int
	drained bool
	closed  bool
}

// Write appends p after the configured delay
func (c *MemoryChannel) Write(p []byte) (int, error) {
	c.mu.Lock()
	done := c.closed || c.drained
	c.mu.Unlock()
	if done {
		return 0, ErrChannelClosed
	}

	delay := c.device.config.WriteDelay
	if c.device.config.Realtime {
		delay += time.Duration(len(p)) * time.Second / time.Duration(c.format.BytesPerSecond())
	}
	if delay > 0 {
		time.Sleep(delay)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.writes++
	c.written += len(p)
	if c.device.config.Discard {
		return len(p), nil
	}
	return c.data.Write(p)
}

// Drain marks the channel as fully played
func (c *MemoryChannel) Drain() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrChannelClosed
	}
	c.drained = true
	return nil
}

// Close releases the channel slot. Closing twice is a no-op.
func (c *MemoryChannel) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.device.release()
	return nil
}

// Bytes returns a copy of everything written, empty when discarding
func (c *MemoryChannel) Bytes() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return bytes.Clone(c.data.Bytes())
}

// Len returns the number of bytes written
func (c *MemoryChannel) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.written
}

// Writes returns the number of Write calls
func (c *MemoryChannel) Writes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.writes
}

// Drained reports whether Drain was called
func (c *MemoryChannel) Drained() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.drained
}

// Closed reports whether Close was called
func (c *MemoryChannel) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// BufferSize returns the buffer size requested when the channel was opened
func (c *MemoryChannel) BufferSize() int {
	return c.bufferSize
}
