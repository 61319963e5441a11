// ABOUTME: Audio output interface definition
// ABOUTME: A Device hands out a limited number of independent playback channels
package output

import (
	"errors"
	"math"
	"time"

	"github.com/tilegame/soundcore/pkg/audio"
)

var (
	// ErrNoChannel is returned when every channel of a device is in use
	ErrNoChannel = errors.New("no free output channel")

	// ErrDeviceClosed is returned by a device after Close
	ErrDeviceClosed = errors.New("output device closed")

	// ErrChannelClosed is returned when writing to a closed or drained channel
	ErrChannelClosed = errors.New("output channel closed")

	// ErrUnsupportedFormat is returned for channel formats the device cannot play
	ErrUnsupportedFormat = errors.New("unsupported channel format")
)

// Device represents an audio output able to play several channels at once
type Device interface {
	// OpenChannel acquires a channel playing format with roughly bufferSize
	// bytes of device-side buffering
	OpenChannel(format audio.Format, bufferSize int) (Channel, error)

	// MaxChannels returns how many channels can be open at the same time
	MaxChannels() int

	// Close releases the device
	Close() error
}

// Channel is one hardware voice owned by a single writer
type Channel interface {
	// Write queues samples for playback, blocking while the device buffer is full
	Write(p []byte) (int, error)

	// Drain blocks until every written sample has been played
	Drain() error

	// Close releases the channel. Samples not yet played are discarded.
	Close() error
}

// BufferSize returns the byte size of d worth of audio in format, in whole frames
func BufferSize(format audio.Format, d time.Duration) int {
	frames := math.Round(float64(format.SampleRate) * d.Seconds())
	return int(frames) * format.FrameSize()
}
