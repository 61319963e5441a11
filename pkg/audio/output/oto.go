// ABOUTME: Oto-based audio output implementation
// ABOUTME: Each channel is an oto player fed through a blocking pipe
package output

import (
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/tilegame/soundcore/pkg/audio"
)

// How often Drain checks whether a player has finished
const drainPoll = 10 * time.Millisecond

// oto only allows one context per process
var (
	otoOnce   sync.Once
	otoShared *oto.Context
	otoFormat audio.Format
	otoErr    error
)

// OtoConfig holds oto device configuration
type OtoConfig struct {
	Format      audio.Format  // Context format (default: audio.PlaybackFormat)
	MaxChannels int           // Simultaneous channels (default: 32)
	Buffer      time.Duration // Driver buffer (default: oto's own default)
}

// Oto plays channels through the system audio device
type Oto struct {
	otoCtx      *oto.Context
	format      audio.Format
	maxChannels int

	mu     sync.Mutex
	open   int
	closed bool
}

// NewOto initializes the shared oto context and returns a device on it
func NewOto(config OtoConfig) (*Oto, error) {
	if config.Format == (audio.Format{}) {
		config.Format = audio.PlaybackFormat
	}
	if config.MaxChannels <= 0 {
		config.MaxChannels = 32
	}
	if config.Format.BitDepth != 16 || !config.Format.Signed || config.Format.BigEndian {
		return nil, fmt.Errorf("%w: oto only plays 16-bit signed little-endian, got %s", ErrUnsupportedFormat, config.Format)
	}

	otoOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   config.Format.SampleRate,
			ChannelCount: config.Format.Channels,
			Format:       oto.FormatSignedInt16LE,
			BufferSize:   config.Buffer,
		}

		ctx, readyChan, err := oto.NewContext(op)
		if err != nil {
			otoErr = fmt.Errorf("failed to create oto context: %w", err)
			return
		}
		<-readyChan

		otoShared = ctx
		otoFormat = config.Format
		log.Printf("Audio output initialized: %s", config.Format)
	})
	if otoErr != nil {
		return nil, otoErr
	}

	// If format changed, we can't reinitialize oto
	if otoFormat != config.Format {
		return nil, fmt.Errorf("%w: oto context already running at %s", ErrUnsupportedFormat, otoFormat)
	}
	if err := otoShared.Resume(); err != nil {
		return nil, fmt.Errorf("failed to resume oto context: %w", err)
	}

	return &Oto{
		otoCtx:      otoShared,
		format:      config.Format,
		maxChannels: config.MaxChannels,
	}, nil
}

// MaxChannels returns the configured channel limit
func (o *Oto) MaxChannels() int {
	return o.maxChannels
}

// OpenChannel starts a new oto player reading from a pipe
func (o *Oto) OpenChannel(format audio.Format, bufferSize int) (Channel, error) {
	if format != o.format {
		return nil, fmt.Errorf("%w: device plays %s, channel wants %s", ErrUnsupportedFormat, o.format, format)
	}

	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return nil, ErrDeviceClosed
	}
	if o.open >= o.maxChannels {
		o.mu.Unlock()
		return nil, fmt.Errorf("%w: %d of %d in use", ErrNoChannel, o.open, o.maxChannels)
	}
	o.open++
	o.mu.Unlock()

	pipeReader, pipeWriter := io.Pipe()
	player := o.otoCtx.NewPlayer(pipeReader)
	if bufferSize > 0 {
		player.SetBufferSize(bufferSize)
	}
	player.Play()

	return &otoChannel{
		device:     o,
		player:     player,
		pipeReader: pipeReader,
		pipeWriter: pipeWriter,
		drainLimit: time.Second + time.Duration(bufferSize)*time.Second/time.Duration(o.format.BytesPerSecond()),
	}, nil
}

// Close suspends the shared context. Open channels stop producing sound.
func (o *Oto) Close() error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return nil
	}
	o.closed = true
	open := o.open
	o.mu.Unlock()

	if open > 0 {
		log.Printf("Warning: closing audio output with %d channels still open", open)
	}
	if err := o.otoCtx.Suspend(); err != nil {
		return fmt.Errorf("failed to suspend oto context: %w", err)
	}
	return nil
}

func (o *Oto) release() {
	o.mu.Lock()
	o.open--
	o.mu.Unlock()
}

// otoChannel feeds one oto player
type otoChannel struct {
	device     *Oto
	player     *oto.Player
	pipeReader *io.PipeReader
	pipeWriter *io.PipeWriter
	drainLimit time.Duration
	closeOnce  sync.Once
}

// Write blocks until the player has taken the samples
func (c *otoChannel) Write(p []byte) (int, error) {
	n, err := c.pipeWriter.Write(p)
	if err != nil {
		if errors.Is(err, io.ErrClosedPipe) {
			return n, ErrChannelClosed
		}
		return n, fmt.Errorf("pipe write failed: %w", err)
	}
	return n, nil
}

// Drain ends the stream and waits for the player to run out of samples
func (c *otoChannel) Drain() error {
	c.pipeWriter.Close()

	ticker := time.NewTicker(drainPoll)
	defer ticker.Stop()
	deadline := time.After(c.drainLimit)

	for c.player.IsPlaying() {
		select {
		case <-ticker.C:
		case <-deadline:
			return fmt.Errorf("drain timed out after %v", c.drainLimit)
		}
	}
	return c.player.Err()
}

// Close stops the player and frees the channel slot
func (c *otoChannel) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.pipeWriter.Close()
		err = c.player.Close()
		c.pipeReader.Close()
		c.device.release()
	})
	return err
}
