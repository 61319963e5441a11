// ABOUTME: A single playback of one stream on one device channel
// ABOUTME: Voices move Queued -> Starting -> Streaming -> Stopped exactly once
package sound

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/tilegame/soundcore/pkg/audio"
	"github.com/tilegame/soundcore/pkg/audio/output"
)

// ChannelBuffer is the amount of audio buffered by each voice's device channel
const ChannelBuffer = 100 * time.Millisecond

// State is the lifecycle stage of a voice
type State int32

const (
	StateQueued State = iota
	StateStarting
	StateStreaming
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateQueued:
		return "queued"
	case StateStarting:
		return "starting"
	case StateStreaming:
		return "streaming"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Voice is a handle to one submitted playback
type Voice struct {
	id     string
	stream io.Reader
	format audio.Format
	state  atomic.Int32

	done       chan struct{}
	finishOnce sync.Once
	err        error
	onFinish   func(*Voice)

	mu      sync.Mutex
	cancel  context.CancelFunc
	stopped bool
}

// NewVoice wraps a stream of format samples into a voice ready to submit
func NewVoice(stream io.Reader, format audio.Format) *Voice {
	return &Voice{
		id:     uuid.New().String(),
		stream: stream,
		format: format,
		done:   make(chan struct{}),
	}
}

// ID returns the unique identifier of the voice
func (v *Voice) ID() string {
	return v.id
}

// State returns the current lifecycle stage
func (v *Voice) State() State {
	return State(v.state.Load())
}

// Done is closed once the voice has stopped
func (v *Voice) Done() <-chan struct{} {
	return v.done
}

// Wait blocks until the voice stops and returns its result
func (v *Voice) Wait(ctx context.Context) error {
	select {
	case <-v.done:
		return v.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Err returns the result of a stopped voice: nil after a normal end,
// ErrInterrupted, ErrChannelUnavailable or a stream error otherwise
func (v *Voice) Err() error {
	select {
	case <-v.done:
		return v.err
	default:
		return nil
	}
}

// Stop ends the voice at its next chunk without draining the channel.
// A voice still waiting in the queue stops immediately.
func (v *Voice) Stop() {
	v.mu.Lock()
	v.stopped = true
	cancel := v.cancel
	v.mu.Unlock()

	if cancel != nil {
		cancel()
		return
	}
	// Not picked up by a worker yet; the worker will skip it
	v.finish(ErrInterrupted)
}

func (v *Voice) setState(s State) {
	v.state.Store(int32(s))
}

// finish records the result and releases waiters; only the first call counts
func (v *Voice) finish(err error) {
	v.finishOnce.Do(func() {
		v.err = err
		v.setState(StateStopped)
		close(v.done)
		if v.onFinish != nil {
			v.onFinish(v)
		}
	})
}

// claim hands the voice to a worker. It fails for a voice stopped while queued.
func (v *Voice) claim(parent context.Context) (context.Context, context.CancelFunc, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.stopped {
		return nil, nil, false
	}
	ctx, cancel := context.WithCancel(parent)
	v.cancel = cancel
	return ctx, cancel, true
}

// run plays the stream to its end on a fresh device channel. ctx comes from claim.
func (v *Voice) run(ctx context.Context, device output.Device, gate *PauseGate) error {
	v.setState(StateStarting)
	bufferSize := output.BufferSize(v.format, ChannelBuffer)
	ch, err := device.OpenChannel(v.format, bufferSize)
	if err != nil {
		log.Printf("Voice %s: channel unavailable: %v", v.id, err)
		return fmt.Errorf("%w: %w", ErrChannelUnavailable, err)
	}

	v.setState(StateStreaming)
	chunk := make([]byte, bufferSize)
	for {
		if err := gate.Wait(ctx); err != nil {
			ch.Close()
			return ErrInterrupted
		}
		if ctx.Err() != nil {
			ch.Close()
			return ErrInterrupted
		}

		n, readErr := v.stream.Read(chunk)
		if n > 0 {
			if _, err := ch.Write(chunk[:n]); err != nil {
				ch.Close()
				return fmt.Errorf("channel write failed: %w", err)
			}
		}

		if errors.Is(readErr, io.EOF) {
			drainErr := ch.Drain()
			closeErr := ch.Close()
			if drainErr != nil {
				return fmt.Errorf("channel drain failed: %w", drainErr)
			}
			return closeErr
		}
		if readErr != nil {
			ch.Close()
			return fmt.Errorf("stream read failed: %w", readErr)
		}
	}
}
