// ABOUTME: Background music player for sequenced MIDI tracks
// ABOUTME: Renders tracks with a SoundFont and pumps them into one dedicated output channel
package music

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/midi"
	"github.com/tilegame/soundcore/pkg/audio"
	"github.com/tilegame/soundcore/pkg/audio/output"
)

var (
	// ErrNoDevice is returned by New without an output device
	ErrNoDevice = errors.New("music player needs an output device")

	// ErrNoSoundFont is returned by Play when no SoundFont is configured
	ErrNoSoundFont = errors.New("no soundfont configured")

	// ErrClosed is returned after Close
	ErrClosed = errors.New("music player closed")
)

// Config holds music player configuration
type Config struct {
	// Device provides the music channel. The player never closes it.
	Device output.Device

	// SoundFont is the .sf2 file used to render MIDI tracks
	SoundFont string

	// LoopGap is the silence between the end of a looping track and its restart (default: 3s)
	LoopGap time.Duration

	// Volume is the initial level from 0 to 1 (default: 1)
	Volume float64
}

// Player plays one track at a time
type Player struct {
	config Config

	sfOnce    sync.Once
	soundFont *midi.SoundFont
	sfErr     error

	// mu guards the beep chain, which the pump reads while callers adjust it
	mu       sync.Mutex
	streamer beep.StreamSeeker
	ctrl     *beep.Ctrl
	volume   *effects.Volume
	level    float64
	paused   bool
	cancel   context.CancelFunc
	done     chan struct{}
	closed   bool
}

// New creates a music player
func New(config Config) (*Player, error) {
	if config.Device == nil {
		return nil, ErrNoDevice
	}
	if config.LoopGap <= 0 {
		config.LoopGap = 3 * time.Second
	}
	if config.Volume <= 0 || config.Volume > 1 {
		config.Volume = 1
	}

	return &Player{
		config: config,
		level:  config.Volume,
	}, nil
}

// Play starts a MIDI track, replacing whatever is playing
func (p *Player) Play(path string, loop bool) error {
	sf, err := p.loadSoundFont()
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open track: %w", err)
	}

	streamer, _, err := midi.Decode(f, sf, beep.SampleRate(audio.PlaybackFormat.SampleRate))
	if err != nil {
		f.Close()
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}

	if err := p.start(streamer, loop, f); err != nil {
		f.Close()
		return err
	}

	log.Printf("Music: playing %s (loop=%v)", path, loop)
	return nil
}

func (p *Player) loadSoundFont() (*midi.SoundFont, error) {
	if p.config.SoundFont == "" {
		return nil, ErrNoSoundFont
	}

	p.sfOnce.Do(func() {
		f, err := os.Open(p.config.SoundFont)
		if err != nil {
			p.sfErr = fmt.Errorf("failed to open soundfont: %w", err)
			return
		}
		defer f.Close()

		p.soundFont, p.sfErr = midi.NewSoundFont(f)
		if p.sfErr != nil {
			p.sfErr = fmt.Errorf("failed to load soundfont: %w", p.sfErr)
		}
	})
	return p.soundFont, p.sfErr
}

// start plays a decoded stream; closer is closed when playback ends
func (p *Player) start(streamer beep.StreamSeeker, loop bool, closer io.Closer) error {
	p.Stop()

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}

	bufferSize := output.BufferSize(audio.PlaybackFormat, 100*time.Millisecond)
	ch, err := p.config.Device.OpenChannel(audio.PlaybackFormat, bufferSize)
	if err != nil {
		p.mu.Unlock()
		return fmt.Errorf("failed to open music channel: %w", err)
	}

	p.streamer = streamer
	p.volume = &effects.Volume{Streamer: streamer, Base: 2}
	p.applyVolume()
	p.ctrl = &beep.Ctrl{Streamer: p.volume, Paused: p.paused}

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan struct{})
	done := p.done
	p.mu.Unlock()

	go p.pump(ctx, ch, bufferSize/audio.PlaybackFormat.FrameSize(), loop, closer, done)
	return nil
}

// pump moves rendered samples into the channel until the track ends or is stopped
func (p *Player) pump(ctx context.Context, ch output.Channel, frames int, loop bool, closer io.Closer, done chan struct{}) {
	defer close(done)
	defer closer.Close()

	samples := make([][2]float64, frames)
	buf := make([]byte, frames*2)

	for {
		if ctx.Err() != nil {
			ch.Close()
			return
		}

		p.mu.Lock()
		n, ok := p.ctrl.Stream(samples)
		p.mu.Unlock()

		if n > 0 {
			for i := 0; i < n; i++ {
				mono := (samples[i][0] + samples[i][1]) / 2
				audio.PutInt16(buf, i*2, audio.FloatToInt16(mono))
			}
			if _, err := ch.Write(buf[:n*2]); err != nil {
				log.Printf("Music: channel write failed: %v", err)
				ch.Close()
				return
			}
		}
		if ok && n == len(samples) {
			continue
		}

		// End of track
		if !loop {
			if err := ch.Drain(); err != nil {
				log.Printf("Music: drain failed: %v", err)
			}
			ch.Close()
			return
		}

		select {
		case <-time.After(p.config.LoopGap):
		case <-ctx.Done():
			ch.Close()
			return
		}

		p.mu.Lock()
		err := p.streamer.Seek(0)
		p.mu.Unlock()
		if err != nil {
			log.Printf("Music: failed to restart track: %v", err)
			ch.Close()
			return
		}
	}
}

// Stop ends the current track and waits for its channel to close
func (p *Player) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel = nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Playing reports whether a track is running
func (p *Player) Playing() bool {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()

	if done == nil {
		return false
	}
	select {
	case <-done:
		return false
	default:
		return true
	}
}

// SetPaused pauses or resumes the current and any later track
func (p *Player) SetPaused(paused bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.paused = paused
	if p.ctrl != nil {
		p.ctrl.Paused = paused
	}
}

// IsPaused reports whether music is paused
func (p *Player) IsPaused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

// SetVolume sets the level from 0 (silent) to 1 (full)
func (p *Player) SetVolume(level float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.level = max(0, min(1, level))
	p.applyVolume()
}

// Volume returns the current level
func (p *Player) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.level
}

// applyVolume maps the linear level onto the base-2 volume effect. Caller holds mu.
func (p *Player) applyVolume() {
	if p.volume == nil {
		return
	}
	p.volume.Silent = p.level <= 0
	if p.level > 0 {
		p.volume.Volume = math.Log2(p.level)
	}
}

// Close stops playback. The device stays open.
func (p *Player) Close() error {
	p.Stop()

	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	return nil
}
