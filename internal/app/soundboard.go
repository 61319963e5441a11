// ABOUTME: Soundboard application tying the sound bank to the sound manager
// ABOUTME: Shared by the TUI, the remote control server and the CLI
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/tilegame/soundcore/pkg/audio"
	"github.com/tilegame/soundcore/pkg/audio/filter"
	"github.com/tilegame/soundcore/pkg/sound"
)

// ErrUnknownSound is returned when playing a name that is not in the bank
var ErrUnknownSound = errors.New("unknown sound")

// Pauser is anything that follows the global pause, such as the music player
type Pauser interface {
	SetPaused(paused bool)
}

// Config holds soundboard configuration
type Config struct {
	EchoDelay   int     // Echo delay in samples (default: 2000)
	EchoDecay   float64 // Echo feedback (default: 0.7)
	Listener    filter.Positioner
	MaxDistance float64 // Distance at which positioned sounds fade out (default: 400)
	Music       Pauser  // Paused and resumed together with the sounds
}

// Soundboard plays named sounds from a preloaded bank
type Soundboard struct {
	config  Config
	manager *sound.Manager

	mu    sync.RWMutex
	bank  map[string]*audio.SampleBuffer
	names []string
	loops map[string]*sound.Voice
}

// New creates an empty soundboard on top of a manager
func New(manager *sound.Manager, config Config) *Soundboard {
	if config.EchoDelay <= 0 {
		config.EchoDelay = 2000
	}
	if config.EchoDecay <= 0 || config.EchoDecay >= 1 {
		config.EchoDecay = 0.7
	}
	if config.MaxDistance <= 0 {
		config.MaxDistance = 400
	}

	return &Soundboard{
		config:  config,
		manager: manager,
		bank:    make(map[string]*audio.SampleBuffer),
		loops:   make(map[string]*sound.Voice),
	}
}

// LoadDir decodes every supported file in dir and adds it to the bank under
// its file name without extension
func (s *Soundboard) LoadDir(ctx context.Context, dir string) (int, error) {
	files, err := s.manager.Loader().Sounds(dir)
	if err != nil {
		return 0, err
	}

	bank, err := s.manager.Loader().Preload(ctx, files...)
	if err != nil {
		return 0, err
	}

	for file, buf := range bank {
		s.Add(soundName(file), buf)
	}
	log.Printf("Loaded %d sounds from %s", len(bank), dir)
	return len(bank), nil
}

// Add puts a buffer into the bank, replacing any sound of the same name
func (s *Soundboard) Add(name string, buf *audio.SampleBuffer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.bank[name]; !ok {
		s.names = append(s.names, name)
		sort.Strings(s.names)
	}
	s.bank[name] = buf
}

// Sounds returns the sorted sound names
func (s *Soundboard) Sounds() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.names...)
}

// Play plays a named sound and returns its voice ID
func (s *Soundboard) Play(name string, loop, echo bool) (string, error) {
	v, err := s.PlayAt(name, nil, loop, echo)
	if err != nil {
		return "", err
	}
	return v.ID(), nil
}

// PlayAt plays a named sound fading with its distance from the listener.
// A nil source plays at full volume.
func (s *Soundboard) PlayAt(name string, source filter.Positioner, loop, echo bool) (*sound.Voice, error) {
	s.mu.RLock()
	buf, ok := s.bank[name]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSound, name)
	}

	f, err := s.chain(source, echo)
	if err != nil {
		return nil, err
	}

	v, err := s.manager.PlayWith(buf, f, loop)
	if err != nil {
		return nil, err
	}

	if loop {
		s.mu.Lock()
		s.loops[v.ID()] = v
		s.mu.Unlock()
		go s.forgetLoop(v)
	}
	return v, nil
}

// chain builds a fresh filter chain for one voice, nil when nothing applies
func (s *Soundboard) chain(source filter.Positioner, echo bool) (filter.Filter, error) {
	var filters []filter.Filter

	if echo {
		e, err := filter.NewEcho(s.config.EchoDelay, s.config.EchoDecay)
		if err != nil {
			return nil, err
		}
		filters = append(filters, e)
	}
	if source != nil && s.config.Listener != nil {
		a, err := filter.NewAttenuation(source, s.config.Listener, s.config.MaxDistance)
		if err != nil {
			return nil, err
		}
		filters = append(filters, a)
	}

	switch len(filters) {
	case 0:
		return nil, nil
	case 1:
		return filters[0], nil
	default:
		return filter.NewSequence(filters...), nil
	}
}

func (s *Soundboard) forgetLoop(v *sound.Voice) {
	<-v.Done()
	s.mu.Lock()
	delete(s.loops, v.ID())
	s.mu.Unlock()
}

// StopLoops stops every looping sound and returns how many were stopped
func (s *Soundboard) StopLoops() int {
	s.mu.RLock()
	loops := make([]*sound.Voice, 0, len(s.loops))
	for _, v := range s.loops {
		loops = append(loops, v)
	}
	s.mu.RUnlock()

	for _, v := range loops {
		v.Stop()
	}
	return len(loops)
}

// Loops returns the number of looping sounds still playing
func (s *Soundboard) Loops() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.loops)
}

// SetPaused pauses or resumes every sound
func (s *Soundboard) SetPaused(paused bool) {
	s.manager.SetPaused(paused)
	if s.config.Music != nil {
		s.config.Music.SetPaused(paused)
	}
	log.Printf("Playback paused: %v", paused)
}

// Paused reports whether playback is paused
func (s *Soundboard) Paused() bool {
	return s.manager.IsPaused()
}

// Stats returns scheduler statistics
func (s *Soundboard) Stats() sound.Stats {
	return s.manager.Stats()
}

// soundName turns "sfx/Jump.wav" into "jump"
func soundName(file string) string {
	base := path.Base(file)
	return strings.ToLower(strings.TrimSuffix(base, path.Ext(base)))
}
