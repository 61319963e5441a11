// ABOUTME: Global pause gate shared by every voice
// ABOUTME: Voices block on it before each chunk while playback is paused
package sound

import (
	"context"
	"sync"
)

// PauseGate holds voices back while paused and releases them all on resume
type PauseGate struct {
	mu     sync.Mutex
	paused bool
	resume chan struct{}
}

// NewPauseGate creates an open gate
func NewPauseGate() *PauseGate {
	return &PauseGate{}
}

// SetPaused closes or opens the gate. Opening wakes every waiting voice.
func (g *PauseGate) SetPaused(paused bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if paused == g.paused {
		return
	}
	g.paused = paused
	if paused {
		g.resume = make(chan struct{})
	} else {
		close(g.resume)
	}
}

// Paused reports whether the gate is closed
func (g *PauseGate) Paused() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.paused
}

// Wait returns immediately when the gate is open, otherwise blocks until it
// opens or ctx is done
func (g *PauseGate) Wait(ctx context.Context) error {
	for {
		g.mu.Lock()
		if !g.paused {
			g.mu.Unlock()
			return nil
		}
		resume := g.resume
		g.mu.Unlock()

		select {
		case <-resume:
			// Re-check: the gate may have been closed again before we woke
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
