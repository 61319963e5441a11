// ABOUTME: Echo filter using a circular delay line
// ABOUTME: Feeds decayed past output back into the signal
package filter

import (
	"fmt"
	"math"

	"github.com/tilegame/soundcore/pkg/audio"
)

// Echo tails below this fraction of the original level count as silent
const echoFloor = 0.01

// Echo mixes a decayed copy of the output from delay samples ago into the signal
type Echo struct {
	delay []float64 // unrounded output, saturated to the int16 range
	pos   int
	decay float64
}

// NewEcho creates an echo with a delay of delaySamples samples. decay must be in (0, 1).
func NewEcho(delaySamples int, decay float64) (*Echo, error) {
	if delaySamples <= 0 {
		return nil, fmt.Errorf("%w: echo delay %d", ErrInvalidParameter, delaySamples)
	}
	if !(decay > 0 && decay < 1) {
		return nil, fmt.Errorf("%w: echo decay %v", ErrInvalidParameter, decay)
	}
	return &Echo{
		delay: make([]float64, delaySamples),
		decay: decay,
	}, nil
}

// Process adds the delayed signal to each sample and stores the result in the delay line
func (e *Echo) Process(samples []byte) {
	for i := 0; i+1 < len(samples); i += 2 {
		in := float64(audio.Int16At(samples, i))
		out := min(max(in+e.decay*e.delay[e.pos], math.MinInt16), math.MaxInt16)
		audio.PutInt16(samples, i, audio.ClampInt16(out))

		e.delay[e.pos] = out
		e.pos++
		if e.pos == len(e.delay) {
			e.pos = 0
		}
	}
}

// Reset clears the delay line
func (e *Echo) Reset() {
	clear(e.delay)
	e.pos = 0
}

// RemainingSize returns the bytes needed for the echo to decay below 1% of its level
func (e *Echo) RemainingSize() int {
	repeats := int(math.Ceil(math.Log(echoFloor) / math.Log(e.decay)))
	return len(e.delay) * 2 * repeats
}

// Delay returns the delay length in samples
func (e *Echo) Delay() int {
	return len(e.delay)
}

// Decay returns the feedback factor
func (e *Echo) Decay() float64 {
	return e.decay
}
