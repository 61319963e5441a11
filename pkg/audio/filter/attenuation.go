// ABOUTME: Distance attenuation filter driven by two moving positions
// ABOUTME: Scales volume linearly with distance and ramps between updates
package filter

import (
	"fmt"
	"math"

	"github.com/tilegame/soundcore/pkg/audio"
)

// Number of samples at the start of each chunk over which volume changes are ramped
const rampSamples = 500

// Attenuation lowers volume as the source moves away from the listener.
// Volume is 1 at distance 0 and falls linearly to 0 at maxDistance.
type Attenuation struct {
	source      Positioner
	listener    Positioner
	maxDistance float64
	lastVolume  float64
}

// NewAttenuation creates a distance filter. A nil source or listener makes the
// filter pass samples through unchanged.
func NewAttenuation(source, listener Positioner, maxDistance float64) (*Attenuation, error) {
	if !(maxDistance > 0) {
		return nil, fmt.Errorf("%w: max distance %v", ErrInvalidParameter, maxDistance)
	}
	return &Attenuation{
		source:      source,
		listener:    listener,
		maxDistance: maxDistance,
	}, nil
}

// Volume returns the target volume for the current positions
func (a *Attenuation) Volume() float64 {
	if a.source == nil || a.listener == nil {
		return 1
	}
	sx, sy := a.source.Position()
	lx, ly := a.listener.Position()
	distance := math.Hypot(sx-lx, sy-ly)

	volume := (a.maxDistance - distance) / a.maxDistance
	return math.Max(0, math.Min(1, volume))
}

// Process scales samples by the current volume. The first samples of every call
// move from the previous volume to the new one to avoid clicks.
func (a *Attenuation) Process(samples []byte) {
	if a.source == nil || a.listener == nil {
		return
	}

	target := a.Volume()
	last := a.lastVolume

	n := len(samples) / 2
	for i := 0; i < n; i++ {
		volume := target
		if i < rampSamples {
			volume = last + (target-last)*float64(i)/rampSamples
		}
		off := i * 2
		audio.PutInt16(samples, off, audio.ClampInt16(float64(audio.Int16At(samples, off))*volume))
	}

	a.lastVolume = target
}

// Reset forgets the previous volume so playback fades in from silence
func (a *Attenuation) Reset() {
	a.lastVolume = 0
}

// RemainingSize is always zero; attenuation produces no tail
func (a *Attenuation) RemainingSize() int {
	return 0
}
