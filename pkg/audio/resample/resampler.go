// ABOUTME: Linear interpolation sample rate conversion
// ABOUTME: Used by the loader to bring whole decoded sounds to the playback rate
package resample

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidRate is returned for non-positive rates or channel counts
var ErrInvalidRate = errors.New("invalid resample parameters")

// Linear converts interleaved samples from one rate to another. Past the last
// input frame the final frame is held, so a sound keeps its tail.
func Linear(samples []int32, channels, from, to int) ([]int32, error) {
	if channels <= 0 || from <= 0 || to <= 0 {
		return nil, fmt.Errorf("%w: %d channels, %d Hz to %d Hz", ErrInvalidRate, channels, from, to)
	}

	frames := len(samples) / channels
	if from == to {
		return append([]int32(nil), samples[:frames*channels]...), nil
	}

	outFrames := OutputFrames(frames, from, to)
	out := make([]int32, outFrames*channels)
	step := float64(from) / float64(to)

	for i := 0; i < outFrames; i++ {
		// Computed per frame so long sounds don't drift
		pos := float64(i) * step
		idx := min(int(pos), frames-1)
		frac := pos - float64(idx)
		next := min(idx+1, frames-1)

		for ch := 0; ch < channels; ch++ {
			a := float64(samples[idx*channels+ch])
			b := float64(samples[next*channels+ch])
			out[i*channels+ch] = int32(math.Round(a + (b-a)*frac))
		}
	}
	return out, nil
}

// OutputFrames returns how many frames Linear produces for frames input frames
func OutputFrames(frames, from, to int) int {
	if frames <= 0 || from <= 0 || to <= 0 {
		return 0
	}
	return (frames*to + from - 1) / from
}
