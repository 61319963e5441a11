// ABOUTME: Filter package for in-place DSP on playback samples
// ABOUTME: Provides Echo, Attenuation and Sequence behind a single Filter interface
// Package filter implements the DSP stage applied to a voice while it streams.
//
// Every filter works on 16-bit signed little-endian mono samples in place and
// reports how much tail output it still owes once its input ends:
//   - Echo: circular delay line with decaying feedback
//   - Attenuation: volume from the distance between a source and a listener
//   - Sequence: several filters applied in order
//
// Example:
//
//	echo, err := filter.NewEcho(11025, 0.6)
//	if err != nil {
//	    return err
//	}
//	fade, err := filter.NewAttenuation(enemy, player, 400)
//	if err != nil {
//	    return err
//	}
//	chain := filter.NewSequence(echo, fade)
package filter
