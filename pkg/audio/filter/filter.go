// ABOUTME: Filter interface for in-place processing of playback samples
// ABOUTME: Shared by echo, distance attenuation and filter sequences
package filter

import "errors"

// ErrInvalidParameter is returned when a filter is built with unusable settings
var ErrInvalidParameter = errors.New("invalid filter parameter")

// Filter transforms 16-bit signed little-endian mono samples in place.
//
// A filter is stateful and belongs to one voice at a time. Process receives the
// chunks of a stream in order; callers pass a sub-slice to filter only part of a
// buffer. A trailing odd byte is left untouched.
type Filter interface {
	// Process rewrites every whole sample in samples
	Process(samples []byte)

	// Reset clears internal state so the filter can be reused from the start
	Reset()

	// RemainingSize returns how many bytes of output the filter can still
	// produce after its input has ended (the echo tail)
	RemainingSize() int
}
