// ABOUTME: Errors reported by the sound scheduler and manager
// ABOUTME: All are sentinels meant to be checked with errors.Is
package sound

import "errors"

var (
	// ErrChannelUnavailable is the result of a voice whose device channel could not be opened
	ErrChannelUnavailable = errors.New("output channel unavailable")

	// ErrQueueSaturated is returned by Submit when the voice queue is full
	ErrQueueSaturated = errors.New("voice queue saturated")

	// ErrInterrupted is the result of a voice stopped before its stream ended
	ErrInterrupted = errors.New("voice interrupted")

	// ErrUnplayable is returned when asked to play an empty or missing buffer
	ErrUnplayable = errors.New("sample buffer is not playable")

	// ErrClosed is returned after the scheduler or manager has been closed
	ErrClosed = errors.New("sound system closed")
)
