// ABOUTME: Audio resampling package using linear interpolation
// ABOUTME: Converts whole sounds between sample rates
// Package resample converts decoded sounds to the playback sample rate.
//
// Example:
//
//	mono44k, err := resample.Linear(samples, 1, 48000, 44100)
package resample
