// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines Format, SampleBuffer and 16-bit sample helpers
// Package audio provides the fundamental audio types shared by the sound engine.
//
// This package defines:
//   - Format: describes a PCM layout (rate, bit depth, channels, sign, byte order)
//   - PlaybackFormat: 44.1kHz 16-bit mono signed little-endian, the only format voices play
//   - SampleBuffer: an immutable, fully decoded sound shared by concurrent voices
//   - NoSound: the empty sentinel buffer returned when a load falls back to nothing
//
// It also provides helpers for reading and writing 16-bit little-endian samples.
//
// Example:
//
//	buf, err := audio.NewSampleBuffer(data, audio.PlaybackFormat)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(buf.Duration())
package audio
