// ABOUTME: Stream package providing the byte streams voices read from
// ABOUTME: Plain, looping and filtered readers over sample buffers
// Package stream builds the io.Reader a voice pulls playback samples from.
//
// Streams are created per play request and are owned by a single voice:
//   - NewReader: plays a buffer once
//   - NewLooping: repeats a buffer until the voice is stopped
//   - NewFiltered: runs a filter.Filter over another stream and its echo tail
//
// Example:
//
//	src := stream.NewFiltered(stream.NewReader(buf), echo)
//	n, err := src.Read(chunk)
package stream
