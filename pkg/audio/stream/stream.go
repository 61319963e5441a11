// ABOUTME: Playback streams over decoded sample buffers
// ABOUTME: Provides the plain and looping readers voices consume
package stream

import (
	"bytes"
	"io"

	"github.com/tilegame/soundcore/pkg/audio"
)

// NewReader returns a finite stream over the buffer's samples
func NewReader(buf *audio.SampleBuffer) *bytes.Reader {
	return bytes.NewReader(buf.Bytes())
}

// Looping replays a buffer forever. It never reports io.EOF unless the buffer
// is empty, so a voice playing it runs until it is stopped.
type Looping struct {
	data []byte
	pos  int
	laps int
}

// NewLooping creates an endless stream over the buffer's samples
func NewLooping(buf *audio.SampleBuffer) *Looping {
	return &Looping{data: buf.Bytes()}
}

// Read fills p completely, wrapping to the start of the buffer as often as needed
func (l *Looping) Read(p []byte) (int, error) {
	if len(l.data) == 0 {
		return 0, io.EOF
	}

	n := 0
	for n < len(p) {
		c := copy(p[n:], l.data[l.pos:])
		n += c
		l.pos += c
		if l.pos == len(l.data) {
			l.pos = 0
			l.laps++
		}
	}
	return n, nil
}

// Laps returns how many times the whole buffer has been read
func (l *Looping) Laps() int {
	return l.laps
}
