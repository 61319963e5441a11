// ABOUTME: Stream decorator that runs a filter over everything read
// ABOUTME: Keeps producing silence through the filter until its tail is spent
package stream

import (
	"errors"
	"io"

	"github.com/tilegame/soundcore/pkg/audio"
	"github.com/tilegame/soundcore/pkg/audio/filter"
)

// Filtered applies a filter to a source stream. After the source ends it feeds
// silence through the filter for RemainingSize bytes so echoes ring out.
type Filtered struct {
	src       io.Reader
	filter    filter.Filter
	frameSize int
	draining  bool
	remaining int
}

// NewFiltered wraps src. The filter is reset before first use.
func NewFiltered(src io.Reader, f filter.Filter) *Filtered {
	f.Reset()
	return &Filtered{
		src:       src,
		filter:    f,
		frameSize: audio.PlaybackFormat.FrameSize(),
	}
}

// Read returns filtered samples. Reads are shortened to whole frames.
func (s *Filtered) Read(p []byte) (int, error) {
	p = p[:len(p)-len(p)%s.frameSize]
	if len(p) == 0 {
		return 0, nil
	}

	if !s.draining {
		n, err := s.src.Read(p)
		if n > 0 {
			s.filter.Process(p[:n])
		}
		switch {
		case errors.Is(err, io.EOF):
			s.startDrain()
			if n > 0 {
				return n, nil
			}
		case err != nil:
			return n, err
		default:
			return n, nil
		}
	}

	if s.remaining <= 0 {
		return 0, io.EOF
	}

	n := min(len(p), s.remaining)
	clear(p[:n])
	s.filter.Process(p[:n])
	s.remaining -= n
	return n, nil
}

func (s *Filtered) startDrain() {
	s.draining = true
	remaining := s.filter.RemainingSize()
	s.remaining = remaining - remaining%s.frameSize
}
