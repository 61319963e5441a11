// ABOUTME: AIFF container decoder
// ABOUTME: Decodes big-endian PCM AIFF files using go-audio/aiff
package decode

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"
	"github.com/tilegame/soundcore/pkg/audio"
)

const aiffReadSize = 4096

// AIFFDecoder decodes AIFF files
type AIFFDecoder struct{}

// Decode reads the whole file into native PCM
func (AIFFDecoder) Decode(r io.ReadSeeker) (*PCM, error) {
	d := aiff.NewDecoder(r)
	if !d.IsValidFile() {
		return nil, fmt.Errorf("%w: not an AIFF file", ErrInvalidData)
	}

	d.ReadInfo()
	format := d.Format()
	if format == nil {
		return nil, fmt.Errorf("%w: AIFF file has no COMM chunk", ErrInvalidData)
	}

	buf := &goaudio.IntBuffer{
		Data:   make([]int, aiffReadSize),
		Format: format,
	}

	var samples []int
	for {
		n, err := d.PCMBuffer(buf)
		samples = append(samples, buf.Data[:n]...)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to read AIFF samples: %w", err)
		}
		if n == 0 {
			break
		}
	}

	return &PCM{
		Format: audio.Format{
			SampleRate: format.SampleRate,
			BitDepth:   int(d.BitDepth),
			Channels:   format.NumChannels,
			Signed:     true,
			BigEndian:  true,
		},
		Samples: samples,
	}, nil
}
