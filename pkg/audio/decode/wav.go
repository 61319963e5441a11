// ABOUTME: WAV container decoder
// ABOUTME: Decodes integer PCM WAV files using go-audio/wav
package decode

import (
	"fmt"
	"io"

	"github.com/go-audio/wav"
	"github.com/tilegame/soundcore/pkg/audio"
)

const (
	wavFormatPCM        = 1
	wavFormatExtensible = 0xFFFE
)

// WAVDecoder decodes RIFF/WAVE files holding integer PCM
type WAVDecoder struct{}

// Decode reads the whole file into native PCM
func (WAVDecoder) Decode(r io.ReadSeeker) (*PCM, error) {
	d := wav.NewDecoder(r)
	if !d.IsValidFile() {
		return nil, fmt.Errorf("%w: not a WAV file", ErrInvalidData)
	}
	if d.WavAudioFormat != wavFormatPCM && d.WavAudioFormat != wavFormatExtensible {
		return nil, fmt.Errorf("%w: WAV encoding %#x", ErrUnsupportedFormat, d.WavAudioFormat)
	}

	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to read WAV samples: %w", err)
	}

	// 8-bit WAV data is unsigned, wider depths are signed
	return &PCM{
		Format: audio.Format{
			SampleRate: int(d.SampleRate),
			BitDepth:   int(d.BitDepth),
			Channels:   int(d.NumChans),
			Signed:     d.BitDepth > 8,
		},
		Samples: buf.Data,
	}, nil
}
