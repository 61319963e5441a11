// ABOUTME: Ogg Vorbis decoder and Ogg codec sniffing
// ABOUTME: Routes .ogg files to the Vorbis or Opus decoder by their first header
package decode

import (
	"bytes"
	"fmt"
	"io"

	"github.com/jfreymuth/oggvorbis"
	"github.com/tilegame/soundcore/pkg/audio"
)

// The identification header sits in the first Ogg page
const oggSniffSize = 128

// VorbisDecoder decodes Ogg Vorbis files
type VorbisDecoder struct{}

// Decode reads the whole file and converts float samples to 16-bit
func (VorbisDecoder) Decode(r io.ReadSeeker) (*PCM, error) {
	data, format, err := oggvorbis.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode vorbis: %w", err)
	}

	samples := make([]int, len(data))
	for i, s := range data {
		samples[i] = int(audio.FloatToInt16(float64(s)))
	}

	return &PCM{
		Format: audio.Format{
			SampleRate: format.SampleRate,
			BitDepth:   16,
			Channels:   format.Channels,
			Signed:     true,
		},
		Samples: samples,
	}, nil
}

// OggDecoder picks Opus or Vorbis from the stream's identification header
type OggDecoder struct{}

// Decode sniffs the codec and rewinds before decoding
func (OggDecoder) Decode(r io.ReadSeeker) (*PCM, error) {
	head := make([]byte, oggSniffSize)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.ErrUnexpectedEOF {
		return nil, fmt.Errorf("failed to read ogg header: %w", err)
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to rewind ogg stream: %w", err)
	}

	if bytes.Contains(head[:n], opusHeadMagic) {
		return OpusDecoder{}.Decode(r)
	}
	return VorbisDecoder{}.Decode(r)
}
