// ABOUTME: MP3 audio decoder
// ABOUTME: Decodes complete MP3 files to 16-bit stereo PCM using go-mp3
package decode

import (
	"fmt"
	"io"

	"github.com/hajimehoshi/go-mp3"
	"github.com/tilegame/soundcore/pkg/audio"
)

// MP3Decoder decodes MPEG-1/2 Layer III files
type MP3Decoder struct{}

// Decode reads the whole file. go-mp3 always produces 16-bit stereo.
func (MP3Decoder) Decode(r io.ReadSeeker) (*PCM, error) {
	d, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create mp3 decoder: %w", err)
	}
	if d.Length() < 0 {
		return nil, fmt.Errorf("%w: mp3 reports %d bytes", ErrNegativeLength, d.Length())
	}

	data, err := io.ReadAll(d)
	if err != nil {
		return nil, fmt.Errorf("mp3 decode error: %w", err)
	}

	samples := make([]int, len(data)/2)
	for i := range samples {
		samples[i] = int(audio.Int16At(data, i*2))
	}

	return &PCM{
		Format: audio.Format{
			SampleRate: d.SampleRate(),
			BitDepth:   16,
			Channels:   2,
			Signed:     true,
		},
		Samples: samples,
	}, nil
}
