// ABOUTME: FLAC audio decoder
// ABOUTME: Decodes complete FLAC files frame by frame using mewkiz/flac
package decode

import (
	"errors"
	"fmt"
	"io"

	"github.com/mewkiz/flac"
	"github.com/tilegame/soundcore/pkg/audio"
)

// FLACDecoder decodes FLAC files
type FLACDecoder struct{}

// Decode parses every frame and interleaves the subframe samples
func (FLACDecoder) Decode(r io.ReadSeeker) (*PCM, error) {
	stream, err := flac.New(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode FLAC: %w", err)
	}
	defer stream.Close()

	info := stream.Info
	channels := int(info.NChannels)
	samples := make([]int, 0, int(info.NSamples)*channels)

	for {
		frame, err := stream.ParseNext()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to parse FLAC frame: %w", err)
		}

		for i := 0; i < int(frame.BlockSize); i++ {
			for ch := 0; ch < channels; ch++ {
				samples = append(samples, int(frame.Subframes[ch].Samples[i]))
			}
		}
	}

	return &PCM{
		Format: audio.Format{
			SampleRate: int(info.SampleRate),
			BitDepth:   int(info.BitsPerSample),
			Channels:   channels,
			Signed:     true,
		},
		Samples: samples,
	}, nil
}
