// ABOUTME: Ogg Opus audio decoder
// ABOUTME: Decodes complete Opus files to 48kHz 16-bit PCM using libopusfile
package decode

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/tilegame/soundcore/pkg/audio"
	"gopkg.in/hraban/opus.v2"
)

const (
	// Opus always decodes at 48kHz
	opusSampleRate = 48000

	// Max frame size: 120ms at 48kHz
	opusMaxFrame = 5760

	// Channel count offset inside the OpusHead packet
	opusChannelOffset = 9
)

var opusHeadMagic = []byte("OpusHead")

// OpusDecoder decodes Ogg Opus files
type OpusDecoder struct{}

// Decode reads the whole file into 48kHz PCM
func (OpusDecoder) Decode(r io.ReadSeeker) (*PCM, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read opus data: %w", err)
	}

	channels, err := opusChannels(data)
	if err != nil {
		return nil, err
	}

	stream, err := opus.NewStream(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create opus stream: %w", err)
	}
	defer stream.Close()

	pcm16 := make([]int16, opusMaxFrame*channels)
	var samples []int
	for {
		n, err := stream.Read(pcm16)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("opus decode failed: %w", err)
		}
		if n == 0 {
			break
		}
		for _, s := range pcm16[:n*channels] {
			samples = append(samples, int(s))
		}
	}

	return &PCM{
		Format: audio.Format{
			SampleRate: opusSampleRate,
			BitDepth:   16,
			Channels:   channels,
			Signed:     true,
		},
		Samples: samples,
	}, nil
}

// opusChannels reads the output channel count from the OpusHead packet
func opusChannels(data []byte) (int, error) {
	idx := bytes.Index(data, opusHeadMagic)
	if idx < 0 || idx+opusChannelOffset >= len(data) {
		return 0, fmt.Errorf("%w: missing OpusHead", ErrInvalidData)
	}
	channels := int(data[idx+opusChannelOffset])
	if channels == 0 {
		return 0, fmt.Errorf("%w: OpusHead declares no channels", ErrInvalidData)
	}
	return channels, nil
}
