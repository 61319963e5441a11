// ABOUTME: Native PCM container and conversion to the playback format
// ABOUTME: Also decodes headerless raw PCM files of a known layout
package decode

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/tilegame/soundcore/pkg/audio"
	"github.com/tilegame/soundcore/pkg/audio/resample"
)

// Layout of headerless .raw and .pcm files
var rawFormat = audio.PlaybackFormat

// PCM holds decoded interleaved samples at their native bit depth
type PCM struct {
	Format  audio.Format
	Samples []int
}

// Frames returns the number of complete frames
func (p *PCM) Frames() int {
	if p == nil || p.Format.Channels <= 0 {
		return 0
	}
	return len(p.Samples) / p.Format.Channels
}

// Convert brings decoded audio to target: 16-bit signed samples, mixed down to
// mono when target has one channel, resampled to the target rate.
func Convert(p *PCM, target audio.Format) (*audio.SampleBuffer, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: no samples", ErrInvalidData)
	}
	if err := p.Format.Validate(); err != nil {
		return nil, fmt.Errorf("%w: source %w", ErrUnsupportedConversion, err)
	}
	if err := target.Validate(); err != nil {
		return nil, fmt.Errorf("%w: target %w", ErrUnsupportedConversion, err)
	}
	if target.BitDepth != 16 || !target.Signed {
		return nil, fmt.Errorf("%w: cannot produce %s", ErrUnsupportedConversion, target)
	}
	if target.Channels != 1 && target.Channels != p.Format.Channels {
		return nil, fmt.Errorf("%w: %d channels to %d", ErrUnsupportedConversion, p.Format.Channels, target.Channels)
	}

	samples := mix(p, target.Channels)

	if p.Format.SampleRate != target.SampleRate {
		var err error
		samples, err = resample.Linear(samples, target.Channels, p.Format.SampleRate, target.SampleRate)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnsupportedConversion, err)
		}
	}

	order := binary.ByteOrder(binary.LittleEndian)
	if target.BigEndian {
		order = binary.BigEndian
	}
	data := make([]byte, len(samples)*2)
	for i, s := range samples {
		order.PutUint16(data[i*2:], uint16(audio.ClampInt16(float64(s))))
	}

	return audio.NewSampleBuffer(data, target)
}

// mix converts samples to 16-bit range and averages channels down to outChannels
func mix(p *PCM, outChannels int) []int32 {
	channels := p.Format.Channels
	frames := p.Frames()
	out := make([]int32, frames*outChannels)

	for f := 0; f < frames; f++ {
		frame := p.Samples[f*channels : (f+1)*channels]
		if outChannels == 1 {
			sum := 0.0
			for _, s := range frame {
				sum += float64(to16(s, p.Format))
			}
			out[f] = int32(math.Round(sum / float64(channels)))
			continue
		}
		for ch, s := range frame {
			out[f*outChannels+ch] = to16(s, p.Format)
		}
	}
	return out
}

// to16 scales a sample of any bit depth to the signed 16-bit range
func to16(v int, f audio.Format) int32 {
	if !f.Signed {
		v -= 1 << (f.BitDepth - 1)
	}
	switch {
	case f.BitDepth > 16:
		return int32(v >> (f.BitDepth - 16))
	case f.BitDepth < 16:
		return int32(v << (16 - f.BitDepth))
	}
	return int32(v)
}

// PCMDecoder decodes headerless PCM data of a fixed layout
type PCMDecoder struct {
	format audio.Format
}

// NewPCM creates a raw PCM decoder for data laid out in format
func NewPCM(format audio.Format) (*PCMDecoder, error) {
	if err := format.Validate(); err != nil {
		return nil, err
	}
	if format.BitDepth%8 != 0 {
		return nil, fmt.Errorf("unsupported bit depth for raw PCM: %d", format.BitDepth)
	}
	return &PCMDecoder{format: format}, nil
}

// Decode reads every whole frame of raw sample data
func (d *PCMDecoder) Decode(r io.ReadSeeker) (*PCM, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read raw PCM: %w", err)
	}

	bps := d.format.BytesPerSample()
	n := len(data) / d.format.FrameSize() * d.format.Channels
	samples := make([]int, n)
	for i := 0; i < n; i++ {
		samples[i] = readSample(data[i*bps:(i+1)*bps], d.format)
	}

	return &PCM{Format: d.format, Samples: samples}, nil
}

// readSample assembles one sample from its bytes and sign-extends it
func readSample(b []byte, f audio.Format) int {
	var u uint32
	for i := range b {
		shift := uint(i) * 8
		if f.BigEndian {
			shift = uint(len(b)-1-i) * 8
		}
		u |= uint32(b[i]) << shift
	}
	if !f.Signed {
		return int(u)
	}
	bits := uint(len(b) * 8)
	return int(int32(u<<(32-bits)) >> (32 - bits))
}
