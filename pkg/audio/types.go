// ABOUTME: Audio type definitions
// ABOUTME: Defines the playback format, immutable sample buffers and 16-bit sample helpers
package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	// ErrMisaligned is returned when sample data does not hold a whole number of frames
	ErrMisaligned = errors.New("sample data is not frame aligned")

	// ErrInvalidFormat is returned for formats with no channels, rate or bit depth
	ErrInvalidFormat = errors.New("invalid audio format")
)

// Format describes a PCM sample layout
type Format struct {
	SampleRate int
	BitDepth   int
	Channels   int
	Signed     bool
	BigEndian  bool
}

// PlaybackFormat is the single format every voice and device channel works in
var PlaybackFormat = Format{
	SampleRate: 44100,
	BitDepth:   16,
	Channels:   1,
	Signed:     true,
	BigEndian:  false,
}

// BytesPerSample returns the storage size of one sample of one channel
func (f Format) BytesPerSample() int {
	return (f.BitDepth + 7) / 8
}

// FrameSize returns the number of bytes holding one sample for every channel
func (f Format) FrameSize() int {
	return f.BytesPerSample() * f.Channels
}

// BytesPerSecond returns the data rate of the format
func (f Format) BytesPerSecond() int {
	return f.FrameSize() * f.SampleRate
}

// Validate reports whether the format can describe real audio
func (f Format) Validate() error {
	if f.SampleRate <= 0 || f.Channels <= 0 || f.BitDepth <= 0 || f.BitDepth > 32 {
		return fmt.Errorf("%w: %dHz %dch %d-bit", ErrInvalidFormat, f.SampleRate, f.Channels, f.BitDepth)
	}
	return nil
}

func (f Format) String() string {
	sign := "unsigned"
	if f.Signed {
		sign = "signed"
	}
	order := "LE"
	if f.BigEndian {
		order = "BE"
	}
	return fmt.Sprintf("%dHz %d-bit %dch %s %s", f.SampleRate, f.BitDepth, f.Channels, sign, order)
}

// SampleBuffer is a fully decoded sound held in memory. It is never modified
// after construction, so one buffer can feed any number of concurrent voices.
type SampleBuffer struct {
	samples []byte
	format  Format
}

// NoSound is the empty buffer handed out when a sound could not be loaded
var NoSound = &SampleBuffer{format: PlaybackFormat}

// NewSampleBuffer wraps samples in the given format. The slice is owned by the
// buffer afterwards and must not be modified by the caller.
func NewSampleBuffer(samples []byte, format Format) (*SampleBuffer, error) {
	if err := format.Validate(); err != nil {
		return nil, err
	}
	if len(samples)%format.FrameSize() != 0 {
		return nil, fmt.Errorf("%w: %d bytes with %d-byte frames", ErrMisaligned, len(samples), format.FrameSize())
	}
	return &SampleBuffer{samples: samples, format: format}, nil
}

// Bytes returns the raw sample data. Callers must treat it as read-only.
func (b *SampleBuffer) Bytes() []byte {
	if b == nil {
		return nil
	}
	return b.samples
}

// Format returns the layout of the sample data
func (b *SampleBuffer) Format() Format {
	if b == nil {
		return PlaybackFormat
	}
	return b.format
}

// Len returns the size of the sample data in bytes
func (b *SampleBuffer) Len() int {
	if b == nil {
		return 0
	}
	return len(b.samples)
}

// Frames returns the number of sample frames
func (b *SampleBuffer) Frames() int {
	if b == nil {
		return 0
	}
	return len(b.samples) / b.format.FrameSize()
}

// Duration returns the playing time of the buffer
func (b *SampleBuffer) Duration() time.Duration {
	if b == nil || b.format.SampleRate == 0 {
		return 0
	}
	return time.Duration(b.Frames()) * time.Second / time.Duration(b.format.SampleRate)
}

// Playable reports whether the buffer holds any audio
func (b *SampleBuffer) Playable() bool {
	return b != nil && len(b.samples) > 0
}

// Int16At reads the little-endian 16-bit sample starting at byte offset i
func Int16At(b []byte, i int) int16 {
	return int16(binary.LittleEndian.Uint16(b[i:]))
}

// PutInt16 stores v as a little-endian 16-bit sample at byte offset i
func PutInt16(b []byte, i int, v int16) {
	binary.LittleEndian.PutUint16(b[i:], uint16(v))
}

// ClampInt16 rounds v to the nearest integer and saturates it to the int16 range
func ClampInt16(v float64) int16 {
	v = math.Round(v)
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}

// FloatToInt16 converts a normalized [-1, 1] sample to 16-bit
func FloatToInt16(v float64) int16 {
	return ClampInt16(v * math.MaxInt16)
}
