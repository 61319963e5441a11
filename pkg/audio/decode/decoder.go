// ABOUTME: Decoder interface and extension registry
// ABOUTME: Maps file extensions to container decoders producing native PCM
package decode

import (
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"sync"
)

var (
	// ErrDecode wraps every failure to turn a resource into a sample buffer
	ErrDecode = errors.New("decode failure")

	// ErrUnsupportedFormat is returned when no decoder handles a container
	ErrUnsupportedFormat = errors.New("unsupported container format")

	// ErrUnsupportedConversion is returned when decoded audio cannot be brought
	// to the requested format
	ErrUnsupportedConversion = errors.New("unsupported format conversion")

	// ErrNegativeLength is returned when a decoder reports a negative stream length
	ErrNegativeLength = errors.New("negative stream length")

	// ErrInvalidData is returned for content that does not match its container
	ErrInvalidData = errors.New("invalid audio data")
)

// Decoder decodes a complete container into native PCM samples
type Decoder interface {
	Decode(r io.ReadSeeker) (*PCM, error)
}

// DecoderFunc adapts a function to Decoder
type DecoderFunc func(r io.ReadSeeker) (*PCM, error)

// Decode calls f
func (f DecoderFunc) Decode(r io.ReadSeeker) (*PCM, error) {
	return f(r)
}

// Registry selects a decoder by file extension
type Registry struct {
	mu       sync.RWMutex
	decoders map[string]Decoder
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{decoders: make(map[string]Decoder)}
}

// DefaultRegistry returns a registry with every built-in container
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(".wav", WAVDecoder{})
	r.Register(".wave", WAVDecoder{})
	r.Register(".aif", AIFFDecoder{})
	r.Register(".aiff", AIFFDecoder{})
	r.Register(".mp3", MP3Decoder{})
	r.Register(".flac", FLACDecoder{})
	r.Register(".ogg", OggDecoder{})
	r.Register(".oga", VorbisDecoder{})
	r.Register(".opus", OpusDecoder{})
	raw, _ := NewPCM(rawFormat)
	r.Register(".raw", raw)
	r.Register(".pcm", raw)
	return r
}

// Register associates an extension (with or without the leading dot) with a decoder
func (r *Registry) Register(ext string, d Decoder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decoders[normalizeExt(ext)] = d
}

// Lookup returns the decoder for the extension of name
func (r *Registry) Lookup(name string) (Decoder, error) {
	ext := normalizeExt(path.Ext(name))

	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.decoders[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return d, nil
}

// Supports reports whether a decoder is registered for the extension of name
func (r *Registry) Supports(name string) bool {
	_, err := r.Lookup(name)
	return err == nil
}

// Extensions returns the registered extensions in sorted order
func (r *Registry) Extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exts := make([]string, 0, len(r.decoders))
	for ext := range r.decoders {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
