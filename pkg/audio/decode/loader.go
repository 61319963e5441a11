// ABOUTME: Sound loader reading containers from a filesystem
// ABOUTME: Decodes eagerly into playback-format sample buffers, with fallbacks and bank preloading
package decode

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"log"
	"sort"
	"sync"

	"github.com/tilegame/soundcore/pkg/audio"
	"golang.org/x/sync/errgroup"
)

// LoaderConfig holds loader configuration
type LoaderConfig struct {
	Registry    *Registry    // Decoders by extension (default: DefaultRegistry)
	Target      audio.Format // Output format (default: audio.PlaybackFormat)
	Parallelism int          // Concurrent decodes in Preload (default: 4)
}

// Loader turns named resources into sample buffers
type Loader struct {
	fsys     fs.FS
	registry *Registry
	target   audio.Format
	parallel int
}

// NewLoader creates a loader reading from fsys
func NewLoader(fsys fs.FS, config LoaderConfig) *Loader {
	if config.Registry == nil {
		config.Registry = DefaultRegistry()
	}
	if config.Target == (audio.Format{}) {
		config.Target = audio.PlaybackFormat
	}
	if config.Parallelism <= 0 {
		config.Parallelism = 4
	}

	return &Loader{
		fsys:     fsys,
		registry: config.Registry,
		target:   config.Target,
		parallel: config.Parallelism,
	}
}

// Load decodes the named resource completely and converts it to the target
// format. Every failure wraps ErrDecode, including content with no frames.
func (l *Loader) Load(name string) (*audio.SampleBuffer, error) {
	dec, err := l.registry.Lookup(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecode, name, err)
	}

	data, err := fs.ReadFile(l.fsys, name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecode, name, err)
	}

	pcm, err := dec.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecode, name, err)
	}

	buf, err := Convert(pcm, l.target)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecode, name, err)
	}
	if !buf.Playable() {
		return nil, fmt.Errorf("%w: %s: %w: no audio frames", ErrDecode, name, ErrInvalidData)
	}

	log.Printf("Loaded %s: %s -> %d bytes (%v)", name, pcm.Format, buf.Len(), buf.Duration())
	return buf, nil
}

// LoadOr loads the named resource, returning fallback if that fails. A nil
// fallback yields audio.NoSound.
func (l *Loader) LoadOr(name string, fallback *audio.SampleBuffer) *audio.SampleBuffer {
	buf, err := l.Load(name)
	if err == nil {
		return buf
	}

	log.Printf("Failed to load %s, using fallback: %v", name, err)
	if fallback == nil {
		return audio.NoSound
	}
	return fallback
}

// Preload decodes several resources concurrently. The first failure cancels the
// remaining work and is returned.
func (l *Loader) Preload(ctx context.Context, names ...string) (map[string]*audio.SampleBuffer, error) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(l.parallel)

	var mu sync.Mutex
	bank := make(map[string]*audio.SampleBuffer, len(names))

	for _, name := range names {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			buf, err := l.Load(name)
			if err != nil {
				return err
			}
			mu.Lock()
			bank[name] = buf
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return bank, nil
}

// Sounds lists the decodable files directly inside dir
func (l *Loader) Sounds(dir string) ([]string, error) {
	entries, err := fs.ReadDir(l.fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list sounds: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !l.registry.Supports(e.Name()) {
			continue
		}
		name := e.Name()
		if dir != "." {
			name = dir + "/" + name
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
