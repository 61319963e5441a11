// ABOUTME: Sound asset checker and remote trigger tool
// ABOUTME: Decodes a sound directory, plays single sounds and pokes running soundboards
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/tilegame/soundcore/internal/client"
	"github.com/tilegame/soundcore/internal/discovery"
	"github.com/tilegame/soundcore/pkg/audio"
	"github.com/tilegame/soundcore/pkg/audio/decode"
	"github.com/tilegame/soundcore/pkg/audio/filter"
	"github.com/tilegame/soundcore/pkg/audio/output"
	"github.com/tilegame/soundcore/pkg/sound"
)

var (
	dir      = flag.String("dir", "assets/sfx", "Sound directory")
	play     = flag.String("play", "", "Play one sound from -dir and exit")
	echo     = flag.Bool("echo", false, "Play with echo")
	distance = flag.Float64("distance", 0, "Play as if the source were this far from the listener (max 400)")
	noAudio  = flag.Bool("no-audio", false, "Play into memory instead of the sound card")
	find     = flag.Bool("find", false, "Look for soundboards on the local network")
	remoteTo = flag.String("remote", "", "Soundboard address (host:port) for -trigger")
	trigger  = flag.String("trigger", "", "Sound to play on the remote soundboard")
	loop     = flag.Bool("loop", false, "Loop the triggered sound")
)

func main() {
	flag.Parse()
	log.SetFlags(log.Ltime)

	var err error
	switch {
	case *find:
		err = findSoundboards(5 * time.Second)
	case *trigger != "":
		err = triggerRemote(*remoteTo, *trigger)
	case *play != "":
		err = playOne(*dir, *play)
	default:
		err = checkDir(*dir)
	}
	if err != nil {
		log.Fatalf("soundcheck: %v", err)
	}
}

// checkDir decodes every sound and prints a summary table
func checkDir(dir string) error {
	loader := decode.NewLoader(os.DirFS(dir), decode.LoaderConfig{})
	names, err := loader.Sounds(".")
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SOUND\tFRAMES\tDURATION\tPEAK\tSTATUS")

	failed := 0
	for _, name := range names {
		buf, err := loader.Load(name)
		if err != nil {
			failed++
			fmt.Fprintf(w, "%s\t-\t-\t-\t%v\n", name, err)
			continue
		}
		fmt.Fprintf(w, "%s\t%d\t%v\t%.1f dBFS\tok\n",
			name, buf.Frames(), buf.Duration().Round(time.Millisecond), peakDBFS(buf))
	}
	w.Flush()

	if failed > 0 {
		return fmt.Errorf("%d of %d sounds failed to decode", failed, len(names))
	}
	return nil
}

// playOne plays a sound through a fresh manager and waits for it to end
func playOne(dir, name string) error {
	var dev output.Device
	if *noAudio {
		dev = output.NewMemory(output.MemoryConfig{Realtime: true})
	}

	mgr, err := sound.New(sound.Config{Device: dev, FS: os.DirFS(dir), MaxVoices: 1})
	if err != nil {
		return err
	}
	defer mgr.Close()

	buf, err := mgr.Load(name)
	if err != nil {
		return err
	}

	f, err := buildFilter(*echo, *distance)
	if err != nil {
		return err
	}

	v, err := mgr.PlayWith(buf, f, false)
	if err != nil {
		return err
	}
	log.Printf("Playing %s (%v)", path.Base(name), buf.Duration().Round(time.Millisecond))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := v.Wait(ctx); err != nil {
		v.Stop()
		return err
	}
	log.Printf("Done: %+v", mgr.Stats())
	return nil
}

// buildFilter returns the filter chain for the -echo and -distance flags
func buildFilter(withEcho bool, dist float64) (filter.Filter, error) {
	var filters []filter.Filter
	if withEcho {
		e, err := filter.NewEcho(2000, 0.7)
		if err != nil {
			return nil, err
		}
		filters = append(filters, e)
	}
	if dist > 0 {
		a, err := filter.NewAttenuation(filter.NewPoint(dist, 0), filter.NewPoint(0, 0), 400)
		if err != nil {
			return nil, err
		}
		filters = append(filters, a)
	}
	if len(filters) == 0 {
		return nil, nil
	}
	return filter.NewSequence(filters...), nil
}

// findSoundboards prints soundboards advertised over mDNS
func findSoundboards(timeout time.Duration) error {
	found := discovery.Lookup(timeout)
	if len(found) == 0 {
		return fmt.Errorf("no soundboard found after %v", timeout)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ADDRESS\tNAME\tVERSION")
	for _, s := range found {
		fmt.Fprintf(w, "%s\t%s\t%s\n", s.Addr(), s.Name, s.Version)
	}
	return w.Flush()
}

// triggerRemote plays a sound on a running soundboard
func triggerRemote(addr, name string) error {
	if addr == "" {
		return fmt.Errorf("-trigger needs -remote host:port")
	}

	c, err := client.Dial(addr)
	if err != nil {
		return err
	}
	defer c.Close()

	played, err := c.Play(name, *loop, *echo)
	if err != nil {
		return err
	}
	fmt.Printf("%s playing as voice %s\n", played.Sound, played.Voice)
	return nil
}

// peakDBFS returns the loudest sample relative to full scale
func peakDBFS(buf *audio.SampleBuffer) float64 {
	data := buf.Bytes()
	peak := 0
	for i := 0; i+1 < len(data); i += 2 {
		v := int(audio.Int16At(data, i))
		if v < 0 {
			v = -v
		}
		peak = max(peak, v)
	}
	return dbfs(peak)
}
