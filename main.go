// ABOUTME: Entry point for the tilegame soundboard
// ABOUTME: Parses CLI flags and wires sounds, music, TUI and remote control together
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/tilegame/soundcore/internal/app"
	"github.com/tilegame/soundcore/internal/discovery"
	"github.com/tilegame/soundcore/internal/remote"
	"github.com/tilegame/soundcore/internal/ui"
	"github.com/tilegame/soundcore/internal/version"
	"github.com/tilegame/soundcore/pkg/audio/output"
	"github.com/tilegame/soundcore/pkg/music"
	"github.com/tilegame/soundcore/pkg/sound"
)

var (
	soundsDir   = flag.String("sounds", "assets/sfx", "Directory of sound effects to load")
	voices      = flag.Int("voices", 32, "Maximum simultaneous sound effects")
	queueDepth  = flag.Int("queue", 64, "Plays allowed to wait for a free voice")
	maxChannels = flag.Int("max-channels", 0, "Output channels (default: voices + 1 for music)")
	musicFile   = flag.String("music", "", "MIDI file to loop in the background")
	soundFont   = flag.String("soundfont", "assets/gm.sf2", "SoundFont used to render music")
	remotePort  = flag.Int("remote-port", 8930, "Port for the remote control API")
	noRemote    = flag.Bool("no-remote", false, "Disable the remote control API")
	noMDNS      = flag.Bool("no-mdns", false, "Disable mDNS advertisement")
	noTUI       = flag.Bool("no-tui", false, "Disable TUI, use streaming logs instead")
	noAudio     = flag.Bool("no-audio", false, "Play into memory instead of the sound card")
	logFile     = flag.String("log-file", "soundboard.log", "Log file path")
)

func main() {
	flag.Parse()

	useTUI := !*noTUI

	// Set up logging
	f, err := os.OpenFile(*logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer func() { _ = f.Close() }()

	if useTUI {
		// TUI mode: log only to file
		log.SetOutput(f)
	} else {
		// Streaming logs mode: log to both stdout and file
		log.SetOutput(io.MultiWriter(os.Stdout, f))
	}

	log.Printf("Starting %s %s", version.Product, version.Version)

	channels := *maxChannels
	if channels <= 0 {
		channels = *voices + 1
	}

	var dev output.Device
	if *noAudio {
		dev = output.NewMemory(output.MemoryConfig{MaxChannels: channels, Realtime: true, Discard: true})
		log.Printf("Audio disabled, playing into memory")
	} else {
		dev, err = output.NewOto(output.OtoConfig{MaxChannels: channels})
		if err != nil {
			log.Fatalf("Failed to open audio output: %v", err)
		}
	}

	mgr, err := sound.New(sound.Config{
		Device:     dev,
		FS:         os.DirFS(*soundsDir),
		MaxVoices:  *voices,
		QueueDepth: *queueDepth,
	})
	if err != nil {
		log.Fatalf("Failed to start sound manager: %v", err)
	}

	boardConfig := app.Config{}
	var musicPlayer *music.Player
	if *musicFile != "" {
		musicPlayer, err = music.New(music.Config{Device: dev, SoundFont: *soundFont})
		if err != nil {
			log.Fatalf("Failed to create music player: %v", err)
		}
		if err := musicPlayer.Play(*musicFile, true); err != nil {
			// Music is optional, keep the sound effects running
			log.Printf("Music disabled: %v", err)
		}
		boardConfig.Music = musicPlayer
	}

	board := app.New(mgr, boardConfig)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if _, err := board.LoadDir(ctx, "."); err != nil {
		log.Printf("Failed to load sounds from %s: %v", *soundsDir, err)
	}
	cancel()

	// Remote control
	var remoteServer *remote.Server
	var disc *discovery.Manager
	if !*noRemote {
		remoteServer = remote.New(board, remote.Config{Addr: fmt.Sprintf(":%d", *remotePort)})
		if _, err := remoteServer.Start(); err != nil {
			log.Printf("Remote control disabled: %v", err)
			remoteServer = nil
		}
	}
	if remoteServer != nil && !*noMDNS {
		disc = discovery.NewManager(discovery.Config{
			Port:    *remotePort,
			Version: version.Version,
		})
		if err := disc.Advertise(); err != nil {
			log.Printf("mDNS advertisement failed: %v", err)
		}
	}

	// TUI setup
	var tuiProg *tea.Program
	var control *ui.Control

	if useTUI {
		control = ui.NewControl()
		tuiProg, err = ui.Run(board.Sounds(), control)
		if err != nil {
			log.Fatalf("Failed to start TUI: %v", err)
		}
		go tuiProg.Run()
		go handleControl(board, control, tuiProg)
		go statsUpdateLoop(board, tuiProg)
	} else {
		go statsLogLoop(board)
	}

	// Handle shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Wait for quit signal from TUI or OS
	if control != nil {
		select {
		case <-control.Quit:
			log.Printf("Received quit signal from TUI")
		case <-sigChan:
			log.Printf("Shutdown signal received")
			tuiProg.Quit()
		}
	} else {
		<-sigChan
		log.Printf("Shutdown signal received")
	}

	if remoteServer != nil {
		remoteServer.Stop()
	}
	if disc != nil {
		disc.Stop()
	}
	if musicPlayer != nil {
		musicPlayer.Close()
	}
	if err := mgr.Close(); err != nil {
		log.Printf("Error closing sound manager: %v", err)
	}

	log.Printf("Soundboard stopped")
}

// handleControl executes soundboard commands from the TUI
func handleControl(board *app.Soundboard, control *ui.Control, tuiProg *tea.Program) {
	for cmd := range control.Commands {
		switch cmd.Kind {
		case ui.CommandPlay:
			if _, err := board.Play(cmd.Sound, cmd.Loop, cmd.Echo); err != nil {
				log.Printf("Play %s failed: %v", cmd.Sound, err)
				tuiProg.Send(ui.EventMsg(fmt.Sprintf("%s: %v", cmd.Sound, err)))
				continue
			}
			tuiProg.Send(ui.EventMsg("Played " + cmd.Sound))
		case ui.CommandStop:
			n := board.StopLoops()
			tuiProg.Send(ui.EventMsg(fmt.Sprintf("Stopped %d loops", n)))
		case ui.CommandPause:
			board.SetPaused(true)
		case ui.CommandResume:
			board.SetPaused(false)
		}
	}
}

// statsUpdateLoop periodically updates TUI with scheduler statistics
func statsUpdateLoop(board *app.Soundboard, tuiProg *tea.Program) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for range ticker.C {
		tuiProg.Send(ui.StatusMsg{Stats: board.Stats()})
	}
}

// statsLogLoop logs statistics when running without a TUI
func statsLogLoop(board *app.Soundboard) {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	var last sound.Stats
	for range ticker.C {
		stats := board.Stats()
		if stats != last {
			log.Printf("Stats: %+v", stats)
			last = stats
		}
	}
}
