// ABOUTME: Sound package for concurrent sound effect playback
// ABOUTME: Provides the Manager, the voice scheduler and the global pause gate
// Package sound plays sound effects concurrently on a bounded set of voices.
//
// Each play becomes a Voice that owns one output channel while it streams.
// A Scheduler runs at most min(MaxVoices, device channels) voices at once
// and queues the rest. A shared PauseGate freezes every voice between chunks.
//
// Example:
//
//	mgr, err := sound.New(sound.Config{FS: os.DirFS("assets")})
//	defer mgr.Close()
//
//	jump := mgr.LoadOr("sfx/jump.wav", nil)
//	voice, err := mgr.Play(jump)
//
//	echo, _ := filter.NewEcho(2000, 0.7)
//	wind, err := mgr.PlayWith(mgr.LoadOr("sfx/wind.ogg", nil), echo, true)
//	wind.Stop()
package sound
