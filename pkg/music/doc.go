// ABOUTME: Music package for background MIDI tracks
// ABOUTME: Plays one looping track on its own channel, separate from sound effects
// Package music plays sequenced background music.
//
// Tracks are rendered with a SoundFont through gopxl/beep and written to a
// single output channel that does not count against the sound effect voices.
// Looping tracks pause for LoopGap before starting over.
//
// Example:
//
//	mp, err := music.New(music.Config{Device: dev, SoundFont: "assets/gm.sf2"})
//	err = mp.Play("assets/music/stage1.mid", true)
//	mp.SetVolume(0.5)
//	mp.Close()
package music
