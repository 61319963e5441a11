// ABOUTME: Audio output package for playing audio
// ABOUTME: Provides the Device and Channel interfaces with oto and in-memory implementations
// Package output provides playback devices with a fixed number of channels.
//
// Every voice owns one Channel for as long as it plays. Implementations:
//   - Oto: the system sound card through ebitengine/oto
//   - Memory: records everything written, for tests and headless runs
//
// Example:
//
//	dev, err := output.NewOto(output.OtoConfig{MaxChannels: 16})
//	ch, err := dev.OpenChannel(audio.PlaybackFormat, output.BufferSize(audio.PlaybackFormat, 100*time.Millisecond))
//	_, err = ch.Write(samples)
//	err = ch.Drain()
//	err = ch.Close()
package output
