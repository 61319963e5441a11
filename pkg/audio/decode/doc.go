// ABOUTME: Audio decoder package for multiple container support
// ABOUTME: Provides the Loader, Decoder registry and conversion to the playback format
// Package decode turns sound files into playback-ready sample buffers.
//
// Supports: WAV, AIFF, MP3, FLAC, Ogg Vorbis, Ogg Opus and headerless raw PCM.
//
// Decoding happens once, eagerly, when a sound is loaded. Every decoder yields
// native PCM which Convert brings to 16-bit signed mono at 44.1kHz. Any failure
// while loading wraps ErrDecode.
//
// Example:
//
//	loader := decode.NewLoader(os.DirFS("sounds"), decode.LoaderConfig{})
//	jump, err := loader.Load("jump.wav")
//	prize := loader.LoadOr("prize.ogg", jump)
package decode
