// ABOUTME: Tests for playback streams
// ABOUTME: Tests plain, looping and filtered readers including the echo tail
package stream

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/tilegame/soundcore/pkg/audio"
	"github.com/tilegame/soundcore/pkg/audio/filter"
)

func testBuffer(t *testing.T, values ...int16) *audio.SampleBuffer {
	t.Helper()
	data := make([]byte, len(values)*2)
	for i, v := range values {
		audio.PutInt16(data, i*2, v)
	}
	buf, err := audio.NewSampleBuffer(data, audio.PlaybackFormat)
	if err != nil {
		t.Fatalf("failed to create buffer: %v", err)
	}
	return buf
}

type tailFilter struct {
	resets    int
	remaining int
	processed int
}

func (f *tailFilter) Process(samples []byte) { f.processed += len(samples) }
func (f *tailFilter) Reset()                 { f.resets++ }
func (f *tailFilter) RemainingSize() int     { return f.remaining }

func TestReaderIsVerbatim(t *testing.T) {
	buf := testBuffer(t, 1, -2, 3, -4, 5)

	got, err := io.ReadAll(NewReader(buf))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(got, buf.Bytes()) {
		t.Errorf("expected %v, got %v", buf.Bytes(), got)
	}
}

func TestLoopingRepeats(t *testing.T) {
	buf := testBuffer(t, 10, 20, 30)
	loop := NewLooping(buf)

	got := make([]byte, buf.Len()*3)
	n, err := io.ReadFull(loop, got)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != len(got) {
		t.Fatalf("expected %d bytes, got %d", len(got), n)
	}

	expected := bytes.Repeat(buf.Bytes(), 3)
	if !bytes.Equal(got, expected) {
		t.Errorf("expected three identical copies, got %v", got)
	}
	if loop.Laps() != 3 {
		t.Errorf("expected 3 laps, got %d", loop.Laps())
	}
}

func TestLoopingWrapsWithinRead(t *testing.T) {
	buf := testBuffer(t, 7, 8)
	loop := NewLooping(buf)

	first := make([]byte, 2)
	if _, err := loop.Read(first); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second := make([]byte, 6)
	n, err := loop.Read(second)
	if err != nil || n != 6 {
		t.Fatalf("expected full read, got n=%d err=%v", n, err)
	}

	want := []int16{8, 7, 8}
	for i, w := range want {
		if got := audio.Int16At(second, i*2); got != w {
			t.Errorf("sample %d: expected %d, got %d", i, w, got)
		}
	}
}

func TestLoopingEmptyBufferEnds(t *testing.T) {
	loop := NewLooping(audio.NoSound)
	n, err := loop.Read(make([]byte, 16))
	if n != 0 || !errors.Is(err, io.EOF) {
		t.Errorf("expected immediate EOF, got n=%d err=%v", n, err)
	}
}

func TestFilteredResetsFilter(t *testing.T) {
	f := &tailFilter{}
	NewFiltered(NewReader(testBuffer(t, 1)), f)
	if f.resets != 1 {
		t.Errorf("expected filter reset on construction, got %d resets", f.resets)
	}
}

func TestFilteredWithoutTail(t *testing.T) {
	buf := testBuffer(t, 5, 6, 7, 8)
	f := &tailFilter{}

	got, err := io.ReadAll(NewFiltered(NewReader(buf), f))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(got, buf.Bytes()) {
		t.Errorf("expected passthrough output, got %v", got)
	}
	if f.processed != buf.Len() {
		t.Errorf("expected %d bytes filtered, got %d", buf.Len(), f.processed)
	}
}

func TestFilteredEchoTail(t *testing.T) {
	buf := testBuffer(t, 1000, 0, 0, 0)
	echo, err := filter.NewEcho(4, 0.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := io.ReadAll(NewFiltered(NewReader(buf), echo))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expectedLen := buf.Len() + 4*2*7
	if len(got) != expectedLen {
		t.Fatalf("expected %d bytes including tail, got %d", expectedLen, len(got))
	}

	level := 1000.0
	for i := 0; i < len(got)/2; i += 4 {
		if v, want := audio.Int16At(got, i*2), audio.ClampInt16(level); v != want {
			t.Errorf("sample %d: expected %d, got %d", i, want, v)
		}
		level *= 0.5
	}
}

func TestFilteredRoundsTailToFrames(t *testing.T) {
	f := &tailFilter{remaining: 7}
	got, err := io.ReadAll(NewFiltered(NewReader(testBuffer(t, 1)), f))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2+6 {
		t.Errorf("expected 8 bytes, got %d", len(got))
	}
}

func TestFilteredTrimsOddReads(t *testing.T) {
	s := NewFiltered(NewReader(testBuffer(t, 1, 2, 3)), &tailFilter{})

	n, err := s.Read(make([]byte, 5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 4 {
		t.Errorf("expected 4 bytes, got %d", n)
	}

	n, err = s.Read(make([]byte, 1))
	if n != 0 || err != nil {
		t.Errorf("expected empty read for single byte, got n=%d err=%v", n, err)
	}
}

type failingReader struct{ err error }

func (r failingReader) Read(p []byte) (int, error) { return 0, r.err }

func TestFilteredPropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	_, err := NewFiltered(failingReader{err: boom}, &tailFilter{}).Read(make([]byte, 8))
	if !errors.Is(err, boom) {
		t.Errorf("expected source error, got %v", err)
	}
}

func TestFilteredLoopingNeverEnds(t *testing.T) {
	echo, _ := filter.NewEcho(2, 0.5)
	s := NewFiltered(NewLooping(testBuffer(t, 100, 200)), echo)

	chunk := make([]byte, 64)
	for i := 0; i < 20; i++ {
		n, err := s.Read(chunk)
		if err != nil || n != len(chunk) {
			t.Fatalf("read %d: expected full chunk, got n=%d err=%v", i, n, err)
		}
	}
}
