// ABOUTME: Tests for filters
// ABOUTME: Tests echo impulse response, attenuation volumes and sequence composition
package filter

import (
	"bytes"
	"errors"
	"sync"
	"testing"

	"github.com/tilegame/soundcore/pkg/audio"
)

func samplesOf(values ...int16) []byte {
	b := make([]byte, len(values)*2)
	for i, v := range values {
		audio.PutInt16(b, i*2, v)
	}
	return b
}

func constant(n int, v int16) []byte {
	b := make([]byte, n*2)
	for i := 0; i < n; i++ {
		audio.PutInt16(b, i*2, v)
	}
	return b
}

func valuesOf(b []byte) []int16 {
	out := make([]int16, len(b)/2)
	for i := range out {
		out[i] = audio.Int16At(b, i*2)
	}
	return out
}

func TestEchoImpulseResponse(t *testing.T) {
	echo, err := NewEcho(4, 0.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	buf := make([]byte, 24)
	audio.PutInt16(buf, 0, 1000)
	echo.Process(buf)

	got := valuesOf(buf)
	expected := map[int]int16{0: 1000, 4: 500, 8: 250}
	for i, v := range got {
		if want := expected[i]; v != want {
			t.Errorf("sample %d: expected %d, got %d", i, want, v)
		}
	}
}

func TestEchoUnitImpulseRounding(t *testing.T) {
	const ring = 4
	echo, err := NewEcho(ring, 0.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	buf := make([]byte, ring*2*4)
	audio.PutInt16(buf, 0, 1)
	echo.Process(buf)

	tests := []struct {
		offset   int
		expected int16
	}{
		{0, 1},
		{2 * ring, 1}, // round(0.5)
		{4 * ring, 0}, // round(0.25)
		{6 * ring, 0},
	}
	for _, tt := range tests {
		if got := audio.Int16At(buf, tt.offset); got != tt.expected {
			t.Errorf("byte offset %d: expected %d, got %d", tt.offset, tt.expected, got)
		}
	}
}

func TestEchoRemainingSize(t *testing.T) {
	tests := []struct {
		name     string
		delay    int
		decay    float64
		expected int
	}{
		{"half decay", 100, 0.5, 100 * 2 * 7},
		{"strong feedback", 2000, 0.7, 2000 * 2 * 13},
		{"weak feedback", 10, 0.2, 10 * 2 * 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			echo, err := NewEcho(tt.delay, tt.decay)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := echo.RemainingSize(); got != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestEchoInvalidParameters(t *testing.T) {
	tests := []struct {
		name  string
		delay int
		decay float64
	}{
		{"zero delay", 0, 0.5},
		{"negative delay", -5, 0.5},
		{"zero decay", 10, 0},
		{"unit decay", 10, 1},
		{"negative decay", 10, -0.2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEcho(tt.delay, tt.decay)
			if !errors.Is(err, ErrInvalidParameter) {
				t.Errorf("expected ErrInvalidParameter, got %v", err)
			}
		})
	}
}

func TestEchoChunkingIsTransparent(t *testing.T) {
	input := samplesOf(1200, -800, 300, 0, 0, 50, -32000, 32000, 7, 0, 0, 0, 0, 0)

	whole, _ := NewEcho(3, 0.6)
	a := bytes.Clone(input)
	whole.Process(a)

	split, _ := NewEcho(3, 0.6)
	b := bytes.Clone(input)
	split.Process(b[:6])
	split.Process(b[6:20])
	split.Process(b[20:])

	if !bytes.Equal(a, b) {
		t.Errorf("chunked output differs:\n whole %v\n split %v", valuesOf(a), valuesOf(b))
	}
}

func TestEchoSaturates(t *testing.T) {
	echo, _ := NewEcho(1, 0.9)
	buf := samplesOf(30000, 30000, 30000)
	echo.Process(buf)

	got := valuesOf(buf)
	if got[1] != 32767 || got[2] != 32767 {
		t.Errorf("expected saturation at 32767, got %v", got)
	}
}

func TestEchoReset(t *testing.T) {
	echo, _ := NewEcho(2, 0.5)
	echo.Process(samplesOf(1000, 1000))
	echo.Reset()

	buf := samplesOf(0, 0, 0, 0)
	echo.Process(buf)
	for i, v := range valuesOf(buf) {
		if v != 0 {
			t.Errorf("sample %d: expected silence after reset, got %d", i, v)
		}
	}
}

func TestEchoIgnoresTrailingOddByte(t *testing.T) {
	echo, _ := NewEcho(2, 0.5)
	buf := append(samplesOf(100), 0x7F)
	echo.Process(buf)

	if buf[2] != 0x7F {
		t.Errorf("expected trailing byte untouched, got %#x", buf[2])
	}
}

func TestAttenuationSteadyState(t *testing.T) {
	tests := []struct {
		name     string
		distance float64
		expected int16
	}{
		{"at source", 0, 1000},
		{"half way", 50, 500},
		{"at max", 100, 0},
		{"beyond max", 250, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := NewPoint(0, 0)
			listener := NewPoint(0, tt.distance)
			att, err := NewAttenuation(source, listener, 100)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			// First call ramps from silence; the second is steady.
			att.Process(constant(600, 1000))
			buf := constant(600, 1000)
			att.Process(buf)

			for i, v := range valuesOf(buf) {
				if v != tt.expected {
					t.Fatalf("sample %d: expected %d, got %d", i, tt.expected, v)
				}
			}
		})
	}
}

func TestAttenuationRamp(t *testing.T) {
	att, _ := NewAttenuation(NewPoint(0, 0), NewPoint(0, 0), 100)

	buf := constant(rampSamples+10, 1000)
	att.Process(buf)
	got := valuesOf(buf)

	if got[0] != 0 {
		t.Errorf("expected ramp to start at 0, got %d", got[0])
	}
	if got[rampSamples/2] != 500 {
		t.Errorf("expected mid-ramp 500, got %d", got[rampSamples/2])
	}
	for i := rampSamples; i < len(got); i++ {
		if got[i] != 1000 {
			t.Fatalf("sample %d: expected full volume after ramp, got %d", i, got[i])
		}
	}
	for i := 1; i < rampSamples; i++ {
		if got[i] < got[i-1] {
			t.Fatalf("ramp not monotonic at %d: %d < %d", i, got[i], got[i-1])
		}
	}
}

func TestAttenuationFollowsMovement(t *testing.T) {
	source := NewPoint(0, 0)
	listener := NewPoint(0, 0)
	att, _ := NewAttenuation(source, listener, 100)

	att.Process(constant(600, 1000))
	listener.Set(30, 40) // distance 50

	buf := constant(600, 1000)
	att.Process(buf)
	got := valuesOf(buf)

	if got[0] != 1000 {
		t.Errorf("expected ramp to start from previous volume, got %d", got[0])
	}
	if got[len(got)-1] != 500 {
		t.Errorf("expected new volume 500, got %d", got[len(got)-1])
	}
}

func TestAttenuationWithoutPositionsPassesThrough(t *testing.T) {
	att, err := NewAttenuation(nil, NewPoint(0, 0), 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	buf := constant(10, 1234)
	att.Process(buf)
	for i, v := range valuesOf(buf) {
		if v != 1234 {
			t.Errorf("sample %d: expected passthrough, got %d", i, v)
		}
	}
	if att.RemainingSize() != 0 {
		t.Errorf("expected no tail, got %d", att.RemainingSize())
	}
}

func TestAttenuationInvalidDistance(t *testing.T) {
	for _, d := range []float64{0, -1} {
		if _, err := NewAttenuation(NewPoint(0, 0), NewPoint(0, 0), d); !errors.Is(err, ErrInvalidParameter) {
			t.Errorf("max distance %v: expected ErrInvalidParameter, got %v", d, err)
		}
	}
}

type recordingFilter struct {
	name      string
	log       *[]string
	remaining int
	resets    int
}

func (f *recordingFilter) Process(samples []byte) {
	*f.log = append(*f.log, f.name)
	for i := 0; i+1 < len(samples); i += 2 {
		audio.PutInt16(samples, i, audio.Int16At(samples, i)+1)
	}
}

func (f *recordingFilter) Reset()             { f.resets++ }
func (f *recordingFilter) RemainingSize() int { return f.remaining }

func TestSequence(t *testing.T) {
	var order []string
	a := &recordingFilter{name: "a", log: &order, remaining: 40}
	b := &recordingFilter{name: "b", log: &order, remaining: 100}
	c := &recordingFilter{name: "c", log: &order, remaining: 0}

	seq := NewSequence(a, nil, b, c)
	if seq.Len() != 3 {
		t.Errorf("expected nil filters to be skipped, got %d", seq.Len())
	}

	buf := samplesOf(0, 10)
	seq.Process(buf)

	if got := valuesOf(buf); got[0] != 3 || got[1] != 13 {
		t.Errorf("expected every filter applied once, got %v", got)
	}
	if len(order) != 3 || order[0] != "a" || order[1] != "b" || order[2] != "c" {
		t.Errorf("expected order [a b c], got %v", order)
	}
	if seq.RemainingSize() != 100 {
		t.Errorf("expected max remaining 100, got %d", seq.RemainingSize())
	}

	seq.Reset()
	if a.resets != 1 || b.resets != 1 || c.resets != 1 {
		t.Errorf("expected every filter reset once, got %d %d %d", a.resets, b.resets, c.resets)
	}
}

func TestSequenceEchoThenAttenuation(t *testing.T) {
	echo, _ := NewEcho(2, 0.5)
	att, _ := NewAttenuation(NewPoint(0, 0), NewPoint(50, 0), 100)
	seq := NewSequence(echo, att)

	if seq.RemainingSize() != echo.RemainingSize() {
		t.Errorf("expected echo tail %d, got %d", echo.RemainingSize(), seq.RemainingSize())
	}
}

func TestPointConcurrentAccess(t *testing.T) {
	p := NewPoint(1, 1)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			p.Set(float64(i), float64(i))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			x, y := p.Position()
			if x != y {
				t.Errorf("torn read: (%v, %v)", x, y)
				return
			}
		}
	}()
	wg.Wait()
}

func TestZeroPointIsOrigin(t *testing.T) {
	var p Point
	if x, y := p.Position(); x != 0 || y != 0 {
		t.Errorf("expected origin, got (%v, %v)", x, y)
	}
}

func TestPositionFunc(t *testing.T) {
	var pos Positioner = PositionFunc(func() (float64, float64) { return 3, 4 })
	if x, y := pos.Position(); x != 3 || y != 4 {
		t.Errorf("expected (3, 4), got (%v, %v)", x, y)
	}
}
