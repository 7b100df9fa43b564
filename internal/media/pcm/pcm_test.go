package pcm

import (
	"encoding/binary"
	"math"
	"testing"
	"time"
)

func TestBufferFrames(t *testing.T) {
	buf := &Buffer{SampleRate: 48000, Channels: 2, Samples: make([]float64, 96000)}
	if got := buf.Frames(); got != 48000 {
		t.Errorf("Frames() = %d, want 48000", got)
	}
	if got := buf.Duration(); got != time.Second {
		t.Errorf("Duration() = %v, want 1s", got)
	}
}

func TestBufferFramesDegenerate(t *testing.T) {
	var nilBuf *Buffer
	if got := nilBuf.Frames(); got != 0 {
		t.Errorf("nil Frames() = %d", got)
	}
	zero := &Buffer{}
	if got := zero.Frames(); got != 0 {
		t.Errorf("zero Frames() = %d", got)
	}
	if got := zero.Duration(); got != 0 {
		t.Errorf("zero Duration() = %v", got)
	}
}

func TestMonoAveragesChannels(t *testing.T) {
	buf := &Buffer{
		SampleRate: 44100,
		Channels:   2,
		Samples:    []float64{1, -1, 0.5, 0.5, -0.25, 0.75},
	}
	mono := buf.Mono()
	want := []float64{0, 0.5, 0.25}
	if len(mono) != len(want) {
		t.Fatalf("Mono() length = %d, want %d", len(mono), len(want))
	}
	for i := range want {
		if math.Abs(mono[i]-want[i]) > 1e-12 {
			t.Errorf("mono[%d] = %f, want %f", i, mono[i], want[i])
		}
	}
}

func TestMonoPassthrough(t *testing.T) {
	buf := &Buffer{SampleRate: 44100, Channels: 1, Samples: []float64{0.1, 0.2}}
	mono := buf.Mono()
	if &mono[0] != &buf.Samples[0] {
		t.Error("mono buffer was copied")
	}
}

func TestParseF64LE(t *testing.T) {
	want := []float64{0, 0.5, -1}
	raw := make([]byte, 0, len(want)*8)
	for _, v := range want {
		var chunk [8]byte
		binary.LittleEndian.PutUint64(chunk[:], math.Float64bits(v))
		raw = append(raw, chunk[:]...)
	}
	// Trailing partial sample is dropped, not an error.
	raw = append(raw, 0x01, 0x02)

	samples, err := parseF64LE(raw)
	if err != nil {
		t.Fatalf("parseF64LE: %v", err)
	}
	if len(samples) != len(want) {
		t.Fatalf("got %d samples, want %d", len(samples), len(want))
	}
	for i := range want {
		if samples[i] != want[i] {
			t.Errorf("samples[%d] = %f, want %f", i, samples[i], want[i])
		}
	}
}

func TestParseF64LERejectsNaN(t *testing.T) {
	var chunk [8]byte
	binary.LittleEndian.PutUint64(chunk[:], math.Float64bits(math.NaN()))
	if _, err := parseF64LE(chunk[:]); err == nil {
		t.Fatal("expected error for NaN sample")
	}
}
