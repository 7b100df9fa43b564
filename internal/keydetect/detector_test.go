package keydetect

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"tonearm/internal/media/pcm"
)

type stubDecoder struct {
	buf *pcm.Buffer
	err error
}

func (s stubDecoder) Decode(ctx context.Context, path string) (*pcm.Buffer, error) {
	return s.buf, s.err
}

type stubEstimator struct {
	estimate Estimate
	err      error
}

func (s stubEstimator) EstimateKey(ctx context.Context, buf *pcm.Buffer) (Estimate, error) {
	return s.estimate, s.err
}

func toneBuffer() *pcm.Buffer {
	return &pcm.Buffer{SampleRate: 44100, Channels: 1, Samples: make([]float64, 44100)}
}

func TestDetectSuccess(t *testing.T) {
	detector := NewDetector(stubDecoder{buf: toneBuffer()}, stubEstimator{estimate: EstimateCMajor})

	result, err := detector.Detect(context.Background(), "track.mp3")
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if result.Key != "C" || result.Camelot != "8B" {
		t.Fatalf("result = %+v", result)
	}
	if got := result.String(); got != "C (8B)" {
		t.Fatalf("String() = %q, want %q", got, "C (8B)")
	}
}

func TestDetectDecodeFailure(t *testing.T) {
	detector := NewDetector(stubDecoder{err: errors.New("unreadable")}, stubEstimator{})

	_, err := detector.Detect(context.Background(), "broken.mp3")
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
	if errors.Is(err, ErrEstimation) {
		t.Fatalf("decode failure also matched ErrEstimation: %v", err)
	}
}

func TestDetectEmptyBufferIsDecodeFailure(t *testing.T) {
	detector := NewDetector(stubDecoder{buf: &pcm.Buffer{SampleRate: 44100, Channels: 2}}, stubEstimator{})

	_, err := detector.Detect(context.Background(), "empty.mp3")
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
}

func TestDetectEstimationFailure(t *testing.T) {
	detector := NewDetector(stubDecoder{buf: toneBuffer()}, stubEstimator{err: errors.New("numerics")})

	_, err := detector.Detect(context.Background(), "weird.mp3")
	if !errors.Is(err, ErrEstimation) {
		t.Fatalf("expected ErrEstimation, got %v", err)
	}
	if errors.Is(err, ErrDecode) {
		t.Fatalf("estimation failure also matched ErrDecode: %v", err)
	}
}

func TestFormatError(t *testing.T) {
	detector := NewDetector(stubDecoder{err: errors.New("no such file")}, stubEstimator{})

	_, err := detector.Detect(context.Background(), "missing.mp3")
	line := FormatError(err)
	if !strings.HasPrefix(line, "Error: ") {
		t.Fatalf("FormatError = %q", line)
	}
	if strings.Contains(line, "\n") {
		t.Fatalf("error line contains newline: %q", line)
	}
	if !strings.Contains(line, "missing.mp3") {
		t.Fatalf("error line does not name the file: %q", line)
	}
}

func TestDetectConcurrent(t *testing.T) {
	detector := NewDetector(stubDecoder{buf: toneBuffer()}, stubEstimator{estimate: EstimateAMinor})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := detector.Detect(context.Background(), "track.mp3")
			if err != nil {
				t.Errorf("Detect: %v", err)
				return
			}
			if result.String() != "Am (8A)" {
				t.Errorf("result = %q", result.String())
			}
		}()
	}
	wg.Wait()
}
