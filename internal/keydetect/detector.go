package keydetect

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tonearm/internal/media/pcm"
)

var (
	// ErrDecode marks failures to turn a file into samples: unreadable
	// files, unsupported codecs, or zero decodable frames.
	ErrDecode = errors.New("audio decode failed")

	// ErrEstimation marks failures inside the key classification itself.
	ErrEstimation = errors.New("key estimation failed")
)

// Decoder turns an audio file into an interleaved sample buffer at the file's
// native rate and channel layout.
type Decoder interface {
	Decode(ctx context.Context, path string) (*pcm.Buffer, error)
}

// Estimator classifies a sample buffer into one of the 24 keys, or the
// silence sentinel.
type Estimator interface {
	EstimateKey(ctx context.Context, buf *pcm.Buffer) (Estimate, error)
}

// Result is one completed detection.
type Result struct {
	Estimate Estimate
	Key      string
	Camelot  string
}

// String renders the result in the canonical "Key (Camelot)" form.
func (r Result) String() string {
	return fmt.Sprintf("%s (%s)", r.Key, r.Camelot)
}

// Detector runs decode followed by estimation. It holds no mutable state and
// is safe for concurrent use.
type Detector struct {
	decoder   Decoder
	estimator Estimator
}

// NewDetector builds a detector from its two ports.
func NewDetector(decoder Decoder, estimator Estimator) *Detector {
	return &Detector{decoder: decoder, estimator: estimator}
}

// Detect decodes the file at path and estimates its key. Errors wrap either
// ErrDecode or ErrEstimation.
func (d *Detector) Detect(ctx context.Context, path string) (Result, error) {
	buf, err := d.decoder.Decode(ctx, path)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %s: %v", ErrDecode, path, err)
	}
	if buf == nil || buf.Frames() == 0 {
		return Result{}, fmt.Errorf("%w: %s: no decodable frames", ErrDecode, path)
	}

	estimate, err := d.estimator.EstimateKey(ctx, buf)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %s: %v", ErrEstimation, path, err)
	}

	return Result{
		Estimate: estimate,
		Key:      estimate.Label(),
		Camelot:  estimate.Camelot(),
	}, nil
}

// FormatError renders a detection failure as the single-line textual form
// consumed by callers that parse stdout.
func FormatError(err error) string {
	if err == nil {
		return "Error: unknown"
	}
	msg := err.Error()
	msg = strings.TrimPrefix(msg, ErrDecode.Error()+": ")
	msg = strings.TrimPrefix(msg, ErrEstimation.Error()+": ")
	return "Error: " + msg
}
