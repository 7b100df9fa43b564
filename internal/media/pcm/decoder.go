package pcm

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"

	"tonearm/internal/media/ffprobe"
)

// Decoder shells out to ffmpeg for decoding and ffprobe for header facts.
// Samples come back as raw little-endian float64 at the file's native rate
// and channel layout.
type Decoder struct {
	FFmpegBinary  string
	FFprobeBinary string

	// MaxSeconds caps how much audio is decoded. Zero decodes the whole
	// file.
	MaxSeconds float64
}

// Decode reads the file at path into a sample buffer.
func (d *Decoder) Decode(ctx context.Context, path string) (*Buffer, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("pcm decode: empty path")
	}

	probe, err := ffprobe.Inspect(ctx, d.FFprobeBinary, path)
	if err != nil {
		return nil, err
	}
	stream, ok := probe.FirstAudioStream()
	if !ok {
		return nil, fmt.Errorf("pcm decode: %s: no audio stream", path)
	}
	sampleRate := probe.SampleRateHz()
	if sampleRate <= 0 {
		return nil, fmt.Errorf("pcm decode: %s: unknown sample rate", path)
	}
	channels := stream.Channels
	if channels <= 0 {
		channels = 1
	}

	ffmpeg := strings.TrimSpace(d.FFmpegBinary)
	if ffmpeg == "" {
		ffmpeg = "ffmpeg"
	}
	args := []string{"-v", "error", "-nostdin"}
	if d.MaxSeconds > 0 {
		args = append(args, "-t", strconv.FormatFloat(d.MaxSeconds, 'f', -1, 64))
	}
	args = append(args,
		"-i", path,
		"-map", "a:0",
		"-c:a", "pcm_f64le",
		"-f", "f64le",
		"-",
	)

	cmd := exec.CommandContext(ctx, ffmpeg, args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	raw, err := cmd.Output()
	if err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return nil, fmt.Errorf("pcm decode: %s: %w: %s", path, err, detail)
		}
		return nil, fmt.Errorf("pcm decode: %s: %w", path, err)
	}

	samples, err := parseF64LE(raw)
	if err != nil {
		return nil, fmt.Errorf("pcm decode: %s: %w", path, err)
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("pcm decode: %s: no decodable frames", path)
	}
	// Drop a trailing partial frame rather than failing the whole file.
	samples = samples[:len(samples)/channels*channels]
	if len(samples) == 0 {
		return nil, fmt.Errorf("pcm decode: %s: no decodable frames", path)
	}

	return &Buffer{SampleRate: sampleRate, Channels: channels, Samples: samples}, nil
}

func parseF64LE(raw []byte) ([]float64, error) {
	if len(raw)%8 != 0 {
		raw = raw[:len(raw)/8*8]
	}
	samples := make([]float64, len(raw)/8)
	for i := range samples {
		bits := binary.LittleEndian.Uint64(raw[i*8:])
		value := math.Float64frombits(bits)
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return nil, errors.New("malformed sample data")
		}
		samples[i] = value
	}
	return samples, nil
}
