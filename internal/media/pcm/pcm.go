// Package pcm decodes audio files into interleaved float64 sample buffers.
package pcm

import "time"

// Buffer holds interleaved samples at the source file's native rate and
// channel layout. Nothing here resamples or remixes; callers that need mono
// ask for it explicitly.
type Buffer struct {
	SampleRate int
	Channels   int
	Samples    []float64
}

// Frames returns the number of sample frames in the buffer.
func (b *Buffer) Frames() int {
	if b == nil || b.Channels <= 0 {
		return 0
	}
	return len(b.Samples) / b.Channels
}

// Duration returns the buffer length as wall time.
func (b *Buffer) Duration() time.Duration {
	if b == nil || b.SampleRate <= 0 {
		return 0
	}
	frames := b.Frames()
	return time.Duration(float64(frames) / float64(b.SampleRate) * float64(time.Second))
}

// Mono averages the channels down to a single sequence. A mono buffer is
// returned as-is without copying.
func (b *Buffer) Mono() []float64 {
	if b == nil {
		return nil
	}
	if b.Channels <= 1 {
		return b.Samples
	}
	frames := b.Frames()
	out := make([]float64, frames)
	scale := 1 / float64(b.Channels)
	for f := 0; f < frames; f++ {
		sum := 0.0
		base := f * b.Channels
		for c := 0; c < b.Channels; c++ {
			sum += b.Samples[base+c]
		}
		out[f] = sum * scale
	}
	return out
}
