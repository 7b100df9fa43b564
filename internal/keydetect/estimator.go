package keydetect

import (
	"context"
	"fmt"
	"math"
	"math/cmplx"
	"strings"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/stat"

	"tonearm/internal/media/pcm"
)

// Profile selects the major/minor key profile pair used for correlation.
type Profile string

const (
	ProfileEDMA      Profile = "edma"
	ProfileKrumhansl Profile = "krumhansl"
	ProfileShaath    Profile = "shaath"
)

// DefaultProfile is tuned for electronic music, which is what the library
// being analyzed overwhelmingly contains.
const DefaultProfile = ProfileEDMA

type profilePair struct {
	major [12]float64
	minor [12]float64
}

var profiles = map[Profile]profilePair{
	ProfileEDMA: {
		major: [12]float64{17.7661, 0.145624, 14.9265, 0.160186, 19.8049, 11.3587, 0.291248, 22.062, 0.145624, 8.15494, 0.232998, 4.95122},
		minor: [12]float64{18.2648, 0.737619, 14.0499, 16.8599, 0.702494, 14.4362, 0.702494, 18.6161, 4.56621, 1.93186, 7.37619, 1.75623},
	},
	ProfileKrumhansl: {
		major: [12]float64{6.35, 2.23, 3.48, 2.33, 4.38, 4.09, 2.52, 5.19, 2.39, 3.66, 2.29, 2.88},
		minor: [12]float64{6.33, 2.68, 3.52, 5.38, 2.60, 3.53, 2.54, 4.75, 3.98, 2.69, 3.34, 3.17},
	},
	ProfileShaath: {
		major: [12]float64{6.6, 2.0, 3.5, 2.3, 4.6, 4.0, 2.5, 5.2, 2.4, 3.7, 2.3, 3.4},
		minor: [12]float64{6.5, 2.7, 3.5, 5.4, 2.6, 3.5, 2.5, 4.7, 4.0, 2.7, 3.4, 3.2},
	},
}

// ParseProfile validates a configured profile name.
func ParseProfile(name string) (Profile, error) {
	p := Profile(strings.ToLower(strings.TrimSpace(name)))
	if p == "" {
		return DefaultProfile, nil
	}
	if _, ok := profiles[p]; !ok {
		return "", fmt.Errorf("unknown key profile %q", name)
	}
	return p, nil
}

// ChromaParams controls the chroma extraction.
type ChromaParams struct {
	WindowSize int     // STFT window length in samples
	HopSize    int     // samples between successive windows
	TuningFreq float64 // reference frequency for A4
	MinFreq    float64 // lowest bin folded into the chroma
	MaxFreq    float64 // highest bin folded into the chroma
	Profile    Profile
}

// DefaultChromaParams returns the parameters used in production.
func DefaultChromaParams() ChromaParams {
	return ChromaParams{
		WindowSize: 8192,
		HopSize:    4096,
		TuningFreq: 440,
		MinFreq:    80,
		MaxFreq:    8000,
		Profile:    DefaultProfile,
	}
}

// silenceEpsilon is the peak amplitude below which material is treated as
// silent rather than forced through correlation.
const silenceEpsilon = 1e-6

// ChromaEstimator classifies a buffer by correlating its mean chroma profile
// against the 24 rotations of a key profile pair.
type ChromaEstimator struct {
	params ChromaParams
}

// NewChromaEstimator builds an estimator; zero-valued params fall back to the
// defaults.
func NewChromaEstimator(params ChromaParams) *ChromaEstimator {
	def := DefaultChromaParams()
	if params.WindowSize <= 0 {
		params.WindowSize = def.WindowSize
	}
	if params.HopSize <= 0 {
		params.HopSize = def.HopSize
	}
	if params.TuningFreq <= 0 {
		params.TuningFreq = def.TuningFreq
	}
	if params.MinFreq <= 0 {
		params.MinFreq = def.MinFreq
	}
	if params.MaxFreq <= params.MinFreq {
		params.MaxFreq = def.MaxFreq
	}
	if params.Profile == "" {
		params.Profile = def.Profile
	}
	return &ChromaEstimator{params: params}
}

// EstimateKey implements the Estimator port.
func (e *ChromaEstimator) EstimateKey(ctx context.Context, buf *pcm.Buffer) (Estimate, error) {
	if buf == nil || buf.Frames() == 0 {
		return EstimateSilence, fmt.Errorf("empty sample buffer")
	}
	if buf.SampleRate <= 0 {
		return EstimateSilence, fmt.Errorf("invalid sample rate %d", buf.SampleRate)
	}
	pair, ok := profiles[e.params.Profile]
	if !ok {
		return EstimateSilence, fmt.Errorf("unknown key profile %q", e.params.Profile)
	}

	mono := buf.Mono()
	if peakAmplitude(mono) < silenceEpsilon {
		return EstimateSilence, nil
	}

	chroma, err := e.meanChroma(ctx, mono, buf.SampleRate)
	if err != nil {
		return EstimateSilence, err
	}
	if sum(chroma[:]) < silenceEpsilon {
		return EstimateSilence, nil
	}

	best := EstimateSilence
	bestScore := math.Inf(-1)
	for root := 0; root < 12; root++ {
		if score := correlate(chroma, pair.major, root); score > bestScore {
			bestScore = score
			best = EstimateForPitchClass(root, false)
		}
		if score := correlate(chroma, pair.minor, root); score > bestScore {
			bestScore = score
			best = EstimateForPitchClass(root, true)
		}
	}
	return best, nil
}

// meanChroma averages per-window chroma vectors over the whole buffer.
func (e *ChromaEstimator) meanChroma(ctx context.Context, mono []float64, sampleRate int) ([12]float64, error) {
	var acc [12]float64

	window := hannWindow(e.params.WindowSize)
	frame := make([]float64, e.params.WindowSize)
	windows := 0

	for start := 0; start+e.params.WindowSize <= len(mono); start += e.params.HopSize {
		if err := ctx.Err(); err != nil {
			return acc, err
		}
		for i := range frame {
			frame[i] = mono[start+i] * window[i]
		}
		spectrum := fft.FFTReal(frame)
		e.foldSpectrum(spectrum, sampleRate, &acc)
		windows++
	}

	if windows == 0 {
		// Short clip: pad a single window with zeros.
		copy(frame, mono)
		for i := len(mono); i < len(frame); i++ {
			frame[i] = 0
		}
		for i := range mono {
			frame[i] *= window[i]
		}
		spectrum := fft.FFTReal(frame)
		e.foldSpectrum(spectrum, sampleRate, &acc)
		windows = 1
	}

	for i := range acc {
		acc[i] /= float64(windows)
	}
	return acc, nil
}

// foldSpectrum adds the energy of each in-range FFT bin onto the pitch class
// of its nearest MIDI note.
func (e *ChromaEstimator) foldSpectrum(spectrum []complex128, sampleRate int, acc *[12]float64) {
	binHz := float64(sampleRate) / float64(e.params.WindowSize)
	half := len(spectrum) / 2
	for bin := 1; bin < half; bin++ {
		freq := float64(bin) * binHz
		if freq < e.params.MinFreq || freq > e.params.MaxFreq {
			continue
		}
		midi := 69 + 12*math.Log2(freq/e.params.TuningFreq)
		pitchClass := ((int(math.Round(midi)) % 12) + 12) % 12
		mag := cmplx.Abs(spectrum[bin])
		acc[pitchClass] += mag * mag
	}
}

// correlate scores the chroma against the profile rotated so that its tonic
// weight sits on the given root pitch class.
func correlate(chroma [12]float64, profile [12]float64, root int) float64 {
	shifted := make([]float64, 12)
	for i := 0; i < 12; i++ {
		shifted[i] = profile[((i-root)%12+12)%12]
	}
	score := stat.Correlation(chroma[:], shifted, nil)
	if math.IsNaN(score) {
		return math.Inf(-1)
	}
	return score
}

func hannWindow(size int) []float64 {
	w := make([]float64, size)
	for i := range w {
		w[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(size-1)))
	}
	return w
}

func peakAmplitude(samples []float64) float64 {
	peak := 0.0
	for _, s := range samples {
		if a := math.Abs(s); a > peak {
			peak = a
		}
	}
	return peak
}

func sum(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total
}
