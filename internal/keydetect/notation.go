package keydetect

// Estimate is one discrete key classification: 12 pitch classes in major and
// minor mode, plus a sentinel for material with no detectable key.
type Estimate int

const (
	EstimateAMajor Estimate = iota
	EstimateAMinor
	EstimateBFlatMajor
	EstimateBFlatMinor
	EstimateBMajor
	EstimateBMinor
	EstimateCMajor
	EstimateCMinor
	EstimateDFlatMajor
	EstimateDFlatMinor
	EstimateDMajor
	EstimateDMinor
	EstimateEFlatMajor
	EstimateEFlatMinor
	EstimateEMajor
	EstimateEMinor
	EstimateFMajor
	EstimateFMinor
	EstimateGFlatMajor
	EstimateGFlatMinor
	EstimateGMajor
	EstimateGMinor
	EstimateAFlatMajor
	EstimateAFlatMinor
	EstimateSilence
)

// UnknownLabel is rendered for the silence sentinel and anything outside the
// 24 defined keys.
const UnknownLabel = "Unknown"

// keyLabels is ordered to match the Estimate constants. The spelling is
// load-bearing: downstream tag matching expects sharps, with minors carrying
// a trailing "m".
var keyLabels = [...]string{
	"A", "Am",
	"A#", "A#m",
	"B", "Bm",
	"C", "Cm",
	"C#", "C#m",
	"D", "Dm",
	"D#", "D#m",
	"E", "Em",
	"F", "Fm",
	"F#", "F#m",
	"G", "Gm",
	"G#", "G#m",
}

// camelotByLabel implements the Camelot wheel: each major key shares a number
// with its relative minor, suffixed "B" for major and "A" for minor.
var camelotByLabel = map[string]string{
	"C": "8B", "Am": "8A",
	"G": "9B", "Em": "9A",
	"D": "10B", "Bm": "10A",
	"A": "11B", "F#m": "11A",
	"E": "12B", "C#m": "12A",
	"B": "1B", "G#m": "1A",
	"F#": "2B", "D#m": "2A",
	"C#": "3B", "A#m": "3A",
	"G#": "4B", "Fm": "4A",
	"D#": "5B", "Cm": "5A",
	"A#": "6B", "Gm": "6A",
	"F": "7B", "Dm": "7A",
}

// Estimates returns the 24 key values in declaration order, excluding the
// silence sentinel.
func Estimates() []Estimate {
	out := make([]Estimate, len(keyLabels))
	for i := range out {
		out[i] = Estimate(i)
	}
	return out
}

// Valid reports whether the estimate is one of the 24 defined keys.
func (e Estimate) Valid() bool {
	return e >= 0 && int(e) < len(keyLabels)
}

// Label returns the short key label, e.g. "Am" or "C#".
func (e Estimate) Label() string {
	if !e.Valid() {
		return UnknownLabel
	}
	return keyLabels[e]
}

// Camelot returns the Camelot wheel label, e.g. "8A".
func (e Estimate) Camelot() string {
	return CamelotForLabel(e.Label())
}

// CamelotForLabel maps a key label to its Camelot wheel label.
func CamelotForLabel(label string) string {
	if camelot, ok := camelotByLabel[label]; ok {
		return camelot
	}
	return UnknownLabel
}

// EstimateForPitchClass converts a chroma pitch class (0 = C) and mode into
// the corresponding estimate.
func EstimateForPitchClass(pitchClass int, minor bool) Estimate {
	// Estimate constants are laid out in semitone order starting at A
	// (pitch class 9), majors on even offsets.
	idx := ((pitchClass%12)+3)%12 * 2
	if minor {
		idx++
	}
	return Estimate(idx)
}
