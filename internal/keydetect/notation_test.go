package keydetect

import "testing"

func TestLabelsAreDistinct(t *testing.T) {
	seen := make(map[string]Estimate)
	for _, estimate := range Estimates() {
		label := estimate.Label()
		if label == UnknownLabel {
			t.Fatalf("estimate %d rendered as %q", estimate, label)
		}
		if prev, ok := seen[label]; ok {
			t.Fatalf("label %q produced by both %d and %d", label, prev, estimate)
		}
		seen[label] = estimate
	}
	if len(seen) != 24 {
		t.Fatalf("expected 24 labels, got %d", len(seen))
	}
}

func TestCamelotBijection(t *testing.T) {
	seen := make(map[string]string)
	for _, estimate := range Estimates() {
		camelot := estimate.Camelot()
		if camelot == UnknownLabel {
			t.Fatalf("no camelot label for %q", estimate.Label())
		}
		if prev, ok := seen[camelot]; ok {
			t.Fatalf("camelot %q assigned to both %q and %q", camelot, prev, estimate.Label())
		}
		seen[camelot] = estimate.Label()
	}
	if len(seen) != 24 {
		t.Fatalf("expected 24 camelot labels, got %d", len(seen))
	}
}

func TestCamelotTable(t *testing.T) {
	cases := map[string]string{
		"C":  "8B",
		"Am": "8A",
		"G":  "9B",
		"Em": "9A",
		"F#": "2B",
		"Dm": "7A",
		"A#": "6B",
		"Fm": "4A",
	}
	for label, want := range cases {
		if got := CamelotForLabel(label); got != want {
			t.Errorf("CamelotForLabel(%q) = %q, want %q", label, got, want)
		}
	}
	if got := CamelotForLabel("H"); got != UnknownLabel {
		t.Errorf("CamelotForLabel(%q) = %q, want %q", "H", got, UnknownLabel)
	}
}

func TestSilenceRendersUnknown(t *testing.T) {
	if got := EstimateSilence.Label(); got != UnknownLabel {
		t.Errorf("silence label = %q, want %q", got, UnknownLabel)
	}
	if got := EstimateSilence.Camelot(); got != UnknownLabel {
		t.Errorf("silence camelot = %q, want %q", got, UnknownLabel)
	}
}

func TestEstimateForPitchClass(t *testing.T) {
	cases := []struct {
		pitchClass int
		minor      bool
		want       Estimate
	}{
		{0, false, EstimateCMajor},
		{0, true, EstimateCMinor},
		{9, false, EstimateAMajor},
		{9, true, EstimateAMinor},
		{7, false, EstimateGMajor},
		{4, true, EstimateEMinor},
		{11, false, EstimateBMajor},
		{10, true, EstimateBFlatMinor},
	}
	for _, tc := range cases {
		if got := EstimateForPitchClass(tc.pitchClass, tc.minor); got != tc.want {
			t.Errorf("EstimateForPitchClass(%d, %v) = %v (%q), want %v (%q)",
				tc.pitchClass, tc.minor, got, got.Label(), tc.want, tc.want.Label())
		}
	}
}

func TestEstimateForPitchClassCoversAllKeys(t *testing.T) {
	seen := make(map[Estimate]bool)
	for pc := 0; pc < 12; pc++ {
		seen[EstimateForPitchClass(pc, false)] = true
		seen[EstimateForPitchClass(pc, true)] = true
	}
	if len(seen) != 24 {
		t.Fatalf("expected 24 distinct estimates, got %d", len(seen))
	}
}
