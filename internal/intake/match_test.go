package intake

import "testing"

func TestMatchOption_KeywordContainment(t *testing.T) {
	tests := []struct {
		name      string
		utterance string
		options   []string
		want      string
		matched   bool
	}{
		{
			name:      "exact word inside phrase",
			utterance: "I want to book an appointment please",
			options:   reasonOptions(),
			want:      ReasonSchedule,
			matched:   true,
		},
		{
			name:      "single keyword",
			utterance: "referral",
			options:   reasonOptions(),
			want:      ReasonReferral,
			matched:   true,
		},
		{
			name:      "case insensitive",
			utterance: "MEDICAID",
			options:   insuranceOptions(),
			want:      InsuranceMedicaid,
			matched:   true,
		},
		{
			name:      "declared order breaks ties",
			utterance: "new existing whichever",
			options:   patientTypeOptions(),
			want:      PatientNew,
			matched:   true,
		},
		{
			name:      "provider last name",
			utterance: "can I see ahmed",
			options:   []string{"Dr. Ahmed", "Sarah Eannarelli"},
			want:      "Dr. Ahmed",
			matched:   true,
		},
		{
			name:      "no keyword no similarity",
			utterance: "xyz",
			options:   reasonOptions(),
			matched:   false,
		},
		{
			name:      "empty utterance",
			utterance: "   ",
			options:   reasonOptions(),
			matched:   false,
		},
		{
			name:      "empty options",
			utterance: "medicaid",
			options:   nil,
			matched:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := MatchOption(tt.utterance, tt.options)
			if ok != tt.matched {
				t.Fatalf("MatchOption(%q) matched = %v, want %v", tt.utterance, ok, tt.matched)
			}
			if got != tt.want {
				t.Errorf("MatchOption(%q) = %q, want %q", tt.utterance, got, tt.want)
			}
		})
	}
}

func TestMatchOption_FuzzyFallback(t *testing.T) {
	// No option word is contained in the utterance, so the Levenshtein
	// ratio decides.
	got, ok := MatchOption("comercial", []string{"Medicaid", "Commercial"})
	if !ok {
		t.Fatal("expected fuzzy match for misheard utterance")
	}
	if got != "Commercial" {
		t.Errorf("got %q, want Commercial", got)
	}
}

func TestMatchOption_FuzzyBelowThresholdRejected(t *testing.T) {
	if got, ok := MatchOption("banana", []string{"Medicaid", "Commercial"}); ok {
		t.Errorf("expected no match, got %q", got)
	}
}

func TestMatchOption_Deterministic(t *testing.T) {
	first, _ := MatchOption("schedule an appointment", reasonOptions())
	for i := 0; i < 10; i++ {
		got, _ := MatchOption("schedule an appointment", reasonOptions())
		if got != first {
			t.Fatalf("result changed between runs: %q vs %q", first, got)
		}
	}
}

func TestSimilarityRatio(t *testing.T) {
	tests := []struct {
		a, b string
		min  float64
		max  float64
	}{
		{"medicaid", "medicaid", 1, 1},
		{"", "", 1, 1},
		{"medicade", "medicaid", 0.7, 1},
		{"abc", "xyz", 0, 0.01},
	}
	for _, tt := range tests {
		got := similarityRatio(tt.a, tt.b)
		if got < tt.min || got > tt.max {
			t.Errorf("similarityRatio(%q, %q) = %v, want within [%v, %v]", tt.a, tt.b, got, tt.min, tt.max)
		}
	}
}
