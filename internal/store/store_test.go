package store

import (
	"testing"
)

func TestOutcomeValues(t *testing.T) {
	outcomes := []Outcome{OutcomeOpen, OutcomeEqual, OutcomeMale, OutcomeFemale}
	expected := []string{"open", "equal", "male", "female"}
	for i, o := range outcomes {
		if string(o) != expected[i] {
			t.Errorf("expected %s, got %s", expected[i], o)
		}
	}
}

func TestOutcomeTerminal(t *testing.T) {
	if OutcomeOpen.Terminal() {
		t.Error("open must not be terminal")
	}
	for _, o := range []Outcome{OutcomeEqual, OutcomeMale, OutcomeFemale} {
		if !o.Terminal() {
			t.Errorf("expected %s to be terminal", o)
		}
		if !o.Valid() {
			t.Errorf("expected %s to be valid", o)
		}
	}
	if Outcome("maybe").Valid() {
		t.Error("unknown outcome reported valid")
	}
}

func TestParseGender(t *testing.T) {
	g, err := ParseGender("female")
	if err != nil || g != GenderFemale {
		t.Errorf("expected female, got %q (%v)", g, err)
	}
	if _, err := ParseGender("other"); err == nil {
		t.Error("expected error for unknown gender")
	}
}

func TestDefaultRating(t *testing.T) {
	if DefaultMu != 25.0 {
		t.Errorf("expected default mu 25, got %f", DefaultMu)
	}
	if DefaultSigma < 8.333 || DefaultSigma > 8.334 {
		t.Errorf("expected default sigma ~8.333, got %f", DefaultSigma)
	}
}
