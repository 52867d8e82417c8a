package calibration

import (
	"strings"
	"testing"
)

func TestEvaluateCheck_Exact(t *testing.T) {
	ok, _ := EvaluateCheck(Check{Type: CheckExact, Expected: "Paris"}, "Paris")
	if !ok {
		t.Errorf("expected exact match to pass")
	}
	ok, _ = EvaluateCheck(Check{Type: CheckExact, Expected: "Paris"}, "paris")
	if ok {
		t.Errorf("expected case-sensitive mismatch to fail")
	}
}

func TestEvaluateCheck_Contains(t *testing.T) {
	ok, _ := EvaluateCheck(Check{Type: CheckContains, Expected: "cap"}, "the capital is Paris")
	if !ok {
		t.Errorf("expected substring match to pass")
	}
}

func TestEvaluateCheck_RegexInvalidProducesDiagnostic(t *testing.T) {
	ok, diag := EvaluateCheck(Check{Type: CheckRegex, Expected: "("}, "anything")
	if ok {
		t.Errorf("expected invalid regex to fail the check")
	}
	if diag == "" {
		t.Errorf("expected a diagnostic message")
	}
	if want := "regular expression"; !strings.Contains(diag, want) {
		t.Errorf("expected diagnostic to mention %q, got %q", want, diag)
	}
}

func TestEvaluateCheck_RegexValid(t *testing.T) {
	ok, _ := EvaluateCheck(Check{Type: CheckRegex, Expected: `^\d+$`}, "12345")
	if !ok {
		t.Errorf("expected regex match to pass")
	}
}

func TestPassRate_WeightedAndClamped(t *testing.T) {
	checks := []Check{{Weight: 2}, {Weight: 1}}
	rate := PassRate(checks, []bool{true, false})
	if rate != 2.0/3.0 {
		t.Errorf("rate = %v, want 2/3", rate)
	}
}

func TestPassRate_EmptyChecksPassTrivially(t *testing.T) {
	if rate := PassRate(nil, nil); rate != 1 {
		t.Errorf("expected trivial pass rate 1, got %v", rate)
	}
}
