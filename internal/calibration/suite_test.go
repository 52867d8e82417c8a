package calibration

import (
	"strings"
	"testing"
)

func TestParsePromptSuite_DefaultsIDAndTask(t *testing.T) {
	in := `{"prompt":"hello"}` + "\n" + `{"id":"p2","task":"coding","prompt":"write code"}`
	cases, err := ParsePromptSuite(strings.NewReader(in))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cases) != 2 {
		t.Fatalf("expected 2 cases, got %d", len(cases))
	}
	if cases[0].ID != "prompt-0" || cases[0].Task != "general" {
		t.Errorf("defaults not applied: %#v", cases[0])
	}
	if cases[1].ID != "p2" || cases[1].Task != "coding" {
		t.Errorf("explicit values lost: %#v", cases[1])
	}
}

func TestParsePromptSuite_SkipsBlankLines(t *testing.T) {
	in := "{\"prompt\":\"a\"}\n\n{\"prompt\":\"b\"}\n"
	cases, err := ParsePromptSuite(strings.NewReader(in))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cases) != 2 {
		t.Fatalf("expected 2 cases, got %d", len(cases))
	}
}

func TestParsePromptSuite_MalformedLineReportsLineNumber(t *testing.T) {
	in := "{\"prompt\":\"a\"}\n{not json}\n"
	_, err := ParsePromptSuite(strings.NewReader(in))
	if err == nil {
		t.Fatalf("expected parse error")
	}
	pe, ok := err.(*ParseError)
	if !ok {
		t.Fatalf("expected *ParseError, got %T", err)
	}
	if pe.Line != 2 {
		t.Errorf("expected line 2, got %d", pe.Line)
	}
}

func TestParsePromptSuite_EmptyPromptIsFatal(t *testing.T) {
	_, err := ParsePromptSuite(strings.NewReader(`{"prompt":""}`))
	if err == nil {
		t.Fatalf("expected error for empty prompt")
	}
}

func TestParsePromptSuite_ChecksDefaultWeight(t *testing.T) {
	in := `{"prompt":"x","checks":[{"type":"contains","expected":"y"}]}`
	cases, err := ParsePromptSuite(strings.NewReader(in))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cases[0].Checks[0].Weight != 1 {
		t.Errorf("expected default weight 1, got %v", cases[0].Checks[0].Weight)
	}
}
