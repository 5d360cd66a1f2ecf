package prp

import (
	"strings"
	"testing"
)

// validPRP is a realistic requirement blob that passes every gate.
const validPRP = `Implement a REST API for task management. Create endpoints for listing,
creating, and updating tasks. Build validation for all inputs and test the
error paths. Each component should log failures.`

func contains(errs []string, substr string) bool {
	for _, e := range errs {
		if strings.Contains(e, substr) {
			return true
		}
	}
	return false
}

func TestValidateContentOK(t *testing.T) {
	result := ValidateContent(validPRP)
	if !result.IsValid {
		t.Errorf("valid PRP rejected: %v", result.Errors)
	}
}

func TestValidateContentEmpty(t *testing.T) {
	result := ValidateContent("")
	if result.IsValid {
		t.Fatal("empty content must be invalid")
	}
	if !contains(result.Errors, "PRP content cannot be empty") {
		t.Errorf("missing empty-content error: %v", result.Errors)
	}
}

func TestValidateContentWhitespaceOnly(t *testing.T) {
	result := ValidateContent("   \n\t  ")
	if result.IsValid || !contains(result.Errors, "cannot be empty") {
		t.Errorf("whitespace-only content: %+v", result)
	}
}

func TestValidateContentTooShort(t *testing.T) {
	result := ValidateContent("Short")
	if result.IsValid {
		t.Fatal("short content must be invalid")
	}
	if !contains(result.Errors, "too short") {
		t.Errorf("missing too-short error: %v", result.Errors)
	}
}

func TestValidateContentTooLong(t *testing.T) {
	long := strings.Repeat("a", MaxContentLength+1)
	result := ValidateContent(long)
	if result.IsValid {
		t.Fatal("oversized content must be invalid")
	}
	if !contains(result.Errors, "exceeds maximum length of 50,000 characters") {
		t.Errorf("missing max-length error: %v", result.Errors)
	}
}

func TestValidateContentNoImplementationSignal(t *testing.T) {
	prose := strings.Repeat("The weather was pleasant and the meeting ran long. ", 3)
	result := ValidateContent(prose)
	if result.IsValid {
		t.Fatal("keyword-free prose must be invalid")
	}
	if !contains(result.Errors, "implementation instructions") {
		t.Errorf("missing keyword error: %v", result.Errors)
	}
}

func TestValidateContentKeywordCaseInsensitive(t *testing.T) {
	text := strings.Repeat("x", 40) + " IMPLEMENT the parser."
	result := ValidateContent(text)
	if !result.IsValid {
		t.Errorf("uppercase keyword should satisfy the signal check: %v", result.Errors)
	}
}

func TestValidateContentAccumulatesFlags(t *testing.T) {
	// Short AND keyword-free: both flags fire at once.
	result := ValidateContent("Hello there")
	if len(result.Errors) < 2 {
		t.Errorf("expected accumulated flags, got %v", result.Errors)
	}
}

func TestSanitizeStripsAngleBrackets(t *testing.T) {
	got := Sanitize(`Use <script src="x"> tags carefully`)
	if strings.ContainsAny(got, "<>") {
		t.Errorf("angle brackets survived: %q", got)
	}
	// Tag innards remain as bare text; this is bracket stripping, not tag
	// removal.
	if !strings.Contains(got, "script src=") {
		t.Errorf("tag body should survive as text: %q", got)
	}
}

func TestSanitizeNormalizesQuotes(t *testing.T) {
	got := Sanitize("it's “fine” and ‘done’")
	if strings.ContainsAny(got, "'‘’“”") {
		t.Errorf("quote variants survived: %q", got)
	}
	if !strings.Contains(got, `it"s "fine"`) {
		t.Errorf("canonical quotes missing: %q", got)
	}
}

func TestSanitizeTrims(t *testing.T) {
	if got := Sanitize("  padded  "); got != "padded" {
		t.Errorf("Sanitize trim = %q", got)
	}
}

func TestSanitizeIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"plain text",
		"<b>bold</b> and 'quoted'",
		"  “curly” <tag attr='v'>  ",
		strings.Repeat("<>'’", 100),
	}
	for _, in := range inputs {
		once := Sanitize(in)
		twice := Sanitize(once)
		if once != twice {
			t.Errorf("Sanitize not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}
