// Package prp gates and cleans free-text requirement content (Product
// Requirement Prompts) before it reaches the generation pipeline.
package prp

import (
	"strings"

	"taskforge/internal/types"
)

const (
	// MinContentLength is the shortest PRP worth generating from.
	MinContentLength = 50
	// MaxContentLength bounds PRP size before prompt assembly.
	MaxContentLength = 50000
)

const (
	msgEmpty    = "PRP content cannot be empty"
	msgTooShort = "PRP content is too short to be meaningful"
	msgTooLong  = "PRP content exceeds maximum length of 50,000 characters"
	msgNoSignal = "PRP content should contain implementation instructions, code patterns, or technical specifications"
)

// implementationKeywords are the signals that separate actionable requirement
// text from prose. Matched case-insensitively.
var implementationKeywords = []string{
	"implement", "create", "build", "code", "function",
	"class", "component", "api", "test", "validate",
}

// ValidateContent checks requirement text for emptiness, length bounds, and
// the presence of at least one implementation signal. Every applicable flag
// accumulates into one result.
func ValidateContent(text string) types.ValidationResult {
	var errs []string

	if strings.TrimSpace(text) == "" {
		errs = append(errs, msgEmpty)
	}
	if len(text) > 0 && len(text) < MinContentLength {
		errs = append(errs, msgTooShort)
	}
	if len(text) > MaxContentLength {
		errs = append(errs, msgTooLong)
	}

	lower := strings.ToLower(text)
	found := false
	for _, kw := range implementationKeywords {
		if strings.Contains(lower, kw) {
			found = true
			break
		}
	}
	if !found {
		errs = append(errs, msgNoSignal)
	}

	if len(errs) > 0 {
		return types.InvalidResult(errs...)
	}
	return types.ValidResult()
}

var sanitizeReplacer = strings.NewReplacer(
	"<", "",
	">", "",
	"'", `"`,
	"‘", `"`, // left single quote
	"’", `"`, // right single quote
	"“", `"`, // left double quote
	"”", `"`, // right double quote
)

// Sanitize strips angle brackets entirely (embedded tag names and attributes
// survive as bare text), canonicalizes single and double quote variants to
// the plain double quote, and trims surrounding whitespace. Idempotent:
// Sanitize(Sanitize(x)) == Sanitize(x).
func Sanitize(text string) string {
	return strings.TrimSpace(sanitizeReplacer.Replace(text))
}
