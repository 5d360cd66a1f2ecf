package perception

import "strings"

// ExtractJSONArray locates the first well-formed JSON array in text that may
// wrap it in prose or a markdown fence. It scans from the first '[' tracking
// bracket depth, string boundaries, and escapes, so brackets inside element
// descriptions cannot truncate the match. Returns the array substring and
// whether one was found.
func ExtractJSONArray(text string) (string, bool) {
	start := strings.Index(text, "[")
	if start == -1 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		ch := text[i]

		if escaped {
			escaped = false
			continue
		}
		if ch == '\\' {
			escaped = true
			continue
		}
		if ch == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		switch ch {
		case '[', '{':
			depth++
		case ']', '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}
