package core

import "strings"

// firstBalancedObject returns the substring from the first '{' to the brace
// that closes it. Braces inside quoted strings do not count, and a backslash
// escapes the byte after it. ok is false when the object never closes.
//
// Iterating bytes is safe: UTF-8 never encodes '{', '}', '"' or '\' inside a
// multi-byte sequence.
func firstBalancedObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escape := false

	for i := start; i < len(s); i++ {
		b := s[i]

		if escape {
			escape = false
			continue
		}

		if inString {
			switch b {
			case '\\':
				escape = true
			case '"':
				inString = false
			}
			continue
		}

		switch b {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}

	return "", false
}
