package relay

import "strings"

// shellQuote quotes s for a POSIX shell. Paths and plain words pass through;
// anything else is single-quoted with embedded quotes written as '\''.
func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.ContainsFunc(s, needsQuote) {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func needsQuote(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return false
	case strings.ContainsRune("-_./@:,+=", r):
		return false
	}
	return true
}
