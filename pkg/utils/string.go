package utils

import "unicode/utf8"

// Truncate shortens s to at most maxLen bytes followed by "...", so event
// payloads stay readable in log lines. The cut backs off to a rune boundary.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}

	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
