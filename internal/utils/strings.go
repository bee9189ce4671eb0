package utils

import (
	"strings"
)

// SplitList splits comma/semicolon separated values into trimmed, non-empty parts.
func SplitList(raw string) []string {
	out := []string{}
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';' || r == '\n'
	})
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Truncate shortens text to maxLen runes, appending "...".
func Truncate(text string, maxLen int) string {
	r := []rune(text)
	if maxLen < 0 || len(r) <= maxLen {
		return text
	}
	return string(r[:maxLen]) + "..."
}

// SafeFilenamePart replaces characters that are unsafe in download file names.
func SafeFilenamePart(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "NA"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "_", "\\", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_")
	s = replacer.Replace(s)
	if len(s) > 40 {
		s = s[:40]
	}
	return s
}
