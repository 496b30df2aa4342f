package http

import (
	"strconv"
	"strings"
)

// sanitizeInput drops control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 {
			return -1
		}
		return r
	}, s)
}

// formatStars renders a star count with thousands separators, e.g. 12,345.
func formatStars(n int) string {
	if n < 0 {
		return "-" + formatStars(-n)
	}
	s := strconv.Itoa(n)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// withQuery appends an encoded query string to path when it is non-empty.
func withQuery(path, query string) string {
	if query == "" {
		return path
	}
	return path + "?" + query
}
