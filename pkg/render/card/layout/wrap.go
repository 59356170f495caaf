package layout

import (
	"strings"
	"unicode/utf8"
)

// Ellipsis marks truncated text.
const Ellipsis = "…"

// Wrap splits text into lines of at most maxChars runes.
//
// Words are packed greedily and joined by single spaces. A word longer than
// maxChars ends the current line and is hard-split into maxChars-sized
// chunks. Blank text yields a single empty line so callers always have a
// line to draw.
func Wrap(text string, maxChars int) []string {
	maxChars = max(maxChars, 1)
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	cur, curLen := "", 0
	flush := func() {
		if curLen > 0 {
			lines = append(lines, cur)
			cur, curLen = "", 0
		}
	}

	for _, w := range words {
		n := utf8.RuneCountInString(w)
		if n > maxChars {
			flush()
			r := []rune(w)
			for len(r) > 0 {
				k := min(maxChars, len(r))
				lines = append(lines, string(r[:k]))
				r = r[k:]
			}
			continue
		}
		switch {
		case curLen == 0:
			cur, curLen = w, n
		case curLen+1+n <= maxChars:
			cur += " " + w
			curLen += 1 + n
		default:
			flush()
			cur, curLen = w, n
		}
	}
	flush()
	return lines
}

// Truncate shortens s to at most maxChars runes, replacing the tail with an ellipsis.
func Truncate(s string, maxChars int) string {
	if maxChars <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxChars {
		return s
	}
	r := []rune(s)
	return strings.TrimRight(string(r[:maxChars-1]), " ") + Ellipsis
}

// clampLines keeps the first limit lines, ellipsizing the last kept one.
// It reports whether anything was dropped.
func clampLines(lines []string, limit, maxChars int) ([]string, bool) {
	if limit <= 0 || len(lines) <= limit {
		return lines, false
	}
	kept := append([]string(nil), lines[:limit]...)
	last := strings.TrimRight(kept[limit-1], " ")
	if utf8.RuneCountInString(last)+1 > maxChars {
		r := []rune(last)
		last = strings.TrimRight(string(r[:max(maxChars-1, 0)]), " ")
	}
	kept[limit-1] = last + Ellipsis
	return kept, true
}
