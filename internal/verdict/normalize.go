package verdict

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/programme-lv/sampler/api"
)

const (
	// DisplayCap is the number of characters of program output kept in a verdict.
	DisplayCap      = 1000
	TruncatedMarker = "[...]"
)

// Normalize trims trailing whitespace from every line and drops trailing
// blank lines. Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRightFunc(line, unicode.IsSpace)
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}

// FirstMismatch returns the 1-based line and column where the normalised
// texts first differ, or nil when they are equal.
func FirstMismatch(actual, expected string) *api.Mismatch {
	a := strings.Split(Normalize(actual), "\n")
	b := strings.Split(Normalize(expected), "\n")
	for i := 0; i < len(a) || i < len(b); i++ {
		if i >= len(a) || i >= len(b) {
			return &api.Mismatch{Line: i + 1, Column: 1}
		}
		if a[i] == b[i] {
			continue
		}
		ra, rb := []rune(a[i]), []rune(b[i])
		col := 0
		for col < len(ra) && col < len(rb) && ra[col] == rb[col] {
			col++
		}
		return &api.Mismatch{Line: i + 1, Column: col + 1}
	}
	return nil
}

// Truncate caps s at DisplayCap characters and appends TruncatedMarker when
// anything was cut.
func Truncate(s string) string {
	if utf8.RuneCountInString(s) <= DisplayCap {
		return s
	}
	n := 0
	for i := range s {
		if n == DisplayCap {
			return s[:i] + TruncatedMarker
		}
		n++
	}
	return s
}
