package api

import "strings"

// TrimStrToRect keeps at most maxHeight lines of at most maxWidth characters,
// marking every cut with "[...]".
func TrimStrToRect(s string, maxHeight int, maxWidth int) string {
	if s == "" {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) > maxHeight {
		lines = lines[:maxHeight]
		lines = append(lines, "[...]")
	}
	var res strings.Builder
	for i, line := range lines {
		if i > 0 {
			res.WriteString("\n")
		}
		runes := []rune(line)
		if len(runes) > maxWidth {
			res.WriteString(string(runes[:maxWidth]) + "[...]")
		} else {
			res.WriteString(line)
		}
	}
	return res.String()
}

// TrimVerdict returns a copy of v whose output fits the event size limits.
func TrimVerdict(v Verdict) *Verdict {
	v.Output = TrimStrToRect(v.Output, MaxOutputHeight, MaxOutputWidth)
	return &v
}
