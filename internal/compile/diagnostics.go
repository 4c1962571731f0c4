package compile

import (
	"regexp"
	"strconv"
	"strings"
)

// file:line:col: severity: message, column optional
var diagRe = regexp.MustCompile(`^(.+?):(\d+):(?:(\d+):)? (fatal error|error|warning|note): (.*)$`)

// ParseDiagnostics extracts gcc/clang style diagnostics from compiler output.
func ParseDiagnostics(output string) []Diagnostic {
	res := []Diagnostic{}
	for _, line := range strings.Split(output, "\n") {
		m := diagRe.FindStringSubmatch(strings.TrimRight(line, "\r"))
		if m == nil {
			continue
		}
		d := Diagnostic{Severity: m[4], Message: m[5]}
		d.Line, _ = strconv.Atoi(m[2])
		if m[3] != "" {
			d.Column, _ = strconv.Atoi(m[3])
		}
		if d.Severity == "fatal error" {
			d.Severity = "error"
		}
		res = append(res, d)
	}
	return res
}
