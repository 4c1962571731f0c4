package compile

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseDiagnostics(t *testing.T) {
	out := `/tmp/sampler-1.cpp: In function 'int main()':
/tmp/sampler-1.cpp:4:12: error: 'x' was not declared in this scope
    4 |     return x;
      |            ^
/tmp/sampler-1.cpp:2:1: warning: unused variable 'y' [-Wunused-variable]
/tmp/sampler-1.cpp:1:10: fatal error: bits/stdc++.hh: No such file or directory
C:\work\a.cpp:7: note: candidate
`
	require.Equal(t, []Diagnostic{
		{Line: 4, Column: 12, Severity: "error", Message: "'x' was not declared in this scope"},
		{Line: 2, Column: 1, Severity: "warning", Message: "unused variable 'y' [-Wunused-variable]"},
		{Line: 1, Column: 10, Severity: "error", Message: "bits/stdc++.hh: No such file or directory"},
		{Line: 7, Severity: "note", Message: "candidate"},
	}, ParseDiagnostics(out))

	require.Empty(t, ParseDiagnostics(""))
}
