package api_test

import (
	"strings"
	"testing"

	"github.com/programme-lv/sampler/api"
	"github.com/stretchr/testify/require"
)

func TestTrimStrToRect(t *testing.T) {
	require.Equal(t, "", api.TrimStrToRect("", 2, 3))
	require.Equal(t, "ab\ncd", api.TrimStrToRect("ab\ncd", 2, 3))
	require.Equal(t, "abc[...]\nd", api.TrimStrToRect("abcdef\nd", 2, 3))
	require.Equal(t, "a\nb\n[...]", api.TrimStrToRect("a\nb\nc\nd", 2, 3))
	require.Equal(t, "ēēē[...]", api.TrimStrToRect("ēēēē", 1, 3))
}

func TestTrimVerdict(t *testing.T) {
	v := api.Verdict{Status: api.WrongAnswer, Output: strings.Repeat("1\n", 100)}
	trimmed := api.TrimVerdict(v)
	require.Equal(t, api.WrongAnswer, trimmed.Status)
	require.Len(t, strings.Split(trimmed.Output, "\n"), api.MaxOutputHeight+1)
	require.Len(t, v.Output, 200)
}
