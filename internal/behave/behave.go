package behave

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"github.com/programme-lv/sampler/internal/samples"
)

// SpecSample is one [[samples]] table. Exactly one of In/InFile and one of
// Ans/AnsFile must be set.
type SpecSample struct {
	In          *string `toml:"in"`
	Ans         *string `toml:"ans"`
	InFile      string  `toml:"in_file"`
	AnsFile     string  `toml:"ans_file"`
	TimeLimitMs int     `toml:"time_limit_ms"`
}

// SpecJudge is the optional [judge] table.
type SpecJudge struct {
	Spj string `toml:"spj"`
}

type specRoot struct {
	Samples []SpecSample `toml:"samples"`
	Judge   *SpecJudge   `toml:"judge"`
}

type Sample struct {
	Input       samples.Source
	Expected    samples.Source
	TimeLimitMs int
}

// File is the content of an import file.
type File struct {
	Samples []Sample
	// Judge is nil when the file has no [judge] table.
	Judge *samples.JudgeConfig
}

// Parse reads an import TOML file such as
//
//	[[samples]]
//	in = "3\n1 2 3\n"
//	ans = "6\n"
//
//	[[samples]]
//	in_file = "tests/big.in.zst"
//	ans_file = "tests/big.ans"
//	time_limit_ms = 2000
//
// Relative file paths are taken relative to the TOML file and returned
// absolute.
func Parse(path string) (*File, error) {
	path, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read import file: %w", err)
	}
	var root specRoot
	if err := toml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	res := &File{Samples: make([]Sample, 0, len(root.Samples))}
	for i, s := range root.Samples {
		in, err := source(s.In, relTo(dir, s.InFile))
		if err != nil {
			return nil, fmt.Errorf("sample %d input: %w", i+1, err)
		}
		ans, err := source(s.Ans, relTo(dir, s.AnsFile))
		if err != nil {
			return nil, fmt.Errorf("sample %d answer: %w", i+1, err)
		}
		if s.TimeLimitMs < 0 {
			return nil, fmt.Errorf("sample %d: negative time limit %d", i+1, s.TimeLimitMs)
		}
		res.Samples = append(res.Samples, Sample{Input: in, Expected: ans, TimeLimitMs: s.TimeLimitMs})
	}
	if root.Judge != nil {
		res.Judge = &samples.JudgeConfig{
			UseSpj:        root.Judge.Spj != "",
			SpjSourcePath: relTo(dir, root.Judge.Spj),
		}
	}
	return res, nil
}

func relTo(dir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

func source(text *string, file string) (samples.Source, error) {
	switch {
	case text != nil && file != "":
		return samples.Source{}, fmt.Errorf("both literal and file given")
	case text != nil:
		return samples.Text(*text), nil
	case file != "":
		return samples.File(file), nil
	default:
		return samples.Source{}, fmt.Errorf("neither literal nor file given")
	}
}

// Apply appends the samples to set and replaces its judge configuration when
// the file has one. It returns the number of cases added.
func Apply(set *samples.Set, f *File) (int, error) {
	for i, s := range f.Samples {
		if _, err := set.Add(s.Input, s.Expected, s.TimeLimitMs); err != nil {
			return i, err
		}
	}
	if f.Judge != nil {
		if err := set.SetJudge(*f.Judge); err != nil {
			return len(f.Samples), err
		}
	}
	return len(f.Samples), nil
}
