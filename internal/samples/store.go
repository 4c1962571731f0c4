package samples

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/programme-lv/sampler/api"
)

// StoreDirName is the directory under the workspace root holding sample files.
const StoreDirName = ".samples"

// Store persists sample sets as one JSON document per source file.
type Store struct{}

func NewStore() *Store {
	return &Store{}
}

// Key derives the file name of a source file's samples document from the
// path relative to the workspace root. Characters outside [A-Za-z0-9._-]
// become '_', so "a/b.cpp" and "a_b.cpp" share one document.
func Key(workspaceRoot, sourcePath string) string {
	rel, err := filepath.Rel(workspaceRoot, sourcePath)
	if err != nil || strings.HasPrefix(rel, "..") {
		rel = sourcePath
	}
	rel = filepath.ToSlash(rel)
	var b strings.Builder
	for _, r := range rel {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String() + ".json"
}

func (st *Store) Path(workspaceRoot, sourcePath string) string {
	return filepath.Join(workspaceRoot, StoreDirName, Key(workspaceRoot, sourcePath))
}

// Load reads the samples of sourcePath. A missing document yields an empty set.
func (st *Store) Load(workspaceRoot, sourcePath string) (*Set, error) {
	set := New(workspaceRoot, sourcePath)

	data, err := os.ReadFile(st.Path(workspaceRoot, sourcePath))
	if errors.Is(err, os.ErrNotExist) {
		return set, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read samples file: %w", err)
	}

	var doc api.SamplesFile
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse samples file: %w", err)
	}

	set.judge = JudgeConfig{
		UseSpj:        doc.GlobalSettings.UseTestlib,
		SpjSourcePath: doc.GlobalSettings.SpjPath,
	}
	for _, smp := range doc.Samples {
		tl := smp.TimeLimit
		if tl <= 0 {
			tl = DefaultTimeLimitMs
		}
		set.cases = append(set.cases, &TestCase{
			ID:          smp.ID,
			Input:       fromAPI(smp.InputType, smp.Input),
			Expected:    fromAPI(smp.OutputType, smp.Output),
			TimeLimitMs: tl,
			LastVerdict: smp.Result,
		})
	}
	// hand-edited files may carry gaps
	set.renumber()
	return set, nil
}

// Save writes the set atomically next to the other sample documents.
func (st *Store) Save(set *Set) error {
	set.mu.Lock()
	doc := api.SamplesFile{
		Samples: make([]api.Sample, 0, len(set.cases)),
		GlobalSettings: api.GlobalSettings{
			UseTestlib: set.judge.UseSpj,
			SpjPath:    set.judge.SpjSourcePath,
		},
	}
	for _, tc := range set.cases {
		inType, in := toAPI(tc.Input)
		outType, out := toAPI(tc.Expected)
		doc.Samples = append(doc.Samples, api.Sample{
			ID:         tc.ID,
			InputType:  inType,
			OutputType: outType,
			Input:      in,
			Output:     out,
			TimeLimit:  tc.TimeLimitMs,
			Result:     tc.LastVerdict,
		})
	}
	set.mu.Unlock()

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal samples: %w", err)
	}

	path := st.Path(set.workspaceRoot, set.sourcePath)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create samples directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".samples-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp samples file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write samples: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close samples file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move samples file into place: %w", err)
	}
	return nil
}

func fromAPI(t api.SourceType, value string) Source {
	if t == api.FileInput {
		return File(value)
	}
	return Text(value)
}

func toAPI(src Source) (api.SourceType, string) {
	if src.IsFile() {
		return api.FileInput, src.Path
	}
	return api.UserInput, src.Text
}
