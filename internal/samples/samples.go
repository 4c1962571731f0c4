package samples

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/programme-lv/sampler/api"
)

const DefaultTimeLimitMs = 1000

var (
	ErrBusy       = errors.New("sample set is being judged")
	ErrNoSuchCase = errors.New("no such test case")
)

type TestCase struct {
	ID          int
	Input       Source
	Expected    Source
	TimeLimitMs int
	LastVerdict *api.Verdict
}

type JudgeConfig struct {
	UseSpj        bool
	SpjSourcePath string
}

// Set is the ordered collection of test cases belonging to one source file.
// Case ids are always 1..N.
type Set struct {
	workspaceRoot string
	sourcePath    string

	mu    sync.Mutex
	cases []*TestCase
	judge JudgeConfig
	state State
}

func New(workspaceRoot, sourcePath string) *Set {
	return &Set{
		workspaceRoot: workspaceRoot,
		sourcePath:    sourcePath,
	}
}

func (s *Set) WorkspaceRoot() string { return s.workspaceRoot }

func (s *Set) SourcePath() string { return s.sourcePath }

// BaseDir is the directory relative file references are resolved against.
func (s *Set) BaseDir() string {
	return filepath.Dir(s.sourcePath)
}

// Add appends a new case and returns it.
func (s *Set) Add(input, expected Source, timeLimitMs int) (*TestCase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.busy() {
		return nil, ErrBusy
	}
	if timeLimitMs <= 0 {
		timeLimitMs = DefaultTimeLimitMs
	}
	tc := &TestCase{
		ID:          s.nextID(),
		Input:       input,
		Expected:    expected,
		TimeLimitMs: timeLimitMs,
	}
	s.cases = append(s.cases, tc)
	return tc, nil
}

// Delete removes the case and renumbers every case after it.
func (s *Set) Delete(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.busy() {
		return ErrBusy
	}
	idx := s.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("delete case %d: %w", id, ErrNoSuchCase)
	}
	s.cases = append(s.cases[:idx], s.cases[idx+1:]...)
	s.renumber()
	return nil
}

func (s *Set) Case(id int) (*TestCase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return nil, fmt.Errorf("case %d: %w", id, ErrNoSuchCase)
	}
	return s.cases[idx], nil
}

// Cases returns the cases in order. The slice is a copy; the cases are not.
func (s *Set) Cases() []*TestCase {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := make([]*TestCase, len(s.cases))
	copy(res, s.cases)
	return res
}

func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cases)
}

func (s *Set) NextID() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextID()
}

func (s *Set) Judge() JudgeConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.judge
}

func (s *Set) SetJudge(cfg JudgeConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.busy() {
		return ErrBusy
	}
	s.judge = cfg
	return nil
}

// Validate checks that ids are exactly 1..N without duplicates.
func (s *Set) Validate() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := mapset.NewThreadUnsafeSet[int]()
	for _, tc := range s.cases {
		if tc.ID < 1 || tc.ID > len(s.cases) {
			return fmt.Errorf("case id %d out of range 1..%d", tc.ID, len(s.cases))
		}
		if !seen.Add(tc.ID) {
			return fmt.Errorf("duplicate case id %d", tc.ID)
		}
	}
	return nil
}

func (s *Set) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Begin moves an idle or finished set into Compiling. A set that is already
// compiling or running is rejected with ErrBusy.
func (s *Set) Begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.busy() {
		return ErrBusy
	}
	s.state = Compiling
	return nil
}

func (s *Set) Advance(to State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !canAdvance(s.state, to) {
		return fmt.Errorf("cannot move sample set from %s to %s", s.state, to)
	}
	s.state = to
	return nil
}

// SetVerdict replaces the last verdict of tc.
func (s *Set) SetVerdict(tc *TestCase, v api.Verdict) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tc.LastVerdict = &v
}

func (s *Set) nextID() int {
	maxID := 0
	for _, tc := range s.cases {
		if tc.ID > maxID {
			maxID = tc.ID
		}
	}
	return maxID + 1
}

func (s *Set) indexOf(id int) int {
	for i, tc := range s.cases {
		if tc.ID == id {
			return i
		}
	}
	return -1
}

func (s *Set) renumber() {
	for i, tc := range s.cases {
		tc.ID = i + 1
	}
}
