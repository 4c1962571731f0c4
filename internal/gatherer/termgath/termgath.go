package termgath

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/programme-lv/sampler/api"
)

var (
	pass  = color.New(color.FgGreen, color.Bold)
	fail  = color.New(color.FgRed, color.Bold)
	warn  = color.New(color.FgYellow, color.Bold)
	faint = color.New(color.Faint)
)

// StatusColor is the colour used to print a verdict status.
func StatusColor(s api.Status) *color.Color {
	switch s {
	case api.Accepted:
		return pass
	case api.TimeLimitExceeded, api.OutputLimitExceeded:
		return warn
	default:
		return fail
	}
}

// TerminalGatherer prints progress lines as they arrive.
type TerminalGatherer struct {
	mu        sync.Mutex
	w         io.Writer
	startedAt time.Time
	verbose   bool
}

func New(w io.Writer, verbose bool) *TerminalGatherer {
	return &TerminalGatherer{w: w, startedAt: time.Now(), verbose: verbose}
}

func (t *TerminalGatherer) printf(c *color.Color, format string, a ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if c == nil {
		fmt.Fprintf(t.w, format, a...)
		return
	}
	c.Fprintf(t.w, format, a...)
}

func (t *TerminalGatherer) StartJob(sourcePath string, caseCount int) {
	t.mu.Lock()
	t.startedAt = time.Now()
	t.mu.Unlock()
	t.printf(nil, "== Judging %s (%d cases) ==\n", sourcePath, caseCount)
}

func (t *TerminalGatherer) StartCompile() {
	t.printf(faint, "-- Compiling --\n")
}

func (t *TerminalGatherer) FinishCompile(success bool, output string, elapsedMs int64) {
	if success {
		t.printf(faint, "-- Compiled in %dms --\n", elapsedMs)
	}
	if output != "" && (t.verbose || !success) {
		t.printf(nil, "%s\n", strings.TrimRight(output, "\n"))
	}
}

func (t *TerminalGatherer) ReachTest(testId int) {
	if t.verbose {
		t.printf(faint, "-> Case %d\n", testId)
	}
}

func (t *TerminalGatherer) FinishTest(testId int, v api.Verdict) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.w, "Case %d: ", testId)
	StatusColor(v.Status).Fprintf(t.w, "%-5s", v.Status)
	fmt.Fprintf(t.w, " %dms", v.ElapsedMs)
	if v.UsedSpj {
		fmt.Fprint(t.w, " (special judge)")
	}
	if v.Mismatch != nil {
		fmt.Fprintf(t.w, " first difference at %d:%d", v.Mismatch.Line, v.Mismatch.Column)
	}
	fmt.Fprintln(t.w)
	if t.verbose && v.Output != "" {
		fmt.Fprintln(t.w, api.TrimStrToRect(v.Output, api.MaxOutputHeight, api.MaxOutputWidth))
	}
}

func (t *TerminalGatherer) CompileError(msg string) {
	t.printf(fail, "== Compilation error ==\n")
	t.printf(nil, "%s\n", strings.TrimRight(msg, "\n"))
}

func (t *TerminalGatherer) InternalError(msg string) {
	t.printf(fail, "== Internal error: %s ==\n", msg)
}

func (t *TerminalGatherer) FinishNoError() {
	t.mu.Lock()
	dur := time.Since(t.startedAt).Round(time.Millisecond)
	t.mu.Unlock()
	t.printf(nil, "== Finished in %s ==\n", dur)
}
