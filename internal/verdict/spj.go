package verdict

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/programme-lv/sampler/api"
	"github.com/programme-lv/sampler/internal/runner"
)

// SpjTimeLimitMs bounds every special judge run regardless of the case limit.
const SpjTimeLimitMs = 5000

// check runs a testlib style checker as `checker input output answer`.
// Exit code 0 accepts the output.
func (e *Engine) check(ctx context.Context, checker, input, actual, expected string) (api.Status, error) {
	dir, err := os.MkdirTemp(e.tmpDir, "sampler-spj-*")
	if err != nil {
		return "", fmt.Errorf("failed to create checker dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			slog.Warn("failed to remove checker files", "dir", dir, "error", err)
		}
	}()

	inPath := filepath.Join(dir, "input.txt")
	outPath := filepath.Join(dir, "output.txt")
	ansPath := filepath.Join(dir, "answer.txt")
	files := map[string]string{
		inPath:  input,
		outPath: Normalize(actual),
		ansPath: Normalize(expected),
	}
	for path, content := range files {
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			return "", fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
		}
	}

	res, err := e.runs.Run(ctx, runner.Request{
		Path:             checker,
		Args:             []string{inPath, outPath, ansPath},
		WorkDir:          dir,
		TimeLimitMs:      SpjTimeLimitMs,
		OutputLimitBytes: e.outputLimit,
	})
	if err != nil {
		return "", err
	}

	switch {
	case res.OutputLimitExceeded:
		return api.OutputLimitExceeded, nil
	case res.TimedOut:
		return api.TimeLimitExceeded, nil
	case res.ExitCode == 0:
		return api.Accepted, nil
	default:
		return api.WrongAnswer, nil
	}
}
