package batch

import (
	"context"
	"errors"
	"os"
	"sync"

	"github.com/programme-lv/sampler/internal/logger"
)

// executables collects compiled binaries of one job and removes them once.
type executables struct {
	mu    sync.Mutex
	paths []string
	once  sync.Once
}

func (e *executables) add(path string) {
	if path == "" {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.paths = append(e.paths, path)
}

func (e *executables) remove(ctx context.Context) {
	e.once.Do(func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		for _, path := range e.paths {
			err := os.Remove(path)
			if err != nil && !errors.Is(err, os.ErrNotExist) {
				logger.FromContext(ctx).Warn("failed to remove executable", "path", path, "error", err)
			}
		}
	})
}
