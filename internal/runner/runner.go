package runner

import (
	"context"
	"sync"
)

// DefaultOutputLimitBytes caps the stdout a program may produce.
const DefaultOutputLimitBytes = 64 << 20

type Request struct {
	Path    string
	Args    []string
	WorkDir string
	Stdin   string

	TimeLimitMs      int
	OutputLimitBytes int64
}

type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int

	ElapsedMs int64

	TimedOut            bool
	OutputLimitExceeded bool
}

// Service runs a compiled program. Non-zero exits, timeouts and oversized
// output are reported in Result; an error means the program could not be run.
type Service interface {
	Run(ctx context.Context, req Request) (*Result, error)
}

// CappedBuffer keeps at most limit bytes and calls onExceed once when more
// is written. Writes never fail so the child does not see EPIPE.
type CappedBuffer struct {
	mu       sync.Mutex
	buf      []byte
	limit    int64
	exceeded bool
	onExceed func()
}

func (b *CappedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	room := b.limit - int64(len(b.buf))
	if int64(len(p)) > room {
		if room > 0 {
			b.buf = append(b.buf, p[:room]...)
		}
		if !b.exceeded {
			b.exceeded = true
			if b.onExceed != nil {
				b.onExceed()
			}
		}
		return len(p), nil
	}
	b.buf = append(b.buf, p...)
	return len(p), nil
}

func (b *CappedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return string(b.buf)
}

func (b *CappedBuffer) Exceeded() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.exceeded
}

// NewCappedBuffer returns a buffer holding at most limit bytes.
func NewCappedBuffer(limit int64, onExceed func()) *CappedBuffer {
	return &CappedBuffer{limit: limit, onExceed: onExceed}
}
