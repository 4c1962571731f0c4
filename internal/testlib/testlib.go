package testlib

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"
)

const (
	HeaderName = "testlib.h"
	DefaultURL = "https://raw.githubusercontent.com/MikeMirzayanov/testlib/master/testlib.h"
)

// Provider makes sure a directory holding testlib.h exists so special judges
// can be compiled against it.
type Provider struct {
	configuredDir string
	cacheDir      string
	url           string
	client        *http.Client

	mu sync.Mutex
}

// NewProvider prefers configuredDir when it already holds the header and
// otherwise downloads the header from url into cacheDir.
func NewProvider(configuredDir, cacheDir, url string) *Provider {
	if url == "" {
		url = DefaultURL
	}
	return &Provider{
		configuredDir: configuredDir,
		cacheDir:      cacheDir,
		url:           url,
		client:        http.DefaultClient,
	}
}

// IncludeDir returns a directory containing testlib.h.
func (p *Provider) IncludeDir(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.configuredDir != "" && hasHeader(p.configuredDir) {
		return p.configuredDir, nil
	}
	if p.cacheDir == "" {
		return "", fmt.Errorf("%s not found in %q and no cache directory is set", HeaderName, p.configuredDir)
	}
	if hasHeader(p.cacheDir) {
		return p.cacheDir, nil
	}
	if err := p.download(ctx); err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", HeaderName, err)
	}
	return p.cacheDir, nil
}

func (p *Provider) download(ctx context.Context) error {
	slog.Info("downloading testlib header", "url", p.url, "dir", p.cacheDir)
	if err := os.MkdirAll(p.cacheDir, 0755); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	tmp, err := os.CreateTemp(p.cacheDir, HeaderName+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), filepath.Join(p.cacheDir, HeaderName))
}

func hasHeader(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, HeaderName))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Warn("failed to stat testlib header", "dir", dir, "error", err)
		}
		return false
	}
	return !info.IsDir()
}
