package filestore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/programme-lv/sampler/internal/samples"
	"github.com/puzpuzpuz/xsync/v3"
)

type cachedFile struct {
	modTime time.Time
	size    int64
	content string
}

// FileStore resolves sample sources to text. Referenced files are cached by
// path and invalidated when their size or modification time changes. Files
// ending in ".zst" are decompressed.
type FileStore struct {
	decoder *zstd.Decoder
	cache   *xsync.MapOf[string, cachedFile]
}

func New() (*FileStore, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	return &FileStore{
		decoder: dec,
		cache:   xsync.NewMapOf[string, cachedFile](),
	}, nil
}

func (fs *FileStore) Close() {
	fs.decoder.Close()
}

// Resolve returns the text a source stands for. Relative paths are taken
// relative to baseDir.
func (fs *FileStore) Resolve(src samples.Source, baseDir string) (string, error) {
	if !src.IsFile() {
		return src.Text, nil
	}
	path := src.Path
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}
	return fs.read(path)
}

func (fs *FileStore) read(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory", path)
	}

	if c, ok := fs.cache.Load(path); ok && c.size == info.Size() && c.modTime.Equal(info.ModTime()) {
		return c.content, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	if strings.HasSuffix(path, ".zst") {
		data, err = fs.decoder.DecodeAll(data, nil)
		if err != nil {
			return "", fmt.Errorf("failed to decompress %s: %w", path, err)
		}
	}

	content := string(data)
	fs.cache.Store(path, cachedFile{
		modTime: info.ModTime(),
		size:    info.Size(),
		content: content,
	})
	return content, nil
}
