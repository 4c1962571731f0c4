package xdg

import (
	"os"
	"path/filepath"
)

// XDGDirs provides access to XDG Base Directory Specification compliant paths
type XDGDirs struct {
	configHome string
	cacheHome  string
}

// NewXDGDirs creates a new XDGDirs instance with proper defaults according to XDG spec
func NewXDGDirs() *XDGDirs {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = os.Getenv("HOME")
		if homeDir == "" {
			homeDir = os.TempDir()
		}
	}

	xdg := &XDGDirs{}

	xdg.configHome = os.Getenv("XDG_CONFIG_HOME")
	if xdg.configHome == "" {
		xdg.configHome = filepath.Join(homeDir, ".config")
	}

	xdg.cacheHome = os.Getenv("XDG_CACHE_HOME")
	if xdg.cacheHome == "" {
		xdg.cacheHome = filepath.Join(homeDir, ".cache")
	}

	return xdg
}

func (x *XDGDirs) ConfigHome() string {
	return x.configHome
}

func (x *XDGDirs) CacheHome() string {
	return x.cacheHome
}

// AppConfigDir returns the application-specific config directory
func (x *XDGDirs) AppConfigDir(appName string) string {
	return filepath.Join(x.configHome, appName)
}

// AppCacheDir returns the application-specific cache directory
func (x *XDGDirs) AppCacheDir(appName string) string {
	return filepath.Join(x.cacheHome, appName)
}

// EnsureDir creates the directory with appropriate permissions if it doesn't exist
func (x *XDGDirs) EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}
