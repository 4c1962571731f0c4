package environment

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/programme-lv/sampler/internal/xdg"
)

const AppName = "sampler"

const (
	RunnerLocal   = "local"
	RunnerIsolate = "isolate"
)

type NatsConfig struct {
	URL     string `toml:"url"`
	Subject string `toml:"subject"`
}

type SqsConfig struct {
	QueueURL string `toml:"queue_url"`
	Region   string `toml:"region"`
}

type Config struct {
	Compiler     string   `toml:"compiler"`
	CompilerArgs string   `toml:"compiler_args"`
	IncludeDirs  []string `toml:"include_dirs"`

	TestlibDir string `toml:"testlib_dir"`
	TestlibURL string `toml:"testlib_url"`

	// Runner is "local" or "isolate".
	Runner         string `toml:"runner"`
	IsolateBinary  string `toml:"isolate_binary"`
	Workers        int    `toml:"workers"`
	OutputLimitKiB int64  `toml:"output_limit_kib"`

	LogLevel string `toml:"log_level"`

	Nats NatsConfig `toml:"nats"`
	Sqs  SqsConfig  `toml:"sqs"`
}

func Default() *Config {
	return &Config{
		Compiler:       "g++",
		CompilerArgs:   "-O2 -std=c++17",
		Runner:         RunnerLocal,
		IsolateBinary:  "isolate",
		OutputLimitKiB: 64 * 1024,
		LogLevel:       "info",
		Nats:           NatsConfig{Subject: "sampler.events"},
		Sqs:            SqsConfig{Region: "eu-central-1"},
	}
}

// DefaultPath is config.toml inside the XDG config directory.
func DefaultPath() string {
	return filepath.Join(xdg.NewXDGDirs().AppConfigDir(AppName), "config.toml")
}

// Load reads the TOML file at path, then applies variables from ./.env and
// the environment. An empty path means DefaultPath, which may be missing.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := map[string]*string{
		"SAMPLER_COMPILER":      &c.Compiler,
		"SAMPLER_COMPILER_ARGS": &c.CompilerArgs,
		"SAMPLER_TESTLIB_DIR":   &c.TestlibDir,
		"SAMPLER_RUNNER":        &c.Runner,
		"SAMPLER_NATS_URL":      &c.Nats.URL,
		"SAMPLER_NATS_SUBJECT":  &c.Nats.Subject,
		"SAMPLER_SQS_QUEUE_URL": &c.Sqs.QueueURL,
		"SAMPLER_AWS_REGION":    &c.Sqs.Region,
		"SAMPLER_LOG_LEVEL":     &c.LogLevel,
	}
	for key, dst := range str {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}

	if v, ok := lookup("SAMPLER_WORKERS"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("SAMPLER_WORKERS: %w", err)
		}
		c.Workers = n
	}
	if v, ok := lookup("SAMPLER_OUTPUT_LIMIT_KIB"); ok {
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return fmt.Errorf("SAMPLER_OUTPUT_LIMIT_KIB: %w", err)
		}
		c.OutputLimitKiB = n
	}
	return nil
}

func (c *Config) Validate() error {
	switch c.Runner {
	case RunnerLocal, RunnerIsolate:
	default:
		return fmt.Errorf("unknown runner %q, expected %q or %q", c.Runner, RunnerLocal, RunnerIsolate)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if c.OutputLimitKiB < 0 {
		return fmt.Errorf("output_limit_kib must not be negative, got %d", c.OutputLimitKiB)
	}
	return nil
}

func (c *Config) OutputLimitBytes() int64 {
	return c.OutputLimitKiB * 1024
}

// CacheDir is where downloaded files such as testlib.h are kept.
func (c *Config) CacheDir() string {
	return xdg.NewXDGDirs().AppCacheDir(AppName)
}
