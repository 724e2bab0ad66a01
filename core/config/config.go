package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/tristendillon/depcheck/core/logger"
	"gopkg.in/yaml.v3"
)

const FileName = "depcheck.yaml"

var (
	ErrNoExtensions     = errors.New("config: extensions must not be empty")
	ErrInvalidAlias     = errors.New("config: alias prefix must end with '/'")
	ErrInvalidWorkers   = errors.New("config: scan.workers must not be negative")
	ErrInvalidPort      = errors.New("config: server.port must be between 1 and 65535")
	ErrInvalidDebounce  = errors.New("config: watch.debounce must be positive")
	ErrEmptyReplacement = errors.New("config: known_missing entries need a replacement")
)

type Config struct {
	Extensions        []string          `yaml:"extensions"`
	Ignore            []string          `yaml:"ignore"`
	ResolveExtensions []string          `yaml:"resolve_extensions"`
	Alias             Alias             `yaml:"alias"`
	KnownMissing      map[string]string `yaml:"known_missing"`
	Scan              Scan              `yaml:"scan"`
	Server            Server            `yaml:"server"`
	Watch             Watch             `yaml:"watch"`
}

// Alias maps an import prefix such as "@/" onto a directory relative to the
// project root. An empty Base means the root itself.
type Alias struct {
	Prefix string `yaml:"prefix"`
	Base   string `yaml:"base"`
}

type Scan struct {
	Workers int `yaml:"workers"`
}

type Server struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type Watch struct {
	Debounce time.Duration `yaml:"debounce"`
}

func Default() *Config {
	return &Config{
		Extensions:        []string{".ts", ".tsx", ".js", ".jsx"},
		Ignore:            []string{"node_modules", ".next", "dist", "build", "out", ".git", ".turbo", ".depcheck"},
		ResolveExtensions: []string{".ts", ".tsx", ".js", ".jsx", ".json"},
		Alias: Alias{
			Prefix: "@/",
			Base:   "",
		},
		KnownMissing: map[string]string{
			"@v0/lib/sanitize": "@/lib/sanitize",
		},
		Scan: Scan{
			Workers: 4,
		},
		Server: Server{
			Host: "localhost",
			Port: 8787,
		},
		Watch: Watch{
			Debounce: 500 * time.Millisecond,
		},
	}
}

// Load reads depcheck.yaml from dir. A missing file yields the defaults.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, FileName))
}

// LoadFile reads the given config file on top of the defaults. Keys absent
// from the file keep their default values.
func LoadFile(filePath string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filePath)
	if errors.Is(err, os.ErrNotExist) {
		logger.Debug("No config file found at %s, using default config", filePath)
		cfg.applyEnv()
		return cfg, cfg.Validate()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", filePath, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse yaml %s: %w", filePath, err)
	}
	logger.Debug("Config file found: %s", filePath)

	cfg.normalize()
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger.Debug("Config: %+v", *cfg)

	return cfg, nil
}

func (c *Config) normalize() {
	c.Extensions = normalizeExtensions(c.Extensions)
	c.ResolveExtensions = normalizeExtensions(c.ResolveExtensions)
	c.Alias.Base = strings.Trim(filepath.ToSlash(c.Alias.Base), "/")
	if c.KnownMissing == nil {
		c.KnownMissing = map[string]string{}
	}
}

// applyEnv lets DEPCHECK_WORKERS override scan.workers, typically from .env.
func (c *Config) applyEnv() {
	raw := strings.TrimSpace(os.Getenv("DEPCHECK_WORKERS"))
	if raw == "" {
		return
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		logger.Warn("Ignoring DEPCHECK_WORKERS=%q: %v", raw, err)
		return
	}
	c.Scan.Workers = n
}

func (c *Config) Validate() error {
	if len(c.Extensions) == 0 {
		return ErrNoExtensions
	}
	if c.Alias.Prefix != "" && !strings.HasSuffix(c.Alias.Prefix, "/") {
		return fmt.Errorf("%w: %q", ErrInvalidAlias, c.Alias.Prefix)
	}
	if c.Scan.Workers < 0 {
		return ErrInvalidWorkers
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidPort, c.Server.Port)
	}
	if c.Watch.Debounce <= 0 {
		return ErrInvalidDebounce
	}
	for specifier, replacement := range c.KnownMissing {
		if strings.TrimSpace(replacement) == "" {
			return fmt.Errorf("%w: %s", ErrEmptyReplacement, specifier)
		}
	}
	return nil
}

// Address is the host:port the server listens on.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func normalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	seen := make(map[string]bool, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if seen[ext] {
			continue
		}
		seen[ext] = true
		out = append(out, ext)
	}
	return out
}
