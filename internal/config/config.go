package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir string `toml:"data_dir"`
	LogDir  string `toml:"log_dir"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format         string            `toml:"format"`
	Level          string            `toml:"level"`
	StageOverrides map[string]string `toml:"stage_overrides"`
}

// Pipeline contains configuration for item processing.
type Pipeline struct {
	Workers     int  `toml:"workers"`
	StrictStart bool `toml:"strict_start"`
}

// Filter contains configuration for the quality filter stage.
type Filter struct {
	Quality string `toml:"quality"`
}

// AssumeRule is one target/quality pair from the assume_quality table.
type AssumeRule struct {
	Target  string `json:"target"`
	Quality string `json:"quality"`
}

// AssumeQuality is the raw assume_quality setting. Quality holds the single
// string form; Rules holds the table form in declaration order.
type AssumeQuality struct {
	Quality string       `json:"quality,omitempty"`
	Rules   []AssumeRule `json:"rules,omitempty"`
}

// Empty reports whether no assumption was configured.
func (a AssumeQuality) Empty() bool {
	return strings.TrimSpace(a.Quality) == "" && len(a.Rules) == 0
}

// Config encapsulates all configuration values for qualfill.
//
// Configuration sections:
//   - Paths: data (queue database, run lock) and log directories
//   - Logging: log format, level, and per-stage level overrides
//   - Pipeline: worker count and stage start behaviour
//   - Filter: the quality requirement items must meet
//   - AssumeQuality: fallback components for incomplete descriptors
type Config struct {
	Paths    Paths    `toml:"paths"`
	Logging  Logging  `toml:"logging"`
	Pipeline Pipeline `toml:"pipeline"`
	Filter   Filter   `toml:"filter"`

	// AssumeQuality is decoded separately so table order survives.
	AssumeQuality AssumeQuality `toml:"-"`
}

// DefaultConfigPath returns the absolute user configuration path.
func DefaultConfigPath() (string, error) {
	return ExpandPath(defaultConfigPath)
}

// Load reads the configuration at path, or at the first existing default
// location when path is empty, and returns it with the resolved path and
// whether a file was found. A missing file yields the defaults. Loaded
// configurations are normalized and validated.
func Load(path string) (*Config, string, bool, error) {
	resolved, exists, err := locate(path)
	if err != nil {
		return nil, "", false, err
	}
	var data []byte
	if exists {
		if data, err = os.ReadFile(resolved); err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, "", false, err
	}
	return cfg, resolved, exists, nil
}

// Parse decodes a TOML document over the defaults, then normalizes and
// validates it. An empty document yields the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	steps := []func() error{
		func() error { return cfg.decode(data) },
		cfg.normalize,
		cfg.Validate,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

func (c *Config) decode(data []byte) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := toml.NewDecoder(bytes.NewReader(data)).Decode(c); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	assumed, err := decodeAssumeQuality(data)
	if err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	c.AssumeQuality = assumed
	return nil
}

// locate resolves an explicit path, or searches the user config path and
// then ./qualfill.toml. With nothing found it returns the user path.
func locate(path string) (string, bool, error) {
	if path != "" {
		expanded, err := ExpandPath(path)
		if err != nil {
			return "", false, err
		}
		switch _, err := os.Stat(expanded); {
		case err == nil:
			return expanded, true, nil
		case errors.Is(err, fs.ErrNotExist):
			return expanded, false, nil
		default:
			return "", false, fmt.Errorf("stat config: %w", err)
		}
	}

	userPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}
	for _, candidate := range []string{userPath, projectPath} {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true, nil
		}
	}
	return userPath, false, nil
}

// EnsureDirectories creates the data and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// DatabasePath returns the queue database location.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.DataDir, "queue.db")
}

// LogFilePath returns the log file written next to stderr output.
func (c *Config) LogFilePath() string {
	return filepath.Join(c.Paths.LogDir, "qualfill.log")
}

// LockPath returns the run lock location.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.DataDir, "qualfill.lock")
}

// ExpandPath resolves a leading "~" to the home directory and returns the
// cleaned absolute path. An empty value stays empty.
func ExpandPath(value string) (string, error) {
	if value == "" {
		return "", nil
	}
	if value == "~" || strings.HasPrefix(value, "~/") || strings.HasPrefix(value, `~\`) {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		value = filepath.Join(home, value[1:])
	}
	absolute, err := filepath.Abs(value)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", value, err)
	}
	return absolute, nil
}

// CreateSample writes the sample configuration to path, creating its
// directory.
func CreateSample(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// SampleConfig returns the embedded sample configuration document.
func SampleConfig() string {
	return sampleConfig
}
