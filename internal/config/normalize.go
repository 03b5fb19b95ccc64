package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLogging()
	c.normalizePipeline()
	c.normalizeAssumeQuality()
	c.Filter.Quality = strings.TrimSpace(c.Filter.Quality)
	return nil
}

func (c *Config) normalizePaths() error {
	if value, ok := os.LookupEnv("QUALFILL_DATA_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Paths.DataDir = strings.TrimSpace(value)
	}
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	var err error
	if c.Paths.DataDir, err = ExpandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.LogDir, err = ExpandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if len(c.Logging.StageOverrides) == 0 {
		return
	}
	overrides := make(map[string]string, len(c.Logging.StageOverrides))
	for stage, level := range c.Logging.StageOverrides {
		stage = strings.ToLower(strings.TrimSpace(stage))
		if stage == "" {
			continue
		}
		overrides[stage] = strings.ToLower(strings.TrimSpace(level))
	}
	c.Logging.StageOverrides = overrides
}

func (c *Config) normalizePipeline() {
	if c.Pipeline.Workers <= 0 {
		c.Pipeline.Workers = defaultWorkers
	}
}

// normalizeAssumeQuality trims surrounding whitespace only. Target case is
// folded when rules are built so error messages can quote the original text.
func (c *Config) normalizeAssumeQuality() {
	c.AssumeQuality.Quality = strings.TrimSpace(c.AssumeQuality.Quality)
	for i := range c.AssumeQuality.Rules {
		c.AssumeQuality.Rules[i].Target = strings.TrimSpace(c.AssumeQuality.Rules[i].Target)
		c.AssumeQuality.Rules[i].Quality = strings.TrimSpace(c.AssumeQuality.Rules[i].Quality)
	}
}
