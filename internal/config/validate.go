package config

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"qualfill/internal/quality"
)

// everythingTarget is the catch-all assume_quality key.
const everythingTarget = "everything"

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validatePipeline(); err != nil {
		return err
	}
	if err := c.validateFilter(); err != nil {
		return err
	}
	if err := c.validateAssumeQuality(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	if !validLevel(c.Logging.Level) {
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	for stage, level := range c.Logging.StageOverrides {
		if !validLevel(level) {
			return fmt.Errorf("logging.stage_overrides.%s: unsupported level %q", stage, level)
		}
	}
	return nil
}

func validLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "warning", "error":
		return true
	}
	return false
}

func (c *Config) validatePipeline() error {
	if c.Pipeline.Workers <= 0 {
		return errors.New("pipeline.workers must be positive")
	}
	return nil
}

func (c *Config) validateFilter() error {
	if c.Filter.Quality == "" {
		return nil
	}
	if _, err := quality.ParseRequirement(c.Filter.Quality); err != nil {
		return fmt.Errorf("filter.quality: %w", err)
	}
	return nil
}

func (c *Config) validateAssumeQuality() error {
	aq := c.AssumeQuality
	if aq.Quality != "" && len(aq.Rules) > 0 {
		return errors.New("assume_quality: use either a single quality or a table, not both")
	}
	if aq.Quality != "" {
		if _, err := quality.Parse(aq.Quality); err != nil {
			return fmt.Errorf("assume_quality: %w", err)
		}
		return nil
	}
	lower := cases.Lower(language.Und)
	for _, rule := range aq.Rules {
		target := strings.TrimSpace(lower.String(rule.Target))
		if target != everythingTarget {
			if _, err := quality.ParseRequirement(target); err != nil {
				return fmt.Errorf("assume_quality.%s: %w", rule.Target, err)
			}
		}
		if _, err := quality.Parse(rule.Quality); err != nil {
			return fmt.Errorf("assume_quality.%s: %w", rule.Target, err)
		}
	}
	return nil
}
