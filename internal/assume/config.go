package assume

import (
	"errors"
	"strings"
)

// Everything is the target that matches every descriptor and always ranks last.
const Everything = "everything"

// Declaration is one raw target/quality pair as written in configuration.
type Declaration struct {
	Target  string `json:"target"`
	Quality string `json:"quality"`
}

// Config is the raw assume_quality setting. Exactly one shape is used: Quality
// for the single-string form, or Rules for the ordered mapping form.
type Config struct {
	Quality string
	Rules   []Declaration
}

// Simple builds the single-string form.
func Simple(quality string) Config {
	return Config{Quality: quality}
}

// Empty reports whether nothing was configured.
func (c Config) Empty() bool {
	return strings.TrimSpace(c.Quality) == "" && len(c.Rules) == 0
}

// Declarations normalizes either shape into an ordered declaration list. The
// single-string form becomes one rule targeting everything.
func (c Config) Declarations() ([]Declaration, error) {
	simple := strings.TrimSpace(c.Quality) != ""
	if simple && len(c.Rules) > 0 {
		return nil, &ConfigError{Text: c.Quality, Err: errors.New("use either a single quality or a mapping, not both")}
	}
	if simple {
		return []Declaration{{Target: Everything, Quality: c.Quality}}, nil
	}
	out := make([]Declaration, len(c.Rules))
	copy(out, c.Rules)
	return out, nil
}
