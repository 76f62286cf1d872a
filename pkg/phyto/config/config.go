// Package config loads the YAML configuration that assembles an engine:
// graph source, matcher table overrides, stop-condition thresholds, and
// the text-generation endpoint.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/verdantlab/phyto/pkg/phyto"
	"github.com/verdantlab/phyto/pkg/phyto/match"
)

// Config is the top-level configuration file.
type Config struct {
	Graph      GraphConfig      `yaml:"graph"`
	Matcher    MatcherConfig    `yaml:"matcher"`
	Thresholds ThresholdsConfig `yaml:"thresholds"`
	LLM        LLMConfig        `yaml:"llm"`
}

// GraphConfig names the snapshot source. Driver is "json" (default) or
// "sqlite".
type GraphConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
}

// MatcherConfig optionally replaces the fuzzy-matching tables. Empty
// sections keep the package defaults.
type MatcherConfig struct {
	StopWords []string            `yaml:"stop_words"`
	Synonyms  map[string][]string `yaml:"synonyms"`
}

// ThresholdsConfig overrides individual stop-condition parameters.
// Pointer fields distinguish "absent" from an explicit zero.
type ThresholdsConfig struct {
	MinConfirmed     *int     `yaml:"min_confirmed"`
	DefinitiveGap    *float64 `yaml:"definitive_gap"`
	HighMatch        *float64 `yaml:"high_match"`
	HighMatchGap     *float64 `yaml:"high_match_gap"`
	ConfidentCount   *int     `yaml:"confident_count"`
	ConfidentPercent *float64 `yaml:"confident_percent"`
	ForceAfter       *int     `yaml:"force_after"`
}

// LLMConfig points at the Ollama-compatible generation endpoint.
type LLMConfig struct {
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// Load reads a YAML configuration file.
func Load(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// BuildMatcher returns a matcher with the configured tables, falling
// back to the defaults for any empty section.
func (c MatcherConfig) BuildMatcher() *match.Matcher {
	stops := c.StopWords
	if stops == nil {
		stops = match.DefaultStopWords()
	}
	synonyms := c.Synonyms
	if synonyms == nil {
		synonyms = match.DefaultSynonyms()
	}
	return match.NewWithTables(stops, synonyms)
}

// BuildThresholds applies the configured overrides to the defaults.
func (c ThresholdsConfig) BuildThresholds() phyto.Thresholds {
	th := phyto.DefaultThresholds()
	if c.MinConfirmed != nil {
		th.MinConfirmed = *c.MinConfirmed
	}
	if c.DefinitiveGap != nil {
		th.DefinitiveGap = *c.DefinitiveGap
	}
	if c.HighMatch != nil {
		th.HighMatch = *c.HighMatch
	}
	if c.HighMatchGap != nil {
		th.HighMatchGap = *c.HighMatchGap
	}
	if c.ConfidentCount != nil {
		th.ConfidentCount = *c.ConfidentCount
	}
	if c.ConfidentPercent != nil {
		th.ConfidentPercent = *c.ConfidentPercent
	}
	if c.ForceAfter != nil {
		th.ForceAfter = *c.ForceAfter
	}
	return th
}
