// Package config holds the engine settings of a planner run: scoring weights,
// tier thresholds, sentence boundaries and context selection, with YAML
// overrides and validation.
package config

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Language identifies the target language of a run.
type Language string

const (
	Japanese Language = "ja"
	Chinese  Language = "zh"
)

// ParseLanguage validates a --language value.
func ParseLanguage(s string) (Language, error) {
	switch Language(s) {
	case Japanese, Chinese:
		return Language(s), nil
	case "":
		return "", &Error{Field: "language", Msg: "is required (ja or zh)"}
	}
	return "", &Error{Field: "language", Msg: fmt.Sprintf("unsupported value %q (want ja or zh)", s)}
}

// Weights are the per-priority-tier multipliers applied to every occurrence.
type Weights struct {
	High int `yaml:"high"`
	Low  int `yaml:"low"`
	Goal int `yaml:"goal"`
}

// Context controls example-sentence selection.
type Context struct {
	// MaxExtra is the number of contexts kept besides the first one.
	MaxExtra int `yaml:"max_extra"`
	// SearchRange is the number of runes kept on each side of a word when a
	// sentence is too long to be shown whole.
	SearchRange int `yaml:"search_range"`
	// MaxSentenceRunes is the length above which a sentence gets clipped to
	// SearchRange runes around the word. 0, the default, keeps whole sentences.
	MaxSentenceRunes int `yaml:"max_sentence_runes"`
}

// Pair is a fused word the Chinese segmenter should split into its two halves.
type Pair struct {
	Left  string `yaml:"left"`
	Right string `yaml:"right"`
}

// Config is the single configuration structure for a run. The first block is
// loadable from YAML; the second block is filled from command line flags.
type Config struct {
	Weights        Weights             `yaml:"weights"`
	TierThresholds []int               `yaml:"tier_thresholds"`
	Boundaries     map[Language]string `yaml:"boundaries"`
	Context        Context             `yaml:"context"`
	Reinforce      []Pair              `yaml:"reinforce_pairs"`
	ManifestName   string              `yaml:"manifest_name"`

	Language               Language `yaml:"-"`
	IncludeSingleChars     bool     `yaml:"-"`
	MinFreq                int      `yaml:"-"`
	TargetCoverage         float64  `yaml:"-"`
	ReinforcedSegmentation bool     `yaml:"-"`
	CarryGoal              bool     `yaml:"-"`
	Workers                int      `yaml:"-"`
}

// Default returns the documented defaults.
func Default() *Config {
	return &Config{
		Weights:        Weights{High: 10, Low: 5, Goal: 2},
		TierThresholds: []int{2500, 5000, 7500, 10000},
		Boundaries: map[Language]string{
			Japanese: "。！？!?\n",
			Chinese:  "。！？!?\n；;…",
		},
		Context: Context{
			MaxExtra:    2,
			SearchRange: 20,
		},
		Reinforce: []Pair{
			{Left: "我", Right: "们"},
			{Left: "你", Right: "们"},
			{Left: "他", Right: "们"},
			{Left: "不", Right: "要"},
			{Left: "不", Right: "会"},
			{Left: "不", Right: "能"},
			{Left: "没", Right: "有"},
			{Left: "这", Right: "个"},
			{Left: "那", Right: "个"},
			{Left: "一", Right: "个"},
		},
		ManifestName: "_order.txt",
		CarryGoal:    true,
		Workers:      4,
	}
}

// Load reads a YAML file and overlays it on the defaults. Keys missing from
// the file keep their default value.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, &Error{Field: "config", Msg: fmt.Sprintf("parse %s: %v", path, err)}
	}
	return cfg, nil
}

// Validate reports the first configuration problem found.
func (c *Config) Validate() error {
	if _, err := ParseLanguage(string(c.Language)); err != nil {
		return err
	}
	if c.Weights.High < 0 || c.Weights.Low < 0 || c.Weights.Goal < 0 {
		return &Error{Field: "weights", Msg: "must not be negative"}
	}
	if len(c.TierThresholds) == 0 {
		return &Error{Field: "tier_thresholds", Msg: "must not be empty"}
	}
	if c.TierThresholds[0] <= 0 {
		return &Error{Field: "tier_thresholds", Msg: "must be positive"}
	}
	if !sort.SliceIsSorted(c.TierThresholds, func(i, j int) bool { return c.TierThresholds[i] < c.TierThresholds[j] }) {
		return &Error{Field: "tier_thresholds", Msg: "must be ascending"}
	}
	for i := 1; i < len(c.TierThresholds); i++ {
		if c.TierThresholds[i] == c.TierThresholds[i-1] {
			return &Error{Field: "tier_thresholds", Msg: fmt.Sprintf("duplicate threshold %d", c.TierThresholds[i])}
		}
	}
	if c.Boundaries[c.Language] == "" {
		return &Error{Field: "boundaries", Msg: fmt.Sprintf("no sentence boundaries for %s", c.Language)}
	}
	if c.Context.MaxExtra < 0 || c.Context.SearchRange < 0 || c.Context.MaxSentenceRunes < 0 {
		return &Error{Field: "context", Msg: "values must not be negative"}
	}
	if c.MinFreq < 0 {
		return &Error{Field: "min-freq", Msg: "must not be negative"}
	}
	if c.TargetCoverage < 0 || c.TargetCoverage > 100 {
		return &Error{Field: "target-coverage", Msg: fmt.Sprintf("%.2f is outside 0-100", c.TargetCoverage)}
	}
	if c.MinFreq > 0 && c.TargetCoverage > 0 {
		return &Error{Field: "min-freq", Msg: "cannot be combined with --target-coverage"}
	}
	if c.ManifestName == "" {
		return &Error{Field: "manifest_name", Msg: "must not be empty"}
	}
	return nil
}

// Error is a configuration problem. Configuration errors abort a run before
// any file is processed.
type Error struct {
	Field string
	Msg   string
}

func (e *Error) Error() string { return "config: " + e.Field + " " + e.Msg }
