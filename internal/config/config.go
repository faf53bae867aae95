// Package config handles morphtool configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/Faultbox/morphic/pkg/match"
)

// Config holds all settings.
type Config struct {
	Match     MatchConfig        `yaml:"match"`
	Animation AnimationConfig    `yaml:"animation"`
	Script    ScriptConfig       `yaml:"script"`
	Logging   LoggingConfig      `yaml:"logging"`
	TagTable  []match.TagMapping `yaml:"tag_table"`
}

// MatchConfig tunes the topology matcher.
type MatchConfig struct {
	GroupPolicy     string  `yaml:"group_policy"` // round_robin or nearest_centroid
	TagMode         string  `yaml:"tag_mode"`     // positional, sorted or table
	LinBias         float32 `yaml:"lin_bias"`
	PlanarMaxPairs  int     `yaml:"planar_max_pairs"`
	FlatEpsilon     float32 `yaml:"flat_epsilon"`
	CheckInvariants bool    `yaml:"check_invariants"`
}

// AnimationConfig holds transition playback settings.
type AnimationConfig struct {
	Steps     int           `yaml:"steps"`
	PathArc   float32       `yaml:"path_arc"` // radians about +Z
	StepDelay time.Duration `yaml:"step_delay"`
}

// ScriptConfig holds script evaluation settings.
type ScriptConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	opts := match.DefaultOptions()
	return &Config{
		Match: MatchConfig{
			GroupPolicy:    opts.GroupPolicy.String(),
			TagMode:        opts.TagMode.String(),
			LinBias:        opts.LinBias,
			PlanarMaxPairs: opts.PlanarMaxPairs,
			FlatEpsilon:    opts.FlatEpsilon,
		},
		Animation: AnimationConfig{
			Steps: 30,
		},
		Script: ScriptConfig{
			Timeout: 5 * time.Second,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// MatchOptions converts the match section and tag table to matcher options.
func (c *Config) MatchOptions() (match.Options, error) {
	var errs error
	policy, err := match.ParseGroupPolicy(c.Match.GroupPolicy)
	errs = multierr.Append(errs, err)
	mode, err := match.ParseTagMode(c.Match.TagMode)
	errs = multierr.Append(errs, err)
	if errs != nil {
		return match.Options{}, errs
	}
	return match.Options{
		GroupPolicy:     policy,
		TagMode:         mode,
		TagTable:        c.TagTable,
		LinBias:         c.Match.LinBias,
		PlanarMaxPairs:  c.Match.PlanarMaxPairs,
		FlatEpsilon:     c.Match.FlatEpsilon,
		CheckInvariants: c.Match.CheckInvariants,
	}, nil
}

// Validate reports every out-of-range setting.
func (c *Config) Validate() error {
	var errs error
	if _, err := c.MatchOptions(); err != nil {
		errs = multierr.Append(errs, err)
	}
	if c.Match.LinBias < 0 || c.Match.LinBias > 1 {
		errs = multierr.Append(errs, fmt.Errorf("match.lin_bias %v outside [0, 1]", c.Match.LinBias))
	}
	if c.Match.PlanarMaxPairs < 1 {
		errs = multierr.Append(errs, fmt.Errorf("match.planar_max_pairs must be positive, got %d", c.Match.PlanarMaxPairs))
	}
	if c.Animation.Steps < 1 {
		errs = multierr.Append(errs, fmt.Errorf("animation.steps must be positive, got %d", c.Animation.Steps))
	}
	if c.Script.Timeout < 0 {
		errs = multierr.Append(errs, errors.New("script.timeout is negative"))
	}
	if c.Match.TagMode == "table" && len(c.TagTable) == 0 {
		errs = multierr.Append(errs, errors.New("tag_mode table needs a tag_table"))
	}
	return errs
}
