package config

import (
	"flag"
	"time"
)

// Flags holds command-line overrides. Zero values leave the loaded setting
// alone.
type Flags struct {
	Config          string
	Debug           bool
	LogFile         string
	GroupPolicy     string
	TagMode         string
	Steps           int
	PathArc         float64
	CheckInvariants bool
	ScriptTimeout   time.Duration
}

// RegisterFlags binds the override flags to fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{}
	fs.StringVar(&f.Config, "config", "", "Path to config file")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.StringVar(&f.LogFile, "log-file", "", "Also log to this file")
	fs.StringVar(&f.GroupPolicy, "group-policy", "", "Group pairing: round_robin or nearest_centroid")
	fs.StringVar(&f.TagMode, "tag-mode", "", "Tag pairing: positional, sorted or table")
	fs.IntVar(&f.Steps, "steps", 0, "Frames per transition")
	fs.Float64Var(&f.PathArc, "arc", 0, "Arc path angle in radians")
	fs.BoolVar(&f.CheckInvariants, "check", false, "Validate every matched mesh")
	fs.DurationVar(&f.ScriptTimeout, "timeout", 0, "Script evaluation timeout")
	return f
}

// apply applies CLI flag overrides to the config.
func (f *Flags) apply(cfg *Config) {
	if f == nil {
		return
	}
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.LogFile != "" {
		cfg.Logging.LogFile = f.LogFile
	}
	if f.GroupPolicy != "" {
		cfg.Match.GroupPolicy = f.GroupPolicy
	}
	if f.TagMode != "" {
		cfg.Match.TagMode = f.TagMode
	}
	if f.Steps > 0 {
		cfg.Animation.Steps = f.Steps
	}
	if f.PathArc != 0 {
		cfg.Animation.PathArc = float32(f.PathArc)
	}
	if f.CheckInvariants {
		cfg.Match.CheckInvariants = true
	}
	if f.ScriptTimeout > 0 {
		cfg.Script.Timeout = f.ScriptTimeout
	}
}
