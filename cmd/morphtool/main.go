// morphtool is a CLI utility for inspecting, matching and animating shapes.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/Faultbox/morphic/internal/config"
	"github.com/Faultbox/morphic/internal/logger"
	"github.com/Faultbox/morphic/internal/script"
	"github.com/Faultbox/morphic/internal/timeline"
	"github.com/Faultbox/morphic/pkg/match"
	"github.com/Faultbox/morphic/pkg/mesh"
	"github.com/Faultbox/morphic/pkg/shapes"
	"github.com/Faultbox/morphic/pkg/value"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "info":
		cmdInfo(args)
	case "match":
		cmdMatch(args)
	case "frames":
		cmdFrames(args)
	case "run":
		cmdRun(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`morphtool - shape morphing utility

Usage:
  morphtool <command> [options] <args>

Commands:
  info <shape>                 Show element counts, rank and hashes
  match <before> <after>       Match two shapes and report the result
  frames <before> <after>      Dump every frame of a transition as YAML
  run <script.zy>              Evaluate a script and describe its result

A shape is either a description such as "polygon:6", "star:5",
"outline:8", "rect:2x1", "dots:4" or "sphere", or a script file (.zy).

Common options:
  -config <file>   Config file (default ./morphic.yaml or the user config dir)
  -debug           Debug logging
  -steps <n>       Frames per transition
  -arc <radians>   Arc path angle
  -check           Validate every matched mesh

Examples:
  morphtool info star:5
  morphtool match polygon:3 polygon:6
  morphtool frames -steps 10 outline:3 outline:8 > frames.yaml
  morphtool run scene.zy`)
}

// tool bundles what every command needs after flag parsing.
type tool struct {
	cfg     *config.Config
	matcher *match.Matcher
	engine  *script.Engine
	fs      *flag.FlagSet
}

// setup parses the common flags plus any registered by extra, loads the
// config and initializes logging. It exits on error.
func setup(name string, args []string, extra func(fs *flag.FlagSet)) *tool {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	f := config.RegisterFlags(fs)
	if extra != nil {
		extra(fs)
	}
	fs.Parse(args)

	cfg, err := config.Load(f)
	if err != nil {
		fatal(err)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fatal(err)
	}
	opts, err := cfg.MatchOptions()
	if err != nil {
		fatal(err)
	}
	mt := match.New(logger.Log, opts)
	return &tool{
		cfg:     cfg,
		matcher: mt,
		engine:  script.NewEngine(mt, cfg.Script.Timeout),
		fs:      fs,
	}
}

func fatal(err error) {
	logger.Sync()
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

// isScript reports whether arg names a script file rather than a shape
// description.
func isScript(arg string) bool {
	switch strings.ToLower(filepath.Ext(arg)) {
	case ".zy", ".lisp":
		return true
	}
	return false
}

// load resolves a shape argument to a scene value.
func (t *tool) load(arg string) (value.Value, error) {
	if !isScript(arg) {
		m, err := shapes.Parse(arg)
		if err != nil {
			return nil, err
		}
		return value.NewMesh(m), nil
	}
	return evalFile(t.engine, arg)
}

func evalFile(eng *script.Engine, path string) (value.Value, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	v, evalErrs, err := eng.Evaluate(string(src))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(evalErrs) > 0 {
		msgs := make([]string, len(evalErrs))
		for i, e := range evalErrs {
			msgs[i] = e.Error()
		}
		return nil, fmt.Errorf("%s: %s", path, strings.Join(msgs, "; "))
	}
	return v, nil
}

func cmdInfo(args []string) {
	t := setup("info", args, nil)
	defer logger.Sync()
	if t.fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: morphtool info <shape>")
		os.Exit(1)
	}

	v, err := t.load(t.fs.Arg(0))
	if err != nil {
		fatal(err)
	}
	fmt.Printf("Shape: %s\n", t.fs.Arg(0))
	printValue(os.Stdout, v)
}

func cmdMatch(args []string) {
	t := setup("match", args, nil)
	defer logger.Sync()
	if t.fs.NArg() < 2 {
		fmt.Fprintln(os.Stderr, "Usage: morphtool match <before> <after>")
		os.Exit(1)
	}

	before, err := t.load(t.fs.Arg(0))
	if err != nil {
		fatal(err)
	}
	after, err := t.load(t.fs.Arg(1))
	if err != nil {
		fatal(err)
	}
	prev, _, target, err := t.matcher.Prepare(before, after)
	if err != nil {
		fatal(err)
	}

	fmt.Println("Before:")
	printValue(os.Stdout, before)
	fmt.Println("After:")
	printValue(os.Stdout, after)
	fmt.Println("Matched:")
	printValue(os.Stdout, prev)
	fmt.Printf("Congruent: %v\n", congruent(prev, target))
}

// congruent reports whether every mesh pair of a and b shares topology.
func congruent(a, b value.Value) bool {
	ma, mb := value.Meshes(a), value.Meshes(b)
	if len(ma) != len(mb) {
		return false
	}
	for i := range ma {
		if !mesh.SameTopology(ma[i], mb[i]) {
			return false
		}
	}
	return true
}

func cmdFrames(args []string) {
	var vertices bool
	t := setup("frames", args, func(fs *flag.FlagSet) {
		fs.BoolVar(&vertices, "vertices", false, "Include vertex positions")
	})
	defer logger.Sync()
	if t.fs.NArg() < 2 {
		fmt.Fprintln(os.Stderr, "Usage: morphtool frames [-vertices] <before> <after>")
		os.Exit(1)
	}

	before, err := t.load(t.fs.Arg(0))
	if err != nil {
		fatal(err)
	}
	after, err := t.load(t.fs.Arg(1))
	if err != nil {
		fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts := timeline.Options{
		Steps:   t.cfg.Animation.Steps,
		PathArc: t.cfg.Animation.PathArc,
		Delay:   t.cfg.Animation.StepDelay,
	}
	frames, err := collectFrames(ctx, t.matcher, before, after, opts, vertices)
	if err != nil {
		fatal(err)
	}
	if err := writeFrames(os.Stdout, frames); err != nil {
		fatal(err)
	}
}

func cmdRun(args []string) {
	t := setup("run", args, nil)
	defer logger.Sync()
	if t.fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: morphtool run <script.zy>")
		os.Exit(1)
	}

	v, err := evalFile(t.engine, t.fs.Arg(0))
	if err != nil {
		fatal(err)
	}
	printValue(os.Stdout, v)
}
