// Package script evaluates the morph DSL: a sandboxed zygomys Lisp with
// builtins for shape generators, mesh operators and morphing.
//
// A script evaluates to its last expression. Meshes, numbers and lists of
// them convert to scene values:
//
//	(def tri (polygon 3 :radius 2))
//	(list (shift tri 1 0) (morph tri (star 5) 0.5))
package script

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	zygo "github.com/glycerine/zygomys/zygo"
	"go.uber.org/zap"

	"github.com/Faultbox/morphic/internal/logger"
	"github.com/Faultbox/morphic/pkg/match"
	"github.com/Faultbox/morphic/pkg/value"
)

// DefaultTimeout bounds a single evaluation when none is configured.
const DefaultTimeout = 5 * time.Second

// MaxRunning caps the evaluations alive at once, timed out ones included.
// The interpreter cannot be interrupted, so a script that never returns
// keeps its goroutine and sandbox until the process exits.
const MaxRunning = 8

// ErrBusy is returned when MaxRunning evaluations are still alive.
var ErrBusy = errors.New("too many evaluations still running")

// EvalError is a parse or runtime error in user code. Line is zero when
// the interpreter did not report one.
type EvalError struct {
	Line    int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Engine evaluates scripts. Each call to Evaluate runs in a fresh sandbox;
// the engine itself is safe for concurrent use.
type Engine struct {
	mu         sync.Mutex
	generation uint64
	running    atomic.Int32

	matcher *match.Matcher
	timeout time.Duration
	log     *zap.Logger
}

// NewEngine creates an engine whose morph builtin uses mt. A non-positive
// timeout selects DefaultTimeout.
func NewEngine(mt *match.Matcher, timeout time.Duration) *Engine {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Engine{
		matcher: mt,
		timeout: timeout,
		log:     logger.Named("script"),
	}
}

type evalResult struct {
	value  value.Value
	errors []EvalError
	err    error
}

// Evaluate runs source and converts its result to a scene value.
//
// Return semantics:
//   - On success: value (nil for an empty script) + nil + nil
//   - On parse or runtime failure: nil + eval errors + nil
//   - On timeout, panic, an unconvertible result or ErrBusy: nil + nil + error
func (e *Engine) Evaluate(source string) (value.Value, []EvalError, error) {
	if e.running.Add(1) > MaxRunning {
		e.running.Add(-1)
		return nil, nil, ErrBusy
	}

	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)
	go func() {
		defer e.running.Add(-1)
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()
		v, evalErrs, err := e.evaluate(source)
		ch <- evalResult{value: v, errors: evalErrs, err: err}
	}()

	return waitWithTimeout(ch, e.timeout, gen, &e.mu, &e.generation)
}

func (e *Engine) evaluate(source string) (value.Value, []EvalError, error) {
	if strings.TrimSpace(source) == "" {
		return nil, nil, nil
	}

	env := zygo.NewZlispSandbox()
	defer env.Stop()
	registerBuiltins(env, e.matcher)

	start := time.Now()
	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err), nil
	}
	res, err := env.Run()
	if err != nil {
		evalErrs := parseZygomysError(err)
		e.log.Debug("script failed", zap.Int("errors", len(evalErrs)), zap.Error(err))
		return nil, evalErrs, nil
	}

	v, err := toValue(res)
	if err != nil {
		return nil, nil, fmt.Errorf("script result: %w", err)
	}
	e.log.Debug("script evaluated", zap.Duration("took", time.Since(start)))
	return v, nil, nil
}

// waitWithTimeout returns the result from ch, or an error if it takes
// longer than timeout or a newer evaluation has started meanwhile. A timed
// out evaluation keeps running and counts against MaxRunning until it
// returns; its result is dropped.
func waitWithTimeout(
	ch <-chan evalResult,
	timeout time.Duration,
	gen uint64,
	mu *sync.Mutex,
	currentGen *uint64,
) (value.Value, []EvalError, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		mu.Lock()
		current := *currentGen
		mu.Unlock()
		if gen != current {
			return nil, nil, fmt.Errorf("evaluation superseded by newer request")
		}
		return res.value, res.errors, res.err
	case <-timer.C:
		return nil, nil, fmt.Errorf("evaluation timed out after %s", timeout)
	}
}

var (
	linePattern      = regexp.MustCompile(`(?is)(?:error )?on line (\d+):\s*(.*)`)
	linePatternShort = regexp.MustCompile(`(?is)^line (\d+):\s*(.*)`)
)

func parseZygomysError(err error) []EvalError {
	msg := err.Error()
	for _, re := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
		}
	}
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
