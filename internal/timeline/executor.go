// Package timeline drives animated transitions of a scene value: it matches
// the before and after values once, then blends them step by step.
package timeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/morphic/internal/logger"
	"github.com/Faultbox/morphic/pkg/match"
	"github.com/Faultbox/morphic/pkg/value"
)

// Transition holds the three congruent values of an animation: where it
// starts, the buffer each step writes into, and where it ends.
type Transition struct {
	Prev    value.Value
	Current value.Value
	Target  value.Value
}

// Interpolate blends tr at t in [0, 1], writing into tr.Current, and
// returns the blended value. A non-zero pathArc moves positions along an
// arc of that many radians about +Z.
func Interpolate(tr *Transition, t, pathArc float32) (value.Value, error) {
	v, err := value.Interpolate(tr.Prev, tr.Current, tr.Target, t, pathArc)
	if err != nil {
		return nil, err
	}
	tr.Current = v
	return v, nil
}

// Options controls Animate.
type Options struct {
	Steps   int
	PathArc float32
	// Delay is the wall-clock pause between steps. Zero runs flat out.
	Delay time.Duration
}

// StepFunc receives each frame. The value is owned by the callee.
type StepFunc func(step int, t float32, v value.Value) error

// Executor owns the scene value. Transitions are matched and written under
// the lock; Snapshot may be called concurrently from other goroutines.
// Concurrent Animate calls run one after another.
type Executor struct {
	animMu sync.Mutex

	mu      sync.RWMutex
	scene   value.Value
	matcher *match.Matcher
	log     *zap.Logger
}

// NewExecutor creates an executor whose scene starts as initial.
func NewExecutor(mt *match.Matcher, initial value.Value) *Executor {
	return &Executor{
		scene:   value.Clone(initial),
		matcher: mt,
		log:     logger.Named("timeline"),
	}
}

// BeginTransition matches before against after. Neither input is modified.
func (e *Executor) BeginTransition(before, after value.Value) (*Transition, error) {
	prev, cur, target, err := e.matcher.Prepare(before, after)
	if err != nil {
		return nil, fmt.Errorf("begin transition: %w", err)
	}
	return &Transition{Prev: prev, Current: cur, Target: target}, nil
}

// Snapshot returns a copy of the current scene.
func (e *Executor) Snapshot() value.Value {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return value.Clone(e.scene)
}

// Set replaces the scene without animating.
func (e *Executor) Set(v value.Value) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scene = value.Clone(v)
}

// Animate morphs the scene into after over opts.Steps steps, calling fn
// with every frame from t=0 to t=1 inclusive. Once the last frame is
// written the scene becomes a copy of after and the matched topology is
// dropped. If the transition cannot be prepared the scene keeps its
// previous value. Cancelling ctx stops between steps and leaves the scene
// at the last completed frame.
func (e *Executor) Animate(ctx context.Context, after value.Value, opts Options, fn StepFunc) error {
	e.animMu.Lock()
	defer e.animMu.Unlock()
	steps := max(opts.Steps, 1)

	start := time.Now()
	e.mu.Lock()
	tr, err := e.BeginTransition(e.scene, after)
	e.mu.Unlock()
	if err != nil {
		e.log.Warn("transition discarded", zap.Error(err))
		return err
	}
	e.log.Debug("transition ready",
		zap.Int("steps", steps),
		zap.Duration("match", time.Since(start)),
	)

	for i := 0; i <= steps; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		t := float32(i) / float32(steps)
		v, err := Interpolate(tr, t, opts.PathArc)
		if err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
		e.mu.Lock()
		if i == steps {
			e.scene = value.Clone(after)
		} else {
			e.scene = value.Clone(v)
		}
		e.mu.Unlock()

		if fn != nil {
			if err := fn(i, t, value.Clone(v)); err != nil {
				return err
			}
		}
		if opts.Delay > 0 && i < steps {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(opts.Delay):
			}
		}
	}
	return nil
}
