package timeline

import (
	"errors"
	"fmt"
	"slices"

	"github.com/Faultbox/morphic/pkg/match"
	"github.com/Faultbox/morphic/pkg/value"
)

// ErrEmptyTrack is returned when sampling a track with no keyframes.
var ErrEmptyTrack = errors.New("track has no keyframes")

// Keyframe pins a scene value to a time. Arc bends the path leading into
// this keyframe.
type Keyframe struct {
	Time  float32
	Value value.Value
	Arc   float32
}

// Track is a sorted run of keyframes. Transitions between neighbors are
// matched once by Compile and reused by every Sample.
type Track struct {
	keys []Keyframe
	segs []*Transition
}

// Add inserts k, keeping keys sorted by time. A key at an existing time
// replaces it. Compiled transitions are dropped.
func (tr *Track) Add(k Keyframe) {
	i, found := slices.BinarySearchFunc(tr.keys, k.Time, func(e Keyframe, t float32) int {
		switch {
		case e.Time < t:
			return -1
		case e.Time > t:
			return 1
		}
		return 0
	})
	if found {
		tr.keys[i] = k
	} else {
		tr.keys = slices.Insert(tr.keys, i, k)
	}
	tr.segs = nil
}

// Len returns the number of keyframes.
func (tr *Track) Len() int { return len(tr.keys) }

// Duration returns the time of the last keyframe.
func (tr *Track) Duration() float32 {
	if len(tr.keys) == 0 {
		return 0
	}
	return tr.keys[len(tr.keys)-1].Time
}

// Compile matches every pair of neighboring keyframes.
func (tr *Track) Compile(mt *match.Matcher) error {
	segs := make([]*Transition, 0, max(len(tr.keys)-1, 0))
	for i := 1; i < len(tr.keys); i++ {
		prev, cur, target, err := mt.Prepare(tr.keys[i-1].Value, tr.keys[i].Value)
		if err != nil {
			return fmt.Errorf("keyframe %d at %v: %w", i, tr.keys[i].Time, err)
		}
		segs = append(segs, &Transition{Prev: prev, Current: cur, Target: target})
	}
	tr.segs = segs
	return nil
}

// Sample returns the scene at time. Times before the first key or after the
// last clamp to them. The track must be compiled.
func (tr *Track) Sample(time float32) (value.Value, error) {
	if len(tr.keys) == 0 {
		return nil, ErrEmptyTrack
	}
	if len(tr.keys) == 1 {
		return tr.keys[0].Value, nil
	}
	if len(tr.segs) != len(tr.keys)-1 {
		return nil, errors.New("track not compiled")
	}

	var prev, next int
	for i := range tr.keys {
		if tr.keys[i].Time > time {
			next = i
			break
		}
		prev = i
		next = i
	}
	if prev == next {
		if time < tr.keys[0].Time {
			return Interpolate(tr.segs[0], 0, 0)
		}
		last := len(tr.segs) - 1
		return Interpolate(tr.segs[last], 1, tr.keys[last+1].Arc)
	}

	k0, k1 := tr.keys[prev], tr.keys[next]
	t := float32(0)
	if k1.Time != k0.Time {
		t = (time - k0.Time) / (k1.Time - k0.Time)
	}
	return Interpolate(tr.segs[prev], t, k1.Arc)
}
