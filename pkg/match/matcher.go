// Package match makes pairs of meshes congruent so that they can be
// interpolated element by element: same element counts and identical
// adjacency, differing only in vertex data.
package match

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// ErrInconsistent is returned when invariant checking is enabled and a
// matched mesh fails validation.
var ErrInconsistent = errors.New("matched mesh is inconsistent")

// GroupPolicy selects how sets of unequal size are paired.
type GroupPolicy int

const (
	// RoundRobin assigns the larger set to the smaller in balanced
	// contiguous runs.
	RoundRobin GroupPolicy = iota
	// NearestCentroid assigns each element of the larger set to the
	// smaller-set element with the nearest centroid. Smaller-set elements
	// nobody picked fade out against an empty mesh.
	NearestCentroid
)

func (p GroupPolicy) String() string {
	switch p {
	case RoundRobin:
		return "round_robin"
	case NearestCentroid:
		return "nearest_centroid"
	}
	return fmt.Sprintf("policy(%d)", int(p))
}

// ParseGroupPolicy parses the names produced by String.
func ParseGroupPolicy(s string) (GroupPolicy, error) {
	switch s {
	case "", "round_robin":
		return RoundRobin, nil
	case "nearest_centroid":
		return NearestCentroid, nil
	}
	return RoundRobin, fmt.Errorf("unknown group policy %q", s)
}

// TagMode selects how tagged meshes are paired by MatchTree.
type TagMode int

const (
	TagPositional TagMode = iota
	TagSorted
	TagTable
)

func (m TagMode) String() string {
	switch m {
	case TagPositional:
		return "positional"
	case TagSorted:
		return "sorted"
	case TagTable:
		return "table"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// ParseTagMode parses the names produced by String.
func ParseTagMode(s string) (TagMode, error) {
	switch s {
	case "", "positional":
		return TagPositional, nil
	case "sorted":
		return TagSorted, nil
	case "table":
		return TagTable, nil
	}
	return TagPositional, fmt.Errorf("unknown tag mode %q", s)
}

// Options tunes the matcher.
type Options struct {
	GroupPolicy GroupPolicy
	TagMode     TagMode
	TagTable    []TagMapping
	// LinBias weighs rotational against translational alignment of loops:
	// 0 aligns positions only, 1 aligns directions from the centroid only.
	LinBias float32
	// PlanarMaxPairs caps the loop pairs of the planar path before falling
	// back to general curve matching.
	PlanarMaxPairs int
	// FlatEpsilon is the plane distance under which a shape counts as flat.
	FlatEpsilon float32
	// CheckInvariants validates every result.
	CheckInvariants bool
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{
		GroupPolicy:    RoundRobin,
		TagMode:        TagPositional,
		LinBias:        0.5,
		PlanarMaxPairs: 64,
		FlatEpsilon:    1e-4,
	}
}

// Matcher runs the matching strategies. It holds no mutable state; the
// meshes passed to it are owned by the caller for the duration of a call.
type Matcher struct {
	opts Options
	log  *zap.Logger
}

// New creates a matcher. A nil logger discards output.
func New(log *zap.Logger, opts Options) *Matcher {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.PlanarMaxPairs <= 0 {
		opts.PlanarMaxPairs = DefaultOptions().PlanarMaxPairs
	}
	if opts.FlatEpsilon <= 0 {
		opts.FlatEpsilon = DefaultOptions().FlatEpsilon
	}
	return &Matcher{opts: opts, log: log.Named("match")}
}

// Options returns the matcher's options.
func (mt *Matcher) Options() Options {
	return mt.opts
}
