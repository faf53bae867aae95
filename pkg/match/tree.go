package match

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/morphic/pkg/mesh"
	"github.com/Faultbox/morphic/pkg/value"
)

// TagMapping sends the meshes tagged From on the before side to the meshes
// tagged To on the after side.
type TagMapping struct {
	From []float64 `yaml:"from"`
	To   []float64 `yaml:"to"`
}

var (
	ErrDuplicateTag  = errors.New("tag mapped more than once")
	ErrUnmappedTag   = errors.New("tag has no mapping")
	ErrMissingTarget = errors.New("mapping target not present")
	ErrUnreachedTag  = errors.New("tag not reached by any mapping")
)

// TagError reports every inconsistency found in a tag table.
type TagError struct {
	err error
}

func (e *TagError) Error() string {
	return "tag table: " + e.err.Error()
}

// Unwrap exposes the individual problems to errors.Is and errors.As.
func (e *TagError) Unwrap() []error {
	return multierr.Errors(e.err)
}

// Problems returns the individual problems.
func (e *TagError) Problems() []error {
	return multierr.Errors(e.err)
}

func tagKey(tags []float64) string {
	parts := make([]string, len(tags))
	for i, t := range tags {
		parts[i] = strconv.FormatFloat(t, 'g', -1, 64)
	}
	return strings.Join(parts, "/")
}

// tagGroup is a run of meshes sharing a tag path.
type tagGroup struct {
	tags   []float64
	meshes []*mesh.Mesh
}

// groupByTag sorts ms stably by tag path and splits it into runs of equal
// tags.
func groupByTag(ms []*mesh.Mesh) []tagGroup {
	sorted := slices.Clone(ms)
	slices.SortStableFunc(sorted, func(x, y *mesh.Mesh) int {
		return slices.Compare(x.Tags, y.Tags)
	})
	var out []tagGroup
	for _, m := range sorted {
		if n := len(out); n > 0 && slices.Equal(out[n-1].tags, m.Tags) {
			out[n-1].meshes = append(out[n-1].meshes, m)
			continue
		}
		out = append(out, tagGroup{tags: m.Tags, meshes: []*mesh.Mesh{m}})
	}
	return out
}

// MatchTree flattens the meshes of a and b, pairs them according to mode
// and matches every pair. The results are flat lists holding, per pairing,
// the previous shape, the interpolation buffer and the target shape.
func (mt *Matcher) MatchTree(a, b value.Value, mode TagMode, table []TagMapping) (prev, cur, target value.List, err error) {
	ma := cloneAll(value.Meshes(a))
	mb := cloneAll(value.Meshes(b))
	mt.log.Debug("match tree",
		zap.Stringer("mode", mode),
		zap.Int("a", len(ma)),
		zap.Int("b", len(mb)),
	)

	var groups [][2][]*mesh.Mesh
	switch mode {
	case TagPositional:
		groups = [][2][]*mesh.Mesh{{ma, mb}}
	case TagSorted:
		groups = sortedGroups(ma, mb)
	case TagTable:
		groups, err = tableGroups(ma, mb, table)
		if err != nil {
			return nil, nil, nil, err
		}
	default:
		return nil, nil, nil, fmt.Errorf("match tree: unknown tag mode %v", mode)
	}

	for _, g := range groups {
		p, c, t, err := mt.MatchGroup(g[0], g[1])
		if err != nil {
			return nil, nil, nil, fmt.Errorf("match tree: %w", err)
		}
		for i := range p {
			prev = append(prev, value.NewMesh(p[i]))
			cur = append(cur, value.NewMesh(c[i]))
			target = append(target, value.NewMesh(t[i]))
		}
	}
	return prev, cur, target, nil
}

func cloneAll(ms []*mesh.Mesh) []*mesh.Mesh {
	out := make([]*mesh.Mesh, len(ms))
	for i, m := range ms {
		out[i] = m.Clone()
	}
	return out
}

// sortedGroups pairs tag groups with equal tags. A group whose tag has no
// counterpart joins the nearest paired group of its own side in sort order.
func sortedGroups(ma, mb []*mesh.Mesh) [][2][]*mesh.Mesh {
	ga, gb := groupByTag(ma), groupByTag(mb)
	inB := lo.SliceToMap(gb, func(g tagGroup) (string, int) { return tagKey(g.tags), 0 })
	inA := lo.SliceToMap(ga, func(g tagGroup) (string, int) { return tagKey(g.tags), 0 })
	paired := lo.Filter(ga, func(g tagGroup, _ int) bool {
		_, ok := inB[tagKey(g.tags)]
		return ok
	})
	if len(paired) == 0 {
		return [][2][]*mesh.Mesh{{flatten(ga), flatten(gb)}}
	}

	slot := make(map[string]int, len(paired))
	for i, g := range paired {
		slot[tagKey(g.tags)] = i
	}
	out := make([][2][]*mesh.Mesh, len(paired))
	absorb := func(side int, gs []tagGroup, other map[string]int) {
		for i, g := range gs {
			s := slot[tagKey(gs[nearestPaired(gs, i, other)].tags)]
			out[s][side] = append(out[s][side], g.meshes...)
		}
	}
	absorb(0, ga, inB)
	absorb(1, gb, inA)
	return out
}

// nearestPaired returns the index of the group nearest to i, in sort order,
// whose tag is present in other. Earlier groups win ties.
func nearestPaired(gs []tagGroup, i int, other map[string]int) int {
	for d := 0; d < len(gs); d++ {
		for _, j := range []int{i - d, i + d} {
			if j < 0 || j >= len(gs) {
				continue
			}
			if _, ok := other[tagKey(gs[j].tags)]; ok {
				return j
			}
		}
	}
	return i
}

func flatten(gs []tagGroup) []*mesh.Mesh {
	var out []*mesh.Mesh
	for _, g := range gs {
		out = append(out, g.meshes...)
	}
	return out
}

// tableGroups pairs tag groups through an explicit table. All problems with
// the table are collected into a single *TagError.
func tableGroups(ma, mb []*mesh.Mesh, table []TagMapping) ([][2][]*mesh.Mesh, error) {
	ga, gb := groupByTag(ma), groupByTag(mb)
	byA := lo.SliceToMap(ga, func(g tagGroup) (string, tagGroup) { return tagKey(g.tags), g })
	byB := lo.SliceToMap(gb, func(g tagGroup) (string, tagGroup) { return tagKey(g.tags), g })
	from := lo.Map(table, func(m TagMapping, _ int) string { return tagKey(m.From) })
	to := lo.Map(table, func(m TagMapping, _ int) string { return tagKey(m.To) })

	var errs error
	for _, k := range lo.FindDuplicates(from) {
		errs = multierr.Append(errs, fmt.Errorf("%w: [%s]", ErrDuplicateTag, k))
	}
	for _, g := range ga {
		if k := tagKey(g.tags); !slices.Contains(from, k) {
			errs = multierr.Append(errs, fmt.Errorf("%w: [%s]", ErrUnmappedTag, k))
		}
	}
	for _, k := range lo.Uniq(to) {
		if _, ok := byB[k]; !ok {
			errs = multierr.Append(errs, fmt.Errorf("%w: [%s]", ErrMissingTarget, k))
		}
	}
	for _, g := range gb {
		if k := tagKey(g.tags); !slices.Contains(to, k) {
			errs = multierr.Append(errs, fmt.Errorf("%w: [%s]", ErrUnreachedTag, k))
		}
	}
	if errs != nil {
		return nil, &TagError{err: errs}
	}

	var out [][2][]*mesh.Mesh
	slot := map[string]int{}
	for i := range table {
		i2, ok := slot[to[i]]
		if !ok {
			i2 = len(out)
			slot[to[i]] = i2
			out = append(out, [2][]*mesh.Mesh{nil, byB[to[i]].meshes})
		}
		out[i2][0] = append(out[i2][0], byA[from[i]].meshes...)
	}
	return out, nil
}
