package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/morphic/internal/timeline"
	"github.com/Faultbox/morphic/pkg/match"
	"github.com/Faultbox/morphic/pkg/mesh"
	"github.com/Faultbox/morphic/pkg/value"
)

// printValue writes a human-readable outline of v.
func printValue(w io.Writer, v value.Value) {
	writeValue(w, v, "  ")
}

func writeValue(w io.Writer, v value.Value, indent string) {
	switch x := v.(type) {
	case nil:
		fmt.Fprintf(w, "%s(nothing)\n", indent)
	case value.Number:
		fmt.Fprintf(w, "%snumber %g\n", indent, float64(x))
	case value.Mesh:
		writeMesh(w, x.M, indent)
	case value.List:
		fmt.Fprintf(w, "%slist of %d\n", indent, len(x))
		for _, e := range x {
			writeValue(w, e, indent+"  ")
		}
	case value.Map:
		fmt.Fprintf(w, "%smap of %d\n", indent, len(x))
		for _, k := range x.SortedKeys() {
			fmt.Fprintf(w, "%s  %s:\n", indent, k)
			writeValue(w, x[k], indent+"    ")
		}
	case value.Closure:
		fmt.Fprintf(w, "%sclosure %s\n", indent, x.Name)
	}
}

func writeMesh(w io.Writer, m *mesh.Mesh, indent string) {
	np, nc, ns := m.Counts()
	fmt.Fprintf(w, "%smesh (%s): %d points, %d curves, %d surfaces\n", indent, m.Rank(), np, nc, ns)
	if len(m.Tags) > 0 {
		fmt.Fprintf(w, "%s  tags:     %v\n", indent, m.Tags)
	}
	fmt.Fprintf(w, "%s  hash:     %016x\n", indent, m.Hash())
	fmt.Fprintf(w, "%s  topology: %016x\n", indent, m.TopologyHash())
	if lo, hi, ok := m.Bounds(); ok {
		fmt.Fprintf(w, "%s  bounds:   (%.3g, %.3g, %.3g) - (%.3g, %.3g, %.3g)\n",
			indent, lo.X, lo.Y, lo.Z, hi.X, hi.Y, hi.Z)
	}
	if err := mesh.Validate(m); err != nil {
		msg := strings.ReplaceAll(err.Error(), "\n", "\n"+indent+"    ")
		fmt.Fprintf(w, "%s  invalid:  %s\n", indent, msg)
	}
}

// meshRecord is the YAML form of one mesh in a frame.
type meshRecord struct {
	Rank     string       `yaml:"rank"`
	Points   int          `yaml:"points"`
	Curves   int          `yaml:"curves"`
	Surfaces int          `yaml:"surfaces"`
	Tags     []float64    `yaml:"tags,omitempty,flow"`
	Centroid [3]float32   `yaml:"centroid,flow"`
	Vertices [][3]float32 `yaml:"vertices,omitempty,flow"`
}

type frameRecord struct {
	Step   int          `yaml:"step"`
	T      float32      `yaml:"t"`
	Meshes []meshRecord `yaml:"meshes"`
}

type framesDoc struct {
	Frames []frameRecord `yaml:"frames"`
}

func recordMesh(m *mesh.Mesh, vertices bool) meshRecord {
	np, nc, ns := m.Counts()
	r := meshRecord{
		Rank:     m.Rank().String(),
		Points:   np,
		Curves:   nc,
		Surfaces: ns,
		Tags:     m.Tags,
	}
	if c, ok := m.Centroid(); ok {
		r.Centroid = [3]float32{c.X, c.Y, c.Z}
	}
	if vertices {
		for _, p := range m.Vertices() {
			r.Vertices = append(r.Vertices, [3]float32{p.X, p.Y, p.Z})
		}
	}
	return r
}

// collectFrames animates before into after and records every frame.
func collectFrames(ctx context.Context, mt *match.Matcher, before, after value.Value, opts timeline.Options, vertices bool) ([]frameRecord, error) {
	var frames []frameRecord
	e := timeline.NewExecutor(mt, before)
	err := e.Animate(ctx, after, opts, func(step int, t float32, v value.Value) error {
		fr := frameRecord{Step: step, T: t}
		value.Walk(v, func(m *mesh.Mesh) {
			fr.Meshes = append(fr.Meshes, recordMesh(m, vertices))
		})
		frames = append(frames, fr)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return frames, nil
}

func writeFrames(w io.Writer, frames []frameRecord) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(framesDoc{Frames: frames}); err != nil {
		return fmt.Errorf("encoding frames: %w", err)
	}
	return enc.Close()
}
