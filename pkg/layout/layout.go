// Package layout implements the Layout Bridge (C6): it builds a
// hierarchical input for an external layout engine from the visibility
// caches and the unified edge view, and writes the engine's positions and
// dimensions back onto the state store. It never computes a layout
// itself — see pkg/layoutengine for concrete engine adapters — matching
// spec.md §9's framing of layout as an external black box behind a fixed
// interface (spec.md §4.6, §6).
package layout

import (
	"math"
	"sort"

	"github.com/hydro-project/flowviz/pkg/flowerrors"
	"github.com/hydro-project/flowviz/pkg/model"
)

// Direction is the layout flow direction.
type Direction string

const (
	Up    Direction = "UP"
	Down  Direction = "DOWN"
	Left  Direction = "LEFT"
	Right Direction = "RIGHT"
)

// Algorithm selects the layout strategy.
type Algorithm string

const (
	AlgorithmLayered Algorithm = "layered"
	AlgorithmTree    Algorithm = "tree"
	AlgorithmRadial  Algorithm = "radial"
	AlgorithmForce   Algorithm = "force"
)

// EdgeRouting selects how edges are routed between positioned elements.
type EdgeRouting string

const (
	RoutingOrthogonal EdgeRouting = "orthogonal"
	RoutingPolyline   EdgeRouting = "polyline"
	RoutingSplines    EdgeRouting = "splines"
)

// Options is the closed configuration set of spec.md §4.6. Unknown
// direction/algorithm/routing values are rejected by Validate; there is no
// escape hatch for an engine-specific extra option.
type Options struct {
	Direction    Direction
	Algorithm    Algorithm
	NodeSpacing  float64
	LayerSpacing float64
	EdgeRouting  EdgeRouting
}

// DefaultOptions returns the default layout options: a layered top-down
// layout.
func DefaultOptions() Options {
	return Options{
		Direction:    Down,
		Algorithm:    AlgorithmLayered,
		NodeSpacing:  40,
		LayerSpacing: 80,
		EdgeRouting:  RoutingPolyline,
	}
}

var (
	validDirections = map[Direction]bool{Up: true, Down: true, Left: true, Right: true}
	validAlgorithms = map[Algorithm]bool{AlgorithmLayered: true, AlgorithmTree: true, AlgorithmRadial: true, AlgorithmForce: true}
	validRouting    = map[EdgeRouting]bool{RoutingOrthogonal: true, RoutingPolyline: true, RoutingSplines: true}
)

// Validate rejects any option outside the closed set of spec.md §4.6.
func (o Options) Validate() error {
	if !validDirections[o.Direction] {
		return flowerrors.New(flowerrors.InvalidInput, "unknown layout direction: %q", o.Direction)
	}
	if !validAlgorithms[o.Algorithm] {
		return flowerrors.New(flowerrors.InvalidInput, "unknown layout algorithm: %q", o.Algorithm)
	}
	if !validRouting[o.EdgeRouting] {
		return flowerrors.New(flowerrors.InvalidInput, "unknown edge routing: %q", o.EdgeRouting)
	}
	if o.NodeSpacing < 0 {
		return flowerrors.New(flowerrors.InvalidInput, "node_spacing must be non-negative, got %v", o.NodeSpacing)
	}
	if o.LayerSpacing < 0 {
		return flowerrors.New(flowerrors.InvalidInput, "layer_spacing must be non-negative, got %v", o.LayerSpacing)
	}
	return nil
}

// Leaf is an input element with no children: a visible node, or a visible
// collapsed container (which participates as a single opaque vertex).
type Leaf struct {
	ID             string
	PreferredWidth float64
	PreferredHeight float64
}

// Region is an input element that nests leaves and sub-regions: a visible
// expanded container.
type Region struct {
	ID       string
	Leaves   []Leaf
	Regions  []Region
}

// EdgeInput is one element of the unified edge view (regular or
// hyper-edge, indistinguishable to the layout engine by design — I5 is an
// encapsulation boundary of the state core, not of the layout interface).
type EdgeInput struct {
	ID     string
	Source string
	Target string
}

// Input is the hierarchical graph description handed to a layout engine
// (spec.md §6, "Layout engine interface").
type Input struct {
	Roots   []Leaf
	Regions []Region
	Edges   []EdgeInput
	Options Options

	// Pinned lists ids the host has manually positioned (spec.md §9's open
	// question on manual overrides). ApplyOutput leaves these entities'
	// positions untouched; the core itself never sets or interprets this
	// set — it is populated by the host before a layout pass, via Pin.
	Pinned map[string]bool
}

// Pin marks id as manually positioned by the host: a subsequent
// ApplyOutput call for this Input will not overwrite its position. Unpin
// reverses this. Both are no-ops on an id the engine doesn't know about.
func Pin(in *Input, id string) {
	if in.Pinned == nil {
		in.Pinned = make(map[string]bool)
	}
	in.Pinned[id] = true
}

func Unpin(in *Input, id string) {
	delete(in.Pinned, id)
}

// Position is a computed absolute coordinate for one leaf or region.
type Position struct {
	X, Y float64
}

// Dimensions is a computed size for one region.
type Dimensions struct {
	W, H float64
}

// Output is what a layout engine hands back: positions for every leaf and
// region, dimensions for every region, and optional bend points per edge.
type Output struct {
	Positions  map[string]Position
	Dimensions map[string]Dimensions
	Bends      map[string][]model.BendPoint
}

// Engine is the external "black box" layout algorithm contract (spec.md
// §6). Concrete adapters live under pkg/layoutengine.
type Engine interface {
	Layout(in Input) (Output, error)
}

// BuildInput constructs the hierarchical layout input entirely from the
// visibility caches and the unified edge view (spec.md §4.6 step 1-2):
// every visible container becomes a nested region containing its visible
// children, every visible non-child node or container becomes a
// root-level leaf/region. Hyper-edges are included — omitting them is
// "the canonical bug this design eliminates" per spec.md.
func BuildInput(s *model.State, opts Options) Input {
	in := Input{Options: opts}

	for _, id := range sortedStrings(s.VisibleNodes()) {
		if _, ok := s.ParentOf(id); ok {
			continue // owned by a region below
		}
		in.Roots = append(in.Roots, leafOf(s, id))
	}
	for _, id := range sortedStrings(s.VisibleContainers()) {
		if _, ok := s.ParentOf(id); ok {
			continue
		}
		if region, isRegion := regionOf(s, id); isRegion {
			in.Regions = append(in.Regions, region)
		} else {
			in.Roots = append(in.Roots, leafOf(s, id))
		}
	}

	for _, id := range sortedStrings(s.VisibleEdgesUnified()) {
		src, dst, ok := edgeEndpoints(s, id)
		if !ok {
			continue
		}
		in.Edges = append(in.Edges, EdgeInput{ID: id, Source: src, Target: dst})
	}

	return in
}

// regionOf builds the nested Region for a visible, expanded container. A
// collapsed visible container is a Leaf instead (it is one opaque
// vertex, its descendants are not part of this layout pass).
func regionOf(s *model.State, id string) (Region, bool) {
	c, ok := s.GetContainer(id)
	if !ok || c.Collapsed {
		return Region{}, false
	}
	r := Region{ID: id}
	for _, childID := range sortedStrings(s.ChildrenOf(id)) {
		if !s.IsVisible(childID) {
			continue
		}
		if _, isNode := s.GetNode(childID); isNode {
			r.Leaves = append(r.Leaves, leafOf(s, childID))
			continue
		}
		if childRegion, isRegion := regionOf(s, childID); isRegion {
			r.Regions = append(r.Regions, childRegion)
		} else {
			r.Leaves = append(r.Leaves, leafOf(s, childID))
		}
	}
	return r, true
}

func leafOf(s *model.State, id string) Leaf {
	if c, ok := s.GetContainer(id); ok {
		return Leaf{ID: id, PreferredWidth: c.ExpandedDimensions.W, PreferredHeight: c.ExpandedDimensions.H}
	}
	return Leaf{ID: id}
}

func edgeEndpoints(s *model.State, id string) (source, target string, ok bool) {
	if e, found := s.GetEdge(id); found {
		return e.Source, e.Target, true
	}
	if h, found := s.GetHyperEdge(id); found {
		return h.Source, h.Target, true
	}
	return "", "", false
}

// ApplyOutput writes an engine's computed positions, dimensions, and
// bends back onto each entity's layout slot (spec.md §4.6 step 3). It
// validates shape before mutating anything: a missing position for a
// requested leaf/region, or a non-finite coordinate, is a LayoutFailure,
// and the state is left untouched.
func ApplyOutput(s *model.State, in Input, out Output) error {
	if err := validateOutput(in, out); err != nil {
		return err
	}

	applyLeaf := func(id string) {
		if in.Pinned[id] {
			return
		}
		p := out.Positions[id]
		if n, ok := s.GetNode(id); ok {
			n.Layout = model.Position{X: p.X, Y: p.Y, Set: true}
		} else if c, ok := s.GetContainer(id); ok {
			c.Layout = model.Position{X: p.X, Y: p.Y, Set: true}
		}
	}
	applyRegion := func(id string) {
		applyLeaf(id)
		if in.Pinned[id] {
			return
		}
		if c, ok := s.GetContainer(id); ok {
			d := out.Dimensions[id]
			c.LayoutSize = model.Dimensions{W: d.W, H: d.H, Set: true}
		}
	}

	var walkRegion func(r Region)
	walkRegion = func(r Region) {
		applyRegion(r.ID)
		for _, l := range r.Leaves {
			applyLeaf(l.ID)
		}
		for _, sub := range r.Regions {
			walkRegion(sub)
		}
	}

	for _, l := range in.Roots {
		applyLeaf(l.ID)
	}
	for _, r := range in.Regions {
		walkRegion(r)
	}
	for _, e := range in.Edges {
		if bends, ok := out.Bends[e.ID]; ok {
			if edge, found := s.GetEdge(e.ID); found {
				edge.Bends = bends
			}
		}
	}
	return nil
}

func validateOutput(in Input, out Output) error {
	check := func(id string) error {
		p, ok := out.Positions[id]
		if !ok {
			return flowerrors.New(flowerrors.LayoutFailure, "layout output missing position for %q", id)
		}
		if isNaN(p.X) || isNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
			return flowerrors.New(flowerrors.LayoutFailure, "layout output has non-finite position for %q", id)
		}
		return nil
	}
	var walkRegion func(r Region) error
	walkRegion = func(r Region) error {
		if err := check(r.ID); err != nil {
			return err
		}
		d, ok := out.Dimensions[r.ID]
		if !ok {
			return flowerrors.New(flowerrors.LayoutFailure, "layout output missing dimensions for region %q", r.ID)
		}
		if isNaN(d.W) || isNaN(d.H) || math.IsInf(d.W, 0) || math.IsInf(d.H, 0) {
			return flowerrors.New(flowerrors.LayoutFailure, "layout output has non-finite dimensions for region %q", r.ID)
		}
		for _, l := range r.Leaves {
			if err := check(l.ID); err != nil {
				return err
			}
		}
		for _, sub := range r.Regions {
			if err := walkRegion(sub); err != nil {
				return err
			}
		}
		return nil
	}

	for _, l := range in.Roots {
		if err := check(l.ID); err != nil {
			return err
		}
	}
	for _, r := range in.Regions {
		if err := walkRegion(r); err != nil {
			return err
		}
	}
	return nil
}

func isNaN(f float64) bool { return f != f }

func sortedStrings(ss []string) []string {
	out := append([]string(nil), ss...)
	sort.Strings(out)
	return out
}
