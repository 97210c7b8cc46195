// Package model implements the Identity & Entity Store, Hierarchy Index,
// Edge Incidence Index, and Visibility queries of the visualization state
// core: the typed storage of nodes, edges, containers, and hyper-edges, the
// parent/child relation over containers, and the derived visibility sets
// that the collapse/expand engine and the layout/render bridges consume.
//
// The state struct composes these concerns by ownership rather than
// inheritance: [State] has-a entity store, has-a hierarchy index, has-a
// incidence index; visibility is computed on each query (visibility.go)
// rather than stored. Collapse/expand operations (in
// the sibling package [github.com/hydro-project/flowviz/pkg/engine]) borrow
// a *State mutably for the duration of one step.
package model

import "github.com/hydro-project/flowviz/pkg/flowerrors"

// Style is a closed enumeration of visual styles for nodes, edges, and
// hyper-edges (containers carry no style). Unknown values are rejected,
// not coerced; the upsert functions store an empty Style as StyleDefault.
type Style string

// The fixed style enum, also used for hyper-edge style-priority aggregation
// (highest priority first): Error > Warning > Thick > Highlighted > Default.
const (
	StyleDefault     Style = "default"
	StyleHighlighted Style = "highlighted"
	StyleThick       Style = "thick"
	StyleWarning     Style = "warning"
	StyleError       Style = "error"
)

// stylePriority maps a style to its precedence rank; higher wins.
var stylePriority = map[Style]int{
	StyleDefault:     0,
	StyleHighlighted: 1,
	StyleThick:       2,
	StyleWarning:     3,
	StyleError:       4,
}

// ValidStyles is the set of styles accepted by the entity store.
var ValidStyles = map[Style]bool{
	StyleDefault:     true,
	StyleHighlighted: true,
	StyleThick:       true,
	StyleWarning:     true,
	StyleError:       true,
}

// ValidateStyle rejects unknown style values (closed enumeration).
func ValidateStyle(s Style) error {
	if !ValidStyles[s] {
		return flowerrors.New(flowerrors.InvalidInput, "unknown style: %q", s)
	}
	return nil
}

// HigherPriorityStyle returns whichever of a, b has the higher rendering
// priority under error > warning > thick > highlighted > default. Ties
// (equal styles) return a.
func HigherPriorityStyle(a, b Style) Style {
	if stylePriority[b] > stylePriority[a] {
		return b
	}
	return a
}

// Attributes stores arbitrary extra fields ("...otherProps" in the source
// material) that the engine and bridges treat as opaque and copy through
// verbatim to the render bridge. Known fields are typed columns on the
// entity structs; everything else lands here.
type Attributes map[string]any

// Clone returns a shallow copy of a, or nil if a is nil.
func (a Attributes) Clone() Attributes {
	if a == nil {
		return nil
	}
	out := make(Attributes, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Position is a 2D point in an absolute coordinate system, written onto an
// entity by the layout bridge. A zero-value Position with Set == false
// means "no layout has been computed yet" (distinct from a legitimate
// position at the origin).
type Position struct {
	X, Y float64
	Set  bool
}

// Dimensions is a width/height pair, used for containers' expanded size
// (host-supplied) and for the size the layout bridge assigns them back.
type Dimensions struct {
	W, H float64
	Set  bool
}

// BendPoint is one intermediate routing point of an edge as computed by the
// external layout engine.
type BendPoint struct {
	X, Y float64
}

// Node is a leaf vertex in the dataflow graph.
//
// A Node owns only its own attributes; it does not own incident edges —
// edges reference it by id, and the incidence index (see incidence.go)
// tracks that relationship.
type Node struct {
	ID     string
	Label  string
	Style  Style
	Hidden bool
	Attrs  Attributes

	// Layout is written by the layout bridge (C6); zero value (Set == false)
	// until the first layout pass completes.
	Layout Position
}

// Edge is a directed connection between two entities ("regular edge", as
// opposed to a hyper-edge). Edge.Hidden becomes true when one endpoint is
// swallowed by a collapsed ancestor, and reverts to false on expand.
type Edge struct {
	ID     string
	Source string
	Target string
	Style  Style
	Hidden bool
	Attrs  Attributes

	// Bends is optional routing supplied by the layout bridge.
	Bends []BendPoint
}

// Container is a named set of child ids (nodes and/or other containers)
// that can be collapsed into a single visible vertex. A Container owns the
// identity of its direct children only — children remain owned by the
// entity store; Children is a membership relation, not a storage hierarchy.
type Container struct {
	ID        string
	Label     string
	Collapsed bool
	Hidden    bool
	Children  map[string]struct{}
	Attrs     Attributes

	// ExpandedDimensions is the size to use when this container is laid out
	// expanded (host-supplied, e.g. from a natural-size computation upstream
	// of the core).
	ExpandedDimensions Dimensions

	// Layout is written by the layout bridge when the container is visible;
	// cleared whenever the container is hidden by a collapse (§4.5.4).
	Layout     Position
	LayoutSize Dimensions
}

// ChildIDs returns the container's children as a sorted-free slice (order
// is not guaranteed). Callers that need deterministic order should sort.
func (c *Container) ChildIDs() []string {
	ids := make([]string, 0, len(c.Children))
	for id := range c.Children {
		ids = append(ids, id)
	}
	return ids
}

// AggregatedEdge is one original regular edge folded into a hyper-edge's
// aggregation mapping, captured at the moment aggregation occurred (I6: the
// mapping key is the original edge id, the value its descriptor).
type AggregatedEdge struct {
	Source string
	Target string
	Style  Style
}

// HyperEdge is an engine-created aggregate edge that replaces one or more
// crossing edges of a collapsed container. Its id is derived canonically
// from its endpoints (hyper_<src>__to__<dst>); it is exclusively created
// and destroyed by the collapse/expand engine and never mutated directly
// by external API calls (spec.md §3).
type HyperEdge struct {
	ID     string
	Source string
	Target string
	Style  Style
	Hidden bool

	// Aggregated is a non-empty mapping from original edge id to its
	// descriptor at aggregation time (I6: emptying it removes the
	// hyper-edge, silently — not an error).
	Aggregated map[string]AggregatedEdge
}

// HyperEdgeID derives the canonical id for a hyper-edge between src and dst.
// Hyper-edge ids are content-free beyond endpoints — two distinct collapses
// producing the same (source, target) merge into the same id.
func HyperEdgeID(src, dst string) string {
	return "hyper_" + src + "__to__" + dst
}

// hyperEdgeIDPrefix is reserved for the engine; external upserts using it
// are rejected with InvalidInput (see UpsertNode, UpsertEdge and
// UpsertContainer).
const hyperEdgeIDPrefix = "hyper_"
