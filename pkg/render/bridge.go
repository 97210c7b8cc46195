package render

import (
	"sort"

	"github.com/hydro-project/flowviz/pkg/model"
)

// NodeType discriminates a RenderNode's shape requirements for the host
// renderer (spec.md §6, "Render interface").
type NodeType string

const (
	NodeStandard  NodeType = "standard"
	NodeContainer NodeType = "container"
)

// Theme maps a model.Style to host-renderer styling data. It is supplied
// as configuration (spec.md §4.7, "a fixed theming table supplied as
// configuration"), carrying plain data rather than an SVG-writing
// interface since the host, not this package, draws pixels.
type Theme map[model.Style]Appearance

// Appearance is one style's rendering data.
type Appearance struct {
	Stroke string
	Fill   string
	Width  float64
}

// DefaultTheme is a reasonable default theming table covering the closed
// style enum; hosts are free to override it via configuration.
func DefaultTheme() Theme {
	return Theme{
		model.StyleDefault:     {Stroke: "#333333", Fill: "#ffffff", Width: 1},
		model.StyleHighlighted: {Stroke: "#2563eb", Fill: "#dbeafe", Width: 1.5},
		model.StyleThick:       {Stroke: "#333333", Fill: "#ffffff", Width: 3},
		model.StyleWarning:     {Stroke: "#d97706", Fill: "#fef3c7", Width: 2},
		model.StyleError:       {Stroke: "#dc2626", Fill: "#fee2e2", Width: 2},
	}
}

// Node is a flat render-node: one visible entity positioned for the host
// renderer (spec.md §6).
type Node struct {
	ID         string
	Type       NodeType
	Position   model.Position // absolute for roots, relative-to-parent for children
	Dimensions model.Dimensions
	ParentID   string // empty for root-level entities
	Label      string
	Style      Appearance
}

// Edge is a flat render-edge.
type Edge struct {
	ID       string
	SourceID string
	TargetID string
	Style    Appearance
	Bends    []model.BendPoint
}

// Frame is the flat output of one render pass: every visible node plus
// every element of the unified edge view, with parent linking and
// coordinates translated per spec.md §4.7.
type Frame struct {
	Nodes []Node
	Edges []Edge
}

// Bridge produces a Frame from state after a layout pass has written
// absolute positions onto every visible entity. It performs the three
// duties of the Render Bridge (C7):
//
//  1. Parent linking: every node records its container parent, if any.
//  2. Coordinate translation: children are re-expressed relative to their
//     parent's absolute origin; roots remain absolute. The translation is
//     exactly invertible (Frame.Absolute undoes it) up to floating-point,
//     matching the round-trip accuracy spec.md §4.7 requires.
//  3. Edge handling: every element of VisibleEdgesUnified becomes one
//     render-edge, styled through theme.
func Bridge(s *model.State, theme Theme) Frame {
	if theme == nil {
		theme = DefaultTheme()
	}
	var f Frame

	for _, id := range sortedStrings(s.VisibleNodes()) {
		n, ok := s.GetNode(id)
		if !ok {
			continue
		}
		parentID, _ := s.ParentOf(id)
		pos := n.Layout
		if parentID != "" {
			pos = relativeTo(s, parentID, pos)
		}
		f.Nodes = append(f.Nodes, Node{
			ID:       id,
			Type:     NodeStandard,
			Position: pos,
			ParentID: parentID,
			Label:    n.Label,
			Style:    theme[n.Style],
		})
	}

	for _, id := range sortedStrings(s.VisibleContainers()) {
		c, ok := s.GetContainer(id)
		if !ok {
			continue
		}
		parentID, _ := s.ParentOf(id)
		pos := c.Layout
		if parentID != "" {
			pos = relativeTo(s, parentID, pos)
		}
		f.Nodes = append(f.Nodes, Node{
			ID:         id,
			Type:       NodeContainer,
			Position:   pos,
			Dimensions: c.LayoutSize,
			ParentID:   parentID,
			Label:      c.Label,
			Style:      theme[model.StyleDefault],
		})
	}

	for _, id := range sortedStrings(s.VisibleEdges()) {
		e, ok := s.GetEdge(id)
		if !ok {
			continue
		}
		f.Edges = append(f.Edges, Edge{ID: id, SourceID: e.Source, TargetID: e.Target, Style: theme[e.Style], Bends: e.Bends})
	}
	for _, id := range sortedStrings(s.VisibleHyperEdges()) {
		h, ok := s.GetHyperEdge(id)
		if !ok {
			continue
		}
		f.Edges = append(f.Edges, Edge{ID: id, SourceID: h.Source, TargetID: h.Target, Style: theme[h.Style]})
	}

	return f
}

// relativeTo re-expresses an absolute position relative to parent's own
// absolute origin. Unset positions translate to an unset relative
// position (Set stays false): a layout pass has not run yet.
func relativeTo(s *model.State, parentID string, abs model.Position) model.Position {
	if !abs.Set {
		return abs
	}
	pc, ok := s.GetContainer(parentID)
	if !ok || !pc.Layout.Set {
		return abs
	}
	return model.Position{X: abs.X - pc.Layout.X, Y: abs.Y - pc.Layout.Y, Set: true}
}

// Absolute inverts the coordinate translation Bridge applies to node n's
// position, returning its position in the root coordinate system. This is
// the round-trip half of spec.md §4.7's invertibility requirement.
func Absolute(s *model.State, n Node) model.Position {
	if n.ParentID == "" || !n.Position.Set {
		return n.Position
	}
	pc, ok := s.GetContainer(n.ParentID)
	if !ok || !pc.Layout.Set {
		return n.Position
	}
	return model.Position{X: n.Position.X + pc.Layout.X, Y: n.Position.Y + pc.Layout.Y, Set: true}
}

func sortedStrings(ss []string) []string {
	out := append([]string(nil), ss...)
	sort.Strings(out)
	return out
}
