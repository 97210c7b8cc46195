package model

import (
	"encoding/json"
	"io"
	"os"
	"sort"

	"github.com/hydro-project/flowviz/pkg/flowerrors"
)

// Doc is the host-facing JSON serialization of a visualization state: the
// declarative input a host loads before driving collapse/expand/layout,
// shaped for a hierarchical graph rather than a flat dependency list. It carries
// only host-supplied fields — Layout/LayoutSize/Hidden are runtime-derived
// and are not part of the wire format.
type Doc struct {
	Nodes      []NodeDoc      `json:"nodes"`
	Containers []ContainerDoc `json:"containers,omitempty"`
	Edges      []EdgeDoc      `json:"edges"`
}

type NodeDoc struct {
	ID    string     `json:"id"`
	Label string     `json:"label,omitempty"`
	Style Style      `json:"style,omitempty"`
	Attrs Attributes `json:"attrs,omitempty"`
}

// ContainerDoc has no Style field: model.Container carries no styling of
// its own (spec.md §4.3 styles nodes and edges only).
type ContainerDoc struct {
	ID             string     `json:"id"`
	Label          string     `json:"label,omitempty"`
	Children       []string   `json:"children"`
	Collapsed      bool       `json:"collapsed,omitempty"`
	ExpandedWidth  float64    `json:"expanded_width,omitempty"`
	ExpandedHeight float64    `json:"expanded_height,omitempty"`
	Attrs          Attributes `json:"attrs,omitempty"`
}

type EdgeDoc struct {
	ID     string     `json:"id"`
	Source string     `json:"source"`
	Target string     `json:"target"`
	Style  Style      `json:"style,omitempty"`
	Attrs  Attributes `json:"attrs,omitempty"`
}

// Load populates a fresh State from doc. Every container is upserted
// before any child is parented, so a container may name a sub-container
// declared later in doc in its Children. AddChildToContainer does not
// check that a child id names an existing entity.
func Load(doc Doc) (*State, error) {
	s := New()

	for _, n := range doc.Nodes {
		style := n.Style
		if style == "" {
			style = StyleDefault
		}
		if err := s.UpsertNode(Node{ID: n.ID, Label: n.Label, Style: style, Attrs: n.Attrs}); err != nil {
			return nil, err
		}
	}
	for _, c := range doc.Containers {
		if err := s.UpsertContainer(Container{
			ID:                 c.ID,
			Label:              c.Label,
			Collapsed:          c.Collapsed,
			Attrs:              c.Attrs,
			ExpandedDimensions: Dimensions{W: c.ExpandedWidth, H: c.ExpandedHeight, Set: c.ExpandedWidth > 0 || c.ExpandedHeight > 0},
		}); err != nil {
			return nil, err
		}
	}
	for _, c := range doc.Containers {
		for _, childID := range c.Children {
			if err := s.AddChildToContainer(c.ID, childID); err != nil {
				return nil, err
			}
		}
	}
	for _, e := range doc.Edges {
		style := e.Style
		if style == "" {
			style = StyleDefault
		}
		if err := s.UpsertEdge(Edge{ID: e.ID, Source: e.Source, Target: e.Target, Style: style, Attrs: e.Attrs}); err != nil {
			return nil, err
		}
	}

	if err := s.CheckInvariants(); err != nil {
		return nil, flowerrors.Wrap(flowerrors.InvalidInput, err, "loaded document violates state invariants")
	}
	return s, nil
}

// ReadJSON decodes a Doc from r and loads it into a new State.
func ReadJSON(r io.Reader) (*State, error) {
	var doc Doc
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, flowerrors.Wrap(flowerrors.InvalidInput, err, "decode state document")
	}
	return Load(doc)
}

// ReadJSONFile reads and loads a Doc from a file path.
func ReadJSONFile(path string) (*State, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, flowerrors.Wrap(flowerrors.InvalidInput, err, "open state document %q", path)
	}
	defer f.Close()
	return ReadJSON(f)
}

func sortedKeys(m map[string]struct{}) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Dump converts s back into its wire form. Runtime-derived fields
// (Layout, LayoutSize, Hidden) are not carried — a round trip through
// Dump/Load preserves topology and styling, not a prior layout pass.
func Dump(s *State) Doc {
	var doc Doc

	nodeIDs := make([]string, 0, len(s.nodes))
	for id := range s.nodes {
		nodeIDs = append(nodeIDs, id)
	}
	sort.Strings(nodeIDs)
	for _, id := range nodeIDs {
		n := s.nodes[id]
		doc.Nodes = append(doc.Nodes, NodeDoc{ID: n.ID, Label: n.Label, Style: n.Style, Attrs: n.Attrs})
	}

	containerIDs := make([]string, 0, len(s.containers))
	for id := range s.containers {
		containerIDs = append(containerIDs, id)
	}
	sort.Strings(containerIDs)
	for _, id := range containerIDs {
		c := s.containers[id]
		doc.Containers = append(doc.Containers, ContainerDoc{
			ID:             c.ID,
			Label:          c.Label,
			Children:       sortedKeys(c.Children),
			Collapsed:      c.Collapsed,
			ExpandedWidth:  c.ExpandedDimensions.W,
			ExpandedHeight: c.ExpandedDimensions.H,
			Attrs:          c.Attrs,
		})
	}

	edgeIDs := make([]string, 0, len(s.edges))
	for id := range s.edges {
		edgeIDs = append(edgeIDs, id)
	}
	sort.Strings(edgeIDs)
	for _, id := range edgeIDs {
		e := s.edges[id]
		doc.Edges = append(doc.Edges, EdgeDoc{ID: e.ID, Source: e.Source, Target: e.Target, Style: e.Style, Attrs: e.Attrs})
	}

	return doc
}

// WriteJSON encodes s as a Doc to w.
func WriteJSON(w io.Writer, s *State) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Dump(s)); err != nil {
		return flowerrors.Wrap(flowerrors.InternalError, err, "encode state document")
	}
	return nil
}

// WriteJSONFile writes s as a Doc to a file path.
func WriteJSONFile(path string, s *State) error {
	f, err := os.Create(path)
	if err != nil {
		return flowerrors.Wrap(flowerrors.InvalidInput, err, "create state document %q", path)
	}
	defer f.Close()
	return WriteJSON(f, s)
}
