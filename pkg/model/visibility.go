package model

// Visibility (C4) is implemented as a set of pure functions over the
// current hidden/collapsed fields rather than an incrementally maintained
// cache: this trivially satisfies I3 ("visibility caches are pure functions
// of the entities' hidden/collapsed fields") by construction, at the cost
// of an O(depth) ancestor walk per query instead of an amortized O(1)
// lookup. At the scale of UI-rendered dataflow graphs (hundreds to low
// thousands of visible entities) this is not a bottleneck, and it removes
// an entire class of cache-invalidation bugs from the hardest subsystem in
// the core (see DESIGN.md).

// IsVisible reports whether id (a node or container) is visible: its own
// Hidden flag is false, and every ancestor container is both non-hidden and
// non-collapsed. A collapsed container is itself visible (it participates
// as one vertex) — Collapsed only hides its descendants. Unknown ids are
// not visible.
func (s *State) IsVisible(id string) bool {
	if n, ok := s.nodes[id]; ok {
		if n.Hidden {
			return false
		}
	} else if c, ok := s.containers[id]; ok {
		if c.Hidden {
			return false
		}
	} else {
		return false
	}

	for _, anc := range s.hierarchy.ancestors(id) {
		c, ok := s.containers[anc]
		if !ok {
			continue
		}
		if c.Hidden || c.Collapsed {
			return false
		}
	}
	return true
}

// edgeVisible reports whether a regular edge or hyper-edge is visible: not
// marked hidden, and both endpoints visible.
func (s *State) edgeVisible(hidden bool, source, target string) bool {
	return !hidden && s.IsVisible(source) && s.IsVisible(target)
}

// VisibleNodes returns the ids of all currently visible nodes.
func (s *State) VisibleNodes() []string {
	var out []string
	for id := range s.nodes {
		if s.IsVisible(id) {
			out = append(out, id)
		}
	}
	return out
}

// VisibleContainers returns the ids of all currently visible containers
// (collapsed or expanded).
func (s *State) VisibleContainers() []string {
	var out []string
	for id := range s.containers {
		if s.IsVisible(id) {
			out = append(out, id)
		}
	}
	return out
}

// ExpandedContainers returns the ids of visible containers that are not
// collapsed.
func (s *State) ExpandedContainers() []string {
	var out []string
	for id, c := range s.containers {
		if !c.Collapsed && s.IsVisible(id) {
			out = append(out, id)
		}
	}
	return out
}

// VisibleEdges returns the ids of visible regular edges — never
// hyper-edges (I5 encapsulation, P6). Use VisibleEdgesUnified for the
// combined view handed to the layout bridge.
func (s *State) VisibleEdges() []string {
	var out []string
	for id, e := range s.edges {
		if s.edgeVisible(e.Hidden, e.Source, e.Target) {
			out = append(out, id)
		}
	}
	return out
}

// VisibleHyperEdges returns the ids of visible hyper-edges, kept separate
// from VisibleEdges to satisfy I5.
func (s *State) VisibleHyperEdges() []string {
	var out []string
	for id, h := range s.hyperEdges {
		if s.edgeVisible(h.Hidden, h.Source, h.Target) {
			out = append(out, id)
		}
	}
	return out
}

// VisibleEdgesUnified returns the union of visible regular edges and
// visible hyper-edges — the only collection in which hyper-edges are
// observable outside the engine (spec.md §4.4), and the collection the
// layout bridge must use as input.
func (s *State) VisibleEdgesUnified() []string {
	out := s.VisibleEdges()
	out = append(out, s.VisibleHyperEdges()...)
	return out
}
