package model

// Snapshot returns a deep copy of s, used by the collapse/expand engine to
// guarantee atomicity (spec.md §4.5.5: "implementers may achieve this by
// computing the full change set into a scratch structure before applying
// it, or by snapshotting and rolling back" — this package takes the second
// approach, since the engine's steps are cheap relative to a typical UI
// graph's size and snapshotting is far simpler to get right than a
// hand-maintained diff).
func (s *State) Snapshot() *State {
	out := New()
	for id, n := range s.nodes {
		cp := *n
		cp.Attrs = n.Attrs.Clone()
		out.nodes[id] = &cp
	}
	for id, e := range s.edges {
		cp := *e
		cp.Attrs = e.Attrs.Clone()
		cp.Bends = append([]BendPoint(nil), e.Bends...)
		out.edges[id] = &cp
	}
	for id, c := range s.containers {
		cp := *c
		cp.Attrs = c.Attrs.Clone()
		cp.Children = make(map[string]struct{}, len(c.Children))
		for child := range c.Children {
			cp.Children[child] = struct{}{}
		}
		out.containers[id] = &cp
	}
	for id, h := range s.hyperEdges {
		cp := *h
		cp.Aggregated = make(map[string]AggregatedEdge, len(h.Aggregated))
		for k, v := range h.Aggregated {
			cp.Aggregated[k] = v
		}
		out.hyperEdges[id] = &cp
	}

	out.hierarchy = &hierarchyIndex{
		childrenOf: make(map[string]map[string]struct{}, len(s.hierarchy.childrenOf)),
		parentOf:   make(map[string]string, len(s.hierarchy.parentOf)),
	}
	for parent, children := range s.hierarchy.childrenOf {
		set := make(map[string]struct{}, len(children))
		for c := range children {
			set[c] = struct{}{}
		}
		out.hierarchy.childrenOf[parent] = set
	}
	for child, parent := range s.hierarchy.parentOf {
		out.hierarchy.parentOf[child] = parent
	}

	out.incidence = &incidenceIndex{byEndpoint: make(map[string]map[string]struct{}, len(s.incidence.byEndpoint))}
	for endpoint, ids := range s.incidence.byEndpoint {
		set := make(map[string]struct{}, len(ids))
		for id := range ids {
			set[id] = struct{}{}
		}
		out.incidence.byEndpoint[endpoint] = set
	}

	return out
}

// Restore replaces s's entire contents with snap's, in place, so that
// existing callers holding a *State (the engine, the orchestrator) observe
// the rollback without needing a fresh pointer.
func (s *State) Restore(snap *State) {
	s.nodes = snap.nodes
	s.edges = snap.edges
	s.containers = snap.containers
	s.hyperEdges = snap.hyperEdges
	s.hierarchy = snap.hierarchy
	s.incidence = snap.incidence
}
