package model

import "github.com/hydro-project/flowviz/pkg/flowerrors"

// UpsertHyperEdge inserts or replaces a hyper-edge. Unlike UpsertNode and
// UpsertEdge this is not part of the public graph-editing API — hyper-edges
// are exclusively created and destroyed by the collapse/expand engine (I5);
// it is exported so the sibling engine package can drive it.
//
// The id must be the canonical HyperEdgeID(Source, Target); an empty
// Aggregated mapping is not an error, it is treated as "this hyper-edge no
// longer exists" and the entry is removed instead (I6). A canonical id
// colliding with an existing node/edge/container is InvariantViolation,
// not InvalidInput: it can only happen if a caller hand-crafts an id in
// the engine-exclusive hyper_ namespace, which is itself rejected by
// UpsertNode/UpsertEdge/UpsertContainer, so reaching this path means the
// store's own invariants were violated, not that the caller supplied bad
// input through the normal API.
func (s *State) UpsertHyperEdge(h HyperEdge) error {
	want := HyperEdgeID(h.Source, h.Target)
	if h.ID != want {
		return flowerrors.New(flowerrors.InvalidInput, "hyper-edge id %q does not match canonical id %q for (%s, %s)", h.ID, want, h.Source, h.Target)
	}
	if h.Style == "" {
		h.Style = StyleDefault
	}
	if err := ValidateStyle(h.Style); err != nil {
		return err
	}
	if len(h.Aggregated) == 0 {
		s.RemoveHyperEdge(h.ID)
		return nil
	}
	if _, isHyper := s.hyperEdges[h.ID]; !isHyper && s.exists(h.ID) {
		return flowerrors.New(flowerrors.InvariantViolation, "canonical hyper-edge id %q collides with an existing node/edge/container", h.ID)
	}

	cp := h
	cp.Aggregated = make(map[string]AggregatedEdge, len(h.Aggregated))
	for k, v := range h.Aggregated {
		cp.Aggregated[k] = v
	}
	s.hyperEdges[h.ID] = &cp
	if !cp.Hidden {
		s.incidence.add(cp.ID, cp.Source, cp.Target)
	}
	return nil
}

// GetHyperEdge returns the hyper-edge with id, or nil, false if absent.
func (s *State) GetHyperEdge(id string) (*HyperEdge, bool) {
	h, ok := s.hyperEdges[id]
	return h, ok
}

// HyperEdgeIDs returns the ids of every hyper-edge in the store, visible or
// dormant. Used by the engine to find hyper-edges left swallowed inside a
// collapsed ancestor's subtree, which are not reachable through the
// incidence index under the swallowing container's own id.
func (s *State) HyperEdgeIDs() []string {
	out := make([]string, 0, len(s.hyperEdges))
	for id := range s.hyperEdges {
		out = append(out, id)
	}
	return out
}

// HyperEdgeBetween looks up a hyper-edge by its (source, target) endpoints
// via the canonical id, a convenience for the engine's bucket-by-LVA step.
func (s *State) HyperEdgeBetween(source, target string) (*HyperEdge, bool) {
	return s.GetHyperEdge(HyperEdgeID(source, target))
}

// RemoveHyperEdge deletes a hyper-edge and drops it from the incidence
// index. No-op if absent.
func (s *State) RemoveHyperEdge(id string) {
	h, ok := s.hyperEdges[id]
	if !ok {
		return
	}
	if !h.Hidden {
		s.incidence.remove(id, h.Source, h.Target)
	}
	delete(s.hyperEdges, id)
}
