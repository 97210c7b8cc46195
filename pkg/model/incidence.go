package model

// incidenceIndex maintains, for each endpoint id, the set of edge ids
// (regular edges and non-hidden hyper-edges) that touch it (C3). It is kept
// consistent with edge/hyper-edge add and remove; [State.RebuildIncidence]
// performs a full rebuild from the entity store and must produce the same
// result as incremental maintenance (spec.md §4.3).
type incidenceIndex struct {
	byEndpoint map[string]map[string]struct{} // endpoint id -> edge/hyper-edge ids
}

func newIncidenceIndex() *incidenceIndex {
	return &incidenceIndex{byEndpoint: make(map[string]map[string]struct{})}
}

func (idx *incidenceIndex) add(edgeID, source, target string) {
	idx.link(source, edgeID)
	idx.link(target, edgeID)
}

func (idx *incidenceIndex) link(endpoint, edgeID string) {
	if idx.byEndpoint[endpoint] == nil {
		idx.byEndpoint[endpoint] = make(map[string]struct{})
	}
	idx.byEndpoint[endpoint][edgeID] = struct{}{}
}

func (idx *incidenceIndex) remove(edgeID, source, target string) {
	idx.unlink(source, edgeID)
	idx.unlink(target, edgeID)
}

func (idx *incidenceIndex) unlink(endpoint, edgeID string) {
	delete(idx.byEndpoint[endpoint], edgeID)
	if len(idx.byEndpoint[endpoint]) == 0 {
		delete(idx.byEndpoint, endpoint)
	}
}

// edgesOf returns the ids of all edges and non-hidden hyper-edges incident
// to endpoint.
func (idx *incidenceIndex) edgesOf(endpoint string) []string {
	set := idx.byEndpoint[endpoint]
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}

// rebuildIncidence recomputes the entire index from scratch given the current entity
// store, discarding whatever incremental state existed before. Permitted
// after batch structural changes (spec.md §4.3).
func (s *State) rebuildIncidence() {
	idx := newIncidenceIndex()
	for _, e := range s.edges {
		idx.add(e.ID, e.Source, e.Target)
	}
	for _, h := range s.hyperEdges {
		if !h.Hidden {
			idx.add(h.ID, h.Source, h.Target)
		}
	}
	s.incidence = idx
}

// --- Public State accessors (C3 external surface) ---

// IncidentEdges returns the ids of all edges and non-hidden hyper-edges
// touching endpoint (I2: exactly the multiset of edges whose source or
// target equals endpoint).
func (s *State) IncidentEdges(endpoint string) []string {
	return s.incidence.edgesOf(endpoint)
}

// RebuildIncidence forces a full rebuild of the edge incidence index from
// the current entity store. Useful after bulk structural edits; must
// produce the same result as incremental maintenance.
func (s *State) RebuildIncidence() {
	s.rebuildIncidence()
}
