package model

import (
	"strings"

	"github.com/hydro-project/flowviz/pkg/flowerrors"
)

// UpsertEdge inserts or replaces a regular edge. Both endpoints must already
// exist as a node or container; the id must not collide with a non-edge
// entity and must not use the reserved hyper-edge id prefix (hyper-edges are
// exclusively engine-managed, I5). An empty Style is stored as StyleDefault.
func (s *State) UpsertEdge(e Edge) error {
	if e.ID == "" {
		return flowerrors.New(flowerrors.InvalidInput, "edge id must not be empty")
	}
	if strings.HasPrefix(e.ID, hyperEdgeIDPrefix) {
		return flowerrors.New(flowerrors.InvalidInput, "edge id %q uses the reserved hyper-edge prefix %q", e.ID, hyperEdgeIDPrefix)
	}
	if e.Style == "" {
		e.Style = StyleDefault
	}
	if err := ValidateStyle(e.Style); err != nil {
		return err
	}
	if !s.endpointExists(e.Source) {
		return flowerrors.New(flowerrors.InvalidInput, "edge %q: source %q does not exist", e.ID, e.Source)
	}
	if !s.endpointExists(e.Target) {
		return flowerrors.New(flowerrors.InvalidInput, "edge %q: target %q does not exist", e.ID, e.Target)
	}
	if _, isEdge := s.edges[e.ID]; !isEdge && s.exists(e.ID) {
		return flowerrors.New(flowerrors.InvalidInput, "id %q already in use by a non-edge entity", e.ID)
	}

	if old, ok := s.edges[e.ID]; ok {
		s.incidence.remove(e.ID, old.Source, old.Target)
	}
	cp := e
	cp.Attrs = e.Attrs.Clone()
	cp.Bends = append([]BendPoint(nil), e.Bends...)
	s.edges[e.ID] = &cp
	s.incidence.add(e.ID, e.Source, e.Target)
	return nil
}

// endpointExists reports whether id names a node or container — the two
// entity kinds legal as edge/hyper-edge endpoints.
func (s *State) endpointExists(id string) bool {
	if _, ok := s.nodes[id]; ok {
		return true
	}
	if _, ok := s.containers[id]; ok {
		return true
	}
	return false
}

// GetEdge returns the regular edge with id, or nil, false if absent.
func (s *State) GetEdge(id string) (*Edge, bool) {
	e, ok := s.edges[id]
	return e, ok
}

// EdgePatch is a partial update for UpdateEdge: nil fields are left
// unchanged. Attrs is merged key-wise into the existing map rather than
// replacing it wholesale — set a key to nil to remove it. Source/Target/ID
// are not patchable; retire and re-upsert the edge to re-point it.
type EdgePatch struct {
	Style  *Style
	Hidden *bool
	Attrs  Attributes
	Bends  *[]BendPoint
}

// UpdateEdge applies patch to the existing edge in place, unlike UpsertEdge
// which replaces the entire entity (spec.md §4.1's update_edge(id, patch)).
func (s *State) UpdateEdge(id string, patch EdgePatch) error {
	e, ok := s.edges[id]
	if !ok {
		return flowerrors.New(flowerrors.InvalidInput, "edge %q does not exist", id)
	}
	if patch.Style != nil {
		if err := ValidateStyle(*patch.Style); err != nil {
			return err
		}
	}
	if patch.Style != nil {
		e.Style = *patch.Style
	}
	if patch.Hidden != nil {
		e.Hidden = *patch.Hidden
	}
	if patch.Bends != nil {
		e.Bends = append([]BendPoint(nil), (*patch.Bends)...)
	}
	if patch.Attrs != nil {
		if e.Attrs == nil {
			e.Attrs = make(Attributes, len(patch.Attrs))
		}
		for k, v := range patch.Attrs {
			if v == nil {
				delete(e.Attrs, k)
				continue
			}
			e.Attrs[k] = v
		}
	}
	return nil
}

// RemoveEdge deletes a regular edge and drops it from the incidence index.
func (s *State) RemoveEdge(id string) {
	e, ok := s.edges[id]
	if !ok {
		return
	}
	s.incidence.remove(id, e.Source, e.Target)
	delete(s.edges, id)
}
