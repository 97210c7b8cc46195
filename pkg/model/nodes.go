package model

import (
	"strings"

	"github.com/hydro-project/flowviz/pkg/flowerrors"
)

// UpsertNode inserts or replaces a node. ID and Style are validated (an
// empty Style is stored as StyleDefault); ID must
// not collide with an entity of a different kind, and must not use the
// hyper-edge id prefix. Upsert is idempotent: calling it again with the same
// fields is a no-op from the caller's perspective.
func (s *State) UpsertNode(n Node) error {
	if n.ID == "" {
		return flowerrors.New(flowerrors.InvalidInput, "node id must not be empty")
	}
	if strings.HasPrefix(n.ID, hyperEdgeIDPrefix) {
		return flowerrors.New(flowerrors.InvalidInput, "node id %q uses the reserved hyper-edge prefix %q", n.ID, hyperEdgeIDPrefix)
	}
	if n.Style == "" {
		n.Style = StyleDefault
	}
	if err := ValidateStyle(n.Style); err != nil {
		return err
	}
	if _, isNode := s.nodes[n.ID]; !isNode && s.exists(n.ID) {
		return flowerrors.New(flowerrors.InvalidInput, "id %q already in use by a non-node entity", n.ID)
	}

	cp := n
	cp.Attrs = n.Attrs.Clone()
	s.nodes[n.ID] = &cp
	return nil
}

// GetNode returns the node with id, or nil, false if absent.
func (s *State) GetNode(id string) (*Node, bool) {
	n, ok := s.nodes[id]
	return n, ok
}

// NodePatch is a partial update for UpdateNode: nil fields are left
// unchanged. Attrs is merged key-wise into the existing map rather than
// replacing it wholesale — set a key to nil to remove it.
type NodePatch struct {
	Label  *string
	Style  *Style
	Hidden *bool
	Attrs  Attributes
}

// UpdateNode applies patch to the existing node in place, unlike UpsertNode
// which replaces the entire entity (spec.md §4.1's update_node(id, patch)).
// Layout and any field not named in patch survive untouched.
func (s *State) UpdateNode(id string, patch NodePatch) error {
	n, ok := s.nodes[id]
	if !ok {
		return flowerrors.New(flowerrors.InvalidInput, "node %q does not exist", id)
	}
	if patch.Style != nil {
		if err := ValidateStyle(*patch.Style); err != nil {
			return err
		}
	}
	if patch.Label != nil {
		n.Label = *patch.Label
	}
	if patch.Style != nil {
		n.Style = *patch.Style
	}
	if patch.Hidden != nil {
		n.Hidden = *patch.Hidden
	}
	if patch.Attrs != nil {
		if n.Attrs == nil {
			n.Attrs = make(Attributes, len(patch.Attrs))
		}
		for k, v := range patch.Attrs {
			if v == nil {
				delete(n.Attrs, k)
				continue
			}
			n.Attrs[k] = v
		}
	}
	return nil
}

// RemoveNode deletes a node, unlinking it from its parent container (if any),
// and rebuilds the incidence index. It does not cascade-delete incident
// edges, so any remaining edge that names id still indexes it as an
// endpoint; callers that want that must remove them explicitly
// (spec.md §4.1 leaves edge cleanup to the caller to avoid surprising data
// loss from a single node removal).
func (s *State) RemoveNode(id string) {
	if _, ok := s.nodes[id]; !ok {
		return
	}
	if p, ok := s.hierarchy.parent(id); ok {
		s.RemoveChildFromContainer(p, id)
	}
	s.hierarchy.removeEntity(id)
	delete(s.nodes, id)
	s.rebuildIncidence()
}
