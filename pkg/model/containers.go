package model

import (
	"strings"

	"github.com/hydro-project/flowviz/pkg/flowerrors"
)

// UpsertContainer inserts a new container or updates an existing one's
// metadata (Label, Collapsed, Hidden, Attrs, ExpandedDimensions). Membership
// (Children) is managed separately through AddChildToContainer and
// RemoveChildFromContainer so that the hierarchy index and the container's
// own Children set can never drift apart.
func (s *State) UpsertContainer(c Container) error {
	if c.ID == "" {
		return flowerrors.New(flowerrors.InvalidInput, "container id must not be empty")
	}
	if strings.HasPrefix(c.ID, hyperEdgeIDPrefix) {
		return flowerrors.New(flowerrors.InvalidInput, "container id %q uses the reserved hyper-edge prefix %q", c.ID, hyperEdgeIDPrefix)
	}
	existing, already := s.containers[c.ID]
	if !already && s.exists(c.ID) {
		return flowerrors.New(flowerrors.InvalidInput, "id %q already in use by a non-container entity", c.ID)
	}

	cp := c
	cp.Attrs = c.Attrs.Clone()
	if already {
		cp.Children = existing.Children
	} else {
		cp.Children = make(map[string]struct{})
	}
	s.containers[c.ID] = &cp
	return nil
}

// GetContainer returns the container with id, or nil, false if absent.
func (s *State) GetContainer(id string) (*Container, bool) {
	c, ok := s.containers[id]
	return c, ok
}

// ContainerPatch is a partial update for UpdateContainer: nil fields are
// left unchanged. Attrs is merged key-wise into the existing map rather
// than replacing it wholesale. Children is not patchable here; use
// AddChildToContainer/RemoveChildFromContainer so the hierarchy index and
// the container's own Children set can never drift apart.
type ContainerPatch struct {
	Label              *string
	Collapsed          *bool
	Hidden             *bool
	Attrs              Attributes
	ExpandedDimensions *Dimensions
}

// UpdateContainer applies patch to the existing container in place, unlike
// UpsertContainer which replaces the entity's metadata wholesale (spec.md
// §4.1's update_container(id, patch)).
func (s *State) UpdateContainer(id string, patch ContainerPatch) error {
	c, ok := s.containers[id]
	if !ok {
		return flowerrors.New(flowerrors.InvalidInput, "container %q does not exist", id)
	}
	if patch.Label != nil {
		c.Label = *patch.Label
	}
	if patch.Collapsed != nil {
		c.Collapsed = *patch.Collapsed
	}
	if patch.Hidden != nil {
		c.Hidden = *patch.Hidden
	}
	if patch.ExpandedDimensions != nil {
		c.ExpandedDimensions = *patch.ExpandedDimensions
	}
	if patch.Attrs != nil {
		if c.Attrs == nil {
			c.Attrs = make(Attributes, len(patch.Attrs))
		}
		for k, v := range patch.Attrs {
			c.Attrs[k] = v
		}
	}
	return nil
}

// AddChildToContainer links child under parent in both the hierarchy index
// and the container's own Children set, enforcing I1 (forest shape).
func (s *State) AddChildToContainer(parent, child string) error {
	c, ok := s.containers[parent]
	if !ok {
		return flowerrors.New(flowerrors.InvalidInput, "container %q does not exist", parent)
	}
	if err := s.hierarchy.addChild(parent, child); err != nil {
		return err
	}
	c.Children[child] = struct{}{}
	return nil
}

// RemoveChildFromContainer unlinks child from parent in both the hierarchy
// index and the container's Children set. No-op if not linked.
func (s *State) RemoveChildFromContainer(parent, child string) {
	s.hierarchy.removeChild(parent, child)
	if c, ok := s.containers[parent]; ok {
		delete(c.Children, child)
	}
}

// RemoveContainer deletes a container. Its direct children become
// parentless (they are not recursively removed — spec.md §4.1 leaves
// cascading removal to the caller) and the container is unlinked from its
// own parent, if any.
func (s *State) RemoveContainer(id string) {
	if _, ok := s.containers[id]; !ok {
		return
	}
	if p, ok := s.hierarchy.parent(id); ok {
		s.RemoveChildFromContainer(p, id)
	}
	s.hierarchy.removeEntity(id)
	delete(s.containers, id)
	s.rebuildIncidence()
}
