package model

import "github.com/hydro-project/flowviz/pkg/flowerrors"

// hierarchyIndex maintains the two derived maps of the Hierarchy Index
// (C2): childrenOf(container) and parentOf(child). It enforces the
// tree-shape rule of I1: each non-root entity has at most one parent, and
// adding a child that would introduce a cycle is rejected.
type hierarchyIndex struct {
	childrenOf map[string]map[string]struct{} // container id -> child ids
	parentOf   map[string]string              // child id -> parent container id
}

func newHierarchyIndex() *hierarchyIndex {
	return &hierarchyIndex{
		childrenOf: make(map[string]map[string]struct{}),
		parentOf:   make(map[string]string),
	}
}

// addChild links child under parent. Fails with HierarchyCycle if
// parent == child or parent is already a transitive descendant of child;
// fails with AlreadyParented if child already has a different parent.
func (h *hierarchyIndex) addChild(parent, child string) error {
	if parent == child {
		return flowerrors.New(flowerrors.HierarchyCycle, "container %q cannot be its own child", parent)
	}
	if existing, ok := h.parentOf[child]; ok && existing != parent {
		return flowerrors.New(flowerrors.AlreadyParented, "child %q already has parent %q", child, existing)
	}
	if h.isDescendant(parent, child) {
		return flowerrors.New(flowerrors.HierarchyCycle, "adding %q under %q would create a cycle", child, parent)
	}

	if h.childrenOf[parent] == nil {
		h.childrenOf[parent] = make(map[string]struct{})
	}
	h.childrenOf[parent][child] = struct{}{}
	h.parentOf[child] = parent
	return nil
}

// isDescendant reports whether parent is child itself or already lies in
// the subtree rooted at child — that is, whether making child a
// descendant of parent would create a cycle.
func (h *hierarchyIndex) isDescendant(parent, child string) bool {
	// parent becomes an ancestor of child; a cycle forms iff parent is
	// already reachable by walking down from child.
	seen := make(map[string]struct{})
	var walk func(id string) bool
	walk = func(id string) bool {
		if id == parent {
			return true
		}
		if _, ok := seen[id]; ok {
			return false
		}
		seen[id] = struct{}{}
		for c := range h.childrenOf[id] {
			if walk(c) {
				return true
			}
		}
		return false
	}
	return walk(child)
}

// removeChild unlinks child from its parent, if any. No-op if child has no
// parent or the link doesn't match parent.
func (h *hierarchyIndex) removeChild(parent, child string) {
	delete(h.childrenOf[parent], child)
	if len(h.childrenOf[parent]) == 0 {
		delete(h.childrenOf, parent)
	}
	if h.parentOf[child] == parent {
		delete(h.parentOf, child)
	}
}

// removeEntity removes id entirely from the hierarchy: it is unlinked from
// its parent (if any) and its own children set is dropped (the children
// become parentless, matching "removal also unlinks it from its parent
// container" in spec.md §4.1 — children are not recursively removed here,
// that's the caller's decision).
func (h *hierarchyIndex) removeEntity(id string) {
	if parent, ok := h.parentOf[id]; ok {
		h.removeChild(parent, id)
	}
	for child := range h.childrenOf[id] {
		delete(h.parentOf, child)
	}
	delete(h.childrenOf, id)
}

// parent returns the parent container id and true, or "", false if id
// has no parent.
func (h *hierarchyIndex) parent(id string) (string, bool) {
	p, ok := h.parentOf[id]
	return p, ok
}

// children returns the direct child ids of parent (order unspecified).
func (h *hierarchyIndex) children(parent string) []string {
	set := h.childrenOf[parent]
	out := make([]string, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	return out
}

// descendants returns all ids in the subtree rooted at id (collected
// eagerly into a slice), not including id itself.
func (h *hierarchyIndex) descendants(id string) []string {
	var out []string
	var walk func(string)
	walk = func(cur string) {
		for c := range h.childrenOf[cur] {
			out = append(out, c)
			walk(c)
		}
	}
	walk(id)
	return out
}

// ancestors returns the parent chain of id, nearest first, not including id
// itself.
func (h *hierarchyIndex) ancestors(id string) []string {
	var out []string
	cur := id
	for {
		p, ok := h.parentOf[cur]
		if !ok {
			break
		}
		out = append(out, p)
		cur = p
	}
	return out
}

// --- Public State accessors (C2 external surface) ---

// AddChild links child under the given container, enforcing I1 (forest
// shape). Returns HierarchyCycle or AlreadyParented on rejection, and
// InvalidInput if the container does not exist. It is
// AddChildToContainer, so the container's Children set is updated too.
func (s *State) AddChild(parent, child string) error {
	return s.AddChildToContainer(parent, child)
}

// RemoveChild unlinks child from parent, if linked, in both the hierarchy
// index and the container's Children set (see RemoveChildFromContainer).
func (s *State) RemoveChild(parent, child string) {
	s.RemoveChildFromContainer(parent, child)
}

// ParentOf returns the parent container id of id, or "", false if id has no
// parent (root-level entity).
func (s *State) ParentOf(id string) (string, bool) {
	return s.hierarchy.parent(id)
}

// ChildrenOf returns the direct child ids of a container.
func (s *State) ChildrenOf(id string) []string {
	return s.hierarchy.children(id)
}

// DescendantsOf returns all ids transitively contained in id's subtree.
func (s *State) DescendantsOf(id string) []string {
	return s.hierarchy.descendants(id)
}

// AncestorsOf returns id's parent chain, nearest first.
func (s *State) AncestorsOf(id string) []string {
	return s.hierarchy.ancestors(id)
}
