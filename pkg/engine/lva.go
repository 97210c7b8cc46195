package engine

import "github.com/hydro-project/flowviz/pkg/model"

// lowestVisibleAncestor returns id itself if it is currently visible,
// otherwise the nearest ancestor container that is visible. It is
// recomputed fresh on every call — never cached across engine steps —
// because a sibling container's state may have changed since the last
// time it was needed (spec.md §4.5.1, §4.5.3: "the remote side's current
// LVA is recomputed now").
func lowestVisibleAncestor(s *model.State, id string) (string, bool) {
	if s.IsVisible(id) {
		return id, true
	}
	for _, anc := range s.AncestorsOf(id) {
		if s.IsVisible(anc) {
			return anc, true
		}
	}
	return "", false
}
