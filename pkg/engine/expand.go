package engine

import (
	"github.com/hydro-project/flowviz/pkg/flowerrors"
	"github.com/hydro-project/flowviz/pkg/model"
)

// hyperContrib is one aggregated-edge entry read off a hyper-edge incident
// to the container being expanded, carrying the original edge's real
// endpoints (not the hyper-edge's own endpoints) forward into step 3.
type hyperContrib struct {
	origID     string
	origSource string
	origTarget string
	style      model.Style
}

// Expand reverses one collapse step on container id: it destroys the
// hyper-edges incident to id, unhides id's direct children (without
// recursing into any of them that are themselves still collapsed), and
// for each original aggregated edge either restores it directly (if both
// its endpoints are individually visible again) or re-forms a smaller
// hyper-edge between the relevant child and the external side's
// now-current lowest visible ancestor (spec.md §4.5.3).
//
// Expand is atomic like Collapse: a snapshot is taken up front and
// restored verbatim on an invariant violation.
func Expand(s *model.State, id string) error {
	c, ok := s.GetContainer(id)
	if !ok || c.Hidden || !c.Collapsed {
		return flowerrors.New(flowerrors.InvalidState, "expand: container %q is unknown, hidden, or not collapsed", id)
	}

	snap := s.Snapshot()
	expandOne(s, id)
	if err := s.CheckInvariants(); err != nil {
		s.Restore(snap)
		return err
	}
	return nil
}

// ExpandRecursive expands id, then recursively expands whichever of its
// direct container-children remained collapsed, top-down. It is defined as
// the sequential composition of atomic Expand steps, not as one larger
// transaction: each step commits independently.
func ExpandRecursive(s *model.State, id string) error {
	if err := Expand(s, id); err != nil {
		return err
	}
	for _, childID := range s.ChildrenOf(id) {
		if child, ok := s.GetContainer(childID); ok && !child.Hidden && child.Collapsed {
			if err := ExpandRecursive(s, childID); err != nil {
				return err
			}
		}
	}
	return nil
}

func expandOne(s *model.State, id string) {
	desc := make(map[string]bool)
	for _, d := range s.DescendantsOf(id) {
		desc[d] = true
	}

	// Hyper-edges relevant to this step are those literally incident to id
	// (created by id's own most recent collapse) and any left dormant
	// entirely inside desc(id) — fully swallowed by a later ancestor
	// collapse of id itself (see collapseHyperEdge) and never since
	// revisited. Both kinds are consumed here and their original
	// contributions re-bucketed below.
	var contribs []hyperContrib
	var consumed []string
	for _, hid := range s.HyperEdgeIDs() {
		h, ok := s.GetHyperEdge(hid)
		if !ok {
			continue
		}
		relevant := h.Source == id || h.Target == id || (desc[h.Source] && desc[h.Target])
		if !relevant {
			continue
		}
		consumed = append(consumed, h.ID)
		for origID, v := range h.Aggregated {
			contribs = append(contribs, hyperContrib{origID: origID, origSource: v.Source, origTarget: v.Target, style: v.Style})
		}
	}
	for _, hid := range consumed {
		s.RemoveHyperEdge(hid)
	}

	for _, childID := range s.ChildrenOf(id) {
		if n, ok := s.GetNode(childID); ok {
			n.Hidden = false
		}
		if c, ok := s.GetContainer(childID); ok {
			c.Hidden = false
		}
	}
	c, _ := s.GetContainer(id)
	c.Collapsed = false

	// B3's counterpart: edges directly referencing id that were hidden
	// because their other endpoint's LVA resolved to id itself (a would-be
	// self-loop, never aggregated) become restorable the moment that other
	// endpoint is individually visible again.
	for _, eid := range s.IncidentEdges(id) {
		e, ok := s.GetEdge(eid)
		if !ok || !e.Hidden {
			continue
		}
		other := e.Source
		if other == id {
			other = e.Target
		}
		if s.IsVisible(other) {
			e.Hidden = false
		}
	}

	type endpoints struct{ src, dst string }
	buckets := make(map[endpoints]map[string]model.AggregatedEdge)

	for _, ct := range contribs {
		if s.IsVisible(ct.origSource) && s.IsVisible(ct.origTarget) {
			if e, ok := s.GetEdge(ct.origID); ok {
				e.Hidden = false
			}
			continue
		}

		var internal, external string
		var internalIsSource bool
		if desc[ct.origSource] {
			internal, external, internalIsSource = ct.origSource, ct.origTarget, true
		} else {
			internal, external, internalIsSource = ct.origTarget, ct.origSource, false
		}

		child := directChildOf(s, id, internal)
		remoteLVA, _ := lowestVisibleAncestor(s, external)

		var key endpoints
		if internalIsSource {
			key = endpoints{src: child, dst: remoteLVA}
		} else {
			key = endpoints{src: remoteLVA, dst: child}
		}
		if buckets[key] == nil {
			buckets[key] = make(map[string]model.AggregatedEdge)
		}
		addContribution(buckets[key], ct.origID, model.AggregatedEdge{Source: ct.origSource, Target: ct.origTarget, Style: ct.style})
	}

	for key, agg := range buckets {
		hid := model.HyperEdgeID(key.src, key.dst)
		merged := agg
		if existing, ok := s.GetHyperEdge(hid); ok {
			merged = mergeAggregated(existing.Aggregated, agg)
		}
		s.UpsertHyperEdge(model.HyperEdge{
			ID:         hid,
			Source:     key.src,
			Target:     key.dst,
			Style:      dominantStyle(merged),
			Aggregated: merged,
		})
	}

	s.RebuildIncidence()
}

// directChildOf walks up descendant's ancestor chain and returns the
// direct child of id lying on that path. descendant must genuinely be
// inside id's subtree.
func directChildOf(s *model.State, id, descendant string) string {
	cur := descendant
	for {
		p, ok := s.ParentOf(cur)
		if !ok || p == id {
			return cur
		}
		cur = p
	}
}
