package engine

import (
	"github.com/hydro-project/flowviz/pkg/flowerrors"
	"github.com/hydro-project/flowviz/pkg/model"
)

// Collapse hides the descendants of container id and replaces every edge
// crossing its boundary with an aggregated hyper-edge per external lowest
// visible ancestor (LVA), one per direction actually present. Expanded
// container-children are collapsed first, bottom-up (spec.md §4.5.2).
//
// Collapse is atomic: the entire state is snapshotted before the step
// begins and restored verbatim if an invariant check fails at the end.
func Collapse(s *model.State, id string) error {
	c, ok := s.GetContainer(id)
	if !ok || c.Hidden || c.Collapsed {
		return flowerrors.New(flowerrors.InvalidState, "collapse: container %q is unknown, hidden, or already collapsed", id)
	}

	snap := s.Snapshot()
	collapseRecursive(s, id)
	if err := s.CheckInvariants(); err != nil {
		s.Restore(snap)
		return err
	}
	return nil
}

// collapseRecursive collapses every expanded container-child of id first,
// then id itself. Unlike Collapse it performs no precondition check or
// snapshot of its own — those belong to the single outer call that owns
// atomicity for the whole step.
func collapseRecursive(s *model.State, id string) {
	for _, childID := range s.ChildrenOf(id) {
		if child, ok := s.GetContainer(childID); ok && !child.Hidden && !child.Collapsed {
			collapseRecursive(s, childID)
		}
	}
	collapseOne(s, id)
}

// collapseOne performs steps 2-6 of spec.md §4.5.2 for a single container,
// assuming all of its container-children are already collapsed.
func collapseOne(s *model.State, id string) {
	desc := make(map[string]bool)
	for _, d := range s.DescendantsOf(id) {
		desc[d] = true
	}

	buckets := make(map[bucketKey]map[string]model.AggregatedEdge)
	var toDestroy []string
	processed := make(map[string]bool)

	for entityID := range desc {
		for _, eid := range s.IncidentEdges(entityID) {
			if processed[eid] {
				continue
			}
			processed[eid] = true

			if e, ok := s.GetEdge(eid); ok {
				collapseRegularEdge(s, id, desc, e, buckets)
				continue
			}
			if h, ok := s.GetHyperEdge(eid); ok {
				collapseHyperEdge(s, id, desc, h, buckets, &toDestroy)
			}
		}
	}

	for _, hid := range toDestroy {
		s.RemoveHyperEdge(hid)
	}
	applyBuckets(s, id, buckets)

	for _, childID := range s.ChildrenOf(id) {
		if n, ok := s.GetNode(childID); ok {
			n.Hidden = true
			n.Layout = model.Position{}
		}
		if c, ok := s.GetContainer(childID); ok {
			c.Hidden = true
			c.Layout = model.Position{}
		}
	}

	c, _ := s.GetContainer(id)
	c.Collapsed = true

	s.RebuildIncidence()
}

// collapseRegularEdge classifies one regular edge incident to desc(id) and
// either leaves it untouched (purely internal), buckets it by external LVA
// and direction, or marks it hidden-but-unaggregated when its external
// endpoint's LVA is id itself (B3: a self-loop would otherwise form).
func collapseRegularEdge(s *model.State, id string, desc map[string]bool, e *model.Edge, buckets map[bucketKey]map[string]model.AggregatedEdge) {
	srcIn, dstIn := desc[e.Source], desc[e.Target]
	if srcIn == dstIn {
		return // both or neither inside desc(id): not a crossing edge
	}

	var external string
	var dir direction
	if srcIn {
		external, dir = e.Target, dirOutgoing
	} else {
		external, dir = e.Source, dirIncoming
	}

	e.Hidden = true
	lva, _ := lowestVisibleAncestor(s, external)
	if lva == id {
		return // B3: self-loop, leave hidden, not aggregated
	}

	key := bucketKey{lva: lva, dir: dir}
	if buckets[key] == nil {
		buckets[key] = make(map[string]model.AggregatedEdge)
	}
	addContribution(buckets[key], e.ID, model.AggregatedEdge{Source: e.Source, Target: e.Target, Style: e.Style})
}

// collapseHyperEdge classifies one hyper-edge incident to desc(id). If both
// endpoints now lie inside desc(id) it has been fully swallowed by the new
// collapse: it is left exactly as it is (its endpoints' own Hidden cascade
// already removes it from every visible view through I4's visibility
// precondition; it stays in the incidence index under its own
// endpoints), rather than destroyed, so that a later
// expand(id) can still recover its aggregated contents and re-derive the
// hyper-edge it represents. Otherwise — exactly one endpoint now external —
// its aggregated contents are flattened and re-bucketed like a regular
// crossing edge, and the superseded hyper-edge is queued for destruction
// (it cannot survive the step unchanged, by I4).
func collapseHyperEdge(s *model.State, id string, desc map[string]bool, h *model.HyperEdge, buckets map[bucketKey]map[string]model.AggregatedEdge, toDestroy *[]string) {
	srcIn, dstIn := desc[h.Source], desc[h.Target]
	if srcIn && dstIn {
		return // fully swallowed, left dormant for a future expand to find
	}
	*toDestroy = append(*toDestroy, h.ID)

	var external string
	var dir direction
	if srcIn {
		external, dir = h.Target, dirOutgoing
	} else {
		external, dir = h.Source, dirIncoming
	}

	lva, _ := lowestVisibleAncestor(s, external)
	if lva == id {
		return
	}

	key := bucketKey{lva: lva, dir: dir}
	if buckets[key] == nil {
		buckets[key] = make(map[string]model.AggregatedEdge)
	}
	for origID, v := range h.Aggregated {
		addContribution(buckets[key], origID, v)
	}
}

// applyBuckets creates or merges one hyper-edge per bucket.
func applyBuckets(s *model.State, id string, buckets map[bucketKey]map[string]model.AggregatedEdge) {
	for key, agg := range buckets {
		var src, dst string
		if key.dir == dirOutgoing {
			src, dst = id, key.lva
		} else {
			src, dst = key.lva, id
		}
		hid := model.HyperEdgeID(src, dst)

		merged := agg
		if existing, ok := s.GetHyperEdge(hid); ok {
			merged = mergeAggregated(existing.Aggregated, agg)
		}

		s.UpsertHyperEdge(model.HyperEdge{
			ID:         hid,
			Source:     src,
			Target:     dst,
			Style:      dominantStyle(merged),
			Aggregated: merged,
		})
	}
}
