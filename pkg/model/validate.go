package model

import "github.com/hydro-project/flowviz/pkg/flowerrors"

// CheckInvariants re-verifies the invariants that a collapse/expand engine
// step must preserve (I4, I6) and returns InvariantViolation on the first
// violation found. It is meant to run once at the end of an engine step;
// correct implementations never trigger it, a failure indicates a bug in
// the engine, not a user error (spec.md §4.5.5, §7).
func (s *State) CheckInvariants() error {
	for id, h := range s.hyperEdges {
		if len(h.Aggregated) == 0 {
			return flowerrors.New(flowerrors.InvariantViolation, "hyper-edge %q has an empty aggregation mapping", id)
		}
		for edgeID := range h.Aggregated {
			if _, ok := s.edges[edgeID]; !ok {
				return flowerrors.New(flowerrors.InvariantViolation, "hyper-edge %q aggregates non-existent edge %q", id, edgeID)
			}
		}

		// A hyper-edge left dormant inside a collapsed ancestor's subtree
		// (both endpoints swallowed, see the engine's collapse step) is not
		// currently "live": I4 only binds hyper-edges actually observable
		// through the unified edge view.
		if h.Hidden || !s.IsVisible(h.Source) || !s.IsVisible(h.Target) {
			continue
		}
		if h.Source == h.Target {
			return flowerrors.New(flowerrors.InvariantViolation, "hyper-edge %q is a self-loop", id)
		}
		srcCollapsed := s.containers[h.Source] != nil && s.containers[h.Source].Collapsed
		dstCollapsed := s.containers[h.Target] != nil && s.containers[h.Target].Collapsed
		if !srcCollapsed && !dstCollapsed {
			return flowerrors.New(flowerrors.InvariantViolation, "hyper-edge %q has neither endpoint currently collapsed", id)
		}
	}
	return nil
}
