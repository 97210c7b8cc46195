package engine

import "github.com/hydro-project/flowviz/pkg/model"

// direction distinguishes the two hyper-edges a single collapse step may
// produce per external LVA: one for traffic leaving the collapsed
// container, one for traffic entering it.
type direction int

const (
	dirOutgoing direction = iota // X -> external
	dirIncoming                  // external -> X
)

// bucketKey groups crossing contributions by external LVA and direction;
// each distinct key becomes at most one hyper-edge (spec.md §4.5.2 step 4).
type bucketKey struct {
	lva string
	dir direction
}

// addContribution inserts or merges one original-edge contribution into an
// aggregation bucket. On key collision the style follows the
// higher-priority rule (spec.md §4.5.4: "on conflict, the newer
// contributor's style follows the style-priority rule").
func addContribution(bucket map[string]model.AggregatedEdge, edgeID string, contrib model.AggregatedEdge) {
	if existing, ok := bucket[edgeID]; ok {
		contrib.Style = model.HigherPriorityStyle(existing.Style, contrib.Style)
	}
	bucket[edgeID] = contrib
}

// mergeAggregated folds additions into a copy of base, honoring the same
// style-priority conflict rule. Used when a hyper-edge id already exists
// (a prior, unrelated collapse produced the same canonical endpoints) and
// merging must be associative and commutative on equal inputs.
func mergeAggregated(base, additions map[string]model.AggregatedEdge) map[string]model.AggregatedEdge {
	out := make(map[string]model.AggregatedEdge, len(base)+len(additions))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range additions {
		addContribution(out, k, v)
	}
	return out
}

// dominantStyle folds HigherPriorityStyle over every contributor in an
// aggregation mapping, used as the hyper-edge's own style (spec.md §4.5.2
// step 4).
func dominantStyle(agg map[string]model.AggregatedEdge) model.Style {
	style := model.StyleDefault
	first := true
	for _, v := range agg {
		if first {
			style = v.Style
			first = false
			continue
		}
		style = model.HigherPriorityStyle(style, v.Style)
	}
	return style
}
