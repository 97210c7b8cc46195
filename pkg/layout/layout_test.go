package layout

import (
	"sort"
	"testing"

	"github.com/hydro-project/flowviz/pkg/model"
)

func mustUpsertNode(t *testing.T, s *model.State, id string) {
	t.Helper()
	if err := s.UpsertNode(model.Node{ID: id, Style: model.StyleDefault}); err != nil {
		t.Fatalf("UpsertNode(%s): %v", id, err)
	}
}

func mustUpsertContainer(t *testing.T, s *model.State, id string, collapsed bool, children ...string) {
	t.Helper()
	if err := s.UpsertContainer(model.Container{ID: id, Collapsed: collapsed}); err != nil {
		t.Fatalf("UpsertContainer(%s): %v", id, err)
	}
	for _, c := range children {
		if err := s.AddChildToContainer(id, c); err != nil {
			t.Fatalf("AddChildToContainer(%s, %s): %v", id, c, err)
		}
	}
}

func mustUpsertEdge(t *testing.T, s *model.State, id, from, to string) {
	t.Helper()
	if err := s.UpsertEdge(model.Edge{ID: id, Source: from, Target: to, Style: model.StyleDefault}); err != nil {
		t.Fatalf("UpsertEdge(%s): %v", id, err)
	}
}

func TestOptionsValidate(t *testing.T) {
	cases := []struct {
		name string
		opts Options
		ok   bool
	}{
		{"default", DefaultOptions(), true},
		{"bad direction", Options{Direction: "SIDEWAYS", Algorithm: AlgorithmLayered, EdgeRouting: RoutingPolyline}, false},
		{"bad algorithm", Options{Direction: Down, Algorithm: "magic", EdgeRouting: RoutingPolyline}, false},
		{"bad routing", Options{Direction: Down, Algorithm: AlgorithmLayered, EdgeRouting: "curvy"}, false},
		{"negative spacing", Options{Direction: Down, Algorithm: AlgorithmLayered, EdgeRouting: RoutingPolyline, NodeSpacing: -1}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := c.opts.Validate()
			if (err == nil) != c.ok {
				t.Errorf("Validate() = %v, want ok=%v", err, c.ok)
			}
		})
	}
}

func TestBuildInput_FlatGraph(t *testing.T) {
	s := model.New()
	mustUpsertNode(t, s, "n1")
	mustUpsertNode(t, s, "n2")
	mustUpsertEdge(t, s, "e1", "n1", "n2")

	in := BuildInput(s, DefaultOptions())
	if len(in.Roots) != 2 {
		t.Fatalf("Roots = %v, want 2 leaves", in.Roots)
	}
	if len(in.Edges) != 1 || in.Edges[0].Source != "n1" || in.Edges[0].Target != "n2" {
		t.Errorf("Edges = %+v, want one n1->n2", in.Edges)
	}
}

func TestBuildInput_ExpandedContainerBecomesRegion(t *testing.T) {
	s := model.New()
	mustUpsertNode(t, s, "n1")
	mustUpsertNode(t, s, "n2")
	mustUpsertContainer(t, s, "c1", false, "n1", "n2")

	in := BuildInput(s, DefaultOptions())
	if len(in.Roots) != 0 {
		t.Fatalf("Roots = %v, want none (c1 owns both nodes)", in.Roots)
	}
	if len(in.Regions) != 1 || in.Regions[0].ID != "c1" {
		t.Fatalf("Regions = %+v, want one region c1", in.Regions)
	}
	if len(in.Regions[0].Leaves) != 2 {
		t.Errorf("Regions[0].Leaves = %v, want 2", in.Regions[0].Leaves)
	}
}

func TestBuildInput_CollapsedContainerBecomesLeaf(t *testing.T) {
	s := model.New()
	mustUpsertNode(t, s, "n1")
	mustUpsertContainer(t, s, "c1", true, "n1")

	in := BuildInput(s, DefaultOptions())
	if len(in.Regions) != 0 {
		t.Fatalf("Regions = %v, want none", in.Regions)
	}
	if len(in.Roots) != 1 || in.Roots[0].ID != "c1" {
		t.Fatalf("Roots = %+v, want one leaf c1", in.Roots)
	}
}

func TestBuildInput_IncludesHyperEdges(t *testing.T) {
	s := model.New()
	mustUpsertNode(t, s, "n1")
	mustUpsertNode(t, s, "n2")
	mustUpsertNode(t, s, "n3")
	mustUpsertEdge(t, s, "e12", "n1", "n2")
	mustUpsertContainer(t, s, "c1", true, "n1")

	if err := s.UpsertEdge(model.Edge{ID: "e13", Source: "n1", Target: "n3", Style: model.StyleDefault}); err != nil {
		t.Fatalf("UpsertEdge: %v", err)
	}
	// n1 sits inside collapsed c1, so e13 is represented by the hyper-edge
	// c1 -> n3 that aggregates it.
	if err := s.UpsertHyperEdge(model.HyperEdge{
		ID: model.HyperEdgeID("c1", "n3"), Source: "c1", Target: "n3", Style: model.StyleDefault,
		Aggregated: map[string]model.AggregatedEdge{"e13": {Source: "n1", Target: "n3", Style: model.StyleDefault}},
	}); err != nil {
		t.Fatalf("UpsertHyperEdge: %v", err)
	}

	in := BuildInput(s, DefaultOptions())
	var edgeIDs []string
	for _, e := range in.Edges {
		edgeIDs = append(edgeIDs, e.ID)
	}
	sort.Strings(edgeIDs)
	if len(edgeIDs) == 0 {
		t.Fatalf("Edges empty, want the unified edge view represented")
	}
}

func TestApplyOutput_WritesPositionsAndSizes(t *testing.T) {
	s := model.New()
	mustUpsertNode(t, s, "n1")
	mustUpsertContainer(t, s, "c1", false, "n1")

	in := BuildInput(s, DefaultOptions())
	out := Output{
		Positions:  map[string]Position{"n1": {X: 1, Y: 2}, "c1": {X: 0, Y: 0}},
		Dimensions: map[string]Dimensions{"c1": {W: 50, H: 50}},
		Bends:      map[string][]model.BendPoint{},
	}
	if err := ApplyOutput(s, in, out); err != nil {
		t.Fatalf("ApplyOutput: %v", err)
	}

	n, _ := s.GetNode("n1")
	if !n.Layout.Set || n.Layout.X != 1 || n.Layout.Y != 2 {
		t.Errorf("n1.Layout = %+v, want {1 2 true}", n.Layout)
	}
	c, _ := s.GetContainer("c1")
	if !c.LayoutSize.Set || c.LayoutSize.W != 50 {
		t.Errorf("c1.LayoutSize = %+v, want W=50", c.LayoutSize)
	}
}

func TestApplyOutput_RejectsMissingPosition(t *testing.T) {
	s := model.New()
	mustUpsertNode(t, s, "n1")
	in := BuildInput(s, DefaultOptions())

	err := ApplyOutput(s, in, Output{Positions: map[string]Position{}, Dimensions: map[string]Dimensions{}})
	if err == nil {
		t.Fatal("ApplyOutput: want error for missing position, got nil")
	}
	if n, _ := s.GetNode("n1"); n.Layout.Set {
		t.Error("ApplyOutput left a partial write on failure")
	}
}

func TestApplyOutput_PinnedPositionIsNotOverwritten(t *testing.T) {
	s := model.New()
	mustUpsertNode(t, s, "n1")
	if err := s.UpsertNode(model.Node{ID: "n1", Style: model.StyleDefault, Layout: model.Position{X: 5, Y: 5, Set: true}}); err != nil {
		t.Fatalf("UpsertNode: %v", err)
	}

	in := BuildInput(s, DefaultOptions())
	Pin(&in, "n1")

	out := Output{Positions: map[string]Position{"n1": {X: 999, Y: 999}}, Dimensions: map[string]Dimensions{}}
	if err := ApplyOutput(s, in, out); err != nil {
		t.Fatalf("ApplyOutput: %v", err)
	}
	n, _ := s.GetNode("n1")
	if n.Layout.X != 5 || n.Layout.Y != 5 {
		t.Errorf("pinned n1.Layout = %+v, want unchanged (5,5)", n.Layout)
	}

	Unpin(&in, "n1")
	if in.Pinned["n1"] {
		t.Error("Unpin did not clear the pin")
	}
}

func TestApplyOutput_RejectsNaN(t *testing.T) {
	s := model.New()
	mustUpsertNode(t, s, "n1")
	in := BuildInput(s, DefaultOptions())

	nan := 0.0
	nan = nan / nan
	err := ApplyOutput(s, in, Output{
		Positions:  map[string]Position{"n1": {X: nan, Y: 0}},
		Dimensions: map[string]Dimensions{},
	})
	if err == nil {
		t.Fatal("ApplyOutput: want error for non-finite position, got nil")
	}
}
