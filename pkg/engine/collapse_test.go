package engine

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

func mustUpsertContainer(t *testing.T, s *model.State, id string, children ...string) {
	t.Helper()
	if err := s.UpsertContainer(model.Container{ID: id}); err != nil {
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

func sorted(xs []string) []string {
	out := append([]string(nil), xs...)
	sort.Strings(out)
	return out
}

// Scenario 1 from spec.md §8: simple collapse-expand.
func TestCollapse_SimpleScenario(t *testing.T) {
	s := model.New()
	mustUpsertNode(t, s, "n1")
	mustUpsertNode(t, s, "n2")
	mustUpsertNode(t, s, "n3")
	mustUpsertEdge(t, s, "e12", "n1", "n2")
	mustUpsertEdge(t, s, "e13", "n1", "n3")
	mustUpsertContainer(t, s, "c1", "n1", "n2")

	if err := Collapse(s, "c1"); err != nil {
		t.Fatalf("Collapse(c1): %v", err)
	}

	if got := sorted(s.VisibleNodes()); len(got) != 1 || got[0] != "n3" {
		t.Errorf("VisibleNodes() = %v, want [n3]", got)
	}
	if got := s.VisibleEdges(); len(got) != 0 {
		t.Errorf("VisibleEdges() = %v, want empty", got)
	}
	hyper := s.VisibleHyperEdges()
	if len(hyper) != 1 || hyper[0] != model.HyperEdgeID("c1", "n3") {
		t.Fatalf("VisibleHyperEdges() = %v, want [%s]", hyper, model.HyperEdgeID("c1", "n3"))
	}
	h, _ := s.GetHyperEdge(hyper[0])
	if _, ok := h.Aggregated["e13"]; !ok || len(h.Aggregated) != 1 {
		t.Errorf("hyper-edge aggregated = %v, want exactly {e13}", h.Aggregated)
	}
	e12, _ := s.GetEdge("e12")
	if !e12.Hidden {
		t.Errorf("e12.Hidden = false, want true")
	}

	if err := Expand(s, "c1"); err != nil {
		t.Fatalf("Expand(c1): %v", err)
	}
	if got := sorted(s.VisibleNodes()); len(got) != 3 {
		t.Errorf("VisibleNodes() after expand = %v, want 3 entries", got)
	}
	if got := sorted(s.VisibleEdges()); len(got) != 2 || got[0] != "e12" || got[1] != "e13" {
		t.Errorf("VisibleEdges() after expand = %v, want [e12 e13]", got)
	}
	if s.HyperEdgeCount() != 0 {
		t.Errorf("HyperEdgeCount() after expand = %d, want 0", s.HyperEdgeCount())
	}
}

// Scenario 2: nested collapse.
func TestCollapse_NestedScenario(t *testing.T) {
	s := model.New()
	mustUpsertNode(t, s, "n_a")
	mustUpsertNode(t, s, "n_b")
	mustUpsertNode(t, s, "n_c")
	mustUpsertEdge(t, s, "e", "n_b", "n_a")
	mustUpsertContainer(t, s, "c_inner", "n_b", "n_c")
	mustUpsertContainer(t, s, "c_outer", "c_inner", "n_a")

	if err := Collapse(s, "c_outer"); err != nil {
		t.Fatalf("Collapse(c_outer): %v", err)
	}

	if got := s.VisibleNodes(); len(got) != 0 {
		t.Errorf("VisibleNodes() = %v, want empty", got)
	}
	if got := s.VisibleContainers(); len(got) != 1 || got[0] != "c_outer" {
		t.Errorf("VisibleContainers() = %v, want [c_outer]", got)
	}
	if got := s.VisibleEdges(); len(got) != 0 {
		t.Errorf("VisibleEdges() = %v, want empty", got)
	}
	if got := s.VisibleHyperEdges(); len(got) != 0 {
		t.Errorf("VisibleHyperEdges() = %v, want empty", got)
	}

	cInner, _ := s.GetContainer("c_inner")
	if !cInner.Collapsed {
		t.Errorf("c_inner.Collapsed = false, want true (bottom-up collapse)")
	}

	if err := Expand(s, "c_outer"); err != nil {
		t.Fatalf("Expand(c_outer): %v", err)
	}
	cInner, _ = s.GetContainer("c_inner")
	if !cInner.Collapsed {
		t.Errorf("c_inner.Collapsed = false after non-recursive expand, want true (still collapsed)")
	}
	hyper := s.VisibleHyperEdges()
	want := model.HyperEdgeID("c_inner", "n_a")
	if len(hyper) != 1 || hyper[0] != want {
		t.Fatalf("VisibleHyperEdges() = %v, want [%s]", hyper, want)
	}
}

// Scenario 3: cross-container edge.
func TestCollapse_CrossContainerScenario(t *testing.T) {
	s := model.New()
	mustUpsertNode(t, s, "n1")
	mustUpsertNode(t, s, "n2")
	mustUpsertNode(t, s, "n3")
	mustUpsertNode(t, s, "n4")
	mustUpsertEdge(t, s, "e14", "n1", "n4")
	mustUpsertContainer(t, s, "c_A", "n1", "n2")
	mustUpsertContainer(t, s, "c_B", "n3", "n4")

	if err := Collapse(s, "c_A"); err != nil {
		t.Fatalf("Collapse(c_A): %v", err)
	}
	if err := Collapse(s, "c_B"); err != nil {
		t.Fatalf("Collapse(c_B): %v", err)
	}

	want := model.HyperEdgeID("c_A", "c_B")
	hyper := s.VisibleHyperEdges()
	if len(hyper) != 1 || hyper[0] != want {
		t.Fatalf("VisibleHyperEdges() = %v, want [%s]", hyper, want)
	}
	h, _ := s.GetHyperEdge(want)
	if _, ok := h.Aggregated["e14"]; !ok {
		t.Errorf("aggregated = %v, want {e14}", h.Aggregated)
	}

	if err := Expand(s, "c_B"); err != nil {
		t.Fatalf("Expand(c_B): %v", err)
	}
	want2 := model.HyperEdgeID("c_A", "n4")
	hyper = s.VisibleHyperEdges()
	if len(hyper) != 1 || hyper[0] != want2 {
		t.Fatalf("VisibleHyperEdges() after expand(c_B) = %v, want [%s]", hyper, want2)
	}

	if err := Expand(s, "c_A"); err != nil {
		t.Fatalf("Expand(c_A): %v", err)
	}
	if s.HyperEdgeCount() != 0 {
		t.Errorf("HyperEdgeCount() = %d, want 0", s.HyperEdgeCount())
	}
	e14, ok := s.GetEdge("e14")
	if !ok || e14.Hidden {
		t.Errorf("e14 = %+v, ok=%v, want visible again", e14, ok)
	}
}

// Scenario 4: cycle rejection (exercised directly against the hierarchy,
// not the engine, since add_child is a C2 operation).
func TestAddChild_CycleRejection(t *testing.T) {
	s := model.New()
	mustUpsertContainer(t, s, "c_X")
	mustUpsertContainer(t, s, "c_Y")
	if err := s.AddChild("c_X", "c_Y"); err != nil {
		t.Fatalf("AddChild(c_X, c_Y): %v", err)
	}

	if err := s.AddChild("c_Y", "c_X"); err == nil {
		t.Errorf("AddChild(c_Y, c_X) = nil, want HierarchyCycle error")
	}
}

// Scenario 5: style priority.
func TestCollapse_StylePriority(t *testing.T) {
	s := model.New()
	mustUpsertNode(t, s, "n1")
	mustUpsertNode(t, s, "n2")
	mustUpsertNode(t, s, "ext")
	if err := s.UpsertEdge(model.Edge{ID: "e1", Source: "n1", Target: "ext", Style: model.StyleDefault}); err != nil {
		t.Fatal(err)
	}
	if err := s.UpsertEdge(model.Edge{ID: "e2", Source: "n2", Target: "ext", Style: model.StyleWarning}); err != nil {
		t.Fatal(err)
	}
	if err := s.UpsertEdge(model.Edge{ID: "e3", Source: "n1", Target: "ext", Style: model.StyleThick}); err != nil {
		t.Fatal(err)
	}
	mustUpsertContainer(t, s, "c1", "n1", "n2")

	if err := Collapse(s, "c1"); err != nil {
		t.Fatalf("Collapse(c1): %v", err)
	}

	h, ok := s.GetHyperEdge(model.HyperEdgeID("c1", "ext"))
	if !ok {
		t.Fatalf("expected hyper-edge hyper_c1__to__ext")
	}
	if h.Style != model.StyleWarning {
		t.Errorf("h.Style = %v, want %v", h.Style, model.StyleWarning)
	}
}

// Scenario 6: layout inclusion of hyper-edges (surfaced via
// VisibleEdgesUnified, which the layout bridge consumes).
func TestCollapse_UnifiedViewIncludesHyperEdge(t *testing.T) {
	s := model.New()
	mustUpsertNode(t, s, "n1")
	mustUpsertNode(t, s, "n2")
	mustUpsertNode(t, s, "n3")
	mustUpsertEdge(t, s, "e13", "n1", "n3")
	mustUpsertContainer(t, s, "c1", "n1", "n2")

	if err := Collapse(s, "c1"); err != nil {
		t.Fatalf("Collapse(c1): %v", err)
	}

	unified := s.VisibleEdgesUnified()
	if len(unified) != 1 || unified[0] != model.HyperEdgeID("c1", "n3") {
		t.Fatalf("VisibleEdgesUnified() = %v, want exactly one edge between c1 and n3", unified)
	}
}

// B1: collapsing an empty container produces no hyper-edges.
func TestCollapse_EmptyContainer(t *testing.T) {
	s := model.New()
	mustUpsertContainer(t, s, "c1")

	if err := Collapse(s, "c1"); err != nil {
		t.Fatalf("Collapse(empty c1): %v", err)
	}
	if s.HyperEdgeCount() != 0 {
		t.Errorf("HyperEdgeCount() = %d, want 0", s.HyperEdgeCount())
	}
	c, _ := s.GetContainer("c1")
	if !c.Collapsed {
		t.Errorf("c1.Collapsed = false, want true")
	}
}

// L2: repeated collapse on an already-collapsed container is rejected.
func TestCollapse_RejectsDoubleCollapse(t *testing.T) {
	s := model.New()
	mustUpsertContainer(t, s, "c1")
	if err := Collapse(s, "c1"); err != nil {
		t.Fatalf("Collapse(c1): %v", err)
	}

	if err := Collapse(s, "c1"); err == nil {
		t.Errorf("second Collapse(c1) = nil, want InvalidState error")
	}
}

// B3: a crossing edge whose external LVA is the collapsing container
// itself is left hidden, not aggregated, and is restored on expand.
func TestCollapse_SelfLoopSkipped(t *testing.T) {
	s := model.New()
	mustUpsertNode(t, s, "n1")
	mustUpsertContainer(t, s, "c1", "n1")
	mustUpsertEdge(t, s, "e", "n1", "c1")

	if err := Collapse(s, "c1"); err != nil {
		t.Fatalf("Collapse(c1): %v", err)
	}
	if s.HyperEdgeCount() != 0 {
		t.Errorf("HyperEdgeCount() = %d, want 0 (self-loop must not aggregate)", s.HyperEdgeCount())
	}
	e, _ := s.GetEdge("e")
	if !e.Hidden {
		t.Errorf("e.Hidden = false, want true")
	}

	if err := Expand(s, "c1"); err != nil {
		t.Fatalf("Expand(c1): %v", err)
	}
	e, _ = s.GetEdge("e")
	if e.Hidden {
		t.Errorf("e.Hidden = true after expand, want false (restored)")
	}
}
