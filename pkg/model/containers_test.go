package model

import "testing"

func TestUpsertContainer_PreservesChildrenAcrossMetadataUpdate(t *testing.T) {
	s := New()
	s.UpsertContainer(Container{ID: "c", Label: "v1"})
	s.UpsertNode(Node{ID: "n"})
	if err := s.AddChildToContainer("c", "n"); err != nil {
		t.Fatalf("AddChildToContainer: %v", err)
	}

	if err := s.UpsertContainer(Container{ID: "c", Label: "v2"}); err != nil {
		t.Fatalf("UpsertContainer (update): %v", err)
	}

	c, ok := s.GetContainer("c")
	if !ok || c.Label != "v2" {
		t.Fatalf("GetContainer(c).Label = %q, want %q", c.Label, "v2")
	}
	if _, inSet := c.Children["n"]; !inSet {
		t.Errorf("Children set lost %q across metadata-only update", "n")
	}
	if children := s.ChildrenOf("c"); len(children) != 1 {
		t.Errorf("ChildrenOf(c) = %v, want [n]", children)
	}
}

func TestUpdateContainer_PatchesOnlySetFields(t *testing.T) {
	s := New()
	s.UpsertContainer(Container{ID: "c", Label: "v1"})
	s.UpsertNode(Node{ID: "n"})
	s.AddChildToContainer("c", "n")

	collapsed := true
	if err := s.UpdateContainer("c", ContainerPatch{Collapsed: &collapsed}); err != nil {
		t.Fatalf("UpdateContainer: %v", err)
	}

	c, _ := s.GetContainer("c")
	if !c.Collapsed {
		t.Errorf("GetContainer(c).Collapsed = false, want true")
	}
	if c.Label != "v1" {
		t.Errorf("GetContainer(c).Label = %q, want unchanged %q", c.Label, "v1")
	}
	if _, inSet := c.Children["n"]; !inSet {
		t.Errorf("Children set lost %q across an UpdateContainer that does not mention Children", "n")
	}
}

func TestUpdateContainer_RejectsMissingContainer(t *testing.T) {
	s := New()
	if err := s.UpdateContainer("ghost", ContainerPatch{}); err == nil {
		t.Errorf("UpdateContainer(missing id) = nil, want error")
	}
}

func TestAddChildToContainer_RejectsUnknownParent(t *testing.T) {
	s := New()
	s.UpsertNode(Node{ID: "n"})
	if err := s.AddChildToContainer("ghost", "n"); err == nil {
		t.Errorf("AddChildToContainer(unknown parent) = nil, want error")
	}
}

func TestRemoveChildFromContainer_KeepsSetsInSync(t *testing.T) {
	s := New()
	s.UpsertContainer(Container{ID: "c"})
	s.UpsertNode(Node{ID: "n"})
	s.AddChildToContainer("c", "n")

	s.RemoveChildFromContainer("c", "n")

	c, _ := s.GetContainer("c")
	if len(c.Children) != 0 {
		t.Errorf("Children = %v, want empty", c.Children)
	}
	if p, ok := s.ParentOf("n"); ok {
		t.Errorf("ParentOf(n) = %q, want no parent", p)
	}
}

func TestRemoveContainer_ChildrenBecomeParentless(t *testing.T) {
	s := New()
	s.UpsertContainer(Container{ID: "c"})
	s.UpsertNode(Node{ID: "n"})
	s.AddChildToContainer("c", "n")

	s.RemoveContainer("c")

	if _, ok := s.GetContainer("c"); ok {
		t.Errorf("GetContainer(c) found after RemoveContainer")
	}
	if p, ok := s.ParentOf("n"); ok {
		t.Errorf("ParentOf(n) = %q, want no parent after its container was removed", p)
	}
	if _, ok := s.GetNode("n"); !ok {
		t.Errorf("node %q was removed along with its container, want it to survive", "n")
	}
}
