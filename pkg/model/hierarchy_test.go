package model

import "testing"

func TestAddChild_RejectsSelfParent(t *testing.T) {
	s := New()
	s.UpsertContainer(Container{ID: "a"})

	if err := s.AddChild("a", "a"); err == nil {
		t.Errorf("AddChild(a, a) = nil, want HierarchyCycle error")
	}
}

func TestAddChild_RejectsCycle(t *testing.T) {
	s := New()
	s.UpsertContainer(Container{ID: "a"})
	s.UpsertContainer(Container{ID: "b"})
	if err := s.AddChild("a", "b"); err != nil {
		t.Fatalf("AddChild(a, b) = %v, want nil", err)
	}

	if err := s.AddChild("b", "a"); err == nil {
		t.Errorf("AddChild(b, a) = nil, want HierarchyCycle error (would close a->b->a)")
	}
}

func TestAddChild_RejectsReparenting(t *testing.T) {
	s := New()
	s.UpsertContainer(Container{ID: "a"})
	s.UpsertContainer(Container{ID: "b"})
	s.UpsertNode(Node{ID: "n"})
	if err := s.AddChild("a", "n"); err != nil {
		t.Fatalf("AddChild(a, n) = %v, want nil", err)
	}

	if err := s.AddChild("b", "n"); err == nil {
		t.Errorf("AddChild(b, n) = nil, want AlreadyParented error")
	}
	if p, _ := s.ParentOf("n"); p != "a" {
		t.Errorf("ParentOf(n) = %q, want %q (unchanged by rejected reparent)", p, "a")
	}
}

func TestDescendantsAndAncestors(t *testing.T) {
	s := New()
	s.UpsertContainer(Container{ID: "root"})
	s.UpsertContainer(Container{ID: "mid"})
	s.UpsertNode(Node{ID: "leaf"})
	s.AddChild("root", "mid")
	s.AddChild("mid", "leaf")

	desc := s.DescendantsOf("root")
	if len(desc) != 2 {
		t.Fatalf("DescendantsOf(root) = %v, want 2 entries", desc)
	}

	anc := s.AncestorsOf("leaf")
	if len(anc) != 2 || anc[0] != "mid" || anc[1] != "root" {
		t.Errorf("AncestorsOf(leaf) = %v, want [mid root]", anc)
	}
}

func TestRemoveChild_NoOpWhenUnlinked(t *testing.T) {
	s := New()
	s.UpsertContainer(Container{ID: "a"})
	s.UpsertNode(Node{ID: "n"})

	s.RemoveChild("a", "n") // never linked; must not panic
	if p, ok := s.ParentOf("n"); ok {
		t.Errorf("ParentOf(n) = %q, want no parent", p)
	}
}
