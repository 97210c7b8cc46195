package orchestrator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/hydro-project/flowviz/pkg/cache"
	"github.com/hydro-project/flowviz/pkg/layout"
	"github.com/hydro-project/flowviz/pkg/model"
)

// fakeEngine returns a fixed position for every requested id so tests
// don't depend on a real layout algorithm.
type fakeEngine struct {
	mu    sync.Mutex
	calls int
	delay time.Duration
	err   error
}

func (f *fakeEngine) Layout(in layout.Input) (layout.Output, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return layout.Output{}, f.err
	}
	out := layout.Output{
		Positions:  make(map[string]layout.Position),
		Dimensions: make(map[string]layout.Dimensions),
		Bends:      make(map[string][]model.BendPoint),
	}
	var walk func(r layout.Region)
	walk = func(r layout.Region) {
		out.Positions[r.ID] = layout.Position{}
		out.Dimensions[r.ID] = layout.Dimensions{W: 10, H: 10}
		for _, l := range r.Leaves {
			out.Positions[l.ID] = layout.Position{}
		}
		for _, sub := range r.Regions {
			walk(sub)
		}
	}
	for _, l := range in.Roots {
		out.Positions[l.ID] = layout.Position{}
	}
	for _, r := range in.Regions {
		walk(r)
	}
	return out, nil
}

func (f *fakeEngine) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newTestOrchestrator(eng layout.Engine) (*Orchestrator, *model.State) {
	s := model.New()
	o := New(s, Options{
		Engine:   eng,
		Debounce: 5 * time.Millisecond,
	})
	return o, s
}

func waitForPhase(t *testing.T, o *Orchestrator, want Phase, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if o.Phase() == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("Phase() never reached %v, stuck at %v", want, o.Phase())
}

func TestOrchestrator_MutationReachesReady(t *testing.T) {
	eng := &fakeEngine{}
	o, s := newTestOrchestrator(eng)

	if err := o.Mutate(func(s *model.State) error {
		return s.UpsertNode(model.Node{ID: "n1", Style: model.StyleDefault})
	}); err != nil {
		t.Fatalf("Mutate: %v", err)
	}

	waitForPhase(t, o, PhaseReady, time.Second)
	frame := o.LastReady()
	if len(frame.Nodes) != 1 || frame.Nodes[0].ID != "n1" {
		t.Errorf("LastReady().Nodes = %v, want [n1]", frame.Nodes)
	}
	_ = s
}

func TestOrchestrator_CollapseMarksDirtyThenReady(t *testing.T) {
	eng := &fakeEngine{}
	o, s := newTestOrchestrator(eng)

	if err := s.UpsertNode(model.Node{ID: "n1", Style: model.StyleDefault}); err != nil {
		t.Fatalf("UpsertNode: %v", err)
	}
	if err := s.UpsertContainer(model.Container{ID: "c1"}); err != nil {
		t.Fatalf("UpsertContainer: %v", err)
	}
	if err := s.AddChildToContainer("c1", "n1"); err != nil {
		t.Fatalf("AddChildToContainer: %v", err)
	}

	if err := o.Collapse("c1"); err != nil {
		t.Fatalf("Collapse: %v", err)
	}
	waitForPhase(t, o, PhaseReady, time.Second)
}

func TestOrchestrator_LayoutFailureEntersErrorKeepsLastReady(t *testing.T) {
	eng := &fakeEngine{}
	o, _ := newTestOrchestrator(eng)

	if err := o.Mutate(func(s *model.State) error {
		return s.UpsertNode(model.Node{ID: "n1", Style: model.StyleDefault})
	}); err != nil {
		t.Fatalf("Mutate: %v", err)
	}
	waitForPhase(t, o, PhaseReady, time.Second)
	firstFrame := o.LastReady()

	eng.err = layoutErr{}
	if err := o.Mutate(func(s *model.State) error {
		return s.UpsertNode(model.Node{ID: "n2", Style: model.StyleDefault})
	}); err != nil {
		t.Fatalf("Mutate: %v", err)
	}
	waitForPhase(t, o, PhaseError, time.Second)

	if got := o.LastReady(); len(got.Nodes) != len(firstFrame.Nodes) {
		t.Errorf("LastReady() changed after a failed layout, got %v want %v", got, firstFrame)
	}
}

type layoutErr struct{}

func (layoutErr) Error() string { return "layout engine unavailable" }

func TestOrchestrator_SubscribeReceivesReadyEvent(t *testing.T) {
	eng := &fakeEngine{}
	o, _ := newTestOrchestrator(eng)

	events := make(chan Event, 4)
	o.Subscribe(func(e Event) { events <- e })

	if err := o.Mutate(func(s *model.State) error {
		return s.UpsertNode(model.Node{ID: "n1", Style: model.StyleDefault})
	}); err != nil {
		t.Fatalf("Mutate: %v", err)
	}

	select {
	case e := <-events:
		if e.Phase != PhaseReady {
			t.Errorf("event.Phase = %v, want Ready", e.Phase)
		}
	case <-time.After(time.Second):
		t.Fatal("subscriber never received an event")
	}
}

func TestOrchestrator_CancelReturnsToDirtyWithoutPublishing(t *testing.T) {
	eng := &fakeEngine{delay: 100 * time.Millisecond}
	o, _ := newTestOrchestrator(eng)

	if err := o.Mutate(func(s *model.State) error {
		return s.UpsertNode(model.Node{ID: "n1", Style: model.StyleDefault})
	}); err != nil {
		t.Fatalf("Mutate: %v", err)
	}
	time.Sleep(10 * time.Millisecond) // let the debounce fire, entering LayingOut
	o.Cancel()

	if got := o.Phase(); got != PhaseDirty {
		t.Errorf("Phase() after Cancel = %v, want Dirty", got)
	}
	time.Sleep(200 * time.Millisecond)
	if got := o.Phase(); got == PhaseReady {
		t.Error("Phase() reached Ready after Cancel; the in-flight layout's result should have been discarded")
	}
}

func TestOrchestrator_RequestLayoutSkipsDebounce(t *testing.T) {
	eng := &fakeEngine{}
	o, s := newTestOrchestrator(eng)
	o.debounce = time.Hour // would never fire on its own within this test

	if err := s.UpsertNode(model.Node{ID: "n1", Style: model.StyleDefault}); err != nil {
		t.Fatalf("UpsertNode: %v", err)
	}
	o.markDirty()
	o.RequestLayout(context.Background())

	waitForPhase(t, o, PhaseReady, time.Second)
}

func TestOrchestrator_DefaultsAppliedWhenOmitted(t *testing.T) {
	s := model.New()
	o := New(s, Options{Engine: &fakeEngine{}})
	if o.cache == nil || o.keyer == nil || o.logger == nil {
		t.Error("New() left cache/keyer/logger nil")
	}
	if o.debounce != DefaultDebounce {
		t.Errorf("debounce = %v, want default %v", o.debounce, DefaultDebounce)
	}
	if (o.opts == layout.Options{}) {
		t.Error("layout options left zero-valued")
	}
	var _ cache.Cache = o.cache
}
