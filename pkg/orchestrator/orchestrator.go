// Package orchestrator implements the Engine Orchestrator (C8): the state
// machine that drives debounced layout/render passes over a
// visualization state and notifies subscribers on every transition into
// Ready or Error (spec.md §4.8, §5, §6's "Orchestrator" API group).
//
// It adapts a one-shot linear parse/layout/render pipeline into a
// reactive loop: mutations mark the state Dirty, a
// debounce timer coalesces bursts of them, and a single in-flight layout
// generation is tracked so a mutation arriving mid-layout relaunches
// rather than racing.
package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/hydro-project/flowviz/pkg/cache"
	"github.com/hydro-project/flowviz/pkg/engine"
	"github.com/hydro-project/flowviz/pkg/flowerrors"
	"github.com/hydro-project/flowviz/pkg/layout"
	"github.com/hydro-project/flowviz/pkg/model"
	"github.com/hydro-project/flowviz/pkg/observability"
	"github.com/hydro-project/flowviz/pkg/render"
)

// Phase is one state of the orchestrator's state machine (spec.md §4.8).
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseDirty     Phase = "dirty"
	PhaseLayingOut Phase = "laying_out"
	PhaseRendering Phase = "rendering"
	PhaseReady     Phase = "ready"
	PhaseError     Phase = "error"
)

// DefaultDebounce approximates spec.md §4.8's "one animation frame" default.
const DefaultDebounce = 16 * time.Millisecond

// Event is delivered to subscribers after every transition into Ready or
// Error (spec.md §6, "subscribe_state_changes(callback)").
type Event struct {
	Phase Phase
	Frame render.Frame
	Err   error
}

// Options configures an Orchestrator. Engine is required; a zero
// Theme/Layout/Cache/Keyer/Logger/Debounce falls back to a default.
type Options struct {
	Engine   layout.Engine
	Theme    render.Theme
	Layout   layout.Options
	Cache    cache.Cache
	Keyer    cache.Keyer
	Logger   *log.Logger
	Debounce time.Duration
}

// Orchestrator owns one visualization state and drives it through the
// Idle → Dirty → LayingOut → Rendering → Ready (→ Dirty ...) state machine
// of spec.md §4.8. It is not safe for concurrent use by multiple
// goroutines issuing mutations at once — per spec.md §5 the state has a
// single logical owner — but the debounce timer and in-flight layout run
// on their own goroutine, guarded by mu.
type Orchestrator struct {
	mu sync.Mutex

	state  *model.State
	engine layout.Engine
	theme  render.Theme
	opts   layout.Options
	cache  cache.Cache
	keyer  cache.Keyer
	logger *log.Logger

	debounce time.Duration
	timer    *time.Timer

	phase      Phase
	generation uint64 // incremented on every dirty/cancel; guards stale layout results
	lastFrame  render.Frame
	lastErr    error

	subs map[string]func(Event)
}

// New constructs an Orchestrator in the Idle phase over state.
func New(state *model.State, o Options) *Orchestrator {
	if o.Keyer == nil {
		o.Keyer = cache.NewDefaultKeyer()
	}
	if o.Cache == nil {
		o.Cache = cache.NewNullCache()
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	if o.Debounce <= 0 {
		o.Debounce = DefaultDebounce
	}
	if (o.Layout == layout.Options{}) {
		o.Layout = layout.DefaultOptions()
	}
	if o.Theme == nil {
		o.Theme = render.DefaultTheme()
	}
	return &Orchestrator{
		state:    state,
		engine:   o.Engine,
		theme:    o.Theme,
		opts:     o.Layout,
		cache:    o.Cache,
		keyer:    o.Keyer,
		logger:   o.Logger,
		debounce: o.Debounce,
		phase:    PhaseIdle,
		subs:     make(map[string]func(Event)),
	}
}

// Phase returns the orchestrator's current phase.
func (o *Orchestrator) Phase() Phase {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.phase
}

// LastReady returns the most recently published Ready frame, even while
// the orchestrator is now in Error — the previous Ready snapshot "remains
// observable" per spec.md §4.8.
func (o *Orchestrator) LastReady() render.Frame {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastFrame
}

// Subscribe registers fn to receive every Ready/Error transition,
// returning a handle Unsubscribe accepts (spec.md §6's
// subscribe_state_changes). fn is invoked synchronously on the
// orchestrator's own goroutine, per spec.md §5's single-threaded model.
func (o *Orchestrator) Subscribe(fn func(Event)) string {
	o.mu.Lock()
	defer o.mu.Unlock()
	id := uuid.NewString()
	o.subs[id] = fn
	return id
}

// Unsubscribe removes a subscription registered via Subscribe.
func (o *Orchestrator) Unsubscribe(id string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.subs, id)
}

// markDirty is called after every mutation that changes the unified edge
// view, the visibility caches, or the hierarchy (spec.md §4.8). It bumps
// the generation counter (invalidating any in-flight layout's result),
// enters Dirty, and (re)arms the debounce timer.
func (o *Orchestrator) markDirty() {
	o.mu.Lock()
	o.phase = PhaseDirty
	o.generation++
	gen := o.generation
	if o.timer != nil {
		o.timer.Stop()
	}
	o.timer = time.AfterFunc(o.debounce, func() { o.runLayout(gen) })
	o.mu.Unlock()
}

// Cancel drops the result of any in-flight layout and returns to Dirty
// without relaunching (spec.md §5, "An explicit cancel() ... drops the
// result of the in-flight layout and returns to Dirty").
func (o *Orchestrator) Cancel() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.generation++
	if o.timer != nil {
		o.timer.Stop()
	}
	o.phase = PhaseDirty
}

// RequestLayout triggers an immediate layout pass rather than waiting out
// the debounce window (spec.md §6, "request_layout(config)").
func (o *Orchestrator) RequestLayout(ctx context.Context) {
	o.mu.Lock()
	if o.timer != nil {
		o.timer.Stop()
	}
	gen := o.generation
	o.mu.Unlock()
	o.runLayout(gen)
}

// runLayout performs one LayingOut → Rendering → Ready|Error pass for
// generation gen, bailing out silently if a newer mutation has since
// bumped the generation counter — that is what makes a mutation arriving
// mid-layout relaunch instead of racing (spec.md §5 "Cancellation").
func (o *Orchestrator) runLayout(gen uint64) {
	o.mu.Lock()
	if gen != o.generation {
		o.mu.Unlock()
		return
	}
	o.phase = PhaseLayingOut
	st := o.state
	eng := o.engine
	opts := o.opts
	theme := o.theme
	o.mu.Unlock()

	start := time.Now()
	in := layout.BuildInput(st, opts)

	out, _, err := o.layoutWithCache(in)
	observability.Engine().OnLayout(context.Background(), len(in.Roots)+len(in.Regions), len(in.Edges), time.Since(start), err)

	o.mu.Lock()
	if gen != o.generation {
		// A newer mutation arrived while the layout engine ran; per
		// spec.md §5 the just-finished result is stale and discarded,
		// and whatever relaunched this generation owns the next pass.
		o.mu.Unlock()
		return
	}
	if err != nil {
		o.phase = PhaseError
		o.lastErr = err
		evt := Event{Phase: PhaseError, Err: err}
		o.notifyLocked(evt)
		o.mu.Unlock()
		return
	}

	if err := layout.ApplyOutput(st, in, out); err != nil {
		o.phase = PhaseError
		o.lastErr = err
		evt := Event{Phase: PhaseError, Err: err}
		o.notifyLocked(evt)
		o.mu.Unlock()
		return
	}
	o.phase = PhaseRendering
	o.mu.Unlock()

	renderStart := time.Now()
	frame := render.Bridge(st, theme)
	observability.Engine().OnRender(context.Background(), len(frame.Nodes), len(frame.Edges), time.Since(renderStart))

	o.mu.Lock()
	if gen != o.generation {
		o.mu.Unlock()
		return
	}
	o.phase = PhaseReady
	o.lastFrame = frame
	o.lastErr = nil
	evt := Event{Phase: PhaseReady, Frame: frame}
	o.notifyLocked(evt)
	o.mu.Unlock()
}

// layoutWithCache consults the cache for in's content before invoking the
// engine — an acceleration layer, never a substitute for the stateless
// contract of pkg/layout.Engine.
func (o *Orchestrator) layoutWithCache(in layout.Input) (layout.Output, bool, error) {
	if err := in.Options.Validate(); err != nil {
		return layout.Output{}, false, err
	}
	if o.engine == nil {
		return layout.Output{}, false, flowerrors.New(flowerrors.InvalidState, "orchestrator: no layout engine configured")
	}

	key := o.keyer.LayoutKey(inputHash(in), cache.LayoutKeyOpts{
		Direction:    string(in.Options.Direction),
		Algorithm:    string(in.Options.Algorithm),
		NodeSpacing:  in.Options.NodeSpacing,
		LayerSpacing: in.Options.LayerSpacing,
		EdgeRouting:  string(in.Options.EdgeRouting),
	})

	ctx := context.Background()
	if data, hit, err := o.cache.Get(ctx, key); err == nil && hit {
		if out, decodeErr := decodeOutput(data); decodeErr == nil {
			observability.Cache().OnCacheHit(ctx, "layout")
			return out, true, nil
		}
	}
	observability.Cache().OnCacheMiss(ctx, "layout")

	out, err := o.engine.Layout(in)
	if err != nil {
		return layout.Output{}, false, flowerrors.Wrap(flowerrors.LayoutFailure, err, "layout engine")
	}
	if data, encodeErr := encodeOutput(out); encodeErr == nil {
		if setErr := o.cache.Set(ctx, key, data, cache.TTLLayout); setErr == nil {
			observability.Cache().OnCacheSet(ctx, "layout", len(data))
		}
	}
	return out, false, nil
}

func (o *Orchestrator) notifyLocked(evt Event) {
	for _, fn := range o.subs {
		fn(evt)
	}
}

// --- collapse/expand wrappers -------------------------------------------------

// Collapse wraps engine.Collapse and marks the orchestrator Dirty on
// success, so every state-changing API call drives the same reactive
// loop (spec.md §4.8: "Any state mutation ... sets Dirty").
func (o *Orchestrator) Collapse(containerID string) error {
	start := time.Now()
	err := engine.Collapse(o.state, containerID)
	observability.Engine().OnCollapse(context.Background(), containerID, time.Since(start), err)
	if err != nil {
		if flowerrors.GetCode(err) == flowerrors.InvariantViolation {
			observability.Engine().OnInvariantViolation(context.Background(), err)
		}
		return err
	}
	o.markDirty()
	return nil
}

// Expand wraps engine.Expand, marking the orchestrator Dirty on success.
func (o *Orchestrator) Expand(containerID string) error {
	start := time.Now()
	err := engine.Expand(o.state, containerID)
	observability.Engine().OnExpand(context.Background(), containerID, time.Since(start), err)
	if err != nil {
		if flowerrors.GetCode(err) == flowerrors.InvariantViolation {
			observability.Engine().OnInvariantViolation(context.Background(), err)
		}
		return err
	}
	o.markDirty()
	return nil
}

// ExpandRecursive wraps engine.ExpandRecursive, marking the orchestrator
// Dirty on success.
func (o *Orchestrator) ExpandRecursive(containerID string) error {
	start := time.Now()
	err := engine.ExpandRecursive(o.state, containerID)
	observability.Engine().OnExpand(context.Background(), containerID, time.Since(start), err)
	if err != nil {
		if flowerrors.GetCode(err) == flowerrors.InvariantViolation {
			observability.Engine().OnInvariantViolation(context.Background(), err)
		}
		return err
	}
	o.markDirty()
	return nil
}

// Mutate runs fn against the underlying state (e.g. UpsertNode,
// AddChild, RemoveEdge) and marks the orchestrator Dirty afterward. It is
// the general escape hatch for the State API mutation calls of spec.md
// §6 that do not already have a dedicated wrapper above.
func (o *Orchestrator) Mutate(fn func(*model.State) error) error {
	if err := fn(o.state); err != nil {
		return err
	}
	o.markDirty()
	return nil
}

// State exposes the underlying state for read-only queries (visible_*,
// children_of, get_<entity>, ...). Per spec.md §5 the host must not
// mutate it directly; use Mutate or the Collapse/Expand wrappers instead.
func (o *Orchestrator) State() *model.State {
	return o.state
}
