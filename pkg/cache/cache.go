// Package cache provides a pluggable acceleration layer for layout and
// render output. It is not a persistence layer for visualization state
// (the state itself stays in-memory only, per spec.md's Non-goals) — it
// only short-circuits recomputation of the (stateless, per §4.6) layout
// and render bridges when an equivalent input has already been computed.
package cache

import (
	"context"
	"time"
)

// Default time-to-live for each cached stage. Layout output is cheaper to
// recompute than render output is common to reuse across minor style
// tweaks, so render entries are kept longer.
const (
	TTLLayout = 10 * time.Minute
	TTLRender = 30 * time.Minute
)

// Cache stores opaque byte blobs under string keys with an optional
// expiration. Implementations must treat Get on an expired or absent key
// as a miss, never an error.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// LayoutKeyOpts is the subset of layout configuration (spec.md §4.6's
// closed option set) that participates in the layout cache key — the
// bridge is stateless, so identical (state hash, options) pairs always
// produce identical output.
type LayoutKeyOpts struct {
	Direction    string
	Algorithm    string
	NodeSpacing  float64
	LayerSpacing float64
	EdgeRouting  string
}

// RenderKeyOpts is the subset of render configuration (the theming table
// in use) that participates in the render cache key.
type RenderKeyOpts struct {
	Theme string
}

// Keyer derives cache keys. HTTPKey namespaces cached HTTP responses
// under a caller-chosen namespace; LayoutKey and
// RenderKey namespace the two bridge stages by content hash of their
// input plus the options that affect their output.
type Keyer interface {
	HTTPKey(namespace, key string) string
	LayoutKey(stateHash string, opts LayoutKeyOpts) string
	RenderKey(layoutHash string, opts RenderKeyOpts) string
}

// DefaultKeyer is the stock Keyer, hashing options alongside the content
// hash so that any option change invalidates the cache entry.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the stock Keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

func (DefaultKeyer) LayoutKey(stateHash string, opts LayoutKeyOpts) string {
	return hashKey("layout:"+stateHash, opts)
}

func (DefaultKeyer) RenderKey(layoutHash string, opts RenderKeyOpts) string {
	return hashKey("render:"+layoutHash, opts)
}
