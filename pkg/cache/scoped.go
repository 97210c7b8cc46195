package cache

// ScopedKeyer wraps a Keyer with a prefix for multi-host isolation — one
// process embedding multiple independent visualization states (e.g. an
// HTTP host serving several sessions) can give each its own cache
// namespace without the two colliding on an identical graph shape.
//
// Example usage:
//
//	sessionKeyer := NewScopedKeyer(NewDefaultKeyer(), "session:abc123:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// HTTPKey generates a prefixed key for HTTP response caching.
func (k *ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}

// LayoutKey generates a prefixed key for layout caching.
func (k *ScopedKeyer) LayoutKey(stateHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(stateHash, opts)
}

// RenderKey generates a prefixed key for render caching.
func (k *ScopedKeyer) RenderKey(layoutHash string, opts RenderKeyOpts) string {
	return k.prefix + k.inner.RenderKey(layoutHash, opts)
}
