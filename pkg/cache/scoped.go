package cache

// ScopedKeyer wraps a Keyer with a prefix for namespace isolation.
// This is useful when several preview servers share one Redis instance.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "staging:")
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

// LayoutKey generates a prefixed key for layout table caching.
func (k *ScopedKeyer) LayoutKey(networkHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(networkHash, opts)
}

// ArtifactKey generates a prefixed key for artifact caching.
func (k *ScopedKeyer) ArtifactKey(tablesHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(tablesHash, opts)
}
