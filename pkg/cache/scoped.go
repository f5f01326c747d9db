package cache

// ScopedKeyer wraps a Keyer with a prefix so separate stores served by one
// process (different data sets behind the serve facade, say) never share
// cache entries.
//
// Example usage:
//
//	// Keys scoped to one family data set
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "store:acme:")
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

// GraphKey generates a prefixed key for graph caching.
func (k *ScopedKeyer) GraphKey(rootID string, opts GraphKeyOpts) string {
	return k.prefix + k.inner.GraphKey(rootID, opts)
}

// LayoutKey generates a prefixed key for layout caching.
func (k *ScopedKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(graphHash, opts)
}
