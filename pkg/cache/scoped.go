package cache

// ScopedKeyer wraps a Keyer with a prefix so that several deployments can
// share one Redis instance without stepping on each other's keys.
//
//	staging := NewScopedKeyer(NewDefaultKeyer(), "staging:")
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

// HTTPKey generates a prefixed key for API response caching.
func (k *ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}

// ReportKey generates a prefixed key for report caching.
func (k *ScopedKeyer) ReportKey(kind, username string, opts ReportKeyOpts) string {
	return k.prefix + k.inner.ReportKey(kind, username, opts)
}
