package cache

// ScopedKeyer wraps a Keyer with a prefix.
//
// The CLI scopes keys by API host so that a shared backend can serve clients
// pointed at different mirrors:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "cpanmeta.grinnz.com:")
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
