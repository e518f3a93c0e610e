package cache

// Keyer derives cache keys.
type Keyer interface {
	// QueryKey identifies a GraphQL request body sent to endpoint.
	QueryKey(endpoint string, body []byte) string
}

// DefaultKeyer hashes request content into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// QueryKey hashes the endpoint and body.
func (DefaultKeyer) QueryKey(endpoint string, body []byte) string {
	return hashKey("query", []byte(endpoint), body)
}

// ScopedKeyer wraps a Keyer with a prefix so that several deployments can
// share one cache backend.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "repoexplorer:")
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

// QueryKey generates a prefixed query key.
func (k *ScopedKeyer) QueryKey(endpoint string, body []byte) string {
	return k.prefix + k.inner.QueryKey(endpoint, body)
}
