package cache

// ScopedKeyer wraps a Keyer with a prefix so several deployments can share
// one Redis instance without colliding.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "waitgraph:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// A nil inner keyer falls back to [DefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// ReportKey generates a prefixed report key.
func (k *ScopedKeyer) ReportKey(graphHash string) string {
	return k.prefix + k.inner.ReportKey(graphHash)
}

// ArtifactKey generates a prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(graphHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(graphHash, opts)
}
