package cache

// ScopedKeyer wraps a Keyer with a prefix so several users of one backend
// do not see each other's entries.
//
//	shared := NewScopedKeyer(NewDefaultKeyer(), "flowlens:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer that prepends prefix to every key. A nil
// inner keyer means [DefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// DiagramKey implements [Keyer].
func (k *ScopedKeyer) DiagramKey(contentHash string, opts DiagramKeyOpts) string {
	return k.prefix + k.inner.DiagramKey(contentHash, opts)
}

// SourceKey implements [Keyer].
func (k *ScopedKeyer) SourceKey(repo, revision, path string) string {
	return k.prefix + k.inner.SourceKey(repo, revision, path)
}
