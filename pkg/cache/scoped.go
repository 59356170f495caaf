package cache

// ScopedKeyer wraps a Keyer with a prefix so several deployments (or test
// runs) can share one Redis instance without seeing each other's entries.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "eventpass:prod:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// A nil inner keyer selects DefaultKeyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// QRKey returns the prefixed QR key.
func (k *ScopedKeyer) QRKey(code string, opts QRKeyOpts) string {
	return k.prefix + k.inner.QRKey(code, opts)
}

// PassKey returns the prefixed pass key.
func (k *ScopedKeyer) PassKey(inputHash string, opts PassKeyOpts) string {
	return k.prefix + k.inner.PassKey(inputHash, opts)
}

// LogoKey returns the prefixed logo key.
func (k *ScopedKeyer) LogoKey(url string) string {
	return k.prefix + k.inner.LogoKey(url)
}
