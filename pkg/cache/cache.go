// Package cache stores rendered pass artifacts, QR symbols and fetched logos.
//
// # Backends
//
//   - [NullCache]: stores nothing (caching disabled)
//   - [FileCache]: one JSON file per entry under a local directory (CLI)
//   - [RedisCache]: shared cache for the HTTP server
//
// All backends implement [Cache] and treat a TTL of 0 as "never expires".
//
// # Keys
//
// Keys are built by a [Keyer] so every caller agrees on the layout of the key
// space. [ScopedKeyer] prefixes every key, e.g. per deployment:
//
//	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "staging:")
//	data, hit, err := c.Get(ctx, keyer.QRKey(code, cache.QRKeyOpts{Size: 256, Margin: 2}))
package cache

import (
	"context"
	"fmt"
	"time"
)

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the entry for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of 0 keeps the entry until deleted.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend.
	Close() error
}

// Entry lifetimes.
const (
	// TTLQR is effectively forever: a code's symbol never changes.
	TTLQR = 365 * 24 * time.Hour

	// TTLPass keeps rendered passes around for resends.
	TTLPass = 30 * 24 * time.Hour

	// TTLLogo bounds how long a fetched logo is trusted.
	TTLLogo = 24 * time.Hour
)

// QRKeyOpts identifies one QR rendering of a code.
type QRKeyOpts struct {
	Size   int `json:"size"`
	Margin int `json:"margin"`
}

// PassKeyOpts identifies one rendering of a pass input.
type PassKeyOpts struct {
	Template string `json:"template"`
	Format   string `json:"format"`
	Timezone string `json:"timezone"`
	LogoHash string `json:"logo_hash,omitempty"`
}

// Keyer builds cache keys.
type Keyer interface {
	// QRKey is the key of a standalone QR PNG.
	QRKey(code string, opts QRKeyOpts) string

	// PassKey is the key of a rendered pass artifact. inputHash is the
	// [Hash] of the canonical pass input.
	PassKey(inputHash string, opts PassKeyOpts) string

	// LogoKey is the key of a fetched logo.
	LogoKey(url string) string
}

// DefaultKeyer produces unprefixed keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default key layout.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// QRKey returns "qr:<code>:<size>:<margin>".
func (DefaultKeyer) QRKey(code string, opts QRKeyOpts) string {
	return fmt.Sprintf("qr:%s:%d:%d", code, opts.Size, opts.Margin)
}

// PassKey hashes the input hash together with the render options.
func (DefaultKeyer) PassKey(inputHash string, opts PassKeyOpts) string {
	return hashKey("pass", inputHash, opts)
}

// LogoKey hashes the logo URL.
func (DefaultKeyer) LogoKey(url string) string {
	return hashKey("logo", url)
}
