// Package logo resolves the organizer logo drawn on passes.
//
// Fetching is the only network I/O in pass generation, so it lives here and
// not in the renderer. Every failure is survivable: [Fetcher.Resolve] logs
// and returns nil, and the card is drawn without a logo.
package logo

import (
	"bytes"
	"context"
	stderrors "errors"
	"image"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"

	"github.com/matzehuels/eventpass/pkg/cache"
	"github.com/matzehuels/eventpass/pkg/errors"
	"github.com/matzehuels/eventpass/pkg/httputil"
	"github.com/matzehuels/eventpass/pkg/observability"
)

// Defaults.
const (
	DefaultTimeout  = 5 * time.Second
	DefaultMaxBytes = 2 << 20
	DefaultAttempts = 2
)

// Logo is a decoded logo and the hash of its encoded bytes.
type Logo struct {
	Image image.Image
	Hash  string
}

// Fetcher downloads and decodes logos, caching the raw bytes.
type Fetcher struct {
	Client   *http.Client
	Cache    cache.Cache
	Keyer    cache.Keyer
	Logger   *log.Logger
	Timeout  time.Duration
	MaxBytes int64
	Attempts int
}

// NewFetcher returns a fetcher with defaults filled in. c may be nil.
func NewFetcher(c cache.Cache, logger *log.Logger) *Fetcher {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Fetcher{
		Client:   &http.Client{},
		Cache:    c,
		Keyer:    cache.NewDefaultKeyer(),
		Logger:   logger,
		Timeout:  DefaultTimeout,
		MaxBytes: DefaultMaxBytes,
		Attempts: DefaultAttempts,
	}
}

// Fetch returns the logo at url. The whole call, retries included, is
// bounded by f.Timeout.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*Logo, error) {
	if err := errors.ValidateURL(url); err != nil {
		return nil, err
	}
	key := f.Keyer.LogoKey(url)

	if data, hit, err := f.Cache.Get(ctx, key); err == nil && hit {
		if l, err := decode(data); err == nil {
			observability.Cache().OnCacheHit(ctx, "logo")
			return l, nil
		}
	}
	observability.Cache().OnCacheMiss(ctx, "logo")

	ctx, cancel := context.WithTimeout(ctx, f.Timeout)
	defer cancel()

	var data []byte
	err := httputil.Retry(ctx, f.Attempts, 200*time.Millisecond, func() error {
		var err error
		data, err = httputil.Fetch(ctx, f.Client, url, f.MaxBytes)
		return err
	})
	if err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) {
			return nil, errors.Wrap(errors.ErrCodeTimeout, err, "fetch logo")
		}
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "fetch logo")
	}

	l, err := decode(data)
	if err != nil {
		return nil, err
	}
	if err := f.Cache.Set(ctx, key, data, cache.TTLLogo); err == nil {
		observability.Cache().OnCacheSet(ctx, "logo", len(data))
	}
	return l, nil
}

// Resolve is Fetch that never fails: errors are logged and nil is returned.
// An empty url resolves to nil without logging.
func (f *Fetcher) Resolve(ctx context.Context, url string) *Logo {
	if url == "" {
		return nil
	}
	start := time.Now()
	observability.Pipeline().OnStageStart(ctx, "", observability.StageLogo)
	l, err := f.Fetch(ctx, url)
	observability.Pipeline().OnStageComplete(ctx, "", observability.StageLogo, time.Since(start), err)
	if err != nil {
		f.Logger.Warn("logo unavailable, rendering without it", "url", url, "err", err)
		return nil
	}
	return l
}

// ImageOrNil returns the decoded image, or nil for a nil logo.
func (l *Logo) ImageOrNil() image.Image {
	if l == nil {
		return nil
	}
	return l.Image
}

// HashOrEmpty returns the content hash, or "" for a nil logo.
func (l *Logo) HashOrEmpty() string {
	if l == nil {
		return ""
	}
	return l.Hash
}

// Decode decodes logo bytes (PNG, JPEG, GIF, BMP or TIFF).
func Decode(data []byte) (*Logo, error) {
	return decode(data)
}

func decode(data []byte) (*Logo, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode logo")
	}
	return &Logo{Image: img, Hash: cache.Hash(data)}, nil
}
