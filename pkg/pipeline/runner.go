package pipeline

import (
	"context"
	"image"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/eventpass/pkg/barcode"
	"github.com/matzehuels/eventpass/pkg/cache"
	"github.com/matzehuels/eventpass/pkg/code"
	"github.com/matzehuels/eventpass/pkg/document"
	"github.com/matzehuels/eventpass/pkg/errors"
	"github.com/matzehuels/eventpass/pkg/logo"
	"github.com/matzehuels/eventpass/pkg/observability"
	"github.com/matzehuels/eventpass/pkg/pass"
	"github.com/matzehuels/eventpass/pkg/render/card"
	"github.com/matzehuels/eventpass/pkg/render/card/layout"
)

// Runner executes the pipeline with caching.
//
// A Runner holds no per-pass state. Multiple goroutines can use the same
// Runner; background dispatches are tracked so Close can wait for them.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	Logos  *logo.Fetcher

	// DispatchTimeout bounds a detached Dispatch run.
	DispatchTimeout time.Duration

	mu       sync.Mutex
	closing  bool
	inflight sync.WaitGroup
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	logos := logo.NewFetcher(c, logger)
	logos.Keyer = keyer
	return &Runner{
		Cache:           c,
		Keyer:           keyer,
		Logger:          logger,
		Logos:           logos,
		DispatchTimeout: DefaultDispatchTimeout,
	}
}

// Render runs the pipeline for one pass.
//
// Invalid input and QR encoding failures are returned as errors. Logo
// failures are logged and the card is drawn without it; packaging failures
// are reported through Result.PackageErr.
func (r *Runner) Render(ctx context.Context, in pass.Input, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	logger := r.logger(opts)
	in.Code = code.Normalize(in.Code)
	if err := in.Validate(); err != nil {
		return nil, err
	}
	tmpl, err := layout.Preset(opts.Template)
	if err != nil {
		return nil, err
	}
	format, err := pass.NewFormatter(opts.Timezone)
	if err != nil {
		return nil, err
	}

	result := &Result{Code: in.Code, Artifacts: make(map[string][]byte)}
	hooks := observability.Pipeline()

	// Stage 1: logo, QR and layout are independent.
	prepStart := time.Now()
	var (
		lg   *logo.Logo
		qr   *image.Gray
		geom layout.Geometry
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lg = r.Logos.Resolve(gctx, opts.LogoURL)
		return nil
	})
	g.Go(func() error {
		return stage(gctx, in.Code, observability.StageEncode, func() error {
			var err error
			qr, err = card.EncodeQR(in.Code, tmpl)
			return err
		})
	})
	g.Go(func() error {
		return stage(gctx, in.Code, observability.StageLayout, func() error {
			var err error
			geom, err = layout.Compute(in, tmpl)
			return err
		})
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	result.Stats.PrepareTime = time.Since(prepStart)
	result.Stats.LogoResolved = lg != nil
	result.Stats.TitleLines = len(geom.TitleLines)
	result.Stats.TitleTruncated = geom.TitleTruncated
	if geom.TitleTruncated {
		hooks.OnTitleTruncated(ctx, in.Code, len(layout.Wrap(in.EventName, geom.TitleChars)), len(geom.TitleLines))
	}

	// Cache lookup needs the logo hash, so it follows stage 1.
	inputHash, err := cache.HashJSON(in)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "hash pass input")
	}
	keyOpts := cache.PassKeyOpts{Template: tmpl.Name, Timezone: format.Location().String(), LogoHash: lg.HashOrEmpty()}
	keyFor := func(f string) string {
		o := keyOpts
		o.Format = f
		return r.Keyer.PassKey(inputHash, o)
	}
	result.Geometry = geom
	if !opts.Refresh && r.fromCache(ctx, opts.Formats, keyFor, result) {
		logger.Debug("pass served from cache", "code", in.Code, "formats", opts.Formats)
		return result, nil
	}

	// Stage 2: render.
	renderStart := time.Now()
	var art *card.Artifact
	err = stage(ctx, in.Code, observability.StageRender, func() error {
		var err error
		art, err = card.Render(in, geom, lg.ImageOrNil(), qr, card.WithFormatter(format))
		return err
	})
	if err != nil {
		return nil, err
	}
	if opts.Wants(FormatPNG) {
		result.Artifacts[FormatPNG] = art.PNG
	}
	if opts.Wants(FormatSVG) {
		svg, err := art.SVG()
		if err != nil {
			return nil, err
		}
		result.Artifacts[FormatSVG] = svg
	}
	result.Stats.RenderTime = time.Since(renderStart)

	// Stage 3: package.
	if opts.Wants(FormatPDF) {
		pkgStart := time.Now()
		err := stage(ctx, in.Code, observability.StagePackage, func() error {
			doc, err := document.PackagePass(art)
			if err != nil {
				return err
			}
			result.Artifacts[FormatPDF] = doc.PDF
			return nil
		})
		result.Stats.PackageTime = time.Since(pkgStart)
		if err != nil {
			result.PackageErr = err
			result.Artifacts[FormatPNG] = art.PNG
			logger.Warn("pdf packaging failed, falling back to png", "code", in.Code, "err", err)
		}
	}

	for f, data := range result.Artifacts {
		if opts.Wants(f) {
			if err := r.Cache.Set(ctx, keyFor(f), data, cache.TTLPass); err == nil {
				observability.Cache().OnCacheSet(ctx, "pass", len(data))
			}
		}
	}

	logger.Info("rendered pass",
		"code", in.Code,
		"template", tmpl.Name,
		"title_lines", result.Stats.TitleLines,
		"logo", result.Stats.LogoResolved,
		"duration", result.Stats.PrepareTime+result.Stats.RenderTime+result.Stats.PackageTime)
	return result, nil
}

// fromCache fills result from the cache when every format is present.
func (r *Runner) fromCache(ctx context.Context, formats []string, keyFor func(string) string, result *Result) bool {
	found := make(map[string][]byte, len(formats))
	for _, f := range formats {
		data, hit, err := r.Cache.Get(ctx, keyFor(f))
		if err != nil || !hit {
			observability.Cache().OnCacheMiss(ctx, "pass")
			return false
		}
		found[f] = data
	}
	observability.Cache().OnCacheHit(ctx, "pass")
	result.Artifacts = found
	result.CacheInfo.Hit = true
	return true
}

// QR returns the PNG of code's QR symbol at size pixels with margin quiet-zone
// modules, and whether it came from the cache.
func (r *Runner) QR(ctx context.Context, code string, size, margin int) ([]byte, bool, error) {
	key := r.Keyer.QRKey(code, cache.QRKeyOpts{Size: size, Margin: margin})
	if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		observability.Cache().OnCacheHit(ctx, "qr")
		return data, true, nil
	}
	observability.Cache().OnCacheMiss(ctx, "qr")

	var data []byte
	err := stage(ctx, code, observability.StageEncode, func() error {
		var err error
		data, err = barcode.EncodePNG(code, size, margin)
		return err
	})
	if err != nil {
		return nil, false, err
	}
	if err := r.Cache.Set(ctx, key, data, cache.TTLQR); err == nil {
		observability.Cache().OnCacheSet(ctx, "qr", len(data))
	}
	return data, false, nil
}

// Close waits for background dispatches, then releases the cache.
func (r *Runner) Close() error {
	r.mu.Lock()
	r.closing = true
	r.mu.Unlock()
	r.inflight.Wait()
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) logger(opts Options) *log.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	return r.Logger
}

// stage runs fn between pipeline hook events.
func stage(ctx context.Context, code, name string, fn func() error) error {
	hooks := observability.Pipeline()
	hooks.OnStageStart(ctx, code, name)
	start := time.Now()
	err := fn()
	hooks.OnStageComplete(ctx, code, name, time.Since(start), err)
	return err
}
