package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes every event to a logger at debug level; failures and
// truncated titles are logged as warnings.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks returns hooks backed by logger. A nil logger selects log.Default().
func NewLogHooks(logger *log.Logger) *LogHooks {
	if logger == nil {
		logger = log.Default()
	}
	return &LogHooks{logger: logger.WithPrefix("hooks")}
}

// Register installs h as the pipeline, cache and HTTP hooks.
func (h *LogHooks) Register() {
	SetPipelineHooks(h)
	SetCacheHooks(h)
	SetHTTPHooks(h)
}

func (h *LogHooks) OnStageStart(_ context.Context, code, stage string) {
	h.logger.Debug("stage start", "code", code, "stage", stage)
}

func (h *LogHooks) OnStageComplete(_ context.Context, code, stage string, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("stage failed", "code", code, "stage", stage, "duration", d, "err", err)
		return
	}
	h.logger.Debug("stage done", "code", code, "stage", stage, "duration", d)
}

func (h *LogHooks) OnTitleTruncated(_ context.Context, code string, lines, limit int) {
	h.logger.Warn("event title truncated", "code", code, "lines", lines, "limit", limit)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger.Debug("http request", "method", method, "host", host, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("http response", "method", method, "host", host, "path", path, "status", status, "duration", d)
}

func (h *LogHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Warn("http error", "method", method, "host", host, "path", path, "err", err)
}
