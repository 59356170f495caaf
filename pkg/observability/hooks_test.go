package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	p := NoopPipelineHooks{}
	p.OnStageStart(ctx, "F4VJEUHOA707", StageRender)
	p.OnStageComplete(ctx, "F4VJEUHOA707", StageRender, time.Second, nil)
	p.OnTitleTruncated(ctx, "F4VJEUHOA707", 9, 4)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "qr")
	c.OnCacheMiss(ctx, "pass")
	c.OnCacheSet(ctx, "logo", 1024)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "cdn.example.com", "/logo.png")
	h.OnResponse(ctx, "GET", "cdn.example.com", "/logo.png", 200, time.Second)
	h.OnError(ctx, "GET", "cdn.example.com", "/logo.png", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()
	defer Reset()

	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should return NoopPipelineHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	customPipeline := &testPipelineHooks{}
	SetPipelineHooks(customPipeline)
	if Pipeline() != customPipeline {
		t.Error("SetPipelineHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	Reset()
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Reset() should restore NoopPipelineHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	custom := &testPipelineHooks{}
	SetPipelineHooks(custom)
	SetPipelineHooks(nil)

	if Pipeline() != custom {
		t.Error("SetPipelineHooks(nil) should be ignored")
	}
}

func TestLogHooks(t *testing.T) {
	Reset()
	defer Reset()

	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	NewLogHooks(logger).Register()

	ctx := context.Background()
	Pipeline().OnStageComplete(ctx, "F4VJEUHOA707", StagePackage, time.Millisecond, errors.New("pdf broke"))
	Pipeline().OnTitleTruncated(ctx, "F4VJEUHOA707", 9, 4)
	Cache().OnCacheHit(ctx, "qr")
	HTTP().OnError(ctx, "GET", "cdn.example.com", "/logo.png", errors.New("timeout"))

	out := buf.String()
	for _, want := range []string{"stage failed", "pdf broke", "event title truncated", "cache hit", "http error"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

type testPipelineHooks struct{ NoopPipelineHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
