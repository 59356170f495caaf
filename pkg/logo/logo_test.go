package logo

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/eventpass/pkg/cache"
	"github.com/matzehuels/eventpass/pkg/errors"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	img := imaging.New(40, 10, color.NRGBA{R: 0xea, G: 0x58, B: 0x0c, A: 0xff})
	require.NoError(t, imaging.Encode(&buf, img, imaging.PNG))
	return buf.Bytes()
}

func quietFetcher(c cache.Cache) *Fetcher {
	f := NewFetcher(c, log.New(io.Discard))
	f.Timeout = time.Second
	return f
}

func TestFetch(t *testing.T) {
	body := pngBytes(t)
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "image/png")
		w.Write(body)
	}))
	defer srv.Close()

	fc, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	f := quietFetcher(fc)

	l, err := f.Fetch(context.Background(), srv.URL+"/logo.png")
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 40, 10), l.Image.Bounds())
	assert.Equal(t, cache.Hash(body), l.Hash)

	again, err := f.Fetch(context.Background(), srv.URL+"/logo.png")
	require.NoError(t, err)
	assert.Equal(t, l.Hash, again.Hash)
	assert.Equal(t, int32(1), hits.Load(), "second fetch should come from cache")
}

func TestFetchRetriesServerErrors(t *testing.T) {
	body := pngBytes(t)
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write(body)
	}))
	defer srv.Close()

	l, err := quietFetcher(nil).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.NotNil(t, l.Image)
	assert.Equal(t, int32(2), hits.Load())
}

func TestFetchErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing":
			http.NotFound(w, r)
		case "/text":
			w.Write([]byte("not an image"))
		case "/slow":
			time.Sleep(300 * time.Millisecond)
			w.Write(pngBytes(t))
		}
	}))
	defer srv.Close()

	f := quietFetcher(nil)
	f.Timeout = 100 * time.Millisecond

	tests := []struct {
		name string
		url  string
		code errors.Code
	}{
		{"bad scheme", "ftp://example.com/logo.png", errors.ErrCodeInvalidURL},
		{"not found", srv.URL + "/missing", errors.ErrCodeNetwork},
		{"not an image", srv.URL + "/text", errors.ErrCodeInvalidFormat},
		{"timeout", srv.URL + "/slow", errors.ErrCodeTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.Fetch(context.Background(), tt.url)
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.GetCode(err), "err: %v", err)
		})
	}
}

func TestResolveSwallowsFailures(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	var buf bytes.Buffer
	f := NewFetcher(nil, log.New(&buf))
	assert.Nil(t, f.Resolve(context.Background(), srv.URL+"/logo.png"))
	assert.Contains(t, buf.String(), "logo unavailable")

	buf.Reset()
	assert.Nil(t, f.Resolve(context.Background(), ""))
	assert.Empty(t, buf.String())

	var none *Logo
	assert.Nil(t, none.ImageOrNil())
	assert.Empty(t, none.HashOrEmpty())
}
