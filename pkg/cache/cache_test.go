package cache

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit || data != nil {
		t.Error("NullCache should not store data")
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

// exercise runs the behaviour every backend shares.
func exercise(t *testing.T, c Cache) {
	t.Helper()
	ctx := context.Background()

	if _, hit, err := c.Get(ctx, "missing"); err != nil || hit {
		t.Fatalf("Get(missing) = hit %v, err %v; want miss", hit, err)
	}
	if err := c.Set(ctx, "qr:F4VJEUHOA707:256:2", []byte{0x89, 'P', 'N', 'G'}, TTLQR); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "qr:F4VJEUHOA707:256:2")
	if err != nil || !hit {
		t.Fatalf("Get = hit %v, err %v; want hit", hit, err)
	}
	if string(data) != "\x89PNG" {
		t.Errorf("Get data = %q", data)
	}
	if err := c.Delete(ctx, "qr:F4VJEUHOA707:256:2"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "qr:F4VJEUHOA707:256:2"); hit {
		t.Error("entry survived Delete")
	}
	if err := c.Delete(ctx, "never-set"); err != nil {
		t.Errorf("Delete(missing) error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	exercise(t, c)
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "k"); !hit {
		t.Fatal("fresh entry missed")
	}
	now = now.Add(2 * time.Minute)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry hit")
	}
	if _, err := os.Stat(c.path("k")); !os.IsNotExist(err) {
		t.Error("expired entry not removed")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	path := c.path("k")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("corrupt entry: hit %v, err %v; want silent miss", hit, err)
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatal(err)
		}
	}
	n, err := c.Clear()
	if err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	if n != 3 {
		t.Errorf("Clear removed %d entries, want 3", n)
	}
	entries, _ := os.ReadDir(c.Dir())
	if len(entries) != 0 {
		t.Errorf("%d leftovers after Clear", len(entries))
	}
}

func TestRedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	c := NewRedisCacheFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	defer c.Close()
	exercise(t, c)
}

func TestRedisCacheTTL(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	c, err := NewRedisCache(ctx, "redis://"+mr.Addr()+"/0")
	if err != nil {
		t.Fatalf("NewRedisCache error: %v", err)
	}
	defer c.Close()

	if err := c.Set(ctx, "logo", []byte("png"), TTLLogo); err != nil {
		t.Fatal(err)
	}
	if err := c.Set(ctx, "forever", []byte("x"), 0); err != nil {
		t.Fatal(err)
	}
	if ttl := mr.TTL("logo"); ttl != TTLLogo {
		t.Errorf("TTL = %v, want %v", ttl, TTLLogo)
	}
	mr.FastForward(TTLLogo + time.Second)
	if _, hit, _ := c.Get(ctx, "logo"); hit {
		t.Error("expired logo still cached")
	}
	if _, hit, _ := c.Get(ctx, "forever"); !hit {
		t.Error("ttl 0 entry expired")
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	tests := []struct {
		name    string
		opts    Options
		want    string
		wantErr bool
	}{
		{"default", Options{}, "*cache.NullCache", false},
		{"file", Options{Backend: BackendFile, Dir: t.TempDir()}, "*cache.FileCache", false},
		{"redis", Options{Backend: BackendRedis, RedisURL: "redis://" + mr.Addr()}, "*cache.RedisCache", false},
		{"redis without url", Options{Backend: BackendRedis}, "", true},
		{"unknown", Options{Backend: "memcached"}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Open(ctx, tt.opts)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Open() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			defer c.Close()
			if got := typeName(c); got != tt.want {
				t.Errorf("Open() = %s, want %s", got, tt.want)
			}
		})
	}
}

func typeName(c Cache) string {
	switch c.(type) {
	case *NullCache:
		return "*cache.NullCache"
	case *FileCache:
		return "*cache.FileCache"
	case *RedisCache:
		return "*cache.RedisCache"
	}
	return "unknown"
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}

	type in struct{ A, B string }
	a, _ := HashJSON(in{"x", "y"})
	b, _ := HashJSON(in{"x", "y"})
	c, _ := HashJSON(in{"y", "x"})
	if a != b || a == c {
		t.Error("HashJSON should follow field values")
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	if got := k.QRKey("F4VJEUHOA707", QRKeyOpts{Size: 256, Margin: 2}); got != "qr:F4VJEUHOA707:256:2" {
		t.Errorf("QRKey = %q", got)
	}

	p1 := k.PassKey("abc", PassKeyOpts{Template: "card", Format: "png"})
	p2 := k.PassKey("abc", PassKeyOpts{Template: "card", Format: "pdf"})
	p3 := k.PassKey("abc", PassKeyOpts{Template: "card", Format: "png", LogoHash: "l"})
	if p1 == p2 || p1 == p3 {
		t.Error("different PassKeyOpts should produce different keys")
	}
	if !strings.HasPrefix(p1, "pass:") {
		t.Errorf("PassKey = %q, want pass: prefix", p1)
	}

	if k.LogoKey("https://a.example/logo.png") == k.LogoKey("https://b.example/logo.png") {
		t.Error("different logo URLs should produce different keys")
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(NewDefaultKeyer(), "prod:")
	if got := scoped.QRKey("F4VJEUHOA707", QRKeyOpts{Size: 256, Margin: 2}); got != "prod:qr:F4VJEUHOA707:256:2" {
		t.Errorf("QRKey = %q", got)
	}
	if got := scoped.LogoKey("u"); !strings.HasPrefix(got, "prod:logo:") {
		t.Errorf("LogoKey = %q", got)
	}

	nilInner := NewScopedKeyer(nil, "p:")
	if got := nilInner.PassKey("h", PassKeyOpts{}); !strings.HasPrefix(got, "p:pass:") {
		t.Errorf("PassKey with nil inner = %q", got)
	}
}
