package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/eventpass/pkg/errors"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "eventpass.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "card", cfg.Pass.Template)
	assert.Equal(t, "Asia/Kolkata", cfg.Pass.Timezone)
	assert.Equal(t, 5*time.Second, cfg.Pass.LogoTimeout)
	assert.Equal(t, StoreMemory, cfg.Store.Backend)
}

func TestLoad(t *testing.T) {
	path := writeFile(t, `
[server]
addr = "127.0.0.1:9000"

[pass]
logo_url = "https://example.com/logo.png"
logo_timeout = "2s"

[cache]
backend = "file"
dir = "/tmp/eventpass"

[[events]]
id = "summit-2025"
name = "Annual Tech Summit"
start = 2025-03-01T09:00:00Z
end = 2025-03-01T17:00:00Z
venue = "Convention Hall A"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, 2*time.Second, cfg.Pass.LogoTimeout)
	assert.Equal(t, "card", cfg.Pass.Template, "unset keys keep defaults")
	assert.Equal(t, "file", cfg.Cache.Backend)
	require.Len(t, cfg.Events, 1)
	assert.Equal(t, "summit-2025", cfg.Events[0].ID)
	assert.Equal(t, time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC), cfg.Events[0].Start.UTC())

	opts := cfg.PassOptions()
	assert.Equal(t, "https://example.com/logo.png", opts.LogoURL)
	assert.Equal(t, "/tmp/eventpass", cfg.CacheOptions().Dir)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"syntax", "[server\naddr = 1"},
		{"unknown key", "[server]\nport = 8080"},
		{"bad template", "[pass]\ntemplate = \"poster\""},
		{"bad timezone", "[pass]\ntimezone = \"Mars/Base\""},
		{"bad logo url", "[pass]\nlogo_url = \"ftp://x\""},
		{"redis without url", "[cache]\nbackend = \"redis\""},
		{"unknown cache", "[cache]\nbackend = \"memcached\""},
		{"mongo without uri", "[store]\nbackend = \"mongo\""},
		{"duplicate event", "[[events]]\nid = \"a\"\nname = \"A\"\n[[events]]\nid = \"a\"\nname = \"B\""},
		{"event without name", "[[events]]\nid = \"a\""},
		{"bad log level", "[log]\nlevel = \"chatty\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.content))
			assert.True(t, errors.Is(err, errors.ErrCodeInvalidConfig), "got %v", err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"EVENTPASS_ADDR":             ":7000",
		"EVENTPASS_CACHE":            "redis",
		"EVENTPASS_REDIS_URL":        " redis://localhost:6379/1 ",
		"EVENTPASS_DISPATCH_TIMEOUT": "30s",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(lookup))
	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.Equal(t, "redis", cfg.Cache.Backend)
	assert.Equal(t, "redis://localhost:6379/1", cfg.Cache.RedisURL)
	assert.Equal(t, 30*time.Second, cfg.Delivery.Timeout)
	assert.Equal(t, "info", cfg.Log.Level, "untouched")

	env["EVENTPASS_LOGO_TIMEOUT"] = "soon"
	assert.True(t, errors.Is(cfg.ApplyEnv(lookup), errors.ErrCodeInvalidConfig))
}

func TestLoadEnvOverridesFile(t *testing.T) {
	t.Setenv("EVENTPASS_ADDR", ":7100")
	cfg, err := Load(writeFile(t, "[server]\naddr = \":9000\""))
	require.NoError(t, err)
	assert.Equal(t, ":7100", cfg.Server.Addr)
}

func TestEncodeRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Cache.Backend = "file"
	text, err := cfg.Encode()
	require.NoError(t, err)

	back, err := Load(writeFile(t, text))
	require.NoError(t, err)
	assert.Equal(t, cfg.Cache, back.Cache)
	assert.Equal(t, cfg.Pass.LogoTimeout, back.Pass.LogoTimeout)
}
