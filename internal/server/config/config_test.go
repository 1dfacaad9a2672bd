package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {

	tests := []struct {
		expected *Config
		name     string
		args     []string
	}{
		{name: "all flags", args: []string{"cmd", "-a", ":9090", "-d", "postgres://h/db", "-r", "redis:6379", "-f", "creds.json"},
			expected: &Config{EndpointAddrHTTP: ":9090", DatabaseDSN: "postgres://h/db", RedisAddr: "redis:6379", FCMCredentialsFile: "creds.json"}},
		{name: "no flags leave zero values", args: []string{"cmd"},
			expected: &Config{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			origArgs := os.Args
			t.Cleanup(func() { os.Args = origArgs })
			os.Args = tt.args

			config := &Config{}
			require.NotPanics(t, func() { parseFlags(config) })
			assert.Empty(t, cmp.Diff(config, tt.expected))
		})
	}
}

func Test_parseJson_OverlaysConfig(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := filepath.Join(t.TempDir(), "cfg.json")
	b, err := json.Marshal(map[string]any{
		"endpoint_addr_http": ":7070",
		"redis_addr":         "redis:6379",
		"s3_bucket":          "media-prod",
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))

	os.Args = []string{"testbin", "-c", path}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)

	assert.Equal(t, ":7070", cfg.EndpointAddrHTTP)
	assert.Equal(t, "redis:6379", cfg.RedisAddr)
	assert.Equal(t, "media-prod", cfg.S3Bucket)
	// untouched fields keep their defaults
	assert.Equal(t, "vibecast.events", cfg.FeedStream)
}
