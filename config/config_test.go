package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/marquee/tmdb"
)

// isolateEnv clears the variables Load reads and points HOME at an empty
// directory so no real config file is picked up
func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, name := range append(append([]string{}, tokenEnv...), imageBaseEnv...) {
		t.Setenv(name, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	isolateEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Empty(t, cfg.TMDB.Token, "the token has no default")
	assert.Equal(t, tmdb.DefaultImageBase, cfg.TMDB.ImageBase)
	assert.Equal(t, tmdb.DefaultBaseURL, cfg.TMDB.BaseURL)
	assert.Equal(t, "en-US", cfg.TMDB.Language)
	assert.Equal(t, 30*time.Second, cfg.TMDB.Timeout)
	assert.Equal(t, "file", cfg.Storage.Driver)
	assert.NotEmpty(t, cfg.Storage.Path)
	assert.Equal(t, 400*time.Millisecond, cfg.Search.Debounce)
	assert.Equal(t, 2, cfg.Search.MinQueryLength)
	assert.Equal(t, "movie", cfg.Discover.MediaType)
	assert.Equal(t, "popularity.desc", cfg.Discover.SortKey)
	assert.True(t, cfg.Discover.IncludeUpcoming)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadFile(t *testing.T) {
	isolateEnv(t)

	path := writeConfig(t, `
tmdb:
  token: file-token
  image_base: https://cdn.example.com/t/p/
  timeout: 5s
storage:
  driver: sqlite
  path: /tmp/marquee.db
search:
  debounce: 250ms
  min_query_length: 3
filter:
  presets:
    acclaimed: VoteAverage >= 8
    recent: releasedAfter(yearsAgo(1))
logging:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "file-token", cfg.TMDB.Token)
	assert.Equal(t, "https://cdn.example.com/t/p", cfg.TMDB.ImageBase)
	assert.Equal(t, 5*time.Second, cfg.TMDB.Timeout)
	assert.Equal(t, "sqlite", cfg.Storage.KV().Driver)
	assert.Equal(t, 250*time.Millisecond, cfg.Search.Debounce)
	assert.Equal(t, 3, cfg.Search.MinQueryLength)
	assert.Equal(t, map[string]string{
		"acclaimed": "VoteAverage >= 8",
		"recent":    "releasedAfter(yearsAgo(1))",
	}, cfg.Filter.Presets)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestCredentialPrecedence(t *testing.T) {
	path := writeConfig(t, "tmdb:\n  token: file-token\n  image_base: https://file.example.com\n")

	tests := []struct {
		name          string
		env           map[string]string
		wantToken     string
		wantImageBase string
	}{
		{
			name:          "config file fallback",
			wantToken:     "file-token",
			wantImageBase: "https://file.example.com",
		},
		{
			name:          "generic environment beats file",
			env:           map[string]string{"TMDB_READ_TOKEN": "env-token", "TMDB_IMAGE_BASE": "https://env.example.com"},
			wantToken:     "env-token",
			wantImageBase: "https://env.example.com",
		},
		{
			name: "prefixed environment wins",
			env: map[string]string{
				"TMDB_READ_TOKEN":         "env-token",
				"MARQUEE_TMDB_TOKEN":      "marquee-token",
				"MARQUEE_TMDB_IMAGE_BASE": "https://marquee.example.com",
			},
			wantToken:     "marquee-token",
			wantImageBase: "https://marquee.example.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolateEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, tt.wantToken, cfg.TMDB.Token)
			assert.Equal(t, tt.wantImageBase, cfg.TMDB.ImageBase)
			assert.Equal(t, tt.wantToken, cfg.TMDB.Credentials().Token)
		})
	}
}

func TestLoadExplicitMissingFile(t *testing.T) {
	isolateEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Storage:  StorageConfig{Driver: "file", Path: "/tmp/marquee"},
			Search:   SearchConfig{Debounce: 400 * time.Millisecond, MinQueryLength: 2},
			Discover: DiscoverConfig{MediaType: "tv"},
			Logging:  LoggingConfig{Level: "info", Format: "console"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "empty token is allowed", mutate: func(c *Config) { c.TMDB.Token = "" }},
		{name: "memory storage needs no path", mutate: func(c *Config) { c.Storage = StorageConfig{Driver: "memory"} }},
		{
			name:    "unknown storage driver",
			mutate:  func(c *Config) { c.Storage.Driver = "redis" },
			wantErr: "invalid storage.driver: redis (must be 'file', 'sqlite' or 'memory')",
		},
		{
			name:    "sqlite without path",
			mutate:  func(c *Config) { c.Storage = StorageConfig{Driver: "sqlite"} },
			wantErr: "storage.path is required for the sqlite driver",
		},
		{
			name:    "negative debounce",
			mutate:  func(c *Config) { c.Search.Debounce = -time.Second },
			wantErr: "search.debounce must not be negative",
		},
		{
			name:    "zero min query length",
			mutate:  func(c *Config) { c.Search.MinQueryLength = 0 },
			wantErr: "search.min_query_length must be at least 1",
		},
		{
			name:    "person is not discoverable",
			mutate:  func(c *Config) { c.Discover.MediaType = "person" },
			wantErr: "invalid discover.media_type: person (must be 'movie' or 'tv')",
		},
		{
			name:    "bad logging level",
			mutate:  func(c *Config) { c.Logging.Level = "trace" },
			wantErr: "invalid logging level: trace",
		},
		{
			name:    "bad logging format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: "invalid logging format: xml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)

			err := validate(&cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantErr, err.Error())
		})
	}
}
