package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/s0up4200/marquee/kv"
	"github.com/s0up4200/marquee/tmdb"
)

// Environment variables checked for the catalog settings, in order
var (
	tokenEnv     = []string{"MARQUEE_TMDB_TOKEN", "TMDB_READ_TOKEN"}
	imageBaseEnv = []string{"MARQUEE_TMDB_IMAGE_BASE", "TMDB_IMAGE_BASE"}
)

// Load loads the configuration. Values come from the environment (including
// a .env file in the working directory), then the config file, then
// defaults. A missing config file is only an error when configPath is set.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env: %w", err)
	}

	v := viper.New()

	// Set default values
	setDefaults(v)

	v.SetEnvPrefix("MARQUEE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv(append([]string{"tmdb.token"}, tokenEnv...)...); err != nil {
		return nil, fmt.Errorf("error binding environment: %w", err)
	}
	if err := v.BindEnv(append([]string{"tmdb.image_base"}, imageBaseEnv...)...); err != nil {
		return nil, fmt.Errorf("error binding environment: %w", err)
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Look for config in standard locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		// Check current directory first
		v.AddConfigPath(".")

		// Check home directory
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".marquee"))
		}

		// Check /etc
		v.AddConfigPath("/etc/marquee/")
	}

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	cfg.TMDB.Token = strings.TrimSpace(cfg.TMDB.Token)
	cfg.TMDB.ImageBase = strings.TrimRight(strings.TrimSpace(cfg.TMDB.ImageBase), "/")
	if cfg.TMDB.ImageBase == "" {
		cfg.TMDB.ImageBase = tmdb.DefaultImageBase
	}

	// Validate configuration
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// ConfigFileUsed reports the config file Load would read for configPath, or
// an empty string when none is found
func ConfigFileUsed(configPath string) string {
	if configPath != "" {
		return configPath
	}
	candidates := []string{"config.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".marquee", "config.yaml"))
	}
	candidates = append(candidates, "/etc/marquee/config.yaml")

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// defaultStoragePath returns ~/.marquee/data, or a relative path when the
// home directory is unknown
func defaultStoragePath() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".marquee", "data")
	}
	return filepath.Join(".marquee", "data")
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// TMDB defaults; the token has none
	v.SetDefault("tmdb.image_base", tmdb.DefaultImageBase)
	v.SetDefault("tmdb.base_url", tmdb.DefaultBaseURL)
	v.SetDefault("tmdb.language", tmdb.DefaultLanguage)
	v.SetDefault("tmdb.timeout", "30s")

	// Storage defaults
	v.SetDefault("storage.driver", kv.DriverFile)
	v.SetDefault("storage.path", defaultStoragePath())

	// Search defaults
	v.SetDefault("search.debounce", "400ms")
	v.SetDefault("search.min_query_length", 2)

	// Discover defaults
	v.SetDefault("discover.media_type", string(tmdb.MediaTypeMovie))
	v.SetDefault("discover.sort_key", "popularity.desc")
	v.SetDefault("discover.include_upcoming", true)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)
	v.SetDefault("logging.max_size_mb", 10)
	v.SetDefault("logging.max_backups", 3)
}

// validate checks if the configuration is valid. A missing token is not an
// error here; catalog calls report it.
func validate(cfg *Config) error {
	if cfg.TMDB.Timeout < 0 {
		return fmt.Errorf("tmdb.timeout must not be negative")
	}

	// Validate storage
	switch cfg.Storage.Driver {
	case kv.DriverFile, kv.DriverSQLite:
		if cfg.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for the %s driver", cfg.Storage.Driver)
		}
	case kv.DriverMemory:
	default:
		return fmt.Errorf("invalid storage.driver: %s (must be 'file', 'sqlite' or 'memory')", cfg.Storage.Driver)
	}

	// Validate search
	if cfg.Search.Debounce < 0 {
		return fmt.Errorf("search.debounce must not be negative")
	}
	if cfg.Search.MinQueryLength < 1 {
		return fmt.Errorf("search.min_query_length must be at least 1")
	}

	// Validate discover defaults
	if cfg.Discover.MediaType != "" {
		mt, err := tmdb.ParseMediaType(cfg.Discover.MediaType)
		if err != nil || !mt.IsTitle() {
			return fmt.Errorf("invalid discover.media_type: %s (must be 'movie' or 'tv')", cfg.Discover.MediaType)
		}
	}

	// Validate logging level
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	}

	// Validate logging format
	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}

	return nil
}
