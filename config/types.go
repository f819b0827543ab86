package config

import (
	"time"

	"github.com/s0up4200/marquee/kv"
	"github.com/s0up4200/marquee/tmdb"
)

// Config represents the complete configuration structure
type Config struct {
	TMDB     TMDBConfig     `mapstructure:"tmdb"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Search   SearchConfig   `mapstructure:"search"`
	Discover DiscoverConfig `mapstructure:"discover"`
	Filter   FilterConfig   `mapstructure:"filter"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// TMDBConfig holds the catalog API connection details
type TMDBConfig struct {
	Token     string        `mapstructure:"token"`
	ImageBase string        `mapstructure:"image_base"`
	BaseURL   string        `mapstructure:"base_url"`
	Language  string        `mapstructure:"language"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// Credentials returns the values the catalog client needs
func (c TMDBConfig) Credentials() tmdb.Credentials {
	return tmdb.Credentials{Token: c.Token, ImageBase: c.ImageBase}
}

// StorageConfig selects where local state such as the watchlist is kept
type StorageConfig struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
}

// KV converts the storage settings for kv.Open
func (s StorageConfig) KV() kv.Config {
	return kv.Config{Driver: s.Driver, Path: s.Path}
}

// SearchConfig contains the debounce settings of interactive search
type SearchConfig struct {
	Debounce       time.Duration `mapstructure:"debounce"`
	MinQueryLength int           `mapstructure:"min_query_length"`
}

// DiscoverConfig contains the default discover filters
type DiscoverConfig struct {
	MediaType       string `mapstructure:"media_type"`
	SortKey         string `mapstructure:"sort_key"`
	IncludeUpcoming bool   `mapstructure:"include_upcoming"`
}

// FilterConfig contains named filter expressions
type FilterConfig struct {
	Presets map[string]string `mapstructure:"presets"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
	// File enables a rotated log file next to stderr output
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}
