// Package kv provides the string-keyed blob persistence used for local state
// such as the watchlist.
package kv

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/afero"
)

// Store is a string-keyed record store. Values are opaque.
type Store interface {
	// Get returns the value stored under key, or nil and no error when the
	// key is absent
	Get(ctx context.Context, key string) ([]byte, error)
	// Set replaces the value stored under key
	Set(ctx context.Context, key string, value []byte) error
	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
	// Close releases the resources held by the store
	Close() error
}

// Supported drivers
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// Config selects and locates a store
type Config struct {
	Driver string
	// Directory for the file driver, database file for the sqlite driver
	Path string
}

// ErrInvalidKey is returned for keys that are empty or cannot be used as a
// file name
var ErrInvalidKey = errors.New("invalid key")

// Open creates the store described by cfg
func Open(cfg Config) (Store, error) {
	switch strings.ToLower(cfg.Driver) {
	case DriverFile, "":
		if cfg.Path == "" {
			return nil, fmt.Errorf("storage path is required for the %s driver", DriverFile)
		}
		return NewFileStore(afero.NewOsFs(), cfg.Path)
	case DriverSQLite:
		if cfg.Path == "" {
			return nil, fmt.Errorf("storage path is required for the %s driver", DriverSQLite)
		}
		return NewSQLiteStore(cfg.Path)
	case DriverMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q (must be 'file', 'sqlite' or 'memory')", cfg.Driver)
	}
}

func validateKey(key string) error {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}
