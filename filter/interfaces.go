package filter

import (
	"context"

	"github.com/s0up4200/marquee/tmdb"
)

// Filter defines the basic interface for item filters
type Filter interface {
	// Evaluate checks if an item matches the filter criteria
	Evaluate(item tmdb.Item) bool
}

// CompiledFilter represents a pre-compiled filter ready for evaluation
type CompiledFilter interface {
	Filter

	// Expression returns the original filter expression
	Expression() string
}

// Compiler compiles filter expressions into executable filters
type Compiler interface {
	// Compile parses and compiles a filter expression
	Compile(expression string) (CompiledFilter, error)
}

// CachingCompiler provides caching for compiled filters
type CachingCompiler interface {
	Compiler

	// Clear removes all cached filters
	Clear()

	// Size returns the number of cached filters
	Size() int
}

// BatchEvaluator evaluates multiple filters concurrently
type BatchEvaluator interface {
	// EvaluateBatch evaluates every filter against the same items
	EvaluateBatch(ctx context.Context, filters map[string]CompiledFilter, items []tmdb.Item) (map[string][]tmdb.Item, error)
}
