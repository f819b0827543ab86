package filter

import (
	"context"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/s0up4200/marquee/tmdb"
)

// EvaluatorOption configures an evaluator
type EvaluatorOption func(*ConcurrentEvaluator)

// WithWorkers sets the number of worker goroutines
func WithWorkers(workers int) EvaluatorOption {
	return func(e *ConcurrentEvaluator) {
		if workers > 0 {
			e.workerCount = workers
		}
	}
}

// WithBatchSize sets the batch size for chunked processing
func WithBatchSize(size int) EvaluatorOption {
	return func(e *ConcurrentEvaluator) {
		if size > 0 {
			e.batchSize = size
		}
	}
}

// ConcurrentEvaluator evaluates filters over item lists with bounded
// concurrency
type ConcurrentEvaluator struct {
	workerCount int
	batchSize   int
}

// NewConcurrentEvaluator creates a new concurrent evaluator
func NewConcurrentEvaluator(opts ...EvaluatorOption) *ConcurrentEvaluator {
	e := &ConcurrentEvaluator{
		workerCount: runtime.GOMAXPROCS(0),
		batchSize:   100,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Evaluate evaluates a single filter against all items, keeping their order
func (e *ConcurrentEvaluator) Evaluate(ctx context.Context, filter CompiledFilter, items []tmdb.Item) ([]tmdb.Item, error) {
	if len(items) == 0 {
		return []tmdb.Item{}, nil
	}

	// For small lists, don't bother with concurrency
	if len(items) < e.batchSize {
		return Apply(filter, items), nil
	}

	return e.evaluateConcurrent(ctx, filter, items)
}

// EvaluateBatch evaluates multiple filters against the same items
// concurrently
func (e *ConcurrentEvaluator) EvaluateBatch(ctx context.Context, filters map[string]CompiledFilter, items []tmdb.Item) (map[string][]tmdb.Item, error) {
	results := make(map[string][]tmdb.Item, len(filters))
	if len(filters) == 0 {
		return results, nil
	}

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workerCount)

	for name, filter := range filters {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			matches, err := e.Evaluate(ctx, filter, items)
			if err != nil {
				return err
			}

			mu.Lock()
			results[name] = matches
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

// evaluateConcurrent splits items into chunks and evaluates them in parallel
func (e *ConcurrentEvaluator) evaluateConcurrent(ctx context.Context, filter CompiledFilter, items []tmdb.Item) ([]tmdb.Item, error) {
	chunkSize := max(len(items)/e.workerCount, e.batchSize)
	chunks := (len(items) + chunkSize - 1) / chunkSize
	results := make([][]tmdb.Item, chunks)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workerCount)

	for index := range chunks {
		start := index * chunkSize
		end := min(start+chunkSize, len(items))

		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[index] = Apply(filter, items[start:end])
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Combine results in order
	total := 0
	for _, chunk := range results {
		total += len(chunk)
	}

	matches := make([]tmdb.Item, 0, total)
	for _, chunk := range results {
		matches = append(matches, chunk...)
	}

	return matches, nil
}
