// Package search drives a paginated search from a query that is still being
// typed. Query and mode changes are debounced; only the last value armed
// before the delay elapses is searched.
package search

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/s0up4200/marquee/session"
	"github.com/s0up4200/marquee/tmdb"
)

const (
	// DefaultDelay is the quiet period before a search is issued
	DefaultDelay = 400 * time.Millisecond
	// DefaultMinQueryLength is the shortest trimmed query that is searched
	DefaultMinQueryLength = 2
)

// Searcher is the part of the catalog client the driver needs
type Searcher interface {
	Search(ctx context.Context, mode tmdb.SearchMode, query string, page int) (*tmdb.Page, error)
}

// Result is the search state published to subscribers
type Result struct {
	Query string
	Mode  tmdb.SearchMode
	session.State
}

// Option configures a Driver.
type Option func(*Driver)

// WithDelay sets the debounce delay.
func WithDelay(delay time.Duration) Option {
	return func(d *Driver) {
		if delay > 0 {
			d.delay = delay
		}
	}
}

// WithMinQueryLength sets the shortest trimmed query that triggers a search.
func WithMinQueryLength(n int) Option {
	return func(d *Driver) {
		if n > 0 {
			d.minLength = n
		}
	}
}

// WithScheduler sets the scheduler used for the debounce timer.
func WithScheduler(schedule Scheduler) Option {
	return func(d *Driver) {
		d.deferred = NewDeferred(schedule)
	}
}

// Driver debounces query input into search sessions
type Driver struct {
	searcher  Searcher
	logger    zerolog.Logger
	delay     time.Duration
	minLength int
	deferred  *Deferred

	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	query       string
	mode        tmdb.SearchMode
	active      Result
	session     *session.Session
	closed      bool
	subscribers map[int]func(Result)
	nextID      int
}

// NewDriver creates a driver whose searches run under ctx until Close
func NewDriver(ctx context.Context, searcher Searcher, logger zerolog.Logger, opts ...Option) *Driver {
	ctx, cancel := context.WithCancel(ctx)

	d := &Driver{
		searcher:    searcher,
		logger:      logger,
		delay:       DefaultDelay,
		minLength:   DefaultMinQueryLength,
		deferred:    NewDeferred(nil),
		ctx:         ctx,
		cancel:      cancel,
		mode:        tmdb.SearchTitles,
		subscribers: make(map[int]func(Result)),
	}
	for _, opt := range opts {
		opt(d)
	}

	d.session = session.New(logger)
	d.active = Result{Mode: d.mode, State: d.session.Snapshot()}
	return d
}

// SetQuery records the current query text and restarts the debounce cycle
func (d *Driver) SetQuery(query string) {
	d.mu.Lock()
	d.query = query
	publish := d.triggerLocked()
	d.mu.Unlock()

	publish()
}

// SetMode switches between title and people search and restarts the
// debounce cycle with the current query
func (d *Driver) SetMode(mode tmdb.SearchMode) {
	d.mu.Lock()
	d.mode = mode
	publish := d.triggerLocked()
	d.mu.Unlock()

	publish()
}

// triggerLocked cancels the pending search and either clears the results or
// arms a new search. The returned function publishes any resulting change
// and must be called without the lock.
func (d *Driver) triggerLocked() func() {
	d.deferred.Cancel()
	if d.closed {
		return func() {}
	}

	query := strings.TrimSpace(d.query)
	mode := d.mode

	if utf8.RuneCountInString(query) < d.minLength {
		return d.resetLocked(query, mode)
	}

	d.logger.Debug().
		Str("query", query).
		Str("mode", string(mode)).
		Dur("delay", d.delay).
		Msg("Search armed")

	// The query and mode are captured now, not when the timer fires
	d.deferred.Arm(d.delay, func() {
		d.fire(query, mode)
	})
	return func() {}
}

// resetLocked swaps in an empty session without searching
func (d *Driver) resetLocked(query string, mode tmdb.SearchMode) func() {
	old := d.session
	d.session = session.New(d.logger)
	d.active = Result{Query: query, Mode: mode, State: d.session.Snapshot()}
	old.Close()

	result, subs := d.active, d.subscribersLocked()
	return func() { notify(subs, result) }
}

// fire starts a fresh session for query. The previous session is closed so
// a search still in flight for an older query is discarded.
func (d *Driver) fire(query string, mode tmdb.SearchMode) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}

	old := d.session
	s := session.New(d.logger)
	d.session = s
	d.active = Result{Query: query, Mode: mode, State: s.Snapshot()}
	s.Subscribe(func(state session.State) {
		d.publish(s, Result{Query: query, Mode: mode, State: state})
	})
	d.mu.Unlock()

	old.Close()

	d.logger.Debug().Str("query", query).Str("mode", string(mode)).Msg("Running search")

	err := s.LoadFirstPage(d.ctx, d.queryFunc(query, mode))
	if err != nil && !errors.Is(err, session.ErrClosed) {
		d.logger.Warn().Err(err).Str("query", query).Msg("Search failed")
	}
}

func (d *Driver) queryFunc(query string, mode tmdb.SearchMode) session.QueryFunc {
	return func(ctx context.Context, page int) (*tmdb.Page, error) {
		return d.searcher.Search(ctx, mode, query, page)
	}
}

// publish forwards a session state change if s is still the active session
func (d *Driver) publish(s *session.Session, result Result) {
	d.mu.Lock()
	if d.session != s || d.closed {
		d.mu.Unlock()
		return
	}
	d.active = result
	subs := d.subscribersLocked()
	d.mu.Unlock()

	notify(subs, result)
}

// LoadMore appends the next page of the active search
func (d *Driver) LoadMore(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return session.ErrClosed
	}
	s, query, mode := d.session, d.active.Query, d.active.Mode
	d.mu.Unlock()

	if query == "" {
		return session.ErrNoMorePages
	}
	return s.LoadNextPage(ctx, d.queryFunc(query, mode))
}

// Flush runs a pending search immediately instead of waiting for the delay.
// It reports whether a search was pending.
func (d *Driver) Flush() bool {
	return d.deferred.Flush()
}

// Wait blocks until a search that has already fired has loaded its first
// page, or ctx is done. A search still waiting for the delay is not
// waited for; call Flush first to run it.
func (d *Driver) Wait(ctx context.Context) error {
	return d.deferred.Wait(ctx)
}

// Pending reports whether a search is armed and waiting for the delay
func (d *Driver) Pending() bool {
	return d.deferred.Pending()
}

// State returns the active search and its results
func (d *Driver) State() Result {
	d.mu.Lock()
	s, result := d.session, d.active
	d.mu.Unlock()

	result.State = s.Snapshot()
	return result
}

// Subscribe registers fn to receive every change of the active search. The
// returned function removes the subscription.
func (d *Driver) Subscribe(fn func(Result)) (unsubscribe func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	id := d.nextID
	d.nextID++
	d.subscribers[id] = fn

	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		delete(d.subscribers, id)
	}
}

func (d *Driver) subscribersLocked() []func(Result) {
	subs := make([]func(Result), 0, len(d.subscribers))
	for _, fn := range d.subscribers {
		subs = append(subs, fn)
	}
	return subs
}

func notify(subs []func(Result), result Result) {
	for _, fn := range subs {
		fn(result)
	}
}

// Close cancels the pending search and discards any search in flight
func (d *Driver) Close() {
	d.deferred.Cancel()

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	s := d.session
	clear(d.subscribers)
	d.mu.Unlock()

	s.Close()
	d.cancel()
}
