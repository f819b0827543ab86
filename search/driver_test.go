package search

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/marquee/session"
	"github.com/s0up4200/marquee/tmdb"
)

// fakeClock fires scheduled tasks only when advanced
type fakeClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	wasActive := !t.stopped && !t.fired
	t.stopped = true
	return wasActive
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now + d, fn: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && t.at <= c.now {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	for _, t := range due {
		t.fn()
	}
}

type searchCall struct {
	Mode  tmdb.SearchMode
	Query string
	Page  int
}

// fakeSearcher records calls and answers with one item per page
type fakeSearcher struct {
	mu      sync.Mutex
	calls   []searchCall
	block   map[string]chan struct{}
	started chan string
}

func (f *fakeSearcher) Search(_ context.Context, mode tmdb.SearchMode, query string, page int) (*tmdb.Page, error) {
	f.mu.Lock()
	f.calls = append(f.calls, searchCall{Mode: mode, Query: query, Page: page})
	gate := f.block[query]
	f.mu.Unlock()

	if gate != nil {
		if f.started != nil {
			f.started <- query
		}
		<-gate
	}

	return &tmdb.Page{
		Page:       page,
		Results:    []tmdb.Item{{ID: page, MediaType: tmdb.MediaTypeMovie, Title: fmt.Sprintf("%s %d", query, page)}},
		TotalPages: 2,
	}, nil
}

func (f *fakeSearcher) Calls() []searchCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]searchCall(nil), f.calls...)
}

func newTestDriver(t *testing.T, searcher Searcher) (*Driver, *fakeClock) {
	t.Helper()
	clock := &fakeClock{}
	d := NewDriver(context.Background(), searcher, zerolog.Nop(), WithScheduler(clock.AfterFunc))
	t.Cleanup(d.Close)
	return d, clock
}

func TestDebounceIssuesOneSearch(t *testing.T) {
	searcher := &fakeSearcher{}
	d, clock := newTestDriver(t, searcher)

	for _, q := range []string{"a", "ab", "abc"} {
		d.SetQuery(q)
		clock.Advance(100 * time.Millisecond)
	}
	assert.Empty(t, searcher.Calls(), "nothing fires inside the window")

	clock.Advance(time.Second)

	assert.Equal(t, []searchCall{{Mode: tmdb.SearchTitles, Query: "abc", Page: 1}}, searcher.Calls())

	state := d.State()
	assert.Equal(t, "abc", state.Query)
	assert.Equal(t, session.StatusIdle, state.Status)
	assert.True(t, state.HasMore)
	require.Len(t, state.Items, 1)
}

func TestQueryIsCapturedWhenArmed(t *testing.T) {
	searcher := &fakeSearcher{}
	d, clock := newTestDriver(t, searcher)

	d.SetQuery("  dune ")
	clock.Advance(DefaultDelay)

	assert.Equal(t, []searchCall{{Mode: tmdb.SearchTitles, Query: "dune", Page: 1}}, searcher.Calls())
}

func TestShortQueryClearsResults(t *testing.T) {
	searcher := &fakeSearcher{}
	d, clock := newTestDriver(t, searcher)

	d.SetQuery("alien")
	clock.Advance(DefaultDelay)
	require.Len(t, d.State().Items, 1)

	var published []Result
	d.Subscribe(func(r Result) { published = append(published, r) })

	d.SetQuery("a")
	assert.Empty(t, d.State().Items)
	assert.False(t, d.Pending())
	require.Len(t, published, 1)
	assert.Empty(t, published[0].Items)

	// A pending search is dropped too
	d.SetQuery("alien")
	d.SetQuery(" ")
	clock.Advance(time.Second)
	assert.Len(t, searcher.Calls(), 1)
}

func TestModeChangeRetriggers(t *testing.T) {
	searcher := &fakeSearcher{}
	d, clock := newTestDriver(t, searcher)

	d.SetQuery("nolan")
	clock.Advance(DefaultDelay)

	d.SetMode(tmdb.SearchPeople)
	assert.True(t, d.Pending())
	clock.Advance(DefaultDelay)

	assert.Equal(t, []searchCall{
		{Mode: tmdb.SearchTitles, Query: "nolan", Page: 1},
		{Mode: tmdb.SearchPeople, Query: "nolan", Page: 1},
	}, searcher.Calls())
	assert.Equal(t, tmdb.SearchPeople, d.State().Mode)
}

func TestModeChangeInsideWindowReplacesPendingSearch(t *testing.T) {
	searcher := &fakeSearcher{}
	d, clock := newTestDriver(t, searcher)

	d.SetQuery("nolan")
	clock.Advance(100 * time.Millisecond)
	d.SetMode(tmdb.SearchPeople)
	clock.Advance(time.Second)

	assert.Equal(t, []searchCall{{Mode: tmdb.SearchPeople, Query: "nolan", Page: 1}}, searcher.Calls())
}

func TestSupersededSearchIsDiscarded(t *testing.T) {
	release := make(chan struct{})
	searcher := &fakeSearcher{
		block:   map[string]chan struct{}{"slow": release},
		started: make(chan string, 1),
	}
	d, clock := newTestDriver(t, searcher)

	d.SetQuery("slow")
	done := make(chan struct{})
	go func() {
		defer close(done)
		clock.Advance(DefaultDelay)
	}()
	require.Equal(t, "slow", <-searcher.started)

	d.SetQuery("fast")
	clock.Advance(DefaultDelay)
	close(release)
	<-done

	state := d.State()
	assert.Equal(t, "fast", state.Query)
	require.Len(t, state.Items, 1)
	assert.Equal(t, "fast 1", state.Items[0].Title)
}

func TestLoadMore(t *testing.T) {
	ctx := context.Background()
	searcher := &fakeSearcher{}
	d, clock := newTestDriver(t, searcher)

	assert.ErrorIs(t, d.LoadMore(ctx), session.ErrNoMorePages)

	d.SetQuery("matrix")
	clock.Advance(DefaultDelay)

	require.NoError(t, d.LoadMore(ctx))
	state := d.State()
	assert.Len(t, state.Items, 2)
	assert.False(t, state.HasMore)
	assert.Equal(t, searchCall{Mode: tmdb.SearchTitles, Query: "matrix", Page: 2}, searcher.Calls()[1])

	assert.ErrorIs(t, d.LoadMore(ctx), session.ErrNoMorePages)
}

func TestFlush(t *testing.T) {
	searcher := &fakeSearcher{}
	d, _ := newTestDriver(t, searcher)

	assert.False(t, d.Flush())

	d.SetQuery("heat")
	assert.True(t, d.Flush())
	assert.Len(t, searcher.Calls(), 1)
	assert.False(t, d.Pending())
}

func TestCloseStopsPendingSearch(t *testing.T) {
	searcher := &fakeSearcher{}
	d, clock := newTestDriver(t, searcher)

	d.SetQuery("heat")
	d.Close()
	clock.Advance(time.Second)

	assert.Empty(t, searcher.Calls())
	assert.ErrorIs(t, d.LoadMore(context.Background()), session.ErrClosed)
}

func TestDeferred(t *testing.T) {
	clock := &fakeClock{}
	d := NewDeferred(clock.AfterFunc)

	var runs []string
	d.Arm(time.Second, func() { runs = append(runs, "first") })
	d.Arm(time.Second, func() { runs = append(runs, "second") })
	assert.True(t, d.Pending())

	clock.Advance(time.Second)
	assert.Equal(t, []string{"second"}, runs)
	assert.False(t, d.Pending())

	d.Arm(time.Second, func() { runs = append(runs, "third") })
	assert.True(t, d.Cancel())
	assert.False(t, d.Cancel())
	clock.Advance(time.Second)
	assert.Equal(t, []string{"second"}, runs)
}

func TestDeferredStaleFireIsIgnored(t *testing.T) {
	var captured func()
	d := NewDeferred(func(_ time.Duration, f func()) Timer {
		captured = f
		return stubTimer{}
	})

	var runs int
	d.Arm(time.Second, func() { runs++ })
	stale := captured
	d.Arm(time.Second, func() { runs += 10 })

	// The first timer fires even though Stop was requested
	stale()
	assert.Equal(t, 0, runs)

	captured()
	assert.Equal(t, 10, runs)
}

type stubTimer struct{}

func (stubTimer) Stop() bool { return false }

func TestWaitForSearchInFlight(t *testing.T) {
	gate := make(chan struct{})
	searcher := &fakeSearcher{
		block:   map[string]chan struct{}{"heat": gate},
		started: make(chan string, 1),
	}
	d, clock := newTestDriver(t, searcher)

	require.NoError(t, d.Wait(context.Background()), "nothing running")

	d.SetQuery("heat")
	require.NoError(t, d.Wait(context.Background()), "an armed search is not waited for")

	go clock.Advance(DefaultDelay)
	require.Equal(t, "heat", <-searcher.started)

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, d.Wait(cancelled), context.Canceled)

	waited := make(chan error, 1)
	go func() { waited <- d.Wait(context.Background()) }()

	select {
	case <-waited:
		t.Fatal("Wait returned while the search was in flight")
	case <-time.After(20 * time.Millisecond):
	}

	close(gate)
	select {
	case err := <-waited:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Wait did not return after the search finished")
	}

	state := d.State()
	assert.Equal(t, "heat", state.Query)
	assert.Equal(t, session.StatusIdle, state.Status)
	assert.Len(t, state.Items, 1)
}
