// Package session accumulates the pages of one browse or search query.
//
// A Session owns the loaded items, the page cursor and the load status of a
// single query. Only one load runs at a time; a load requested while another
// is outstanding is rejected with ErrBusy. Changing the query means creating
// a new Session, never mutating the filters of an existing one.
package session

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"github.com/s0up4200/marquee/tmdb"
)

var (
	// ErrBusy is returned when a load is requested while another is in flight
	// or the session is not idle
	ErrBusy = errors.New("session is busy")
	// ErrNoMorePages is returned by LoadNextPage once the last page is loaded
	ErrNoMorePages = errors.New("no more pages")
	// ErrClosed is returned once the session has been closed
	ErrClosed = errors.New("session is closed")
	// ErrNothingToRetry is returned by Retry when the last load did not fail
	ErrNothingToRetry = errors.New("nothing to retry")
)

// Status is the load state of a session
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusLoadingMore
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusLoadingMore:
		return "loadingMore"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// State is a point-in-time copy of a session
type State struct {
	Items     []tmdb.Item
	Page      int
	HasMore   bool
	Status    Status
	LastError string
}

// QueryFunc fetches one page of the session's query
type QueryFunc func(ctx context.Context, page int) (*tmdb.Page, error)

type loadMode int

const (
	modeReplace loadMode = iota
	modeAppend
)

// Session is one forward-only paginated result set
type Session struct {
	mu          sync.Mutex
	state       State
	closed      bool
	failed      loadMode
	subscribers map[int]func(State)
	nextID      int
	logger      zerolog.Logger
}

// New creates an idle, empty session
func New(logger zerolog.Logger) *Session {
	return &Session{
		state:       State{Page: 1},
		subscribers: make(map[int]func(State)),
		logger:      logger,
	}
}

// LoadFirstPage fetches page 1 and replaces the items with it. It is
// accepted from the idle and error states. On failure the items are
// cleared and the fetch error is returned.
func (s *Session) LoadFirstPage(ctx context.Context, fn QueryFunc) error {
	s.mu.Lock()
	if err := s.gateLocked(modeReplace); err != nil {
		s.mu.Unlock()
		return err
	}
	return s.run(ctx, fn, modeReplace)
}

// LoadNextPage fetches the page after the current one and appends it. It
// is only accepted from the idle state while more pages remain. On failure
// the loaded items are kept and the fetch error is returned.
func (s *Session) LoadNextPage(ctx context.Context, fn QueryFunc) error {
	s.mu.Lock()
	if err := s.gateLocked(modeAppend); err != nil {
		s.mu.Unlock()
		return err
	}
	return s.run(ctx, fn, modeAppend)
}

// Retry repeats whichever load last failed
func (s *Session) Retry(ctx context.Context, fn QueryFunc) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.state.Status != StatusError {
		s.mu.Unlock()
		return ErrNothingToRetry
	}
	return s.run(ctx, fn, s.failed)
}

func (s *Session) gateLocked(mode loadMode) error {
	if s.closed {
		return ErrClosed
	}

	switch s.state.Status {
	case StatusLoading, StatusLoadingMore:
		return ErrBusy
	}

	if mode == modeAppend {
		if s.state.Status != StatusIdle {
			return ErrBusy
		}
		if !s.state.HasMore {
			return ErrNoMorePages
		}
	}

	return nil
}

// run performs one load. It must be called with s.mu held and releases it
// before the fetch.
func (s *Session) run(ctx context.Context, fn QueryFunc, mode loadMode) error {
	target := 1
	next := StatusLoading
	if mode == modeAppend {
		target = s.state.Page + 1
		next = StatusLoadingMore
	}

	s.transitionLocked(next)
	s.state.LastError = ""
	snapshot, subs := s.snapshotLocked(), s.subscribersLocked()
	s.mu.Unlock()
	notify(subs, snapshot)

	result, err := fn(ctx, target)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.logger.Debug().Int("page", target).Msg("Discarding result for closed session")
		return ErrClosed
	}

	if err != nil {
		if mode == modeReplace {
			s.state.Items = nil
			s.state.Page = 1
			s.state.HasMore = false
		}
		s.failed = mode
		s.state.LastError = err.Error()
		s.transitionLocked(StatusError)
	} else {
		var items []tmdb.Item
		totalPages := 0
		if result != nil {
			items = result.Results
			totalPages = result.TotalPages
		}

		if mode == modeReplace {
			s.state.Items = slices.Clone(items)
		} else {
			s.state.Items = append(s.state.Items, items...)
		}
		s.state.Page = target
		s.state.HasMore = target < totalPages
		s.transitionLocked(StatusIdle)
	}

	snapshot, subs = s.snapshotLocked(), s.subscribersLocked()
	s.mu.Unlock()
	notify(subs, snapshot)

	return err
}

func (s *Session) transitionLocked(next Status) {
	s.logger.Debug().
		Str("from", s.state.Status.String()).
		Str("to", next.String()).
		Int("page", s.state.Page).
		Int("items", len(s.state.Items)).
		Msg("Session state changed")
	s.state.Status = next
}

// Snapshot returns a copy of the current state
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() State {
	snapshot := s.state
	snapshot.Items = slices.Clone(s.state.Items)
	return snapshot
}

// Subscribe registers fn to receive every state change. The returned
// function removes the subscription.
func (s *Session) Subscribe(fn func(State)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.subscribers[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

func (s *Session) subscribersLocked() []func(State) {
	subs := make([]func(State), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	return subs
}

func notify(subs []func(State), state State) {
	for _, fn := range subs {
		fn(state)
	}
}

// Close marks the session inactive. Results of loads still in flight are
// discarded and later loads return ErrClosed.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	clear(s.subscribers)
}

// Closed reports whether Close has been called
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
