// Package watchlist keeps the locally persisted "watch later" list.
//
// The whole list lives in a single record and is always loaded and saved
// wholesale. Toggle is a read-modify-write without locking: two concurrent
// toggles can race and the last write wins.
package watchlist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/s0up4200/marquee/kv"
	"github.com/s0up4200/marquee/tmdb"
)

// RecordKey is the key the list is persisted under
const RecordKey = "watchlist.items"

// Entry is a saved item together with the time it was added
type Entry struct {
	tmdb.Item `yaml:",inline"`
	AddedAt   time.Time `json:"addedAt" yaml:"added_at"`
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the time source used to stamp new entries.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Store is the watchlist backed by a kv.Store
type Store struct {
	kv     kv.Store
	logger zerolog.Logger
	now    func() time.Time

	mu          sync.Mutex
	subscribers map[int]func([]Entry)
	nextID      int
}

// New creates a watchlist on top of store
func New(store kv.Store, logger zerolog.Logger, opts ...Option) *Store {
	s := &Store{
		kv:          store,
		logger:      logger,
		now:         time.Now,
		subscribers: make(map[int]func([]Entry)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load returns the saved entries, newest first. A missing, unreadable or
// corrupted record yields an empty list.
func (s *Store) Load(ctx context.Context) []Entry {
	data, err := s.kv.Get(ctx, RecordKey)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to read watchlist, treating it as empty")
		return []Entry{}
	}
	if len(data) == 0 {
		return []Entry{}
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to decode watchlist, treating it as empty")
		return []Entry{}
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries
}

// Toggle removes the entry sharing item's key, or prepends a new entry when
// there is none. The resulting list is persisted and returned; on a write
// failure the list is returned together with the error.
func (s *Store) Toggle(ctx context.Context, item tmdb.Item) ([]Entry, error) {
	if item.MediaType == "" {
		return nil, errors.New("item has no media type")
	}

	entries := s.Load(ctx)
	key := item.Key()

	if idx := slices.IndexFunc(entries, func(e Entry) bool { return e.Key() == key }); idx >= 0 {
		entries = slices.Delete(entries, idx, idx+1)
		s.logger.Debug().Str("key", key.String()).Msg("Removed from watchlist")
	} else {
		entries = slices.Insert(entries, 0, Entry{Item: item, AddedAt: s.now()})
		s.logger.Debug().Str("key", key.String()).Msg("Added to watchlist")
	}

	if err := s.Save(ctx, entries); err != nil {
		return entries, err
	}
	return entries, nil
}

// Save persists entries as the whole list
func (s *Store) Save(ctx context.Context, entries []Entry) error {
	if entries == nil {
		entries = []Entry{}
	}

	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to encode watchlist: %w", err)
	}
	if err := s.kv.Set(ctx, RecordKey, data); err != nil {
		return fmt.Errorf("failed to save watchlist: %w", err)
	}

	s.notify(entries)
	return nil
}

// Clear removes the persisted list
func (s *Store) Clear(ctx context.Context) error {
	if err := s.kv.Remove(ctx, RecordKey); err != nil {
		return fmt.Errorf("failed to clear watchlist: %w", err)
	}

	s.notify([]Entry{})
	return nil
}

// Contains reports whether an entry with key is saved
func (s *Store) Contains(ctx context.Context, key tmdb.Key) bool {
	return slices.ContainsFunc(s.Load(ctx), func(e Entry) bool {
		return e.Key() == key
	})
}

// Subscribe registers fn to receive the list after every successful write.
// The returned function removes the subscription.
func (s *Store) Subscribe(fn func([]Entry)) (unsubscribe func()) {
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

func (s *Store) notify(entries []Entry) {
	s.mu.Lock()
	subs := make([]func([]Entry), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(slices.Clone(entries))
	}
}
