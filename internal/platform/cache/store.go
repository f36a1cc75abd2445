package cache

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

var errNoLoader = errors.New("cache: loader is required")

type item struct {
	value    any
	deadline time.Time // zero means no expiry
}

func (it item) live(now time.Time) bool {
	return it.deadline.IsZero() || now.Before(it.deadline)
}

// Store is an in-process TTL map. It backs login sessions and the read
// cache in front of standings and team lookups.
//
// Every delete bumps a generation counter. A load that started before the
// delete does not write its result back, so invalidation after a reconcile
// run cannot be undone by a slow reader.
type Store struct {
	mu    sync.RWMutex
	items map[string]item
	gen   uint64

	ttl    time.Duration
	flight singleflight.Group
	now    func() time.Time
}

// NewStore builds a store whose entries expire after ttl. A ttl <= 0 keeps
// entries until they are deleted.
func NewStore(ttl time.Duration) *Store {
	return &Store{items: make(map[string]item), ttl: ttl, now: time.Now}
}

func (s *Store) Get(_ context.Context, key string) (any, bool) {
	s.mu.RLock()
	it, ok := s.items[key]
	s.mu.RUnlock()
	if !ok || !it.live(s.now()) {
		return nil, false
	}
	return it.value, true
}

func (s *Store) Set(ctx context.Context, key string, value any) {
	s.SetTTL(ctx, key, value, s.ttl)
}

func (s *Store) SetTTL(_ context.Context, key string, value any, ttl time.Duration) {
	if key == "" {
		return
	}
	s.mu.Lock()
	s.put(key, value, ttl)
	s.mu.Unlock()
}

func (s *Store) put(key string, value any, ttl time.Duration) {
	it := item{value: value}
	if ttl > 0 {
		it.deadline = s.now().Add(ttl)
	}
	s.items[key] = it
}

func (s *Store) Delete(_ context.Context, key string) {
	s.mu.Lock()
	delete(s.items, key)
	s.gen++
	s.mu.Unlock()
}

func (s *Store) DeletePrefix(_ context.Context, prefix string) {
	if prefix == "" {
		return
	}
	s.mu.Lock()
	for key := range s.items {
		if strings.HasPrefix(key, prefix) {
			delete(s.items, key)
		}
	}
	s.gen++
	s.mu.Unlock()
}

// Purge drops expired entries and reports how many went. The scheduler
// calls it periodically so abandoned sessions do not pile up.
func (s *Store) Purge() int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, it := range s.items {
		if !it.live(now) {
			delete(s.items, key)
			removed++
		}
	}
	return removed
}

// GetOrLoad returns the cached value for key or runs loader once for all
// callers that miss at the same time.
func (s *Store) GetOrLoad(ctx context.Context, key string, loader func(context.Context) (any, error)) (any, error) {
	if loader == nil {
		return nil, errNoLoader
	}
	if key == "" {
		return loader(ctx)
	}
	if v, ok := s.Get(ctx, key); ok {
		return v, nil
	}

	s.mu.RLock()
	gen := s.gen
	s.mu.RUnlock()

	// Loads from different generations must not share a flight.
	flightKey := strconv.FormatUint(gen, 10) + "|" + key
	v, err, _ := s.flight.Do(flightKey, func() (any, error) {
		loaded, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		if s.gen == gen {
			s.put(key, loaded, s.ttl)
		}
		s.mu.Unlock()
		return loaded, nil
	})
	return v, err
}
