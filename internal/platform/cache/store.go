// Package cache is the in-process read-through cache behind the repository
// decorators.
package cache

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type item struct {
	value    any
	deadline time.Time // zero means no expiry
}

// Store is a TTL map with single-flight loading. Invalidation bumps an epoch
// so a load that started before a Delete never writes its stale result back.
type Store struct {
	ttl   time.Duration
	clock func() time.Time

	mu    sync.RWMutex
	items map[string]item
	epoch uint64

	group singleflight.Group
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		ttl:   ttl,
		clock: time.Now,
		items: make(map[string]item),
	}
}

func (s *Store) live(it item) bool {
	return it.deadline.IsZero() || s.clock().Before(it.deadline)
}

func (s *Store) Get(_ context.Context, key string) (any, bool) {
	if key == "" {
		return nil, false
	}

	s.mu.RLock()
	it, ok := s.items[key]
	s.mu.RUnlock()
	switch {
	case !ok:
		return nil, false
	case s.live(it):
		return it.value, true
	}

	s.mu.Lock()
	if cur, ok := s.items[key]; ok && !s.live(cur) {
		delete(s.items, key)
	}
	s.mu.Unlock()
	return nil, false
}

func (s *Store) Set(_ context.Context, key string, value any) {
	if key == "" {
		return
	}
	s.mu.Lock()
	s.put(key, value)
	s.mu.Unlock()
}

// put requires s.mu held for writing.
func (s *Store) put(key string, value any) {
	it := item{value: value}
	if s.ttl > 0 {
		it.deadline = s.clock().Add(s.ttl)
	}
	s.items[key] = it
}

func (s *Store) Delete(_ context.Context, key string) {
	if key == "" {
		return
	}
	s.invalidate(func(k string) bool { return k == key })
}

// DeletePrefix drops every key starting with prefix.
func (s *Store) DeletePrefix(_ context.Context, prefix string) {
	if prefix == "" {
		return
	}
	s.invalidate(func(k string) bool { return strings.HasPrefix(k, prefix) })
}

func (s *Store) invalidate(match func(string) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.epoch++
	for key := range s.items {
		if match(key) {
			delete(s.items, key)
			s.group.Forget(key)
		}
	}
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// GetOrLoad returns the cached value for key or runs loader once for all
// concurrent callers. Loader errors are not cached. An empty key bypasses
// the cache.
func (s *Store) GetOrLoad(ctx context.Context, key string, loader func(context.Context) (any, error)) (any, error) {
	if loader == nil {
		return nil, fmt.Errorf("cache: nil loader for %q", key)
	}
	if key == "" {
		return loader(ctx)
	}
	if v, ok := s.Get(ctx, key); ok {
		return v, nil
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		if v, ok := s.Get(ctx, key); ok {
			return v, nil
		}

		s.mu.RLock()
		startEpoch := s.epoch
		s.mu.RUnlock()

		v, err := loader(ctx)
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		if s.epoch == startEpoch {
			s.put(key, v)
		}
		s.mu.Unlock()
		return v, nil
	})
	return v, err
}

// Load is GetOrLoad with the cached value asserted to T.
func Load[T any](ctx context.Context, s *Store, key string, loader func(context.Context) (T, error)) (T, error) {
	var zero T
	v, err := s.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		return loader(ctx)
	})
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("cache: entry %q holds %T", key, v)
	}
	return typed, nil
}
