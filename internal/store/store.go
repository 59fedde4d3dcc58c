// Package store holds the in-memory entity caches that sit between the
// UI-facing layer and the remote backend. Each entity type gets one store,
// populated on startup, refreshed on demand, and mutated optimistically
// after a remote call succeeds.
//
// Every write bumps a generation counter. A refresh captures the counter
// before its fetch and applies the fetched collection only if the counter
// is unchanged, so a slow response can never clobber a newer mutation or a
// newer refresh ("last response wins" is not allowed here).
package store

import (
	"context"
	"errors"
	"sync"
)

// ErrStaleRefresh reports a refresh whose response arrived after the
// store had already moved on. The response is discarded; callers may
// simply refresh again.
var ErrStaleRefresh = errors.New("refresh superseded by a newer write")

// Store caches one entity collection.
type Store[T any] struct {
	mu         sync.RWMutex
	items      []T
	generation uint64
}

func New[T any]() *Store[T] {
	return &Store[T]{}
}

// Snapshot returns a copy of the cached collection. Callers may iterate
// and index freely; the copy never changes under them.
func (s *Store[T]) Snapshot() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

// Generation returns the current write counter. Mostly useful in tests
// and diagnostics.
func (s *Store[T]) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Refresh replaces the collection with the result of fetch. The fetch
// runs without holding the lock; if any write lands while it is in
// flight, the fetched data is dropped and ErrStaleRefresh is returned
// with the cache left untouched.
func (s *Store[T]) Refresh(ctx context.Context, fetch func(context.Context) ([]T, error)) error {
	s.mu.RLock()
	gen := s.generation
	s.mu.RUnlock()

	items, err := fetch(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		return ErrStaleRefresh
	}
	s.items = items
	s.generation++
	return nil
}

// Replace swaps the whole collection unconditionally. Used when seeding
// from an offline snapshot before the first refresh.
func (s *Store[T]) Replace(items []T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = items
	s.generation++
}

// Append adds one item. Called after the remote create resolved.
func (s *Store[T]) Append(item T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, item)
	s.generation++
}

// Update replaces the first item matched. Returns false when nothing
// matched; the generation is bumped only on an actual write.
func (s *Store[T]) Update(match func(T) bool, replacement T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, item := range s.items {
		if match(item) {
			s.items[i] = replacement
			s.generation++
			return true
		}
	}
	return false
}

// Remove deletes the first item matched.
func (s *Store[T]) Remove(match func(T) bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, item := range s.items {
		if match(item) {
			s.items = append(s.items[:i], s.items[i+1:]...)
			s.generation++
			return true
		}
	}
	return false
}

// Find returns the first item matched from the current cache.
func (s *Store[T]) Find(match func(T) bool) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, item := range s.items {
		if match(item) {
			return item, true
		}
	}
	var zero T
	return zero, false
}
