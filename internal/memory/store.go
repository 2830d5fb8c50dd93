// Package memory provides the file-backed knowledge stores. Each store is a
// single JSON array on disk, loaded at startup and rewritten in full after
// every mutation. Corrupt or missing files degrade to an empty store so a
// bad deploy never blocks a pipeline run.
package memory

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// StoreEventKind identifies the mutation behind a store notification.
type StoreEventKind string

const (
	EventAppend StoreEventKind = "append"
	EventUpdate StoreEventKind = "update"
	EventRemove StoreEventKind = "remove"
	EventClear  StoreEventKind = "clear"
)

// StoreEvent is a change notification emitted after a mutation is persisted.
type StoreEvent struct {
	Kind StoreEventKind
	Size int
}

// Query shapes a Select call. Filter runs first, then Sort, then Offset and
// Limit. Zero values mean "no constraint".
type Query[T any] struct {
	Filter func(T) bool
	Sort   func(a, b T) bool
	Limit  int
	Offset int
}

// Store is a mutex-guarded in-memory slice mirrored to a JSON array file.
type Store[T any] struct {
	path string

	mu    sync.RWMutex
	items []T

	events chan StoreEvent
}

// NewStore loads path into memory. A missing file starts empty; a corrupt
// file is logged and treated as empty rather than failing the caller.
func NewStore[T any](path string) *Store[T] {
	s := &Store[T]{
		path:   path,
		events: make(chan StoreEvent, 64),
	}
	s.load()
	return s
}

func (s *Store[T]) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			zap.L().Warn("memory: failed to read store file, starting empty",
				zap.String("path", s.path),
				zap.Error(err),
			)
		}
		s.items = nil
		return
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		zap.L().Warn("memory: corrupt store file, starting empty",
			zap.String("path", s.path),
			zap.Error(err),
		)
		s.items = nil
		return
	}
	s.items = items
}

// save persists the current items. Persistence failures are logged and
// swallowed so an unwritable disk degrades to in-memory operation.
// Callers must hold the write lock.
func (s *Store[T]) save() {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		zap.L().Error("memory: failed to create store directory",
			zap.String("path", s.path),
			zap.Error(err),
		)
		return
	}

	data, err := json.MarshalIndent(s.items, "", "  ")
	if err != nil {
		zap.L().Error("memory: failed to marshal store",
			zap.String("path", s.path),
			zap.Error(err),
		)
		return
	}
	if s.items == nil {
		data = []byte("[]")
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		zap.L().Error("memory: failed to write store file",
			zap.String("path", s.path),
			zap.Error(err),
		)
		return
	}
	if err := os.Rename(tmp, s.path); err != nil {
		zap.L().Error("memory: failed to replace store file",
			zap.String("path", s.path),
			zap.Error(err),
		)
	}
}

// notify emits a change event without ever blocking a mutation.
func (s *Store[T]) notify(kind StoreEventKind, size int) {
	select {
	case s.events <- StoreEvent{Kind: kind, Size: size}:
	default:
	}
}

// Events returns the change notification channel. Notifications are dropped
// when the buffer is full, so consumers see a sample, not a ledger.
func (s *Store[T]) Events() <-chan StoreEvent {
	return s.events
}

// Append adds an item and persists.
func (s *Store[T]) Append(item T) {
	s.mu.Lock()
	s.items = append(s.items, item)
	size := len(s.items)
	s.save()
	s.mu.Unlock()
	s.notify(EventAppend, size)
}

// Upsert updates the first item matching match via update, or appends
// fallback when nothing matches. Returns the stored item either way, plus
// whether an existing item was updated.
func (s *Store[T]) Upsert(match func(T) bool, update func(T) T, fallback T) (T, bool) {
	s.mu.Lock()
	stored := fallback
	updated := false
	for i, item := range s.items {
		if match(item) {
			stored = update(item)
			s.items[i] = stored
			updated = true
			break
		}
	}
	if !updated {
		s.items = append(s.items, fallback)
	}
	size := len(s.items)
	s.save()
	s.mu.Unlock()

	if updated {
		s.notify(EventUpdate, size)
	} else {
		s.notify(EventAppend, size)
	}
	return stored, updated
}

// Remove deletes all items matching the predicate and returns the count.
func (s *Store[T]) Remove(match func(T) bool) int {
	s.mu.Lock()
	kept := s.items[:0]
	removed := 0
	for _, item := range s.items {
		if match(item) {
			removed++
			continue
		}
		kept = append(kept, item)
	}
	s.items = kept
	size := len(s.items)
	if removed > 0 {
		s.save()
	}
	s.mu.Unlock()

	if removed > 0 {
		s.notify(EventRemove, size)
	}
	return removed
}

// Find returns the first item matching the predicate.
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

// Filter returns a copy of all items matching the predicate.
func (s *Store[T]) Filter(match func(T) bool) []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []T
	for _, item := range s.items {
		if match(item) {
			out = append(out, item)
		}
	}
	return out
}

// Select applies the query stages in order: filter, sort, offset, limit.
func (s *Store[T]) Select(q Query[T]) []T {
	s.mu.RLock()
	out := make([]T, 0, len(s.items))
	for _, item := range s.items {
		if q.Filter == nil || q.Filter(item) {
			out = append(out, item)
		}
	}
	s.mu.RUnlock()

	if q.Sort != nil {
		sort.SliceStable(out, func(i, j int) bool { return q.Sort(out[i], out[j]) })
	}
	if q.Offset > 0 {
		if q.Offset >= len(out) {
			return []T{}
		}
		out = out[q.Offset:]
	}
	if q.Limit > 0 && q.Limit < len(out) {
		out = out[:q.Limit]
	}
	return out
}

// GetAll returns a copy of every item.
func (s *Store[T]) GetAll() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

// Size returns the item count.
func (s *Store[T]) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Clear drops everything and persists the empty store.
func (s *Store[T]) Clear() {
	s.mu.Lock()
	s.items = nil
	s.save()
	s.mu.Unlock()
	s.notify(EventClear, 0)
}

// Reload rereads the backing file, discarding in-memory state. Useful when
// an external process rewrote the file.
func (s *Store[T]) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.items = nil
			return nil
		}
		return eris.Wrapf(err, "memory: reload %s", s.path)
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return eris.Wrapf(err, "memory: reload %s", s.path)
	}
	s.items = items
	return nil
}
