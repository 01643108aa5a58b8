// Package store keeps the in-memory mirror of each server collection.
//
// A Store owns its list exclusively. Views read snapshots through Items and
// Find and change the list only through Load, Create, Update and Remove, each
// of which goes to the server first and touches local state only on success.
package store

import (
	"context"
	"slices"
	"sync"

	"github.com/dmitrijs2005/libdesk/internal/client/models"
	"github.com/dmitrijs2005/libdesk/internal/logging"
)

// Entity is a record with a server-assigned integer id.
type Entity interface {
	ID() int64
}

// Repository is the remote side of a Store.
type Repository[T, In, P any] interface {
	List(ctx context.Context) ([]T, error)
	Create(ctx context.Context, in In) (T, error)
	Update(ctx context.Context, id int64, patch P, into *T) error
	Delete(ctx context.Context, id int64) error
}

type opKind int

const (
	opUpsert opKind = iota
	opRemove
)

// change is a local mutation recorded while a load is in flight, so it can be
// replayed over a list fetched before the mutation reached the server.
type change[T Entity] struct {
	seq  uint64
	kind opKind
	item T
	id   int64
}

// Store is safe for concurrent use.
type Store[T Entity, In, P any] struct {
	name string
	repo Repository[T, In, P]
	log  logging.Logger

	mu      sync.RWMutex
	items   []T
	loaded  bool
	seq     uint64
	loads   int
	loadGen uint64
	applied uint64
	journal []change[T]
}

func New[T Entity, In, P any](name string, repo Repository[T, In, P], log logging.Logger) *Store[T, In, P] {
	return &Store[T, In, P]{
		name:  name,
		repo:  repo,
		log:   log.With("store", name),
		items: []T{},
	}
}

func (s *Store[T, In, P]) Name() string { return s.name }

// Load replaces the list with the server's. A failure is logged and leaves
// the list unchanged. Mutations that completed while the request was in
// flight are replayed over the result, and a load that was overtaken by a
// newer one is discarded.
func (s *Store[T, In, P]) Load(ctx context.Context) {
	s.mu.Lock()
	s.loads++
	s.loadGen++
	gen, since := s.loadGen, s.seq
	s.mu.Unlock()

	items, err := s.repo.List(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.endLoad()

	if err != nil {
		s.log.Error(ctx, "failed to load", "error", err)
		return
	}
	if gen < s.applied {
		s.log.Debug(ctx, "discarding superseded load", "generation", gen)
		return
	}

	for _, c := range s.journal {
		if c.seq <= since {
			continue
		}
		switch c.kind {
		case opUpsert:
			items = upsert(items, c.item)
		case opRemove:
			items = remove(items, c.id)
		}
	}

	s.items = items
	s.loaded = true
	s.applied = gen
	s.log.Debug(ctx, "loaded", "count", len(items))
}

func (s *Store[T, In, P]) endLoad() {
	s.loads--
	if s.loads == 0 {
		s.journal = nil
	}
}

// Create validates in, sends it and adds the server's record to the list.
func (s *Store[T, In, P]) Create(ctx context.Context, in In) (T, error) {
	var zero T
	if err := models.Validate(in); err != nil {
		s.log.Warn(ctx, "invalid create input", "error", err)
		return zero, err
	}

	item, err := s.repo.Create(ctx, in)
	if err != nil {
		s.log.Error(ctx, "failed to create", "error", err)
		return zero, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = upsert(s.items, item)
	s.record(change[T]{kind: opUpsert, item: item})
	return item, nil
}

// Update validates patch, sends it and merges the response onto the local
// entry with the same id. Fields the response omits keep their local value.
// An id not held locally changes nothing locally.
func (s *Store[T, In, P]) Update(ctx context.Context, id int64, patch P) (T, error) {
	var zero T
	if err := models.Validate(patch); err != nil {
		s.log.Warn(ctx, "invalid update", "id", id, "error", err)
		return zero, err
	}

	merged, _ := s.Find(id)
	if err := s.repo.Update(ctx, id, patch, &merged); err != nil {
		s.log.Error(ctx, "failed to update", "id", id, "error", err)
		return zero, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return merged, nil
	}
	s.items[i] = merged
	s.record(change[T]{kind: opUpsert, item: merged})
	return merged, nil
}

// Remove deletes id on the server and drops it from the list.
func (s *Store[T, In, P]) Remove(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		s.log.Error(ctx, "failed to delete", "id", id, "error", err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = remove(s.items, id)
	s.record(change[T]{kind: opRemove, id: id})
	return nil
}

// Items returns a snapshot of the list in server order.
func (s *Store[T, In, P]) Items() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items)
}

func (s *Store[T, In, P]) Find(id int64) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.index(id); i >= 0 {
		return s.items[i], true
	}
	var zero T
	return zero, false
}

// Loaded reports whether a load has succeeded at least once.
func (s *Store[T, In, P]) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// record must be called with mu held.
func (s *Store[T, In, P]) record(c change[T]) {
	s.seq++
	if s.loads == 0 {
		return
	}
	c.seq = s.seq
	s.journal = append(s.journal, c)
}

func (s *Store[T, In, P]) index(id int64) int {
	return slices.IndexFunc(s.items, func(it T) bool { return it.ID() == id })
}

func upsert[T Entity](items []T, item T) []T {
	i := slices.IndexFunc(items, func(it T) bool { return it.ID() == item.ID() })
	if i < 0 {
		return append(items, item)
	}
	items[i] = item
	return items
}

func remove[T Entity](items []T, id int64) []T {
	return slices.DeleteFunc(items, func(it T) bool { return it.ID() == id })
}
