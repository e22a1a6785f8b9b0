package memstore

import (
	"context"
	"sync"

	"github.com/cognicore/ontorepair/pkg/ontorepair/rdf"
	"github.com/cognicore/ontorepair/pkg/ontorepair/store"
)

// Store is an in-memory implementation of store.Store.
type Store struct {
	mu     sync.RWMutex
	facts  rdf.FactSet
	bySubj map[rdf.Term]rdf.FactSet
}

// New creates a new in-memory store holding facts.
func New(facts ...rdf.Fact) *Store {
	s := &Store{
		facts:  make(rdf.FactSet),
		bySubj: make(map[rdf.Term]rdf.FactSet),
	}
	for _, f := range facts {
		s.addLocked(f)
	}
	return s
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// Query returns facts matching p.
func (s *Store) Query(ctx context.Context, p rdf.Pattern) ([]rdf.Fact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queryLocked(p), nil
}

// Add inserts a fact. Adding an existing fact is a no-op.
func (s *Store) Add(ctx context.Context, f rdf.Fact) (bool, error) {
	if !f.Valid() {
		return false, invalidFact(f)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addLocked(f), nil
}

// Remove deletes a fact.
func (s *Store) Remove(ctx context.Context, f rdf.Fact) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeLocked(f), nil
}

// Size returns the number of facts.
func (s *Store) Size(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.facts), nil
}

// Batch runs fn with exclusive access. Mutations made by fn are undone if it
// returns an error.
func (s *Store) Batch(ctx context.Context, fn func(tx store.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{s: s}
	if err := fn(tx); err != nil {
		tx.rollback()
		return err
	}
	return nil
}

func (s *Store) queryLocked(p rdf.Pattern) []rdf.Fact {
	var candidates rdf.FactSet
	if !p.Subject.IsZero() {
		candidates = s.bySubj[p.Subject]
	} else {
		candidates = s.facts
	}
	var out []rdf.Fact
	for f := range candidates {
		if p.Matches(f) {
			out = append(out, f)
		}
	}
	rdf.SortFacts(out)
	return out
}

func (s *Store) addLocked(f rdf.Fact) bool {
	if !s.facts.Add(f) {
		return false
	}
	idx, ok := s.bySubj[f.Subject]
	if !ok {
		idx = make(rdf.FactSet)
		s.bySubj[f.Subject] = idx
	}
	idx.Add(f)
	return true
}

func (s *Store) removeLocked(f rdf.Fact) bool {
	if !s.facts.Has(f) {
		return false
	}
	delete(s.facts, f)
	if idx := s.bySubj[f.Subject]; idx != nil {
		delete(idx, f)
		if len(idx) == 0 {
			delete(s.bySubj, f.Subject)
		}
	}
	return true
}

type undo struct {
	fact  rdf.Fact
	added bool
}

// memTx applies mutations directly while the store lock is held and keeps an
// undo log for rollback.
type memTx struct {
	s   *Store
	log []undo
}

func (tx *memTx) Query(ctx context.Context, p rdf.Pattern) ([]rdf.Fact, error) {
	return tx.s.queryLocked(p), nil
}

func (tx *memTx) Add(ctx context.Context, f rdf.Fact) (bool, error) {
	if !f.Valid() {
		return false, invalidFact(f)
	}
	if !tx.s.addLocked(f) {
		return false, nil
	}
	tx.log = append(tx.log, undo{fact: f, added: true})
	return true, nil
}

func (tx *memTx) Remove(ctx context.Context, f rdf.Fact) (bool, error) {
	if !tx.s.removeLocked(f) {
		return false, nil
	}
	tx.log = append(tx.log, undo{fact: f})
	return true, nil
}

func (tx *memTx) rollback() {
	for i := len(tx.log) - 1; i >= 0; i-- {
		u := tx.log[i]
		if u.added {
			tx.s.removeLocked(u.fact)
		} else {
			tx.s.addLocked(u.fact)
		}
	}
	tx.log = nil
}
