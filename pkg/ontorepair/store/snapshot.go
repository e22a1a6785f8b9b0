package store

import (
	"context"
	"fmt"

	"github.com/cognicore/ontorepair/pkg/ontorepair/internalerr"
	"github.com/cognicore/ontorepair/pkg/ontorepair/rdf"
)

// Snapshot is an immutable, indexed copy of a store's facts taken at the
// start of a reasoning pass. It is safe for concurrent reads.
type Snapshot struct {
	facts  rdf.FactSet
	bySubj map[rdf.Term][]rdf.Fact
	byPred map[rdf.Term][]rdf.Fact
	byObj  map[rdf.Term][]rdf.Fact
}

// TakeSnapshot reads every fact from s.
func TakeSnapshot(ctx context.Context, s Store) (*Snapshot, error) {
	if s == nil {
		return nil, internalerr.ErrNilStore
	}
	facts, err := s.Query(ctx, rdf.Any)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	return NewSnapshot(facts), nil
}

// NewSnapshot indexes facts. Duplicates are collapsed.
func NewSnapshot(facts []rdf.Fact) *Snapshot {
	snap := &Snapshot{
		facts:  make(rdf.FactSet, len(facts)),
		bySubj: make(map[rdf.Term][]rdf.Fact),
		byPred: make(map[rdf.Term][]rdf.Fact),
		byObj:  make(map[rdf.Term][]rdf.Fact),
	}
	for _, f := range facts {
		if !snap.facts.Add(f) {
			continue
		}
		snap.bySubj[f.Subject] = append(snap.bySubj[f.Subject], f)
		snap.byPred[f.Predicate] = append(snap.byPred[f.Predicate], f)
		snap.byObj[f.Object] = append(snap.byObj[f.Object], f)
	}
	return snap
}

// Len returns the number of facts.
func (s *Snapshot) Len() int { return len(s.facts) }

// Has reports whether f is in the snapshot.
func (s *Snapshot) Has(f rdf.Fact) bool { return s.facts.Has(f) }

// HasTriple reports whether the triple is present in any graph.
func (s *Snapshot) HasTriple(subject, predicate, object rdf.Term) bool {
	for _, f := range s.bySubj[subject] {
		if f.Predicate == predicate && f.Object == object {
			return true
		}
	}
	return false
}

// Match returns the facts matching p, using the most selective index.
func (s *Snapshot) Match(p rdf.Pattern) []rdf.Fact {
	var candidates []rdf.Fact
	switch {
	case !p.Subject.IsZero():
		candidates = s.bySubj[p.Subject]
	case !p.Object.IsZero():
		candidates = s.byObj[p.Object]
	case !p.Predicate.IsZero():
		candidates = s.byPred[p.Predicate]
	default:
		return s.facts.Sorted()
	}
	var out []rdf.Fact
	for _, f := range candidates {
		if p.Matches(f) {
			out = append(out, f)
		}
	}
	return out
}

// Objects returns the objects of (subject, predicate, *).
func (s *Snapshot) Objects(subject rdf.Term, predicate string) []rdf.Term {
	var out []rdf.Term
	for _, f := range s.bySubj[subject] {
		if f.Predicate.Value == predicate && f.Predicate.IsIRI() {
			out = append(out, f.Object)
		}
	}
	return out
}

// Object returns the first object of (subject, predicate, *).
func (s *Snapshot) Object(subject rdf.Term, predicate string) (rdf.Term, bool) {
	objs := s.Objects(subject, predicate)
	if len(objs) == 0 {
		return rdf.Term{}, false
	}
	return objs[0], true
}

// WithPredicate returns every fact using predicate.
func (s *Snapshot) WithPredicate(predicate string) []rdf.Fact {
	return s.byPred[rdf.IRI(predicate)]
}

// Subjects returns the subjects of (*, predicate, object).
func (s *Snapshot) Subjects(predicate string, object rdf.Term) []rdf.Term {
	var out []rdf.Term
	for _, f := range s.byObj[object] {
		if f.Predicate.IsIRI() && f.Predicate.Value == predicate {
			out = append(out, f.Subject)
		}
	}
	return out
}

// Predicates returns every distinct predicate.
func (s *Snapshot) Predicates() []rdf.Term {
	out := make([]rdf.Term, 0, len(s.byPred))
	for p := range s.byPred {
		out = append(out, p)
	}
	return out
}
