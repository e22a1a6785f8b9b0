package rdf

import (
	"sort"
	"strings"
)

// Fact is a subject-predicate-object statement, optionally scoped to a named
// graph. Facts are values; "modifying" one means removing it and adding a new one.
type Fact struct {
	Subject   Term
	Predicate Term
	Object    Term
	Graph     string // empty for the default graph
}

// NewFact builds a fact in the default graph.
func NewFact(subject, predicate, object Term) Fact {
	return Fact{Subject: subject, Predicate: predicate, Object: object}
}

// Triple is shorthand for a fact whose three positions are IRIs.
func Triple(s, p, o string) Fact {
	return NewFact(IRI(s), IRI(p), IRI(o))
}

// InGraph returns a copy of f scoped to graph.
func (f Fact) InGraph(graph string) Fact {
	f.Graph = graph
	return f
}

// Valid checks the positional constraints: resource subject, IRI predicate,
// non-wildcard object.
func (f Fact) Valid() bool {
	return f.Subject.IsResource() && f.Predicate.IsIRI() && !f.Object.IsZero()
}

// String renders the fact as an N-Quads line without the trailing dot.
func (f Fact) String() string {
	var b strings.Builder
	b.WriteString(f.Subject.String())
	b.WriteByte(' ')
	b.WriteString(f.Predicate.String())
	b.WriteByte(' ')
	b.WriteString(f.Object.String())
	if f.Graph != "" {
		b.WriteString(" <")
		b.WriteString(f.Graph)
		b.WriteByte('>')
	}
	return b.String()
}

// Pattern selects facts. Zero terms and an empty Graph match anything.
type Pattern struct {
	Subject   Term
	Predicate Term
	Object    Term
	Graph     string
}

// Any matches every fact.
var Any = Pattern{}

// Matches reports whether f satisfies the pattern.
func (p Pattern) Matches(f Fact) bool {
	if !p.Subject.IsZero() && p.Subject != f.Subject {
		return false
	}
	if !p.Predicate.IsZero() && p.Predicate != f.Predicate {
		return false
	}
	if !p.Object.IsZero() && p.Object != f.Object {
		return false
	}
	if p.Graph != "" && p.Graph != f.Graph {
		return false
	}
	return true
}

// String renders the pattern with * for wildcards.
func (p Pattern) String() string {
	g := "*"
	if p.Graph != "" {
		g = "<" + p.Graph + ">"
	}
	return p.Subject.String() + " " + p.Predicate.String() + " " + p.Object.String() + " " + g
}

// PatternOf returns the pattern that matches exactly f.
func PatternOf(f Fact) Pattern {
	return Pattern{Subject: f.Subject, Predicate: f.Predicate, Object: f.Object, Graph: f.Graph}
}

// FactSet is an unordered set of facts.
type FactSet map[Fact]struct{}

// NewFactSet creates a set holding facts.
func NewFactSet(facts ...Fact) FactSet {
	s := make(FactSet, len(facts))
	for _, f := range facts {
		s[f] = struct{}{}
	}
	return s
}

// Add inserts f and reports whether it was new.
func (s FactSet) Add(f Fact) bool {
	if _, ok := s[f]; ok {
		return false
	}
	s[f] = struct{}{}
	return true
}

// Has reports membership.
func (s FactSet) Has(f Fact) bool {
	_, ok := s[f]
	return ok
}

// Union adds every fact of other to s.
func (s FactSet) Union(other FactSet) {
	for f := range other {
		s[f] = struct{}{}
	}
}

// Sorted returns the facts in a stable order.
func (s FactSet) Sorted() []Fact {
	out := make([]Fact, 0, len(s))
	for f := range s {
		out = append(out, f)
	}
	SortFacts(out)
	return out
}

// SortFacts orders facts by their string form.
func SortFacts(facts []Fact) {
	sort.Slice(facts, func(i, j int) bool {
		return facts[i].String() < facts[j].String()
	})
}
