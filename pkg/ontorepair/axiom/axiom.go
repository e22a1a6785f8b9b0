// Package axiom pulls the class, property and restriction axioms the
// reasoner needs out of a fact snapshot into typed structures.
package axiom

import (
	"sort"
	"strconv"

	"go.uber.org/zap"

	"github.com/cognicore/ontorepair/pkg/ontorepair/rdf"
	"github.com/cognicore/ontorepair/pkg/ontorepair/store"
)

// RestrictionKind identifies the constraint a restriction expresses.
type RestrictionKind int

const (
	SomeValuesFrom RestrictionKind = iota + 1
	AllValuesFrom
	HasValue
	MinCardinality
	MaxCardinality
	MinQualifiedCardinality
	MaxQualifiedCardinality
)

var kindNames = map[RestrictionKind]string{
	SomeValuesFrom:          "someValuesFrom",
	AllValuesFrom:           "allValuesFrom",
	HasValue:                "hasValue",
	MinCardinality:          "minCardinality",
	MaxCardinality:          "maxCardinality",
	MinQualifiedCardinality: "minQualifiedCardinality",
	MaxQualifiedCardinality: "maxQualifiedCardinality",
}

func (k RestrictionKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Restriction is one constraint carried by a restriction node. A node with
// owl:cardinality yields both a Min and a Max restriction.
type Restriction struct {
	Node        rdf.Term
	OnProperty  string
	Kind        RestrictionKind
	Value       rdf.Term // filler class, hasValue value, or onClass for qualified kinds
	Cardinality int
}

// Key identifies a restriction by content, ignoring the node it hangs off.
func (r Restriction) Key() string {
	return r.Kind.String() + "|" + r.OnProperty + "|" + r.Value.Key() + "|" + strconv.Itoa(r.Cardinality)
}

// Qualified reports whether only values of r.Value count.
func (r Restriction) Qualified() bool {
	return r.Kind == MinQualifiedCardinality || r.Kind == MaxQualifiedCardinality
}

// Via says which axiom links a class to a restriction.
type Via int

const (
	ViaSubClassOf Via = iota + 1
	ViaEquivalentClass
)

// Anchor links a named class to a restriction.
type Anchor struct {
	Class       string
	Restriction Restriction
	Via         Via
}

// Malformed records an axiom that was skipped.
type Malformed struct {
	Node   rdf.Term
	Reason string
}

// Axioms is the typed view of a snapshot's schema.
type Axioms struct {
	Classes           map[string]struct{}
	DeclaredClasses   map[string]struct{}
	SubClass          map[string]map[string]struct{} // named class → direct named superclasses
	Equivalent        [][2]string                    // explicit named equivalences
	Disjoint          [][2]string
	Restrictions      map[rdf.Term][]Restriction // restriction node → constraints
	Anchors           []Anchor
	Properties        map[string]struct{}
	SubProperty       map[string]map[string]struct{}
	Functional        map[string]struct{}
	InverseFunctional map[string]struct{}
	Domains           map[string][]string
	Ranges            map[string][]string
	Malformed         []Malformed
}

var restrictionPredicates = map[string]struct{}{
	rdf.OWLOnProperty:              {},
	rdf.OWLSomeValuesFrom:          {},
	rdf.OWLAllValuesFrom:           {},
	rdf.OWLHasValue:                {},
	rdf.OWLCardinality:             {},
	rdf.OWLMinCardinality:          {},
	rdf.OWLMaxCardinality:          {},
	rdf.OWLQualifiedCardinality:    {},
	rdf.OWLMinQualifiedCardinality: {},
	rdf.OWLMaxQualifiedCardinality: {},
}

// Extract reads axioms from snap. Malformed restrictions are logged and
// skipped.
func Extract(snap *store.Snapshot, log *zap.Logger) *Axioms {
	if log == nil {
		log = zap.NewNop()
	}
	ax := &Axioms{
		Classes:           make(map[string]struct{}),
		DeclaredClasses:   make(map[string]struct{}),
		SubClass:          make(map[string]map[string]struct{}),
		Restrictions:      make(map[rdf.Term][]Restriction),
		Properties:        make(map[string]struct{}),
		SubProperty:       make(map[string]map[string]struct{}),
		Functional:        make(map[string]struct{}),
		InverseFunctional: make(map[string]struct{}),
		Domains:           make(map[string][]string),
		Ranges:            make(map[string][]string),
	}
	ex := extractor{snap: snap, ax: ax, log: log, seen: make(map[rdf.Term]bool)}

	ex.declarations()
	ex.subClassOf()
	ex.equivalentClass()
	ex.disjointWith()
	ex.properties()

	sort.Slice(ax.Anchors, func(i, j int) bool {
		if ax.Anchors[i].Class != ax.Anchors[j].Class {
			return ax.Anchors[i].Class < ax.Anchors[j].Class
		}
		return ax.Anchors[i].Restriction.Key() < ax.Anchors[j].Restriction.Key()
	})
	return ax
}

type extractor struct {
	snap *store.Snapshot
	ax   *Axioms
	log  *zap.Logger
	seen map[rdf.Term]bool // restriction nodes already parsed
}

func (e *extractor) addClass(t rdf.Term) {
	if t.IsIRI() && !rdf.IsVocabulary(t.Value) {
		e.ax.Classes[t.Value] = struct{}{}
	}
}

func (e *extractor) declarations() {
	for _, f := range e.snap.WithPredicate(rdf.RDFType) {
		if !f.Object.IsIRI() {
			continue
		}
		if !f.Subject.IsIRI() {
			e.addClass(f.Object)
			continue
		}
		switch f.Object.Value {
		case rdf.OWLClass, rdf.RDFSClass:
			e.addClass(f.Subject)
			e.ax.DeclaredClasses[f.Subject.Value] = struct{}{}
		case rdf.OWLObjectProperty, rdf.OWLDatatypeProperty, rdf.RDFProperty:
			e.ax.Properties[f.Subject.Value] = struct{}{}
		case rdf.OWLFunctionalProperty:
			e.ax.Properties[f.Subject.Value] = struct{}{}
			e.ax.Functional[f.Subject.Value] = struct{}{}
		case rdf.OWLInverseFunctionalProperty:
			e.ax.Properties[f.Subject.Value] = struct{}{}
			e.ax.InverseFunctional[f.Subject.Value] = struct{}{}
		default:
			// instance typing: the object is a class
			e.addClass(f.Object)
		}
	}
}

func (e *extractor) subClassOf() {
	for _, f := range e.snap.WithPredicate(rdf.RDFSSubClassOf) {
		if !f.Subject.IsIRI() {
			continue
		}
		e.addClass(f.Subject)
		switch {
		case f.Object.IsIRI():
			if f.Object.Value == rdf.OWLThing || f.Subject == f.Object {
				continue
			}
			e.addClass(f.Object)
			addEdge(e.ax.SubClass, f.Subject.Value, f.Object.Value)
		case f.Object.IsBlank():
			e.anchor(f.Subject.Value, f.Object, ViaSubClassOf)
		}
	}
}

func (e *extractor) equivalentClass() {
	for _, f := range e.snap.WithPredicate(rdf.OWLEquivalentClass) {
		switch {
		case f.Subject.IsIRI() && f.Object.IsIRI():
			if f.Subject == f.Object {
				continue
			}
			e.addClass(f.Subject)
			e.addClass(f.Object)
			e.ax.Equivalent = append(e.ax.Equivalent, [2]string{f.Subject.Value, f.Object.Value})
		case f.Subject.IsIRI() && f.Object.IsBlank():
			e.addClass(f.Subject)
			e.anchor(f.Subject.Value, f.Object, ViaEquivalentClass)
		case f.Subject.IsBlank() && f.Object.IsIRI():
			e.addClass(f.Object)
			e.anchor(f.Object.Value, f.Subject, ViaEquivalentClass)
		}
	}
}

func (e *extractor) disjointWith() {
	seen := make(map[[2]string]bool)
	for _, f := range e.snap.WithPredicate(rdf.OWLDisjointWith) {
		if !f.Subject.IsIRI() || !f.Object.IsIRI() || f.Subject == f.Object {
			continue
		}
		e.addClass(f.Subject)
		e.addClass(f.Object)
		pair := OrderedPair(f.Subject.Value, f.Object.Value)
		if seen[pair] {
			continue
		}
		seen[pair] = true
		e.ax.Disjoint = append(e.ax.Disjoint, pair)
	}
	sort.Slice(e.ax.Disjoint, func(i, j int) bool {
		if e.ax.Disjoint[i][0] != e.ax.Disjoint[j][0] {
			return e.ax.Disjoint[i][0] < e.ax.Disjoint[j][0]
		}
		return e.ax.Disjoint[i][1] < e.ax.Disjoint[j][1]
	})
}

func (e *extractor) properties() {
	for _, p := range e.snap.Predicates() {
		if p.IsIRI() && !rdf.IsVocabulary(p.Value) {
			e.ax.Properties[p.Value] = struct{}{}
		}
	}
	for _, f := range e.snap.WithPredicate(rdf.RDFSSubPropertyOf) {
		if f.Subject.IsIRI() && f.Object.IsIRI() && f.Subject != f.Object {
			e.ax.Properties[f.Subject.Value] = struct{}{}
			e.ax.Properties[f.Object.Value] = struct{}{}
			addEdge(e.ax.SubProperty, f.Subject.Value, f.Object.Value)
		}
	}
	for _, f := range e.snap.WithPredicate(rdf.RDFSDomain) {
		if f.Subject.IsIRI() && f.Object.IsIRI() {
			e.ax.Properties[f.Subject.Value] = struct{}{}
			e.ax.Domains[f.Subject.Value] = append(e.ax.Domains[f.Subject.Value], f.Object.Value)
		}
	}
	for _, f := range e.snap.WithPredicate(rdf.RDFSRange) {
		if f.Subject.IsIRI() && f.Object.IsIRI() {
			e.ax.Properties[f.Subject.Value] = struct{}{}
			e.ax.Ranges[f.Subject.Value] = append(e.ax.Ranges[f.Subject.Value], f.Object.Value)
		}
	}
}

// anchor parses node as a restriction and links it to class.
func (e *extractor) anchor(class string, node rdf.Term, via Via) {
	restrictions := e.parseRestriction(node)
	for _, r := range restrictions {
		e.ax.Anchors = append(e.ax.Anchors, Anchor{Class: class, Restriction: r, Via: via})
	}
}

func (e *extractor) parseRestriction(node rdf.Term) []Restriction {
	if e.seen[node] {
		return e.ax.Restrictions[node]
	}
	e.seen[node] = true

	if !e.isRestriction(node) {
		return nil
	}
	prop, ok := e.snap.Object(node, rdf.OWLOnProperty)
	if !ok || !prop.IsIRI() {
		e.ax.Malformed = append(e.ax.Malformed, Malformed{Node: node, Reason: "restriction without owl:onProperty"})
		e.log.Warn("skipping malformed restriction",
			zap.String("node", node.Key()),
			zap.String("reason", "missing owl:onProperty"))
		return nil
	}
	p := prop.Value
	e.ax.Properties[p] = struct{}{}

	var out []Restriction
	add := func(kind RestrictionKind, value rdf.Term, n int) {
		out = append(out, Restriction{Node: node, OnProperty: p, Kind: kind, Value: value, Cardinality: n})
	}
	if v, ok := e.snap.Object(node, rdf.OWLSomeValuesFrom); ok {
		e.addClass(v)
		add(SomeValuesFrom, v, 0)
	}
	if v, ok := e.snap.Object(node, rdf.OWLAllValuesFrom); ok {
		e.addClass(v)
		add(AllValuesFrom, v, 0)
	}
	if v, ok := e.snap.Object(node, rdf.OWLHasValue); ok {
		add(HasValue, v, 0)
	}
	if n, ok := e.cardinality(node, rdf.OWLCardinality); ok {
		add(MinCardinality, rdf.Term{}, n)
		add(MaxCardinality, rdf.Term{}, n)
	}
	if n, ok := e.cardinality(node, rdf.OWLMinCardinality); ok {
		add(MinCardinality, rdf.Term{}, n)
	}
	if n, ok := e.cardinality(node, rdf.OWLMaxCardinality); ok {
		add(MaxCardinality, rdf.Term{}, n)
	}
	onClass, _ := e.snap.Object(node, rdf.OWLOnClass)
	e.addClass(onClass)
	if n, ok := e.cardinality(node, rdf.OWLQualifiedCardinality); ok {
		add(MinQualifiedCardinality, onClass, n)
		add(MaxQualifiedCardinality, onClass, n)
	}
	if n, ok := e.cardinality(node, rdf.OWLMinQualifiedCardinality); ok {
		add(MinQualifiedCardinality, onClass, n)
	}
	if n, ok := e.cardinality(node, rdf.OWLMaxQualifiedCardinality); ok {
		add(MaxQualifiedCardinality, onClass, n)
	}

	e.ax.Restrictions[node] = out
	return out
}

func (e *extractor) isRestriction(node rdf.Term) bool {
	if e.snap.HasTriple(node, rdf.IRI(rdf.RDFType), rdf.IRI(rdf.OWLRestriction)) {
		return true
	}
	for _, f := range e.snap.Match(rdf.Pattern{Subject: node}) {
		if _, ok := restrictionPredicates[f.Predicate.Value]; ok {
			return true
		}
	}
	return false
}

func (e *extractor) cardinality(node rdf.Term, predicate string) (int, bool) {
	v, ok := e.snap.Object(node, predicate)
	if !ok {
		return 0, false
	}
	n, ok := v.Int()
	if !ok || n < 0 {
		e.ax.Malformed = append(e.ax.Malformed, Malformed{Node: node, Reason: "non-integer " + predicate})
		e.log.Warn("skipping malformed cardinality",
			zap.String("node", node.Key()),
			zap.String("predicate", predicate),
			zap.String("value", v.String()))
		return 0, false
	}
	return n, true
}

// OrderedPair returns a and b in lexical order.
func OrderedPair(a, b string) [2]string {
	if b < a {
		a, b = b, a
	}
	return [2]string{a, b}
}

func addEdge(m map[string]map[string]struct{}, from, to string) {
	set, ok := m[from]
	if !ok {
		set = make(map[string]struct{})
		m[from] = set
	}
	set[to] = struct{}{}
}

// SortedKeys returns the keys of a string set in order.
func SortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// IsClass reports whether iri is a known named class.
func (ax *Axioms) IsClass(iri string) bool {
	_, ok := ax.Classes[iri]
	return ok
}

// AnchorsFor returns the restrictions linked to class.
func (ax *Axioms) AnchorsFor(class string) []Anchor {
	var out []Anchor
	for _, a := range ax.Anchors {
		if a.Class == class {
			out = append(out, a)
		}
	}
	return out
}
