// Package classify builds the named-class hierarchy, closes it transitively,
// detects equivalences and propagates existential restrictions. The two
// steps run to a joint fixpoint: propagation can add named edges through
// defined classes, which in turn widens the closure.
package classify

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/cognicore/ontorepair/pkg/ontorepair/axiom"
	"github.com/cognicore/ontorepair/pkg/ontorepair/rdf"
	"github.com/cognicore/ontorepair/pkg/ontorepair/session"
	"github.com/cognicore/ontorepair/pkg/ontorepair/store"
)

// Existential is a derived or asserted C ⊑ ∃P.D.
type Existential struct {
	Class    string
	Property string
	Filler   string
}

// Result is the output of Classify.
type Result struct {
	Hierarchy    *Hierarchy
	Properties   *Hierarchy
	Equivalences [][]string
	Cycles       [][]string // equivalence groups not backed by explicit owl:equivalentClass
	Existentials []Existential
	Inferred     []rdf.Fact
	Iterations   int
	Duration     time.Duration
	Partial      bool // stopped early on deadline or inference cap
}

// Classify computes the closed hierarchy for the axioms in snap. Inferred
// facts are recorded in sess and returned in Result.Inferred.
func Classify(ctx context.Context, sess *session.Session, snap *store.Snapshot, ax *axiom.Axioms) *Result {
	start := time.Now()
	h := BuildHierarchy(ax)
	props := BuildPropertyHierarchy(ax)
	props.ComputeClosure()

	p := newPropagator(h, props, ax)

	res := &Result{Hierarchy: h, Properties: props}
	for {
		if sess.Stop(ctx) {
			res.Partial = true
			break
		}
		res.Iterations++
		h.ComputeClosure()
		grew := p.propagate()
		folded := p.foldBack()
		if !grew && !folded {
			break
		}
	}
	if h.Stale() {
		h.ComputeClosure()
	}

	res.Equivalences = h.Groups()
	res.Cycles = cycles(res.Equivalences, ax)
	res.Existentials = p.derived()

	out := emitter{sess: sess, snap: snap, res: res}
	out.subClassFacts(h)
	out.equivalenceFacts(res.Equivalences)
	out.existentialFacts(p)
	if sess.Capped() || sess.TimedOut() {
		res.Partial = true
	}

	res.Duration = time.Since(start)
	sess.Log.Debug("classification finished",
		zap.Int("classes", len(h.Nodes)),
		zap.Int("iterations", res.Iterations),
		zap.Int("equivalence_groups", len(res.Equivalences)),
		zap.Int("inferred", len(res.Inferred)),
		zap.Duration("took", res.Duration))
	return res
}

// BuildHierarchy creates the named-class graph: asserted subclass edges plus
// both directions of every named equivalence.
func BuildHierarchy(ax *axiom.Axioms) *Hierarchy {
	h := NewHierarchy()
	for _, c := range axiom.SortedKeys(ax.Classes) {
		h.Node(c)
	}
	for sub, sups := range ax.SubClass {
		for sup := range sups {
			h.AddEdge(sub, sup, Asserted)
		}
	}
	for _, pair := range ax.Equivalent {
		h.AddEdge(pair[0], pair[1], Equivalent)
		h.AddEdge(pair[1], pair[0], Equivalent)
	}
	return h
}

// BuildPropertyHierarchy creates the rdfs:subPropertyOf graph.
func BuildPropertyHierarchy(ax *axiom.Axioms) *Hierarchy {
	h := NewHierarchy()
	for _, p := range axiom.SortedKeys(ax.Properties) {
		h.Node(p)
	}
	for sub, sups := range ax.SubProperty {
		for sup := range sups {
			h.AddEdge(sub, sup, Asserted)
		}
	}
	return h
}

// cycles returns groups whose members are not all joined by explicit
// equivalentClass axioms, i.e. groups produced by subclass cycles.
func cycles(groups [][]string, ax *axiom.Axioms) [][]string {
	parent := make(map[string]string)
	var find func(string) string
	find = func(x string) string {
		p, ok := parent[x]
		if !ok || p == x {
			return x
		}
		root := find(p)
		parent[x] = root
		return root
	}
	for _, pair := range ax.Equivalent {
		a, b := find(pair[0]), find(pair[1])
		if a != b {
			parent[a] = b
		}
	}

	var out [][]string
	for _, g := range groups {
		root := find(g[0])
		for _, m := range g[1:] {
			if find(m) != root {
				out = append(out, g)
				break
			}
		}
	}
	return out
}

type emitter struct {
	sess *session.Session
	snap *store.Snapshot
	res  *Result
}

func (e *emitter) emit(f rdf.Fact) {
	if e.snap.Has(f) {
		return
	}
	if e.sess.Infer(f) {
		e.res.Inferred = append(e.res.Inferred, f)
	}
}

func (e *emitter) subClassFacts(h *Hierarchy) {
	sub := rdf.IRI(rdf.RDFSSubClassOf)
	for _, c := range h.Classes() {
		for _, anc := range h.Ancestors(c) {
			if anc == c || e.snap.HasTriple(rdf.IRI(c), sub, rdf.IRI(anc)) {
				continue
			}
			e.emit(rdf.NewFact(rdf.IRI(c), sub, rdf.IRI(anc)))
		}
	}
}

func (e *emitter) equivalenceFacts(groups [][]string) {
	eq := rdf.IRI(rdf.OWLEquivalentClass)
	for _, g := range groups {
		for i := 0; i < len(g); i++ {
			for j := i + 1; j < len(g); j++ {
				a, b := rdf.IRI(g[i]), rdf.IRI(g[j])
				if e.snap.HasTriple(a, eq, b) || e.snap.HasTriple(b, eq, a) {
					continue
				}
				e.emit(rdf.NewFact(a, eq, b))
			}
		}
	}
}

func (e *emitter) existentialFacts(p *propagator) {
	sub := rdf.IRI(rdf.RDFSSubClassOf)
	for _, x := range p.derived() {
		if p.asserted[x] {
			continue
		}
		node, existing := p.nodeFor(x.Property, x.Filler)
		if !existing {
			e.emit(rdf.NewFact(node, rdf.IRI(rdf.RDFType), rdf.IRI(rdf.OWLRestriction)))
			e.emit(rdf.NewFact(node, rdf.IRI(rdf.OWLOnProperty), rdf.IRI(x.Property)))
			e.emit(rdf.NewFact(node, rdf.IRI(rdf.OWLSomeValuesFrom), rdf.IRI(x.Filler)))
		}
		if e.snap.HasTriple(rdf.IRI(x.Class), sub, node) {
			continue
		}
		e.emit(rdf.NewFact(rdf.IRI(x.Class), sub, node))
	}
}

// MintedNode returns the deterministic blank node used for ∃P.D when no
// asserted restriction node carries the same content.
func MintedNode(property, filler string) rdf.Term {
	sum := sha1.Sum([]byte("some|" + property + "|" + filler))
	return rdf.Blank("exists-" + hex.EncodeToString(sum[:8]))
}

func sortExistentials(xs []Existential) {
	sort.Slice(xs, func(i, j int) bool {
		if xs[i].Class != xs[j].Class {
			return xs[i].Class < xs[j].Class
		}
		if xs[i].Property != xs[j].Property {
			return xs[i].Property < xs[j].Property
		}
		return xs[i].Filler < xs[j].Filler
	})
}
