package classify

import (
	"github.com/cognicore/ontorepair/pkg/ontorepair/axiom"
	"github.com/cognicore/ontorepair/pkg/ontorepair/rdf"
)

type propKey struct {
	property string
	filler   string
}

// propagator applies the someValuesFrom rules:
//
//	A: C ⊑ ∃P.D, D ⊑ D'  ⟹ C ⊑ ∃P.D'
//	B: C ⊑ ∃P.D, P ⊑ P'  ⟹ C ⊑ ∃P'.D
//
// and folds derived existentials back into named edges when they match a
// class defined as equivalent to that existential.
type propagator struct {
	h           *Hierarchy
	props       *Hierarchy
	known       map[Existential]bool
	asserted    map[Existential]bool
	definitions map[propKey][]string
	nodes       map[propKey]rdf.Term
}

func newPropagator(h, props *Hierarchy, ax *axiom.Axioms) *propagator {
	p := &propagator{
		h:           h,
		props:       props,
		known:       make(map[Existential]bool),
		asserted:    make(map[Existential]bool),
		definitions: make(map[propKey][]string),
		nodes:       make(map[propKey]rdf.Term),
	}
	for _, a := range ax.Anchors {
		r := a.Restriction
		if r.Kind != axiom.SomeValuesFrom || !r.Value.IsIRI() {
			continue
		}
		key := propKey{property: r.OnProperty, filler: r.Value.Value}
		x := Existential{Class: a.Class, Property: r.OnProperty, Filler: r.Value.Value}
		p.known[x] = true
		p.asserted[x] = true
		if a.Via == axiom.ViaEquivalentClass {
			p.definitions[key] = append(p.definitions[key], a.Class)
		}
		if cur, ok := p.nodes[key]; !ok || r.Node.Key() < cur.Key() {
			p.nodes[key] = r.Node
		}
	}
	return p
}

// propagate applies rules A and B against the current closures and reports
// whether any new existential appeared.
func (p *propagator) propagate() bool {
	grew := false
	for _, x := range p.derived() {
		for _, filler := range p.h.Ancestors(x.Filler) {
			for _, prop := range p.props.Ancestors(x.Property) {
				next := Existential{Class: x.Class, Property: prop, Filler: filler}
				if !p.known[next] {
					p.known[next] = true
					grew = true
				}
			}
		}
	}
	return grew
}

// foldBack adds C ⊑ N for every existential C ⊑ ∃P.D where N ≡ ∃P.D.
func (p *propagator) foldBack() bool {
	added := false
	for _, x := range p.derived() {
		for _, defined := range p.definitions[propKey{property: x.Property, filler: x.Filler}] {
			if defined == x.Class || p.h.Subsumes(defined, x.Class) {
				continue
			}
			if p.h.AddEdge(x.Class, defined, Definition) {
				added = true
			}
		}
	}
	return added
}

// derived returns every known existential in a stable order.
func (p *propagator) derived() []Existential {
	out := make([]Existential, 0, len(p.known))
	for x := range p.known {
		out = append(out, x)
	}
	sortExistentials(out)
	return out
}

// nodeFor returns the restriction node standing for ∃property.filler and
// whether it already exists in the input.
func (p *propagator) nodeFor(property, filler string) (rdf.Term, bool) {
	if n, ok := p.nodes[propKey{property: property, filler: filler}]; ok {
		return n, true
	}
	return MintedNode(property, filler), false
}
