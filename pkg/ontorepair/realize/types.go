package realize

import (
	"sort"

	"github.com/cognicore/ontorepair/pkg/ontorepair/axiom"
	"github.com/cognicore/ontorepair/pkg/ontorepair/classify"
	"github.com/cognicore/ontorepair/pkg/ontorepair/rdf"
	"github.com/cognicore/ontorepair/pkg/ontorepair/store"
)

// Types holds each individual's asserted types and the full set of types
// entailed by the closed hierarchy.
type Types struct {
	Asserted map[rdf.Term]map[string]struct{}
	All      map[rdf.Term]map[string]struct{}
	// Via records, for types added by allValuesFrom propagation, the fact
	// that carried them.
	Via map[rdf.Term]map[string]rdf.Fact
}

// Individuals returns every typed individual in a stable order.
func (t *Types) Individuals() []rdf.Term {
	out := make([]rdf.Term, 0, len(t.All))
	for i := range t.All {
		out = append(out, i)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Key() < out[b].Key() })
	return out
}

// Has reports whether i has type class, asserted or inferred.
func (t *Types) Has(i rdf.Term, class string) bool {
	_, ok := t.All[i][class]
	return ok
}

// Of returns every type of i in order.
func (t *Types) Of(i rdf.Term) []string {
	return axiom.SortedKeys(t.All[i])
}

// InstancesOf returns every individual having class among its types.
func (t *Types) InstancesOf(class string) []rdf.Term {
	var out []rdf.Term
	for _, i := range t.Individuals() {
		if t.Has(i, class) {
			out = append(out, i)
		}
	}
	return out
}

// InferTypes expands asserted rdf:type facts through the closed hierarchy and
// through allValuesFrom restrictions: i:C, C ⊑ ∀P.D, P(i,v) ⟹ v:D. Values of
// sub-properties of P count as values of P.
func InferTypes(snap *store.Snapshot, ax *axiom.Axioms, cls *classify.Result) *Types {
	t := &Types{
		Asserted: make(map[rdf.Term]map[string]struct{}),
		All:      make(map[rdf.Term]map[string]struct{}),
		Via:      make(map[rdf.Term]map[string]rdf.Fact),
	}
	for _, f := range snap.WithPredicate(rdf.RDFType) {
		if !f.Object.IsIRI() || rdf.IsVocabulary(f.Object.Value) {
			continue
		}
		if t.Asserted[f.Subject] == nil {
			t.Asserted[f.Subject] = make(map[string]struct{})
		}
		t.Asserted[f.Subject][f.Object.Value] = struct{}{}
		t.add(f.Subject, f.Object.Value, cls.Hierarchy)
	}

	universals := make(map[string][]axiom.Restriction)
	for _, a := range ax.Anchors {
		if a.Restriction.Kind == axiom.AllValuesFrom && a.Restriction.Value.IsIRI() {
			universals[a.Class] = append(universals[a.Class], a.Restriction)
		}
	}
	if len(universals) == 0 {
		return t
	}

	for changed := true; changed; {
		changed = false
		for _, i := range t.Individuals() {
			for _, class := range t.Of(i) {
				for _, r := range universals[class] {
					for _, f := range valuesOf(snap, cls.Properties, i, r.OnProperty) {
						if !f.Object.IsResource() || t.Has(f.Object, r.Value.Value) {
							continue
						}
						t.add(f.Object, r.Value.Value, cls.Hierarchy)
						if t.Via[f.Object] == nil {
							t.Via[f.Object] = make(map[string]rdf.Fact)
						}
						t.Via[f.Object][r.Value.Value] = f
						changed = true
					}
				}
			}
		}
	}
	return t
}

func (t *Types) add(i rdf.Term, class string, h *classify.Hierarchy) {
	set := t.All[i]
	if set == nil {
		set = make(map[string]struct{})
		t.All[i] = set
	}
	for _, anc := range h.Ancestors(class) {
		set[anc] = struct{}{}
	}
}

// valuesOf returns facts P'(i, v) for every P' ⊑ property.
func valuesOf(snap *store.Snapshot, props *classify.Hierarchy, i rdf.Term, property string) []rdf.Fact {
	var out []rdf.Fact
	for _, f := range snap.Match(rdf.Pattern{Subject: i}) {
		if f.Predicate.IsIRI() && props.Subsumes(property, f.Predicate.Value) {
			out = append(out, f)
		}
	}
	return out
}

// ValuesOf is the exported form of valuesOf for other phases.
func ValuesOf(snap *store.Snapshot, props *classify.Hierarchy, i rdf.Term, property string) []rdf.Fact {
	return valuesOf(snap, props, i, property)
}
