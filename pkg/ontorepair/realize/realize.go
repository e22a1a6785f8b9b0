// Package realize computes the most specific types of every individual.
package realize

import (
	"context"

	"go.uber.org/zap"

	"github.com/cognicore/ontorepair/pkg/ontorepair/classify"
	"github.com/cognicore/ontorepair/pkg/ontorepair/rdf"
	"github.com/cognicore/ontorepair/pkg/ontorepair/session"
	"github.com/cognicore/ontorepair/pkg/ontorepair/store"
)

// Result maps each individual (by Term.Key) to its most specific types.
type Result struct {
	PerIndividual map[string][]string
	Inferred      []rdf.Fact
	Partial       bool
}

// Realize keeps, for each individual, the types that are not a proper
// ancestor of another of its types. A type fact is inferred for every most
// specific type not already asserted. Redundant asserted ancestors are left
// in place.
func Realize(ctx context.Context, sess *session.Session, snap *store.Snapshot, h *classify.Hierarchy, types *Types) *Result {
	res := &Result{PerIndividual: make(map[string][]string)}
	typ := rdf.IRI(rdf.RDFType)

	for _, i := range types.Individuals() {
		if sess.Expired(ctx) {
			res.Partial = true
			break
		}
		specific := MostSpecific(h, types.Of(i))
		res.PerIndividual[i.Key()] = specific
		for _, c := range specific {
			f := rdf.NewFact(i, typ, rdf.IRI(c))
			if snap.HasTriple(i, typ, rdf.IRI(c)) {
				continue
			}
			if sess.Infer(f) {
				res.Inferred = append(res.Inferred, f)
			}
		}
	}
	if sess.Capped() {
		res.Partial = true
	}
	sess.Log.Debug("realization finished",
		zap.Int("individuals", len(res.PerIndividual)),
		zap.Int("inferred", len(res.Inferred)))
	return res
}

// MostSpecific filters classes down to those with no proper descendant in
// the same set. Members of one equivalence group are kept together.
func MostSpecific(h *classify.Hierarchy, classes []string) []string {
	var out []string
	for _, c := range classes {
		redundant := false
		for _, other := range classes {
			if h.ProperAncestor(c, other) {
				redundant = true
				break
			}
		}
		if !redundant {
			out = append(out, c)
		}
	}
	return out
}
