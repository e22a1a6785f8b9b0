package repair

import (
	"context"

	"github.com/cognicore/ontorepair/pkg/ontorepair/axiom"
	"github.com/cognicore/ontorepair/pkg/ontorepair/classify"
	"github.com/cognicore/ontorepair/pkg/ontorepair/completion"
	"github.com/cognicore/ontorepair/pkg/ontorepair/rdf"
	"github.com/cognicore/ontorepair/pkg/ontorepair/realize"
	"github.com/cognicore/ontorepair/pkg/ontorepair/session"
	"github.com/cognicore/ontorepair/pkg/ontorepair/store"
)

const ex = "http://example.org/"

// reason runs the read-only phases over facts and returns what the
// detector and generator need.
func reason(facts ...rdf.Fact) (Input, *Context) {
	snap := store.NewSnapshot(facts)
	ax := axiom.Extract(snap, nil)
	cls := classify.Classify(context.Background(), session.New(0, nil), snap, ax)
	types := realize.InferTypes(snap, ax, cls)
	comp := &completion.Completer{Snap: snap, Axioms: ax, Hierarchy: cls.Hierarchy, Types: types}
	suggestions, _ := comp.Run(context.Background())
	in := Input{Snap: snap, Axioms: ax, Classification: cls, Types: types}
	return in, &Context{Snap: snap, Axioms: ax, Hierarchy: cls.Hierarchy, Types: types, Suggestions: suggestions}
}

func felix() []rdf.Fact {
	return []rdf.Fact{
		rdf.Triple(ex+"Felix", rdf.RDFType, ex+"Cat"),
		rdf.Triple(ex+"Felix", rdf.RDFType, ex+"Dog"),
		rdf.Triple(ex+"Cat", rdf.OWLDisjointWith, ex+"Dog"),
	}
}
