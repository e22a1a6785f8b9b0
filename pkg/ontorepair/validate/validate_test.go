package validate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cognicore/ontorepair/pkg/ontorepair/axiom"
	"github.com/cognicore/ontorepair/pkg/ontorepair/classify"
	"github.com/cognicore/ontorepair/pkg/ontorepair/issue"
	"github.com/cognicore/ontorepair/pkg/ontorepair/rdf"
	"github.com/cognicore/ontorepair/pkg/ontorepair/realize"
	"github.com/cognicore/ontorepair/pkg/ontorepair/repair"
	"github.com/cognicore/ontorepair/pkg/ontorepair/session"
	"github.com/cognicore/ontorepair/pkg/ontorepair/store"
)

const ex = "http://example.org/"

func input(facts ...rdf.Fact) repair.Input {
	snap := store.NewSnapshot(facts)
	ax := axiom.Extract(snap, nil)
	cls := classify.Classify(context.Background(), session.New(0, nil), snap, ax)
	return repair.Input{Snap: snap, Axioms: ax, Classification: cls, Types: realize.InferTypes(snap, ax, cls)}
}

func TestValidate_Clean(t *testing.T) {
	r := (&Validator{}).Validate(context.Background(), input(
		rdf.Triple(ex+"Cat", rdf.RDFSSubClassOf, ex+"Animal"),
		rdf.Triple(ex+"owns", rdf.RDFSDomain, ex+"Person"),
		rdf.Triple(ex+"owns", rdf.RDFSRange, ex+"Animal"),
		rdf.Triple(ex+"ann", rdf.RDFType, ex+"Person"),
		rdf.Triple(ex+"tom", rdf.RDFType, ex+"Cat"),
		rdf.Triple(ex+"ann", ex+"owns", ex+"tom"),
	))
	assert.True(t, r.IsConsistent)
	assert.Equal(t, 0, r.RemainingIssues)
	assert.Equal(t, 1.0, r.CompletenessScore)
	assert.InDelta(t, 1.0, r.Overall, 1e-9)
}

func TestValidate_Degraded(t *testing.T) {
	r := (&Validator{}).Validate(context.Background(), input(
		rdf.Triple(ex+"Felix", rdf.RDFType, ex+"Cat"),
		rdf.Triple(ex+"Felix", rdf.RDFType, ex+"Dog"),
		rdf.Triple(ex+"Cat", rdf.OWLDisjointWith, ex+"Dog"),
		rdf.Triple(ex+"Felix", ex+"chases", ex+"Jerry"),
	))
	assert.False(t, r.IsConsistent)
	assert.Equal(t, 1, r.IssuesByKind[issue.DisjointViolation])
	assert.Equal(t, 0.0, r.CompletenessScore)
	assert.Less(t, r.QualityScore, 1.0)
	assert.Less(t, r.Overall, 0.5)
	for _, s := range []float64{r.ConsistencyScore, r.CompletenessScore, r.QualityScore, r.Overall} {
		assert.GreaterOrEqual(t, s, 0.0)
		assert.LessOrEqual(t, s, 1.0)
	}
}
