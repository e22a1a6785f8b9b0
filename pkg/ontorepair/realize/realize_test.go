package realize

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/ontorepair/pkg/ontorepair/axiom"
	"github.com/cognicore/ontorepair/pkg/ontorepair/classify"
	"github.com/cognicore/ontorepair/pkg/ontorepair/rdf"
	"github.com/cognicore/ontorepair/pkg/ontorepair/session"
	"github.com/cognicore/ontorepair/pkg/ontorepair/store"
)

const ex = "http://example.org/"

func setup(facts ...rdf.Fact) (*session.Session, *store.Snapshot, *classify.Result, *Types) {
	snap := store.NewSnapshot(facts)
	sess := session.New(0, nil)
	ax := axiom.Extract(snap, nil)
	cls := classify.Classify(context.Background(), sess, snap, ax)
	return sess, snap, cls, InferTypes(snap, ax, cls)
}

func TestRealize_MostSpecificType(t *testing.T) {
	sess, snap, cls, types := setup(
		rdf.Triple(ex+"Siamese", rdf.RDFSSubClassOf, ex+"Cat"),
		rdf.Triple(ex+"Cat", rdf.RDFSSubClassOf, ex+"Animal"),
		rdf.Triple(ex+"felix", rdf.RDFType, ex+"Animal"),
		rdf.Triple(ex+"felix", rdf.RDFType, ex+"Cat"),
		rdf.Triple(ex+"felix", rdf.RDFType, ex+"Siamese"),
	)

	res := Realize(context.Background(), sess, snap, cls.Hierarchy, types)

	assert.Equal(t, []string{ex + "Siamese"}, res.PerIndividual[ex+"felix"])
	assert.Empty(t, res.Inferred, "the most specific type is already asserted")
}

func TestRealize_InfersFromUniversal(t *testing.T) {
	b := rdf.Blank("r")
	sess, snap, cls, types := setup(
		rdf.NewFact(rdf.IRI(ex+"CatOwner"), rdf.IRI(rdf.RDFSSubClassOf), b),
		rdf.NewFact(b, rdf.IRI(rdf.OWLOnProperty), rdf.IRI(ex+"owns")),
		rdf.NewFact(b, rdf.IRI(rdf.OWLAllValuesFrom), rdf.IRI(ex+"Cat")),
		rdf.Triple(ex+"Cat", rdf.RDFSSubClassOf, ex+"Animal"),
		rdf.Triple(ex+"ownsPet", rdf.RDFSSubPropertyOf, ex+"owns"),
		rdf.Triple(ex+"alice", rdf.RDFType, ex+"CatOwner"),
		rdf.Triple(ex+"alice", ex+"ownsPet", ex+"tom"),
	)

	assert.True(t, types.Has(rdf.IRI(ex+"tom"), ex+"Cat"))
	assert.True(t, types.Has(rdf.IRI(ex+"tom"), ex+"Animal"))
	require.Contains(t, types.Via[rdf.IRI(ex+"tom")], ex+"Cat")

	res := Realize(context.Background(), sess, snap, cls.Hierarchy, types)
	assert.Equal(t, []string{ex + "Cat"}, res.PerIndividual[ex+"tom"])
	assert.Contains(t, res.Inferred, rdf.Triple(ex+"tom", rdf.RDFType, ex+"Cat"))
}

func TestMostSpecific_KeepsEquivalents(t *testing.T) {
	_, _, cls, _ := setup(
		rdf.Triple(ex+"Feline", rdf.OWLEquivalentClass, ex+"Cat"),
		rdf.Triple(ex+"Cat", rdf.RDFSSubClassOf, ex+"Animal"),
	)
	got := MostSpecific(cls.Hierarchy, []string{ex + "Animal", ex + "Cat", ex + "Feline"})
	assert.Equal(t, []string{ex + "Cat", ex + "Feline"}, got)
}

func TestInferTypes_InstancesOf(t *testing.T) {
	_, _, _, types := setup(
		rdf.Triple(ex+"Cat", rdf.RDFSSubClassOf, ex+"Animal"),
		rdf.Triple(ex+"felix", rdf.RDFType, ex+"Cat"),
		rdf.Triple(ex+"rex", rdf.RDFType, ex+"Dog"),
		rdf.Triple(ex+"Cat", rdf.RDFType, rdf.OWLClass),
	)
	assert.Equal(t, []rdf.Term{rdf.IRI(ex + "felix")}, types.InstancesOf(ex+"Animal"))
	assert.NotContains(t, types.All, rdf.IRI(ex+"Cat"), "schema declarations are not individuals")
}
