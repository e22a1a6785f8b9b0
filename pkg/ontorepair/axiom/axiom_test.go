package axiom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/ontorepair/pkg/ontorepair/rdf"
	"github.com/cognicore/ontorepair/pkg/ontorepair/store"
)

const ex = "http://example.org/"

func restriction(node string, facts ...[2]rdf.Term) []rdf.Fact {
	b := rdf.Blank(node)
	out := []rdf.Fact{rdf.NewFact(b, rdf.IRI(rdf.RDFType), rdf.IRI(rdf.OWLRestriction))}
	for _, po := range facts {
		out = append(out, rdf.NewFact(b, po[0], po[1]))
	}
	return out
}

func po(p string, o rdf.Term) [2]rdf.Term { return [2]rdf.Term{rdf.IRI(p), o} }

func TestExtract_HierarchyAndDisjointness(t *testing.T) {
	snap := store.NewSnapshot([]rdf.Fact{
		rdf.Triple(ex+"Siamese", rdf.RDFSSubClassOf, ex+"Cat"),
		rdf.Triple(ex+"Cat", rdf.RDFSSubClassOf, ex+"Animal"),
		rdf.Triple(ex+"Cat", rdf.RDFSSubClassOf, rdf.OWLThing),
		rdf.Triple(ex+"Dog", rdf.OWLDisjointWith, ex+"Cat"),
		rdf.Triple(ex+"Cat", rdf.OWLDisjointWith, ex+"Dog"),
		rdf.Triple(ex+"Feline", rdf.OWLEquivalentClass, ex+"Cat"),
		rdf.Triple(ex+"felix", rdf.RDFType, ex+"Cat"),
		rdf.Triple(ex+"Rock", rdf.RDFType, rdf.OWLClass),
	})

	ax := Extract(snap, nil)

	assert.Contains(t, ax.SubClass[ex+"Siamese"], ex+"Cat")
	assert.NotContains(t, ax.SubClass[ex+"Cat"], rdf.OWLThing)
	assert.Equal(t, [][2]string{{ex + "Cat", ex + "Dog"}}, ax.Disjoint)
	assert.Equal(t, [][2]string{{ex + "Feline", ex + "Cat"}}, ax.Equivalent)
	for _, c := range []string{"Siamese", "Cat", "Animal", "Dog", "Feline", "Rock"} {
		assert.True(t, ax.IsClass(ex+c), c)
	}
	assert.Contains(t, ax.DeclaredClasses, ex+"Rock")
	assert.False(t, ax.IsClass(rdf.OWLClass))
}

func TestExtract_Restrictions(t *testing.T) {
	facts := []rdf.Fact{
		rdf.NewFact(rdf.IRI(ex+"Engineer"), rdf.IRI(rdf.RDFSSubClassOf), rdf.Blank("r1")),
		rdf.NewFact(rdf.IRI(ex+"Person"), rdf.IRI(rdf.RDFSSubClassOf), rdf.Blank("r2")),
		rdf.NewFact(rdf.IRI(ex+"Worker"), rdf.IRI(rdf.OWLEquivalentClass), rdf.Blank("r3")),
	}
	facts = append(facts, restriction("r1",
		po(rdf.OWLOnProperty, rdf.IRI(ex+"worksOn")),
		po(rdf.OWLSomeValuesFrom, rdf.IRI(ex+"SoftwareProject")))...)
	facts = append(facts, restriction("r2",
		po(rdf.OWLOnProperty, rdf.IRI(ex+"hasMother")),
		po(rdf.OWLCardinality, rdf.IntLiteral(1)))...)
	facts = append(facts, restriction("r3",
		po(rdf.OWLOnProperty, rdf.IRI(ex+"worksOn")),
		po(rdf.OWLSomeValuesFrom, rdf.IRI(ex+"Project")))...)

	ax := Extract(store.NewSnapshot(facts), nil)

	eng := ax.AnchorsFor(ex + "Engineer")
	require.Len(t, eng, 1)
	assert.Equal(t, SomeValuesFrom, eng[0].Restriction.Kind)
	assert.Equal(t, ex+"worksOn", eng[0].Restriction.OnProperty)
	assert.Equal(t, rdf.IRI(ex+"SoftwareProject"), eng[0].Restriction.Value)
	assert.Equal(t, ViaSubClassOf, eng[0].Via)

	person := ax.AnchorsFor(ex + "Person")
	require.Len(t, person, 2, "exact cardinality expands to min and max")
	kinds := []RestrictionKind{person[0].Restriction.Kind, person[1].Restriction.Kind}
	assert.ElementsMatch(t, []RestrictionKind{MinCardinality, MaxCardinality}, kinds)

	worker := ax.AnchorsFor(ex + "Worker")
	require.Len(t, worker, 1)
	assert.Equal(t, ViaEquivalentClass, worker[0].Via)

	assert.Contains(t, ax.Properties, ex+"worksOn")
	assert.True(t, ax.IsClass(ex+"SoftwareProject"))
}

func TestExtract_SkipsRestrictionWithoutOnProperty(t *testing.T) {
	facts := []rdf.Fact{
		rdf.NewFact(rdf.IRI(ex+"Broken"), rdf.IRI(rdf.RDFSSubClassOf), rdf.Blank("r9")),
	}
	facts = append(facts, restriction("r9", po(rdf.OWLSomeValuesFrom, rdf.IRI(ex+"Thing")))...)

	ax := Extract(store.NewSnapshot(facts), nil)

	assert.Empty(t, ax.AnchorsFor(ex+"Broken"))
	require.Len(t, ax.Malformed, 1)
	assert.Equal(t, rdf.Blank("r9"), ax.Malformed[0].Node)
}

func TestExtract_PropertyCharacteristics(t *testing.T) {
	snap := store.NewSnapshot([]rdf.Fact{
		rdf.Triple(ex+"hasMother", rdf.RDFType, rdf.OWLFunctionalProperty),
		rdf.Triple(ex+"ssn", rdf.RDFType, rdf.OWLInverseFunctionalProperty),
		rdf.Triple(ex+"hasMother", rdf.RDFSSubPropertyOf, ex+"hasParent"),
		rdf.Triple(ex+"hasParent", rdf.RDFSDomain, ex+"Person"),
		rdf.Triple(ex+"hasParent", rdf.RDFSRange, ex+"Person"),
		rdf.Triple(ex+"bob", ex+"likes", ex+"alice"),
	})

	ax := Extract(snap, nil)

	assert.Contains(t, ax.Functional, ex+"hasMother")
	assert.Contains(t, ax.InverseFunctional, ex+"ssn")
	assert.Contains(t, ax.SubProperty[ex+"hasMother"], ex+"hasParent")
	assert.Equal(t, []string{ex + "Person"}, ax.Domains[ex+"hasParent"])
	assert.Equal(t, []string{ex + "Person"}, ax.Ranges[ex+"hasParent"])
	assert.Contains(t, ax.Properties, ex+"likes")
	assert.NotContains(t, ax.Properties, rdf.RDFType)
}
