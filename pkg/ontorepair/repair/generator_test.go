package repair

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/ontorepair/pkg/ontorepair/internalerr"
	"github.com/cognicore/ontorepair/pkg/ontorepair/issue"
	"github.com/cognicore/ontorepair/pkg/ontorepair/rdf"
)

func byKind(ps []Proposal) map[string]Proposal {
	out := map[string]Proposal{}
	for _, p := range ps {
		out[p.Kind] = p
	}
	return out
}

func TestGenerate_DisjointViolation(t *testing.T) {
	in, c := reason(felix()...)
	det := (&Detector{}).Detect(context.Background(), in)

	var disjoint []issue.Issue
	for _, is := range det.Issues {
		if is.Kind == issue.DisjointViolation {
			disjoint = append(disjoint, is)
		}
	}
	require.Len(t, disjoint, 1)

	all := NewGenerator(0, nil).Generate(context.Background(), disjoint, c)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"RemoveTypeAssertion", "CreateBridgeClass", "RemoveDisjointAxiom"},
		[]string{all[0].Kind, all[1].Kind, all[2].Kind})

	kinds := byKind(all)
	rta := kinds["RemoveTypeAssertion"]
	assert.Equal(t, 0.8, rta.Confidence)
	assert.Equal(t, issue.Low, rta.Impact)
	assert.Equal(t, []Action{RemoveFact(rdf.PatternOf(rdf.Triple(ex+"Felix", rdf.RDFType, ex+"Cat")))}, rta.Actions)
	require.Len(t, rta.Alternatives, 1)
	assert.Equal(t, []Action{RemoveFact(rdf.PatternOf(rdf.Triple(ex+"Felix", rdf.RDFType, ex+"Dog")))}, rta.Alternatives[0])
	assert.Equal(t, disjoint[0].ID, rta.IssueID)

	rda := kinds["RemoveDisjointAxiom"]
	assert.True(t, rda.RequiresConfirmation)
	assert.Equal(t, issue.Medium, rda.Impact)

	bridge := kinds["CreateBridgeClass"]
	assert.Contains(t, bridge.Actions, AddFact(rdf.Triple(ex+"CatAndDog", rdf.RDFSSubClassOf, ex+"Cat")))
	assert.Contains(t, bridge.Actions, AddFact(rdf.Triple(ex+"Felix", rdf.RDFType, ex+"CatAndDog")))

	filtered := NewGenerator(DefaultThreshold, nil).Generate(context.Background(), disjoint, c)
	assert.Len(t, filtered, 2, "RemoveDisjointAxiom falls under the default threshold")
}

func TestGenerate_RemovesSubclassAssertion(t *testing.T) {
	in, c := reason(
		rdf.Triple(ex+"Siamese", rdf.RDFSSubClassOf, ex+"Cat"),
		rdf.Triple(ex+"Felix", rdf.RDFType, ex+"Siamese"),
		rdf.Triple(ex+"Felix", rdf.RDFType, ex+"Dog"),
		rdf.Triple(ex+"Cat", rdf.OWLDisjointWith, ex+"Dog"),
	)
	det := (&Detector{}).Detect(context.Background(), in)
	ps := NewGenerator(0.75, nil).Generate(context.Background(), det.Issues, c)

	rta := byKind(ps)["RemoveTypeAssertion"]
	assert.Equal(t, []Action{RemoveFact(rdf.PatternOf(rdf.Triple(ex+"Felix", rdf.RDFType, ex+"Siamese")))}, rta.Actions)
}

func TestGenerate_CompletionProposals(t *testing.T) {
	facts := []rdf.Fact{}
	for _, cat := range []string{"tom", "felix", "garfield", "salem", "nala"} {
		facts = append(facts,
			rdf.Triple(ex+cat, rdf.RDFType, ex+"Cat"),
			rdf.Triple(ex+cat, ex+"chases", ex+"jerry"),
		)
	}
	facts = append(facts, rdf.Triple(ex+"jerry", rdf.RDFType, ex+"Mouse"))
	in, c := reason(facts...)
	det := (&Detector{}).Detect(context.Background(), in)

	ps := NewGenerator(DefaultThreshold, nil).Generate(context.Background(), det.Issues, c)
	kinds := byKind(ps)
	require.Contains(t, kinds, "AddDomain")
	require.Contains(t, kinds, "AddRange")
	assert.Equal(t, []Action{AddFact(rdf.Triple(ex+"chases", rdf.RDFSDomain, ex+"Cat"))}, kinds["AddDomain"].Actions)
	assert.Equal(t, []Action{AddFact(rdf.Triple(ex+"chases", rdf.RDFSRange, ex+"Mouse"))}, kinds["AddRange"].Actions)
	assert.True(t, kinds["AddDomain"].AutoApply)
	assert.Equal(t, 1.0, kinds["AddDomain"].Confidence)
}

func TestGenerate_CycleStrategies(t *testing.T) {
	in, c := reason(
		rdf.Triple(ex+"A", rdf.RDFSSubClassOf, ex+"B"),
		rdf.Triple(ex+"B", rdf.RDFSSubClassOf, ex+"A"),
	)
	det := (&Detector{}).Detect(context.Background(), in)
	require.Equal(t, 1, issue.CountBy(det.Issues)[issue.CircularDefinition])

	ps := NewGenerator(0, nil).Generate(context.Background(), det.Issues, c)
	kinds := byKind(ps)

	eq := kinds["ReplaceCycleWithEquivalence"]
	assert.Equal(t, 0.75, eq.Confidence)
	assert.Equal(t, []Action{
		RemoveFact(rdf.PatternOf(rdf.Triple(ex+"A", rdf.RDFSSubClassOf, ex+"B"))),
		RemoveFact(rdf.PatternOf(rdf.Triple(ex+"B", rdf.RDFSSubClassOf, ex+"A"))),
		AddFact(rdf.Triple(ex+"A", rdf.OWLEquivalentClass, ex+"B")),
	}, eq.Actions)

	brk := kinds["BreakCycle"]
	assert.True(t, brk.RequiresConfirmation)
	assert.Equal(t, []Action{RemoveFact(rdf.PatternOf(rdf.Triple(ex+"B", rdf.RDFSSubClassOf, ex+"A")))}, brk.Actions)
}

func TestGenerate_SurplusAndHierarchy(t *testing.T) {
	in, c := reason(
		rdf.Triple(ex+"mother", rdf.RDFType, rdf.OWLFunctionalProperty),
		rdf.Triple(ex+"bob", ex+"mother", ex+"ann"),
		rdf.Triple(ex+"bob", ex+"mother", ex+"eve"),
		rdf.Triple(ex+"CatDog", rdf.RDFSSubClassOf, ex+"Cat"),
		rdf.Triple(ex+"CatDog", rdf.RDFSSubClassOf, ex+"Dog"),
		rdf.Triple(ex+"Cat", rdf.OWLDisjointWith, ex+"Dog"),
	)
	det := (&Detector{}).Detect(context.Background(), in)
	ps := NewGenerator(0, nil).Generate(context.Background(), det.Issues, c)
	kinds := byKind(ps)

	surplus := kinds["RemoveSurplusValues"]
	assert.Equal(t, []Action{RemoveFact(rdf.PatternOf(rdf.Triple(ex+"bob", ex+"mother", ex+"eve")))}, surplus.Actions)

	edge := kinds["RemoveSuperclassEdge"]
	assert.Equal(t, []Action{RemoveFact(rdf.PatternOf(rdf.Triple(ex+"CatDog", rdf.RDFSSubClassOf, ex+"Dog")))}, edge.Actions)
	require.Len(t, edge.Alternatives, 1)
	assert.Equal(t, []Action{RemoveFact(rdf.PatternOf(rdf.Triple(ex+"CatDog", rdf.RDFSSubClassOf, ex+"Cat")))}, edge.Alternatives[0])
}

func TestGenerate_RankingAndBounds(t *testing.T) {
	in, c := reason(append(felix(),
		rdf.Triple(ex+"A", rdf.RDFSSubClassOf, ex+"B"),
		rdf.Triple(ex+"B", rdf.RDFSSubClassOf, ex+"A"),
		rdf.Triple(ex+"mother", rdf.RDFType, rdf.OWLFunctionalProperty),
		rdf.Triple(ex+"bob", ex+"mother", ex+"ann"),
		rdf.Triple(ex+"bob", ex+"mother", ex+"eve"),
	)...)
	det := (&Detector{}).Detect(context.Background(), in)
	ps := NewGenerator(0, nil).Generate(context.Background(), det.Issues, c)
	require.NotEmpty(t, ps)

	for i, p := range ps {
		assert.GreaterOrEqual(t, p.Confidence, 0.0)
		assert.LessOrEqual(t, p.Confidence, 1.0)
		for j := i + 1; j < len(ps); j++ {
			assert.False(t, ps[j].Confidence-p.Confidence > 0.1, "%s ranked above %s", p.Kind, ps[j].Kind)
		}
	}
}

func TestGenerate_Dedup(t *testing.T) {
	in, c := reason(
		rdf.Triple(ex+"felix", rdf.RDFType, ex+"Cat"),
		rdf.Triple(ex+"felix", rdf.RDFType, ex+"Dog"),
		rdf.Triple(ex+"rex", rdf.RDFType, ex+"Cat"),
		rdf.Triple(ex+"rex", rdf.RDFType, ex+"Dog"),
		rdf.Triple(ex+"Cat", rdf.OWLDisjointWith, ex+"Dog"),
	)
	det := (&Detector{}).Detect(context.Background(), in)
	ps := NewGenerator(0, nil).Generate(context.Background(), det.Issues, c)

	n := 0
	for _, p := range ps {
		if p.Kind == "RemoveDisjointAxiom" {
			n++
		}
	}
	assert.Equal(t, 1, n, "both violations propose the same axiom removal")
}

func TestProposalValidate(t *testing.T) {
	p := Proposal{Kind: "X", Confidence: 1.5, Actions: []Action{AddFact(rdf.Triple(ex+"a", ex+"p", ex+"b"))}}
	assert.ErrorIs(t, p.Validate(), internalerr.ErrInvalidInput)
	p.Confidence = math.NaN()
	assert.ErrorIs(t, p.Validate(), internalerr.ErrInvalidInput)
	p.Confidence = 0.5
	assert.NoError(t, p.Validate())
	p.Actions = nil
	assert.ErrorIs(t, p.Validate(), internalerr.ErrInvalidInput)
}

func TestSortProposals(t *testing.T) {
	ps := []Proposal{
		{Kind: "b", Confidence: 0.7, Impact: issue.Medium},
		{Kind: "a", Confidence: 0.7, Impact: issue.Low},
		{Kind: "c", Confidence: 0.9, Impact: issue.High},
	}
	SortProposals(ps)
	assert.Equal(t, []string{"c", "a", "b"}, []string{ps[0].Kind, ps[1].Kind, ps[2].Kind})
}

func TestGenerate_RemoveSuperclassEdgeFromDisjointMember(t *testing.T) {
	in, c := reason(
		rdf.Triple(ex+"Cat", rdf.RDFSSubClassOf, ex+"Animal"),
		rdf.Triple(ex+"Cat", rdf.OWLDisjointWith, ex+"Animal"),
	)
	det := (&Detector{}).Detect(context.Background(), in)
	ps := NewGenerator(0, nil).Generate(context.Background(), det.Issues, c)

	edge := byKind(ps)["RemoveSuperclassEdge"]
	assert.Equal(t, []Action{RemoveFact(rdf.PatternOf(rdf.Triple(ex+"Cat", rdf.RDFSSubClassOf, ex+"Animal")))}, edge.Actions)
	assert.Empty(t, edge.Alternatives)
}
