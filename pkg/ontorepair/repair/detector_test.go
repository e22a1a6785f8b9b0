package repair

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/ontorepair/pkg/ontorepair/issue"
	"github.com/cognicore/ontorepair/pkg/ontorepair/rdf"
)

func TestDetect_RanksAllKinds(t *testing.T) {
	in, _ := reason(append(felix(),
		rdf.Triple(ex+"Rock", rdf.RDFType, rdf.OWLClass),
		rdf.Triple(ex+"A", rdf.RDFSSubClassOf, ex+"B"),
		rdf.Triple(ex+"B", rdf.RDFSSubClassOf, ex+"A"),
		rdf.Triple(ex+"Felix", ex+"chases", ex+"Jerry"),
	)...)

	det := (&Detector{}).Detect(context.Background(), in)
	counts := issue.CountBy(det.Issues)

	assert.Equal(t, 1, counts[issue.DisjointViolation])
	assert.Equal(t, 1, counts[issue.OrphanedClass])
	assert.Equal(t, 1, counts[issue.CircularDefinition])
	assert.Equal(t, 1, counts[issue.MissingDomain])
	assert.Equal(t, 1, counts[issue.MissingRange])
	assert.False(t, det.Consistency.IsConsistent)

	require.NotEmpty(t, det.Issues)
	assert.Equal(t, issue.DisjointViolation, det.Issues[0].Kind)
	assert.Equal(t, issue.OrphanedClass, det.Issues[len(det.Issues)-1].Kind)
	for i := 1; i < len(det.Issues); i++ {
		assert.GreaterOrEqual(t, det.Issues[i-1].Severity, det.Issues[i].Severity)
	}
}

func TestDetect_CircularEvidence(t *testing.T) {
	in, _ := reason(
		rdf.Triple(ex+"A", rdf.RDFSSubClassOf, ex+"B"),
		rdf.Triple(ex+"B", rdf.RDFSSubClassOf, ex+"C"),
		rdf.Triple(ex+"C", rdf.RDFSSubClassOf, ex+"A"),
		rdf.Triple(ex+"C", rdf.RDFSSubClassOf, ex+"Top"),
	)
	det := (&Detector{}).Detect(context.Background(), in)
	require.Len(t, det.Issues, 1)
	got := det.Issues[0]
	assert.Equal(t, issue.CircularDefinition, got.Kind)
	assert.Equal(t, []string{ex + "A", ex + "B", ex + "C"}, got.Subjects)
	assert.Len(t, got.Evidence, 3, "the edge to Top is outside the cycle")
}

func TestDetect_ExplicitEquivalenceIsNotCircular(t *testing.T) {
	in, _ := reason(rdf.Triple(ex+"Feline", rdf.OWLEquivalentClass, ex+"Cat"))
	det := (&Detector{}).Detect(context.Background(), in)
	assert.Empty(t, det.Issues)
}
