package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/cognicore/ontorepair/pkg/ontorepair/rdf"
)

func TestInferDeduplicates(t *testing.T) {
	s := New(0, nil)
	f := rdf.Triple("http://ex/a", rdf.RDFSSubClassOf, "http://ex/b")
	assert.True(t, s.Infer(f))
	assert.False(t, s.Infer(f))
	assert.Equal(t, 1, s.Count())
	assert.True(t, s.Inferred(f))
	assert.False(t, s.Capped())
}

func TestInferCap(t *testing.T) {
	s := New(2, nil)
	assert.True(t, s.Infer(rdf.Triple("http://ex/a", rdf.RDFType, "http://ex/A")))
	assert.True(t, s.Infer(rdf.Triple("http://ex/b", rdf.RDFType, "http://ex/A")))
	assert.False(t, s.Infer(rdf.Triple("http://ex/c", rdf.RDFType, "http://ex/A")))
	assert.True(t, s.Capped())
	assert.Len(t, s.Delta(), 2)
}

func TestExpired(t *testing.T) {
	s := New(0, nil)
	assert.False(t, s.Expired(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()
	assert.True(t, s.Expired(ctx))
	assert.True(t, s.TimedOut())
}

func TestIDsAreUnique(t *testing.T) {
	assert.NotEqual(t, New(0, nil).ID, New(0, nil).ID)
}
