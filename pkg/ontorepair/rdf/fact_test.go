package rdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTermEquality(t *testing.T) {
	assert.Equal(t, IRI("http://ex/a"), IRI("http://ex/a"))
	assert.NotEqual(t, IRI("a"), Blank("a"))
	assert.Equal(t, Literal("x", ""), Literal("x", XSDString))
	assert.NotEqual(t, LangLiteral("chat", "fr"), LangLiteral("chat", "en"))
}

func TestTermInt(t *testing.T) {
	n, ok := IntLiteral(3).Int()
	assert.True(t, ok)
	assert.Equal(t, 3, n)

	_, ok = IRI("3").Int()
	assert.False(t, ok)
}

func TestParseNodeRoundTrip(t *testing.T) {
	for _, term := range []Term{IRI("http://ex/Cat"), Blank("r1")} {
		assert.Equal(t, term, ParseNode(term.Key()))
	}
}

func TestParseKey(t *testing.T) {
	terms := []Term{
		IRI("http://ex/Cat"),
		Blank("r1"),
		Literal("red", ""),
		Literal("say \"hi\"", ""),
		LangLiteral("chat", "fr"),
		IntLiteral(2),
	}
	for _, term := range terms {
		got, err := ParseKey(term.Key())
		assert.NoError(t, err)
		assert.Equal(t, term, got, term.Key())
	}

	_, err := ParseKey(`"open`)
	assert.Error(t, err)
	_, err = ParseKey(`"x"junk`)
	assert.Error(t, err)
}

func TestPatternMatches(t *testing.T) {
	f := Triple("http://ex/felix", RDFType, "http://ex/Cat")

	assert.True(t, Any.Matches(f))
	assert.True(t, Pattern{Subject: IRI("http://ex/felix")}.Matches(f))
	assert.True(t, PatternOf(f).Matches(f))
	assert.False(t, Pattern{Object: IRI("http://ex/Dog")}.Matches(f))
	assert.False(t, Pattern{Graph: "http://ex/g"}.Matches(f))
	assert.True(t, Pattern{Graph: "http://ex/g"}.Matches(f.InGraph("http://ex/g")))
}

func TestFactSet(t *testing.T) {
	a := Triple("http://ex/a", RDFSSubClassOf, "http://ex/b")
	b := Triple("http://ex/b", RDFSSubClassOf, "http://ex/c")

	s := NewFactSet(a)
	assert.False(t, s.Add(a))
	assert.True(t, s.Add(b))
	assert.Len(t, s, 2)
	assert.Equal(t, []Fact{a, b}, s.Sorted())
}

func TestFactValid(t *testing.T) {
	assert.True(t, Triple("s", "p", "o").Valid())
	assert.False(t, NewFact(Literal("s", ""), IRI("p"), IRI("o")).Valid())
	assert.False(t, NewFact(IRI("s"), Blank("p"), IRI("o")).Valid())
	assert.False(t, NewFact(IRI("s"), IRI("p"), Term{}).Valid())
}
