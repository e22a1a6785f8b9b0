package extension

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/ontorepair/pkg/ontorepair/internalerr"
	"github.com/cognicore/ontorepair/pkg/ontorepair/rdf"
	"github.com/cognicore/ontorepair/pkg/ontorepair/store"
)

const ex = "http://example.org/"

type fixed struct {
	name  string
	facts []rdf.Fact
	err   error
}

func (f fixed) Name() string                                  { return f.name }
func (f fixed) Detect(context.Context, *store.Snapshot) bool { return true }
func (f fixed) Reason(context.Context, *store.Snapshot, Options) ([]rdf.Fact, error) {
	return f.facts, f.err
}

func TestRegistry(t *testing.T) {
	r := DefaultRegistry()
	assert.Equal(t, []string{Fuzzy, Probabilistic, Spatial, Temporal}, r.Names())

	err := r.Register(fixed{name: Temporal})
	assert.ErrorIs(t, err, internalerr.ErrInvalidInput)

	require.NoError(t, r.Register(fixed{name: "extra"}))
	exts, err := r.Select([]string{"extra", Fuzzy})
	require.NoError(t, err)
	assert.Len(t, exts, 2)

	_, err = r.Select([]string{"missing"})
	assert.ErrorIs(t, err, internalerr.ErrNotFound)
}

func TestStubs_DetectButDeriveNothing(t *testing.T) {
	snap := store.NewSnapshot([]rdf.Fact{
		rdf.NewFact(rdf.IRI(ex+"launch"), rdf.IRI(ex+"at"), rdf.Literal("2024-01-01T00:00:00Z", rdf.NSXSD+"dateTime")),
	})
	rep := RunAll(context.Background(), snap, Stubs(), Options{})

	require.Len(t, rep.Outcomes, 4)
	detected := map[string]bool{}
	for _, o := range rep.Outcomes {
		detected[o.Name] = o.Detected
		assert.NoError(t, o.Err)
	}
	assert.True(t, detected[Temporal])
	assert.False(t, detected[Spatial])
	assert.Empty(t, rep.Facts)
}

func TestRunAll_MergesAndIsolatesFailures(t *testing.T) {
	existing := rdf.Triple(ex+"a", ex+"p", ex+"b")
	snap := store.NewSnapshot([]rdf.Fact{existing})
	shared := rdf.Triple(ex+"b", ex+"p", ex+"a")

	rep := RunAll(context.Background(), snap, []Extension{
		fixed{name: "one", facts: []rdf.Fact{shared, existing}},
		fixed{name: "two", facts: []rdf.Fact{shared, rdf.Triple(ex+"c", ex+"p", ex+"d")}},
		fixed{name: "broken", err: errors.New("boom")},
	}, Options{})

	assert.Equal(t, []rdf.Fact{shared, rdf.Triple(ex+"c", ex+"p", ex+"d")}, rep.Facts)
	failed := rep.Errors()
	require.Len(t, failed, 1)
	assert.Equal(t, "broken", failed[0].Name)
	assert.Equal(t, 2, rep.Outcomes[0].Facts)
}

func TestRuleExtension(t *testing.T) {
	rules := `inferred(Y, "` + ex + `knows", X) :- triple(X, "` + ex + `knows", Y).`
	ext, err := NewRuleExtension("", rules)
	require.NoError(t, err)
	assert.Equal(t, CustomRules, ext.Name())

	snap := store.NewSnapshot([]rdf.Fact{
		rdf.Triple(ex+"ann", ex+"knows", ex+"bob"),
		rdf.NewFact(rdf.IRI(ex+"ann"), rdf.IRI(ex+"name"), rdf.Literal("Ann", "")),
	})
	require.True(t, ext.Detect(context.Background(), snap))

	facts, err := ext.Reason(context.Background(), snap, Options{})
	require.NoError(t, err)
	assert.Equal(t, []rdf.Fact{rdf.Triple(ex+"bob", ex+"knows", ex+"ann")}, facts)
}

func TestRuleExtension_LiteralsRoundTrip(t *testing.T) {
	rules := `inferred(X, "` + ex + `label", V) :- triple(X, "` + ex + `name", V).`
	ext, err := NewRuleExtension("labels", rules)
	require.NoError(t, err)

	snap := store.NewSnapshot([]rdf.Fact{
		rdf.NewFact(rdf.IRI(ex+"ann"), rdf.IRI(ex+"name"), rdf.LangLiteral("Anne", "fr")),
	})
	facts, err := ext.Reason(context.Background(), snap, Options{})
	require.NoError(t, err)
	require.Len(t, facts, 1)
	assert.Equal(t, rdf.LangLiteral("Anne", "fr"), facts[0].Object)
}

func TestNewRuleExtension_Rejects(t *testing.T) {
	_, err := NewRuleExtension("x", "   ")
	assert.ErrorIs(t, err, internalerr.ErrInvalidInput)

	_, err = NewRuleExtension("x", "inferred(X :- .")
	assert.ErrorIs(t, err, internalerr.ErrInvalidInput)
}
