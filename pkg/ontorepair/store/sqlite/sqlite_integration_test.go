package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/ontorepair/pkg/ontorepair/rdf"
	"github.com/cognicore/ontorepair/pkg/ontorepair/store"
)

const ex = "http://example.org/"

func openTemp(t *testing.T) Store {
	t.Helper()
	st, err := Open(context.Background(), filepath.Join(t.TempDir(), "facts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestSQLiteAddQueryRemove(t *testing.T) {
	ctx := context.Background()
	st := openTemp(t)

	typed := rdf.Triple(ex+"felix", rdf.RDFType, ex+"Cat")
	label := rdf.NewFact(rdf.IRI(ex+"felix"), rdf.IRI(rdf.RDFSLabel), rdf.LangLiteral("Félix", "fr"))
	card := rdf.NewFact(rdf.Blank("r1"), rdf.IRI(rdf.OWLMaxCardinality), rdf.IntLiteral(1)).InGraph(ex + "g")

	for _, f := range []rdf.Fact{typed, label, card} {
		added, err := st.Add(ctx, f)
		require.NoError(t, err)
		assert.True(t, added)
	}

	added, err := st.Add(ctx, typed)
	require.NoError(t, err)
	assert.False(t, added, "duplicate insert must be a no-op")

	n, err := st.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	got, err := st.Query(ctx, rdf.Pattern{Subject: rdf.IRI(ex + "felix")})
	require.NoError(t, err)
	assert.ElementsMatch(t, []rdf.Fact{typed, label}, got)

	got, err = st.Query(ctx, rdf.Pattern{Graph: ex + "g"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, card, got[0], "terms must round-trip structurally")

	removed, err := st.Remove(ctx, label)
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = st.Remove(ctx, label)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestSQLiteBatchRollback(t *testing.T) {
	ctx := context.Background()
	st := openTemp(t)
	keep := rdf.Triple(ex+"felix", rdf.RDFType, ex+"Cat")
	_, err := st.Add(ctx, keep)
	require.NoError(t, err)

	err = st.Batch(ctx, func(tx store.Tx) error {
		if _, err := tx.Remove(ctx, keep); err != nil {
			return err
		}
		return errors.New("abort")
	})
	require.Error(t, err)

	all, err := st.Query(ctx, rdf.Any)
	require.NoError(t, err)
	assert.Equal(t, []rdf.Fact{keep}, all)
}

func TestSQLitePersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "facts.db")

	st, err := Open(ctx, path)
	require.NoError(t, err)
	_, err = st.Add(ctx, rdf.Triple(ex+"Cat", rdf.RDFSSubClassOf, ex+"Animal"))
	require.NoError(t, err)
	require.NoError(t, st.Close())

	st, err = Open(ctx, path)
	require.NoError(t, err)
	defer st.Close()
	n, err := st.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSQLiteBatchesAreExclusive(t *testing.T) {
	ctx := context.Background()
	st := openTemp(t)
	counter, tick := rdf.IRI(ex+"counter"), rdf.IRI(ex+"tick")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := st.Batch(ctx, func(tx store.Tx) error {
				seen, err := tx.Query(ctx, rdf.Pattern{Subject: counter, Predicate: tick})
				if err != nil {
					return err
				}
				_, err = tx.Add(ctx, rdf.NewFact(counter, tick, rdf.IntLiteral(len(seen))))
				return err
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	n, err := st.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, 8, n, "each batch saw every earlier tick")
}
