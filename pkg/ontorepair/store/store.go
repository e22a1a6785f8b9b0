package store

import (
	"context"

	"github.com/cognicore/ontorepair/pkg/ontorepair/rdf"
)

// Store is the fact store the reasoner reads from and the repair applier
// writes to. A store is a set: adding an existing fact is a no-op.
type Store interface {
	Close() error

	// Query returns every fact matching p. Wildcard positions match anything.
	Query(ctx context.Context, p rdf.Pattern) ([]rdf.Fact, error)

	// Add inserts f and reports whether it was new.
	Add(ctx context.Context, f rdf.Fact) (bool, error)

	// Remove deletes f and reports whether it was present.
	Remove(ctx context.Context, f rdf.Fact) (bool, error)

	// Size returns the number of stored facts.
	Size(ctx context.Context) (int, error)
}

// Tx is the mutation surface available inside a Batch.
type Tx interface {
	Query(ctx context.Context, p rdf.Pattern) ([]rdf.Fact, error)
	Add(ctx context.Context, f rdf.Fact) (bool, error)
	Remove(ctx context.Context, f rdf.Fact) (bool, error)
}

// Batcher is implemented by stores that can apply a group of mutations
// atomically. If fn returns an error, none of its mutations are kept.
// Batches on one store are exclusive: two calls never interleave.
type Batcher interface {
	Batch(ctx context.Context, fn func(tx Tx) error) error
}
