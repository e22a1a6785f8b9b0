package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/cognicore/ontorepair/pkg/ontorepair/internalerr"
	"github.com/cognicore/ontorepair/pkg/ontorepair/rdf"
	"github.com/cognicore/ontorepair/pkg/ontorepair/store"
)

// sqliteStore implements store.Store and store.Batcher using SQLite
type sqliteStore struct {
	db *sql.DB
	mu sync.Mutex // makes Batch exclusive within the process
}

// Store is the concrete type returned by Open.
type Store interface {
	store.Store
	store.Batcher
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Open opens a SQLite fact store with WAL mode enabled.
func Open(ctx context.Context, path string) (Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS facts (
	s_kind INTEGER NOT NULL,
	s TEXT NOT NULL,
	p TEXT NOT NULL,
	o_kind INTEGER NOT NULL,
	o TEXT NOT NULL,
	o_datatype TEXT NOT NULL DEFAULT '',
	o_lang TEXT NOT NULL DEFAULT '',
	g TEXT NOT NULL DEFAULT '',
	UNIQUE(s_kind, s, p, o_kind, o, o_datatype, o_lang, g)
);

CREATE INDEX IF NOT EXISTS idx_facts_p ON facts(p);
CREATE INDEX IF NOT EXISTS idx_facts_o ON facts(o);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// Query returns facts matching p
func (s *sqliteStore) Query(ctx context.Context, p rdf.Pattern) ([]rdf.Fact, error) {
	return query(ctx, s.db, p)
}

// Add inserts a fact; duplicates are ignored
func (s *sqliteStore) Add(ctx context.Context, f rdf.Fact) (bool, error) {
	return add(ctx, s.db, f)
}

// Remove deletes a fact
func (s *sqliteStore) Remove(ctx context.Context, f rdf.Fact) (bool, error) {
	return remove(ctx, s.db, f)
}

// Size counts stored facts
func (s *sqliteStore) Size(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM facts`).Scan(&n)
	return n, err
}

// Batch runs fn inside a transaction. Batches on one Store run one at a time.
func (s *sqliteStore) Batch(ctx context.Context, fn func(tx store.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&sqliteTx{tx: tx}); err != nil {
		return err
	}
	return tx.Commit()
}

type sqliteTx struct {
	tx *sql.Tx
}

func (t *sqliteTx) Query(ctx context.Context, p rdf.Pattern) ([]rdf.Fact, error) {
	return query(ctx, t.tx, p)
}

func (t *sqliteTx) Add(ctx context.Context, f rdf.Fact) (bool, error) {
	return add(ctx, t.tx, f)
}

func (t *sqliteTx) Remove(ctx context.Context, f rdf.Fact) (bool, error) {
	return remove(ctx, t.tx, f)
}

func add(ctx context.Context, q querier, f rdf.Fact) (bool, error) {
	if !f.Valid() {
		return false, fmt.Errorf("sqlite: %w: %s", internalerr.ErrInvalidInput, f)
	}
	res, err := q.ExecContext(ctx,
		`INSERT OR IGNORE INTO facts (s_kind, s, p, o_kind, o, o_datatype, o_lang, g) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		int(f.Subject.Kind), f.Subject.Value, f.Predicate.Value,
		int(f.Object.Kind), f.Object.Value, f.Object.Datatype, f.Object.Lang, f.Graph)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func remove(ctx context.Context, q querier, f rdf.Fact) (bool, error) {
	res, err := q.ExecContext(ctx,
		`DELETE FROM facts WHERE s_kind=? AND s=? AND p=? AND o_kind=? AND o=? AND o_datatype=? AND o_lang=? AND g=?`,
		int(f.Subject.Kind), f.Subject.Value, f.Predicate.Value,
		int(f.Object.Kind), f.Object.Value, f.Object.Datatype, f.Object.Lang, f.Graph)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func query(ctx context.Context, q querier, p rdf.Pattern) ([]rdf.Fact, error) {
	var (
		where []string
		args  []any
	)
	if !p.Subject.IsZero() {
		where = append(where, "s_kind=?", "s=?")
		args = append(args, int(p.Subject.Kind), p.Subject.Value)
	}
	if !p.Predicate.IsZero() {
		where = append(where, "p=?")
		args = append(args, p.Predicate.Value)
	}
	if !p.Object.IsZero() {
		where = append(where, "o_kind=?", "o=?", "o_datatype=?", "o_lang=?")
		args = append(args, int(p.Object.Kind), p.Object.Value, p.Object.Datatype, p.Object.Lang)
	}
	if p.Graph != "" {
		where = append(where, "g=?")
		args = append(args, p.Graph)
	}

	stmt := `SELECT s_kind, s, p, o_kind, o, o_datatype, o_lang, g FROM facts`
	if len(where) > 0 {
		stmt += " WHERE " + strings.Join(where, " AND ")
	}
	stmt += " ORDER BY rowid"

	rows, err := q.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []rdf.Fact
	for rows.Next() {
		var (
			sKind, oKind int
			f            rdf.Fact
		)
		if err := rows.Scan(&sKind, &f.Subject.Value, &f.Predicate.Value,
			&oKind, &f.Object.Value, &f.Object.Datatype, &f.Object.Lang, &f.Graph); err != nil {
			return nil, err
		}
		f.Subject.Kind = rdf.Kind(sKind)
		f.Predicate.Kind = rdf.KindIRI
		f.Object.Kind = rdf.Kind(oKind)
		out = append(out, f)
	}
	return out, rows.Err()
}
