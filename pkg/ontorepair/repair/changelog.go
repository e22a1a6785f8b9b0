package repair

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/ontorepair/pkg/ontorepair/rdf"
)

// Entry records one applied proposal.
type Entry struct {
	ID         string
	ProposalID string
	Kind       string
	IssueKey   string
	Added      []rdf.Fact
	Removed    []rdf.Fact
	At         time.Time
}

// ChangeLog is an append-only record of applied proposals. Entry IDs are
// monotonic ULIDs, so they sort in application order.
type ChangeLog struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
	entries []Entry
}

// NewChangeLog creates an empty log.
func NewChangeLog() *ChangeLog {
	return &ChangeLog{entropy: ulid.Monotonic(rand.Reader, 0)}
}

func (l *ChangeLog) record(p Proposal, ch Change) Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := time.Now()
	e := Entry{
		ID:         ulid.MustNew(ulid.Timestamp(now), l.entropy).String(),
		ProposalID: p.ID,
		Kind:       p.Kind,
		IssueKey:   p.IssueKey,
		Added:      ch.Added,
		Removed:    ch.Removed,
		At:         now,
	}
	l.entries = append(l.entries, e)
	return e
}

// Entries returns a copy of the log.
func (l *ChangeLog) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Entry(nil), l.entries...)
}

// Len returns the number of entries.
func (l *ChangeLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
