// Package session holds the per-run state shared by reasoning phases: the
// run identifier, the inferred-fact delta and the inference cap. A Session is
// created per call and discarded afterwards; nothing here outlives a run.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/cognicore/ontorepair/pkg/ontorepair/rdf"
)

// Session is the arena for one reasoning or repair run.
type Session struct {
	ID      string
	Started time.Time
	Log     *zap.Logger

	maxInferences int

	mu       sync.Mutex
	inferred rdf.FactSet
	order    []rdf.Fact
	capped   bool
	timedOut bool
}

// New starts a session. maxInferences <= 0 disables the cap.
func New(maxInferences int, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	id := NewID()
	return &Session{
		ID:            id,
		Started:       time.Now(),
		Log:           log.With(zap.String("session", id)),
		maxInferences: maxInferences,
		inferred:      make(rdf.FactSet),
	}
}

// NewID mints a ULID string.
func NewID() string {
	return ulid.Make().String()
}

// Infer records an inferred fact. It returns false when the fact was already
// recorded or the cap has been reached.
func (s *Session) Infer(f rdf.Fact) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inferred.Has(f) {
		return false
	}
	if s.maxInferences > 0 && len(s.inferred) >= s.maxInferences {
		if !s.capped {
			s.capped = true
			s.Log.Warn("inference cap reached", zap.Int("max_inferences", s.maxInferences))
		}
		return false
	}
	s.inferred.Add(f)
	s.order = append(s.order, f)
	return true
}

// Inferred reports whether f has already been inferred in this session.
func (s *Session) Inferred(f rdf.Fact) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inferred.Has(f)
}

// Delta returns the inferred facts in insertion order.
func (s *Session) Delta() []rdf.Fact {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]rdf.Fact, len(s.order))
	copy(out, s.order)
	return out
}

// Count returns the number of inferred facts.
func (s *Session) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.inferred)
}

// Capped reports whether the inference cap was hit.
func (s *Session) Capped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.capped
}

// Expired checks ctx and remembers a deadline hit.
func (s *Session) Expired(ctx context.Context) bool {
	err := ctx.Err()
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		s.mu.Lock()
		s.timedOut = true
		s.mu.Unlock()
	}
	return true
}

// TimedOut reports whether a deadline was observed.
func (s *Session) TimedOut() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timedOut
}

// Stop reports whether phases should stop producing work.
func (s *Session) Stop(ctx context.Context) bool {
	return s.Expired(ctx) || s.Capped()
}
