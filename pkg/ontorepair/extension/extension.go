// Package extension hosts optional reasoners that run after the core phases
// and contribute additional facts.
package extension

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cognicore/ontorepair/pkg/ontorepair/internalerr"
	"github.com/cognicore/ontorepair/pkg/ontorepair/rdf"
	"github.com/cognicore/ontorepair/pkg/ontorepair/store"
)

// Extension is a pluggable reasoner. This interface allows swapping
// implementations (no-op stubs, Datalog rules, external services).
type Extension interface {
	// Name identifies the extension in options and phase stats.
	Name() string

	// Detect reports whether the snapshot contains anything the extension
	// can reason about. Extensions that detect nothing are not run.
	Detect(ctx context.Context, snap *store.Snapshot) bool

	// Reason returns the facts the extension derives.
	Reason(ctx context.Context, snap *store.Snapshot, opts Options) ([]rdf.Fact, error)
}

// Options passed to every extension.
type Options struct {
	MaxInferences int // 0 means unlimited
	Log           *zap.Logger
}

// Registry holds extensions by name.
type Registry struct {
	mu   sync.RWMutex
	exts map[string]Extension
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{exts: make(map[string]Extension)}
}

// DefaultRegistry returns a registry with the stub temporal, spatial, fuzzy
// and probabilistic reasoners.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, e := range Stubs() {
		_ = r.Register(e)
	}
	return r
}

// Register adds e. Names must be unique.
func (r *Registry) Register(e Extension) error {
	if e == nil || e.Name() == "" {
		return fmt.Errorf("register extension: %w", internalerr.ErrInvalidInput)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.exts[e.Name()]; dup {
		return fmt.Errorf("register extension %q: already registered: %w", e.Name(), internalerr.ErrInvalidInput)
	}
	r.exts[e.Name()] = e
	return nil
}

// Get returns the extension registered under name.
func (r *Registry) Get(name string) (Extension, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.exts[name]
	return e, ok
}

// Names lists registered extensions in order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.exts))
	for name := range r.exts {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Select resolves names to extensions. An unknown name is ErrNotFound.
func (r *Registry) Select(names []string) ([]Extension, error) {
	out := make([]Extension, 0, len(names))
	for _, name := range names {
		e, ok := r.Get(name)
		if !ok {
			return nil, fmt.Errorf("extension %q: %w", name, internalerr.ErrNotFound)
		}
		out = append(out, e)
	}
	return out, nil
}

// Outcome of one extension run.
type Outcome struct {
	Name     string
	Detected bool
	Facts    int
	Err      error
	Duration time.Duration
}

// Report of RunAll.
type Report struct {
	Facts    []rdf.Fact // union of every extension's delta, sorted
	Outcomes []Outcome  // in the order extensions were given
}

// Errors returns the failed outcomes.
func (r *Report) Errors() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Err != nil {
			out = append(out, o)
		}
	}
	return out
}

// RunAll runs exts concurrently and merges their deltas. An extension error
// is recorded in its outcome and does not affect the others.
func RunAll(ctx context.Context, snap *store.Snapshot, exts []Extension, opts Options) *Report {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	outcomes := make([]Outcome, len(exts))
	deltas := make([][]rdf.Fact, len(exts))

	g, gctx := errgroup.WithContext(ctx)
	for i, e := range exts {
		g.Go(func() error {
			start := time.Now()
			o := Outcome{Name: e.Name()}
			defer func() {
				o.Duration = time.Since(start)
				outcomes[i] = o
			}()

			if o.Detected = e.Detect(gctx, snap); !o.Detected {
				return nil
			}
			facts, err := e.Reason(gctx, snap, opts)
			if err != nil {
				o.Err = fmt.Errorf("extension %s: %w", e.Name(), err)
				log.Warn("extension failed", zap.String("extension", e.Name()), zap.Error(err))
				return nil
			}
			deltas[i] = facts
			o.Facts = len(facts)
			return nil
		})
	}
	_ = g.Wait()

	merged := rdf.NewFactSet()
	for _, d := range deltas {
		for _, f := range d {
			if f.Valid() && !snap.Has(f) {
				merged.Add(f)
			}
		}
	}
	return &Report{Facts: merged.Sorted(), Outcomes: outcomes}
}
