// Package ontorepair is the reasoning and self-repair engine facade. It reads
// an OWL/RDFS fact store, classifies and realizes it, checks it for
// contradictions and, on request, repairs and completes it.
package ontorepair

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cognicore/ontorepair/pkg/ontorepair/axiom"
	"github.com/cognicore/ontorepair/pkg/ontorepair/classify"
	"github.com/cognicore/ontorepair/pkg/ontorepair/config"
	"github.com/cognicore/ontorepair/pkg/ontorepair/consistency"
	"github.com/cognicore/ontorepair/pkg/ontorepair/extension"
	"github.com/cognicore/ontorepair/pkg/ontorepair/internalerr"
	"github.com/cognicore/ontorepair/pkg/ontorepair/realize"
	"github.com/cognicore/ontorepair/pkg/ontorepair/session"
	"github.com/cognicore/ontorepair/pkg/ontorepair/store"
)

// Phase names a step of reasoning or repair.
type Phase string

const (
	PhaseClassify    Phase = "classify"
	PhaseConsistency Phase = "consistency"
	PhaseRealize     Phase = "realize"
	PhaseExtensions  Phase = "extensions"
	PhaseDetect      Phase = "detect"
	PhaseGenerate    Phase = "generate"
	PhaseApply       Phase = "apply"
	PhaseComplete    Phase = "complete"
	PhaseValidate    Phase = "validate"
)

// PhaseStats describes one finished phase.
type PhaseStats struct {
	Phase    Phase         `json:"phase"`
	Duration time.Duration `json:"duration"`
	Inferred int           `json:"inferred,omitempty"`
	Issues   int           `json:"issues,omitempty"`
	Applied  int           `json:"applied,omitempty"`
	Failed   int           `json:"failed,omitempty"`
	Partial  bool          `json:"partial,omitempty"`
	Errors   []string      `json:"errors,omitempty"`
}

// OnPhase observes phase completion. It never affects results.
type OnPhase func(Phase, PhaseStats)

// Options configures an Engine.
type Options struct {
	Logger     *zap.Logger
	Extensions *extension.Registry // defaults to extension.DefaultRegistry()
	Config     *config.Options     // defaults for ReasonOptions and RepairOptions
}

// Engine runs reasoning and repair over any store.Store. It keeps no state
// between calls.
type Engine struct {
	log        *zap.Logger
	extensions *extension.Registry
	cfg        config.Options
	cfgErr     error // returned by every call when Config is out of range
}

// New creates an Engine. An out-of-range Config is reported by every call
// with ErrInvalidConfig.
func New(opts Options) *Engine {
	e := &Engine{log: opts.Logger, extensions: opts.Extensions, cfg: config.Default()}
	if e.log == nil {
		e.log = zap.NewNop()
	}
	if e.extensions == nil {
		e.extensions = extension.DefaultRegistry()
	}
	if opts.Config != nil {
		e.cfg = *opts.Config
		e.cfgErr = e.cfg.Validate()
	}
	return e
}

// Extensions returns the registry, for registering custom extensions.
func (e *Engine) Extensions() *extension.Registry { return e.extensions }

// state is one snapshot and the read-only structures derived from it.
type state struct {
	sess   *session.Session
	snap   *store.Snapshot
	axioms *axiom.Axioms
	cls    *classify.Result
	types  *realize.Types
}

func (st *state) input() consistency.Input {
	return consistency.Input{
		Snap:           st.snap,
		Axioms:         st.axioms,
		Classification: st.cls,
		Types:          st.types,
		Log:            st.sess.Log,
	}
}

// analyze snapshots s and runs extraction, classification and type
// inference.
func (e *Engine) analyze(ctx context.Context, s store.Store, sess *session.Session) (*state, error) {
	if s == nil {
		return nil, internalerr.ErrNilStore
	}
	if e.cfgErr != nil {
		return nil, e.cfgErr
	}
	snap, err := store.TakeSnapshot(ctx, s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", internalerr.ErrStoreUnavailable, err)
	}
	st := &state{sess: sess, snap: snap}
	st.axioms = axiom.Extract(snap, sess.Log)
	st.cls = classify.Classify(ctx, sess, snap, st.axioms)
	st.types = realize.InferTypes(snap, st.axioms, st.cls)
	return st, nil
}

func (e *Engine) session(maxInferences int) *session.Session {
	return session.New(maxInferences, e.log)
}

// Classify computes the closed class hierarchy of s.
func (e *Engine) Classify(ctx context.Context, s store.Store) (*classify.Result, error) {
	st, err := e.analyze(ctx, s, e.session(e.cfg.MaxInferences))
	if err != nil {
		return nil, err
	}
	return st.cls, nil
}

// CheckConsistency reports the contradictions in s.
func (e *Engine) CheckConsistency(ctx context.Context, s store.Store) (*consistency.Result, error) {
	st, err := e.analyze(ctx, s, e.session(e.cfg.MaxInferences))
	if err != nil {
		return nil, err
	}
	return consistency.Check(ctx, st.input()), nil
}

// Realize computes the most specific types of every individual in s.
func (e *Engine) Realize(ctx context.Context, s store.Store) (*realize.Result, error) {
	st, err := e.analyze(ctx, s, e.session(e.cfg.MaxInferences))
	if err != nil {
		return nil, err
	}
	return realize.Realize(ctx, st.sess, st.snap, st.cls.Hierarchy, st.types), nil
}
