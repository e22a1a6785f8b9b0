package ontorepair

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cognicore/ontorepair/pkg/ontorepair/classify"
	"github.com/cognicore/ontorepair/pkg/ontorepair/consistency"
	"github.com/cognicore/ontorepair/pkg/ontorepair/extension"
	"github.com/cognicore/ontorepair/pkg/ontorepair/internalerr"
	"github.com/cognicore/ontorepair/pkg/ontorepair/rdf"
	"github.com/cognicore/ontorepair/pkg/ontorepair/realize"
	"github.com/cognicore/ontorepair/pkg/ontorepair/store"
)

// ReasonOptions bound a ReasonAll call.
type ReasonOptions struct {
	Timeout       time.Duration // 0 disables the deadline
	MaxInferences int           // 0 disables the cap
	Extensions    []string      // registry names to run after the core phases
	Rules         string        // Datalog rules; non-empty adds the rule extension
	OnPhase       OnPhase
}

// ReasonOptions returns the engine's configured defaults.
func (e *Engine) ReasonOptions() ReasonOptions {
	return ReasonOptions{
		Timeout:       e.cfg.Timeout(),
		MaxInferences: e.cfg.MaxInferences,
		Extensions:    e.cfg.Extensions,
		Rules:         e.cfg.Rules,
	}
}

func (o ReasonOptions) validate() error {
	if o.Timeout < 0 {
		return fmt.Errorf("%w: timeout %v is negative", internalerr.ErrInvalidConfig, o.Timeout)
	}
	if o.MaxInferences < 0 {
		return fmt.Errorf("%w: max inferences %d is negative", internalerr.ErrInvalidConfig, o.MaxInferences)
	}
	return nil
}

// ReasonResult is the outcome of ReasonAll. When TimedOut or Capped is set
// the result holds whatever the finished phases produced.
type ReasonResult struct {
	SessionID     string
	Success       bool // every phase ran to completion
	TimedOut      bool
	Capped        bool
	InferredFacts []rdf.Fact
	PhaseStats    []PhaseStats
	Hierarchy     *classify.Result
	Consistency   *consistency.Result
	Realization   *realize.Result
	Extensions    []extension.Outcome
}

// ReasonAll runs classification, consistency checking, realization and the
// selected extensions over one snapshot of s. Inferred facts are returned,
// not written back. Only a nil store or invalid options are errors.
func (e *Engine) ReasonAll(ctx context.Context, s store.Store, opts ReasonOptions) (*ReasonResult, error) {
	if s == nil {
		return nil, internalerr.ErrNilStore
	}
	if e.cfgErr != nil {
		return nil, e.cfgErr
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	exts, err := e.selectExtensions(opts.Extensions, opts.Rules)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", internalerr.ErrInvalidConfig, err)
	}
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	sess := e.session(opts.MaxInferences)
	res := &ReasonResult{SessionID: sess.ID}
	report := func(ps PhaseStats) {
		res.PhaseStats = append(res.PhaseStats, ps)
		sess.Log.Debug("phase finished",
			zap.String("phase", string(ps.Phase)),
			zap.Duration("took", ps.Duration),
			zap.Int("inferred", ps.Inferred))
		if opts.OnPhase != nil {
			opts.OnPhase(ps.Phase, ps)
		}
	}

	start := time.Now()
	st, err := e.analyze(ctx, s, sess)
	if err != nil {
		if !sess.Expired(ctx) {
			return nil, err
		}
		// the store honored the deadline before a snapshot existed
		res.TimedOut = sess.TimedOut()
		return res, nil
	}
	res.Hierarchy = st.cls
	report(PhaseStats{Phase: PhaseClassify, Duration: time.Since(start), Inferred: len(st.cls.Inferred), Partial: st.cls.Partial})

	if !sess.Expired(ctx) {
		start = time.Now()
		res.Consistency = consistency.Check(ctx, st.input())
		report(PhaseStats{Phase: PhaseConsistency, Duration: time.Since(start), Issues: len(res.Consistency.Issues)})
	}

	if !sess.Expired(ctx) {
		start = time.Now()
		res.Realization = realize.Realize(ctx, sess, st.snap, st.cls.Hierarchy, st.types)
		report(PhaseStats{Phase: PhaseRealize, Duration: time.Since(start), Inferred: len(res.Realization.Inferred), Partial: res.Realization.Partial})
	}

	if len(exts) > 0 && !sess.Expired(ctx) {
		start = time.Now()
		rep := extension.RunAll(ctx, st.snap, exts, extension.Options{MaxInferences: opts.MaxInferences, Log: sess.Log})
		added := 0
		for _, f := range rep.Facts {
			if sess.Infer(f) {
				added++
			}
		}
		ps := PhaseStats{Phase: PhaseExtensions, Duration: time.Since(start), Inferred: added}
		for _, o := range rep.Errors() {
			ps.Errors = append(ps.Errors, o.Err.Error())
		}
		res.Extensions = rep.Outcomes
		report(ps)
	}

	sess.Expired(ctx)
	res.TimedOut = sess.TimedOut()
	res.Capped = sess.Capped()
	res.InferredFacts = sess.Delta()
	res.Success = !res.TimedOut && ctx.Err() == nil
	sess.Log.Info("reasoning finished",
		zap.Int("inferred", len(res.InferredFacts)),
		zap.Bool("timed_out", res.TimedOut),
		zap.Bool("capped", res.Capped))
	return res, nil
}

func (e *Engine) selectExtensions(names []string, rules string) ([]extension.Extension, error) {
	exts, err := e.extensions.Select(names)
	if err != nil {
		return nil, err
	}
	if rules != "" {
		r, err := extension.NewRuleExtension(extension.CustomRules, rules)
		if err != nil {
			return nil, err
		}
		exts = append(exts, r)
	}
	return exts, nil
}
