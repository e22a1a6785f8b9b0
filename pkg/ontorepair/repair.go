package ontorepair

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cognicore/ontorepair/pkg/ontorepair/completion"
	"github.com/cognicore/ontorepair/pkg/ontorepair/internalerr"
	"github.com/cognicore/ontorepair/pkg/ontorepair/issue"
	"github.com/cognicore/ontorepair/pkg/ontorepair/repair"
	"github.com/cognicore/ontorepair/pkg/ontorepair/session"
	"github.com/cognicore/ontorepair/pkg/ontorepair/store"
	"github.com/cognicore/ontorepair/pkg/ontorepair/validate"
)

// RepairOptions control RepairAndComplete. The zero value has a threshold
// of 0 with AutoRepair and EnableCompletion off; start from
// Engine.RepairOptions to get the configured defaults.
type RepairOptions struct {
	ConfidenceThreshold float64
	AutoRepair          bool // apply the best proposal per issue
	EnableCompletion    bool // infer missing domains, ranges and superclasses
	Reviewer            repair.Reviewer
	CompletionReviewer  completion.Reviewer
	OnPhase             OnPhase
}

// RepairOptions returns the engine's configured defaults.
func (e *Engine) RepairOptions() RepairOptions {
	return RepairOptions{
		ConfidenceThreshold: e.cfg.ConfidenceThreshold,
		AutoRepair:          e.cfg.AutoRepair,
		EnableCompletion:    e.cfg.EnableCompletion,
	}
}

// RepairResult is the outcome of RepairAndComplete. When TimedOut is set the
// phases after the deadline were skipped and Validation may be nil.
type RepairResult struct {
	SessionID        string
	TimedOut         bool
	IssuesFound      []issue.Issue
	Proposals        []repair.Proposal // every proposal above the threshold
	ProposalsApplied []repair.Proposal
	ProposalsFailed  []repair.Failure
	Completions      []completion.Suggestion
	Changes          []repair.Entry
	Validation       *validate.Report
	PhaseStats       []PhaseStats
	ReviewErrors     []string
}

// SuccessRate is applied/(applied+failed) over repairs and completions.
func (r *RepairResult) SuccessRate() float64 {
	return repair.Result{Applied: r.ProposalsApplied, Failed: r.ProposalsFailed}.SuccessRate()
}

// RepairAndComplete detects issues in s, applies the best proposal for each
// (when AutoRepair is set), applies confident completions (when
// EnableCompletion is set as well) and validates the result. Each proposal
// is applied atomically; the run as a whole is not. Hitting the configured
// reasoning timeout ends the run early with TimedOut set, keeping whatever
// was found and applied so far.
func (e *Engine) RepairAndComplete(ctx context.Context, s store.Store, opts RepairOptions) (*RepairResult, error) {
	if s == nil {
		return nil, internalerr.ErrNilStore
	}
	if e.cfgErr != nil {
		return nil, e.cfgErr
	}
	if !(opts.ConfidenceThreshold >= 0 && opts.ConfidenceThreshold <= 1) {
		return nil, fmt.Errorf("%w: confidence threshold %v outside [0,1]", internalerr.ErrInvalidConfig, opts.ConfidenceThreshold)
	}
	if timeout := e.cfg.Timeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	sess := e.session(e.cfg.MaxInferences)
	res := &RepairResult{SessionID: sess.ID}
	report := func(ps PhaseStats) {
		res.PhaseStats = append(res.PhaseStats, ps)
		if opts.OnPhase != nil {
			opts.OnPhase(ps.Phase, ps)
		}
	}
	stopped := func() bool {
		if !sess.Expired(ctx) {
			return false
		}
		res.TimedOut = sess.TimedOut()
		sess.Log.Warn("repair stopped early",
			zap.Bool("timed_out", res.TimedOut),
			zap.Int("applied", len(res.ProposalsApplied)))
		return true
	}
	// reanalyze takes a fresh snapshot; a failure after the deadline is a
	// partial result, not an error.
	reanalyze := func() (*state, bool, error) {
		st, err := e.analyze(ctx, s, e.session(e.cfg.MaxInferences))
		if err != nil {
			if stopped() {
				return nil, false, nil
			}
			return nil, false, err
		}
		return st, !stopped(), nil
	}
	applier := repair.NewApplier(sess.Log)

	// detect
	start := time.Now()
	st, ok, err := reanalyze()
	if err != nil || !ok {
		return partial(res, err)
	}
	det := (&repair.Detector{Log: sess.Log}).Detect(ctx, st.input())
	res.IssuesFound = det.Issues
	report(PhaseStats{Phase: PhaseDetect, Duration: time.Since(start), Issues: len(det.Issues)})
	if stopped() {
		return res, nil
	}

	// generate
	start = time.Now()
	rc := &repair.Context{Snap: st.snap, Axioms: st.axioms, Hierarchy: st.cls.Hierarchy, Types: st.types}
	if opts.EnableCompletion {
		rc.Suggestions, err = e.completer(st, opts.CompletionReviewer).Run(ctx)
		if err != nil {
			res.ReviewErrors = append(res.ReviewErrors, err.Error())
		}
	}
	res.Proposals = repair.NewGenerator(opts.ConfidenceThreshold, sess.Log).Generate(ctx, det.Issues, rc)
	report(PhaseStats{Phase: PhaseGenerate, Duration: time.Since(start)})
	if stopped() {
		return res, nil
	}

	// apply
	if opts.AutoRepair {
		start = time.Now()
		chosen, errs := repair.Select(ctx, res.Proposals, opts.Reviewer)
		for _, err := range errs {
			res.ReviewErrors = append(res.ReviewErrors, err.Error())
		}
		applied, err := applier.Apply(ctx, s, chosen)
		if err != nil {
			return nil, err
		}
		e.collect(res, applied)
		report(PhaseStats{Phase: PhaseApply, Duration: time.Since(start), Applied: len(applied.Applied), Failed: len(applied.Failed)})
		if stopped() {
			return res, nil
		}
	}

	// complete against the repaired store
	if opts.EnableCompletion {
		start = time.Now()
		st, ok, err = reanalyze()
		if err != nil || !ok {
			return partial(res, err)
		}
		res.Completions, err = e.completer(st, opts.CompletionReviewer).Run(ctx)
		if err != nil {
			res.ReviewErrors = append(res.ReviewErrors, err.Error())
		}
		ps := PhaseStats{Phase: PhaseComplete}
		if opts.AutoRepair {
			applied, err := applier.Apply(ctx, s, completionProposals(res.Completions, opts.ConfidenceThreshold))
			if err != nil {
				return nil, err
			}
			e.collect(res, applied)
			ps.Applied, ps.Failed = len(applied.Applied), len(applied.Failed)
		}
		ps.Duration = time.Since(start)
		report(ps)
		if stopped() {
			return res, nil
		}
	}

	// validate
	start = time.Now()
	st, ok, err = reanalyze()
	if err != nil || !ok {
		return partial(res, err)
	}
	res.Validation = (&validate.Validator{Log: sess.Log}).Validate(ctx, st.input())
	report(PhaseStats{Phase: PhaseValidate, Duration: time.Since(start), Issues: res.Validation.RemainingIssues})

	sess.Log.Info("repair finished",
		zap.Int("issues", len(res.IssuesFound)),
		zap.Int("applied", len(res.ProposalsApplied)),
		zap.Int("failed", len(res.ProposalsFailed)),
		zap.Float64("overall", res.Validation.Overall))
	return res, nil
}

func partial(res *RepairResult, err error) (*RepairResult, error) {
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (e *Engine) completer(st *state, reviewer completion.Reviewer) *completion.Completer {
	return &completion.Completer{
		Snap:      st.snap,
		Axioms:    st.axioms,
		Hierarchy: st.cls.Hierarchy,
		Types:     st.types,
		Reviewer:  reviewer,
	}
}

func (e *Engine) collect(res *RepairResult, applied repair.Result) {
	res.ProposalsApplied = append(res.ProposalsApplied, applied.Applied...)
	res.ProposalsFailed = append(res.ProposalsFailed, applied.Failed...)
	res.Changes = append(res.Changes, applied.Entries...)
}

// completionProposals wraps auto-applicable suggestions at or above the
// threshold as single-action proposals.
func completionProposals(suggestions []completion.Suggestion, threshold float64) []repair.Proposal {
	var out []repair.Proposal
	for _, s := range suggestions {
		if !s.AutoApply || s.Confidence < threshold || s.Validate() != nil {
			continue
		}
		out = append(out, repair.Proposal{
			ID:         session.NewID(),
			Kind:       string(s.Kind),
			IssueKey:   string(s.Kind) + "|" + s.Target,
			Confidence: s.Confidence,
			Impact:     issue.Low,
			Actions:    []repair.Action{repair.AddFact(s.Fact())},
			AutoApply:  true,
		})
	}
	return out
}
