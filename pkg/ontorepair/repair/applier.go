package repair

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/cognicore/ontorepair/pkg/ontorepair/internalerr"
	"github.com/cognicore/ontorepair/pkg/ontorepair/store"
)

// Failure is a proposal that could not be applied.
type Failure struct {
	Proposal Proposal
	Err      error
}

// Result summarizes one application batch.
type Result struct {
	Applied []Proposal
	Failed  []Failure
	Entries []Entry
}

// SuccessRate is applied/(applied+failed), or 1 when nothing was attempted.
func (r Result) SuccessRate() float64 {
	total := len(r.Applied) + len(r.Failed)
	if total == 0 {
		return 1
	}
	return float64(len(r.Applied)) / float64(total)
}

// Applier executes proposals against a store. Each proposal is applied
// atomically; a failing proposal is rolled back and the batch continues.
// Proposals on a store.Batcher are isolated by its exclusive Batch; on other
// stores only calls through the same Applier are serialized.
type Applier struct {
	Log     *zap.Logger
	Changes *ChangeLog

	mu sync.Mutex // guards undo-path application
}

// NewApplier creates an applier with a fresh change log.
func NewApplier(log *zap.Logger) *Applier {
	if log == nil {
		log = zap.NewNop()
	}
	return &Applier{Log: log, Changes: NewChangeLog()}
}

// Apply runs proposals in order.
func (a *Applier) Apply(ctx context.Context, s store.Store, proposals []Proposal) (Result, error) {
	var res Result
	if s == nil {
		return res, internalerr.ErrNilStore
	}

	for _, p := range proposals {
		if err := ctx.Err(); err != nil {
			res.Failed = append(res.Failed, Failure{Proposal: p, Err: err})
			continue
		}
		ch, err := a.applyOne(ctx, s, p)
		if err != nil {
			a.Log.Warn("repair proposal failed",
				zap.String("proposal", p.Kind),
				zap.String("issue", p.IssueKey),
				zap.Error(err))
			res.Failed = append(res.Failed, Failure{Proposal: p, Err: err})
			continue
		}
		res.Applied = append(res.Applied, p)
		res.Entries = append(res.Entries, a.Changes.record(p, ch))
	}

	a.Log.Info("repair batch applied",
		zap.Int("applied", len(res.Applied)),
		zap.Int("failed", len(res.Failed)),
		zap.Float64("success_rate", res.SuccessRate()))
	return res, nil
}

func (a *Applier) applyOne(ctx context.Context, s store.Store, p Proposal) (Change, error) {
	if err := p.Validate(); err != nil {
		return Change{}, fmt.Errorf("%w: %w", internalerr.ErrActionFailed, err)
	}
	run := func(tx store.Tx) (Change, error) {
		var total Change
		for i, act := range p.Actions {
			ch, err := act.apply(ctx, tx)
			total.merge(ch)
			if err != nil {
				return total, fmt.Errorf("%w: action %d %s: %w", internalerr.ErrActionFailed, i, act, err)
			}
		}
		return total, nil
	}

	if b, ok := s.(store.Batcher); ok {
		var total Change
		err := b.Batch(ctx, func(tx store.Tx) error {
			ch, err := run(tx)
			total = ch
			return err
		})
		if err != nil {
			return Change{}, err
		}
		return total, nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	total, err := run(s)
	if err != nil {
		undo(ctx, s, total)
		return Change{}, err
	}
	return total, nil
}

// undo reverts a partial change on stores without transactions.
func undo(ctx context.Context, s store.Store, ch Change) {
	for i := len(ch.Added) - 1; i >= 0; i-- {
		_, _ = s.Remove(ctx, ch.Added[i])
	}
	for i := len(ch.Removed) - 1; i >= 0; i-- {
		_, _ = s.Add(ctx, ch.Removed[i])
	}
}
