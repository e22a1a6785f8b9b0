package repair

import (
	"context"
)

// Reviewer optionally approves proposals that are not auto-applicable,
// typically those that require confirmation.
type Reviewer interface {
	ApproveProposal(ctx context.Context, p Proposal) (bool, error)
}

// Select picks at most one proposal per issue from a sorted list: the first
// that is auto-applicable or, failing that, approved by the reviewer.
// Reviewer errors leave the proposal unselected and are returned alongside.
func Select(ctx context.Context, proposals []Proposal, reviewer Reviewer) ([]Proposal, []error) {
	var (
		out  []Proposal
		errs []error
	)
	done := make(map[string]bool)
	for _, p := range proposals {
		if done[p.IssueKey] {
			continue
		}
		if p.AutoApply {
			out = append(out, p)
			done[p.IssueKey] = true
			continue
		}
		if reviewer == nil {
			continue
		}
		ok, err := reviewer.ApproveProposal(ctx, p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if ok {
			out = append(out, p)
			done[p.IssueKey] = true
		}
	}
	return out, errs
}
