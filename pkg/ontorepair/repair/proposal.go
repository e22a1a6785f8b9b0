package repair

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cognicore/ontorepair/pkg/ontorepair/internalerr"
	"github.com/cognicore/ontorepair/pkg/ontorepair/issue"
)

// Proposal is one scored way to resolve an issue.
type Proposal struct {
	ID                   string
	Kind                 string // strategy name, e.g. RemoveTypeAssertion
	IssueID              string
	IssueKey             string
	IssueKind            issue.Kind
	Confidence           float64
	Impact               issue.Impact
	Actions              []Action
	Alternatives         [][]Action
	RequiresConfirmation bool
	AutoApply            bool
	Description          string
}

// Validate rejects out-of-range confidence and malformed actions.
func (p Proposal) Validate() error {
	if !(p.Confidence >= 0 && p.Confidence <= 1) {
		return fmt.Errorf("proposal %s: confidence %v outside [0,1]: %w", p.Kind, p.Confidence, internalerr.ErrInvalidInput)
	}
	if len(p.Actions) == 0 {
		return fmt.Errorf("proposal %s: no actions: %w", p.Kind, internalerr.ErrInvalidInput)
	}
	for _, a := range p.Actions {
		if err := a.Validate(); err != nil {
			return fmt.Errorf("proposal %s: %w", p.Kind, err)
		}
	}
	return nil
}

// Key identifies a proposal by what it does: its kind and its serialized
// actions.
func (p Proposal) Key() string {
	parts := make([]string, 0, len(p.Actions)+1)
	parts = append(parts, p.Kind)
	for _, a := range p.Actions {
		parts = append(parts, a.String())
	}
	return strings.Join(parts, ";")
}

// SortProposals orders by confidence descending, then impact ascending.
// Remaining ties fall back to issue key and proposal key.
func SortProposals(ps []Proposal) {
	sort.SliceStable(ps, func(i, j int) bool {
		a, b := ps[i], ps[j]
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		if a.Impact != b.Impact {
			return a.Impact < b.Impact
		}
		if a.IssueKey != b.IssueKey {
			return a.IssueKey < b.IssueKey
		}
		return a.Key() < b.Key()
	})
}

// DedupProposals keeps the first proposal per Key.
func DedupProposals(ps []Proposal) []Proposal {
	seen := make(map[string]bool, len(ps))
	out := ps[:0:0]
	for _, p := range ps {
		k := p.Key()
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, p)
	}
	return out
}
