package repair

import (
	"context"

	"go.uber.org/zap"

	"github.com/cognicore/ontorepair/pkg/ontorepair/axiom"
	"github.com/cognicore/ontorepair/pkg/ontorepair/classify"
	"github.com/cognicore/ontorepair/pkg/ontorepair/completion"
	"github.com/cognicore/ontorepair/pkg/ontorepair/issue"
	"github.com/cognicore/ontorepair/pkg/ontorepair/realize"
	"github.com/cognicore/ontorepair/pkg/ontorepair/session"
	"github.com/cognicore/ontorepair/pkg/ontorepair/store"
)

// DefaultThreshold is the minimum confidence a proposal needs to be kept.
const DefaultThreshold = 0.7

// Context is the reasoning state strategies read from.
type Context struct {
	Snap        *store.Snapshot
	Axioms      *axiom.Axioms
	Hierarchy   *classify.Hierarchy
	Types       *realize.Types
	Suggestions []completion.Suggestion
}

// suggestion finds the completion for target of the given kind.
func (c *Context) suggestion(kind completion.Kind, target string) (completion.Suggestion, bool) {
	for _, s := range c.Suggestions {
		if s.Kind == kind && s.Target == target {
			return s, true
		}
	}
	return completion.Suggestion{}, false
}

// Strategy turns one issue into zero or more proposals.
type Strategy func(is issue.Issue, c *Context) []Proposal

// Generator maps issue kinds to strategies.
type Generator struct {
	Threshold float64
	Log       *zap.Logger

	strategies map[issue.Kind][]Strategy
}

// NewGenerator registers the built-in strategies for every issue kind.
func NewGenerator(threshold float64, log *zap.Logger) *Generator {
	if log == nil {
		log = zap.NewNop()
	}
	g := &Generator{Threshold: threshold, Log: log, strategies: make(map[issue.Kind][]Strategy)}
	g.Register(issue.DisjointViolation, removeTypeAssertion, removeDisjointAxiom, createBridgeClass)
	g.Register(issue.MissingDomain, addDomain)
	g.Register(issue.MissingRange, addRange)
	g.Register(issue.OrphanedClass, addSuperclass)
	g.Register(issue.CardinalityViolation, removeSurplusValues)
	g.Register(issue.CircularDefinition, replaceCycleWithEquivalence, breakCycle)
	g.Register(issue.InconsistentHierarchy, removeSuperclassEdge)
	return g
}

// Register appends strategies for kind.
func (g *Generator) Register(kind issue.Kind, strategies ...Strategy) {
	g.strategies[kind] = append(g.strategies[kind], strategies...)
}

// Generate runs every registered strategy over issues. Proposals are
// deduplicated, filtered by Threshold and sorted best first.
func (g *Generator) Generate(ctx context.Context, issues []issue.Issue, c *Context) []Proposal {
	var all []Proposal
	for _, is := range issues {
		if ctx.Err() != nil {
			break
		}
		for _, strategy := range g.strategies[is.Kind] {
			for _, p := range strategy(is, c) {
				p.ID = session.NewID()
				p.IssueID = is.ID
				p.IssueKey = is.Key
				p.IssueKind = is.Kind
				if err := p.Validate(); err != nil {
					g.Log.Warn("dropping invalid proposal", zap.String("issue", is.Key), zap.Error(err))
					continue
				}
				all = append(all, p)
			}
		}
	}

	all = DedupProposals(all)
	kept := all[:0]
	for _, p := range all {
		if p.Confidence >= g.Threshold {
			kept = append(kept, p)
		}
	}
	SortProposals(kept)
	g.Log.Debug("generated repair proposals",
		zap.Int("issues", len(issues)),
		zap.Int("proposals", len(all)),
		zap.Int("kept", len(kept)))
	return kept
}
