// Package validate scores a store after repair and completion.
package validate

import (
	"context"
	"math"

	"go.uber.org/zap"

	"github.com/cognicore/ontorepair/pkg/ontorepair/axiom"
	"github.com/cognicore/ontorepair/pkg/ontorepair/issue"
	"github.com/cognicore/ontorepair/pkg/ontorepair/rdf"
	"github.com/cognicore/ontorepair/pkg/ontorepair/repair"
)

// Weights of the component scores in Overall.
const (
	consistencyWeight  = 0.5
	completenessWeight = 0.3
	qualityWeight      = 0.2
)

// Report is the outcome of a validation pass. Scores are in [0,1].
type Report struct {
	IsConsistent      bool
	ConsistencyScore  float64
	CompletenessScore float64
	QualityScore      float64
	Overall           float64
	RemainingIssues   int
	IssuesByKind      map[issue.Kind]int
}

// Validator re-runs detection over a fresh snapshot.
type Validator struct {
	Log *zap.Logger
}

// Validate scores in.
func (v *Validator) Validate(ctx context.Context, in repair.Input) *Report {
	log := v.Log
	if log == nil {
		log = zap.NewNop()
	}
	det := (&repair.Detector{Log: log}).Detect(ctx, in)

	r := &Report{
		IsConsistent:      det.Consistency.IsConsistent,
		ConsistencyScore:  det.Consistency.Score,
		CompletenessScore: Completeness(in.Axioms),
		RemainingIssues:   len(det.Issues),
		IssuesByKind:      issue.CountBy(det.Issues),
	}
	r.QualityScore = quality(det.Issues, len(in.Classification.Hierarchy.Nodes)+len(in.Axioms.Properties))
	r.Overall = consistencyWeight*r.ConsistencyScore +
		completenessWeight*r.CompletenessScore +
		qualityWeight*r.QualityScore

	log.Debug("validation finished",
		zap.Float64("overall", r.Overall),
		zap.Int("remaining_issues", r.RemainingIssues))
	return r
}

// Completeness is the share of domain and range slots that are declared
// across non-vocabulary properties. No properties scores 1.
func Completeness(ax *axiom.Axioms) float64 {
	total, filled := 0, 0
	for p := range ax.Properties {
		if rdf.IsVocabulary(p) {
			continue
		}
		total += 2
		if len(ax.Domains[p]) > 0 {
			filled++
		}
		if len(ax.Ranges[p]) > 0 {
			filled++
		}
	}
	if total == 0 {
		return 1
	}
	return float64(filled) / float64(total)
}

// quality decays with the number of non-error findings per vocabulary term.
func quality(issues []issue.Issue, terms int) float64 {
	soft := 0
	for _, is := range issues {
		if is.Severity < issue.Error {
			soft++
		}
	}
	if soft == 0 {
		return 1
	}
	if terms == 0 {
		return 0
	}
	return 1 - math.Min(1, float64(soft)/float64(terms))
}
