// Package consistency detects logical contradictions: individuals in
// disjoint classes, cardinality and functional-property violations, and
// classes that can have no instances.
package consistency

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cognicore/ontorepair/pkg/ontorepair/axiom"
	"github.com/cognicore/ontorepair/pkg/ontorepair/classify"
	"github.com/cognicore/ontorepair/pkg/ontorepair/issue"
	"github.com/cognicore/ontorepair/pkg/ontorepair/rdf"
	"github.com/cognicore/ontorepair/pkg/ontorepair/realize"
	"github.com/cognicore/ontorepair/pkg/ontorepair/store"
)

// Input bundles the read-only state of one reasoning pass.
type Input struct {
	Snap           *store.Snapshot
	Axioms         *axiom.Axioms
	Classification *classify.Result
	Types          *realize.Types
	Log            *zap.Logger
}

// Result of a consistency check.
type Result struct {
	IsConsistent bool
	Score        float64
	Issues       []issue.Issue
	Duration     time.Duration
}

type scan func(ctx context.Context, in Input) []issue.Issue

// Check runs every scan concurrently over the snapshot. A cancelled context
// stops outstanding scans; issues found so far are still returned.
func Check(ctx context.Context, in Input) *Result {
	start := time.Now()
	log := in.Log
	if log == nil {
		log = zap.NewNop()
	}

	scans := []scan{disjointScan, cardinalityScan, functionalScan, unsatisfiableScan}
	found := make([][]issue.Issue, len(scans))

	g, gctx := errgroup.WithContext(ctx)
	for i, s := range scans {
		g.Go(func() error {
			found[i] = s(gctx, in)
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		log.Warn("consistency check interrupted", zap.Error(err))
	}

	var issues []issue.Issue
	for _, f := range found {
		issues = append(issues, f...)
	}
	issues = issue.Dedup(issues)
	issue.Rank(issues)

	res := &Result{
		IsConsistent: len(issues) == 0,
		Score:        Score(len(issues), len(in.Classification.Hierarchy.Nodes)),
		Issues:       issues,
		Duration:     time.Since(start),
	}
	log.Debug("consistency check finished",
		zap.Int("issues", len(issues)),
		zap.Float64("score", res.Score),
		zap.Duration("took", res.Duration))
	return res
}

// Score decays from 1 toward 0 as issues approach the class count.
func Score(issues, classes int) float64 {
	if issues == 0 {
		return 1
	}
	if classes == 0 {
		return 0
	}
	return 1 - math.Min(1, float64(issues)/float64(classes))
}

func disjointScan(ctx context.Context, in Input) []issue.Issue {
	var out []issue.Issue
	for _, pair := range in.Axioms.Disjoint {
		if ctx.Err() != nil {
			return out
		}
		a, b := pair[0], pair[1]
		for _, i := range in.Types.InstancesOf(a) {
			if !in.Types.Has(i, b) {
				continue
			}
			evidence := append(typeEvidence(in, i, a), typeEvidence(in, i, b)...)
			evidence = append(evidence, disjointFact(in.Snap, a, b))
			out = append(out, issue.New(issue.DisjointViolation, issue.Error, issue.High,
				fmt.Sprintf("%s is an instance of disjoint classes %s and %s", i.Key(), a, b),
				[]string{i.Key(), a, b}, evidence))
		}
	}
	return out
}

func cardinalityScan(ctx context.Context, in Input) []issue.Issue {
	var out []issue.Issue
	props := in.Classification.Properties
	for _, anchor := range in.Axioms.Anchors {
		if ctx.Err() != nil {
			return out
		}
		r := anchor.Restriction
		switch r.Kind {
		case axiom.MinCardinality, axiom.MaxCardinality, axiom.MinQualifiedCardinality, axiom.MaxQualifiedCardinality:
		default:
			continue
		}
		for _, i := range in.Types.InstancesOf(anchor.Class) {
			values := distinctValues(in, props, i, r)
			n := len(values)
			isMin := r.Kind == axiom.MinCardinality || r.Kind == axiom.MinQualifiedCardinality
			if isMin && n >= r.Cardinality || !isMin && n <= r.Cardinality {
				continue
			}
			sev, bound := issue.Error, "at most"
			if isMin {
				// too few values is an incompleteness, not a contradiction
				sev, bound = issue.Warning, "at least"
			}
			evidence := typeEvidence(in, i, anchor.Class)
			for _, f := range values {
				evidence = append(evidence, f)
			}
			out = append(out, issue.New(issue.CardinalityViolation, sev, issue.Medium,
				fmt.Sprintf("%s has %d values for %s, expected %s %d", i.Key(), n, r.OnProperty, bound, r.Cardinality),
				[]string{i.Key(), r.OnProperty, r.Kind.String(), strconv.Itoa(r.Cardinality)}, evidence))
		}
	}
	return out
}

// distinctValues returns one fact per distinct counted value of r.OnProperty.
func distinctValues(in Input, props *classify.Hierarchy, i rdf.Term, r axiom.Restriction) []rdf.Fact {
	seen := make(map[rdf.Term]bool)
	var out []rdf.Fact
	for _, f := range realize.ValuesOf(in.Snap, props, i, r.OnProperty) {
		if seen[f.Object] {
			continue
		}
		if r.Qualified() && !qualifies(in.Types, f.Object, r.Value) {
			continue
		}
		seen[f.Object] = true
		out = append(out, f)
	}
	return out
}

func qualifies(types *realize.Types, v rdf.Term, onClass rdf.Term) bool {
	if onClass.IsZero() || onClass.Value == rdf.OWLThing {
		return true
	}
	if v.IsLiteral() {
		return v.Datatype == onClass.Value
	}
	return types.Has(v, onClass.Value)
}

func functionalScan(ctx context.Context, in Input) []issue.Issue {
	var out []issue.Issue
	for _, p := range axiom.SortedKeys(in.Axioms.Functional) {
		if ctx.Err() != nil {
			return out
		}
		out = append(out, groupViolations(in.Snap, p, false)...)
	}
	for _, p := range axiom.SortedKeys(in.Axioms.InverseFunctional) {
		if ctx.Err() != nil {
			return out
		}
		out = append(out, groupViolations(in.Snap, p, true)...)
	}
	return out
}

// groupViolations flags subjects with several objects for p, or, when
// inverse is set, objects reached from several subjects.
func groupViolations(snap *store.Snapshot, p string, inverse bool) []issue.Issue {
	groups := make(map[rdf.Term][]rdf.Fact)
	var order []rdf.Term
	for _, f := range snap.WithPredicate(p) {
		key := f.Subject
		if inverse {
			key = f.Object
		}
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], f)
	}

	var out []issue.Issue
	for _, key := range order {
		facts := groups[key]
		distinct := make(map[rdf.Term]bool)
		for _, f := range facts {
			if inverse {
				distinct[f.Subject] = true
			} else {
				distinct[f.Object] = true
			}
		}
		if len(distinct) < 2 {
			continue
		}
		label, msg := "functional", "%s has %d distinct values for functional property %s"
		if inverse {
			label, msg = "inverseFunctional", "%s is the value of %d distinct subjects for inverse-functional property %s"
		}
		rdf.SortFacts(facts)
		out = append(out, issue.New(issue.CardinalityViolation, issue.Error, issue.Medium,
			fmt.Sprintf(msg, key.Key(), len(distinct), p),
			[]string{key.Key(), p, label, "1"}, facts))
	}
	return out
}

func unsatisfiableScan(ctx context.Context, in Input) []issue.Issue {
	var out []issue.Issue
	h := in.Classification.Hierarchy
	for _, c := range h.Classes() {
		if ctx.Err() != nil {
			return out
		}
		for _, pair := range in.Axioms.Disjoint {
			a, b := pair[0], pair[1]
			if !h.Subsumes(a, c) || !h.Subsumes(b, c) {
				continue
			}
			// Explain is empty when c is a or b itself; the disjoint fact remains.
			var evidence []rdf.Fact
			for _, target := range []string{a, b} {
				for _, step := range h.Explain(c, target) {
					switch step.Origin {
					case classify.Asserted:
						evidence = append(evidence, rdf.Triple(step.From, rdf.RDFSSubClassOf, step.To))
					case classify.Equivalent:
						evidence = append(evidence, symmetricFact(in.Snap, step.From, rdf.OWLEquivalentClass, step.To))
					}
				}
			}
			evidence = append(evidence, disjointFact(in.Snap, a, b))
			out = append(out, issue.New(issue.InconsistentHierarchy, issue.Error, issue.High,
				fmt.Sprintf("class %s is a subclass of disjoint classes %s and %s", c, a, b),
				[]string{c, a, b}, evidence))
		}
	}
	return out
}

// typeEvidence returns the asserted rdf:type facts (and allValuesFrom carrier
// facts) that make i an instance of class.
func typeEvidence(in Input, i rdf.Term, class string) []rdf.Fact {
	h := in.Classification.Hierarchy
	var out []rdf.Fact
	for _, t := range axiom.SortedKeys(in.Types.Asserted[i]) {
		if h.Subsumes(class, t) {
			out = append(out, rdf.NewFact(i, rdf.IRI(rdf.RDFType), rdf.IRI(t)))
		}
	}
	var carried []rdf.Fact
	for t, f := range in.Types.Via[i] {
		if h.Subsumes(class, t) {
			carried = append(carried, f)
		}
	}
	rdf.SortFacts(carried)
	return append(out, carried...)
}

func disjointFact(snap *store.Snapshot, a, b string) rdf.Fact {
	return symmetricFact(snap, a, rdf.OWLDisjointWith, b)
}

// symmetricFact returns whichever direction of a symmetric axiom is asserted.
func symmetricFact(snap *store.Snapshot, a, predicate, b string) rdf.Fact {
	f := rdf.Triple(a, predicate, b)
	if snap.Has(f) {
		return f
	}
	return rdf.Triple(b, predicate, a)
}
