package repair

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cognicore/ontorepair/pkg/ontorepair/axiom"
	"github.com/cognicore/ontorepair/pkg/ontorepair/completion"
	"github.com/cognicore/ontorepair/pkg/ontorepair/consistency"
	"github.com/cognicore/ontorepair/pkg/ontorepair/issue"
	"github.com/cognicore/ontorepair/pkg/ontorepair/rdf"
)

// Input is the read-only reasoning state shared with the consistency checker.
type Input = consistency.Input

// Detector finds logical and completeness problems in one snapshot.
type Detector struct {
	Log *zap.Logger
}

// Detection is what the detector found.
type Detection struct {
	Issues      []issue.Issue
	Consistency *consistency.Result
}

// Detect runs the consistency checker and the completeness scans and ranks
// everything found by severity then impact.
func (d *Detector) Detect(ctx context.Context, in Input) *Detection {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	in.Log = log
	cons := consistency.Check(ctx, in)

	issues := append([]issue.Issue(nil), cons.Issues...)
	issues = append(issues, missingDeclarations(in)...)
	issues = append(issues, orphans(in)...)
	issues = append(issues, circularDefinitions(in)...)
	issues = issue.Dedup(issues)
	issue.Rank(issues)

	log.Debug("issue detection finished",
		zap.Int("issues", len(issues)),
		zap.Bool("consistent", cons.IsConsistent))
	return &Detection{Issues: issues, Consistency: cons}
}

// missingDeclarations flags used properties without a domain or range.
func missingDeclarations(in Input) []issue.Issue {
	var out []issue.Issue
	for _, p := range sortedProperties(in) {
		usages := in.Snap.WithPredicate(p)
		if len(usages) == 0 {
			continue
		}
		evidence := usages
		if len(evidence) > 3 {
			evidence = evidence[:3]
		}
		if len(in.Axioms.Domains[p]) == 0 {
			out = append(out, issue.New(issue.MissingDomain, issue.Warning, issue.Low,
				fmt.Sprintf("property %s is used %d times but declares no rdfs:domain", p, len(usages)),
				[]string{p}, evidence))
		}
		if len(in.Axioms.Ranges[p]) == 0 {
			out = append(out, issue.New(issue.MissingRange, issue.Warning, issue.Low,
				fmt.Sprintf("property %s is used %d times but declares no rdfs:range", p, len(usages)),
				[]string{p}, evidence))
		}
	}
	return out
}

func orphans(in Input) []issue.Issue {
	var out []issue.Issue
	for _, c := range completion.Orphans(in.Axioms, in.Classification.Hierarchy, in.Types) {
		out = append(out, issue.New(issue.OrphanedClass, issue.Info, issue.Low,
			fmt.Sprintf("class %s has no superclass, subclasses or instances", c),
			[]string{c}, []rdf.Fact{rdf.Triple(c, rdf.RDFType, rdf.OWLClass)}))
	}
	return out
}

// circularDefinitions reports equivalence groups that come from subclass
// cycles rather than explicit owl:equivalentClass axioms.
func circularDefinitions(in Input) []issue.Issue {
	var out []issue.Issue
	for _, members := range in.Classification.Cycles {
		inCycle := make(map[string]bool, len(members))
		for _, m := range members {
			inCycle[m] = true
		}
		var evidence []rdf.Fact
		for _, m := range members {
			for sup := range in.Axioms.SubClass[m] {
				if inCycle[sup] {
					evidence = append(evidence, rdf.Triple(m, rdf.RDFSSubClassOf, sup))
				}
			}
		}
		rdf.SortFacts(evidence)
		out = append(out, issue.New(issue.CircularDefinition, issue.Warning, issue.Medium,
			"subclass cycle makes "+strings.Join(members, ", ")+" equivalent",
			members, evidence))
	}
	return out
}

func sortedProperties(in Input) []string {
	var out []string
	for _, p := range axiom.SortedKeys(in.Axioms.Properties) {
		if !rdf.IsVocabulary(p) {
			out = append(out, p)
		}
	}
	return out
}
