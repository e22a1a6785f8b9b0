// Package completion infers missing rdfs:domain, rdfs:range and
// rdfs:subClassOf declarations from how the vocabulary is used.
package completion

import (
	"context"
	"fmt"
	"sort"

	"github.com/cognicore/ontorepair/pkg/ontorepair/axiom"
	"github.com/cognicore/ontorepair/pkg/ontorepair/classify"
	"github.com/cognicore/ontorepair/pkg/ontorepair/internalerr"
	"github.com/cognicore/ontorepair/pkg/ontorepair/rdf"
	"github.com/cognicore/ontorepair/pkg/ontorepair/realize"
	"github.com/cognicore/ontorepair/pkg/ontorepair/store"
)

// Kind of completion.
type Kind string

const (
	AddDomain     Kind = "AddDomain"
	AddRange      Kind = "AddRange"
	AddSuperclass Kind = "AddSuperclass"
)

// AutoApplyAbove is the confidence a suggestion needs to be applied without
// review.
const AutoApplyAbove = 0.8

// Evidence behind a suggestion.
type Evidence struct {
	UsageCount int // usages supporting the suggested value
	TotalCount int // all usages considered
}

// Suggestion proposes one missing axiom.
type Suggestion struct {
	Kind       Kind
	Target     string // property for AddDomain/AddRange, class for AddSuperclass
	Suggested  string
	Confidence float64
	AutoApply  bool
	Evidence   Evidence
}

// Validate rejects suggestions that could not have come from this package.
func (s Suggestion) Validate() error {
	if !(s.Confidence >= 0 && s.Confidence <= 1) {
		return fmt.Errorf("suggestion %s %s: confidence %v outside [0,1]: %w", s.Kind, s.Target, s.Confidence, internalerr.ErrInvalidInput)
	}
	if s.Target == "" || s.Suggested == "" {
		return fmt.Errorf("suggestion %s: empty target or value: %w", s.Kind, internalerr.ErrInvalidInput)
	}
	return nil
}

// Fact returns the axiom the suggestion would add.
func (s Suggestion) Fact() rdf.Fact {
	switch s.Kind {
	case AddDomain:
		return rdf.Triple(s.Target, rdf.RDFSDomain, s.Suggested)
	case AddRange:
		return rdf.Triple(s.Target, rdf.RDFSRange, s.Suggested)
	default:
		return rdf.Triple(s.Target, rdf.RDFSSubClassOf, s.Suggested)
	}
}

// Reviewer optionally approves a suggestion.
type Reviewer interface {
	ApproveCompletion(ctx context.Context, sugg Suggestion) (bool, error)
}

// Completer proposes completions over one reasoning snapshot.
type Completer struct {
	Snap      *store.Snapshot
	Axioms    *axiom.Axioms
	Hierarchy *classify.Hierarchy
	Types     *realize.Types
	Reviewer  Reviewer // optional
}

// Run gathers domain, range and superclass suggestions. With a Reviewer,
// only approved suggestions are returned.
func (c *Completer) Run(ctx context.Context) ([]Suggestion, error) {
	var suggestions []Suggestion
	suggestions = append(suggestions, c.FindMissingDomains()...)
	suggestions = append(suggestions, c.FindMissingRanges()...)
	suggestions = append(suggestions, c.FindMissingSuperclasses()...)

	if c.Reviewer == nil {
		return suggestions, nil
	}
	var approved []Suggestion
	for _, sugg := range suggestions {
		if err := ctx.Err(); err != nil {
			return approved, err
		}
		ok, err := c.Reviewer.ApproveCompletion(ctx, sugg)
		if err != nil {
			return nil, err
		}
		if ok {
			approved = append(approved, sugg)
		}
	}
	return approved, nil
}

// FindMissingDomains suggests the modal asserted type of the subjects of
// each property that has no rdfs:domain.
func (c *Completer) FindMissingDomains() []Suggestion {
	var out []Suggestion
	for _, p := range axiom.SortedKeys(c.Axioms.Properties) {
		if len(c.Axioms.Domains[p]) > 0 {
			continue
		}
		t := newTally()
		for _, f := range c.Snap.WithPredicate(p) {
			t.usage(axiom.SortedKeys(c.Types.Asserted[f.Subject]))
		}
		if s, ok := t.suggest(AddDomain, p); ok {
			out = append(out, s)
		}
	}
	return out
}

// FindMissingRanges suggests the modal asserted type of the objects of each
// property that has no rdfs:range. Literal objects count their datatype.
func (c *Completer) FindMissingRanges() []Suggestion {
	var out []Suggestion
	for _, p := range axiom.SortedKeys(c.Axioms.Properties) {
		if len(c.Axioms.Ranges[p]) > 0 {
			continue
		}
		t := newTally()
		for _, f := range c.Snap.WithPredicate(p) {
			if f.Object.IsLiteral() {
				t.usage([]string{f.Object.Datatype})
				continue
			}
			t.usage(axiom.SortedKeys(c.Types.Asserted[f.Object]))
		}
		if s, ok := t.suggest(AddRange, p); ok {
			out = append(out, s)
		}
	}
	return out
}

// Orphans returns declared classes with no named superclass, no subclasses
// and no instances.
func Orphans(ax *axiom.Axioms, h *classify.Hierarchy, types *realize.Types) []string {
	var out []string
	for _, c := range axiom.SortedKeys(ax.DeclaredClasses) {
		if rdf.IsVocabulary(c) {
			continue
		}
		if len(h.DirectSupers(c)) > 0 || len(h.Descendants(c)) > 0 || len(types.InstancesOf(c)) > 0 {
			continue
		}
		out = append(out, c)
	}
	return out
}

// FindMissingSuperclasses places each orphaned class under the parent of
// the class whose property signature is most similar to the orphan's, by
// Jaccard similarity. Every class X votes for its direct superclasses with
// J(orphan, X); the highest vote wins and becomes the confidence.
func (c *Completer) FindMissingSuperclasses() []Suggestion {
	orphans := Orphans(c.Axioms, c.Hierarchy, c.Types)
	if len(orphans) == 0 {
		return nil
	}
	sigs := c.signatures()

	var out []Suggestion
	for _, o := range orphans {
		own := sigs[o]
		if len(own) == 0 {
			continue
		}
		votes := make(map[string]float64)
		support := make(map[string]int)
		for _, x := range c.Hierarchy.Classes() {
			if x == o || len(sigs[x]) == 0 {
				continue
			}
			score := jaccard(own, sigs[x])
			if score == 0 {
				continue
			}
			for _, parent := range c.Hierarchy.DirectSupers(x) {
				if parent == o || rdf.IsVocabulary(parent) {
					continue
				}
				if score > votes[parent] {
					votes[parent] = score
				}
				support[parent]++
			}
		}
		best, score := "", 0.0
		for _, parent := range sortedByKey(votes) {
			if votes[parent] > score {
				best, score = parent, votes[parent]
			}
		}
		if best == "" {
			continue
		}
		out = append(out, Suggestion{
			Kind:       AddSuperclass,
			Target:     o,
			Suggested:  best,
			Confidence: score,
			AutoApply:  score > AutoApplyAbove,
			Evidence:   Evidence{UsageCount: support[best], TotalCount: len(c.Hierarchy.Nodes) - 1},
		})
	}
	return out
}

// signatures collects, per class, the properties whose domain is the class,
// the properties its asserted instances use, and the properties its
// restrictions constrain.
func (c *Completer) signatures() map[string]map[string]struct{} {
	sigs := make(map[string]map[string]struct{})
	add := func(class, p string) {
		if sigs[class] == nil {
			sigs[class] = make(map[string]struct{})
		}
		sigs[class][p] = struct{}{}
	}
	for p, domains := range c.Axioms.Domains {
		for _, d := range domains {
			add(d, p)
		}
	}
	for i, classes := range c.Types.Asserted {
		for _, f := range c.Snap.Match(rdf.Pattern{Subject: i}) {
			if rdf.IsVocabulary(f.Predicate.Value) {
				continue
			}
			for class := range classes {
				add(class, f.Predicate.Value)
			}
		}
	}
	for _, a := range c.Axioms.Anchors {
		add(a.Class, a.Restriction.OnProperty)
	}
	return sigs
}

func jaccard(a, b map[string]struct{}) float64 {
	inter := 0
	for k := range a {
		if _, ok := b[k]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

func sortedByKey(m map[string]float64) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// tally counts how often each type appears across usages.
type tally struct {
	counts map[string]int
	total  int
}

func newTally() *tally { return &tally{counts: make(map[string]int)} }

func (t *tally) usage(types []string) {
	t.total++
	for _, ty := range types {
		t.counts[ty]++
	}
}

// suggest picks the modal type; ties go to the lexicographically first.
func (t *tally) suggest(kind Kind, target string) (Suggestion, bool) {
	best, n := "", 0
	keys := make([]string, 0, len(t.counts))
	for k := range t.counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if t.counts[k] > n {
			best, n = k, t.counts[k]
		}
	}
	if n == 0 || t.total == 0 {
		return Suggestion{}, false
	}
	conf := float64(n) / float64(t.total)
	return Suggestion{
		Kind:       kind,
		Target:     target,
		Suggested:  best,
		Confidence: conf,
		AutoApply:  conf > AutoApplyAbove,
		Evidence:   Evidence{UsageCount: n, TotalCount: t.total},
	}, true
}
