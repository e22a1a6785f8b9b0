package repair

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/cognicore/ontorepair/pkg/ontorepair/axiom"
	"github.com/cognicore/ontorepair/pkg/ontorepair/classify"
	"github.com/cognicore/ontorepair/pkg/ontorepair/completion"
	"github.com/cognicore/ontorepair/pkg/ontorepair/issue"
	"github.com/cognicore/ontorepair/pkg/ontorepair/rdf"
)

// removals returns RemoveFact actions for the assertions that make i an
// instance of class: its asserted types below class, or failing that the
// property values that carried the type in.
func removals(c *Context, i rdf.Term, class string) []Action {
	var out []Action
	for _, t := range axiom.SortedKeys(c.Types.Asserted[i]) {
		if c.Hierarchy.Subsumes(class, t) {
			out = append(out, RemoveFact(rdf.PatternOf(rdf.NewFact(i, rdf.IRI(rdf.RDFType), rdf.IRI(t)))))
		}
	}
	if len(out) > 0 {
		return out
	}
	var carried []rdf.Fact
	for t, f := range c.Types.Via[i] {
		if c.Hierarchy.Subsumes(class, t) {
			carried = append(carried, f)
		}
	}
	rdf.SortFacts(carried)
	for _, f := range carried {
		out = append(out, RemoveFact(rdf.PatternOf(f)))
	}
	return out
}

func removeTypeAssertion(is issue.Issue, c *Context) []Proposal {
	i, a, b := rdf.ParseNode(is.Subjects[0]), is.Subjects[1], is.Subjects[2]
	primary := removals(c, i, a)
	if len(primary) == 0 {
		return nil
	}
	p := Proposal{
		Kind:        "RemoveTypeAssertion",
		AutoApply:   true,
		Confidence:  0.8,
		Impact:      issue.Low,
		Actions:     primary,
		Description: fmt.Sprintf("remove %s from class %s", i.Key(), a),
	}
	if alt := removals(c, i, b); len(alt) > 0 {
		p.Alternatives = [][]Action{alt}
	}
	return []Proposal{p}
}

func removeDisjointAxiom(is issue.Issue, _ *Context) []Proposal {
	a, b := is.Subjects[1], is.Subjects[2]
	return []Proposal{{
		Kind:       "RemoveDisjointAxiom",
		Confidence: 0.6,
		Impact:     issue.Medium,
		Actions: []Action{
			RemoveFact(rdf.PatternOf(rdf.Triple(a, rdf.OWLDisjointWith, b))),
			RemoveFact(rdf.PatternOf(rdf.Triple(b, rdf.OWLDisjointWith, a))),
		},
		RequiresConfirmation: true,
		Description:          fmt.Sprintf("drop disjointness between %s and %s", a, b),
	}}
}

func createBridgeClass(is issue.Issue, c *Context) []Proposal {
	i, a, b := rdf.ParseNode(is.Subjects[0]), is.Subjects[1], is.Subjects[2]
	bridge := BridgeIRI(a, b)
	actions := []Action{
		AddFact(rdf.Triple(bridge, rdf.RDFType, rdf.OWLClass)),
		AddFact(rdf.Triple(bridge, rdf.RDFSSubClassOf, a)),
		AddFact(rdf.Triple(bridge, rdf.RDFSSubClassOf, b)),
	}
	actions = append(actions, removals(c, i, a)...)
	actions = append(actions, removals(c, i, b)...)
	actions = append(actions, AddFact(rdf.NewFact(i, rdf.IRI(rdf.RDFType), rdf.IRI(bridge))))
	return []Proposal{{
		Kind:        "CreateBridgeClass",
		AutoApply:   true,
		Confidence:  0.7,
		Impact:      issue.Medium,
		Actions:     actions,
		Description: fmt.Sprintf("retype %s as %s, a subclass of %s and %s", i.Key(), bridge, a, b),
	}}
}

// BridgeIRI names the intersection class of a and b in a's namespace.
func BridgeIRI(a, b string) string {
	ns, la := splitIRI(a)
	_, lb := splitIRI(b)
	return ns + la + "And" + lb
}

func splitIRI(iri string) (ns, local string) {
	i := strings.LastIndexAny(iri, "#/")
	if i < 0 {
		return "", iri
	}
	return iri[:i+1], iri[i+1:]
}

func fromSuggestion(kind completion.Kind, name string) Strategy {
	return func(is issue.Issue, c *Context) []Proposal {
		s, ok := c.suggestion(kind, is.Subjects[0])
		if !ok {
			return nil
		}
		return []Proposal{{
			Kind:        name,
			Confidence:  s.Confidence,
			Impact:      issue.Low,
			Actions:     []Action{AddFact(s.Fact())},
			AutoApply:   s.AutoApply,
			Description: fmt.Sprintf("%s %s: %s (%d of %d usages)", name, s.Target, s.Suggested, s.Evidence.UsageCount, s.Evidence.TotalCount),
		}}
	}
}

var (
	addDomain     = fromSuggestion(completion.AddDomain, "AddDomain")
	addRange      = fromSuggestion(completion.AddRange, "AddRange")
	addSuperclass = fromSuggestion(completion.AddSuperclass, "AddSuperclass")
)

// removeSurplusValues handles upper-bound violations by keeping the first
// n values in fact order. Too few values cannot be repaired by removal.
func removeSurplusValues(is issue.Issue, _ *Context) []Proposal {
	if len(is.Subjects) < 4 {
		return nil
	}
	subject, label := is.Subjects[0], is.Subjects[2]
	limit, err := strconv.Atoi(is.Subjects[3])
	if err != nil {
		return nil
	}
	var values []rdf.Fact
	switch label {
	case axiom.MaxCardinality.String(), axiom.MaxQualifiedCardinality.String(), "functional":
		for _, f := range is.Evidence {
			if f.Subject.Key() == subject && f.Predicate.Value != rdf.RDFType {
				values = append(values, f)
			}
		}
	case "inverseFunctional":
		values = append(values, is.Evidence...)
	default:
		return nil
	}
	rdf.SortFacts(values)
	if len(values) <= limit {
		return nil
	}
	var actions []Action
	for _, f := range values[limit:] {
		actions = append(actions, RemoveFact(rdf.PatternOf(f)))
	}
	return []Proposal{{
		Kind:                 "RemoveSurplusValues",
		Confidence:           0.5,
		Impact:               issue.Medium,
		Actions:              actions,
		RequiresConfirmation: true,
		Description:          fmt.Sprintf("keep %d value(s) of %s on %s", limit, is.Subjects[1], subject),
	}}
}

// cycleEdges returns the asserted subClassOf edges among members.
func cycleEdges(is issue.Issue) []rdf.Fact {
	var out []rdf.Fact
	for _, f := range is.Evidence {
		if f.Predicate.Value == rdf.RDFSSubClassOf {
			out = append(out, f)
		}
	}
	rdf.SortFacts(out)
	return out
}

func replaceCycleWithEquivalence(is issue.Issue, _ *Context) []Proposal {
	edges := cycleEdges(is)
	members := append([]string(nil), is.Subjects...)
	sort.Strings(members)
	if len(edges) == 0 || len(members) < 2 {
		return nil
	}
	var actions []Action
	for _, f := range edges {
		actions = append(actions, RemoveFact(rdf.PatternOf(f)))
	}
	for _, m := range members[1:] {
		actions = append(actions, AddFact(rdf.Triple(members[0], rdf.OWLEquivalentClass, m)))
	}
	return []Proposal{{
		Kind:        "ReplaceCycleWithEquivalence",
		AutoApply:   true,
		Confidence:  0.75,
		Impact:      issue.Medium,
		Actions:     actions,
		Description: "declare " + strings.Join(members, ", ") + " equivalent",
	}}
}

func breakCycle(is issue.Issue, _ *Context) []Proposal {
	edges := cycleEdges(is)
	if len(edges) == 0 {
		return nil
	}
	last := edges[len(edges)-1]
	return []Proposal{{
		Kind:                 "BreakCycle",
		Confidence:           0.5,
		Impact:               issue.Medium,
		Actions:              []Action{RemoveFact(rdf.PatternOf(last))},
		RequiresConfirmation: true,
		Description:          "remove " + last.String(),
	}}
}

// removeSuperclassEdge cuts the first asserted edge on the path from the
// unsatisfiable class to the second disjoint class, or to the first as an
// alternative.
func removeSuperclassEdge(is issue.Issue, c *Context) []Proposal {
	class, a, b := is.Subjects[0], is.Subjects[1], is.Subjects[2]
	cut := func(target string) []Action {
		for _, step := range c.Hierarchy.Explain(class, target) {
			if step.Origin == classify.Asserted {
				return []Action{RemoveFact(rdf.PatternOf(rdf.Triple(step.From, rdf.RDFSSubClassOf, step.To)))}
			}
		}
		return nil
	}
	// class may be one of the disjoint pair; then only the other side has edges to cut.
	target, other := b, a
	primary := cut(target)
	if primary == nil {
		target, other = a, b
		if primary = cut(target); primary == nil {
			return nil
		}
	}
	p := Proposal{
		Kind:                 "RemoveSuperclassEdge",
		Confidence:           0.55,
		Impact:               issue.Medium,
		Actions:              primary,
		RequiresConfirmation: true,
		Description:          fmt.Sprintf("detach %s from %s", class, target),
	}
	if alt := cut(other); alt != nil {
		p.Alternatives = [][]Action{alt}
	}
	return []Proposal{p}
}
