// Package issue defines the problems the detector reports and the ordering
// used to rank them.
package issue

import (
	"sort"
	"strings"

	"github.com/cognicore/ontorepair/pkg/ontorepair/rdf"
	"github.com/cognicore/ontorepair/pkg/ontorepair/session"
)

// Kind is the closed set of issue kinds.
type Kind string

const (
	DisjointViolation     Kind = "DisjointViolation"
	CardinalityViolation  Kind = "CardinalityViolation"
	CircularDefinition    Kind = "CircularDefinition"
	MissingDomain         Kind = "MissingDomain"
	MissingRange          Kind = "MissingRange"
	OrphanedClass         Kind = "OrphanedClass"
	InconsistentHierarchy Kind = "InconsistentHierarchy"
)

// Kinds lists every kind in declaration order.
var Kinds = []Kind{
	DisjointViolation, CardinalityViolation, CircularDefinition,
	MissingDomain, MissingRange, OrphanedClass, InconsistentHierarchy,
}

// Severity orders how bad an issue is.
type Severity int

const (
	Info Severity = iota + 1
	Warning
	Error
	Critical
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	case Critical:
		return "critical"
	default:
		return "unknown"
	}
}

// Impact estimates how much of the knowledge base an issue, or its repair,
// touches.
type Impact int

const (
	Low Impact = iota + 1
	Medium
	High
)

func (i Impact) String() string {
	switch i {
	case Low:
		return "low"
	case Medium:
		return "medium"
	case High:
		return "high"
	default:
		return "unknown"
	}
}

// Issue is one detected problem.
type Issue struct {
	ID       string
	Kind     Kind
	Severity Severity
	Impact   Impact
	Message  string
	Evidence []rdf.Fact
	Subjects []string // IRIs (or blank node keys) the issue is about, in a kind-specific order
	Key      string   // dedup key; issues with the same Key are the same issue
}

// New builds an issue with a fresh ID. The dedup key is the kind plus the
// subjects in the given order.
func New(kind Kind, sev Severity, impact Impact, msg string, subjects []string, evidence []rdf.Fact) Issue {
	return Issue{
		ID:       session.NewID(),
		Kind:     kind,
		Severity: sev,
		Impact:   impact,
		Message:  msg,
		Subjects: subjects,
		Evidence: evidence,
		Key:      string(kind) + "|" + strings.Join(subjects, "|"),
	}
}

// Dedup drops issues whose Key was already seen, keeping the first.
func Dedup(issues []Issue) []Issue {
	seen := make(map[string]bool, len(issues))
	out := issues[:0:0]
	for _, is := range issues {
		if seen[is.Key] {
			continue
		}
		seen[is.Key] = true
		out = append(out, is)
	}
	return out
}

// Rank sorts issues by severity then impact, both descending. Ties keep a
// deterministic order by key.
func Rank(issues []Issue) {
	sort.SliceStable(issues, func(i, j int) bool {
		a, b := issues[i], issues[j]
		if a.Severity != b.Severity {
			return a.Severity > b.Severity
		}
		if a.Impact != b.Impact {
			return a.Impact > b.Impact
		}
		return a.Key < b.Key
	})
}

// CountBy tallies issues per kind.
func CountBy(issues []Issue) map[Kind]int {
	out := make(map[Kind]int)
	for _, is := range issues {
		out[is.Kind]++
	}
	return out
}
