package extension

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/mangle/analysis"
	"github.com/google/mangle/ast"
	_ "github.com/google/mangle/builtin"
	"github.com/google/mangle/engine"
	"github.com/google/mangle/factstore"
	"github.com/google/mangle/parse"
	"go.uber.org/zap"

	"github.com/cognicore/ontorepair/pkg/ontorepair/internalerr"
	"github.com/cognicore/ontorepair/pkg/ontorepair/rdf"
	"github.com/cognicore/ontorepair/pkg/ontorepair/store"
)

// CustomRules is the registry name of the Datalog rule extension.
const CustomRules = "rules"

var inferredPred = ast.PredicateSym{Symbol: "inferred", Arity: 3}

// RuleExtension evaluates user-supplied Mangle rules over the snapshot.
// Every fact is visible as triple(S, P, O) with each position rendered as a
// term key: the IRI itself, "_:id" for blank nodes, or the N-Triples form
// of a literal. Rules derive inferred(S, P, O) in the same encoding.
//
//	inferred(X, "http://ex/knows", Y) :- triple(Y, "http://ex/knows", X).
type RuleExtension struct {
	name  string
	rules string
}

// NewRuleExtension checks that rules parse. An empty rule set is rejected.
func NewRuleExtension(name, rules string) (*RuleExtension, error) {
	if strings.TrimSpace(rules) == "" {
		return nil, fmt.Errorf("rule extension %q: no rules: %w", name, internalerr.ErrInvalidInput)
	}
	if _, err := parse.Unit(strings.NewReader(rules)); err != nil {
		return nil, fmt.Errorf("rule extension %q: parse: %w: %w", name, internalerr.ErrInvalidInput, err)
	}
	if name == "" {
		name = CustomRules
	}
	return &RuleExtension{name: name, rules: rules}, nil
}

func (r *RuleExtension) Name() string { return r.name }

// Detect reports whether there are any facts for the rules to match.
func (r *RuleExtension) Detect(_ context.Context, snap *store.Snapshot) bool {
	return snap.Len() > 0
}

// Reason evaluates the rules to fixpoint and collects inferred/3.
func (r *RuleExtension) Reason(ctx context.Context, snap *store.Snapshot, opts Options) ([]rdf.Fact, error) {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	program := r.program(snap)

	unit, err := parse.Unit(strings.NewReader(program))
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	info, err := analysis.AnalyzeOneUnit(unit, nil)
	if err != nil {
		return nil, fmt.Errorf("analysis: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fs := factstore.NewSimpleInMemoryStore()
	if opts.MaxInferences > 0 {
		_, err = engine.EvalProgramWithStats(info, fs, engine.WithCreatedFactLimit(opts.MaxInferences))
	} else {
		_, err = engine.EvalProgramWithStats(info, fs)
	}
	if err != nil {
		return nil, fmt.Errorf("evaluation: %w", err)
	}

	var out []rdf.Fact
	skipped := 0
	err = fs.GetFacts(ast.NewQuery(inferredPred), func(a ast.Atom) error {
		f, ok := atomFact(a)
		if !ok {
			skipped++
			return nil
		}
		out = append(out, f)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query inferred: %w", err)
	}
	if skipped > 0 {
		log.Warn("rule extension produced unusable facts",
			zap.String("extension", r.name),
			zap.Int("skipped", skipped))
	}
	rdf.SortFacts(out)
	return out, nil
}

// program renders the snapshot as triple/3 facts followed by the rules.
func (r *RuleExtension) program(snap *store.Snapshot) string {
	var b strings.Builder
	for _, f := range snap.Match(rdf.Any) {
		fmt.Fprintf(&b, "triple(%s, %s, %s).\n",
			quote(f.Subject.Key()), quote(f.Predicate.Key()), quote(f.Object.Key()))
	}
	b.WriteString(r.rules)
	b.WriteString("\n")
	return b.String()
}

func quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\t", `\t`)
	return `"` + r.Replace(s) + `"`
}

func atomFact(a ast.Atom) (rdf.Fact, bool) {
	if len(a.Args) != 3 {
		return rdf.Fact{}, false
	}
	var terms [3]rdf.Term
	for i, arg := range a.Args {
		c, ok := arg.(ast.Constant)
		if !ok || c.Type != ast.StringType {
			return rdf.Fact{}, false
		}
		t, err := rdf.ParseKey(c.Symbol)
		if err != nil {
			return rdf.Fact{}, false
		}
		terms[i] = t
	}
	f := rdf.NewFact(terms[0], terms[1], terms[2])
	return f, f.Valid()
}
