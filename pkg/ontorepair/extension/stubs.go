package extension

import (
	"context"
	"strings"

	"github.com/cognicore/ontorepair/pkg/ontorepair/rdf"
	"github.com/cognicore/ontorepair/pkg/ontorepair/store"
)

// Names of the built-in stub reasoners.
const (
	Temporal      = "temporal"
	Spatial       = "spatial"
	Fuzzy         = "fuzzy"
	Probabilistic = "probabilistic"
)

// stub recognizes its kind of data but derives nothing.
type stub struct {
	name   string
	detect func(f rdf.Fact) bool
}

// Stubs returns the built-in no-op reasoners.
func Stubs() []Extension {
	return []Extension{
		stub{name: Temporal, detect: datatypeIn(rdf.NSXSD+"date", rdf.NSXSD+"dateTime", rdf.NSXSD+"duration", rdf.NSXSD+"time")},
		stub{name: Spatial, detect: predicateContains("geo", "wkt", "latitude", "longitude")},
		stub{name: Fuzzy, detect: predicateContains("membership", "degree")},
		stub{name: Probabilistic, detect: predicateContains("probability", "likelihood")},
	}
}

func (s stub) Name() string { return s.name }

func (s stub) Detect(ctx context.Context, snap *store.Snapshot) bool {
	for _, f := range snap.Match(rdf.Any) {
		if ctx.Err() != nil {
			return false
		}
		if s.detect(f) {
			return true
		}
	}
	return false
}

func (s stub) Reason(context.Context, *store.Snapshot, Options) ([]rdf.Fact, error) {
	return nil, nil
}

func datatypeIn(datatypes ...string) func(rdf.Fact) bool {
	return func(f rdf.Fact) bool {
		if !f.Object.IsLiteral() {
			return false
		}
		for _, dt := range datatypes {
			if f.Object.Datatype == dt {
				return true
			}
		}
		return false
	}
}

func predicateContains(words ...string) func(rdf.Fact) bool {
	return func(f rdf.Fact) bool {
		p := strings.ToLower(f.Predicate.Value)
		for _, w := range words {
			if strings.Contains(p, w) {
				return true
			}
		}
		return false
	}
}
