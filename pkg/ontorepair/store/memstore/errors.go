package memstore

import (
	"fmt"

	"github.com/cognicore/ontorepair/pkg/ontorepair/internalerr"
	"github.com/cognicore/ontorepair/pkg/ontorepair/rdf"
)

func invalidFact(f rdf.Fact) error {
	return fmt.Errorf("memstore: %w: %s", internalerr.ErrInvalidInput, f)
}
