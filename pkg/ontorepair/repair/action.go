package repair

import (
	"context"
	"fmt"

	"github.com/cognicore/ontorepair/pkg/ontorepair/internalerr"
	"github.com/cognicore/ontorepair/pkg/ontorepair/rdf"
	"github.com/cognicore/ontorepair/pkg/ontorepair/store"
)

// ActionKind tags the variant held by an Action.
type ActionKind int

const (
	AddFactAction ActionKind = iota + 1
	RemoveFactAction
	ModifyFactAction
)

func (k ActionKind) String() string {
	switch k {
	case AddFactAction:
		return "AddFact"
	case RemoveFactAction:
		return "RemoveFact"
	case ModifyFactAction:
		return "ModifyFact"
	default:
		return "Unknown"
	}
}

// Action is one store edit.
type Action struct {
	Kind    ActionKind
	Fact    rdf.Fact    // AddFact
	Pattern rdf.Pattern // RemoveFact, ModifyFact
	Object  rdf.Term    // ModifyFact replacement object
}

// AddFact inserts f. Inserting an existing fact is a no-op.
func AddFact(f rdf.Fact) Action { return Action{Kind: AddFactAction, Fact: f} }

// RemoveFact deletes every fact matching p. No match is not an error.
func RemoveFact(p rdf.Pattern) Action { return Action{Kind: RemoveFactAction, Pattern: p} }

// ModifyFact replaces the object of every fact matching p.
func ModifyFact(p rdf.Pattern, object rdf.Term) Action {
	return Action{Kind: ModifyFactAction, Pattern: p, Object: object}
}

// String serializes the action; equal actions serialize equally.
func (a Action) String() string {
	switch a.Kind {
	case AddFactAction:
		return "AddFact(" + a.Fact.String() + ")"
	case RemoveFactAction:
		return "RemoveFact(" + a.Pattern.String() + ")"
	case ModifyFactAction:
		return "ModifyFact(" + a.Pattern.String() + " -> " + a.Object.String() + ")"
	default:
		return "Unknown()"
	}
}

// Validate checks the action is well formed.
func (a Action) Validate() error {
	switch a.Kind {
	case AddFactAction:
		if !a.Fact.Valid() {
			return fmt.Errorf("%s: %w", a, internalerr.ErrInvalidInput)
		}
	case RemoveFactAction:
		if a.Pattern == rdf.Any {
			return fmt.Errorf("%s: refusing to remove every fact: %w", a, internalerr.ErrInvalidInput)
		}
	case ModifyFactAction:
		if a.Pattern == rdf.Any || a.Object.IsZero() {
			return fmt.Errorf("%s: %w", a, internalerr.ErrInvalidInput)
		}
	default:
		return fmt.Errorf("action kind %d: %w", a.Kind, internalerr.ErrInvalidInput)
	}
	return nil
}

// Change records what an action actually did to the store.
type Change struct {
	Added   []rdf.Fact
	Removed []rdf.Fact
}

func (c *Change) merge(o Change) {
	c.Added = append(c.Added, o.Added...)
	c.Removed = append(c.Removed, o.Removed...)
}

// apply runs the action against tx, composing with whatever earlier
// actions already changed.
func (a Action) apply(ctx context.Context, tx store.Tx) (Change, error) {
	var ch Change
	if err := a.Validate(); err != nil {
		return ch, err
	}
	switch a.Kind {
	case AddFactAction:
		added, err := tx.Add(ctx, a.Fact)
		if err != nil {
			return ch, err
		}
		if added {
			ch.Added = append(ch.Added, a.Fact)
		}
		return ch, nil

	case RemoveFactAction:
		matches, err := tx.Query(ctx, a.Pattern)
		if err != nil {
			return ch, err
		}
		for _, f := range matches {
			removed, err := tx.Remove(ctx, f)
			if err != nil {
				return ch, err
			}
			if removed {
				ch.Removed = append(ch.Removed, f)
			}
		}
		return ch, nil

	default:
		matches, err := tx.Query(ctx, a.Pattern)
		if err != nil {
			return ch, err
		}
		if len(matches) == 0 {
			return ch, fmt.Errorf("%s: no matching fact: %w", a, internalerr.ErrNotFound)
		}
		for _, f := range matches {
			if _, err := tx.Remove(ctx, f); err != nil {
				return ch, err
			}
			ch.Removed = append(ch.Removed, f)
			next := rdf.NewFact(f.Subject, f.Predicate, a.Object).InGraph(f.Graph)
			added, err := tx.Add(ctx, next)
			if err != nil {
				return ch, err
			}
			if added {
				ch.Added = append(ch.Added, next)
			}
		}
		return ch, nil
	}
}
