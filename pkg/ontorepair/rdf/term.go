// Package rdf defines the terms and facts the reasoner operates on.
package rdf

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind tags the variant held by a Term.
type Kind uint8

const (
	KindIRI Kind = iota + 1
	KindBlank
	KindLiteral
)

// Term is an IRI, a blank node or a literal. The zero Term is used as a
// wildcard in patterns. Terms are comparable, so == is structural equality.
type Term struct {
	Kind     Kind
	Value    string // IRI, blank node local id, or literal lexical form
	Datatype string // literals only
	Lang     string // literals only
}

// IRI builds a named node.
func IRI(iri string) Term {
	return Term{Kind: KindIRI, Value: iri}
}

// Blank builds a blank node with the given local id.
func Blank(id string) Term {
	return Term{Kind: KindBlank, Value: id}
}

// Literal builds a typed literal. An empty datatype means xsd:string.
func Literal(lexical, datatype string) Term {
	if datatype == "" {
		datatype = XSDString
	}
	return Term{Kind: KindLiteral, Value: lexical, Datatype: datatype}
}

// LangLiteral builds a language-tagged string.
func LangLiteral(lexical, lang string) Term {
	return Term{Kind: KindLiteral, Value: lexical, Datatype: RDFLangString, Lang: lang}
}

// IntLiteral builds an xsd:nonNegativeInteger literal, the datatype OWL uses
// for cardinalities.
func IntLiteral(n int) Term {
	return Literal(strconv.Itoa(n), XSDNonNegativeInteger)
}

// IsZero reports whether the term is the wildcard.
func (t Term) IsZero() bool { return t.Kind == 0 }

func (t Term) IsIRI() bool     { return t.Kind == KindIRI }
func (t Term) IsBlank() bool   { return t.Kind == KindBlank }
func (t Term) IsLiteral() bool { return t.Kind == KindLiteral }

// IsResource reports whether the term can appear in subject position.
func (t Term) IsResource() bool { return t.Kind == KindIRI || t.Kind == KindBlank }

// Int parses an integer literal.
func (t Term) Int() (int, bool) {
	if t.Kind != KindLiteral {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(t.Value))
	if err != nil {
		return 0, false
	}
	return n, true
}

// Key is a compact string form used for maps and deduplication.
func (t Term) Key() string {
	switch t.Kind {
	case KindIRI:
		return t.Value
	case KindBlank:
		return "_:" + t.Value
	case KindLiteral:
		return t.String()
	default:
		return "?"
	}
}

// String renders the term in N-Triples syntax.
func (t Term) String() string {
	switch t.Kind {
	case KindIRI:
		return "<" + t.Value + ">"
	case KindBlank:
		return "_:" + t.Value
	case KindLiteral:
		s := strconv.Quote(t.Value)
		if t.Lang != "" {
			return s + "@" + t.Lang
		}
		if t.Datatype != "" && t.Datatype != XSDString {
			return s + "^^<" + t.Datatype + ">"
		}
		return s
	default:
		return "*"
	}
}

// ParseNode turns a key produced by Key back into an IRI or blank node.
func ParseNode(key string) Term {
	if id, ok := strings.CutPrefix(key, "_:"); ok {
		return Blank(id)
	}
	return IRI(key)
}

// ParseKey inverts Key for every term kind, including literals.
func ParseKey(key string) (Term, error) {
	if !strings.HasPrefix(key, `"`) {
		return ParseNode(key), nil
	}
	quoted, err := strconv.QuotedPrefix(key)
	if err != nil {
		return Term{}, fmt.Errorf("literal %q: %w", key, err)
	}
	lexical, _ := strconv.Unquote(quoted)
	rest := key[len(quoted):]
	switch {
	case rest == "":
		return Literal(lexical, ""), nil
	case strings.HasPrefix(rest, "@"):
		return LangLiteral(lexical, rest[1:]), nil
	case strings.HasPrefix(rest, "^^<") && strings.HasSuffix(rest, ">"):
		return Literal(lexical, rest[3:len(rest)-1]), nil
	}
	return Term{}, fmt.Errorf("literal %q: unexpected suffix %q", key, rest)
}
