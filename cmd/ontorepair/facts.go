package main

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/ontorepair/pkg/ontorepair/rdf"
)

// factFile is the YAML layout accepted by `load`:
//
//	prefixes:
//	  ex: http://example.org/
//	facts:
//	  - [ex:Felix, rdf:type, ex:Cat]
//	  - [ex:Felix, ex:name, '"Felix"']
//	  - [ex:Felix, ex:age, '"3"^^xsd:integer']
//	  - [ex:Felix, ex:nick, '"Fe"@en', ex:graph1]
//
// Subjects and objects may be blank nodes written as _:id. An optional fourth
// element names the graph.
type factFile struct {
	Prefixes map[string]string `yaml:"prefixes"`
	Facts    [][]string        `yaml:"facts"`
}

var builtinPrefixes = map[string]string{
	"rdf":  rdf.NSRDF,
	"rdfs": rdf.NSRDFS,
	"owl":  rdf.NSOWL,
	"xsd":  rdf.NSXSD,
}

func loadFacts(path string) ([]rdf.Fact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseFacts(data)
}

func parseFacts(data []byte) ([]rdf.Fact, error) {
	var ff factFile
	if err := yaml.Unmarshal(data, &ff); err != nil {
		return nil, fmt.Errorf("parse facts: %w", err)
	}
	prefixes := make(map[string]string, len(builtinPrefixes)+len(ff.Prefixes))
	for k, v := range builtinPrefixes {
		prefixes[k] = v
	}
	for k, v := range ff.Prefixes {
		prefixes[k] = v
	}

	facts := make([]rdf.Fact, 0, len(ff.Facts))
	for n, row := range ff.Facts {
		if len(row) != 3 && len(row) != 4 {
			return nil, fmt.Errorf("fact %d: want 3 or 4 terms, got %d", n+1, len(row))
		}
		var terms [3]rdf.Term
		for i := range terms {
			t, err := parseTerm(row[i], prefixes)
			if err != nil {
				return nil, fmt.Errorf("fact %d: %w", n+1, err)
			}
			terms[i] = t
		}
		f := rdf.NewFact(terms[0], terms[1], terms[2])
		if len(row) == 4 {
			f = f.InGraph(expand(row[3], prefixes))
		}
		if !f.Valid() {
			return nil, fmt.Errorf("fact %d: %s is not a valid fact", n+1, f)
		}
		facts = append(facts, f)
	}
	return facts, nil
}

func parseTerm(s string, prefixes map[string]string) (rdf.Term, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, `"`) {
		return rdf.ParseNode(expand(s, prefixes)), nil
	}
	// "lex"^^xsd:integer
	if i := strings.LastIndex(s, `"^^`); i >= 0 && !strings.HasPrefix(s[i+3:], "<") {
		s = s[:i+3] + "<" + expand(s[i+3:], prefixes) + ">"
	}
	return rdf.ParseKey(s)
}

func expand(s string, prefixes map[string]string) string {
	s = strings.TrimPrefix(strings.TrimSuffix(s, ">"), "<")
	if strings.HasPrefix(s, "_:") {
		return s
	}
	prefix, local, ok := strings.Cut(s, ":")
	if !ok {
		return s
	}
	if ns, ok := prefixes[prefix]; ok {
		return ns + local
	}
	return s
}

func readFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
