package rdf

import "strings"

// Namespaces
const (
	NSRDF  = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	NSRDFS = "http://www.w3.org/2000/01/rdf-schema#"
	NSOWL  = "http://www.w3.org/2002/07/owl#"
	NSXSD  = "http://www.w3.org/2001/XMLSchema#"
)

// RDF / RDFS
const (
	RDFType       = NSRDF + "type"
	RDFProperty   = NSRDF + "Property"
	RDFLangString = NSRDF + "langString"

	RDFSClass         = NSRDFS + "Class"
	RDFSSubClassOf    = NSRDFS + "subClassOf"
	RDFSSubPropertyOf = NSRDFS + "subPropertyOf"
	RDFSDomain        = NSRDFS + "domain"
	RDFSRange         = NSRDFS + "range"
	RDFSLabel         = NSRDFS + "label"
	RDFSComment       = NSRDFS + "comment"
)

// OWL
const (
	OWLClass                     = NSOWL + "Class"
	OWLThing                     = NSOWL + "Thing"
	OWLNothing                   = NSOWL + "Nothing"
	OWLNamedIndividual           = NSOWL + "NamedIndividual"
	OWLObjectProperty            = NSOWL + "ObjectProperty"
	OWLDatatypeProperty          = NSOWL + "DatatypeProperty"
	OWLFunctionalProperty        = NSOWL + "FunctionalProperty"
	OWLInverseFunctionalProperty = NSOWL + "InverseFunctionalProperty"
	OWLEquivalentClass           = NSOWL + "equivalentClass"
	OWLDisjointWith              = NSOWL + "disjointWith"
	OWLRestriction               = NSOWL + "Restriction"
	OWLOnProperty                = NSOWL + "onProperty"
	OWLOnClass                   = NSOWL + "onClass"
	OWLSomeValuesFrom            = NSOWL + "someValuesFrom"
	OWLAllValuesFrom             = NSOWL + "allValuesFrom"
	OWLHasValue                  = NSOWL + "hasValue"
	OWLCardinality               = NSOWL + "cardinality"
	OWLMinCardinality            = NSOWL + "minCardinality"
	OWLMaxCardinality            = NSOWL + "maxCardinality"
	OWLQualifiedCardinality      = NSOWL + "qualifiedCardinality"
	OWLMinQualifiedCardinality   = NSOWL + "minQualifiedCardinality"
	OWLMaxQualifiedCardinality   = NSOWL + "maxQualifiedCardinality"
)

// XSD
const (
	XSDString             = NSXSD + "string"
	XSDNonNegativeInteger = NSXSD + "nonNegativeInteger"
	XSDInteger            = NSXSD + "integer"
)

// IsVocabulary reports whether iri belongs to one of the built-in
// RDF/RDFS/OWL/XSD namespaces.
func IsVocabulary(iri string) bool {
	return strings.HasPrefix(iri, NSRDF) ||
		strings.HasPrefix(iri, NSRDFS) ||
		strings.HasPrefix(iri, NSOWL) ||
		strings.HasPrefix(iri, NSXSD)
}
