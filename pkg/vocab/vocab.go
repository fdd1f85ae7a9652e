// Package vocab holds the namespaces and terms of the display vocabulary and
// the naming convention that maps declared types to implementation names.
package vocab

// Namespaces
const (
	RDF     = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	RDFS    = "http://www.w3.org/2000/01/rdf-schema#"
	OWL     = "http://www.w3.org/2002/07/owl#"
	XSD     = "http://www.w3.org/2001/XMLSchema#"
	Display = "http://vitro.mannlib.cornell.edu/ontologies/display/1.1#"
)

// Core terms
const (
	RDFType   = RDF + "type"
	RDFSLabel = RDFS + "label"
	OWLThing  = OWL + "Thing"
)

// Display vocabulary
const (
	HasDataGetter = Display + "hasDataGetter"
	SaveToVar     = Display + "saveToVar"
	HTMLValue     = Display + "htmlValue"
	ForClass      = Display + "forClass"
	WithProperty  = Display + "withProperty"
	ForClassGroup = Display + "forClassGroup"
	Page          = Display + "Page"
)

// DefaultPrefixes maps the well-known prefixes accepted in model files.
func DefaultPrefixes() map[string]string {
	return map[string]string{
		"rdf":     RDF,
		"rdfs":    RDFS,
		"owl":     OWL,
		"xsd":     XSD,
		"display": Display,
	}
}
