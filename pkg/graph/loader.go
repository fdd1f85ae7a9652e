package graph

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/openfroyo/pagedata/pkg/vocab"
)

// ModelFile is the YAML layout of a display model file:
//
//	prefixes:
//	  ex: http://example.org/
//	statements:
//	  - subject: ex:home
//	    properties:
//	      rdf:type: [display:Page]
//	      display:hasDataGetter: [ex:menu, ex:intro]
//	  - subject: ex:intro
//	    properties:
//	      display:htmlValue: [{literal: "<p>Hello</p>"}]
//
// Scalar objects are IRIs or prefixed names; literals and blank nodes use the
// mapping form. Property order in the file is preserved.
type ModelFile struct {
	Prefixes   map[string]string `yaml:"prefixes"`
	Statements []ModelStatement  `yaml:"statements" validate:"dive"`
}

// ModelStatement describes one subject and its properties.
type ModelStatement struct {
	Subject    string    `yaml:"subject" validate:"required"`
	Properties yaml.Node `yaml:"properties"`
}

// modelObject is one object value in a property list.
type modelObject struct {
	IRI     string  `yaml:"iri"`
	Literal *string `yaml:"literal"`
	Blank   string  `yaml:"blank"`
}

func (o *modelObject) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		o.IRI = n.Value
		return nil
	case yaml.MappingNode:
		type plain modelObject
		var p plain
		if err := n.Decode(&p); err != nil {
			return err
		}
		*o = modelObject(p)
		return nil
	default:
		return fmt.Errorf("line %d: object must be a scalar or a mapping", n.Line)
	}
}

// LoadModelFile reads a YAML display model from path.
func LoadModelFile(path string) ([]Triple, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model file: %w", err)
	}
	triples, err := LoadModel(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to load model %s: %w", path, err)
	}
	return triples, nil
}

// LoadModel parses a YAML display model into triples in file order.
func LoadModel(r io.Reader) ([]Triple, error) {
	var file ModelFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to parse model YAML: %w", err)
	}

	if err := validator.New().Struct(&file); err != nil {
		return nil, fmt.Errorf("invalid model: %w", err)
	}

	prefixes := vocab.DefaultPrefixes()
	for k, v := range file.Prefixes {
		prefixes[k] = v
	}
	ex := expander{prefixes: prefixes}

	var triples []Triple
	for _, st := range file.Statements {
		subject, err := ex.subject(st.Subject)
		if err != nil {
			return nil, err
		}

		props := &st.Properties
		if props.Kind == 0 {
			continue
		}
		if props.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("line %d: properties of %s must be a mapping", props.Line, st.Subject)
		}

		for i := 0; i+1 < len(props.Content); i += 2 {
			keyNode, valNode := props.Content[i], props.Content[i+1]

			predicate, err := ex.iri(keyNode.Value)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", keyNode.Line, err)
			}

			var objects []modelObject
			if valNode.Kind == yaml.SequenceNode {
				if err := valNode.Decode(&objects); err != nil {
					return nil, err
				}
			} else {
				var one modelObject
				if err := valNode.Decode(&one); err != nil {
					return nil, err
				}
				objects = []modelObject{one}
			}

			for _, o := range objects {
				object, err := ex.object(o)
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", valNode.Line, err)
				}
				triples = append(triples, Triple{Subject: subject, Predicate: IRI(predicate), Object: object})
			}
		}
	}

	return triples, nil
}

// expander resolves prefixed names against a prefix table.
type expander struct {
	prefixes map[string]string
}

// schemes whose IRIs are taken verbatim.
var verbatimSchemes = map[string]bool{
	"java": true, "urn": true, "mailto": true, "http": true, "https": true, "file": true,
}

func (e expander) iri(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("empty IRI")
	}
	if strings.HasPrefix(name, "<") && strings.HasSuffix(name, ">") {
		return name[1 : len(name)-1], nil
	}
	prefix, local, ok := strings.Cut(name, ":")
	if !ok {
		return "", fmt.Errorf("%q is neither an IRI nor a prefixed name", name)
	}
	if ns, known := e.prefixes[prefix]; known {
		return ns + local, nil
	}
	if verbatimSchemes[prefix] {
		return name, nil
	}
	return "", fmt.Errorf("unknown prefix %q in %q", prefix, name)
}

func (e expander) subject(name string) (Term, error) {
	if id, ok := strings.CutPrefix(name, "_:"); ok {
		return Blank(id), nil
	}
	iri, err := e.iri(name)
	if err != nil {
		return Term{}, err
	}
	return IRI(iri), nil
}

func (e expander) object(o modelObject) (Term, error) {
	switch {
	case o.Literal != nil:
		return Literal(*o.Literal), nil
	case o.Blank != "":
		return Blank(o.Blank), nil
	case strings.HasPrefix(o.IRI, "_:"):
		return Blank(o.IRI[2:]), nil
	default:
		iri, err := e.iri(o.IRI)
		if err != nil {
			return Term{}, err
		}
		return IRI(iri), nil
	}
}
