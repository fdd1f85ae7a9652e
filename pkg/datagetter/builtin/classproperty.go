package builtin

import (
	"context"
	"fmt"

	"github.com/openfroyo/pagedata/pkg/datagetter"
	"github.com/openfroyo/pagedata/pkg/graph"
	"github.com/openfroyo/pagedata/pkg/vocab"
)

// DefaultClassListVar is the template variable used when no saveToVar is
// configured.
const DefaultClassListVar = "individuals"

// ClassPropertyListDataGetter lists the individuals of a class, optionally
// with the values of one property.
type ClassPropertyListDataGetter struct {
	URI          string
	ForClass     string
	WithProperty string
	SaveToVar    string

	store graph.Store
}

// Individual is one entry of the list.
type Individual struct {
	URI    string   `json:"uri"`
	Label  string   `json:"label,omitempty"`
	Values []string `json:"values,omitempty"`
}

// NewClassPropertyListDataGetter reads display:forClass,
// display:withProperty and display:saveToVar of uri.
func NewClassPropertyListDataGetter(ctx context.Context, store graph.Store, uri string) (*ClassPropertyListDataGetter, error) {
	props, err := readValues(ctx, store, uri, vocab.ForClass, vocab.WithProperty, vocab.SaveToVar)
	if err != nil {
		return nil, err
	}

	g := &ClassPropertyListDataGetter{
		URI:          uri,
		ForClass:     props[vocab.ForClass],
		WithProperty: props[vocab.WithProperty],
		SaveToVar:    props[vocab.SaveToVar],
		store:        store,
	}
	if g.ForClass == "" {
		return nil, fmt.Errorf("%s has no forClass", uri)
	}
	if g.SaveToVar == "" {
		g.SaveToVar = DefaultClassListVar
	}
	return g, nil
}

// NewEmptyClassPropertyListDataGetter returns an unconfigured getter. It
// produces an empty list until ForClass and a store are set.
func NewEmptyClassPropertyListDataGetter() *ClassPropertyListDataGetter {
	return &ClassPropertyListDataGetter{SaveToVar: DefaultClassListVar}
}

// WithStore sets the store GetData reads from.
func (g *ClassPropertyListDataGetter) WithStore(store graph.Store) *ClassPropertyListDataGetter {
	g.store = store
	return g
}

// GetData implements datagetter.DataGetter.
func (g *ClassPropertyListDataGetter) GetData(ctx context.Context, _ map[string]any) (map[string]any, error) {
	list := []Individual{}
	if g.ForClass == "" || g.store == nil {
		return map[string]any{g.SaveToVar: list}, nil
	}

	q := graph.Query{
		Select: []string{"ind"},
		Where: []graph.Pattern{{
			Subject:   graph.Var("ind"),
			Predicate: graph.Fixed(graph.IRI(vocab.RDFType)),
			Object:    graph.Fixed(graph.IRI(g.ForClass)),
		}},
	}
	err := graph.ReadSelect(ctx, g.store, q, nil, func(sol graph.Solution) error {
		if uri := sol.Resource("ind"); uri != "" {
			list = append(list, Individual{URI: uri})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list individuals of %s: %w", g.ForClass, err)
	}

	for i := range list {
		labels, err := readAll(ctx, g.store, list[i].URI, vocab.RDFSLabel)
		if err != nil {
			return nil, err
		}
		if len(labels) > 0 {
			list[i].Label = labels[0]
		}
		if g.WithProperty == "" {
			continue
		}
		values, err := readAll(ctx, g.store, list[i].URI, g.WithProperty)
		if err != nil {
			return nil, err
		}
		list[i].Values = values
	}

	return map[string]any{g.SaveToVar: list}, nil
}

var _ datagetter.DataGetter = (*ClassPropertyListDataGetter)(nil)

// ClassGroupPageData is the page data type of old display models. It reads
// class groups through a different interface and is not a DataGetter, so
// pages that still reference it get no data from it.
type ClassGroupPageData struct {
	ForClassGroup string
}

// NewClassGroupPageData returns an empty ClassGroupPageData.
func NewClassGroupPageData() *ClassGroupPageData {
	return &ClassGroupPageData{}
}

// PageData returns the class group this page is for.
func (p *ClassGroupPageData) PageData() map[string]any {
	return map[string]any{"classGroup": p.ForClassGroup}
}
