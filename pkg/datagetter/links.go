package datagetter

import (
	"context"

	"github.com/openfroyo/pagedata/pkg/graph"
	"github.com/openfroyo/pagedata/pkg/vocab"
)

// linkQuery finds the data getters of ?page.
var linkQuery = graph.Query{
	Select: []string{"dataGetter"},
	Where: []graph.Pattern{{
		Subject:   graph.Var("page"),
		Predicate: graph.Fixed(graph.IRI(vocab.HasDataGetter)),
		Object:    graph.Var("dataGetter"),
	}},
}

// typeQuery finds the declared types of ?dataGetter.
var typeQuery = graph.Query{
	Select: []string{"type"},
	Where: []graph.Pattern{{
		Subject:   graph.Var("dataGetter"),
		Predicate: graph.Fixed(graph.IRI(vocab.RDFType)),
		Object:    graph.Var("type"),
	}},
}

// LinksForPage returns the URIs of the data getters attached to pageURI, in
// store order. Objects of display:hasDataGetter that are not IRIs are
// ignored. A page without links yields an empty slice.
func LinksForPage(ctx context.Context, store graph.Store, pageURI string) ([]string, error) {
	if pageURI == "" {
		return nil, NewInvalidInputError("page URI is required")
	}

	links := []string{}
	err := graph.ReadSelect(ctx, store, linkQuery,
		graph.Bindings{"page": graph.IRI(pageURI)},
		func(sol graph.Solution) error {
			if uri := sol.Resource("dataGetter"); uri != "" {
				links = append(links, uri)
			}
			return nil
		})
	if err != nil {
		return nil, NewStoreAccessError(pageURI, err)
	}
	return links, nil
}
