package graph_test

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/openfroyo/pagedata/pkg/graph"
	"github.com/openfroyo/pagedata/pkg/vocab"
)

// ExampleReadSelect lists the data getters attached to a page.
func ExampleReadSelect() {
	triples, err := graph.LoadModel(strings.NewReader(`
prefixes:
  ex: http://example.org/
statements:
  - subject: ex:home
    properties:
      display:hasDataGetter: [ex:menu, ex:intro]
`))
	if err != nil {
		log.Fatal(err)
	}
	store := graph.NewMemoryStore(triples...)

	q := graph.Query{
		Select: []string{"dg"},
		Where: []graph.Pattern{{
			Subject:   graph.Var("page"),
			Predicate: graph.Fixed(graph.IRI(vocab.HasDataGetter)),
			Object:    graph.Var("dg"),
		}},
	}
	fmt.Println(q)

	err = graph.ReadSelect(context.Background(), store, q,
		graph.Bindings{"page": graph.IRI("http://example.org/home")},
		func(sol graph.Solution) error {
			fmt.Println(sol.Resource("dg"))
			return nil
		})
	if err != nil {
		log.Fatal(err)
	}

	// Output:
	// SELECT ?dg WHERE { ?page <http://vitro.mannlib.cornell.edu/ontologies/display/1.1#hasDataGetter> ?dg . }
	// http://example.org/menu
	// http://example.org/intro
}

// ExampleSQLiteStore shows the SQLite backend lifecycle.
func ExampleSQLiteStore() {
	store, err := graph.NewSQLiteStore(graph.SQLiteConfig{Path: ":memory:"})
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.Init(ctx); err != nil {
		log.Fatal(err)
	}
	if err := store.Migrate(ctx); err != nil {
		log.Fatal(err)
	}

	err = store.Add(ctx,
		graph.NewTriple("http://example.org/intro", vocab.RDFType, graph.IRI("java:edu.example.FixedHTMLDataGetter")),
	)
	if err != nil {
		log.Fatal(err)
	}

	n, _ := store.Count(ctx)
	fmt.Println("triples:", n)

	// Output:
	// triples: 1
}
