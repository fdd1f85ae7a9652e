package builtin

import (
	"context"
	"fmt"

	"github.com/openfroyo/pagedata/pkg/graph"
)

// readValues returns the first value of each requested predicate of
// subject, keyed by predicate. IRIs and literals are both returned as their
// lexical value.
func readValues(ctx context.Context, store graph.Store, subject string, predicates ...string) (map[string]string, error) {
	wanted := make(map[string]bool, len(predicates))
	for _, p := range predicates {
		wanted[p] = true
	}

	q := graph.Query{
		Select: []string{"p", "o"},
		Where: []graph.Pattern{{
			Subject:   graph.Fixed(graph.IRI(subject)),
			Predicate: graph.Var("p"),
			Object:    graph.Var("o"),
		}},
	}

	values := make(map[string]string, len(predicates))
	err := graph.ReadSelect(ctx, store, q, nil, func(sol graph.Solution) error {
		p := sol.Resource("p")
		if !wanted[p] {
			return nil
		}
		if _, seen := values[p]; !seen {
			values[p] = sol["o"].Value
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", subject, err)
	}
	return values, nil
}

// readAll returns every value of predicate on subject in store order.
func readAll(ctx context.Context, store graph.Store, subject, predicate string) ([]string, error) {
	q := graph.Query{
		Select: []string{"o"},
		Where: []graph.Pattern{{
			Subject:   graph.Fixed(graph.IRI(subject)),
			Predicate: graph.Fixed(graph.IRI(predicate)),
			Object:    graph.Var("o"),
		}},
	}

	var values []string
	err := graph.ReadSelect(ctx, store, q, nil, func(sol graph.Solution) error {
		values = append(values, sol["o"].Value)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read %s of %s: %w", predicate, subject, err)
	}
	return values, nil
}
