package datagetter

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/openfroyo/pagedata/pkg/graph"
	"github.com/openfroyo/pagedata/pkg/vocab"
)

const (
	ns     = "http://example.org/ns#"
	page1  = "http://example.org/page/1"
	dg1    = "http://example.org/dg/1"
	dg2    = "http://example.org/dg/2"
	dg3    = "http://example.org/dg/3"
	noLink = "http://example.org/page/empty"
)

func link(page, dg string) graph.Triple {
	return graph.NewTriple(page, vocab.HasDataGetter, graph.IRI(dg))
}

func typed(dg, typeURI string) graph.Triple {
	return graph.NewTriple(dg, vocab.RDFType, graph.IRI(typeURI))
}

// recorder counts which constructor ran.
type recorder struct {
	fromGraph atomic.Int32
	empty     atomic.Int32
}

// listGetter is a DataGetter with both constructors.
type listGetter struct {
	uri     string
	viaPath string
}

func (g *listGetter) GetData(context.Context, map[string]any) (map[string]any, error) {
	return map[string]any{"list": g.uri}, nil
}

// plainValue does not implement DataGetter.
type plainValue struct{}

// failingGetter always fails GetData.
type failingGetter struct{}

func (failingGetter) GetData(context.Context, map[string]any) (map[string]any, error) {
	return nil, errors.New("getter exploded")
}

// newTestRegistry registers:
//   - ClassPropertyListDataGetter: both constructors, recording which ran
//   - EmptyOnly: zero-arg constructor only
//   - Legacy: not a DataGetter
//   - NoConstructor: no constructors
//   - Broken: graph constructor fails
//   - Failing: a getter whose GetData fails
//   - NilFromGraph, NilEmpty: constructors returning a nil *listGetter
//   - Panicking: graph constructor panics
func newTestRegistry(rec *recorder) *Registry {
	r := NewRegistry()
	r.Register("ClassPropertyListDataGetter", NewFactory(Constructors[*listGetter]{
		FromGraph: func(_ context.Context, _ graph.Store, uri string) (*listGetter, error) {
			rec.fromGraph.Add(1)
			return &listGetter{uri: uri, viaPath: "graph"}, nil
		},
		Empty: func() *listGetter {
			rec.empty.Add(1)
			return &listGetter{viaPath: "empty"}
		},
	}))
	r.Register("EmptyOnly", NewFactory(Constructors[*listGetter]{
		Empty: func() *listGetter {
			rec.empty.Add(1)
			return &listGetter{viaPath: "empty"}
		},
	}))
	r.Register("Legacy", NewFactory(Constructors[*plainValue]{
		Empty: func() *plainValue { return &plainValue{} },
	}))
	r.Register("NoConstructor", NewFactory(Constructors[*listGetter]{}))
	r.Register("Broken", NewFactory(Constructors[*listGetter]{
		FromGraph: func(context.Context, graph.Store, string) (*listGetter, error) {
			return nil, errors.New("missing configuration")
		},
	}))
	r.Register("Failing", NewFactory(Constructors[failingGetter]{
		Empty: func() failingGetter { return failingGetter{} },
	}))
	r.Register("NilFromGraph", NewFactory(Constructors[*listGetter]{
		FromGraph: func(context.Context, graph.Store, string) (*listGetter, error) {
			return nil, nil
		},
	}))
	r.Register("NilEmpty", NewFactory(Constructors[*listGetter]{
		Empty: func() *listGetter { return nil },
	}))
	r.Register("Panicking", NewFactory(Constructors[*listGetter]{
		FromGraph: func(context.Context, graph.Store, string) (*listGetter, error) {
			panic("bad config")
		},
	}))
	return r
}

// faultyStore fails Select for queries on one predicate.
type faultyStore struct {
	*graph.MemoryStore
	failPredicate string
	err           error

	entered  atomic.Int32
	released atomic.Int32
}

func (s *faultyStore) EnterReadSection(ctx context.Context) (func(), error) {
	release, err := s.MemoryStore.EnterReadSection(ctx)
	if err != nil {
		return nil, err
	}
	s.entered.Add(1)
	return func() {
		s.released.Add(1)
		release()
	}, nil
}

func (s *faultyStore) Select(ctx context.Context, q graph.Query, b graph.Bindings) (graph.ResultSet, error) {
	for _, p := range q.Where {
		if !p.Predicate.IsVar() && p.Predicate.Term.Value == s.failPredicate {
			return nil, s.err
		}
	}
	return s.MemoryStore.Select(ctx, q, b)
}
