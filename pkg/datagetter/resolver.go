package datagetter

import (
	"context"
	"errors"
	"fmt"

	"github.com/openfroyo/pagedata/pkg/graph"
	"github.com/openfroyo/pagedata/pkg/telemetry"
	"github.com/openfroyo/pagedata/pkg/vocab"
)

// errStop ends a ReadSelect iteration early.
var errStop = errors.New("stop iteration")

// resolver holds what type resolution and instantiation depend on.
type resolver struct {
	registry *Registry
	namer    vocab.Namer
	logger   *telemetry.Logger
}

// ImplementationFor returns the implementation name of the data getter at
// dataGetterURI using the default naming convention. The first declared type
// whose name is non-empty and not the name of owl:Thing wins.
func ImplementationFor(ctx context.Context, store graph.Store, dataGetterURI string) (string, error) {
	r := resolver{namer: vocab.LocalNamer{}}
	return r.implementationFor(ctx, store, dataGetterURI)
}

// Instantiate builds the data getter at dataGetterURI from the
// implementation registered in the default registry under implName.
//
// A registered implementation that is not a DataGetter yields (nil, nil).
func Instantiate(ctx context.Context, store graph.Store, dataGetterURI, implName string) (DataGetter, error) {
	r := resolver{registry: DefaultRegistry(), logger: telemetry.FromContext(ctx)}
	return r.instantiate(ctx, store, dataGetterURI, implName)
}

func (r resolver) implementationFor(ctx context.Context, store graph.Store, uri string) (string, error) {
	if uri == "" {
		return "", NewInvalidInputError("data getter URI is required")
	}

	var name string

	err := graph.ReadSelect(ctx, store, typeQuery,
		graph.Bindings{"dataGetter": graph.IRI(uri)},
		func(sol graph.Solution) error {
			typeURI := sol.Resource("type")
			if typeURI == "" || typeURI == vocab.OWLThing {
				return nil
			}
			candidate := r.namer.ImplementationName(typeURI)
			if candidate == "" {
				return nil
			}
			name = candidate
			return errStop
		})
	if err != nil && !errors.Is(err, errStop) {
		return "", NewStoreAccessError(uri, err)
	}

	if name == "" {
		return "", NewNoUsableTypeError(uri)
	}
	return name, nil
}

func (r resolver) instantiate(ctx context.Context, store graph.Store, uri, name string) (DataGetter, error) {
	f, ok := r.registry.Lookup(name)
	if !ok {
		return nil, NewImplementationNotFoundError(uri, name)
	}

	logger := r.logger.WithDataGetterURI(uri).WithImplementation(name)

	if !f.IsDataGetter {
		logger.Debug("implementation is not a DataGetter")
		return nil, nil
	}

	if !f.HasGraphConstructor() && !f.HasEmptyConstructor() {
		return nil, NewConstructionError(uri, name, "no usable constructor", nil)
	}
	v, err := construct(ctx, f, store, uri)
	if err != nil {
		return nil, NewConstructionError(uri, name, "constructor failed", err)
	}
	if v == nil {
		return nil, NewConstructionError(uri, name, "constructor returned no value", nil)
	}

	dg, ok := v.(DataGetter)
	if !ok {
		logger.Debug("constructed value is not a DataGetter")
		return nil, nil
	}
	return dg, nil
}

// construct runs the preferred constructor of f. A panic comes back as an
// error.
func construct(ctx context.Context, f Factory, store graph.Store, uri string) (v any, err error) {
	defer func() {
		if p := recover(); p != nil {
			v, err = nil, fmt.Errorf("constructor panicked: %v", p)
		}
	}()

	if f.fromGraph != nil {
		return f.fromGraph(ctx, store, uri)
	}
	return f.empty(), nil
}
