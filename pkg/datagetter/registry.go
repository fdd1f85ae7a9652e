package datagetter

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/openfroyo/pagedata/pkg/graph"
)

// Constructors are the ways an implementation of type T can be built.
// At least one must be set.
type Constructors[T any] struct {
	// FromGraph builds the value from its own description in the store.
	// It is preferred over Empty when both are set.
	FromGraph func(ctx context.Context, store graph.Store, uri string) (T, error)

	// Empty builds an unconfigured value.
	Empty func() T
}

// Factory builds values of one registered implementation.
type Factory struct {
	// IsDataGetter reports whether the implementation type satisfies
	// DataGetter. It is computed at registration; implementations
	// registered under an interface type are assumed to and are checked
	// again after construction.
	IsDataGetter bool

	fromGraph func(ctx context.Context, store graph.Store, uri string) (any, error)
	empty     func() any
}

// NewFactory builds a Factory from typed constructors.
func NewFactory[T any](c Constructors[T]) Factory {
	var zero T
	capable := true
	if v := any(zero); v != nil {
		_, capable = v.(DataGetter)
	}

	// A nil *T boxed in any is not nil; report it as no value.
	f := Factory{IsDataGetter: capable}
	if c.FromGraph != nil {
		f.fromGraph = func(ctx context.Context, store graph.Store, uri string) (any, error) {
			v, err := c.FromGraph(ctx, store, uri)
			if err != nil || isNil(v) {
				return nil, err
			}
			return v, nil
		}
	}
	if c.Empty != nil {
		f.empty = func() any {
			v := c.Empty()
			if isNil(v) {
				return nil
			}
			return v
		}
	}
	return f
}

// isNil reports whether v is nil or a nil pointer, map, slice, func, chan or
// interface.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// HasGraphConstructor reports whether the factory can build from the store.
func (f Factory) HasGraphConstructor() bool { return f.fromGraph != nil }

// HasEmptyConstructor reports whether the factory can build an empty value.
func (f Factory) HasEmptyConstructor() bool { return f.empty != nil }

// Registry holds factories indexed by implementation name.
type Registry struct {
	factories map[string]Factory
	mu        sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register adds a factory under name.
// Panics if the name is empty or already registered.
func (r *Registry) Register(name string, f Factory) {
	if name == "" {
		panic("datagetter: empty implementation name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; exists {
		panic(fmt.Sprintf("datagetter: implementation already registered: %s", name))
	}
	r.factories[name] = f
}

// Lookup returns the factory registered under name.
func (r *Registry) Lookup(name string) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.factories[name]
	return f, ok
}

// Names returns the registered implementation names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var defaultRegistry = NewRegistry()

// DefaultRegistry returns the registry implementations add themselves to
// from init functions.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// Register adds a factory to the default registry.
func Register(name string, f Factory) {
	defaultRegistry.Register(name, f)
}
