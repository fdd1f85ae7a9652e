// Package datagetter resolves the data getters attached to a display page.
//
// A page in the metadata graph links to data getter resources through
// display:hasDataGetter. Each data getter declares one or more rdf:type
// values; the first type that maps to a specific implementation name picks
// the implementation, which is then built from the registry:
//
//	getters, err := datagetter.DataGettersForPage(ctx, store, pageURI)
//	if err != nil {
//	    return err // the store could not be read
//	}
//	for _, g := range getters {
//	    data, err := g.GetData(ctx, pageData)
//	    ...
//	}
//
// Links that cannot be resolved are skipped; only store failures abort.
package datagetter

import "context"

// DataGetter produces template data for a page.
type DataGetter interface {
	// GetData returns values to merge into the page's data. pageData holds
	// request level values such as the page URI and must not be modified.
	GetData(ctx context.Context, pageData map[string]any) (map[string]any, error)
}

// DataGetterFunc adapts a function to DataGetter.
type DataGetterFunc func(ctx context.Context, pageData map[string]any) (map[string]any, error)

// GetData calls f.
func (f DataGetterFunc) GetData(ctx context.Context, pageData map[string]any) (map[string]any, error) {
	return f(ctx, pageData)
}
