package builtin

import (
	"context"
	"fmt"

	"github.com/openfroyo/pagedata/pkg/datagetter"
	"github.com/openfroyo/pagedata/pkg/graph"
	"github.com/openfroyo/pagedata/pkg/vocab"
)

// FixedHTMLDataGetter exposes a fixed HTML fragment under a template
// variable.
type FixedHTMLDataGetter struct {
	URI       string
	SaveToVar string
	HTML      string
}

// NewFixedHTMLDataGetter reads display:saveToVar and display:htmlValue of uri.
func NewFixedHTMLDataGetter(ctx context.Context, store graph.Store, uri string) (*FixedHTMLDataGetter, error) {
	props, err := readValues(ctx, store, uri, vocab.SaveToVar, vocab.HTMLValue)
	if err != nil {
		return nil, err
	}

	g := &FixedHTMLDataGetter{
		URI:       uri,
		SaveToVar: props[vocab.SaveToVar],
		HTML:      props[vocab.HTMLValue],
	}
	if g.SaveToVar == "" {
		return nil, fmt.Errorf("%s has no saveToVar", uri)
	}
	return g, nil
}

// GetData implements datagetter.DataGetter.
func (g *FixedHTMLDataGetter) GetData(_ context.Context, _ map[string]any) (map[string]any, error) {
	return map[string]any{g.SaveToVar: g.HTML}, nil
}

var _ datagetter.DataGetter = (*FixedHTMLDataGetter)(nil)
