// Package builtin provides the data getters shipped with pagedata. Importing
// it registers them with the default registry:
//
//	import _ "github.com/openfroyo/pagedata/pkg/datagetter/builtin"
package builtin

import "github.com/openfroyo/pagedata/pkg/datagetter"

// Implementation names, as derived from the declared types by the default
// naming convention.
const (
	FixedHTMLName         = "FixedHTMLDataGetter"
	ClassPropertyListName = "ClassPropertyListDataGetter"
	ClassGroupPageName    = "ClassGroupPageData"
)

// RegisterAll adds the built-in implementations to r.
func RegisterAll(r *datagetter.Registry) {
	r.Register(FixedHTMLName, datagetter.NewFactory(datagetter.Constructors[*FixedHTMLDataGetter]{
		FromGraph: NewFixedHTMLDataGetter,
	}))
	r.Register(ClassPropertyListName, datagetter.NewFactory(datagetter.Constructors[*ClassPropertyListDataGetter]{
		FromGraph: NewClassPropertyListDataGetter,
		Empty:     NewEmptyClassPropertyListDataGetter,
	}))
	r.Register(ClassGroupPageName, datagetter.NewFactory(datagetter.Constructors[*ClassGroupPageData]{
		Empty: NewClassGroupPageData,
	}))
}

func init() {
	RegisterAll(datagetter.DefaultRegistry())
}
