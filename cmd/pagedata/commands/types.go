package commands

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/openfroyo/pagedata/pkg/datagetter"
)

// typeInfo describes one registered implementation.
type typeInfo struct {
	Name             string `json:"name"`
	DataGetter       bool   `json:"data_getter"`
	GraphConstructor bool   `json:"graph_constructor"`
	EmptyConstructor bool   `json:"empty_constructor"`
}

func registeredTypes(r *datagetter.Registry) []typeInfo {
	names := r.Names()
	types := make([]typeInfo, 0, len(names))
	for _, name := range names {
		f, _ := r.Lookup(name)
		types = append(types, typeInfo{
			Name:             name,
			DataGetter:       f.IsDataGetter,
			GraphConstructor: f.HasGraphConstructor(),
			EmptyConstructor: f.HasEmptyConstructor(),
		})
	}
	return types
}

func newTypesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "types",
		Short: "List registered implementations",
		Long: `List the implementations known to the registry.

Implementations that are not data getters are still listed; links typed with
them are skipped during resolution.`,
		Example: `  pagedata types
  pagedata types --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			types := registeredTypes(datagetter.DefaultRegistry())
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), types)
			}

			rows := make([][]string, 0, len(types))
			for _, t := range types {
				var ctors string
				switch {
				case t.GraphConstructor && t.EmptyConstructor:
					ctors = "graph, empty"
				case t.GraphConstructor:
					ctors = "graph"
				case t.EmptyConstructor:
					ctors = "empty"
				default:
					ctors = "none"
				}
				rows = append(rows, []string{t.Name, strconv.FormatBool(t.DataGetter), ctors})
			}
			return renderTable(cmd.OutOrStdout(), []string{"NAME", "DATA GETTER", "CONSTRUCTORS"}, rows)
		},
	}

	return cmd
}
