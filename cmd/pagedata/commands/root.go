package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	// Registers the built-in data getters.
	_ "github.com/openfroyo/pagedata/pkg/datagetter/builtin"
)

var (
	// Global flags
	configPath string
	verbose    bool
	jsonOutput bool
)

// Execute runs the root command
func Execute(ctx context.Context, version, commit, buildDate string) error {
	rootCmd := newRootCommand(version, commit, buildDate)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCommand(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pagedata",
		Short: "pagedata - data getter resolution for display model pages",
		Long: `pagedata resolves the data getters attached to a page in a display model.

Each display:hasDataGetter link of a page is typed in the model. The first
type that is not owl:Thing names the implementation, which is looked up in
the registry and constructed from the model. Links that cannot be resolved
are skipped; store failures abort.

The model lives in memory (loaded from YAML model files) or in SQLite.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format")

	rootCmd.AddCommand(newResolveCommand())
	rootCmd.AddCommand(newDataCommand())
	rootCmd.AddCommand(newLoadCommand())
	rootCmd.AddCommand(newTypesCommand())
	rootCmd.AddCommand(newServeCommand())

	return rootCmd
}
