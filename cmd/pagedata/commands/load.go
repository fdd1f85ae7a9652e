package commands

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/openfroyo/pagedata/pkg/config"
	"github.com/openfroyo/pagedata/pkg/graph"
)

func newLoadCommand() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "load <model.yaml>...",
		Short: "Import model files into the SQLite store",
		Long: `Import display model files into the SQLite store.

The database is created and migrated if needed. Triples already present are
ignored, so loading the same file twice is harmless. Every file is parsed
before anything is written.`,
		Example: `  # Load into the database named in the config file
  pagedata load -c pagedata.yaml models/display.yaml

  # Load into a specific database
  pagedata load --db ./data/pagedata.db models/*.yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			// Parse first so a broken file leaves the database alone.
			batches := make([][]graph.Triple, 0, len(args))
			for _, f := range args {
				triples, err := graph.LoadModelFile(f)
				if err != nil {
					return err
				}
				batches = append(batches, triples)
			}

			a, err := newApp(ctx, func(cfg *config.Config) {
				if dbPath != "" {
					cfg.Store.Backend = config.BackendSQLite
					cfg.Store.SQLite.Path = dbPath
				}
			})
			if err != nil {
				return err
			}
			defer a.close(ctx)

			if a.sqlite == nil {
				return fmt.Errorf("load requires the %s backend (set store.backend or --db)", config.BackendSQLite)
			}

			before, err := a.sqlite.Count(ctx)
			if err != nil {
				return err
			}
			for i, triples := range batches {
				if err := a.sqlite.Add(ctx, triples...); err != nil {
					a.tel.Metrics.RecordModelReload("error")
					return fmt.Errorf("failed to load %s: %w", args[i], err)
				}
				log.Info().Str("file", args[i]).Int("triples", len(triples)).Msg("Loaded model file")
			}
			a.tel.Metrics.RecordModelReload("ok")

			after, err := a.sqlite.Count(ctx)
			if err != nil {
				return err
			}
			a.tel.Metrics.SetStoreTriples(after)

			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), map[string]int{
					"files":   len(args),
					"added":   after - before,
					"triples": after,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d file(s): %d new triple(s), %d total\n", len(args), after-before, after)
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path (selects the sqlite backend)")

	return cmd
}
