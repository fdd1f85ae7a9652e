package commands

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newResolveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve <pageURI>",
		Short: "Resolve the data getters of a page",
		Long: `Resolve every display:hasDataGetter link of a page and report the outcome.

For each link the implementation name is shown, or the reason the link was
skipped:
  - no_usable_type: only owl:Thing types, or no type at all
  - implementation_not_found: no registered implementation of that name
  - capability_mismatch: the implementation is not a data getter
  - construction: the implementation could not be built from the model`,
		Example: `  # Resolve a page from the configured models
  pagedata resolve http://vitro.mannlib.cornell.edu/ontologies/display/1.1#Home

  # Machine readable output
  pagedata resolve --json http://example.org/page1`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.close(ctx)

			res, err := a.service().Resolve(ctx, args[0])
			if err != nil {
				return err
			}

			log.Debug().
				Str("resolution_id", res.ID).
				Int("links", len(res.Links)).
				Int("getters", len(res.Getters())).
				Msg("Resolved page")

			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), res)
			}

			rows := make([][]string, 0, len(res.Links))
			for _, l := range res.Links {
				status := "ok"
				if l.Skipped {
					status = "skipped: " + l.Reason
				}
				impl := l.Implementation
				if impl == "" {
					impl = "-"
				}
				rows = append(rows, []string{l.URI, impl, status})
			}
			return renderTable(cmd.OutOrStdout(), []string{"DATA GETTER", "IMPLEMENTATION", "STATUS"}, rows)
		},
	}

	return cmd
}
