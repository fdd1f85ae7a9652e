package commands

import (
	"github.com/spf13/cobra"
)

func newDataCommand() *cobra.Command {
	var values map[string]string

	cmd := &cobra.Command{
		Use:   "data <pageURI>",
		Short: "Run the data getters of a page and print the merged data",
		Long: `Resolve the data getters of a page, run each of them in link order and
print the merged page data as JSON.

A data getter that fails is logged and contributes nothing. Later getters
overwrite keys written by earlier ones.`,
		Example: `  # Print the data of a page
  pagedata data http://example.org/page1

  # Pass page data to the getters
  pagedata data http://example.org/page1 --set lang=en --set user=alice`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.close(ctx)

			pageData := make(map[string]any, len(values))
			for k, v := range values {
				pageData[k] = v
			}

			data, err := a.service().PageData(ctx, args[0], pageData)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), data)
		},
	}

	cmd.Flags().StringToStringVar(&values, "set", nil, "page data passed to the getters (key=value)")

	return cmd
}
