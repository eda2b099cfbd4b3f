package cli

import (
	"github.com/spf13/cobra"
)

// suggestCommand creates the suggest command for autocomplete lookups.
func (c *CLI) suggestCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "suggest <prefix>",
		Short: "Show autocomplete candidates for a package name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := c.newContainer(cmd)
			if err != nil {
				return err
			}
			defer container.Close()

			ctx := withLogger(cmd.Context(), c.Logger)
			hits, err := container.Search().Suggest(ctx, args[0])
			if err != nil {
				return err
			}
			if len(hits) == 0 {
				printInfo("No suggestions for %q", args[0])
				return nil
			}
			for _, pkg := range hits {
				printPackageLine(pkg.Name, pkg.Version, "", false)
			}
			return nil
		},
	}
}
