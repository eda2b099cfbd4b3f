package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// versionsCommand creates the versions command for listing releases.
func (c *CLI) versionsCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "versions <package>",
		Short: "List released versions, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runVersions(cmd, args[0], limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of versions to show (0 for all)")

	return cmd
}

func (c *CLI) runVersions(cmd *cobra.Command, name string, limit int) error {
	container, err := c.newContainer(cmd)
	if err != nil {
		return err
	}
	defer container.Close()

	ctx := withLogger(cmd.Context(), c.Logger)
	p := newProgress(c.Logger)

	spinner := newSpinner(ctx, fmt.Sprintf("Fetching versions of %s...", name))
	spinner.Start()

	versions, err := container.Packages().Versions(ctx, name)
	if err != nil {
		spinner.StopWithError(fmt.Sprintf("Could not fetch versions of %s", name))
		return err
	}
	spinner.Stop()

	source, _ := container.CurrentSourceType()
	p.done(fmt.Sprintf("Fetched %d versions from %s", len(versions), source))

	if len(versions) == 0 {
		printInfo("No versions found for %s", name)
		return nil
	}

	total := len(versions)
	if limit > 0 && len(versions) > limit {
		versions = versions[:limit]
	}

	for _, v := range versions {
		line := StyleValue.Render(v.Version)
		if date := formatDate(v.PublishedAt); date != "" {
			line += " " + StyleDim.Render(date)
		}
		if v.Deprecated != "" {
			line += " " + StyleWarning.Render("deprecated")
		}
		fmt.Println(line)
	}
	if len(versions) < total {
		printNewline()
		printDetail("%d of %d versions shown (use --limit 0 for all)", len(versions), total)
	}
	return nil
}
