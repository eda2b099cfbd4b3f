package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// infoCommand creates the info command for viewing package metadata.
func (c *CLI) infoCommand() *cobra.Command {
	var (
		version  string
		asJSON   bool
		withDeps bool
	)

	cmd := &cobra.Command{
		Use:   "info <package>",
		Short: "Show package metadata and details",
		Long: `Show package metadata and details.

Displays the description, license, author, links, maintainers, and
deprecation notice for a package. Download counts and quality scores
are shown when the active source provides them.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInfo(cmd, args[0], version, asJSON, withDeps)
		},
	}

	cmd.Flags().StringVar(&version, "version", "", "show a specific version (default latest)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw record as JSON")
	cmd.Flags().BoolVar(&withDeps, "deps", false, "list direct dependencies")

	return cmd
}

func (c *CLI) runInfo(cmd *cobra.Command, name, version string, asJSON, withDeps bool) error {
	container, err := c.newContainer(cmd)
	if err != nil {
		return err
	}
	defer container.Close()

	ctx := withLogger(cmd.Context(), c.Logger)
	p := newProgress(c.Logger)

	spinner := newSpinner(ctx, fmt.Sprintf("Fetching %s...", name))
	spinner.Start()

	details, err := container.Packages().Details(ctx, name, version)
	if err != nil {
		spinner.StopWithError(fmt.Sprintf("Could not fetch %s", name))
		return err
	}
	spinner.Stop()

	source, _ := container.CurrentSourceType()
	p.done(fmt.Sprintf("Fetched %s from %s", name, source))

	// Download counts and scores are optional per source; failures
	// here never fail the command.
	if downloads, err := container.Packages().DownloadStats(ctx, name); err == nil && downloads > 0 {
		details.Downloads = downloads
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(details)
	}

	fmt.Println(StyleTitle.Render(details.Name) + " " + styleVersion.Render(details.Version))
	if details.Deprecated != "" {
		printWarning("Deprecated: %s", details.Deprecated)
	}
	printNewline()
	printKeyValue("Description", details.Description)
	printKeyValue("License", details.License)
	printKeyValue("Author", details.Author)
	printKeyValue("Homepage", details.HomePage)
	printKeyValue("Repository", details.Repository)
	printKeyValue("Keywords", strings.Join(details.Keywords, ", "))
	printKeyValue("Published", formatDate(details.PublishedAt))
	if details.Downloads > 0 {
		printKeyValue("Downloads", fmt.Sprintf("%d", details.Downloads))
	}
	if len(details.Maintainers) > 0 {
		names := make([]string, 0, len(details.Maintainers))
		for _, m := range details.Maintainers {
			names = append(names, m.Name)
		}
		printKeyValue("Maintainers", strings.Join(names, ", "))
	}
	if score, err := container.Packages().QualityScore(ctx, name); err == nil && score != nil {
		printKeyValue("Score", fmt.Sprintf("%.2f (quality %.2f, popularity %.2f, maintenance %.2f)",
			score.Final, score.Quality, score.Popularity, score.Maintenance))
	}

	if withDeps && len(details.Dependencies) > 0 {
		printNewline()
		printInfo("Dependencies (%d)", len(details.Dependencies))
		for dep, spec := range details.Dependencies {
			printDetail("%s %s", dep, spec)
		}
	}

	printNewline()
	printNextStep("List versions", fmt.Sprintf("%s versions %s", appName, details.Name))
	return nil
}
