package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pkggallery/pkggallery/pkg/gallery"
)

// searchCommand creates the search command.
func (c *CLI) searchCommand() *cobra.Command {
	var (
		size    int
		from    int
		sortBy  string
		exact   bool
		filters []string
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the active package source",
		Long: `Search the active package source.

The source is selected from the project type of the working directory
(package.json selects npm, pom.xml selects Maven Central, a .csproj file
selects NuGet, go.mod selects the Go module proxy), unless overridden
with --source or --project. When the primary source is unavailable the
configured fallback sources are tried in order.

Filters are source-specific key=value pairs, for example:

  pkggallery search react --filter author=gaearon
  pkggallery search serilog --filter packagetype=Template`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSearch(cmd, args[0], gallery.SearchOptions{
				From:   from,
				Size:   size,
				SortBy: sortBy,
			}, exact, filters)
		},
	}

	cmd.Flags().IntVarP(&size, "size", "n", 20, "number of results")
	cmd.Flags().IntVar(&from, "from", 0, "result offset for paging")
	cmd.Flags().StringVar(&sortBy, "sort", "", "sort order (source-specific, default from project config)")
	cmd.Flags().BoolVar(&exact, "exact", false, "surface an exact name match first")
	cmd.Flags().StringArrayVar(&filters, "filter", nil, "source-specific filter as key=value (repeatable)")

	return cmd
}

// runSearch executes the search and prints the result list.
func (c *CLI) runSearch(cmd *cobra.Command, query string, opts gallery.SearchOptions, exact bool, filters []string) error {
	container, err := c.newContainer(cmd)
	if err != nil {
		return err
	}
	defer container.Close()

	opts.Query = query
	if exact {
		opts.ExactName = query
	}
	if len(filters) > 0 {
		parsed, err := parseFilters(filters)
		if err != nil {
			return err
		}
		opts.Filters = parsed
	}

	ctx := withLogger(cmd.Context(), c.Logger)
	p := newProgress(c.Logger)

	spinner := newSpinner(ctx, fmt.Sprintf("Searching for %q...", query))
	spinner.Start()

	res, err := container.Search().Search(ctx, opts)
	if err != nil {
		spinner.StopWithError("Search failed")
		return err
	}
	spinner.Stop()

	source, _ := container.CurrentSourceType()
	p.done(fmt.Sprintf("Searched %s", source))

	if len(res.Packages) == 0 {
		printInfo("No packages found for %q", query)
		return nil
	}

	for _, pkg := range res.Packages {
		printPackageLine(pkg.Name, pkg.Version, pkg.Description, pkg.ExactMatch)
	}
	printNewline()
	printResultStats(len(res.Packages), res.Total, string(source))
	if res.HasMore {
		printNextStep("Next page", fmt.Sprintf("%s search %s --from %d", appName, query, opts.From+len(res.Packages)))
	}
	return nil
}

// parseFilters splits key=value filter flags into a map.
func parseFilters(filters []string) (map[string]string, error) {
	out := make(map[string]string, len(filters))
	for _, f := range filters {
		key, value, ok := strings.Cut(f, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid filter %q: expected key=value", f)
		}
		out[key] = value
	}
	return out, nil
}
