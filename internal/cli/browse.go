package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/pkggallery/pkggallery/pkg/gallery"
)

// browseCommand creates the browse command for interactive search.
func (c *CLI) browseCommand() *cobra.Command {
	var size int

	cmd := &cobra.Command{
		Use:   "browse <query>",
		Short: "Search interactively and pick a package",
		Long: `Search interactively and pick a package.

Runs a search against the active source, shows the results in an
interactive list, and prints the selected package's details along with
its install command.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBrowse(cmd, args[0], size)
		},
	}

	cmd.Flags().IntVarP(&size, "size", "n", 20, "number of results")

	return cmd
}

func (c *CLI) runBrowse(cmd *cobra.Command, query string, size int) error {
	container, err := c.newContainer(cmd)
	if err != nil {
		return err
	}
	defer container.Close()

	ctx := withLogger(cmd.Context(), c.Logger)

	spinner := newSpinner(ctx, fmt.Sprintf("Searching for %q...", query))
	spinner.Start()

	res, err := container.Search().Search(ctx, gallery.SearchOptions{
		Query:     query,
		ExactName: query,
		Size:      size,
	})
	if err != nil {
		spinner.StopWithError("Search failed")
		return err
	}
	spinner.Stop()

	if len(res.Packages) == 0 {
		printInfo("No packages found for %q", query)
		return nil
	}

	m := NewPackageListModel(res.Packages)
	p := tea.NewProgram(m)
	finalModel, err := p.Run()
	if err != nil {
		return err
	}

	fm, ok := finalModel.(PackageListModel)
	if !ok || fm.Selected == nil {
		printInfo("Nothing selected")
		return nil
	}
	pkg := fm.Selected.Package

	printNewline()
	printPackageLine(pkg.Name, pkg.Version, pkg.Description, pkg.ExactMatch)
	if install, err := container.Install().InstallCommand("", pkg.Name, ""); err == nil {
		printNewline()
		fmt.Println(styleCommand.Render(install))
	}
	printNextStep("Full details", fmt.Sprintf("%s info %s", appName, pkg.Name))
	return nil
}
