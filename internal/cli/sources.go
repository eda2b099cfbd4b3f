package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pkggallery/pkggallery/pkg/gallery"
)

// sourcesCommand creates the sources command group.
func (c *CLI) sourcesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sources",
		Short: "List, select, and detect package sources",
	}

	cmd.AddCommand(c.sourcesListCommand())
	cmd.AddCommand(c.sourcesSelectCommand())
	cmd.AddCommand(c.sourcesDetectCommand())

	return cmd
}

// sourcesListCommand creates the "sources list" subcommand.
func (c *CLI) sourcesListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all registered sources and their capabilities",
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := c.newContainer(cmd)
			if err != nil {
				return err
			}
			defer container.Close()

			active, _ := container.CurrentSourceType()
			for _, info := range container.AvailableSources() {
				line := StyleTitle.Render(string(info.Type))
				if info.Type == active {
					line += " " + styleExact.Render("active")
				}
				fmt.Println(line)
				printDetail("%s · %s project", info.DisplayName, info.Project)

				caps := make([]string, 0, len(info.Capabilities))
				for _, capability := range info.Capabilities {
					caps = append(caps, string(capability))
				}
				printDetail("capabilities: %s", strings.Join(caps, ", "))
				printNewline()
			}
			return nil
		},
	}
}

// sourcesSelectCommand creates the "sources select" subcommand.
func (c *CLI) sourcesSelectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "select <source>",
		Short: "Verify a source selection for the current project",
		Long: `Verify a source selection for the current project.

The selection is per invocation; pass --source to any command to pin
the same source, or set it in the config file to make it permanent.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := c.newContainer(cmd)
			if err != nil {
				return err
			}
			defer container.Close()

			if err := container.SetSelectedSource(gallery.SourceType(args[0])); err != nil {
				return err
			}
			printSuccess("Source %s selected", args[0])
			printNextStep("Pin for one command", fmt.Sprintf("%s search <query> --source %s", appName, args[0]))
			return nil
		},
	}
}

// sourcesDetectCommand creates the "sources detect" subcommand.
func (c *CLI) sourcesDetectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "detect",
		Short: "Show the detected project type and the resulting source",
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := c.newContainer(cmd)
			if err != nil {
				return err
			}
			defer container.Close()

			detected := container.DetectedProjects()
			printKeyValue("Project", string(container.CurrentProjectType()))
			if len(detected.Types) > 1 {
				all := make([]string, 0, len(detected.Types))
				for _, p := range detected.Types {
					all = append(all, string(p))
				}
				printKeyValue("Detected", strings.Join(all, ", "))
			}
			for _, info := range detected.Projects {
				printDetail("%s: %s", info.Project, info.Marker)
			}

			source, err := container.CurrentSourceType()
			if err != nil {
				return err
			}
			printKeyValue("Source", string(source))

			cfg := container.Selector().Config()
			if len(cfg.Fallbacks) > 0 {
				fallbacks := make([]string, 0, len(cfg.Fallbacks))
				for _, f := range cfg.Fallbacks {
					fallbacks = append(fallbacks, string(f))
				}
				printKeyValue("Fallbacks", strings.Join(fallbacks, ", "))
			}
			printKeyValue("Sort options", strings.Join(container.SupportedSortOptions(), ", "))
			printKeyValue("Filters", strings.Join(container.SupportedFilters(), ", "))
			return nil
		},
	}
}
