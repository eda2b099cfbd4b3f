package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pkggallery/pkggallery/pkg/services"
)

// installCommand creates the install command. The command is printed for
// the user to run; nothing is executed.
func (c *CLI) installCommand() *cobra.Command {
	var version string

	cmd := &cobra.Command{
		Use:   "install <package>",
		Short: "Print the install command for the active package manager",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.printCommand(cmd, func(container *services.Container) (string, error) {
				return container.Install().InstallCommand("", args[0], version)
			})
		},
	}

	cmd.Flags().StringVar(&version, "version", "", "install a specific version")

	return cmd
}

// updateCommand creates the update command.
func (c *CLI) updateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "update <package>",
		Short: "Print the update command for the active package manager",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.printCommand(cmd, func(container *services.Container) (string, error) {
				return container.Install().UpdateCommand("", args[0])
			})
		},
	}
}

// removeCommand creates the remove command.
func (c *CLI) removeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <package>",
		Short: "Print the removal command for the active package manager",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.printCommand(cmd, func(container *services.Container) (string, error) {
				return container.Install().RemoveCommand("", args[0])
			})
		},
	}
}

// snippetCommand creates the snippet command for manifest fragments.
func (c *CLI) snippetCommand() *cobra.Command {
	var (
		version string
		format  string
	)

	cmd := &cobra.Command{
		Use:   "snippet <package>",
		Short: "Print a manifest snippet for the package",
		Long: `Print a manifest snippet for the package.

Formats depend on the active source: Maven Central supports "maven"
(a pom.xml dependency block) and "gradle", NuGet supports
"packagereference" and "paket". Without --format the source's default
format applies.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.printCommand(cmd, func(container *services.Container) (string, error) {
				return container.Install().CopySnippet("", args[0], version, format)
			})
		},
	}

	cmd.Flags().StringVar(&version, "version", "", "pin the snippet to a specific version")
	cmd.Flags().StringVarP(&format, "format", "f", "", "snippet format (source-specific)")

	return cmd
}

// printCommand resolves the container, generates the text, and prints it
// with a note naming the source that produced it.
func (c *CLI) printCommand(cmd *cobra.Command, generate func(*services.Container) (string, error)) error {
	container, err := c.newContainer(cmd)
	if err != nil {
		return err
	}
	defer container.Close()

	text, err := generate(container)
	if err != nil {
		return err
	}

	fmt.Println(styleCommand.Render(text))
	if source, err := container.CurrentSourceType(); err == nil {
		printDetail("source: %s", source)
	}
	return nil
}
