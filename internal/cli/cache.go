package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the HTTP response cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear all cached registry responses",
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := c.newContainer(cmd)
			if err != nil {
				return err
			}
			defer container.Close()

			if err := container.ClearCache(); err != nil {
				return err
			}
			printSuccess("Cache cleared")
			if dir := container.CacheDir(); dir != "" {
				printDetail("Directory: %s", dir)
			}
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := c.newContainer(cmd)
			if err != nil {
				return err
			}
			defer container.Close()

			dir := container.CacheDir()
			if dir == "" {
				printInfo("The configured cache backend has no directory")
				return nil
			}
			fmt.Println(dir)
			return nil
		},
	}
}
