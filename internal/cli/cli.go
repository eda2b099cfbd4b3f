// Package cli implements the pkggallery command-line interface.
//
// This package provides commands for searching package registries, viewing
// package metadata, generating install commands, auditing dependencies for
// vulnerabilities, and managing the source selection session. The CLI is
// built using cobra and supports verbose logging via the charmbracelet/log
// library.
//
// # Commands
//
// The main commands are:
//   - search: Query the active source's registry
//   - browse: Interactive search with a result picker
//   - suggest: Autocomplete candidates for a name prefix
//   - info: Show package metadata and details
//   - versions: List released versions
//   - install/update/remove/snippet: Generate package manager commands
//   - audit: Look up known vulnerabilities
//   - sources: List, select, and detect package sources
//   - cache: Manage the HTTP response cache
//   - serve: Expose the gallery over HTTP
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
package cli

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/pkggallery/pkggallery/pkg/buildinfo"
	"github.com/pkggallery/pkggallery/pkg/gallery"
	"github.com/pkggallery/pkggallery/pkg/services"
)

// appName is the application name used for directories and display.
const appName = "pkggallery"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	workDir    string
	sourceFlag string
	project    string
	noCache    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "pkggallery browses package registries from one place",
		Long:         `pkggallery is a CLI for searching and inspecting packages across npm, Maven Central, NuGet, and the Go module proxy, with automatic source selection based on the project in the current directory.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "config file (default ~/.config/pkggallery/config.toml)")
	flags.StringVarP(&c.workDir, "dir", "C", "", "workspace directory for project detection (default cwd)")
	flags.StringVarP(&c.sourceFlag, "source", "s", "", "pin a package source (npm-registry, npms-io, sonatype, nuget, pkg-go-dev)")
	flags.StringVar(&c.project, "project", "", "override the detected project type (npm, maven, dotnet, go)")
	flags.BoolVar(&c.noCache, "no-cache", false, "bypass the HTTP response cache")

	root.AddCommand(c.searchCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.suggestCommand())
	root.AddCommand(c.infoCommand())
	root.AddCommand(c.versionsCommand())
	root.AddCommand(c.installCommand())
	root.AddCommand(c.updateCommand())
	root.AddCommand(c.removeCommand())
	root.AddCommand(c.snippetCommand())
	root.AddCommand(c.auditCommand())
	root.AddCommand(c.sourcesCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// newContainer builds the service container from the user configuration
// and the session flags.
func (c *CLI) newContainer(cmd *cobra.Command) (*services.Container, error) {
	path := c.configPath
	if path == "" {
		path = services.DefaultConfigPath()
	}
	cfg, err := services.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	if c.noCache {
		cfg.Cache.Backend = "none"
	}

	root := c.workDir
	if root == "" {
		root, _ = os.Getwd()
	}

	container, err := services.NewContainer(cmd.Context(), cfg, root)
	if err != nil {
		return nil, err
	}
	if c.project != "" {
		container.SetProjectType(gallery.ProjectType(c.project))
	}
	if c.sourceFlag != "" {
		if err := container.SetSelectedSource(gallery.SourceType(c.sourceFlag)); err != nil {
			container.Close()
			return nil, err
		}
	}
	return container, nil
}
