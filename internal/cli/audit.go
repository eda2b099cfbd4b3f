package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// auditCommand creates the audit command for vulnerability lookups.
func (c *CLI) auditCommand() *cobra.Command {
	var version string

	cmd := &cobra.Command{
		Use:   "audit <package>",
		Short: "Look up known vulnerabilities for a package",
		Long: `Look up known vulnerabilities for a package.

Queries the OSV database through the active source. Without --version
the latest version is checked. Sources without security support report
an unsupported capability error.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runAudit(cmd, args[0], version)
		},
	}

	cmd.Flags().StringVar(&version, "version", "", "audit a specific version (default latest)")

	return cmd
}

func (c *CLI) runAudit(cmd *cobra.Command, name, version string) error {
	container, err := c.newContainer(cmd)
	if err != nil {
		return err
	}
	defer container.Close()

	ctx := withLogger(cmd.Context(), c.Logger)
	p := newProgress(c.Logger)

	// Resolve the latest version first so the report names a concrete
	// version instead of "latest".
	if version == "" {
		if info, err := container.Packages().Info(ctx, name); err == nil {
			version = info.Version
		}
	}

	spinner := newSpinner(ctx, fmt.Sprintf("Auditing %s...", name))
	spinner.Start()

	sec, err := container.Packages().Security(ctx, name, version)
	if err != nil {
		spinner.StopWithError(fmt.Sprintf("Could not audit %s", name))
		return err
	}
	spinner.Stop()

	p.done(fmt.Sprintf("Audited %s@%s", name, version))

	if sec == nil || len(sec.Vulnerabilities) == 0 {
		printSuccess("No known vulnerabilities in %s %s", name, version)
		return nil
	}

	printWarning("%d known vulnerabilities in %s %s", len(sec.Vulnerabilities), name, version)
	printNewline()
	for _, v := range sec.Vulnerabilities {
		line := styleVulnID.Render(v.ID)
		if v.Severity != "" {
			line += " " + StyleWarning.Render(v.Severity)
		}
		fmt.Println(line)
		if v.Summary != "" {
			printDetail("%s", v.Summary)
		}
		if v.URL != "" {
			printDetail("%s", v.URL)
		}
	}
	return nil
}
