package cmd

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/Togather-Foundation/mapgen/internal/staticmap"
	"github.com/Togather-Foundation/mapgen/internal/storage/postgres"
	"github.com/spf13/cobra"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"

	versionShort bool
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long: `Print the version, git commit and build date together with the
supported map providers and the newest preferences schema version.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if versionShort {
			fmt.Fprintln(out, Version)
			return nil
		}

		schema, err := postgres.SchemaVersion()
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "mapgen %s (%s, built %s)\n", Version, GitCommit, BuildDate)
		fmt.Fprintf(out, "Providers:  %s\n", strings.Join([]string{staticmap.EsriName, staticmap.MapboxName}, ", "))
		fmt.Fprintf(out, "Schema:     %d\n", schema)
		fmt.Fprintf(out, "Runtime:    %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
		return nil
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "print only the version")
}
