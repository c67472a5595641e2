package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	Version, Commit, Date string
)

var versionCommand = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  "Display version, commit hash, build date, and other build information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "gce-disk-snapshot version: %s\n", Version)
		fmt.Fprintf(out, "Commit: %s\n", Commit)
		fmt.Fprintf(out, "Built: %s\n", Date)
	},
}

func init() {
	rootCommand.AddCommand(versionCommand)
}
