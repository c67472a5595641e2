package cli

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aravindh-murugesan/gce-disk-snapshot-go/internal/status"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var maxAge time.Duration

var statusCommand = &cobra.Command{
	Use:   "status",
	Short: "Show the outcome of the last snapshot run",
	Long: `Reads <statdir>/<disk>.status and prints it. Exits non-zero when the last run failed,
or when --max-age is set and the last run is older than that, so it can serve as a monitoring check.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		disk := viper.GetString("disk")
		if disk == "" {
			return errors.New(`required flag "disk" not set`)
		}
		cmd.SilenceUsage = true

		path := status.Path(viper.GetString("statdir"), disk)
		rec, err := status.Read(path)
		if err != nil {
			return fmt.Errorf("reading status file: %w", err)
		}

		now := time.Now()
		printStatus(cmd.OutOrStdout(), disk, path, rec, now)
		return rec.Check(now, maxAge)
	},
}

func printStatus(out io.Writer, disk, path string, rec status.Record, now time.Time) {
	result := successStyle.Render("OK")
	if rec.Failed() {
		result = failureStyle.Render("FAILED")
	}

	age := now.Sub(rec.Time()).Truncate(time.Second)
	rows := []string{
		labelStyle.Render("Disk") + disk,
		labelStyle.Render("Status file") + path,
		labelStyle.Render("Result") + result,
		labelStyle.Render("Last run") + fmt.Sprintf("%s (%s ago)", rec.Time().Format(time.RFC3339), age),
		labelStyle.Render("Message") + rec.LastError,
	}
	fmt.Fprintln(out, lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func init() {
	statusCommand.Flags().DurationVar(&maxAge, "max-age", 0, "Fail when the last run is older than this (0 = no limit)")
	rootCommand.AddCommand(statusCommand)
}
