package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aravindh-murugesan/gce-disk-snapshot-go/internal/policy"
	"github.com/aravindh-murugesan/gce-disk-snapshot-go/internal/workflow"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var configFile string

var rootCommand = &cobra.Command{
	Use:   "gce-disk-snapshot -d DISK -z ZONE [-H HISTORY] [-s STATDIR]",
	Short: "GCE Disk Snapshot Maker",
	Long: `Creates a timestamped snapshot of a single disk and prunes the oldest snapshots
beyond the configured history. The outcome of every run is written to
<statdir>/<disk>.status for external monitoring.

Every flag can also be set through a GCE_DS_* environment variable
(e.g. GCE_DS_DISK, GCE_DS_WEBHOOK_URL) or a config file.`,
	Args:          cobra.NoArgs,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}
		return readConfigFile()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), headerStyle.Render("GCE Disk Snapshot Maker"))
		err = workflow.RunDiskSnapshotWorkflow(cfg)

		// Only configuration problems are usage errors.
		cmd.SilenceUsage = !errors.Is(err, workflow.ErrInvalidConfig)
		return err
	},
}

func Execute() error {
	return rootCommand.Execute()
}

// readConfigFile loads --config when given. Values from it rank below flags and environment.
func readConfigFile() error {
	if configFile == "" {
		return nil
	}
	viper.SetConfigFile(configFile)
	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("reading config file %s: %w", configFile, err)
	}
	return nil
}

// loadConfig decodes flags, GCE_DS_* variables and the config file into a workflow.Config.
func loadConfig() (workflow.Config, error) {
	var cfg workflow.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return workflow.Config{}, fmt.Errorf("decoding configuration: %w", err)
	}
	return cfg, nil
}

func init() {
	flags := rootCommand.PersistentFlags()

	flags.StringVar(&configFile, "config", "", "Optional config file (yaml, json or toml)")

	// Disk selection and retention
	flags.StringP("disk", "d", "", "Disk name (required)")
	flags.StringP("zone", "z", "", "The zone of the disk to be imaged (required)")
	flags.IntP("history", "H", policy.DefaultHistory, "Number of historic snapshots to keep")
	flags.StringP("statdir", "s", workflow.DefaultStatusDir, "Directory where to write the status file")

	// Provider
	flags.String("provider", workflow.ProviderGcloud, "Cloud provider backend (gcloud, openstack)")
	flags.String("cloud", "", "Name of the cloud profile as in clouds.yaml (openstack provider only)")

	// Runtime behaviour
	flags.String("log-level", "info", "Logging level (debug, info, warn, error)")
	flags.Int("timeout", 0, "Global execution timeout in seconds (0 = run indefinitely)")
	flags.Bool("no-syslog", false, "Do not send log messages to syslog")

	// Alerting
	flags.String("webhook-url", "", "Webhook URL notified when a run fails")
	flags.String("webhook-username", "", "Webhook username for alerting")
	flags.String("webhook-password", "", "Webhook password for alerting")

	// Bind to env vars
	_ = viper.BindPFlags(flags)
	viper.SetEnvPrefix("GCE_DS")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}
