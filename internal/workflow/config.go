package workflow

import (
	"errors"
	"fmt"
	"slices"

	"github.com/aravindh-murugesan/gce-disk-snapshot-go/internal/notifications"
	"github.com/aravindh-murugesan/gce-disk-snapshot-go/internal/policy"
	"github.com/aravindh-murugesan/gce-disk-snapshot-go/internal/status"
)

// Supported provider backends.
const (
	ProviderGcloud    = "gcloud"
	ProviderOpenstack = "openstack"
)

// DefaultStatusDir is where status files are written unless configured otherwise.
const DefaultStatusDir = "/var/run/emind/gce-ds"

// Config is the immutable input of a snapshot run.
// Field tags are the viper keys, so flags, GCE_DS_* variables and config files all decode into it.
type Config struct {
	Disk      string `mapstructure:"disk"`
	Zone      string `mapstructure:"zone"`
	History   int    `mapstructure:"history"`
	StatusDir string `mapstructure:"statdir"`

	Provider     string `mapstructure:"provider"`
	CloudProfile string `mapstructure:"cloud"`

	LogLevel       string `mapstructure:"log-level"`
	TimeoutSeconds int    `mapstructure:"timeout"`
	NoSyslog       bool   `mapstructure:"no-syslog"`

	WebhookURL      string `mapstructure:"webhook-url"`
	WebhookUsername string `mapstructure:"webhook-username"`
	WebhookPassword string `mapstructure:"webhook-password"`
}

// Validate reports every problem with the configuration at once.
func (c Config) Validate() error {
	var errs []error

	if c.Disk == "" {
		errs = append(errs, errors.New(`required flag "disk" not set`))
	}
	if c.Zone == "" {
		errs = append(errs, errors.New(`required flag "zone" not set`))
	}
	if err := (policy.SnapshotRetention{Keep: c.History}).Normalize(); err != nil {
		errs = append(errs, err)
	}
	if c.StatusDir == "" {
		errs = append(errs, errors.New("status directory must not be empty"))
	}
	if c.TimeoutSeconds < 0 {
		errs = append(errs, fmt.Errorf("invalid timeout %d; must be zero or greater", c.TimeoutSeconds))
	}

	switch c.Provider {
	case "", ProviderGcloud:
	case ProviderOpenstack:
		if c.CloudProfile == "" {
			errs = append(errs, errors.New(`required flag "cloud" not set for the openstack provider`))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown provider %q; valid providers are %v",
			c.Provider, []string{ProviderGcloud, ProviderOpenstack}))
	}

	if c.LogLevel != "" && !slices.Contains([]string{"debug", "info", "warn", "error"}, c.LogLevel) {
		errs = append(errs, fmt.Errorf("unknown log level %q", c.LogLevel))
	}

	return errors.Join(errs...)
}

// StatusPath returns the status file of the configured disk.
func (c Config) StatusPath() string {
	return status.Path(c.StatusDir, c.Disk)
}

// Webhook returns the failure webhook described by the configuration.
func (c Config) Webhook() notifications.Webhook {
	return notifications.Webhook{
		URL:      c.WebhookURL,
		Username: c.WebhookUsername,
		Password: c.WebhookPassword,
	}
}
