package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/aravindh-murugesan/gce-disk-snapshot-go/internal/cloud"
	"github.com/aravindh-murugesan/gce-disk-snapshot-go/internal/notifications"
	"github.com/aravindh-murugesan/gce-disk-snapshot-go/internal/policy"
	"github.com/aravindh-murugesan/gce-disk-snapshot-go/internal/status"
	"github.com/google/uuid"
)

// ServiceName is reported in failure notifications.
const ServiceName = "gce-disk-snapshot"

// ErrStatusDir is returned when the status directory cannot be created.
// No status file is written in that case.
var ErrStatusDir = errors.New("Error accessing the status directory")

// ErrInvalidConfig wraps the problems reported by Config.Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

// notifyTimeout bounds the status write and failure notification after a run.
const notifyTimeout = 30 * time.Second

// ZoneError is returned when the requested zone is not among the provider's zones,
// or when the zones could not be listed at all.
type ZoneError struct {
	Zone string
	Err  error
}

func (e *ZoneError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("The zone %q could not be validated: %v", e.Zone, e.Err)
	}
	return fmt.Sprintf("The zone %q does not exist.", e.Zone)
}

func (e *ZoneError) Unwrap() error {
	return e.Err
}

// Notifier receives a notification for every failed run.
type Notifier interface {
	Notify(ctx context.Context, failure notifications.SnapshotFailure) error
}

// Runner executes one snapshot run for a single disk.
// Every dependency is a field so tests can swap in fakes.
type Runner struct {
	Config   Config
	Provider cloud.Provider
	Logger   *slog.Logger
	// Notifier is optional.
	Notifier Notifier
	// RunID correlates log lines and notifications of one run.
	RunID string
	// Now defaults to time.Now.
	Now func() time.Time
}

// RunDiskSnapshotWorkflow is the entry point of the command line.
//
// Responsibilities:
//  1. Logging: Sets up stdout/syslog logging tagged with a per-run ID.
//  2. Safety: Applies the optional global timeout to every provider call.
//  3. Connection: Builds the configured provider; a missing gcloud binary is fatal here.
//  4. Execution: Hands over to Runner.Run, which owns the status file.
func RunDiskSnapshotWorkflow(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	runID := fmt.Sprintf("req-%s", uuid.New().String())
	logger := SetupLogger(cfg.LogLevel, !cfg.NoSyslog).With(
		"run_id", runID,
		"disk", cfg.Disk,
		"zone", cfg.Zone,
	)

	ctx := context.Background()
	if cfg.TimeoutSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(cfg.TimeoutSeconds)*time.Second)
		defer cancel()
		logger.Debug("Global workflow timeout configured", "timeout_seconds", cfg.TimeoutSeconds)
	}

	provider, err := newProvider(ctx, cfg)
	if err != nil {
		logger.Error("Provider initialization failed", "provider", cfg.Provider, "error", err)
		return fmt.Errorf("provider initialization failed: %w", err)
	}
	logger.Debug("Provider initialized", "provider", provider.Name())

	runner := &Runner{
		Config:   cfg,
		Provider: provider,
		Logger:   logger,
		RunID:    runID,
	}
	if webhook := cfg.Webhook(); webhook.Enabled() {
		runner.Notifier = webhook
	}

	return runner.Run(ctx)
}

// Run performs the stages in order and stops at the first failure:
//  1. Bootstrap: Creates the status directory; failing here is fatal and leaves no status file.
//  2. Validation: Confirms the zone is known to the provider.
//  3. Creation: Takes a snapshot named "<disk>-<YYYYMMDD>-<HHMM>".
//  4. Cleanup: Deletes the oldest snapshots beyond the configured history.
//
// Every run past the bootstrap stage ends by writing the status file.
func (r *Runner) Run(ctx context.Context) error {
	logger := r.logger()

	if err := status.EnsureDir(r.Config.StatusDir); err != nil {
		err = fmt.Errorf("%w: %w", ErrStatusDir, err)
		logger.Error("Status directory unavailable", "status_dir", r.Config.StatusDir, "error", err)
		return err
	}

	snapshotName, runErr := r.execute(ctx, logger)

	// Reporting outlives the run's deadline.
	finishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()
	r.finish(finishCtx, logger, snapshotName, runErr)

	return runErr
}

func (r *Runner) execute(ctx context.Context, logger *slog.Logger) (string, error) {
	if err := r.validateZone(ctx, logger); err != nil {
		return "", err
	}

	snapshotName, err := r.createSnapshot(ctx, logger)
	if err != nil {
		return snapshotName, err
	}

	if err := r.cleanupSnapshots(ctx, logger); err != nil {
		return snapshotName, err
	}

	return snapshotName, nil
}

// validateZone fails closed: a zone list that cannot be fetched rejects the zone.
func (r *Runner) validateZone(ctx context.Context, logger *slog.Logger) error {
	zones, err := r.Provider.ListZones(ctx)
	if err != nil {
		zoneErr := &ZoneError{Zone: r.Config.Zone, Err: err}
		logger.Error("Zone discovery failed", "error", zoneErr)
		return zoneErr
	}

	logger.Debug("Zone discovery completed", "zone_count", len(zones))

	if !slices.Contains(zones, r.Config.Zone) {
		zoneErr := &ZoneError{Zone: r.Config.Zone}
		logger.Error("Zone validation failed", "error", zoneErr)
		return zoneErr
	}

	return nil
}

func (r *Runner) createSnapshot(ctx context.Context, logger *slog.Logger) (string, error) {
	name := cloud.SnapshotName(r.Config.Disk, r.now())

	logger.Info("Creating snapshot for disk", "snapshot_name", name)
	if err := r.Provider.CreateSnapshot(ctx, r.Config.Disk, name, r.Config.Zone); err != nil {
		logger.Error("Snapshot creation failed", "snapshot_name", name, "error", err)
		return name, err
	}

	logger.Info("Snapshot created", "snapshot_name", name)
	return name, nil
}

// cleanupSnapshots deletes the oldest snapshots until at most History remain.
// The first failed deletion aborts the cleanup; deleted snapshots stay deleted.
func (r *Runner) cleanupSnapshots(ctx context.Context, logger *slog.Logger) error {
	pattern := cloud.SnapshotPattern(r.Config.Disk)

	logger.Info("Performing cleanup", "pattern", pattern, "history", r.Config.History)
	names, err := r.Provider.ListSnapshots(ctx, pattern)
	if err != nil {
		logger.Error("Snapshot listing failed", "error", err)
		return err
	}

	plan := policy.SnapshotRetention{Keep: r.Config.History}.Plan(names)
	logger.Debug("Retention evaluated",
		"snapshot_count", len(names),
		"delete_count", len(plan.Delete))

	for i, name := range plan.Delete {
		logger.Info("Removing snapshot", "snapshot_name", name,
			"progress", fmt.Sprintf("%d/%d", i+1, len(plan.Delete)))

		if err := r.Provider.DeleteSnapshot(ctx, name); err != nil {
			logger.Error("Snapshot deletion failed", "snapshot_name", name, "error", err)
			return err
		}
	}

	logger.Info("Cleanup completed", "deleted_count", len(plan.Delete), "retained_count", len(plan.Keep))
	return nil
}

// finish persists the outcome and, for failures, notifies. Neither step changes the run's result.
func (r *Runner) finish(ctx context.Context, logger *slog.Logger, snapshotName string, runErr error) {
	now := r.now()
	path := r.Config.StatusPath()

	rec := status.NewRecord(now, runErr)
	if err := status.Write(path, rec); err != nil {
		logger.Error("Exception while saving the status file", "path", path, "error", err)
	} else {
		logger.Debug("Status file written", "path", path, "status", rec.Status)
	}

	if runErr == nil {
		logger.Info("Snapshot workflow completed")
		return
	}

	if r.Notifier == nil {
		return
	}

	providerName := ""
	if r.Provider != nil {
		providerName = r.Provider.Name()
	}

	failure := notifications.SnapshotFailure{
		Service:      ServiceName,
		Provider:     providerName,
		Disk:         r.Config.Disk,
		Zone:         r.Config.Zone,
		SnapshotName: snapshotName,
		Status:       rec.Status,
		Message:      rec.LastError,
		RunID:        r.RunID,
		Timestamp:    now.UTC(),
	}
	if err := r.Notifier.Notify(ctx, failure); err != nil {
		logger.Warn("Failure notification could not be delivered", "error", err)
	}
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}
