package cloud

import (
	"context"
	"fmt"
	"strings"
)

// Provider is the contract every cloud backend implements for the snapshot workflow.
// It decouples the workflow from the mechanism used to reach the cloud (the gcloud CLI,
// the OpenStack API, or a fake in tests).
type Provider interface {
	// Name returns a short identifier of the backend (e.g., "gcloud").
	Name() string

	// ListZones returns the identifiers of every zone known to the provider.
	ListZones(ctx context.Context) ([]string, error)

	// CreateSnapshot creates a snapshot called name from the given disk in zone.
	CreateSnapshot(ctx context.Context, disk, name, zone string) error

	// ListSnapshots returns the base names of all snapshots whose name matches
	// the regular expression pattern.
	ListSnapshots(ctx context.Context, pattern string) ([]string, error)

	// DeleteSnapshot permanently removes the snapshot with the given name.
	DeleteSnapshot(ctx context.Context, name string) error
}

// CommandError is returned when a provider invocation fails.
// Stderr holds the provider's error stream verbatim; it is what ends up in the status file.
type CommandError struct {
	// Provider is the display name used in the message (e.g., "GCloud").
	Provider string
	Args     []string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *CommandError) Error() string {
	detail := e.Stderr
	if strings.TrimSpace(detail) == "" && e.Err != nil {
		detail = e.Err.Error()
	}
	return fmt.Sprintf("%s execution error: %s", e.Provider, detail)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}
