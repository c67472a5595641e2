package openstack

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gophercloud/gophercloud/v2/openstack/blockstorage/v3/snapshots"
)

// CreateSnapshot snapshots the volume named disk in zone and waits for it to become available.
//
// Behavior:
//   - Force Creation: Uses the `Force: true` flag, allowing snapshots to be taken even if the
//     volume is currently attached ("in-use") by an instance.
//   - Synchronous Wait: This method blocks until the snapshot reaches the "available" state
//     (or until the context is cancelled), matching the gcloud CLI which returns once the
//     snapshot is ready.
func (c *Client) CreateSnapshot(ctx context.Context, disk, name, zone string) error {
	vol, err := c.findVolume(ctx, disk, zone)
	if err != nil {
		return err
	}

	opts := snapshots.CreateOpts{
		VolumeID:    vol.ID,
		Force:       true, // Allows snapshotting 'in-use' volumes
		Name:        name,
		Description: "Created by gce-disk-snapshot",
	}

	// 1. Trigger Creation
	result := snapshots.Create(ctx, c.BlockStorageClient, opts)
	requestID := result.Header.Get("X-Openstack-Request-Id")

	snap, err := result.Extract()
	if err != nil {
		return wrapError("CreateVolumeSnapshot", err)
	}

	slog.Debug("Snapshot requested", "snapshot_id", snap.ID, "volume_id", vol.ID, "request_id", requestID)

	// 2. Wait for Completion
	if err := snapshots.WaitForStatus(ctx, c.BlockStorageClient, snap.ID, "available"); err != nil {
		return wrapError("CreateVolumeSnapshot",
			fmt.Errorf("failed waiting for snapshot %s to become available: %w", snap.ID, err))
	}

	return nil
}

// ListSnapshots returns the names of the project's snapshots matching pattern.
// Cinder has no server side regular expression filter, so matching happens here.
func (c *Client) ListSnapshots(ctx context.Context, pattern string) ([]string, error) {
	pages, err := snapshots.List(c.BlockStorageClient, snapshots.ListOpts{}).AllPages(ctx)
	if err != nil {
		return nil, wrapError("ListVolumeSnapshots", err)
	}

	snaps, err := snapshots.ExtractSnapshots(pages)
	if err != nil {
		return nil, wrapError("ListVolumeSnapshots", err)
	}

	names := make([]string, 0, len(snaps))
	for _, s := range snaps {
		names = append(names, s.Name)
	}

	matched, err := filterNames(names, pattern)
	if err != nil {
		return nil, wrapError("ListVolumeSnapshots", err)
	}
	return matched, nil
}

// DeleteSnapshot removes the snapshot called name.
//
// The name is resolved to an ID first; deletion is asynchronous on the Cinder
// side and this returns once the request has been accepted.
func (c *Client) DeleteSnapshot(ctx context.Context, name string) error {
	pages, err := snapshots.List(c.BlockStorageClient, snapshots.ListOpts{Name: name}).AllPages(ctx)
	if err != nil {
		return wrapError("DeleteVolumeSnapshot", err)
	}

	snaps, err := snapshots.ExtractSnapshots(pages)
	if err != nil {
		return wrapError("DeleteVolumeSnapshot", err)
	}

	var ids []string
	for _, s := range snaps {
		if s.Name == name {
			ids = append(ids, s.ID)
		}
	}

	if len(ids) != 1 {
		return wrapError("DeleteVolumeSnapshot", fmt.Errorf("expected one snapshot named %q, found %d", name, len(ids)))
	}

	result := snapshots.Delete(ctx, c.BlockStorageClient, ids[0])
	if err := result.ExtractErr(); err != nil {
		return wrapError("DeleteVolumeSnapshot", err)
	}

	slog.Debug("Snapshot deletion accepted", "snapshot_id", ids[0],
		"request_id", result.Header.Get("X-Openstack-Request-Id"))
	return nil
}
