package gcloud

import (
	"context"

	"github.com/aravindh-murugesan/gce-disk-snapshot-go/internal/cloud"
)

// ListZones returns every zone identifier reported by `gcloud compute zones list --uri`.
func (c *Client) ListZones(ctx context.Context) ([]string, error) {
	out, err := c.run(ctx, "compute", "zones", "list", "--uri")
	if err != nil {
		return nil, err
	}
	return cloud.ParseResourceList(out), nil
}

// CreateSnapshot runs `gcloud compute disks snapshot` for a single disk.
// gcloud waits for the snapshot to be ready before returning.
func (c *Client) CreateSnapshot(ctx context.Context, disk, name, zone string) error {
	_, err := c.run(ctx, "compute", "disks", "snapshot", disk,
		"--snapshot-names", name,
		"--zone", zone)
	return err
}

// ListSnapshots returns the base names of snapshots matching pattern.
// The filtering happens in gcloud through the regexp flag.
func (c *Client) ListSnapshots(ctx context.Context, pattern string) ([]string, error) {
	out, err := c.run(ctx, "compute", "snapshots", "list", "-r", pattern, "--uri")
	if err != nil {
		return nil, err
	}
	return cloud.ParseResourceList(out), nil
}

// DeleteSnapshot removes a snapshot without prompting for confirmation.
func (c *Client) DeleteSnapshot(ctx context.Context, name string) error {
	_, err := c.run(ctx, "compute", "snapshots", "delete", "--quiet", name)
	return err
}
