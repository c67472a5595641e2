package openstack

import (
	"context"
	"fmt"

	"github.com/gophercloud/gophercloud/v2/openstack/blockstorage/v3/volumes"
	"github.com/gophercloud/gophercloud/v2/openstack/compute/v2/availabilityzones"
)

// ListZones returns the names of the compute availability zones visible to the project.
func (c *Client) ListZones(ctx context.Context) ([]string, error) {
	pages, err := availabilityzones.List(c.ComputeClient).AllPages(ctx)
	if err != nil {
		return nil, wrapError("ListAvailabilityZones", err)
	}

	zones, err := availabilityzones.ExtractAvailabilityZones(pages)
	if err != nil {
		return nil, wrapError("ListAvailabilityZones", err)
	}

	names := make([]string, 0, len(zones))
	for _, z := range zones {
		names = append(names, z.ZoneName)
	}
	return names, nil
}

// findVolume resolves a disk name to the Cinder volume of that name in zone.
//
// Cinder names are not unique; more than one match in the same zone is
// reported as an error rather than snapshotting an arbitrary volume.
func (c *Client) findVolume(ctx context.Context, name, zone string) (volumes.Volume, error) {
	pages, err := volumes.List(c.BlockStorageClient, volumes.ListOpts{Name: name}).AllPages(ctx)
	if err != nil {
		return volumes.Volume{}, wrapError("ListVolumes", err)
	}

	vols, err := volumes.ExtractVolumes(pages)
	if err != nil {
		return volumes.Volume{}, wrapError("ListVolumes", err)
	}

	var found []volumes.Volume
	for _, v := range vols {
		if v.Name == name && v.AvailabilityZone == zone {
			found = append(found, v)
		}
	}

	switch len(found) {
	case 0:
		return volumes.Volume{}, wrapError("ListVolumes", fmt.Errorf("volume %q not found in zone %q", name, zone))
	case 1:
		return found[0], nil
	default:
		return volumes.Volume{}, wrapError("ListVolumes", fmt.Errorf("%d volumes named %q in zone %q", len(found), name, zone))
	}
}
