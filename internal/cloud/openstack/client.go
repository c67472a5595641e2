package openstack

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gophercloud/gophercloud/v2"
	"github.com/gophercloud/gophercloud/v2/openstack"
	"github.com/gophercloud/utils/v2/openstack/clientconfig"
)

// Client manages the connection and service clients for OpenStack interactions.
// It satisfies cloud.Provider with Cinder volumes standing in for disks.
type Client struct {
	// ProfileName corresponds to the entry in clouds.yaml
	ProfileName string

	// Internal service clients
	ComputeClient      *gophercloud.ServiceClient
	BlockStorageClient *gophercloud.ServiceClient
}

// Name returns the identifier for this provider.
func (c *Client) Name() string {
	return "openstack"
}

// NewClient authenticates with the configured ProfileName and initializes the
// Block Storage (Cinder) and Compute (Nova) service clients.
// A single attempt is made; a failed authentication is returned as is.
func (c *Client) NewClient(ctx context.Context) error {
	slog.Debug("Initializing OpenStack client", "profile", c.ProfileName)

	opts := &clientconfig.ClientOpts{
		Cloud: c.ProfileName,
	}

	// 1. Establish Connection & Authentication
	provider, err := clientconfig.AuthenticatedClient(ctx, opts)
	if err != nil {
		return fmt.Errorf("authentication failed for profile '%s': %w", c.ProfileName, err)
	}

	// Parse the cloud config yaml file
	cloudConfig, err := clientconfig.GetCloudFromYAML(opts)
	if err != nil {
		return fmt.Errorf("failed to parse cloud config: %w", err)
	}

	// Get Endpoint type
	var availability gophercloud.Availability
	switch cloudConfig.EndpointType {
	case "internal":
		availability = gophercloud.AvailabilityInternal
	case "admin":
		availability = gophercloud.AvailabilityAdmin
	default:
		availability = gophercloud.AvailabilityPublic
	}

	endpointOpts := gophercloud.EndpointOpts{
		Availability: availability,
		Region:       cloudConfig.RegionName,
	}

	// 2. Initialize Block Storage (Cinder) Client
	blockStorage, err := openstack.NewBlockStorageV3(provider, endpointOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize Block Storage v3 client: %w", err)
	}

	// 3. Initialize Compute (Nova) Client
	compute, err := openstack.NewComputeV2(provider, endpointOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize Compute v2 client: %w", err)
	}

	c.BlockStorageClient = blockStorage
	c.ComputeClient = compute

	return nil
}
