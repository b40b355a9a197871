package scaler

import (
	"context"
	"errors"

	"github.com/K-vibe-sat-canh/autoscaling/pkg/models"
)

var (
	ErrScalingFailed   = errors.New("scaling operation failed")
	ErrInvalidTarget   = errors.New("invalid target server count")
	ErrFleetNotFound   = errors.New("fleet not found")
	ErrTimeout         = errors.New("scaling operation timeout")
	ErrProvisionFailed = errors.New("instance provisioning failed")
	ErrTerminateFailed = errors.New("instance termination failed")
)

// ScaleResult contains the result of a scaling operation
type ScaleResult struct {
	FleetID          string
	Success          bool
	InstancesAdded   []string
	InstancesRemoved []string
	Error            error
	PartialSuccess   bool
}

// FleetState summarizes the instances of one fleet by lifecycle stage.
type FleetState struct {
	FleetID         string `json:"fleet_id"`
	TotalInstances  int    `json:"total_instances"`
	ActiveInstances int    `json:"active_instances"`
	ProvisioningCnt int    `json:"provisioning_count"`
	DrainingCount   int    `json:"draining_count"`
}

// Scaler executes the server-count changes a scaling decision calls for.
type Scaler interface {
	// ScaleUp adds instances to a fleet
	ScaleUp(ctx context.Context, fleetID string, count int) (*ScaleResult, error)

	// ScaleDown removes instances from a fleet
	ScaleDown(ctx context.Context, fleetID string, count int) (*ScaleResult, error)

	// GetFleetState returns current state of instances in a fleet
	GetFleetState(ctx context.Context, fleetID string) (*FleetState, error)

	// GetInstance returns details of a specific instance
	GetInstance(ctx context.Context, instanceID string) (*models.Instance, error)

	// Close releases resources
	Close() error
}
