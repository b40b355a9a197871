package models

import "time"

type InstanceState string

const (
	InstanceStateProvisioning InstanceState = "PROVISIONING"
	InstanceStateActive       InstanceState = "ACTIVE"
	InstanceStateDraining     InstanceState = "DRAINING"
	InstanceStateTerminated   InstanceState = "TERMINATED"
)

// Instance is one simulated server inside a fleet.
type Instance struct {
	ID           string        `json:"id"`
	FleetID      string        `json:"fleet_id"`
	State        InstanceState `json:"state"`
	CreatedAt    time.Time     `json:"created_at"`
	ActivatedAt  *time.Time    `json:"activated_at,omitempty"`
	TerminatedAt *time.Time    `json:"terminated_at,omitempty"`
}

func NewInstance(fleetID string) *Instance {
	return &Instance{
		ID:        NewUUID(),
		FleetID:   fleetID,
		State:     InstanceStateProvisioning,
		CreatedAt: time.Now(),
	}
}

func (i *Instance) Activate() {
	now := time.Now()
	i.State = InstanceStateActive
	i.ActivatedAt = &now
}

func (i *Instance) Terminate() {
	now := time.Now()
	i.State = InstanceStateTerminated
	i.TerminatedAt = &now
}

func (i *Instance) IsActive() bool {
	return i.State == InstanceStateActive
}
