package scaler

import (
	"sync"
	"time"

	"github.com/K-vibe-sat-canh/autoscaling/internal/logger"
	"github.com/K-vibe-sat-canh/autoscaling/pkg/models"
)

// InstanceTracker holds the in-memory instance inventory per fleet.
type InstanceTracker struct {
	instances map[string]*models.Instance
	fleets    map[string][]string // fleetID -> []instanceID
	mu        sync.RWMutex
	callbacks StateCallbacks
}

type StateCallbacks struct {
	OnInstanceActivated  func(instance *models.Instance)
	OnInstanceTerminated func(instance *models.Instance)
	OnStateChanged       func(instance *models.Instance, oldState, newState models.InstanceState)
}

func NewInstanceTracker(callbacks StateCallbacks) *InstanceTracker {
	return &InstanceTracker{
		instances: make(map[string]*models.Instance),
		fleets:    make(map[string][]string),
		callbacks: callbacks,
	}
}

func (t *InstanceTracker) Add(instance *models.Instance) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.instances[instance.ID] = instance
	t.fleets[instance.FleetID] = append(t.fleets[instance.FleetID], instance.ID)

	logger.WithFleet(instance.FleetID).Infof(
		"Instance %s added with state %s", instance.ID[:8], instance.State,
	)
}

func (t *InstanceTracker) UpdateState(instanceID string, newState models.InstanceState) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	instance, exists := t.instances[instanceID]
	if !exists {
		return ErrFleetNotFound
	}

	oldState := instance.State
	instance.State = newState

	switch newState {
	case models.InstanceStateActive:
		now := time.Now()
		instance.ActivatedAt = &now
		if t.callbacks.OnInstanceActivated != nil {
			go t.callbacks.OnInstanceActivated(instance)
		}
	case models.InstanceStateTerminated:
		now := time.Now()
		instance.TerminatedAt = &now
		if t.callbacks.OnInstanceTerminated != nil {
			go t.callbacks.OnInstanceTerminated(instance)
		}
	}

	if t.callbacks.OnStateChanged != nil {
		go t.callbacks.OnStateChanged(instance, oldState, newState)
	}

	logger.WithFleet(instance.FleetID).Infof(
		"Instance %s state changed: %s -> %s", instanceID[:8], oldState, newState,
	)

	return nil
}

func (t *InstanceTracker) Get(instanceID string) (*models.Instance, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	instance, exists := t.instances[instanceID]
	if !exists {
		return nil, false
	}

	instanceCopy := *instance
	return &instanceCopy, true
}

func (t *InstanceTracker) FleetInstances(fleetID string) []*models.Instance {
	t.mu.RLock()
	defer t.mu.RUnlock()

	ids := t.fleets[fleetID]
	instances := make([]*models.Instance, 0, len(ids))
	for _, id := range ids {
		if instance, exists := t.instances[id]; exists {
			instanceCopy := *instance
			instances = append(instances, &instanceCopy)
		}
	}

	return instances
}

func (t *InstanceTracker) ActiveInstances(fleetID string) []*models.Instance {
	t.mu.RLock()
	defer t.mu.RUnlock()

	ids := t.fleets[fleetID]
	var active []*models.Instance
	for _, id := range ids {
		if instance, exists := t.instances[id]; exists && instance.IsActive() {
			instanceCopy := *instance
			active = append(active, &instanceCopy)
		}
	}

	return active
}

func (t *InstanceTracker) FleetState(fleetID string) *FleetState {
	t.mu.RLock()
	defer t.mu.RUnlock()

	state := &FleetState{FleetID: fleetID}

	for _, id := range t.fleets[fleetID] {
		instance, exists := t.instances[id]
		if !exists {
			continue
		}

		switch instance.State {
		case models.InstanceStateProvisioning:
			state.ProvisioningCnt++
			state.TotalInstances++
		case models.InstanceStateActive:
			state.ActiveInstances++
			state.TotalInstances++
		case models.InstanceStateDraining:
			state.DrainingCount++
			state.TotalInstances++
		case models.InstanceStateTerminated:
			// Terminated instances drop out of the counts.
		}
	}

	return state
}
