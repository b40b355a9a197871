package scaler

import (
	"context"
	"sync"
	"time"

	"github.com/K-vibe-sat-canh/autoscaling/internal/logger"
	"github.com/K-vibe-sat-canh/autoscaling/pkg/models"
)

// SimulatedScaler provisions and drains virtual instances with configurable
// delays, standing in for a cloud provider API.
type SimulatedScaler struct {
	tracker       *InstanceTracker
	provisionTime time.Duration
	drainTimeout  time.Duration
	mu            sync.Mutex
}

type SimulatedScalerConfig struct {
	ProvisionTime time.Duration
	DrainTimeout  time.Duration
	Callbacks     StateCallbacks
}

func NewSimulatedScaler(cfg SimulatedScalerConfig) *SimulatedScaler {
	if cfg.ProvisionTime == 0 {
		cfg.ProvisionTime = 10 * time.Second
	}
	if cfg.DrainTimeout == 0 {
		cfg.DrainTimeout = 30 * time.Second
	}

	return &SimulatedScaler{
		tracker:       NewInstanceTracker(cfg.Callbacks),
		provisionTime: cfg.ProvisionTime,
		drainTimeout:  cfg.DrainTimeout,
	}
}

func (s *SimulatedScaler) ScaleUp(ctx context.Context, fleetID string, count int) (*ScaleResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if count <= 0 {
		return nil, ErrInvalidTarget
	}

	result := &ScaleResult{
		FleetID:        fleetID,
		InstancesAdded: make([]string, 0, count),
	}

	logger.WithFleet(fleetID).Infof("Scaling up: adding %d instances", count)

	for i := 0; i < count; i++ {
		instance := models.NewInstance(fleetID)
		s.tracker.Add(instance)
		result.InstancesAdded = append(result.InstancesAdded, instance.ID)

		go s.simulateProvisioning(instance.ID)
	}

	result.Success = true
	return result, nil
}

func (s *SimulatedScaler) simulateProvisioning(instanceID string) {
	time.Sleep(s.provisionTime)

	if err := s.tracker.UpdateState(instanceID, models.InstanceStateActive); err != nil {
		logger.Errorf("Failed to activate instance %s: %v", instanceID[:8], err)
	}
}

func (s *SimulatedScaler) ScaleDown(ctx context.Context, fleetID string, count int) (*ScaleResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if count <= 0 {
		return nil, ErrInvalidTarget
	}

	result := &ScaleResult{
		FleetID:          fleetID,
		InstancesRemoved: make([]string, 0, count),
	}

	active := s.tracker.ActiveInstances(fleetID)
	if len(active) == 0 {
		return nil, ErrFleetNotFound
	}

	toRemove := count
	if toRemove > len(active) {
		toRemove = len(active)
		result.PartialSuccess = true
	}

	logger.WithFleet(fleetID).Infof("Scaling down: removing %d instances", toRemove)

	for i := 0; i < toRemove; i++ {
		instance := active[i]
		result.InstancesRemoved = append(result.InstancesRemoved, instance.ID)

		s.tracker.UpdateState(instance.ID, models.InstanceStateDraining)

		go s.simulateTermination(instance.ID)
	}

	result.Success = true
	return result, nil
}

func (s *SimulatedScaler) simulateTermination(instanceID string) {
	// Drain before terminating.
	time.Sleep(s.drainTimeout / 3)

	if err := s.tracker.UpdateState(instanceID, models.InstanceStateTerminated); err != nil {
		logger.Errorf("Failed to terminate instance %s: %v", instanceID[:8], err)
	}
}

func (s *SimulatedScaler) GetFleetState(ctx context.Context, fleetID string) (*FleetState, error) {
	return s.tracker.FleetState(fleetID), nil
}

func (s *SimulatedScaler) GetInstance(ctx context.Context, instanceID string) (*models.Instance, error) {
	instance, exists := s.tracker.Get(instanceID)
	if !exists {
		return nil, ErrFleetNotFound
	}
	return instance, nil
}

func (s *SimulatedScaler) Close() error {
	return nil
}

// InitializeFleet seeds a fleet with already-active instances.
func (s *SimulatedScaler) InitializeFleet(fleetID string, serverCount int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := 0; i < serverCount; i++ {
		instance := models.NewInstance(fleetID)
		instance.Activate()
		s.tracker.Add(instance)
	}

	logger.WithFleet(fleetID).Infof("Fleet initialized with %d active instances", serverCount)
}
