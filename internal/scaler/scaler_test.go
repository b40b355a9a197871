package scaler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/K-vibe-sat-canh/autoscaling/pkg/models"
)

func TestInstanceTracker_Lifecycle(t *testing.T) {
	var activated, terminated atomic.Int32

	tracker := NewInstanceTracker(StateCallbacks{
		OnInstanceActivated:  func(*models.Instance) { activated.Add(1) },
		OnInstanceTerminated: func(*models.Instance) { terminated.Add(1) },
	})

	instance := models.NewInstance("fleet-1")
	tracker.Add(instance)
	assert.Equal(t, models.InstanceStateProvisioning, instance.State)

	require.NoError(t, tracker.UpdateState(instance.ID, models.InstanceStateActive))

	got, exists := tracker.Get(instance.ID)
	require.True(t, exists)
	assert.Equal(t, models.InstanceStateActive, got.State)
	require.NotNil(t, got.ActivatedAt)

	require.NoError(t, tracker.UpdateState(instance.ID, models.InstanceStateDraining))
	require.NoError(t, tracker.UpdateState(instance.ID, models.InstanceStateTerminated))

	got, _ = tracker.Get(instance.ID)
	require.NotNil(t, got.TerminatedAt)

	// Callbacks are dispatched asynchronously.
	assert.Eventually(t, func() bool {
		return activated.Load() == 1 && terminated.Load() == 1
	}, time.Second, 5*time.Millisecond)
}

func TestInstanceTracker_UpdateUnknownInstance(t *testing.T) {
	tracker := NewInstanceTracker(StateCallbacks{})

	err := tracker.UpdateState("missing", models.InstanceStateActive)
	assert.ErrorIs(t, err, ErrFleetNotFound)
}

func TestInstanceTracker_GetReturnsCopy(t *testing.T) {
	tracker := NewInstanceTracker(StateCallbacks{})

	instance := models.NewInstance("fleet-1")
	tracker.Add(instance)

	got, _ := tracker.Get(instance.ID)
	got.State = models.InstanceStateTerminated

	again, _ := tracker.Get(instance.ID)
	assert.Equal(t, models.InstanceStateProvisioning, again.State)
}

func TestInstanceTracker_FleetState(t *testing.T) {
	tracker := NewInstanceTracker(StateCallbacks{})

	states := []models.InstanceState{
		models.InstanceStateProvisioning,
		models.InstanceStateActive,
		models.InstanceStateActive,
		models.InstanceStateDraining,
		models.InstanceStateTerminated,
	}
	for _, s := range states {
		instance := models.NewInstance("fleet-1")
		tracker.Add(instance)
		if s != models.InstanceStateProvisioning {
			require.NoError(t, tracker.UpdateState(instance.ID, s))
		}
	}

	state := tracker.FleetState("fleet-1")
	assert.Equal(t, 4, state.TotalInstances)
	assert.Equal(t, 2, state.ActiveInstances)
	assert.Equal(t, 1, state.ProvisioningCnt)
	assert.Equal(t, 1, state.DrainingCount)

	empty := tracker.FleetState("other")
	assert.Equal(t, 0, empty.TotalInstances)
}

func testScaler(t *testing.T) *SimulatedScaler {
	t.Helper()
	return NewSimulatedScaler(SimulatedScalerConfig{
		ProvisionTime: time.Millisecond,
		DrainTimeout:  time.Millisecond,
	})
}

func TestSimulatedScaler_InitializeFleet(t *testing.T) {
	s := testScaler(t)
	s.InitializeFleet("fleet-1", 3)

	state, err := s.GetFleetState(context.Background(), "fleet-1")
	require.NoError(t, err)
	assert.Equal(t, 3, state.ActiveInstances)
	assert.Equal(t, 3, state.TotalInstances)
}

func TestSimulatedScaler_ScaleUp(t *testing.T) {
	s := testScaler(t)
	ctx := context.Background()

	result, err := s.ScaleUp(ctx, "fleet-1", 2)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Len(t, result.InstancesAdded, 2)

	// Instances start provisioning and become active after the delay.
	require.Eventually(t, func() bool {
		state, _ := s.GetFleetState(ctx, "fleet-1")
		return state.ActiveInstances == 2
	}, time.Second, 5*time.Millisecond)
}

func TestSimulatedScaler_ScaleUpInvalidCount(t *testing.T) {
	s := testScaler(t)

	_, err := s.ScaleUp(context.Background(), "fleet-1", 0)
	assert.ErrorIs(t, err, ErrInvalidTarget)
}

func TestSimulatedScaler_ScaleDown(t *testing.T) {
	s := testScaler(t)
	s.InitializeFleet("fleet-1", 4)
	ctx := context.Background()

	result, err := s.ScaleDown(ctx, "fleet-1", 2)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.False(t, result.PartialSuccess)
	assert.Len(t, result.InstancesRemoved, 2)

	require.Eventually(t, func() bool {
		state, _ := s.GetFleetState(ctx, "fleet-1")
		return state.ActiveInstances == 2 && state.DrainingCount == 0
	}, time.Second, 5*time.Millisecond)
}

func TestSimulatedScaler_ScaleDownMoreThanActive(t *testing.T) {
	s := testScaler(t)
	s.InitializeFleet("fleet-1", 2)

	result, err := s.ScaleDown(context.Background(), "fleet-1", 5)
	require.NoError(t, err)
	assert.True(t, result.PartialSuccess)
	assert.Len(t, result.InstancesRemoved, 2)
}

func TestSimulatedScaler_ScaleDownEmptyFleet(t *testing.T) {
	s := testScaler(t)

	_, err := s.ScaleDown(context.Background(), "fleet-1", 1)
	assert.ErrorIs(t, err, ErrFleetNotFound)
}

func TestSimulatedScaler_GetInstance(t *testing.T) {
	s := testScaler(t)
	s.InitializeFleet("fleet-1", 1)

	result, err := s.ScaleUp(context.Background(), "fleet-1", 1)
	require.NoError(t, err)

	instance, err := s.GetInstance(context.Background(), result.InstancesAdded[0])
	require.NoError(t, err)
	assert.Equal(t, "fleet-1", instance.FleetID)

	_, err = s.GetInstance(context.Background(), "missing")
	assert.Error(t, err)
}
