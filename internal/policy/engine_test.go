package policy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/K-vibe-sat-canh/autoscaling/pkg/models"
)

func testPolicy() models.PolicyConfig {
	return models.PolicyConfig{
		CapacityPerServer:  1000,
		ScaleUpThreshold:   0.85,
		ScaleDownThreshold: 0.30,
		CooldownPeriod:     5 * time.Minute,
		MinServers:         1,
		MaxServers:         20,
		CostPerServerHour:  0.45,
	}
}

func newTestEngine(t *testing.T, pol models.PolicyConfig) *Engine {
	t.Helper()
	engine, err := NewEngine(pol)
	require.NoError(t, err)
	return engine
}

func sampleAt(load float64, ts time.Time) models.LoadSample {
	return models.LoadSample{Timestamp: ts, PredictedLoad: load}
}

func TestNewEngine_RejectsInvalidPolicy(t *testing.T) {
	pol := testPolicy()
	pol.MaxServers = 0

	_, err := NewEngine(pol)
	assert.Error(t, err)
}

func TestEngine_Decide_Actions(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name           string
		servers        int
		load           float64
		expectedAction models.ScalingAction
		expectedTo     int
		expectedReason string
	}{
		{
			name:           "within target band maintains",
			servers:        3,
			load:           1500, // util 0.50
			expectedAction: models.ActionMaintain,
			expectedTo:     3,
			expectedReason: ReasonWithinTargetBand,
		},
		{
			name:           "high utilization scales to smallest sufficient count",
			servers:        2,
			load:           2500, // util 1.25, ceil(2500/850) = 3
			expectedAction: models.ActionScaleUp,
			expectedTo:     3,
			expectedReason: ReasonHighUtilization,
		},
		{
			name:           "exactly at upper threshold maintains",
			servers:        2,
			load:           1700, // util 0.85, not strictly above
			expectedAction: models.ActionMaintain,
			expectedTo:     2,
			expectedReason: ReasonWithinTargetBand,
		},
		{
			name:           "low utilization removes one server",
			servers:        5,
			load:           1000, // util 0.20, projected on 4: 0.25
			expectedAction: models.ActionScaleDown,
			expectedTo:     4,
			expectedReason: ReasonLowUtilization,
		},
		{
			name:           "low utilization at minimum maintains",
			servers:        1,
			load:           100, // util 0.10
			expectedAction: models.ActionMaintain,
			expectedTo:     1,
			expectedReason: ReasonAtMinServers,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newTestEngine(t, testPolicy())
			state := models.ScalingState{CurrentServers: tt.servers}

			decision, next := engine.Decide(state, sampleAt(tt.load, now), now)

			assert.Equal(t, tt.expectedAction, decision.Action)
			assert.Equal(t, tt.servers, decision.FromServers)
			assert.Equal(t, tt.expectedTo, decision.ToServers)
			assert.Equal(t, tt.expectedReason, decision.Reason)
			assert.Equal(t, tt.expectedTo, next.CurrentServers)
		})
	}
}

func TestEngine_Decide_SaturationClampsAtMax(t *testing.T) {
	engine := newTestEngine(t, testPolicy())
	now := time.Now()
	state := models.ScalingState{CurrentServers: 20}

	// Required 36 servers, but the policy caps at 20.
	decision, next := engine.Decide(state, sampleAt(30000, now), now)

	assert.Equal(t, models.ActionScaleUp, decision.Action)
	assert.Equal(t, 20, decision.ToServers)
	assert.True(t, decision.Saturated)
	assert.Equal(t, ReasonCapacitySaturated, decision.Reason)
	assert.Equal(t, 20, next.CurrentServers)
}

func TestEngine_Decide_CooldownBlocksScaling(t *testing.T) {
	engine := newTestEngine(t, testPolicy())
	start := time.Now()

	state := models.ScalingState{CurrentServers: 2}
	decision, state := engine.Decide(state, sampleAt(2500, start), start)
	require.Equal(t, models.ActionScaleUp, decision.Action)
	require.NotNil(t, state.LastActionAt)

	// Still overloaded two minutes later, inside the 5 minute cooldown.
	later := start.Add(2 * time.Minute)
	decision, state = engine.Decide(state, sampleAt(9000, later), later)

	assert.Equal(t, models.ActionMaintain, decision.Action)
	assert.True(t, decision.CooldownActive)
	assert.Equal(t, ReasonInCooldown, decision.Reason)
	assert.Equal(t, 3, state.CurrentServers)

	// Past the window the engine acts again.
	after := start.Add(6 * time.Minute)
	decision, state = engine.Decide(state, sampleAt(9000, after), after)

	assert.Equal(t, models.ActionScaleUp, decision.Action)
	assert.Equal(t, 11, decision.ToServers) // ceil(9000/850)
	assert.Equal(t, 11, state.CurrentServers)
}

func TestEngine_Decide_MaintainDoesNotOpenCooldown(t *testing.T) {
	engine := newTestEngine(t, testPolicy())
	now := time.Now()
	state := models.ScalingState{CurrentServers: 3}

	_, next := engine.Decide(state, sampleAt(1500, now), now)

	assert.Nil(t, next.LastActionAt)
	assert.Nil(t, next.LastAction)
}

func TestEngine_Decide_ScaleDownUnsafe(t *testing.T) {
	pol := testPolicy()
	pol.ScaleUpThreshold = 0.50
	pol.ScaleDownThreshold = 0.45
	engine := newTestEngine(t, pol)
	now := time.Now()

	// util 0.445 is below the scale-down threshold, but one server fewer
	// would sit at 0.89, past the scale-up threshold.
	state := models.ScalingState{CurrentServers: 2}
	decision, next := engine.Decide(state, sampleAt(890, now), now)

	assert.Equal(t, models.ActionMaintain, decision.Action)
	assert.Equal(t, ReasonScaleDownUnsafe, decision.Reason)
	assert.Equal(t, 2, next.CurrentServers)
	assert.Nil(t, next.LastActionAt)
}

func TestEngine_Decide_ScaleDownIsSingleStep(t *testing.T) {
	engine := newTestEngine(t, testPolicy())
	now := time.Now()

	// Near-zero load on a large fleet still removes only one server.
	state := models.ScalingState{CurrentServers: 20}
	decision, next := engine.Decide(state, sampleAt(10, now), now)

	assert.Equal(t, models.ActionScaleDown, decision.Action)
	assert.Equal(t, 19, decision.ToServers)
	assert.Equal(t, 19, next.CurrentServers)
}

func TestEngine_Decide_ZeroCapacityRecovery(t *testing.T) {
	engine := newTestEngine(t, testPolicy())
	now := time.Now()

	// A persisted state from an older policy may carry zero servers.
	state := models.ScalingState{CurrentServers: 0}
	decision, next := engine.Decide(state, sampleAt(100, now), now)

	assert.Equal(t, models.ActionScaleUp, decision.Action)
	assert.Equal(t, ReasonZeroCapacityRecovery, decision.Reason)
	assert.True(t, decision.ToServers >= 1)
	assert.True(t, next.CurrentServers >= 1)
}

func TestEngine_Decide_ScalingOpensCooldown(t *testing.T) {
	engine := newTestEngine(t, testPolicy())
	now := time.Now()

	state := models.ScalingState{CurrentServers: 5}
	decision, next := engine.Decide(state, sampleAt(1000, now), now)
	require.Equal(t, models.ActionScaleDown, decision.Action)

	require.NotNil(t, next.LastActionAt)
	require.NotNil(t, next.LastAction)
	assert.Equal(t, models.ActionScaleDown, *next.LastAction)
	assert.True(t, next.InCooldown(5*time.Minute, now.Add(time.Minute)))
}
