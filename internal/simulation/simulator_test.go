package simulation

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

func minuteSeries(loads ...float64) []models.LoadSample {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	samples := make([]models.LoadSample, len(loads))
	for i, load := range loads {
		samples[i] = models.LoadSample{
			Timestamp:     base.Add(time.Duration(i) * time.Minute),
			PredictedLoad: load,
		}
	}
	return samples
}

func TestSimulator_Run_CostAccounting(t *testing.T) {
	sim, err := New(testPolicy())
	require.NoError(t, err)

	// Minute 0 scales down to 1 server; the cooldown then pins the fleet
	// there for the remaining two minutes.
	samples := minuteSeries(500, 2500, 2000)

	result, err := sim.Run(samples, 10, Options{StartServers: 2})
	require.NoError(t, err)

	assert.Equal(t, 3, result.IntervalsSimulated)
	require.Len(t, result.ScalingEvents, 1)
	assert.Equal(t, models.ActionScaleDown, result.ScalingEvents[0].Action)
	assert.Equal(t, 2, result.ScalingEvents[0].ServersBefore)
	assert.Equal(t, 1, result.ScalingEvents[0].ServersAfter)
	assert.Equal(t, 1, result.FinalServerCount)

	// Three one-minute intervals: auto runs 1 server, static runs 10.
	assert.InDelta(t, 3*1*0.45/60, result.AutoScalingCost, 1e-9)
	assert.InDelta(t, 3*10*0.45/60, result.StaticCost, 1e-9)
	assert.InDelta(t, result.StaticCost-result.AutoScalingCost, result.SavingsAmount, 1e-9)
	assert.InDelta(t, 0.9, result.SavingsPercentage, 1e-9)
}

func TestSimulator_Run_Deterministic(t *testing.T) {
	samples := minuteSeries(500, 2500, 9000, 200, 300, 400, 8000, 100)

	sim, err := New(testPolicy())
	require.NoError(t, err)

	first, err := sim.Run(samples, 10, Options{StartServers: 2})
	require.NoError(t, err)

	second, err := sim.Run(samples, 10, Options{StartServers: 2})
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestSimulator_Run_ExplicitIntervalOverridesSpacing(t *testing.T) {
	sim, err := New(testPolicy())
	require.NoError(t, err)

	samples := minuteSeries(1500, 1500)

	result, err := sim.Run(samples, 5, Options{StartServers: 3, Interval: time.Hour})
	require.NoError(t, err)

	// Two full hours at 3 vs 5 servers.
	assert.InDelta(t, 2*3*0.45, result.AutoScalingCost, 1e-9)
	assert.InDelta(t, 2*5*0.45, result.StaticCost, 1e-9)
}

func TestSimulator_Run_StartServersClampedIntoBounds(t *testing.T) {
	sim, err := New(testPolicy())
	require.NoError(t, err)

	result, err := sim.Run(minuteSeries(1500, 1500), 10, Options{StartServers: 100})
	require.NoError(t, err)

	// 100 requested, clamped to MaxServers; low utilization then sheds one
	// server on the first decision.
	assert.Equal(t, 19, result.FinalServerCount)
}

func TestSimulator_Run_InputValidation(t *testing.T) {
	sim, err := New(testPolicy())
	require.NoError(t, err)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		samples       []models.LoadSample
		staticServers int
		expectedErr   error
	}{
		{
			name:          "empty series",
			samples:       nil,
			staticServers: 10,
			expectedErr:   ErrNoSamples,
		},
		{
			name: "negative load",
			samples: []models.LoadSample{
				{Timestamp: base, PredictedLoad: -5},
			},
			staticServers: 10,
			expectedErr:   ErrNegativeLoad,
		},
		{
			name: "non-monotonic timestamps",
			samples: []models.LoadSample{
				{Timestamp: base.Add(time.Minute), PredictedLoad: 100},
				{Timestamp: base, PredictedLoad: 100},
			},
			staticServers: 10,
			expectedErr:   ErrNonMonotonicSamples,
		},
		{
			name: "duplicate timestamps",
			samples: []models.LoadSample{
				{Timestamp: base, PredictedLoad: 100},
				{Timestamp: base, PredictedLoad: 200},
			},
			staticServers: 10,
			expectedErr:   ErrNonMonotonicSamples,
		},
		{
			name:          "zero static servers",
			samples:       minuteSeries(100),
			staticServers: 0,
			expectedErr:   ErrInvalidStaticServers,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sim.Run(tt.samples, tt.staticServers, Options{})
			assert.ErrorIs(t, err, tt.expectedErr)
		})
	}
}

func TestSimulator_Run_ZeroSavingsWhenEqual(t *testing.T) {
	sim, err := New(testPolicy())
	require.NoError(t, err)

	// One server handles the load and matches the static baseline exactly.
	result, err := sim.Run(minuteSeries(500, 500, 500), 1, Options{StartServers: 1})
	require.NoError(t, err)

	assert.InDelta(t, 0, result.SavingsAmount, 1e-9)
	assert.InDelta(t, 0, result.SavingsPercentage, 1e-9)
	assert.Empty(t, result.ScalingEvents)
}
