package loadgen

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParsePattern(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"steady", "steady"},
		{"daily", "daily"},
		{"weekly", "weekly"},
		{"random", "random"},
		{"gradual_rise", "gradual_rise"},
		{"sine_wave", "sine_wave"},
		{"unknown", "steady"},
		{"", "steady"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParsePattern(tt.input).Name())
		})
	}
}

func TestSteadyPattern_ReturnsBase(t *testing.T) {
	p := &SteadyPattern{}
	assert.Equal(t, 1500.0, p.Apply(1500))
}

func TestDailyPattern_StaysWithinModifierRange(t *testing.T) {
	p := &DailyPattern{}
	result := p.Apply(1000)

	assert.GreaterOrEqual(t, result, 600.0)
	assert.LessOrEqual(t, result, 1400.0)
}

func TestRandomPattern_StaysWithinRange(t *testing.T) {
	p := &RandomPattern{}
	for i := 0; i < 100; i++ {
		result := p.Apply(1000)
		assert.GreaterOrEqual(t, result, 500.0)
		assert.LessOrEqual(t, result, 1500.0)
	}
}

func TestGradualRisePattern_StartsAtBase(t *testing.T) {
	p := ParsePattern("gradual_rise")
	result := p.Apply(1000)

	// Just created, so essentially no rise yet.
	assert.InDelta(t, 1000, result, 5)
}

func TestSineWavePattern_StaysWithinAmplitude(t *testing.T) {
	p := &SineWavePattern{}
	for i := 0; i < 10; i++ {
		result := p.Apply(1000)
		assert.GreaterOrEqual(t, result, 700.0-1e-6)
		assert.LessOrEqual(t, result, 1300.0+1e-6)
	}
}

func TestFleetSim_CurrentLoadNeverNegative(t *testing.T) {
	sim := NewFleetSim("fleet-1", FleetSimConfig{
		BaseRequests: 10,
		Variance:     1.0,
		Pattern:      PatternRandom,
	})

	for i := 0; i < 100; i++ {
		assert.GreaterOrEqual(t, sim.CurrentLoad(), 0.0)
	}
}

func TestFleetSim_SpikeRampsTowardTarget(t *testing.T) {
	sim := NewFleetSim("fleet-1", FleetSimConfig{
		BaseRequests: 1000,
		Variance:     0,
		Pattern:      PatternSteady,
	})

	sim.InjectSpike(5000, time.Minute, 0) // instant ramp

	load := sim.CurrentLoad()
	assert.InDelta(t, 5000, load, 1)
}

func TestFleetSim_SetPattern(t *testing.T) {
	sim := NewFleetSim("fleet-1", FleetSimConfig{
		BaseRequests: 1000,
		Pattern:      PatternSteady,
	})

	sim.SetPattern(PatternDaily)
	assert.Equal(t, "daily", sim.PatternName())
}
