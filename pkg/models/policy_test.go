package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPolicyConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*PolicyConfig)
		expectErr bool
	}{
		{"defaults are valid", func(p *PolicyConfig) {}, false},
		{"zero capacity", func(p *PolicyConfig) { p.CapacityPerServer = 0 }, true},
		{"up threshold at one", func(p *PolicyConfig) { p.ScaleUpThreshold = 1.0 }, true},
		{"down threshold at zero", func(p *PolicyConfig) { p.ScaleDownThreshold = 0 }, true},
		{"down above up", func(p *PolicyConfig) { p.ScaleDownThreshold = 0.9 }, true},
		{"negative cooldown", func(p *PolicyConfig) { p.CooldownPeriod = -time.Minute }, true},
		{"zero min servers", func(p *PolicyConfig) { p.MinServers = 0 }, true},
		{"max below min", func(p *PolicyConfig) { p.MinServers = 5; p.MaxServers = 2 }, true},
		{"negative cost", func(p *PolicyConfig) { p.CostPerServerHour = -0.1 }, true},
		{"zero cost is allowed", func(p *PolicyConfig) { p.CostPerServerHour = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pol := DefaultPolicyConfig()
			tt.mutate(&pol)

			err := pol.Validate()
			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPolicyConfig_ClampServers(t *testing.T) {
	pol := DefaultPolicyConfig() // min 1, max 20

	assert.Equal(t, 1, pol.ClampServers(0))
	assert.Equal(t, 1, pol.ClampServers(-3))
	assert.Equal(t, 5, pol.ClampServers(5))
	assert.Equal(t, 20, pol.ClampServers(100))
}

func TestNewScalingState(t *testing.T) {
	pol := DefaultPolicyConfig()

	state := NewScalingState(pol, 0)
	assert.Equal(t, pol.MinServers, state.CurrentServers)
	assert.Nil(t, state.LastActionAt)

	state = NewScalingState(pol, 5)
	assert.Equal(t, 5, state.CurrentServers)

	state = NewScalingState(pol, 500)
	assert.Equal(t, pol.MaxServers, state.CurrentServers)
}

func TestScalingState_InCooldown(t *testing.T) {
	now := time.Now()
	past := now.Add(-3 * time.Minute)

	state := ScalingState{CurrentServers: 2}
	assert.False(t, state.InCooldown(5*time.Minute, now))

	state.LastActionAt = &past
	assert.True(t, state.InCooldown(5*time.Minute, now))
	assert.False(t, state.InCooldown(2*time.Minute, now))
}

func TestScalingDecision_ShouldExecute(t *testing.T) {
	maintain := ScalingDecision{Action: ActionMaintain, FromServers: 3, ToServers: 3}
	assert.False(t, maintain.ShouldExecute())

	up := ScalingDecision{Action: ActionScaleUp, FromServers: 3, ToServers: 5}
	assert.True(t, up.ShouldExecute())
	assert.Equal(t, 2, up.ServerDelta())

	// Saturated scale-up already at max changes nothing.
	pinned := ScalingDecision{Action: ActionScaleUp, FromServers: 20, ToServers: 20}
	assert.False(t, pinned.ShouldExecute())

	down := ScalingDecision{Action: ActionScaleDown, FromServers: 5, ToServers: 4}
	assert.True(t, down.ShouldExecute())
	assert.Equal(t, -1, down.ServerDelta())
}

func TestNewScalingEvent(t *testing.T) {
	now := time.Now()
	decision := ScalingDecision{
		FleetID:        "fleet-1",
		Timestamp:      now,
		Action:         ActionScaleUp,
		FromServers:    2,
		ToServers:      3,
		TriggeringLoad: 2500,
		Reason:         "high_utilization",
	}

	event := NewScalingEvent(decision, ScalingEventSuccess)

	assert.Equal(t, "fleet-1", event.FleetID)
	assert.Equal(t, now, event.Timestamp)
	assert.Equal(t, ActionScaleUp, event.Action)
	assert.Equal(t, 2, event.ServersBefore)
	assert.Equal(t, 3, event.ServersAfter)
	assert.Equal(t, 2500.0, event.TriggeringLoad)
	assert.Equal(t, ScalingEventSuccess, event.Status)
}
