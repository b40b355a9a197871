package models

import "time"

// ScalingState is the accumulator one policy engine carries across decisions
// for a single fleet. The caller owns it: the engine receives the current
// state and returns the next one, so persistence and serialization stay
// outside the decision core. It must only ever be advanced by one writer.
type ScalingState struct {
	CurrentServers int            `json:"current_servers"`
	LastActionAt   *time.Time     `json:"last_action_at,omitempty"`
	LastAction     *ScalingAction `json:"last_action,omitempty"`
}

// NewScalingState starts a fleet at startServers, clamped into the policy
// bounds. Pass 0 to start at MinServers.
func NewScalingState(policy PolicyConfig, startServers int) ScalingState {
	if startServers == 0 {
		startServers = policy.MinServers
	}
	return ScalingState{CurrentServers: policy.ClampServers(startServers)}
}

// InCooldown reports whether a scaling action at `now` would still fall
// inside the cooldown window opened by the last non-maintain action.
func (s ScalingState) InCooldown(cooldown time.Duration, now time.Time) bool {
	if s.LastActionAt == nil {
		return false
	}
	return now.Sub(*s.LastActionAt) < cooldown
}

func (s ScalingState) CanScaleUp(maxServers int) bool {
	return s.CurrentServers < maxServers
}

func (s ScalingState) CanScaleDown(minServers int) bool {
	return s.CurrentServers > minServers
}
