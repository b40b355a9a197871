package models

import "time"

type ScalingAction string

const (
	ActionScaleUp   ScalingAction = "scale_up"
	ActionScaleDown ScalingAction = "scale_down"
	ActionMaintain  ScalingAction = "maintain"
)

// ScalingDecision is the output of one policy engine step.
type ScalingDecision struct {
	FleetID        string        `json:"fleet_id,omitempty"`
	Timestamp      time.Time     `json:"timestamp"`
	Action         ScalingAction `json:"action"`
	FromServers    int           `json:"from_servers"`
	ToServers      int           `json:"to_servers"`
	Utilization    float64       `json:"utilization"`
	TriggeringLoad float64       `json:"triggering_load"`
	Reason         string        `json:"reason"`
	CooldownActive bool          `json:"cooldown_active"`
	Saturated      bool          `json:"saturated"`
}

func (d *ScalingDecision) ServerDelta() int {
	return d.ToServers - d.FromServers
}

// ShouldExecute reports whether an executor has work to do: a non-maintain
// action that actually changes the fleet size.
func (d *ScalingDecision) ShouldExecute() bool {
	return d.Action != ActionMaintain && d.ToServers != d.FromServers
}
