package models

import "time"

type ScalingEventStatus string

const (
	ScalingEventSuccess ScalingEventStatus = "success"
	ScalingEventFailed  ScalingEventStatus = "failed"
	ScalingEventPartial ScalingEventStatus = "partial"
)

// ScalingEvent is the persisted, audit-grade form of a non-maintain decision.
type ScalingEvent struct {
	ID             int                `json:"id,omitempty"`
	FleetID        string             `json:"fleet_id,omitempty"`
	Timestamp      time.Time          `json:"timestamp"`
	Action         ScalingAction      `json:"action"`
	ServersBefore  int                `json:"servers_before"`
	ServersAfter   int                `json:"servers_after"`
	TriggeringLoad float64            `json:"triggering_load"`
	Reason         string             `json:"reason"`
	Status         ScalingEventStatus `json:"status"`
}

func NewScalingEvent(decision ScalingDecision, status ScalingEventStatus) *ScalingEvent {
	return &ScalingEvent{
		FleetID:        decision.FleetID,
		Timestamp:      decision.Timestamp,
		Action:         decision.Action,
		ServersBefore:  decision.FromServers,
		ServersAfter:   decision.ToServers,
		TriggeringLoad: decision.TriggeringLoad,
		Reason:         decision.Reason,
		Status:         status,
	}
}
