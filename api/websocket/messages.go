package websocket

import (
	"encoding/json"
	"time"

	"github.com/K-vibe-sat-canh/autoscaling/internal/scaler"
	"github.com/K-vibe-sat-canh/autoscaling/pkg/models"
)

type MessageType string

const (
	MessageTypeLoad         MessageType = "load"
	MessageTypeScalingEvent MessageType = "scaling_event"
	MessageTypeAlert        MessageType = "alert"
	MessageTypeFleetState   MessageType = "fleet_state"
)

type OutgoingMessage struct {
	Type      MessageType `json:"type"`
	FleetID   string      `json:"fleet_id"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

func NewMessage(msgType MessageType, fleetID string, data interface{}) *OutgoingMessage {
	return &OutgoingMessage{
		Type:      msgType,
		FleetID:   fleetID,
		Timestamp: time.Now(),
		Data:      data,
	}
}

func (m *OutgoingMessage) JSON() []byte {
	data, _ := json.Marshal(m)
	return data
}

type LoadData struct {
	Requests    float64 `json:"requests"`
	Utilization float64 `json:"utilization"`
	ServerCount int     `json:"server_count"`
}

type ScalingEventData struct {
	Action        string  `json:"action"`
	ServersBefore int     `json:"servers_before"`
	ServersAfter  int     `json:"servers_after"`
	Load          float64 `json:"triggering_load"`
	Reason        string  `json:"reason"`
	Status        string  `json:"status"`
}

type AlertData struct {
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

type FleetStateData struct {
	TotalInstances  int `json:"total_instances"`
	ActiveInstances int `json:"active_instances"`
	Provisioning    int `json:"provisioning"`
	Draining        int `json:"draining"`
}

func BroadcastLoad(hub *Hub, fleetID string, requests, utilization float64, serverCount int) {
	data := LoadData{
		Requests:    requests,
		Utilization: utilization,
		ServerCount: serverCount,
	}
	msg := NewMessage(MessageTypeLoad, fleetID, data)
	hub.BroadcastToFleet(fleetID, msg.JSON())
}

func BroadcastScalingEvent(hub *Hub, event *models.ScalingEvent) {
	data := ScalingEventData{
		Action:        string(event.Action),
		ServersBefore: event.ServersBefore,
		ServersAfter:  event.ServersAfter,
		Load:          event.TriggeringLoad,
		Reason:        event.Reason,
		Status:        string(event.Status),
	}
	msg := NewMessage(MessageTypeScalingEvent, event.FleetID, data)
	hub.BroadcastToFleet(event.FleetID, msg.JSON())
}

func BroadcastAlert(hub *Hub, fleetID, severity, message string) {
	data := AlertData{
		Severity: severity,
		Message:  message,
	}
	msg := NewMessage(MessageTypeAlert, fleetID, data)
	hub.BroadcastToFleet(fleetID, msg.JSON())
}

func BroadcastFleetState(hub *Hub, fleetID string, state scaler.FleetState) {
	data := FleetStateData{
		TotalInstances:  state.TotalInstances,
		ActiveInstances: state.ActiveInstances,
		Provisioning:    state.ProvisioningCnt,
		Draining:        state.DrainingCount,
	}
	msg := NewMessage(MessageTypeFleetState, fleetID, data)
	hub.BroadcastToFleet(fleetID, msg.JSON())
}
