package models

import (
	"encoding/json"
	"time"
)

type FleetStatus string

const (
	FleetStatusActive FleetStatus = "active"
	FleetStatusPaused FleetStatus = "paused"
	FleetStatusError  FleetStatus = "error"
)

// Fleet is the set of server instances governed by one scaling policy.
type Fleet struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Policy    PolicyConfig `json:"policy"`
	Status    FleetStatus  `json:"status"`
	UserID    *int         `json:"user_id,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

func NewFleet(name string, policy PolicyConfig, userID *int) *Fleet {
	now := time.Now()
	return &Fleet{
		ID:        NewUUID(),
		Name:      name,
		Policy:    policy,
		Status:    FleetStatusActive,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (f *Fleet) IsActive() bool {
	return f.Status == FleetStatusActive
}

func (f *Fleet) PolicyJSON() ([]byte, error) {
	return json.Marshal(f.Policy)
}

func (f *Fleet) ParsePolicy(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, &f.Policy)
}
