package models

import "time"

// LoadSample is one interval's load figure (requests or bytes), supplied by a
// forecast provider or by historical replay.
type LoadSample struct {
	Timestamp     time.Time `json:"timestamp"`
	PredictedLoad float64   `json:"predicted_load"`
}
