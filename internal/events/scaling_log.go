package events

import (
	"sync"

	"github.com/K-vibe-sat-canh/autoscaling/pkg/models"
)

// ScalingLog is the append-only, timestamp-ordered record of executed scaling
// actions for one run (a simulation or a live fleet pipeline). Inputs arrive
// pre-ordered, so the log never reorders or deduplicates; readers get copies.
type ScalingLog struct {
	mu      sync.RWMutex
	entries []models.ScalingEvent
}

func NewScalingLog() *ScalingLog {
	return &ScalingLog{}
}

func (l *ScalingLog) Append(event models.ScalingEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, event)
}

// Events returns a copy of the log in append order.
func (l *ScalingLog) Events() []models.ScalingEvent {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]models.ScalingEvent, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *ScalingLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Last returns the most recent event, or false when the log is empty.
func (l *ScalingLog) Last() (models.ScalingEvent, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if len(l.entries) == 0 {
		return models.ScalingEvent{}, false
	}
	return l.entries[len(l.entries)-1], true
}
