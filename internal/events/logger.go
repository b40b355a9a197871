package events

import (
	"context"

	"github.com/K-vibe-sat-canh/autoscaling/internal/logger"
	"github.com/K-vibe-sat-canh/autoscaling/pkg/database"
	"github.com/K-vibe-sat-canh/autoscaling/pkg/models"
)

// EventLogger drains a bus subscription, mirrors every event into the
// structured log, and persists scaling events and load samples to Postgres.
type EventLogger struct {
	db        *database.DB
	eventChan <-chan *models.Event
	ctx       context.Context
	cancel    context.CancelFunc
}

func NewEventLogger(db *database.DB, eventChan <-chan *models.Event) *EventLogger {
	ctx, cancel := context.WithCancel(context.Background())
	return &EventLogger{
		db:        db,
		eventChan: eventChan,
		ctx:       ctx,
		cancel:    cancel,
	}
}

func (l *EventLogger) Start() {
	go l.run()
}

func (l *EventLogger) Stop() {
	l.cancel()
}

func (l *EventLogger) run() {
	for {
		select {
		case <-l.ctx.Done():
			return
		case event, ok := <-l.eventChan:
			if !ok {
				return
			}
			l.processEvent(event)
		}
	}
}

func (l *EventLogger) processEvent(event *models.Event) {
	entry := logger.WithFields(map[string]interface{}{
		"event_type": event.Type,
		"fleet_id":   event.FleetID,
		"severity":   event.Severity,
		"trace_id":   event.TraceID,
	})

	switch event.Severity {
	case models.SeverityCritical:
		entry.Error(event.Message)
	case models.SeverityWarning:
		entry.Warn(event.Message)
	default:
		entry.Info(event.Message)
	}

	if l.db == nil {
		return
	}

	switch event.Type {
	case models.EventTypeScalingComplete:
		l.persistScalingEvent(event)
	case models.EventTypeLoadSampled:
		l.persistLoadSample(event)
	}
}

func (l *EventLogger) persistScalingEvent(event *models.Event) {
	scalingEvent, ok := event.Data.(*models.ScalingEvent)
	if !ok {
		return
	}

	query := `
		INSERT INTO scaling_events
			(fleet_id, timestamp, action, servers_before, servers_after, triggering_load, reason, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := l.db.ExecContext(l.ctx, query,
		scalingEvent.FleetID,
		scalingEvent.Timestamp,
		scalingEvent.Action,
		scalingEvent.ServersBefore,
		scalingEvent.ServersAfter,
		scalingEvent.TriggeringLoad,
		scalingEvent.Reason,
		scalingEvent.Status,
	)

	if err != nil {
		logger.Errorf("Failed to persist scaling event: %v", err)
	}
}

func (l *EventLogger) persistLoadSample(event *models.Event) {
	sample, ok := event.Data.(models.LoadSample)
	if !ok {
		return
	}

	query := `
		INSERT INTO load_history (time, fleet_id, requests)
		VALUES ($1, $2, $3)`

	_, err := l.db.ExecContext(l.ctx, query, sample.Timestamp, event.FleetID, sample.PredictedLoad)
	if err != nil {
		logger.Errorf("Failed to persist load sample: %v", err)
	}
}
