package events

import (
	"github.com/K-vibe-sat-canh/autoscaling/pkg/models"
)

// Publisher is a typed facade over the event bus for the pipeline stages.
type Publisher struct {
	bus     *EventBus
	traceID string
}

func NewPublisher(bus *EventBus) *Publisher {
	return &Publisher{bus: bus}
}

func (p *Publisher) WithTraceID(traceID string) *Publisher {
	return &Publisher{bus: p.bus, traceID: traceID}
}

func (p *Publisher) publish(event *models.Event) {
	if p.traceID != "" {
		event.TraceID = p.traceID
	}
	p.bus.Publish(event)
}

func (p *Publisher) LoadSampled(fleetID string, sample models.LoadSample) {
	event := models.NewEvent(models.EventTypeLoadSampled, fleetID, "Load sampled").
		WithData(sample)
	p.publish(event)
}

func (p *Publisher) ForecastMade(fleetID string, forecast []models.LoadSample) {
	event := models.NewEvent(models.EventTypeForecastMade, fleetID, "Forecast produced").
		WithData(forecast)
	p.publish(event)
}

func (p *Publisher) DecisionMade(fleetID string, decision *models.ScalingDecision) {
	msg := "Scaling decision: " + string(decision.Action)
	event := models.NewEvent(models.EventTypeDecisionMade, fleetID, msg).
		WithData(decision)

	if decision.Saturated {
		event.WithSeverity(models.SeverityWarning)
	}

	p.publish(event)
}

func (p *Publisher) ScalingStarted(fleetID string, decision *models.ScalingDecision) {
	msg := "Scaling started: " + string(decision.Action)
	event := models.NewEvent(models.EventTypeScalingStarted, fleetID, msg).
		WithData(decision)
	p.publish(event)
}

func (p *Publisher) ScalingComplete(fleetID string, scalingEvent *models.ScalingEvent) {
	msg := "Scaling complete: " + string(scalingEvent.Action)
	event := models.NewEvent(models.EventTypeScalingComplete, fleetID, msg).
		WithData(scalingEvent)
	p.publish(event)
}

func (p *Publisher) ScalingFailed(fleetID string, reason string, err error) {
	event := models.NewEvent(models.EventTypeScalingFailed, fleetID, "Scaling failed: "+reason).
		WithSeverity(models.SeverityCritical).
		WithData(map[string]interface{}{
			"reason": reason,
			"error":  err.Error(),
		})
	p.publish(event)
}

func (p *Publisher) InstanceAdded(instance *models.Instance) {
	event := models.NewEvent(models.EventTypeInstanceAdded, instance.FleetID, "Instance added").
		WithData(instance)
	p.publish(event)
}

func (p *Publisher) InstanceRemoved(instance *models.Instance) {
	event := models.NewEvent(models.EventTypeInstanceRemoved, instance.FleetID, "Instance removed").
		WithData(instance)
	p.publish(event)
}

func (p *Publisher) Alert(fleetID string, severity models.EventSeverity, message string, data interface{}) {
	event := models.NewEvent(models.EventTypeAlert, fleetID, message).
		WithSeverity(severity).
		WithData(data)
	p.publish(event)
}

func (p *Publisher) Error(fleetID string, message string, err error) {
	event := models.NewEvent(models.EventTypeError, fleetID, message).
		WithSeverity(models.SeverityCritical).
		WithData(map[string]interface{}{
			"error": err.Error(),
		})
	p.publish(event)
}
