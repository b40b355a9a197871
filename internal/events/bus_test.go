package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/K-vibe-sat-canh/autoscaling/pkg/models"
)

func TestEventBus_SubscribeReceivesMatchingType(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	ch := bus.Subscribe(models.EventTypeDecisionMade)

	bus.Publish(models.NewEvent(models.EventTypeDecisionMade, "fleet-1", "decided"))
	bus.Publish(models.NewEvent(models.EventTypeAlert, "fleet-1", "alerting"))

	select {
	case event := <-ch:
		assert.Equal(t, models.EventTypeDecisionMade, event.Type)
		assert.Equal(t, "fleet-1", event.FleetID)
	case <-time.After(time.Second):
		t.Fatal("expected event on subscribed channel")
	}

	select {
	case event := <-ch:
		t.Fatalf("unexpected event of type %s", event.Type)
	default:
	}
}

func TestEventBus_SubscribeAllReceivesEverything(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	ch := bus.SubscribeAll()

	bus.Publish(models.NewEvent(models.EventTypeLoadSampled, "fleet-1", "sampled"))
	bus.Publish(models.NewEvent(models.EventTypeScalingComplete, "fleet-1", "scaled"))

	var received []models.EventType
	for i := 0; i < 2; i++ {
		select {
		case event := <-ch:
			received = append(received, event.Type)
		case <-time.After(time.Second):
			t.Fatal("expected two events")
		}
	}

	assert.Equal(t, []models.EventType{models.EventTypeLoadSampled, models.EventTypeScalingComplete}, received)
}

func TestEventBus_FullChannelDropsInsteadOfBlocking(t *testing.T) {
	bus := NewEventBus(1)
	defer bus.Close()

	ch := bus.Subscribe(models.EventTypeAlert)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 5; i++ {
			bus.Publish(models.NewEvent(models.EventTypeAlert, "fleet-1", "alert"))
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber channel")
	}

	// Only the buffered event survives.
	require.Len(t, ch, 1)
}

func TestEventBus_CloseStopsDelivery(t *testing.T) {
	bus := NewEventBus(10)
	ch := bus.SubscribeAll()

	bus.Close()

	// Channel is closed; publishing afterwards is a no-op.
	bus.Publish(models.NewEvent(models.EventTypeAlert, "fleet-1", "late"))

	_, ok := <-ch
	assert.False(t, ok)
}

func TestEventBus_CloseIsIdempotent(t *testing.T) {
	bus := NewEventBus(10)
	bus.SubscribeAll()

	bus.Close()
	assert.NotPanics(t, func() { bus.Close() })
}
