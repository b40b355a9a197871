package events

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/K-vibe-sat-canh/autoscaling/pkg/models"
)

func makeEvent(action models.ScalingAction, before, after int, ts time.Time) models.ScalingEvent {
	return models.ScalingEvent{
		FleetID:       "fleet-1",
		Timestamp:     ts,
		Action:        action,
		ServersBefore: before,
		ServersAfter:  after,
		Status:        models.ScalingEventSuccess,
	}
}

func TestScalingLog_AppendPreservesOrder(t *testing.T) {
	log := NewScalingLog()
	base := time.Now()

	log.Append(makeEvent(models.ActionScaleUp, 2, 3, base))
	log.Append(makeEvent(models.ActionScaleUp, 3, 5, base.Add(time.Minute)))
	log.Append(makeEvent(models.ActionScaleDown, 5, 4, base.Add(2*time.Minute)))

	events := log.Events()
	require.Len(t, events, 3)
	assert.Equal(t, 3, log.Len())
	assert.Equal(t, models.ActionScaleUp, events[0].Action)
	assert.Equal(t, models.ActionScaleDown, events[2].Action)

	last, ok := log.Last()
	require.True(t, ok)
	assert.Equal(t, 4, last.ServersAfter)
}

func TestScalingLog_EmptyLast(t *testing.T) {
	log := NewScalingLog()

	_, ok := log.Last()
	assert.False(t, ok)
	assert.Equal(t, 0, log.Len())
	assert.Empty(t, log.Events())
}

func TestScalingLog_EventsReturnsCopy(t *testing.T) {
	log := NewScalingLog()
	log.Append(makeEvent(models.ActionScaleUp, 1, 2, time.Now()))

	events := log.Events()
	events[0].ServersAfter = 99

	fresh := log.Events()
	assert.Equal(t, 2, fresh[0].ServersAfter)
}

func TestScalingLog_ConcurrentAppend(t *testing.T) {
	log := NewScalingLog()
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				log.Append(makeEvent(models.ActionScaleUp, 1, 2, time.Now()))
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1000, log.Len())
}
