package orchestrator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/K-vibe-sat-canh/autoscaling/internal/events"
	"github.com/K-vibe-sat-canh/autoscaling/internal/loadsource"
	"github.com/K-vibe-sat-canh/autoscaling/internal/policy"
	"github.com/K-vibe-sat-canh/autoscaling/internal/predictor"
	"github.com/K-vibe-sat-canh/autoscaling/internal/scaler"
	"github.com/K-vibe-sat-canh/autoscaling/pkg/config"
	"github.com/K-vibe-sat-canh/autoscaling/pkg/models"
)

func testPipeline(t *testing.T, source loadsource.Source, cooldown time.Duration) (*Pipeline, *events.ScalingLog) {
	t.Helper()

	pol := models.PolicyConfig{
		CapacityPerServer:  1000,
		ScaleUpThreshold:   0.85,
		ScaleDownThreshold: 0.30,
		CooldownPeriod:     cooldown,
		MinServers:         1,
		MaxServers:         20,
		CostPerServerHour:  0.45,
	}
	engine, err := policy.NewEngine(pol)
	require.NoError(t, err)

	pred, err := predictor.New(config.PredictorConfig{Type: "moving_average", Window: 1})
	require.NoError(t, err)

	scal := scaler.NewSimulatedScaler(scaler.SimulatedScalerConfig{
		ProvisionTime: time.Millisecond,
		DrainTimeout:  time.Millisecond,
	})
	scal.InitializeFleet("fleet-1", 2)

	bus := events.NewEventBus(100)
	t.Cleanup(bus.Close)

	log := events.NewScalingLog()

	pipeline := NewPipeline(PipelineConfig{
		FleetID:        "fleet-1",
		FetchInterval:  20 * time.Millisecond,
		Source:         source,
		Engine:         engine,
		Predictor:      pred,
		Scaler:         scal,
		EventPublisher: events.NewPublisher(bus),
		ScalingLog:     log,
		StartServers:   2,
	})

	return pipeline, log
}

func TestPipeline_ScalesUpUnderLoad(t *testing.T) {
	source := loadsource.NewMockSource(loadsource.MockSourceConfig{Variance: 0.001})
	source.SetFleetLoad("fleet-1", 2500)

	pipeline, log := testPipeline(t, source, 5*time.Minute)

	require.NoError(t, pipeline.Start())
	defer pipeline.Stop()

	require.Eventually(t, func() bool {
		return pipeline.State().CurrentServers == 3
	}, 2*time.Second, 10*time.Millisecond)

	require.Eventually(t, func() bool {
		return log.Len() >= 1
	}, 2*time.Second, 10*time.Millisecond)

	event, ok := log.Last()
	require.True(t, ok)
	assert.Equal(t, models.ActionScaleUp, event.Action)
	assert.Equal(t, 2, event.ServersBefore)
	assert.Equal(t, 3, event.ServersAfter)

	// The cooldown keeps the fleet pinned even though load stays high.
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 3, pipeline.State().CurrentServers)
	assert.Equal(t, 1, log.Len())
}

func TestPipeline_RecordsHistory(t *testing.T) {
	source := loadsource.NewMockSource(loadsource.MockSourceConfig{Variance: 0.001})
	source.SetFleetLoad("fleet-1", 1500)

	pipeline, _ := testPipeline(t, source, 0)

	require.NoError(t, pipeline.Start())
	defer pipeline.Stop()

	require.Eventually(t, func() bool {
		return len(pipeline.History()) >= 3
	}, 2*time.Second, 10*time.Millisecond)

	history := pipeline.History()
	for _, sample := range history {
		assert.InDelta(t, 1500, sample.PredictedLoad, 1)
	}
}

func TestPipeline_SurvivesFetchFailures(t *testing.T) {
	source := loadsource.NewMockSource(loadsource.MockSourceConfig{Variance: 0.001})
	source.SetShouldFail(true, nil)

	pipeline, log := testPipeline(t, source, 0)

	require.NoError(t, pipeline.Start())

	time.Sleep(100 * time.Millisecond)

	// No decisions were made, but the pipeline is still running.
	assert.True(t, pipeline.IsRunning())
	assert.Equal(t, 0, log.Len())
	assert.Equal(t, 2, pipeline.State().CurrentServers)

	pipeline.Stop()
	assert.False(t, pipeline.IsRunning())
}

func TestPipeline_StopIsIdempotent(t *testing.T) {
	source := loadsource.NewMockSource(loadsource.MockSourceConfig{Variance: 0.001})
	source.SetFleetLoad("fleet-1", 1000)

	pipeline, _ := testPipeline(t, source, 0)
	require.NoError(t, pipeline.Start())

	pipeline.Stop()
	assert.NotPanics(t, pipeline.Stop)
}
