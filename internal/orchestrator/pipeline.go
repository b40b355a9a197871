package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/K-vibe-sat-canh/autoscaling/internal/events"
	"github.com/K-vibe-sat-canh/autoscaling/internal/loadsource"
	"github.com/K-vibe-sat-canh/autoscaling/internal/logger"
	"github.com/K-vibe-sat-canh/autoscaling/internal/metrics"
	"github.com/K-vibe-sat-canh/autoscaling/internal/policy"
	"github.com/K-vibe-sat-canh/autoscaling/internal/predictor"
	"github.com/K-vibe-sat-canh/autoscaling/internal/scaler"
	"github.com/K-vibe-sat-canh/autoscaling/pkg/models"
)

const maxHistoryLength = 1000

type PipelineConfig struct {
	FleetID        string
	FetchInterval  time.Duration
	Source         loadsource.Source
	Engine         *policy.Engine
	Predictor      predictor.Predictor
	Scaler         scaler.Scaler
	EventPublisher *events.Publisher
	ScalingLog     *events.ScalingLog
	StartServers   int
}

// Pipeline drives one fleet: fetch load, forecast, decide, execute. It is the
// single writer of the fleet's scaling state.
type Pipeline struct {
	config  PipelineConfig
	state   models.ScalingState
	history []models.LoadSample
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
	mu      sync.Mutex
}

func NewPipeline(cfg PipelineConfig) *Pipeline {
	if cfg.FetchInterval == 0 {
		cfg.FetchInterval = 10 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Pipeline{
		config: cfg,
		state:  models.NewScalingState(cfg.Engine.Policy(), cfg.StartServers),
		ctx:    ctx,
		cancel: cancel,
	}
}

func (p *Pipeline) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return nil
	}

	p.running = true
	p.wg.Add(1)
	go p.run()

	logger.WithFleet(p.config.FleetID).Info("Pipeline started")
	return nil
}

func (p *Pipeline) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	p.mu.Unlock()

	p.cancel()
	p.wg.Wait()

	logger.WithFleet(p.config.FleetID).Info("Pipeline stopped")
}

func (p *Pipeline) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// State returns a snapshot of the fleet's scaling state.
func (p *Pipeline) State() models.ScalingState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// History returns a copy of the recorded load samples, oldest first.
func (p *Pipeline) History() []models.LoadSample {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]models.LoadSample, len(p.history))
	copy(out, p.history)
	return out
}

func (p *Pipeline) run() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.config.FetchInterval)
	defer ticker.Stop()

	// Run immediately on start
	p.runCycle()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.runCycle()
		}
	}
}

func (p *Pipeline) runCycle() {
	// Leave a second of slack before the next tick; short test intervals
	// just get the full interval.
	timeout := p.config.FetchInterval - time.Second
	if timeout <= 0 {
		timeout = p.config.FetchInterval
	}

	ctx, cancel := context.WithTimeout(p.ctx, timeout)
	defer cancel()

	fleetID := p.config.FleetID

	// Step 1: fetch the current load
	sample, err := p.fetch(ctx)
	if err != nil {
		logger.WithFleet(fleetID).Errorf("Load fetch failed: %v", err)
		metrics.Get().IncLoadFetchErrors(fleetID)
		p.config.EventPublisher.Error(fleetID, "Load fetch failed", err)
		return
	}

	// Step 2: forecast the next interval; fall back to the raw observation
	// until enough history accumulates.
	decisionInput := p.forecast(sample)

	// Step 3: decide
	decision := p.decide(decisionInput)

	// Step 4: execute when the fleet size actually changes
	if decision.ShouldExecute() {
		p.execute(ctx, decision)
	}
}

func (p *Pipeline) fetch(ctx context.Context) (models.LoadSample, error) {
	started := time.Now()
	sample, err := p.config.Source.Fetch(ctx, p.config.FleetID)
	if err != nil {
		return models.LoadSample{}, err
	}

	m := metrics.Get()
	m.IncLoadFetches(p.config.FleetID)
	m.SetFetchLatency(p.config.FleetID, time.Since(started))
	m.SetLoad(p.config.FleetID, sample.PredictedLoad)

	p.mu.Lock()
	p.history = append(p.history, sample)
	if len(p.history) > maxHistoryLength {
		p.history = p.history[len(p.history)-maxHistoryLength:]
	}
	p.mu.Unlock()

	p.config.EventPublisher.LoadSampled(p.config.FleetID, sample)
	return sample, nil
}

func (p *Pipeline) forecast(sample models.LoadSample) models.LoadSample {
	if p.config.Predictor == nil {
		return sample
	}

	forecast, err := p.config.Predictor.Predict(p.History(), 1)
	if err != nil || len(forecast) == 0 {
		// Not enough history yet; the raw sample drives the decision.
		return sample
	}

	p.config.EventPublisher.ForecastMade(p.config.FleetID, forecast)

	// Keep the observation timestamp: the decision is about now.
	return models.LoadSample{
		Timestamp:     sample.Timestamp,
		PredictedLoad: forecast[0].PredictedLoad,
	}
}

func (p *Pipeline) decide(sample models.LoadSample) models.ScalingDecision {
	started := time.Now()

	p.mu.Lock()
	decision, nextState := p.config.Engine.Decide(p.state, sample, time.Now())
	p.state = nextState
	p.mu.Unlock()

	decision.FleetID = p.config.FleetID

	m := metrics.Get()
	m.IncDecision(p.config.FleetID, string(decision.Action))
	m.SetDecisionLatency(p.config.FleetID, time.Since(started))
	m.SetUtilization(p.config.FleetID, decision.Utilization)
	m.SetServerCount(p.config.FleetID, nextState.CurrentServers)

	p.config.EventPublisher.DecisionMade(p.config.FleetID, &decision)
	return decision
}

func (p *Pipeline) execute(ctx context.Context, decision models.ScalingDecision) {
	fleetID := p.config.FleetID
	p.config.EventPublisher.ScalingStarted(fleetID, &decision)

	var result *scaler.ScaleResult
	var err error

	switch decision.Action {
	case models.ActionScaleUp:
		result, err = p.config.Scaler.ScaleUp(ctx, fleetID, decision.ServerDelta())
	case models.ActionScaleDown:
		result, err = p.config.Scaler.ScaleDown(ctx, fleetID, -decision.ServerDelta())
	}

	if err != nil {
		p.config.EventPublisher.ScalingFailed(fleetID, decision.Reason, err)
		return
	}

	status := models.ScalingEventSuccess
	if result != nil && result.PartialSuccess {
		status = models.ScalingEventPartial
	}

	event := models.NewScalingEvent(decision, status)
	p.config.ScalingLog.Append(*event)
	p.config.EventPublisher.ScalingComplete(fleetID, event)
	metrics.Get().IncScalingEvent(fleetID, string(decision.Action))

	logger.WithFleet(fleetID).Infof(
		"Scaling complete: %s %d -> %d servers",
		decision.Action, decision.FromServers, decision.ToServers,
	)
}
