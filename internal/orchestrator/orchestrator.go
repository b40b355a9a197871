package orchestrator

import (
	"context"
	"fmt"
	"sync"

	"github.com/K-vibe-sat-canh/autoscaling/internal/events"
	"github.com/K-vibe-sat-canh/autoscaling/internal/loadsource"
	"github.com/K-vibe-sat-canh/autoscaling/internal/logger"
	"github.com/K-vibe-sat-canh/autoscaling/internal/policy"
	"github.com/K-vibe-sat-canh/autoscaling/internal/predictor"
	"github.com/K-vibe-sat-canh/autoscaling/internal/scaler"
	"github.com/K-vibe-sat-canh/autoscaling/pkg/config"
	"github.com/K-vibe-sat-canh/autoscaling/pkg/database"
	"github.com/K-vibe-sat-canh/autoscaling/pkg/models"
)

// Orchestrator owns one pipeline per fleet plus the shared event plumbing.
type Orchestrator struct {
	config      *config.Config
	db          *database.DB
	eventBus    *events.EventBus
	eventLogger *events.EventLogger
	pipelines   map[string]*Pipeline
	mu          sync.RWMutex
	ctx         context.Context
	cancel      context.CancelFunc
}

func New(cfg *config.Config, db *database.DB) *Orchestrator {
	ctx, cancel := context.WithCancel(context.Background())

	eventBus := events.NewEventBus(cfg.Events.BufferSize)

	// The event logger drains every event type.
	allEvents := eventBus.SubscribeAll()
	eventLogger := events.NewEventLogger(db, allEvents)

	return &Orchestrator{
		config:      cfg,
		db:          db,
		eventBus:    eventBus,
		eventLogger: eventLogger,
		pipelines:   make(map[string]*Pipeline),
		ctx:         ctx,
		cancel:      cancel,
	}
}

func (o *Orchestrator) Start() error {
	logger.Info("Orchestrator starting")
	o.eventLogger.Start()
	return nil
}

func (o *Orchestrator) Stop() {
	logger.Info("Orchestrator stopping")

	o.mu.Lock()
	for fleetID, pipeline := range o.pipelines {
		logger.Infof("Stopping pipeline for fleet %s", fleetID)
		pipeline.Stop()
	}
	o.mu.Unlock()

	o.cancel()
	o.eventLogger.Stop()
	o.eventBus.Close()

	logger.Info("Orchestrator stopped")
}

// StartFleet builds and launches a pipeline for the fleet using its own
// policy. Each fleet gets its own scaling log so simulations and audits can
// read a single fleet's history without filtering.
func (o *Orchestrator) StartFleet(fleet *models.Fleet, source loadsource.Source, scal scaler.Scaler) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if _, exists := o.pipelines[fleet.ID]; exists {
		return fmt.Errorf("pipeline already exists for fleet %s", fleet.ID)
	}

	engine, err := policy.NewEngine(fleet.Policy)
	if err != nil {
		return fmt.Errorf("invalid policy for fleet %s: %w", fleet.ID, err)
	}

	pred, err := predictor.New(o.config.Predictor)
	if err != nil {
		return fmt.Errorf("failed to build predictor: %w", err)
	}

	pipeline := NewPipeline(PipelineConfig{
		FleetID:        fleet.ID,
		FetchInterval:  o.config.LoadSource.Interval,
		Source:         source,
		Engine:         engine,
		Predictor:      pred,
		Scaler:         scal,
		EventPublisher: events.NewPublisher(o.eventBus),
		ScalingLog:     events.NewScalingLog(),
		StartServers:   0, // start at the policy minimum
	})

	if err := pipeline.Start(); err != nil {
		return fmt.Errorf("failed to start pipeline: %w", err)
	}

	o.pipelines[fleet.ID] = pipeline
	logger.WithFleet(fleet.ID).Info("Fleet pipeline started")

	return nil
}

func (o *Orchestrator) StopFleet(fleetID string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	pipeline, exists := o.pipelines[fleetID]
	if !exists {
		return fmt.Errorf("no pipeline found for fleet %s", fleetID)
	}

	pipeline.Stop()
	delete(o.pipelines, fleetID)
	logger.WithFleet(fleetID).Info("Fleet pipeline stopped")

	return nil
}

func (o *Orchestrator) GetPipeline(fleetID string) (*Pipeline, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	pipeline, exists := o.pipelines[fleetID]
	return pipeline, exists
}

func (o *Orchestrator) GetFleetStatus(fleetID string) (bool, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	pipeline, exists := o.pipelines[fleetID]
	if !exists {
		return false, fmt.Errorf("no pipeline found for fleet %s", fleetID)
	}

	return pipeline.IsRunning(), nil
}

func (o *Orchestrator) ListRunningFleets() []string {
	o.mu.RLock()
	defer o.mu.RUnlock()

	fleets := make([]string, 0, len(o.pipelines))
	for fleetID, pipeline := range o.pipelines {
		if pipeline.IsRunning() {
			fleets = append(fleets, fleetID)
		}
	}
	return fleets
}

func (o *Orchestrator) SubscribeEvents(eventType models.EventType) <-chan *models.Event {
	return o.eventBus.Subscribe(eventType)
}

func (o *Orchestrator) SubscribeAllEvents() <-chan *models.Event {
	return o.eventBus.SubscribeAll()
}
