package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/K-vibe-sat-canh/autoscaling/internal/metrics"
	"github.com/K-vibe-sat-canh/autoscaling/internal/simulation"
	"github.com/K-vibe-sat-canh/autoscaling/pkg/config"
	"github.com/K-vibe-sat-canh/autoscaling/pkg/database/queries"
	"github.com/K-vibe-sat-canh/autoscaling/pkg/models"
	"github.com/K-vibe-sat-canh/autoscaling/pkg/validation"
	"github.com/gin-gonic/gin"
)

type SimulationHandler struct {
	fleetRepo *queries.FleetRepository
	loadRepo  *queries.LoadHistoryRepository
	simRepo   *queries.SimulationRepository
	cfg       config.SimulationConfig
}

func NewSimulationHandler(fleetRepo *queries.FleetRepository, loadRepo *queries.LoadHistoryRepository, simRepo *queries.SimulationRepository, cfg config.SimulationConfig) *SimulationHandler {
	return &SimulationHandler{
		fleetRepo: fleetRepo,
		loadRepo:  loadRepo,
		simRepo:   simRepo,
		cfg:       cfg,
	}
}

type SampleInput struct {
	Timestamp time.Time `json:"timestamp" binding:"required"`
	Requests  float64   `json:"requests"`
}

type RunSimulationRequest struct {
	// FleetID selects a fleet whose policy (and, when Samples is empty,
	// recorded load history) drives the run.
	FleetID string `json:"fleet_id"`

	// Policy overrides the fleet policy. One of FleetID or Policy must be
	// set; when both are, Policy wins.
	Policy *models.PolicyConfig `json:"policy"`

	Samples []SampleInput `json:"samples"`

	StaticServers int           `json:"static_servers" binding:"omitempty,min=1"`
	StartServers  int           `json:"start_servers" binding:"omitempty,min=1"`
	Interval      time.Duration `json:"interval" binding:"omitempty,min=0"`
}

// Run replays a load series through the policy engine and reports autoscaling
// cost against a fixed-size baseline.
func (h *SimulationHandler) Run(c *gin.Context) {
	var req RunSimulationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if h.cfg.MaxSamples > 0 && len(req.Samples) > h.cfg.MaxSamples {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("too many samples, maximum is %d", h.cfg.MaxSamples),
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	policyConfig, fleetID, err := h.resolvePolicy(ctx, &req)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, queries.ErrFleetNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	samples, err := h.resolveSamples(ctx, &req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := validation.ValidateSamples(samples); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	staticServers := req.StaticServers
	if staticServers == 0 {
		staticServers = h.cfg.StaticBaselineServers
	}
	startServers := req.StartServers
	if startServers == 0 {
		startServers = h.cfg.StartServers
	}
	interval := req.Interval
	if interval == 0 {
		interval = h.cfg.Interval
	}

	sim, err := simulation.New(policyConfig)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := sim.Run(samples, staticServers, simulation.Options{
		StartServers: startServers,
		Interval:     interval,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	metrics.Get().IncSimulations()

	response := gin.H{
		"policy": policyConfig,
		"result": result,
	}

	if h.simRepo != nil {
		id, err := h.simRepo.Insert(ctx, fleetID, policyConfig, result)
		if err == nil {
			response["id"] = id
		}
	}

	c.JSON(http.StatusOK, response)
}

// List returns the most recent persisted simulation runs.
func (h *SimulationHandler) List(c *gin.Context) {
	if h.simRepo == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "simulation persistence is disabled"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	records, err := h.simRepo.GetRecent(ctx, 50)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch simulations"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"simulations": records,
		"count":       len(records),
	})
}

func (h *SimulationHandler) resolvePolicy(ctx context.Context, req *RunSimulationRequest) (models.PolicyConfig, *string, error) {
	if req.Policy != nil {
		var fleetID *string
		if req.FleetID != "" {
			fleetID = &req.FleetID
		}
		return *req.Policy, fleetID, req.Policy.Validate()
	}

	if req.FleetID == "" {
		return models.DefaultPolicyConfig(), nil, nil
	}

	if h.fleetRepo == nil {
		return models.PolicyConfig{}, nil, errors.New("fleet lookup requires database persistence")
	}

	fleet, err := h.fleetRepo.GetByID(ctx, req.FleetID)
	if err != nil {
		return models.PolicyConfig{}, nil, err
	}

	return fleet.Policy, &fleet.ID, nil
}

func (h *SimulationHandler) resolveSamples(ctx context.Context, req *RunSimulationRequest) ([]models.LoadSample, error) {
	if len(req.Samples) > 0 {
		samples := make([]models.LoadSample, len(req.Samples))
		for i, s := range req.Samples {
			samples[i] = models.LoadSample{
				Timestamp:     s.Timestamp,
				PredictedLoad: s.Requests,
			}
		}
		return samples, nil
	}

	if req.FleetID == "" || h.loadRepo == nil {
		return nil, errors.New("samples are required when no fleet load history is available")
	}

	limit := h.cfg.MaxSamples
	if limit <= 0 {
		limit = 1440
	}

	samples, err := h.loadRepo.GetRecent(ctx, req.FleetID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load fleet history: %w", err)
	}
	if len(samples) == 0 {
		return nil, errors.New("fleet has no recorded load history")
	}

	return samples, nil
}
