package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/K-vibe-sat-canh/autoscaling/internal/loadsource"
	"github.com/K-vibe-sat-canh/autoscaling/internal/metrics"
	"github.com/K-vibe-sat-canh/autoscaling/internal/orchestrator"
	"github.com/K-vibe-sat-canh/autoscaling/internal/resilience"
	"github.com/K-vibe-sat-canh/autoscaling/internal/scaler"
	"github.com/K-vibe-sat-canh/autoscaling/pkg/config"
	"github.com/K-vibe-sat-canh/autoscaling/pkg/database/queries"
	"github.com/K-vibe-sat-canh/autoscaling/pkg/models"
	"github.com/K-vibe-sat-canh/autoscaling/pkg/validation"
	"github.com/gin-gonic/gin"
)

// FleetManager is the slice of the orchestrator the fleet handler needs.
type FleetManager interface {
	StartFleet(fleet *models.Fleet, source loadsource.Source, scal scaler.Scaler) error
	StopFleet(fleetID string) error
	GetFleetStatus(fleetID string) (bool, error)
	GetPipeline(fleetID string) (*orchestrator.Pipeline, bool)
	SubscribeAllEvents() <-chan *models.Event
}

type FleetHandler struct {
	fleetRepo  *queries.FleetRepository
	manager    FleetManager
	loadSource config.LoadSourceConfig
	scalerCfg  config.ScalerConfig
	httpClient *http.Client
}

func NewFleetHandler(fleetRepo *queries.FleetRepository, manager FleetManager, loadSource config.LoadSourceConfig, scalerCfg config.ScalerConfig) *FleetHandler {
	return &FleetHandler{
		fleetRepo:  fleetRepo,
		manager:    manager,
		loadSource: loadSource,
		scalerCfg:  scalerCfg,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type CreateFleetRequest struct {
	Name   string               `json:"name" binding:"required,min=1,max=100"`
	Policy *models.PolicyConfig `json:"policy"`
}

type UpdateFleetRequest struct {
	Name   string               `json:"name" binding:"omitempty,min=1,max=100"`
	Status string               `json:"status" binding:"omitempty,oneof=active paused"`
	Policy *models.PolicyConfig `json:"policy"`
}

type FleetResponse struct {
	ID        string              `json:"id"`
	Name      string              `json:"name"`
	Policy    models.PolicyConfig `json:"policy"`
	Status    string              `json:"status"`
	Running   bool                `json:"running"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

func (h *FleetHandler) toFleetResponse(f *models.Fleet) FleetResponse {
	running := false
	if h.manager != nil {
		running, _ = h.manager.GetFleetStatus(f.ID)
	}
	return FleetResponse{
		ID:        f.ID,
		Name:      f.Name,
		Policy:    f.Policy,
		Status:    string(f.Status),
		Running:   running,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

func getUserID(c *gin.Context) (int, bool) {
	if uid, exists := c.Get("user_id"); exists {
		if id, ok := uid.(int); ok {
			return id, true
		}
	}
	return 0, false
}

func (h *FleetHandler) List(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	fleets, err := h.fleetRepo.GetAll(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch fleets"})
		return
	}

	response := make([]FleetResponse, len(fleets))
	for i, fleet := range fleets {
		response[i] = h.toFleetResponse(fleet)
	}

	c.JSON(http.StatusOK, gin.H{
		"fleets": response,
		"count":  len(response),
	})
}

func (h *FleetHandler) Get(c *gin.Context) {
	id := c.Param("id")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	fleet, err := h.fleetRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, queries.ErrFleetNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "fleet not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch fleet"})
		return
	}

	c.JSON(http.StatusOK, h.toFleetResponse(fleet))
}

func (h *FleetHandler) Create(c *gin.Context) {
	var req CreateFleetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	req.Name = validation.SanitizeString(req.Name)
	if err := validation.ValidateFleetName(req.Name); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	policy := models.DefaultPolicyConfig()
	if req.Policy != nil {
		policy = *req.Policy
	}
	if err := policy.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := validation.ValidateServerCount(policy.MinServers, policy.MaxServers); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if existing, err := h.fleetRepo.GetByName(ctx, req.Name); err == nil && existing != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "fleet with this name already exists"})
		return
	}

	var userID *int
	if uid, ok := getUserID(c); ok {
		userID = &uid
	}

	fleet := models.NewFleet(req.Name, policy, userID)

	if err := h.fleetRepo.Create(ctx, fleet); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create fleet"})
		return
	}

	if h.manager != nil {
		if err := h.startPipeline(fleet); err != nil {
			c.JSON(http.StatusCreated, gin.H{
				"fleet":   h.toFleetResponse(fleet),
				"warning": "fleet created but monitoring failed to start: " + err.Error(),
			})
			return
		}
	}

	c.JSON(http.StatusCreated, h.toFleetResponse(fleet))
}

func (h *FleetHandler) Update(c *gin.Context) {
	id := c.Param("id")

	var req UpdateFleetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	fleet, err := h.fleetRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, queries.ErrFleetNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "fleet not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch fleet"})
		return
	}

	if req.Name != "" {
		name := validation.SanitizeString(req.Name)
		if err := validation.ValidateFleetName(name); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		fleet.Name = name
	}
	if req.Status != "" {
		fleet.Status = models.FleetStatus(req.Status)
	}
	if req.Policy != nil {
		if err := req.Policy.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		fleet.Policy = *req.Policy
	}

	if err := h.fleetRepo.Update(ctx, fleet); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update fleet"})
		return
	}

	// A policy change only takes effect after a pipeline restart.
	c.JSON(http.StatusOK, h.toFleetResponse(fleet))
}

func (h *FleetHandler) Delete(c *gin.Context) {
	id := c.Param("id")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if _, err := h.fleetRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, queries.ErrFleetNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "fleet not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch fleet"})
		return
	}

	if h.manager != nil {
		_ = h.manager.StopFleet(id) // not running is fine
	}

	h.deleteFromLoadGenerator(id)

	if err := h.fleetRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, queries.ErrFleetNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "fleet not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete fleet"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "fleet deleted"})
}

// Start begins the scaling pipeline for a fleet that is not running.
func (h *FleetHandler) Start(c *gin.Context) {
	id := c.Param("id")

	if h.manager == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "orchestrator not available"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	fleet, err := h.fleetRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, queries.ErrFleetNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "fleet not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch fleet"})
		return
	}

	if running, _ := h.manager.GetFleetStatus(id); running {
		c.JSON(http.StatusConflict, gin.H{"error": "fleet is already running"})
		return
	}

	if err := h.startPipeline(fleet); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start pipeline: " + err.Error()})
		return
	}

	_ = h.fleetRepo.UpdateStatus(ctx, id, models.FleetStatusActive)

	c.JSON(http.StatusOK, gin.H{"message": "fleet started", "fleet_id": id})
}

// Stop halts the scaling pipeline for a running fleet.
func (h *FleetHandler) Stop(c *gin.Context) {
	id := c.Param("id")

	if h.manager == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "orchestrator not available"})
		return
	}

	if err := h.manager.StopFleet(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "fleet is not running"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()
	_ = h.fleetRepo.UpdateStatus(ctx, id, models.FleetStatusPaused)

	c.JSON(http.StatusOK, gin.H{"message": "fleet stopped", "fleet_id": id})
}

// GetStatus returns the fleet's live pipeline state: server count, cooldown
// and recent load.
func (h *FleetHandler) GetStatus(c *gin.Context) {
	id := c.Param("id")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	fleet, err := h.fleetRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, queries.ErrFleetNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "fleet not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch fleet"})
		return
	}

	response := gin.H{
		"fleet_id": fleet.ID,
		"name":     fleet.Name,
		"status":   fleet.Status,
		"running":  false,
	}

	if h.manager != nil {
		if pipeline, ok := h.manager.GetPipeline(id); ok {
			state := pipeline.State()
			history := pipeline.History()

			response["running"] = pipeline.IsRunning()
			response["current_servers"] = state.CurrentServers
			if state.LastActionAt != nil {
				response["last_action_at"] = state.LastActionAt
				response["in_cooldown"] = state.InCooldown(fleet.Policy.CooldownPeriod, time.Now())
			}
			if len(history) > 0 {
				latest := history[len(history)-1]
				response["latest_load"] = latest.PredictedLoad
				response["latest_sample_at"] = latest.Timestamp
			}
		}
	}

	c.JSON(http.StatusOK, response)
}

// startPipeline wires a load source and scaler for the fleet and hands them
// to the orchestrator.
func (h *FleetHandler) startPipeline(fleet *models.Fleet) error {
	var inner loadsource.Source
	switch h.loadSource.Type {
	case "mock":
		inner = loadsource.NewMockSource(loadsource.MockSourceConfig{})
	default:
		h.createInLoadGenerator(fleet.ID)
		inner = loadsource.NewHTTPSource(loadsource.HTTPSourceConfig{
			Endpoint: h.loadSource.Endpoint + "/load",
			Timeout:  h.loadSource.Timeout,
		})
	}

	source := loadsource.NewResilientSource(loadsource.ResilientSourceConfig{
		Source:        inner,
		MaxFailures:   h.loadSource.CircuitBreaker.MaxFailures,
		Timeout:       h.loadSource.CircuitBreaker.Timeout,
		RetryAttempts: h.loadSource.RetryAttempts,
		OnStateChange: func(name string, from, to resilience.State) {
			metrics.Get().SetCircuitBreakerState(name, int(to))
		},
	})

	scal := scaler.NewSimulatedScaler(scaler.SimulatedScalerConfig{
		ProvisionTime: h.scalerCfg.ProvisionTime,
		DrainTimeout:  h.scalerCfg.DrainTimeout,
	})
	scal.InitializeFleet(fleet.ID, fleet.Policy.MinServers)

	return h.manager.StartFleet(fleet, source, scal)
}

// createInLoadGenerator registers the fleet with the load generator so its
// /load endpoint starts answering.
func (h *FleetHandler) createInLoadGenerator(fleetID string) {
	payload := map[string]interface{}{
		"base_requests": 1500.0,
		"variance":      0.1,
		"pattern":       "daily",
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return
	}

	url := h.loadSource.Endpoint + "/fleets/" + fleetID
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return
	}
	defer resp.Body.Close()
}

func (h *FleetHandler) deleteFromLoadGenerator(fleetID string) {
	url := h.loadSource.Endpoint + "/fleets/" + fleetID
	req, err := http.NewRequest(http.MethodDelete, url, nil)
	if err != nil {
		return
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return
	}
	defer resp.Body.Close()
}
