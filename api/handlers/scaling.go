package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/K-vibe-sat-canh/autoscaling/internal/policy"
	"github.com/K-vibe-sat-canh/autoscaling/pkg/database/queries"
	"github.com/K-vibe-sat-canh/autoscaling/pkg/models"
	"github.com/gin-gonic/gin"
)

type ScalingHandler struct {
	fleetRepo    *queries.FleetRepository
	eventRepo    *queries.ScalingEventRepository
	manager      FleetManager
	defaultLimit int
	maxLimit     int
}

func NewScalingHandler(fleetRepo *queries.FleetRepository, eventRepo *queries.ScalingEventRepository, manager FleetManager, defaultLimit, maxLimit int) *ScalingHandler {
	if defaultLimit <= 0 {
		defaultLimit = 50
	}
	if maxLimit <= 0 {
		maxLimit = 500
	}
	return &ScalingHandler{
		fleetRepo:    fleetRepo,
		eventRepo:    eventRepo,
		manager:      manager,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}
}

func (h *ScalingHandler) parseLimit(c *gin.Context) int {
	limit := h.defaultLimit
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > h.maxLimit {
		limit = h.maxLimit
	}
	return limit
}

func parseTimeRange(c *gin.Context) (time.Time, time.Time, error) {
	from := time.Now().Add(-24 * time.Hour)
	to := time.Now()

	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return from, to, errors.New("invalid 'from' timestamp, expected RFC3339")
		}
		from = parsed
	}
	if raw := c.Query("to"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return from, to, errors.New("invalid 'to' timestamp, expected RFC3339")
		}
		to = parsed
	}

	return from, to, nil
}

// ListFleetEvents returns the scaling history for one fleet.
func (h *ScalingHandler) ListFleetEvents(c *gin.Context) {
	id := c.Param("id")

	from, to, err := parseTimeRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	events, err := h.eventRepo.GetByFleet(ctx, id, from, to, h.parseLimit(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch scaling events"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"fleet_id": id,
		"events":   events,
		"count":    len(events),
	})
}

// GetStats aggregates scaling activity for one fleet over a time range.
func (h *ScalingHandler) GetStats(c *gin.Context) {
	id := c.Param("id")

	from, to, err := parseTimeRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	stats, err := h.eventRepo.GetStats(ctx, id, from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch scaling stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// ListRecentEvents returns the newest scaling events across all fleets.
func (h *ScalingHandler) ListRecentEvents(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	events, err := h.eventRepo.GetRecent(ctx, h.parseLimit(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch scaling events"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"events": events,
		"count":  len(events),
	})
}

type DecideRequest struct {
	Requests       float64 `json:"requests" binding:"required,min=0"`
	CurrentServers int     `json:"current_servers" binding:"omitempty,min=1"`
}

// Decide runs a single advisory policy evaluation for a fleet. The decision
// is not executed and no cooldown is opened; use it to preview what the
// engine would do with a given load.
func (h *ScalingHandler) Decide(c *gin.Context) {
	id := c.Param("id")

	var req DecideRequest
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

	engine, err := policy.NewEngine(fleet.Policy)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "invalid fleet policy: " + err.Error()})
		return
	}

	// Start from the live pipeline state when the fleet is running, so the
	// preview reflects actual server count and cooldown.
	state := models.NewScalingState(fleet.Policy, req.CurrentServers)
	if h.manager != nil {
		if pipeline, ok := h.manager.GetPipeline(id); ok {
			state = pipeline.State()
			if req.CurrentServers > 0 {
				state.CurrentServers = fleet.Policy.ClampServers(req.CurrentServers)
			}
		}
	}

	now := time.Now()
	sample := models.LoadSample{Timestamp: now, PredictedLoad: req.Requests}
	decision, _ := engine.Decide(state, sample, now)
	decision.FleetID = id

	c.JSON(http.StatusOK, gin.H{
		"decision": decision,
		"advisory": true,
	})
}
