package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/K-vibe-sat-canh/autoscaling/internal/predictor"
	"github.com/K-vibe-sat-canh/autoscaling/pkg/config"
	"github.com/K-vibe-sat-canh/autoscaling/pkg/database/queries"
	"github.com/K-vibe-sat-canh/autoscaling/pkg/models"
	"github.com/gin-gonic/gin"
)

type PredictionHandler struct {
	loadRepo *queries.LoadHistoryRepository
	manager  FleetManager
	cfg      config.PredictorConfig
}

func NewPredictionHandler(loadRepo *queries.LoadHistoryRepository, manager FleetManager, cfg config.PredictorConfig) *PredictionHandler {
	return &PredictionHandler{
		loadRepo: loadRepo,
		manager:  manager,
		cfg:      cfg,
	}
}

type PredictRequest struct {
	Horizon int    `json:"horizon" binding:"omitempty,min=1,max=1440"`
	Model   string `json:"model" binding:"omitempty,oneof=moving_average seasonal_naive"`
}

// Predict forecasts upcoming load for a fleet from its recorded history.
// The live pipeline's in-memory history is preferred; the database is the
// fallback for fleets that are not running.
func (h *PredictionHandler) Predict(c *gin.Context) {
	id := c.Param("id")

	var req PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cfg := h.cfg
	if req.Horizon > 0 {
		cfg.Horizon = req.Horizon
	}
	if req.Model != "" {
		cfg.Type = req.Model
	}
	if cfg.Horizon <= 0 {
		cfg.Horizon = 1
	}

	pred, err := predictor.New(cfg)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	history, err := h.fleetHistory(ctx, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load fleet history"})
		return
	}

	forecast, err := pred.Predict(history, cfg.Horizon)
	if err != nil {
		if errors.Is(err, predictor.ErrInsufficientHistory) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"fleet_id": id,
		"model":    pred.Name(),
		"horizon":  cfg.Horizon,
		"forecast": forecast,
	})
}

func (h *PredictionHandler) fleetHistory(ctx context.Context, fleetID string) ([]models.LoadSample, error) {
	if h.manager != nil {
		if pipeline, ok := h.manager.GetPipeline(fleetID); ok {
			if history := pipeline.History(); len(history) > 0 {
				return history, nil
			}
		}
	}

	if h.loadRepo == nil {
		return nil, nil
	}

	limit := h.cfg.Window
	if h.cfg.SeasonSize > limit {
		limit = h.cfg.SeasonSize
	}
	if limit < 60 {
		limit = 60
	}

	return h.loadRepo.GetRecent(ctx, fleetID, limit)
}
