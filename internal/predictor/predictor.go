package predictor

import (
	"errors"
	"fmt"

	"github.com/K-vibe-sat-canh/autoscaling/pkg/config"
	"github.com/K-vibe-sat-canh/autoscaling/pkg/models"
)

var (
	ErrInsufficientHistory = errors.New("insufficient load history")
	ErrUnknownModel        = errors.New("unknown predictor model")
)

// Predictor forecasts future load from recorded history. Implementations are
// stateless; history is passed on every call.
type Predictor interface {
	// Predict returns horizon samples extending past the last history point.
	// The returned samples carry timestamps spaced like the history's tail.
	Predict(history []models.LoadSample, horizon int) ([]models.LoadSample, error)
	Name() string
}

// New builds the predictor named by the configuration.
func New(cfg config.PredictorConfig) (Predictor, error) {
	switch cfg.Type {
	case "moving_average":
		return NewMovingAverage(cfg.Window), nil
	case "seasonal_naive":
		return NewSeasonalNaive(cfg.SeasonSize), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownModel, cfg.Type)
	}
}
