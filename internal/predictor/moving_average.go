package predictor

import (
	"fmt"
	"time"

	"github.com/K-vibe-sat-canh/autoscaling/pkg/models"
)

const defaultInterval = time.Minute

// MovingAverage forecasts each future point as the mean of the last window
// observations, feeding its own forecasts back in for multi-step horizons.
type MovingAverage struct {
	window int
}

func NewMovingAverage(window int) *MovingAverage {
	if window <= 0 {
		window = 5
	}
	return &MovingAverage{window: window}
}

func (m *MovingAverage) Name() string {
	return "moving_average"
}

func (m *MovingAverage) Predict(history []models.LoadSample, horizon int) ([]models.LoadSample, error) {
	if horizon <= 0 {
		horizon = 1
	}
	if len(history) < m.window {
		return nil, fmt.Errorf("%w: need %d samples, have %d", ErrInsufficientHistory, m.window, len(history))
	}

	values := make([]float64, len(history))
	for i, s := range history {
		values[i] = s.PredictedLoad
	}

	step := sampleInterval(history)
	last := history[len(history)-1].Timestamp

	forecast := make([]models.LoadSample, 0, horizon)
	for i := 0; i < horizon; i++ {
		tail := values[len(values)-m.window:]
		var sum float64
		for _, v := range tail {
			sum += v
		}
		predicted := sum / float64(m.window)

		last = last.Add(step)
		forecast = append(forecast, models.LoadSample{
			Timestamp:     last,
			PredictedLoad: predicted,
		})
		values = append(values, predicted)
	}

	return forecast, nil
}

func sampleInterval(history []models.LoadSample) time.Duration {
	if len(history) < 2 {
		return defaultInterval
	}
	step := history[len(history)-1].Timestamp.Sub(history[len(history)-2].Timestamp)
	if step <= 0 {
		return defaultInterval
	}
	return step
}
