package predictor

import (
	"fmt"

	"github.com/K-vibe-sat-canh/autoscaling/pkg/models"
)

// SeasonalNaive repeats the load observed one season ago. With minute samples
// and a season of 60 this reproduces the previous hour's shape, which suits
// traffic with a strong daily or hourly rhythm.
type SeasonalNaive struct {
	seasonSize int
}

func NewSeasonalNaive(seasonSize int) *SeasonalNaive {
	if seasonSize <= 0 {
		seasonSize = 60
	}
	return &SeasonalNaive{seasonSize: seasonSize}
}

func (s *SeasonalNaive) Name() string {
	return "seasonal_naive"
}

func (s *SeasonalNaive) Predict(history []models.LoadSample, horizon int) ([]models.LoadSample, error) {
	if horizon <= 0 {
		horizon = 1
	}
	if len(history) < s.seasonSize {
		return nil, fmt.Errorf("%w: need %d samples, have %d", ErrInsufficientHistory, s.seasonSize, len(history))
	}

	step := sampleInterval(history)
	last := history[len(history)-1].Timestamp

	forecast := make([]models.LoadSample, 0, horizon)
	for i := 0; i < horizon; i++ {
		// Index of the corresponding point one season back.
		idx := len(history) - s.seasonSize + (i % s.seasonSize)
		last = last.Add(step)
		forecast = append(forecast, models.LoadSample{
			Timestamp:     last,
			PredictedLoad: history[idx].PredictedLoad,
		})
	}

	return forecast, nil
}
