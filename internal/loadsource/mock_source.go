package loadsource

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/K-vibe-sat-canh/autoscaling/pkg/models"
)

// MockSource serves synthetic load values for tests and offline runs.
type MockSource struct {
	mu           sync.Mutex
	fleets       map[string]float64
	variance     float64
	shouldFail   bool
	failureError error
}

type MockSourceConfig struct {
	Variance float64
}

func NewMockSource(cfg MockSourceConfig) *MockSource {
	variance := cfg.Variance
	if variance == 0 {
		variance = 100.0
	}

	return &MockSource{
		fleets:   make(map[string]float64),
		variance: variance,
	}
}

func (s *MockSource) SetFleetLoad(fleetID string, requests float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fleets[fleetID] = requests
}

func (s *MockSource) SetShouldFail(shouldFail bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shouldFail = shouldFail
	s.failureError = err
}

func (s *MockSource) Fetch(ctx context.Context, fleetID string) (models.LoadSample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.shouldFail {
		if s.failureError != nil {
			return models.LoadSample{}, s.failureError
		}
		return models.LoadSample{}, ErrFetchFailed
	}

	base, exists := s.fleets[fleetID]
	if !exists {
		return models.LoadSample{}, ErrFleetNotFound
	}

	value := base + (rand.Float64()*2-1)*s.variance
	if value < 0 {
		value = 0
	}

	return models.LoadSample{
		Timestamp:     time.Now(),
		PredictedLoad: value,
	}, nil
}

func (s *MockSource) HealthCheck(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.shouldFail {
		return ErrFetchFailed
	}
	return nil
}

func (s *MockSource) Close() error {
	return nil
}
