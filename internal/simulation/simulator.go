package simulation

import (
	"errors"
	"fmt"
	"time"

	"github.com/K-vibe-sat-canh/autoscaling/internal/events"
	"github.com/K-vibe-sat-canh/autoscaling/internal/logger"
	"github.com/K-vibe-sat-canh/autoscaling/internal/policy"
	"github.com/K-vibe-sat-canh/autoscaling/pkg/models"
)

var (
	ErrNoSamples            = errors.New("simulation requires at least one load sample")
	ErrNonMonotonicSamples  = errors.New("load samples must have strictly increasing timestamps")
	ErrNegativeLoad         = errors.New("load samples must not be negative")
	ErrInvalidStaticServers = errors.New("static server count must be positive")
)

// defaultInterval matches the one-minute grid the historical series are
// resampled onto upstream.
const defaultInterval = time.Minute

// Options tune one simulation run. The zero value means: start at the
// policy's MinServers and derive the interval from sample spacing.
type Options struct {
	// StartServers is the fleet size before the first decision; clamped into
	// the policy bounds. 0 starts at MinServers.
	StartServers int

	// Interval is the duration one sample covers. 0 derives it from the gap
	// between the first two samples.
	Interval time.Duration
}

// Simulator replays an ordered load series through a fresh policy engine and
// a fixed-size baseline fleet, accumulating cost for both. It is a pure fold:
// identical inputs always produce identical results.
type Simulator struct {
	engine *policy.Engine
}

func New(policyConfig models.PolicyConfig) (*Simulator, error) {
	engine, err := policy.NewEngine(policyConfig)
	if err != nil {
		return nil, err
	}
	return &Simulator{engine: engine}, nil
}

// Run drives every sample through the engine and returns the comparative
// cost report. All input validation happens before any accumulation, so a
// returned error guarantees no partial result.
func (s *Simulator) Run(samples []models.LoadSample, staticServerCount int, opts Options) (*models.CostSimulationResult, error) {
	if err := validateSamples(samples); err != nil {
		return nil, err
	}
	if staticServerCount <= 0 {
		return nil, ErrInvalidStaticServers
	}

	interval := opts.Interval
	if interval <= 0 {
		interval = deriveInterval(samples)
	}
	hours := interval.Hours()

	pol := s.engine.Policy()
	state := models.NewScalingState(pol, opts.StartServers)
	log := events.NewScalingLog()

	var staticCost, autoCost float64

	for _, sample := range samples {
		var decision models.ScalingDecision
		decision, state = s.engine.Decide(state, sample, sample.Timestamp)

		autoCost += float64(state.CurrentServers) * pol.CostPerServerHour * hours
		staticCost += float64(staticServerCount) * pol.CostPerServerHour * hours

		if decision.Action != models.ActionMaintain {
			log.Append(*models.NewScalingEvent(decision, models.ScalingEventSuccess))
		}
	}

	savings := staticCost - autoCost
	savingsPct := 0.0
	if staticCost != 0 {
		savingsPct = savings / staticCost
	}

	result := &models.CostSimulationResult{
		IntervalsSimulated: len(samples),
		ScalingEvents:      log.Events(),
		StaticCost:         staticCost,
		AutoScalingCost:    autoCost,
		SavingsAmount:      savings,
		SavingsPercentage:  savingsPct,
		FinalServerCount:   state.CurrentServers,
	}

	logger.Infof("Simulation complete: %d intervals, %d scaling events, static=$%.2f auto=$%.2f savings=%.1f%%",
		result.IntervalsSimulated, len(result.ScalingEvents),
		result.StaticCost, result.AutoScalingCost, result.SavingsPercentage*100)

	return result, nil
}

func validateSamples(samples []models.LoadSample) error {
	if len(samples) == 0 {
		return ErrNoSamples
	}

	for i, sample := range samples {
		if sample.PredictedLoad < 0 {
			return fmt.Errorf("%w: sample %d has load %.2f", ErrNegativeLoad, i, sample.PredictedLoad)
		}
		if i > 0 && !sample.Timestamp.After(samples[i-1].Timestamp) {
			return fmt.Errorf("%w: sample %d at %s does not follow %s",
				ErrNonMonotonicSamples, i, sample.Timestamp, samples[i-1].Timestamp)
		}
	}

	return nil
}

func deriveInterval(samples []models.LoadSample) time.Duration {
	if len(samples) < 2 {
		return defaultInterval
	}
	return samples[1].Timestamp.Sub(samples[0].Timestamp)
}
