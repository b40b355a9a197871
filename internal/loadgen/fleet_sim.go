package loadgen

import (
	"math/rand"
	"sync"
	"time"
)

// FleetSim produces the request volume for one fleet: a base rate, a shaping
// pattern, random jitter, and an optional transient spike.
type FleetSim struct {
	fleetID      string
	baseRequests float64
	variance     float64
	pattern      Pattern

	spikeTarget float64
	spikeStart  time.Time
	spikeEnd    time.Time
	spikeRampUp time.Duration
	spikeActive bool

	mu sync.Mutex
}

type FleetSimConfig struct {
	BaseRequests float64
	Variance     float64
	Pattern      Pattern
}

func NewFleetSim(fleetID string, cfg FleetSimConfig) *FleetSim {
	base := cfg.BaseRequests
	if base <= 0 {
		base = 1500.0
	}
	variance := cfg.Variance
	if variance < 0 {
		variance = 0
	}
	pattern := cfg.Pattern
	if pattern == nil {
		pattern = PatternSteady
	}

	return &FleetSim{
		fleetID:      fleetID,
		baseRequests: base,
		variance:     variance,
		pattern:      pattern,
	}
}

// CurrentLoad returns the request volume at this instant.
func (f *FleetSim) CurrentLoad() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()

	value := f.pattern.Apply(f.baseRequests)

	if f.variance > 0 {
		value += (rand.Float64()*2 - 1) * f.variance
	}

	value = f.applySpike(value)

	if value < 0 {
		value = 0
	}
	return value
}

// applySpike blends the spike target in during ramp-up and holds it until the
// spike window closes. Caller holds the lock.
func (f *FleetSim) applySpike(value float64) float64 {
	if !f.spikeActive {
		return value
	}

	now := time.Now()
	if now.After(f.spikeEnd) {
		f.spikeActive = false
		return value
	}

	sinceStart := now.Sub(f.spikeStart)
	if f.spikeRampUp > 0 && sinceStart < f.spikeRampUp {
		progress := float64(sinceStart) / float64(f.spikeRampUp)
		return value + (f.spikeTarget-value)*progress
	}

	return f.spikeTarget
}

func (f *FleetSim) InjectSpike(target float64, duration, rampUp time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := time.Now()
	f.spikeTarget = target
	f.spikeStart = now
	f.spikeEnd = now.Add(duration)
	f.spikeRampUp = rampUp
	f.spikeActive = true
}

func (f *FleetSim) SetPattern(pattern Pattern) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pattern = pattern
}

func (f *FleetSim) SetBaseRequests(base float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if base >= 0 {
		f.baseRequests = base
	}
}

func (f *FleetSim) SetVariance(variance float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if variance >= 0 {
		f.variance = variance
	}
}

func (f *FleetSim) PatternName() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pattern.Name()
}

func (f *FleetSim) Status() map[string]interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()

	return map[string]interface{}{
		"fleet_id":      f.fleetID,
		"base_requests": f.baseRequests,
		"variance":      f.variance,
		"pattern":       f.pattern.Name(),
		"spike_active":  f.spikeActive,
	}
}
