package loadgen

import (
	"math"
	"math/rand"
	"time"
)

// Pattern shapes a fleet's base request volume over wall-clock time.
type Pattern interface {
	Apply(baseRequests float64) float64
	Name() string
}

var (
	PatternSteady Pattern = &SteadyPattern{}
	PatternDaily  Pattern = &DailyPattern{}
	PatternWeekly Pattern = &WeeklyPattern{}
	PatternRandom Pattern = &RandomPattern{}
)

func ParsePattern(name string) Pattern {
	switch name {
	case "daily":
		return PatternDaily
	case "weekly":
		return PatternWeekly
	case "random":
		return PatternRandom
	case "gradual_rise":
		return &GradualRisePattern{startTime: time.Now()}
	case "sine_wave":
		return &SineWavePattern{}
	default:
		return PatternSteady
	}
}

// SteadyPattern - constant request volume
type SteadyPattern struct{}

func (p *SteadyPattern) Apply(baseRequests float64) float64 {
	return baseRequests
}

func (p *SteadyPattern) Name() string {
	return "steady"
}

// DailyPattern - daily traffic cycle, peaking during business hours
type DailyPattern struct{}

func (p *DailyPattern) Apply(baseRequests float64) float64 {
	hour := time.Now().Hour()

	var modifier float64
	switch {
	case hour >= 9 && hour <= 11:
		modifier = 1.4
	case hour >= 14 && hour <= 16:
		modifier = 1.3
	case hour >= 17 && hour <= 20:
		modifier = 1.1
	case hour >= 0 && hour <= 6:
		modifier = 0.6
	default:
		modifier = 1.0
	}

	return baseRequests * modifier
}

func (p *DailyPattern) Name() string {
	return "daily"
}

// WeeklyPattern - daily cycle plus weekend reduction
type WeeklyPattern struct{}

func (p *WeeklyPattern) Apply(baseRequests float64) float64 {
	now := time.Now()
	weekday := now.Weekday()
	hour := now.Hour()

	var modifier float64 = 1.0

	if weekday == time.Saturday || weekday == time.Sunday {
		modifier = 0.5
	} else {
		switch {
		case hour >= 9 && hour <= 11:
			modifier = 1.4
		case hour >= 14 && hour <= 16:
			modifier = 1.3
		case hour >= 0 && hour <= 6:
			modifier = 0.6
		}
	}

	return baseRequests * modifier
}

func (p *WeeklyPattern) Name() string {
	return "weekly"
}

// RandomPattern - unpredictable swings
type RandomPattern struct{}

func (p *RandomPattern) Apply(baseRequests float64) float64 {
	// Random modifier between 0.5 and 1.5
	modifier := 0.5 + rand.Float64()
	result := baseRequests * modifier
	if result < 0 {
		result = 0
	}
	return result
}

func (p *RandomPattern) Name() string {
	return "random"
}

// GradualRisePattern - slowly climbing traffic
type GradualRisePattern struct {
	startTime time.Time
}

func (p *GradualRisePattern) Apply(baseRequests float64) float64 {
	elapsed := time.Since(p.startTime)
	minutes := elapsed.Minutes()

	// Increase by 2% per minute, capped at a doubling.
	increasePercent := math.Min(minutes*2, 100)
	modifier := 1.0 + (increasePercent / 100)

	return baseRequests * modifier
}

func (p *GradualRisePattern) Name() string {
	return "gradual_rise"
}

// SineWavePattern - smooth oscillation around the base volume
type SineWavePattern struct {
	Period    time.Duration
	Amplitude float64 // fraction of base, 0.3 means +/-30%
}

func (p *SineWavePattern) Apply(baseRequests float64) float64 {
	period := p.Period
	if period == 0 {
		period = 10 * time.Minute
	}
	amplitude := p.Amplitude
	if amplitude == 0 {
		amplitude = 0.3
	}

	elapsed := float64(time.Now().UnixNano())
	periodNano := float64(period.Nanoseconds())
	phase := (elapsed / periodNano) * 2 * math.Pi

	result := baseRequests * (1 + math.Sin(phase)*amplitude)
	if result < 0 {
		result = 0
	}
	return result
}

func (p *SineWavePattern) Name() string {
	return "sine_wave"
}
