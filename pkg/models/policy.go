package models

import (
	"errors"
	"fmt"
	"time"
)

// PolicyConfig is the immutable parameter set governing one fleet's scaling
// behavior. Construct it once, call Validate, and never mutate it afterwards.
type PolicyConfig struct {
	CapacityPerServer  float64       `json:"capacity_per_server"`
	ScaleUpThreshold   float64       `json:"scale_up_threshold"`
	ScaleDownThreshold float64       `json:"scale_down_threshold"`
	CooldownPeriod     time.Duration `json:"cooldown_period"`
	MinServers         int           `json:"min_servers"`
	MaxServers         int           `json:"max_servers"`
	CostPerServerHour  float64       `json:"cost_per_server_hour"`
}

// DefaultPolicyConfig mirrors the defaults the surrounding system ships with:
// 1000 req/min per server, 85%/30% thresholds, 5 minute cooldown, $0.45/hour.
func DefaultPolicyConfig() PolicyConfig {
	return PolicyConfig{
		CapacityPerServer:  1000,
		ScaleUpThreshold:   0.85,
		ScaleDownThreshold: 0.30,
		CooldownPeriod:     5 * time.Minute,
		MinServers:         1,
		MaxServers:         20,
		CostPerServerHour:  0.45,
	}
}

func (p PolicyConfig) Validate() error {
	var errs []error

	if p.CapacityPerServer <= 0 {
		errs = append(errs, errors.New("capacity_per_server must be positive"))
	}
	if p.ScaleUpThreshold <= 0 || p.ScaleUpThreshold >= 1 {
		errs = append(errs, errors.New("scale_up_threshold must be in (0, 1)"))
	}
	if p.ScaleDownThreshold <= 0 || p.ScaleDownThreshold >= 1 {
		errs = append(errs, errors.New("scale_down_threshold must be in (0, 1)"))
	}
	if p.ScaleDownThreshold >= p.ScaleUpThreshold {
		errs = append(errs, errors.New("scale_down_threshold must be less than scale_up_threshold"))
	}
	if p.CooldownPeriod < 0 {
		errs = append(errs, errors.New("cooldown_period must not be negative"))
	}
	if p.MinServers < 1 {
		errs = append(errs, errors.New("min_servers must be at least 1"))
	}
	if p.MaxServers < p.MinServers {
		errs = append(errs, errors.New("max_servers must be >= min_servers"))
	}
	if p.CostPerServerHour < 0 {
		errs = append(errs, errors.New("cost_per_server_hour must not be negative"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("policy validation failed: %v", errs)
	}

	return nil
}

// ClampServers forces a server count into [MinServers, MaxServers].
func (p PolicyConfig) ClampServers(n int) int {
	if n < p.MinServers {
		return p.MinServers
	}
	if n > p.MaxServers {
		return p.MaxServers
	}
	return n
}
