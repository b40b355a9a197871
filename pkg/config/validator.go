package config

import (
	"errors"
	"fmt"
)

func (c *Config) Validate() error {
	var errs []error

	// App validation
	if c.App.Name == "" {
		errs = append(errs, errors.New("app.name is required"))
	}

	validModes := map[string]bool{"development": true, "production": true, "test": true}
	if !validModes[c.App.Mode] {
		errs = append(errs, errors.New("app.mode must be one of: development, production, test"))
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.App.LogLevel] {
		errs = append(errs, errors.New("app.log_level must be one of: debug, info, warn, error"))
	}

	// Database validation
	if c.Database.Enabled {
		if c.Database.Host == "" {
			errs = append(errs, errors.New("database.host is required"))
		}
		if c.Database.Port <= 0 || c.Database.Port > 65535 {
			errs = append(errs, errors.New("database.port must be between 1 and 65535"))
		}
		if c.Database.Name == "" {
			errs = append(errs, errors.New("database.name is required"))
		}
		if c.Database.MaxConnections <= 0 {
			errs = append(errs, errors.New("database.max_connections must be positive"))
		}
	}

	// Load source validation
	validSourceTypes := map[string]bool{"http": true, "mock": true}
	if !validSourceTypes[c.LoadSource.Type] {
		errs = append(errs, errors.New("load_source.type must be one of: http, mock"))
	}
	if c.LoadSource.Interval <= 0 {
		errs = append(errs, errors.New("load_source.interval must be positive"))
	}
	if c.LoadSource.Timeout <= 0 {
		errs = append(errs, errors.New("load_source.timeout must be positive"))
	}
	if c.LoadSource.Timeout >= c.LoadSource.Interval {
		errs = append(errs, errors.New("load_source.timeout must be less than load_source.interval"))
	}

	// Policy validation delegates to the model, which owns the invariants.
	if err := c.Policy.ToPolicyConfig().Validate(); err != nil {
		errs = append(errs, err)
	}

	// Predictor validation
	validPredictors := map[string]bool{"moving_average": true, "seasonal_naive": true}
	if !validPredictors[c.Predictor.Type] {
		errs = append(errs, errors.New("predictor.type must be one of: moving_average, seasonal_naive"))
	}
	if c.Predictor.Horizon <= 0 {
		errs = append(errs, errors.New("predictor.horizon must be positive"))
	}
	if c.Predictor.Window <= 0 {
		errs = append(errs, errors.New("predictor.window must be positive"))
	}

	// Simulation validation
	if c.Simulation.StaticBaselineServers <= 0 {
		errs = append(errs, errors.New("simulation.static_baseline_servers must be positive"))
	}
	if c.Simulation.StartServers < 0 {
		errs = append(errs, errors.New("simulation.start_servers must not be negative"))
	}
	if c.Simulation.MaxSamples <= 0 {
		errs = append(errs, errors.New("simulation.max_samples must be positive"))
	}

	// API validation
	if c.API.Port <= 0 || c.API.Port > 65535 {
		errs = append(errs, errors.New("api.port must be between 1 and 65535"))
	}
	if c.App.Mode == "production" && c.API.JWTSecret == "change-me-in-production" {
		errs = append(errs, errors.New("api.jwt_secret must be changed in production"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %v", errs)
	}

	return nil
}
