package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "autoscaling", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Mode)

	assert.True(t, cfg.Database.Enabled)
	assert.Equal(t, 5432, cfg.Database.Port)

	assert.Equal(t, "http", cfg.LoadSource.Type)
	assert.Equal(t, 10*time.Second, cfg.LoadSource.Interval)
	assert.Equal(t, 5*time.Second, cfg.LoadSource.Timeout)

	assert.Equal(t, 1000.0, cfg.Policy.CapacityPerServer)
	assert.Equal(t, 0.85, cfg.Policy.ScaleUpThreshold)
	assert.Equal(t, 0.30, cfg.Policy.ScaleDownThreshold)
	assert.Equal(t, 5*time.Minute, cfg.Policy.CooldownPeriod)
	assert.Equal(t, 1, cfg.Policy.MinServers)
	assert.Equal(t, 20, cfg.Policy.MaxServers)
	assert.Equal(t, 0.45, cfg.Policy.CostPerServerHour)

	assert.Equal(t, "moving_average", cfg.Predictor.Type)
	assert.Equal(t, 10, cfg.Simulation.StaticBaselineServers)
	assert.Equal(t, 2, cfg.Simulation.StartServers)
	assert.Equal(t, time.Minute, cfg.Simulation.Interval)

	assert.Equal(t, 8080, cfg.API.Port)
	assert.Equal(t, 100, cfg.API.RateLimit)
	assert.Equal(t, 256, cfg.WebSocket.BroadcastBuffer)
	assert.Equal(t, 100, cfg.Events.BufferSize)
}

func TestLoad_DefaultsPassValidation(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		expectErr bool
	}{
		{"defaults valid", func(c *Config) {}, false},
		{"empty app name", func(c *Config) { c.App.Name = "" }, true},
		{"bad mode", func(c *Config) { c.App.Mode = "staging" }, true},
		{"bad log level", func(c *Config) { c.App.LogLevel = "verbose" }, true},
		{"bad load source type", func(c *Config) { c.LoadSource.Type = "kafka" }, true},
		{"timeout exceeds interval", func(c *Config) { c.LoadSource.Timeout = 30 * time.Second }, true},
		{"bad policy thresholds", func(c *Config) { c.Policy.ScaleDownThreshold = 0.9 }, true},
		{"bad predictor", func(c *Config) { c.Predictor.Type = "arima" }, true},
		{"zero static baseline", func(c *Config) { c.Simulation.StaticBaselineServers = 0 }, true},
		{"bad api port", func(c *Config) { c.API.Port = 0 }, true},
		{"default jwt secret in production", func(c *Config) { c.App.Mode = "production" }, true},
		{"custom jwt secret in production", func(c *Config) {
			c.App.Mode = "production"
			c.API.JWTSecret = "a-real-secret"
		}, false},
		{"disabled database skips db checks", func(c *Config) {
			c.Database.Enabled = false
			c.Database.Host = ""
			c.Database.Port = 0
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load("")
			require.NoError(t, err)

			tt.mutate(cfg)

			err = cfg.Validate()
			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPolicyConfig_ToPolicyConfig(t *testing.T) {
	fileCfg := PolicyConfig{
		CapacityPerServer:  2000,
		ScaleUpThreshold:   0.8,
		ScaleDownThreshold: 0.2,
		CooldownPeriod:     time.Minute,
		MinServers:         2,
		MaxServers:         10,
		CostPerServerHour:  1.5,
	}

	pol := fileCfg.ToPolicyConfig()

	assert.Equal(t, 2000.0, pol.CapacityPerServer)
	assert.Equal(t, 0.8, pol.ScaleUpThreshold)
	assert.Equal(t, 0.2, pol.ScaleDownThreshold)
	assert.Equal(t, time.Minute, pol.CooldownPeriod)
	assert.Equal(t, 2, pol.MinServers)
	assert.Equal(t, 10, pol.MaxServers)
	assert.Equal(t, 1.5, pol.CostPerServerHour)
	assert.NoError(t, pol.Validate())
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db.internal",
		Port:     5433,
		Name:     "scaling",
		User:     "svc",
		Password: "pw",
		SSLMode:  "require",
	}

	dsn := cfg.DSN()
	assert.Contains(t, dsn, "host=db.internal")
	assert.Contains(t, dsn, "port=5433")
	assert.Contains(t, dsn, "dbname=scaling")
	assert.Contains(t, dsn, "sslmode=require")

	cfg.SSLMode = ""
	assert.Contains(t, cfg.DSN(), "sslmode=disable")
}
