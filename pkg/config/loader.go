package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/autoscaling")
	}

	v.SetEnvPrefix("AUTOSCALING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// No config file is fine: defaults plus env vars carry the day.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "autoscaling")
	v.SetDefault("app.mode", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.shutdown_timeout", "15s")

	// Database defaults
	v.SetDefault("database.enabled", true)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "autoscaling")
	v.SetDefault("database.user", "admin")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.max_connections", 25)
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.migration_timeout", "60s")

	// Load source defaults
	v.SetDefault("load_source.type", "http")
	v.SetDefault("load_source.endpoint", "http://localhost:9000")
	v.SetDefault("load_source.interval", "10s")
	v.SetDefault("load_source.timeout", "5s")
	v.SetDefault("load_source.retry_attempts", 3)
	v.SetDefault("load_source.circuit_breaker.max_failures", 5)
	v.SetDefault("load_source.circuit_breaker.timeout", "30s")

	// Policy defaults
	v.SetDefault("policy.capacity_per_server", 1000.0)
	v.SetDefault("policy.scale_up_threshold", 0.85)
	v.SetDefault("policy.scale_down_threshold", 0.30)
	v.SetDefault("policy.cooldown_period", "5m")
	v.SetDefault("policy.min_servers", 1)
	v.SetDefault("policy.max_servers", 20)
	v.SetDefault("policy.cost_per_server_hour", 0.45)

	// Predictor defaults
	v.SetDefault("predictor.type", "moving_average")
	v.SetDefault("predictor.horizon", 1)
	v.SetDefault("predictor.window", 5)
	v.SetDefault("predictor.season_size", 60)

	// Scaler defaults
	v.SetDefault("scaler.type", "simulated")
	v.SetDefault("scaler.provision_time", "10s")
	v.SetDefault("scaler.drain_timeout", "30s")

	// Simulation defaults
	v.SetDefault("simulation.static_baseline_servers", 10)
	v.SetDefault("simulation.start_servers", 2)
	v.SetDefault("simulation.interval", "1m")
	v.SetDefault("simulation.max_samples", 100000)

	// API defaults
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.read_timeout", "15s")
	v.SetDefault("api.write_timeout", "15s")
	v.SetDefault("api.idle_timeout", "60s")
	v.SetDefault("api.rate_limit", 100)
	v.SetDefault("api.jwt_secret", "change-me-in-production")
	v.SetDefault("api.jwt_duration", "24h")
	v.SetDefault("api.jwt_issuer", "autoscaling")
	v.SetDefault("api.cookie_name", "auth_token")
	v.SetDefault("api.cookie_max_age", 86400)
	v.SetDefault("api.cookie_path", "/")
	v.SetDefault("api.cookie_http_only", true)
	v.SetDefault("api.default_limit", 50)
	v.SetDefault("api.max_limit", 500)
	v.SetDefault("api.cors.allowed_origins", []string{"*"})
	v.SetDefault("api.cors.allowed_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("api.cors.allowed_headers", []string{"Origin", "Content-Type", "Authorization"})

	// WebSocket defaults
	v.SetDefault("websocket.max_connections", 1000)
	v.SetDefault("websocket.ping_interval", "30s")
	v.SetDefault("websocket.write_timeout", "10s")
	v.SetDefault("websocket.pong_timeout", "60s")
	v.SetDefault("websocket.max_message_size", 4096)
	v.SetDefault("websocket.read_buffer_size", 1024)
	v.SetDefault("websocket.write_buffer_size", 1024)
	v.SetDefault("websocket.broadcast_buffer", 256)
	v.SetDefault("websocket.client_buffer", 64)

	// Events defaults
	v.SetDefault("events.buffer_size", 100)
}
