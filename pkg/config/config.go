package config

import (
	"fmt"
	"time"

	"github.com/K-vibe-sat-canh/autoscaling/pkg/models"
)

type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Database   DatabaseConfig   `mapstructure:"database"`
	LoadSource LoadSourceConfig `mapstructure:"load_source"`
	Policy     PolicyConfig     `mapstructure:"policy"`
	Predictor  PredictorConfig  `mapstructure:"predictor"`
	Scaler     ScalerConfig     `mapstructure:"scaler"`
	Simulation SimulationConfig `mapstructure:"simulation"`
	API        APIConfig        `mapstructure:"api"`
	WebSocket  WebSocketConfig  `mapstructure:"websocket"`
	Events     EventsConfig     `mapstructure:"events"`
}

type AppConfig struct {
	Name            string        `mapstructure:"name"`
	Mode            string        `mapstructure:"mode"`
	LogLevel        string        `mapstructure:"log_level"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	Host             string        `mapstructure:"host"`
	Port             int           `mapstructure:"port"`
	Name             string        `mapstructure:"name"`
	User             string        `mapstructure:"user"`
	Password         string        `mapstructure:"password"`
	MaxConnections   int           `mapstructure:"max_connections"`
	SSLMode          string        `mapstructure:"ssl_mode"`
	ConnMaxLifetime  time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime  time.Duration `mapstructure:"conn_max_idle_time"`
	PingTimeout      time.Duration `mapstructure:"ping_timeout"`
	MigrationTimeout time.Duration `mapstructure:"migration_timeout"`
}

func (d DatabaseConfig) DSN() string {
	sslMode := d.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, sslMode,
	)
}

type LoadSourceConfig struct {
	Type           string               `mapstructure:"type"`
	Endpoint       string               `mapstructure:"endpoint"`
	Interval       time.Duration        `mapstructure:"interval"`
	Timeout        time.Duration        `mapstructure:"timeout"`
	RetryAttempts  int                  `mapstructure:"retry_attempts"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
}

type CircuitBreakerConfig struct {
	MaxFailures int           `mapstructure:"max_failures"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// PolicyConfig is the file/env-facing form of the scaling policy. It converts
// into models.PolicyConfig before any engine sees it.
type PolicyConfig struct {
	CapacityPerServer  float64       `mapstructure:"capacity_per_server"`
	ScaleUpThreshold   float64       `mapstructure:"scale_up_threshold"`
	ScaleDownThreshold float64       `mapstructure:"scale_down_threshold"`
	CooldownPeriod     time.Duration `mapstructure:"cooldown_period"`
	MinServers         int           `mapstructure:"min_servers"`
	MaxServers         int           `mapstructure:"max_servers"`
	CostPerServerHour  float64       `mapstructure:"cost_per_server_hour"`
}

func (p PolicyConfig) ToPolicyConfig() models.PolicyConfig {
	return models.PolicyConfig{
		CapacityPerServer:  p.CapacityPerServer,
		ScaleUpThreshold:   p.ScaleUpThreshold,
		ScaleDownThreshold: p.ScaleDownThreshold,
		CooldownPeriod:     p.CooldownPeriod,
		MinServers:         p.MinServers,
		MaxServers:         p.MaxServers,
		CostPerServerHour:  p.CostPerServerHour,
	}
}

type PredictorConfig struct {
	Type       string `mapstructure:"type"`
	Horizon    int    `mapstructure:"horizon"`
	Window     int    `mapstructure:"window"`
	SeasonSize int    `mapstructure:"season_size"`
}

type ScalerConfig struct {
	Type          string        `mapstructure:"type"`
	ProvisionTime time.Duration `mapstructure:"provision_time"`
	DrainTimeout  time.Duration `mapstructure:"drain_timeout"`
}

type SimulationConfig struct {
	StaticBaselineServers int           `mapstructure:"static_baseline_servers"`
	StartServers          int           `mapstructure:"start_servers"`
	Interval              time.Duration `mapstructure:"interval"`
	MaxSamples            int           `mapstructure:"max_samples"`
}

type APIConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	RateLimit      int           `mapstructure:"rate_limit"`
	JWTSecret      string        `mapstructure:"jwt_secret"`
	JWTDuration    time.Duration `mapstructure:"jwt_duration"`
	JWTIssuer      string        `mapstructure:"jwt_issuer"`
	CookieName     string        `mapstructure:"cookie_name"`
	CookieMaxAge   int           `mapstructure:"cookie_max_age"`
	CookiePath     string        `mapstructure:"cookie_path"`
	CookieSecure   bool          `mapstructure:"cookie_secure"`
	CookieHTTPOnly bool          `mapstructure:"cookie_http_only"`
	DefaultLimit   int           `mapstructure:"default_limit"`
	MaxLimit       int           `mapstructure:"max_limit"`
	CORS           CORSConfig    `mapstructure:"cors"`
}

type WebSocketConfig struct {
	MaxConnections  int           `mapstructure:"max_connections"`
	PingInterval    time.Duration `mapstructure:"ping_interval"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	PongTimeout     time.Duration `mapstructure:"pong_timeout"`
	MaxMessageSize  int64         `mapstructure:"max_message_size"`
	ReadBufferSize  int           `mapstructure:"read_buffer_size"`
	WriteBufferSize int           `mapstructure:"write_buffer_size"`
	BroadcastBuffer int           `mapstructure:"broadcast_buffer"`
	ClientBuffer    int           `mapstructure:"client_buffer"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
}

type EventsConfig struct {
	BufferSize int `mapstructure:"buffer_size"`
}
