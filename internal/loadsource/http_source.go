package loadsource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/K-vibe-sat-canh/autoscaling/internal/logger"
	"github.com/K-vibe-sat-canh/autoscaling/pkg/models"
)

// HTTPSource polls the load generator service for a fleet's current request
// volume.
type HTTPSource struct {
	client   *http.Client
	endpoint string
	timeout  time.Duration
}

type HTTPSourceConfig struct {
	Endpoint string
	Timeout  time.Duration
}

func NewHTTPSource(cfg HTTPSourceConfig) *HTTPSource {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}

	return &HTTPSource{
		client: &http.Client{
			Timeout: timeout,
		},
		endpoint: cfg.Endpoint,
		timeout:  timeout,
	}
}

// loadResponse matches the load generator's response shape.
type loadResponse struct {
	FleetID   string  `json:"fleet_id"`
	Timestamp string  `json:"timestamp"`
	Requests  float64 `json:"requests"`
}

func (s *HTTPSource) Fetch(ctx context.Context, fleetID string) (models.LoadSample, error) {
	url := fmt.Sprintf("%s/%s", s.endpoint, fleetID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return models.LoadSample{}, fmt.Errorf("%w: failed to create request: %v", ErrFetchFailed, err)
	}

	req.Header.Set("Accept", "application/json")

	logger.WithFleet(fleetID).Debugf("Fetching load from %s", url)

	resp, err := s.client.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return models.LoadSample{}, ErrTimeout
		}
		return models.LoadSample{}, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return models.LoadSample{}, ErrFleetNotFound
	}

	if resp.StatusCode != http.StatusOK {
		return models.LoadSample{}, fmt.Errorf("%w: unexpected status code %d", ErrFetchFailed, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.LoadSample{}, fmt.Errorf("%w: failed to read response body: %v", ErrFetchFailed, err)
	}

	var loadResp loadResponse
	if err := json.Unmarshal(body, &loadResp); err != nil {
		return models.LoadSample{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	if loadResp.Requests < 0 {
		return models.LoadSample{}, fmt.Errorf("%w: negative request volume", ErrInvalidResponse)
	}

	timestamp := time.Now()
	if loadResp.Timestamp != "" {
		if parsed, err := time.Parse(time.RFC3339, loadResp.Timestamp); err == nil {
			timestamp = parsed
		}
	}

	return models.LoadSample{
		Timestamp:     timestamp,
		PredictedLoad: loadResp.Requests,
	}, nil
}

func (s *HTTPSource) HealthCheck(ctx context.Context) error {
	url := fmt.Sprintf("%s/health", s.endpoint)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create health check request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

func (s *HTTPSource) Close() error {
	s.client.CloseIdleConnections()
	return nil
}
