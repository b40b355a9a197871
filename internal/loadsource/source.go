package loadsource

import (
	"context"
	"errors"

	"github.com/K-vibe-sat-canh/autoscaling/pkg/models"
)

var (
	ErrFetchFailed     = errors.New("load fetch failed")
	ErrTimeout         = errors.New("load fetch timeout")
	ErrFleetNotFound   = errors.New("fleet not found")
	ErrInvalidResponse = errors.New("invalid response from load source")
)

// Source delivers the current request volume for a fleet.
type Source interface {
	// Fetch returns the most recent load observation for the fleet.
	Fetch(ctx context.Context, fleetID string) (models.LoadSample, error)

	// HealthCheck verifies the source can reach its backing service
	HealthCheck(ctx context.Context) error

	// Close releases any resources held by the source
	Close() error
}
