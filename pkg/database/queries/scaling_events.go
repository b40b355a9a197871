package queries

import (
	"context"
	"database/sql"
	"time"

	"github.com/K-vibe-sat-canh/autoscaling/pkg/models"
)

type ScalingEventRepository struct {
	db *sql.DB
}

func NewScalingEventRepository(db *sql.DB) *ScalingEventRepository {
	return &ScalingEventRepository{db: db}
}

func (r *ScalingEventRepository) Insert(ctx context.Context, event *models.ScalingEvent) error {
	query := `
		INSERT INTO scaling_events
			(fleet_id, timestamp, action, servers_before, servers_after,
			 triggering_load, reason, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	return r.db.QueryRowContext(ctx, query,
		event.FleetID,
		event.Timestamp,
		event.Action,
		event.ServersBefore,
		event.ServersAfter,
		event.TriggeringLoad,
		event.Reason,
		event.Status,
	).Scan(&event.ID)
}

func (r *ScalingEventRepository) GetByFleet(ctx context.Context, fleetID string, from, to time.Time, limit int) ([]models.ScalingEvent, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, fleet_id, timestamp, action, servers_before, servers_after,
			   triggering_load, reason, status
		FROM scaling_events
		WHERE fleet_id = $1 AND timestamp >= $2 AND timestamp <= $3
		ORDER BY timestamp DESC
		LIMIT $4`

	rows, err := r.db.QueryContext(ctx, query, fleetID, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanScalingEvents(rows)
}

func (r *ScalingEventRepository) GetRecent(ctx context.Context, limit int) ([]models.ScalingEvent, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, fleet_id, timestamp, action, servers_before, servers_after,
			   triggering_load, reason, status
		FROM scaling_events
		ORDER BY timestamp DESC
		LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanScalingEvents(rows)
}

type ScalingStats struct {
	FleetID        string    `json:"fleet_id"`
	From           time.Time `json:"from"`
	To             time.Time `json:"to"`
	ScaleUpCount   int       `json:"scale_up_count"`
	ScaleDownCount int       `json:"scale_down_count"`
	SuccessCount   int       `json:"success_count"`
	FailedCount    int       `json:"failed_count"`
}

func (r *ScalingEventRepository) GetStats(ctx context.Context, fleetID string, from, to time.Time) (*ScalingStats, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE action = 'scale_up') AS scale_up_count,
			COUNT(*) FILTER (WHERE action = 'scale_down') AS scale_down_count,
			COUNT(*) FILTER (WHERE status = 'success') AS success_count,
			COUNT(*) FILTER (WHERE status = 'failed') AS failed_count
		FROM scaling_events
		WHERE fleet_id = $1 AND timestamp >= $2 AND timestamp <= $3`

	stats := ScalingStats{FleetID: fleetID, From: from, To: to}
	err := r.db.QueryRowContext(ctx, query, fleetID, from, to).Scan(
		&stats.ScaleUpCount, &stats.ScaleDownCount,
		&stats.SuccessCount, &stats.FailedCount,
	)
	if err != nil {
		return nil, err
	}

	return &stats, nil
}

func scanScalingEvents(rows *sql.Rows) ([]models.ScalingEvent, error) {
	var events []models.ScalingEvent
	for rows.Next() {
		var e models.ScalingEvent
		var action, status string
		err := rows.Scan(
			&e.ID, &e.FleetID, &e.Timestamp, &action,
			&e.ServersBefore, &e.ServersAfter, &e.TriggeringLoad,
			&e.Reason, &status,
		)
		if err != nil {
			return nil, err
		}
		e.Action = models.ScalingAction(action)
		e.Status = models.ScalingEventStatus(status)
		events = append(events, e)
	}
	return events, rows.Err()
}
