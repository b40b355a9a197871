package queries

import (
	"context"
	"database/sql"
	"time"

	"github.com/K-vibe-sat-canh/autoscaling/pkg/models"
)

type LoadHistoryRepository struct {
	db *sql.DB
}

func NewLoadHistoryRepository(db *sql.DB) *LoadHistoryRepository {
	return &LoadHistoryRepository{db: db}
}

func (r *LoadHistoryRepository) Insert(ctx context.Context, fleetID string, sample models.LoadSample) error {
	query := `INSERT INTO load_history (time, fleet_id, requests) VALUES ($1, $2, $3)`
	_, err := r.db.ExecContext(ctx, query, sample.Timestamp, fleetID, sample.PredictedLoad)
	return err
}

func (r *LoadHistoryRepository) InsertBatch(ctx context.Context, fleetID string, samples []models.LoadSample) error {
	if len(samples) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO load_history (time, fleet_id, requests) VALUES ($1, $2, $3)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, s := range samples {
		if _, err := stmt.ExecContext(ctx, s.Timestamp, fleetID, s.PredictedLoad); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetRecent returns the newest samples in ascending time order, ready to feed
// a predictor.
func (r *LoadHistoryRepository) GetRecent(ctx context.Context, fleetID string, limit int) ([]models.LoadSample, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT time, requests FROM (
			SELECT time, requests
			FROM load_history
			WHERE fleet_id = $1
			ORDER BY time DESC
			LIMIT $2
		) recent
		ORDER BY time ASC`

	rows, err := r.db.QueryContext(ctx, query, fleetID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []models.LoadSample
	for rows.Next() {
		var s models.LoadSample
		if err := rows.Scan(&s.Timestamp, &s.PredictedLoad); err != nil {
			return nil, err
		}
		samples = append(samples, s)
	}

	return samples, rows.Err()
}

func (r *LoadHistoryRepository) GetRange(ctx context.Context, fleetID string, from, to time.Time) ([]models.LoadSample, error) {
	query := `
		SELECT time, requests
		FROM load_history
		WHERE fleet_id = $1 AND time >= $2 AND time <= $3
		ORDER BY time ASC`

	rows, err := r.db.QueryContext(ctx, query, fleetID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []models.LoadSample
	for rows.Next() {
		var s models.LoadSample
		if err := rows.Scan(&s.Timestamp, &s.PredictedLoad); err != nil {
			return nil, err
		}
		samples = append(samples, s)
	}

	return samples, rows.Err()
}

func (r *LoadHistoryRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM load_history WHERE time < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
