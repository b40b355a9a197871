package queries

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/K-vibe-sat-canh/autoscaling/pkg/models"
)

type SimulationRepository struct {
	db *sql.DB
}

func NewSimulationRepository(db *sql.DB) *SimulationRepository {
	return &SimulationRepository{db: db}
}

type SimulationRecord struct {
	ID        int                         `json:"id"`
	FleetID   *string                     `json:"fleet_id,omitempty"`
	CreatedAt time.Time                   `json:"created_at"`
	Policy    models.PolicyConfig         `json:"policy"`
	Result    models.CostSimulationResult `json:"result"`
}

// Insert persists a summary of a completed simulation run. The full event
// list is not stored; callers keep it in the API response only.
func (r *SimulationRepository) Insert(ctx context.Context, fleetID *string, policy models.PolicyConfig, result *models.CostSimulationResult) (int, error) {
	policyJSON, err := json.Marshal(policy)
	if err != nil {
		return 0, err
	}

	query := `
		INSERT INTO simulation_runs
			(fleet_id, intervals_simulated, scaling_event_count, static_cost,
			 auto_scaling_cost, savings_amount, savings_percentage,
			 final_server_count, policy)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`

	var id int
	err = r.db.QueryRowContext(ctx, query,
		fleetID,
		result.IntervalsSimulated,
		len(result.ScalingEvents),
		result.StaticCost,
		result.AutoScalingCost,
		result.SavingsAmount,
		result.SavingsPercentage,
		result.FinalServerCount,
		policyJSON,
	).Scan(&id)

	return id, err
}

func (r *SimulationRepository) GetRecent(ctx context.Context, limit int) ([]SimulationRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, fleet_id, created_at, intervals_simulated, scaling_event_count,
			   static_cost, auto_scaling_cost, savings_amount, savings_percentage,
			   final_server_count, policy
		FROM simulation_runs
		ORDER BY created_at DESC
		LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []SimulationRecord
	for rows.Next() {
		var rec SimulationRecord
		var eventCount int
		var policyJSON []byte
		err := rows.Scan(
			&rec.ID, &rec.FleetID, &rec.CreatedAt,
			&rec.Result.IntervalsSimulated, &eventCount,
			&rec.Result.StaticCost, &rec.Result.AutoScalingCost,
			&rec.Result.SavingsAmount, &rec.Result.SavingsPercentage,
			&rec.Result.FinalServerCount, &policyJSON,
		)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(policyJSON, &rec.Policy); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}
