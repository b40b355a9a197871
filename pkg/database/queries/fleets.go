package queries

import (
	"context"
	"database/sql"
	"errors"

	"github.com/K-vibe-sat-canh/autoscaling/pkg/models"
)

var ErrFleetNotFound = errors.New("fleet not found")

type FleetRepository struct {
	db *sql.DB
}

func NewFleetRepository(db *sql.DB) *FleetRepository {
	return &FleetRepository{db: db}
}

func (r *FleetRepository) GetAll(ctx context.Context) ([]*models.Fleet, error) {
	query := `
		SELECT id, name, status, policy, user_id, created_at, updated_at
		FROM fleets
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fleets []*models.Fleet
	for rows.Next() {
		fleet, err := scanFleet(rows)
		if err != nil {
			return nil, err
		}
		fleets = append(fleets, fleet)
	}

	return fleets, rows.Err()
}

func (r *FleetRepository) GetActive(ctx context.Context) ([]*models.Fleet, error) {
	query := `
		SELECT id, name, status, policy, user_id, created_at, updated_at
		FROM fleets
		WHERE status = 'active'
		ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fleets []*models.Fleet
	for rows.Next() {
		fleet, err := scanFleet(rows)
		if err != nil {
			return nil, err
		}
		fleets = append(fleets, fleet)
	}

	return fleets, rows.Err()
}

func (r *FleetRepository) GetByID(ctx context.Context, id string) (*models.Fleet, error) {
	query := `
		SELECT id, name, status, policy, user_id, created_at, updated_at
		FROM fleets
		WHERE id = $1`

	row := r.db.QueryRowContext(ctx, query, id)
	fleet, err := scanFleetRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrFleetNotFound
	}
	return fleet, err
}

func (r *FleetRepository) GetByName(ctx context.Context, name string) (*models.Fleet, error) {
	query := `
		SELECT id, name, status, policy, user_id, created_at, updated_at
		FROM fleets
		WHERE name = $1`

	row := r.db.QueryRowContext(ctx, query, name)
	fleet, err := scanFleetRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrFleetNotFound
	}
	return fleet, err
}

func (r *FleetRepository) Create(ctx context.Context, fleet *models.Fleet) error {
	policyJSON, err := fleet.PolicyJSON()
	if err != nil {
		return err
	}

	query := `
		INSERT INTO fleets (id, name, status, policy, user_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`

	return r.db.QueryRowContext(ctx, query,
		fleet.ID,
		fleet.Name,
		fleet.Status,
		policyJSON,
		fleet.UserID,
	).Scan(&fleet.CreatedAt, &fleet.UpdatedAt)
}

func (r *FleetRepository) Update(ctx context.Context, fleet *models.Fleet) error {
	policyJSON, err := fleet.PolicyJSON()
	if err != nil {
		return err
	}

	query := `
		UPDATE fleets
		SET name = $2, status = $3, policy = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err = r.db.QueryRowContext(ctx, query,
		fleet.ID,
		fleet.Name,
		fleet.Status,
		policyJSON,
	).Scan(&fleet.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return ErrFleetNotFound
	}
	return err
}

func (r *FleetRepository) UpdateStatus(ctx context.Context, id string, status models.FleetStatus) error {
	query := `UPDATE fleets SET status = $2, updated_at = NOW() WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, status)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrFleetNotFound
	}
	return nil
}

func (r *FleetRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM fleets WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrFleetNotFound
	}

	return nil
}

func scanFleet(rows *sql.Rows) (*models.Fleet, error) {
	var fleet models.Fleet
	var policyJSON []byte
	var status string

	err := rows.Scan(
		&fleet.ID,
		&fleet.Name,
		&status,
		&policyJSON,
		&fleet.UserID,
		&fleet.CreatedAt,
		&fleet.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	fleet.Status = models.FleetStatus(status)
	if err := fleet.ParsePolicy(policyJSON); err != nil {
		return nil, err
	}

	return &fleet, nil
}

func scanFleetRow(row *sql.Row) (*models.Fleet, error) {
	var fleet models.Fleet
	var policyJSON []byte
	var status string

	err := row.Scan(
		&fleet.ID,
		&fleet.Name,
		&status,
		&policyJSON,
		&fleet.UserID,
		&fleet.CreatedAt,
		&fleet.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	fleet.Status = models.FleetStatus(status)
	if err := fleet.ParsePolicy(policyJSON); err != nil {
		return nil, err
	}

	return &fleet, nil
}
