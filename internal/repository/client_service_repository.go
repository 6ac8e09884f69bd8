package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/brainspot/timesheet-api/internal/models"
)

const clientServiceColumns = `id, client_id, service_id, pricing_type, monthly_fixed_price, hourly_rate, one_time_price, commission_rate_pct, created_at, updated_at`

// ClientServiceRepository manages the client-to-service assignments that
// employees log their hours against.
type ClientServiceRepository struct {
	db *sqlx.DB
}

// NewClientServiceRepository constructs a ClientServiceRepository.
func NewClientServiceRepository(db *sqlx.DB) *ClientServiceRepository {
	return &ClientServiceRepository{db: db}
}

// ListByClient returns a client's assignments joined with display names.
func (r *ClientServiceRepository) ListByClient(ctx context.Context, clientID string) ([]models.ClientServiceDetail, error) {
	const query = `SELECT cs.id, cs.client_id, cs.service_id, cs.pricing_type, cs.monthly_fixed_price,
			cs.hourly_rate, cs.one_time_price, cs.commission_rate_pct, cs.created_at, cs.updated_at,
			c.name AS client_name, s.name AS service_name
		FROM client_services cs
		JOIN clients c ON c.id = cs.client_id
		JOIN services s ON s.id = cs.service_id
		WHERE cs.client_id = $1
		ORDER BY s.name ASC`
	var details []models.ClientServiceDetail
	if err := r.db.SelectContext(ctx, &details, query, clientID); err != nil {
		return nil, fmt.Errorf("list client services: %w", err)
	}
	return details, nil
}

// ListAll returns every assignment for rollup queries.
func (r *ClientServiceRepository) ListAll(ctx context.Context) ([]models.ClientService, error) {
	query := fmt.Sprintf("SELECT %s FROM client_services", clientServiceColumns)
	var assignments []models.ClientService
	if err := r.db.SelectContext(ctx, &assignments, query); err != nil {
		return nil, fmt.Errorf("list all client services: %w", err)
	}
	return assignments, nil
}

// FindByID fetches an assignment by ID.
func (r *ClientServiceRepository) FindByID(ctx context.Context, id string) (*models.ClientService, error) {
	query := fmt.Sprintf("SELECT %s FROM client_services WHERE id = $1", clientServiceColumns)
	var assignment models.ClientService
	if err := r.db.GetContext(ctx, &assignment, query, id); err != nil {
		return nil, err
	}
	return &assignment, nil
}

// ExistsByPair checks whether a client already carries the given service.
func (r *ClientServiceRepository) ExistsByPair(ctx context.Context, clientID, serviceID string) (bool, error) {
	const query = `SELECT 1 FROM client_services WHERE client_id = $1 AND service_id = $2 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, clientID, serviceID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check client service pair: %w", err)
	}
	return true, nil
}

// Create inserts a new assignment record.
func (r *ClientServiceRepository) Create(ctx context.Context, assignment *models.ClientService) error {
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if assignment.CreatedAt.IsZero() {
		assignment.CreatedAt = now
	}
	assignment.UpdatedAt = now

	const query = `INSERT INTO client_services (id, client_id, service_id, pricing_type, monthly_fixed_price, hourly_rate, one_time_price, commission_rate_pct, created_at, updated_at)
		VALUES (:id, :client_id, :service_id, :pricing_type, :monthly_fixed_price, :hourly_rate, :one_time_price, :commission_rate_pct, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, assignment); err != nil {
		return fmt.Errorf("create client service: %w", err)
	}
	return nil
}

// Update modifies an existing assignment; client and service stay fixed.
func (r *ClientServiceRepository) Update(ctx context.Context, assignment *models.ClientService) error {
	assignment.UpdatedAt = time.Now().UTC()
	const query = `UPDATE client_services
		SET pricing_type = :pricing_type, monthly_fixed_price = :monthly_fixed_price, hourly_rate = :hourly_rate,
			one_time_price = :one_time_price, commission_rate_pct = :commission_rate_pct, updated_at = :updated_at
		WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, assignment); err != nil {
		return fmt.Errorf("update client service: %w", err)
	}
	return nil
}

// Delete removes an assignment.
func (r *ClientServiceRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM client_services WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete client service: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check delete rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
