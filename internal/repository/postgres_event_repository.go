package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shegerlabs/accreditation-service/internal/domain"
)

// PostgresEventRepository implements EventRepository using PostgreSQL
type PostgresEventRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresEventRepository creates a new PostgresEventRepository
func NewPostgresEventRepository(pool *pgxpool.Pool) *PostgresEventRepository {
	return &PostgresEventRepository{pool: pool}
}

const eventSelect = `
	SELECT id, tenant_id, name, slug, COALESCE(description, '') as description,
	       COALESCE(venue_name, '') as venue_name, COALESCE(venue_address, '') as venue_address,
	       COALESCE(city, '') as city, COALESCE(country, '') as country,
	       start_at, end_at, status, published_at, created_at, updated_at, deleted_at
	FROM events`

// Create creates a new event
func (r *PostgresEventRepository) Create(ctx context.Context, event *domain.Event) error {
	query := `
		INSERT INTO events (id, tenant_id, name, slug, description, venue_name, venue_address,
		                    city, country, start_at, end_at, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := r.pool.Exec(ctx, query,
		event.ID,
		event.TenantID,
		event.Name,
		event.Slug,
		nullStringOrValue(event.Description),
		nullStringOrValue(event.VenueName),
		nullStringOrValue(event.VenueAddress),
		nullStringOrValue(event.City),
		nullStringOrValue(event.Country),
		event.StartAt,
		event.EndAt,
		event.Status,
		event.CreatedAt,
		event.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

// GetByID retrieves an event by ID
func (r *PostgresEventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := eventSelect + ` WHERE id = $1 AND deleted_at IS NULL`
	return scanEvent(r.pool.QueryRow(ctx, query, id))
}

// GetBySlug retrieves an event by tenant and slug
func (r *PostgresEventRepository) GetBySlug(ctx context.Context, tenantID, slug string) (*domain.Event, error) {
	query := eventSelect + ` WHERE tenant_id = $1 AND slug = $2 AND deleted_at IS NULL`
	return scanEvent(r.pool.QueryRow(ctx, query, tenantID, slug))
}

func scanEvent(row pgx.Row) (*domain.Event, error) {
	event := &domain.Event{}
	err := row.Scan(
		&event.ID,
		&event.TenantID,
		&event.Name,
		&event.Slug,
		&event.Description,
		&event.VenueName,
		&event.VenueAddress,
		&event.City,
		&event.Country,
		&event.StartAt,
		&event.EndAt,
		&event.Status,
		&event.PublishedAt,
		&event.CreatedAt,
		&event.UpdatedAt,
		&event.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return event, nil
}

// ListByTenant retrieves events for a tenant with pagination and optional status filter
func (r *PostgresEventRepository) ListByTenant(ctx context.Context, tenantID string, page, limit int, status string) ([]*domain.Event, int, error) {
	whereClause := "WHERE tenant_id = $1 AND deleted_at IS NULL"
	args := []interface{}{tenantID}
	argIndex := 2

	if status != "" {
		whereClause += fmt.Sprintf(" AND status = $%d", argIndex)
		args = append(args, status)
		argIndex++
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM events %s", whereClause)
	var totalCount int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&totalCount); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	query := fmt.Sprintf(`%s %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		eventSelect, whereClause, argIndex, argIndex+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	events := make([]*domain.Event, 0)
	for rows.Next() {
		event := &domain.Event{}
		err := rows.Scan(
			&event.ID,
			&event.TenantID,
			&event.Name,
			&event.Slug,
			&event.Description,
			&event.VenueName,
			&event.VenueAddress,
			&event.City,
			&event.Country,
			&event.StartAt,
			&event.EndAt,
			&event.Status,
			&event.PublishedAt,
			&event.CreatedAt,
			&event.UpdatedAt,
			&event.DeletedAt,
		)
		if err != nil {
			return nil, 0, err
		}
		events = append(events, event)
	}

	return events, totalCount, rows.Err()
}

// Update updates an event's descriptive fields
func (r *PostgresEventRepository) Update(ctx context.Context, event *domain.Event) error {
	query := `
		UPDATE events
		SET name = $2, description = $3, venue_name = $4, venue_address = $5,
		    city = $6, country = $7, start_at = $8, end_at = $9, updated_at = $10
		WHERE id = $1 AND deleted_at IS NULL
	`
	event.UpdatedAt = time.Now()
	result, err := r.pool.Exec(ctx, query,
		event.ID,
		event.Name,
		nullStringOrValue(event.Description),
		nullStringOrValue(event.VenueName),
		nullStringOrValue(event.VenueAddress),
		nullStringOrValue(event.City),
		nullStringOrValue(event.Country),
		event.StartAt,
		event.EndAt,
		event.UpdatedAt,
	)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("event not found or already deleted")
	}

	return nil
}

// UpdateStatus moves the event through its lifecycle. The published_at
// timestamp is stamped on the draft -> published move.
func (r *PostgresEventRepository) UpdateStatus(ctx context.Context, id, status string) error {
	query := `
		UPDATE events
		SET status = $2,
		    published_at = CASE WHEN $2 = 'published' THEN NOW() ELSE published_at END,
		    updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`
	result, err := r.pool.Exec(ctx, query, id, status)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("event not found or already deleted")
	}

	return nil
}

// SoftDelete soft deletes an event
func (r *PostgresEventRepository) SoftDelete(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx,
		`UPDATE events SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL`,
		id, time.Now())
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("event not found or already deleted")
	}

	return nil
}
