package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shegerlabs/accreditation-service/internal/domain"
)

// PostgresParticipantTypeRepository implements ParticipantTypeRepository using PostgreSQL
type PostgresParticipantTypeRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresParticipantTypeRepository creates a new PostgresParticipantTypeRepository
func NewPostgresParticipantTypeRepository(pool *pgxpool.Pool) *PostgresParticipantTypeRepository {
	return &PostgresParticipantTypeRepository{pool: pool}
}

// Create creates a new participant type
func (r *PostgresParticipantTypeRepository) Create(ctx context.Context, pt *domain.ParticipantType) error {
	docsJSON, err := json.Marshal(pt.RequiredDocuments)
	if err != nil {
		return fmt.Errorf("failed to marshal required documents: %w", err)
	}

	query := `
		INSERT INTO participant_types (id, tenant_id, name, slug, required_documents, allow_self_register, quota_exempt, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = r.pool.Exec(ctx, query,
		pt.ID,
		pt.TenantID,
		pt.Name,
		pt.Slug,
		docsJSON,
		pt.AllowSelfRegister,
		pt.QuotaExempt,
		pt.CreatedAt,
		pt.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

// GetByID retrieves a participant type by ID
func (r *PostgresParticipantTypeRepository) GetByID(ctx context.Context, id string) (*domain.ParticipantType, error) {
	query := `
		SELECT id, tenant_id, name, slug, required_documents, allow_self_register, quota_exempt, created_at, updated_at
		FROM participant_types
		WHERE id = $1
	`
	return scanParticipantType(r.pool.QueryRow(ctx, query, id))
}

func scanParticipantType(row pgx.Row) (*domain.ParticipantType, error) {
	pt := &domain.ParticipantType{}
	var docsJSON []byte

	err := row.Scan(
		&pt.ID,
		&pt.TenantID,
		&pt.Name,
		&pt.Slug,
		&docsJSON,
		&pt.AllowSelfRegister,
		&pt.QuotaExempt,
		&pt.CreatedAt,
		&pt.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	if len(docsJSON) > 0 {
		if err := json.Unmarshal(docsJSON, &pt.RequiredDocuments); err != nil {
			return nil, fmt.Errorf("failed to unmarshal required documents: %w", err)
		}
	}

	return pt, nil
}

// ListByTenant retrieves all participant types for a tenant
func (r *PostgresParticipantTypeRepository) ListByTenant(ctx context.Context, tenantID string) ([]*domain.ParticipantType, error) {
	query := `
		SELECT id, tenant_id, name, slug, required_documents, allow_self_register, quota_exempt, created_at, updated_at
		FROM participant_types
		WHERE tenant_id = $1
		ORDER BY name ASC
	`
	rows, err := r.pool.Query(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	types := make([]*domain.ParticipantType, 0)
	for rows.Next() {
		pt := &domain.ParticipantType{}
		var docsJSON []byte
		err := rows.Scan(
			&pt.ID,
			&pt.TenantID,
			&pt.Name,
			&pt.Slug,
			&docsJSON,
			&pt.AllowSelfRegister,
			&pt.QuotaExempt,
			&pt.CreatedAt,
			&pt.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		if len(docsJSON) > 0 {
			if err := json.Unmarshal(docsJSON, &pt.RequiredDocuments); err != nil {
				return nil, fmt.Errorf("failed to unmarshal required documents: %w", err)
			}
		}
		types = append(types, pt)
	}

	return types, rows.Err()
}

// Update updates a participant type
func (r *PostgresParticipantTypeRepository) Update(ctx context.Context, pt *domain.ParticipantType) error {
	docsJSON, err := json.Marshal(pt.RequiredDocuments)
	if err != nil {
		return fmt.Errorf("failed to marshal required documents: %w", err)
	}

	query := `
		UPDATE participant_types
		SET name = $2, required_documents = $3, allow_self_register = $4, quota_exempt = $5, updated_at = $6
		WHERE id = $1
	`
	pt.UpdatedAt = time.Now()
	result, err := r.pool.Exec(ctx, query,
		pt.ID,
		pt.Name,
		docsJSON,
		pt.AllowSelfRegister,
		pt.QuotaExempt,
		pt.UpdatedAt,
	)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("participant type not found")
	}

	return nil
}

// Delete removes a participant type
func (r *PostgresParticipantTypeRepository) Delete(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM participant_types WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("participant type not found")
	}
	return nil
}
