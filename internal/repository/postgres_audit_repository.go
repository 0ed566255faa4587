package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shegerlabs/accreditation-service/internal/domain"
)

// queryExecer is the subset of pgx shared by pools and transactions, so audit
// entries can be written standalone or inside another repository's transaction
type queryExecer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresAuditRepository implements AuditRepository using PostgreSQL.
// The table is append-only: this repository issues INSERT and SELECT only.
type PostgresAuditRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresAuditRepository creates a new PostgresAuditRepository
func NewPostgresAuditRepository(pool *pgxpool.Pool) *PostgresAuditRepository {
	return &PostgresAuditRepository{pool: pool}
}

// insertAuditEntry writes a single audit entry via any pgx executor
func insertAuditEntry(ctx context.Context, q queryExecer, entry *domain.AuditEntry) error {
	var metadataJSON []byte
	if entry.Metadata != nil {
		var err error
		metadataJSON, err = json.Marshal(entry.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal audit metadata: %w", err)
		}
	}

	query := `
		INSERT INTO audit_entries (id, action, entity_type, entity_id, actor_id, description, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := q.Exec(ctx, query,
		entry.ID,
		entry.Action,
		entry.EntityType,
		entry.EntityID,
		entry.ActorID,
		nullStringOrValue(entry.Description),
		metadataJSON,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}
	return nil
}

// Record appends a standalone audit entry
func (r *PostgresAuditRepository) Record(ctx context.Context, entry *domain.AuditEntry) error {
	return insertAuditEntry(ctx, r.pool, entry)
}

const auditSelect = `
	SELECT id, action, entity_type, entity_id, actor_id,
	       COALESCE(description, '') as description, metadata, created_at
	FROM audit_entries`

// ListByEntity retrieves audit entries for one entity, oldest first
func (r *PostgresAuditRepository) ListByEntity(ctx context.Context, entityType, entityID string, page, limit int) ([]*domain.AuditEntry, int, error) {
	countQuery := `SELECT COUNT(*) FROM audit_entries WHERE entity_type = $1 AND entity_id = $2`
	var totalCount int
	if err := r.pool.QueryRow(ctx, countQuery, entityType, entityID).Scan(&totalCount); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	query := auditSelect + `
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY created_at ASC
		LIMIT $3 OFFSET $4
	`
	entries, err := r.queryEntries(ctx, query, entityType, entityID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return entries, totalCount, nil
}

// List retrieves audit entries with optional action/actor filters, newest first
func (r *PostgresAuditRepository) List(ctx context.Context, page, limit int, action, actorID string) ([]*domain.AuditEntry, int, error) {
	whereClause := "WHERE 1=1"
	args := []interface{}{}
	argIndex := 1

	if action != "" {
		whereClause += fmt.Sprintf(" AND action = $%d", argIndex)
		args = append(args, action)
		argIndex++
	}
	if actorID != "" {
		whereClause += fmt.Sprintf(" AND actor_id = $%d", argIndex)
		args = append(args, actorID)
		argIndex++
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM audit_entries %s", whereClause)
	var totalCount int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&totalCount); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	query := fmt.Sprintf(`%s %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		auditSelect, whereClause, argIndex, argIndex+1)
	args = append(args, limit, offset)

	entries, err := r.queryEntries(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return entries, totalCount, nil
}

func (r *PostgresAuditRepository) queryEntries(ctx context.Context, query string, args ...interface{}) ([]*domain.AuditEntry, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]*domain.AuditEntry, 0)
	for rows.Next() {
		entry := &domain.AuditEntry{}
		var metadataJSON []byte
		err := rows.Scan(
			&entry.ID,
			&entry.Action,
			&entry.EntityType,
			&entry.EntityID,
			&entry.ActorID,
			&entry.Description,
			&metadataJSON,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &entry.Metadata); err != nil {
				return nil, fmt.Errorf("failed to unmarshal audit metadata: %w", err)
			}
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}
