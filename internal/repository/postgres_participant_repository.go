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

// PostgresParticipantRepository implements ParticipantRepository using PostgreSQL
type PostgresParticipantRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresParticipantRepository creates a new PostgresParticipantRepository
func NewPostgresParticipantRepository(pool *pgxpool.Pool) *PostgresParticipantRepository {
	return &PostgresParticipantRepository{pool: pool}
}

const participantSelect = `
	SELECT id, tenant_id, event_id, participant_type_id, first_name, last_name,
	       email, COALESCE(phone, '') as phone, COALESCE(passport_number, '') as passport_number,
	       COALESCE(nationality, '') as nationality, COALESCE(organization, '') as organization,
	       COALESCE(job_title, '') as job_title, status, step_id,
	       COALESCE(wish_list, '') as wish_list, registration_code,
	       created_at, updated_at, deleted_at
	FROM participants`

// Create persists the participant, its documents, and the registration audit
// entry in a single transaction
func (r *PostgresParticipantRepository) Create(ctx context.Context, p *domain.Participant, entry *domain.AuditEntry) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO participants (id, tenant_id, event_id, participant_type_id,
			first_name, last_name, email, phone, passport_number, nationality,
			organization, job_title, status, step_id, wish_list, registration_code,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`
	_, err = tx.Exec(ctx, query,
		p.ID,
		p.TenantID,
		p.EventID,
		p.ParticipantTypeID,
		p.FirstName,
		p.LastName,
		p.Email,
		nullStringOrValue(p.Phone),
		nullStringOrValue(p.PassportNumber),
		nullStringOrValue(p.Nationality),
		nullStringOrValue(p.Organization),
		nullStringOrValue(p.JobTitle),
		string(p.Status),
		p.StepID,
		nullStringOrValue(p.WishList),
		p.RegistrationCode,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to insert participant: %w", err)
	}

	for i := range p.Documents {
		if err := insertDocument(ctx, tx, &p.Documents[i]); err != nil {
			return err
		}
	}

	if entry != nil {
		if err := insertAuditEntry(ctx, tx, entry); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// GetByID retrieves a participant with its documents
func (r *PostgresParticipantRepository) GetByID(ctx context.Context, id string) (*domain.Participant, error) {
	query := participantSelect + ` WHERE id = $1 AND deleted_at IS NULL`
	p, err := scanParticipant(r.pool.QueryRow(ctx, query, id))
	if err != nil || p == nil {
		return p, err
	}
	if err := r.loadDocuments(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// GetByRegistrationCode retrieves a participant by its public lookup key
func (r *PostgresParticipantRepository) GetByRegistrationCode(ctx context.Context, code string) (*domain.Participant, error) {
	query := participantSelect + ` WHERE registration_code = $1 AND deleted_at IS NULL`
	p, err := scanParticipant(r.pool.QueryRow(ctx, query, code))
	if err != nil || p == nil {
		return p, err
	}
	if err := r.loadDocuments(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func scanParticipant(row pgx.Row) (*domain.Participant, error) {
	p := &domain.Participant{}
	var status string
	err := row.Scan(
		&p.ID,
		&p.TenantID,
		&p.EventID,
		&p.ParticipantTypeID,
		&p.FirstName,
		&p.LastName,
		&p.Email,
		&p.Phone,
		&p.PassportNumber,
		&p.Nationality,
		&p.Organization,
		&p.JobTitle,
		&status,
		&p.StepID,
		&p.WishList,
		&p.RegistrationCode,
		&p.CreatedAt,
		&p.UpdatedAt,
		&p.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	p.Status = domain.ParticipantStatus(status)
	return p, nil
}

func (r *PostgresParticipantRepository) loadDocuments(ctx context.Context, p *domain.Participant) error {
	query := `
		SELECT id, participant_id, kind, container, file_name,
		       COALESCE(content_type, '') as content_type, size_bytes, uploaded_at
		FROM participant_documents
		WHERE participant_id = $1
		ORDER BY uploaded_at ASC
	`
	rows, err := r.pool.Query(ctx, query, p.ID)
	if err != nil {
		return fmt.Errorf("failed to load documents: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var d domain.ParticipantDocument
		var kind string
		if err := rows.Scan(&d.ID, &d.ParticipantID, &kind, &d.Container, &d.FileName, &d.ContentType, &d.SizeBytes, &d.UploadedAt); err != nil {
			return fmt.Errorf("failed to scan document: %w", err)
		}
		d.Kind = domain.DocumentKind(kind)
		p.Documents = append(p.Documents, d)
	}

	return rows.Err()
}

// ListByStepRoles returns the work queue: non-terminal participants whose
// current step is bound to one of the actor's roles. A printed or stepless
// participant never appears here, which is what retires them from the
// workflow.
func (r *PostgresParticipantRepository) ListByStepRoles(ctx context.Context, tenantID string, roles []string, page, limit int) ([]*domain.Participant, int, error) {
	if len(roles) == 0 {
		return []*domain.Participant{}, 0, nil
	}

	countQuery := `
		SELECT COUNT(*)
		FROM participants p
		JOIN workflow_steps s ON s.id = p.step_id
		WHERE p.tenant_id = $1 AND p.deleted_at IS NULL
		  AND p.status NOT IN ('PRINTED')
		  AND s.role_name = ANY($2)
	`
	var totalCount int
	if err := r.pool.QueryRow(ctx, countQuery, tenantID, roles).Scan(&totalCount); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	query := `
		SELECT p.id, p.tenant_id, p.event_id, p.participant_type_id, p.first_name, p.last_name,
		       p.email, COALESCE(p.phone, '') as phone, COALESCE(p.passport_number, '') as passport_number,
		       COALESCE(p.nationality, '') as nationality, COALESCE(p.organization, '') as organization,
		       COALESCE(p.job_title, '') as job_title, p.status, p.step_id,
		       COALESCE(p.wish_list, '') as wish_list, p.registration_code,
		       p.created_at, p.updated_at, p.deleted_at
		FROM participants p
		JOIN workflow_steps s ON s.id = p.step_id
		WHERE p.tenant_id = $1 AND p.deleted_at IS NULL
		  AND p.status NOT IN ('PRINTED')
		  AND s.role_name = ANY($2)
		ORDER BY p.created_at ASC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.pool.Query(ctx, query, tenantID, roles, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	participants := make([]*domain.Participant, 0)
	for rows.Next() {
		p := &domain.Participant{}
		var status string
		err := rows.Scan(
			&p.ID, &p.TenantID, &p.EventID, &p.ParticipantTypeID, &p.FirstName, &p.LastName,
			&p.Email, &p.Phone, &p.PassportNumber, &p.Nationality, &p.Organization,
			&p.JobTitle, &status, &p.StepID, &p.WishList, &p.RegistrationCode,
			&p.CreatedAt, &p.UpdatedAt, &p.DeletedAt,
		)
		if err != nil {
			return nil, 0, err
		}
		p.Status = domain.ParticipantStatus(status)
		participants = append(participants, p)
	}

	return participants, totalCount, rows.Err()
}

// Transition applies a workflow transition as a single conditional update:
// the row is touched only if its step still equals FromStepID, and the audit
// entry commits in the same transaction or not at all.
func (r *PostgresParticipantRepository) Transition(ctx context.Context, t *TransitionUpdate, entry *domain.AuditEntry) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE participants
		SET step_id = $3, status = $4, updated_at = $5
		WHERE id = $1 AND step_id = $2 AND deleted_at IS NULL
	`
	result, err := tx.Exec(ctx, query,
		t.ParticipantID,
		t.FromStepID,
		t.ToStepID,
		string(t.NewStatus),
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to update participant: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrStaleTransition
	}

	if err := insertAuditEntry(ctx, tx, entry); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// UpdateWishList replaces the participant's wishlist
func (r *PostgresParticipantRepository) UpdateWishList(ctx context.Context, id, wishList string) error {
	result, err := r.pool.Exec(ctx,
		`UPDATE participants SET wish_list = $2, updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`,
		id, nullStringOrValue(wishList))
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("participant not found or already deleted")
	}
	return nil
}

// AddDocument attaches an uploaded document to a participant
func (r *PostgresParticipantRepository) AddDocument(ctx context.Context, doc *domain.ParticipantDocument) error {
	return insertDocument(ctx, r.pool, doc)
}

func insertDocument(ctx context.Context, q queryExecer, doc *domain.ParticipantDocument) error {
	query := `
		INSERT INTO participant_documents (id, participant_id, kind, container, file_name, content_type, size_bytes, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := q.Exec(ctx, query,
		doc.ID,
		doc.ParticipantID,
		string(doc.Kind),
		doc.Container,
		doc.FileName,
		nullStringOrValue(doc.ContentType),
		doc.SizeBytes,
		doc.UploadedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}
	return nil
}
