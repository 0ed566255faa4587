package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shegerlabs/accreditation-service/internal/domain"
)

// PostgresWorkflowRepository implements WorkflowRepository using PostgreSQL
type PostgresWorkflowRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresWorkflowRepository creates a new PostgresWorkflowRepository
func NewPostgresWorkflowRepository(pool *pgxpool.Pool) *PostgresWorkflowRepository {
	return &PostgresWorkflowRepository{pool: pool}
}

// Create persists a workflow and its step chain in one transaction. Steps are
// inserted with a null next_step_id first and linked in a second pass so the
// self-referencing foreign key never sees a missing target.
func (r *PostgresWorkflowRepository) Create(ctx context.Context, workflow *domain.Workflow) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO workflows (id, tenant_id, event_id, participant_type_id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = tx.Exec(ctx, query,
		workflow.ID,
		workflow.TenantID,
		workflow.EventID,
		workflow.ParticipantTypeID,
		workflow.Name,
		workflow.CreatedAt,
		workflow.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to insert workflow: %w", err)
	}

	stepQuery := `
		INSERT INTO workflow_steps (id, workflow_id, position, name, role_name, action, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	for i := range workflow.Steps {
		s := &workflow.Steps[i]
		_, err = tx.Exec(ctx, stepQuery,
			s.ID,
			workflow.ID,
			s.Position,
			s.Name,
			s.RoleName,
			string(s.Action),
			s.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert step %q: %w", s.Name, err)
		}
	}

	linkQuery := `UPDATE workflow_steps SET next_step_id = $2 WHERE id = $1`
	for i := range workflow.Steps {
		s := &workflow.Steps[i]
		if s.NextStepID == nil {
			continue
		}
		if _, err = tx.Exec(ctx, linkQuery, s.ID, *s.NextStepID); err != nil {
			return fmt.Errorf("failed to link step %q: %w", s.Name, err)
		}
	}

	return tx.Commit(ctx)
}

// GetByID retrieves a workflow with its steps
func (r *PostgresWorkflowRepository) GetByID(ctx context.Context, id string) (*domain.Workflow, error) {
	query := `
		SELECT id, tenant_id, event_id, participant_type_id, name, created_at, updated_at
		FROM workflows
		WHERE id = $1
	`
	workflow := &domain.Workflow{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&workflow.ID,
		&workflow.TenantID,
		&workflow.EventID,
		&workflow.ParticipantTypeID,
		&workflow.Name,
		&workflow.CreatedAt,
		&workflow.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	steps, err := r.loadSteps(ctx, workflow.ID)
	if err != nil {
		return nil, err
	}
	workflow.Steps = steps

	return workflow, nil
}

func (r *PostgresWorkflowRepository) loadSteps(ctx context.Context, workflowID string) ([]domain.Step, error) {
	query := `
		SELECT id, workflow_id, position, name, role_name, action, next_step_id, created_at
		FROM workflow_steps
		WHERE workflow_id = $1
		ORDER BY position ASC
	`
	rows, err := r.pool.Query(ctx, query, workflowID)
	if err != nil {
		return nil, fmt.Errorf("failed to load steps: %w", err)
	}
	defer rows.Close()

	steps := make([]domain.Step, 0)
	for rows.Next() {
		var s domain.Step
		var action string
		if err := rows.Scan(&s.ID, &s.WorkflowID, &s.Position, &s.Name, &s.RoleName, &action, &s.NextStepID, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan step: %w", err)
		}
		s.Action = domain.Action(action)
		steps = append(steps, s)
	}

	return steps, rows.Err()
}

// ListByEvent retrieves all workflows configured for an event
func (r *PostgresWorkflowRepository) ListByEvent(ctx context.Context, eventID string) ([]*domain.Workflow, error) {
	query := `
		SELECT id, tenant_id, event_id, participant_type_id, name, created_at, updated_at
		FROM workflows
		WHERE event_id = $1
		ORDER BY created_at ASC
	`
	return r.queryWorkflows(ctx, query, eventID)
}

// Resolve returns every workflow configured for the
// (tenant, event, participant type) triple
func (r *PostgresWorkflowRepository) Resolve(ctx context.Context, tenantID, eventID, participantTypeID string) ([]*domain.Workflow, error) {
	query := `
		SELECT id, tenant_id, event_id, participant_type_id, name, created_at, updated_at
		FROM workflows
		WHERE tenant_id = $1 AND event_id = $2 AND participant_type_id = $3
		ORDER BY created_at ASC
	`
	return r.queryWorkflows(ctx, query, tenantID, eventID, participantTypeID)
}

func (r *PostgresWorkflowRepository) queryWorkflows(ctx context.Context, query string, args ...interface{}) ([]*domain.Workflow, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	workflows := make([]*domain.Workflow, 0)
	for rows.Next() {
		workflow := &domain.Workflow{}
		err := rows.Scan(
			&workflow.ID,
			&workflow.TenantID,
			&workflow.EventID,
			&workflow.ParticipantTypeID,
			&workflow.Name,
			&workflow.CreatedAt,
			&workflow.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		workflows = append(workflows, workflow)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, workflow := range workflows {
		steps, err := r.loadSteps(ctx, workflow.ID)
		if err != nil {
			return nil, err
		}
		workflow.Steps = steps
	}

	return workflows, nil
}

// GetStep retrieves a single step by ID
func (r *PostgresWorkflowRepository) GetStep(ctx context.Context, stepID string) (*domain.Step, error) {
	query := `
		SELECT id, workflow_id, position, name, role_name, action, next_step_id, created_at
		FROM workflow_steps
		WHERE id = $1
	`
	var s domain.Step
	var action string
	err := r.pool.QueryRow(ctx, query, stepID).Scan(
		&s.ID, &s.WorkflowID, &s.Position, &s.Name, &s.RoleName, &action, &s.NextStepID, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	s.Action = domain.Action(action)
	return &s, nil
}

// Delete removes a workflow and its steps
func (r *PostgresWorkflowRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Break the self-referencing links before deleting the chain
	if _, err := tx.Exec(ctx, `UPDATE workflow_steps SET next_step_id = NULL WHERE workflow_id = $1`, id); err != nil {
		return fmt.Errorf("failed to unlink steps: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM workflow_steps WHERE workflow_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete steps: %w", err)
	}

	result, err := tx.Exec(ctx, `DELETE FROM workflows WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete workflow: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("workflow not found")
	}

	return tx.Commit(ctx)
}
