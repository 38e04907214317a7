package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bedic/places-backend/internal/core/domain"
	apperrors "github.com/bedic/places-backend/internal/core/errors"
	"github.com/bedic/places-backend/internal/core/ports"
)

// PolicyRepository is the secondary adapter for moderation policy persistence.
type PolicyRepository struct {
	pool *pgxpool.Pool
}

var _ ports.PolicyRepository = (*PolicyRepository)(nil)

// NewPolicyRepository creates a new policy repository.
func NewPolicyRepository(pool *pgxpool.Pool) ports.PolicyRepository {
	return &PolicyRepository{pool: pool}
}

func (r *PolicyRepository) db(ctx context.Context) querier {
	return queryEngine(ctx, r.pool)
}

const policyColumns = `id, report_type, min_severity, action, mute_hours, active, created_at, updated_at`

func scanPolicy(row pgx.Row) (*domain.ModerationPolicy, error) {
	var (
		id        pgtype.UUID
		policy    domain.ModerationPolicy
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)

	err := row.Scan(&id, &policy.ReportType, &policy.MinSeverity, &policy.Action,
		&policy.MuteHours, &policy.Active, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	policy.ID = id.Bytes
	policy.CreatedAt = createdAt.Time
	if updatedAt.Valid {
		policy.UpdatedAt = &updatedAt.Time
	}
	return &policy, nil
}

// Create persists a new moderation policy.
func (r *PolicyRepository) Create(ctx context.Context, policy *domain.ModerationPolicy) (*domain.ModerationPolicy, error) {
	row := r.db(ctx).QueryRow(ctx, `
		INSERT INTO moderation_policies (id, report_type, min_severity, action, mute_hours, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+policyColumns,
		policy.ID, policy.ReportType, policy.MinSeverity, policy.Action,
		policy.MuteHours, policy.Active, policy.CreatedAt,
	)
	return scanPolicy(row)
}

// GetByID retrieves a policy by id.
func (r *PolicyRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ModerationPolicy, error) {
	row := r.db(ctx).QueryRow(ctx, `SELECT `+policyColumns+` FROM moderation_policies WHERE id = $1`, id)

	policy, err := scanPolicy(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrPolicyNotFound
		}
		return nil, err
	}
	return policy, nil
}

// List retrieves policies, most specific severity threshold first.
func (r *PolicyRepository) List(ctx context.Context, activeOnly bool) ([]*domain.ModerationPolicy, error) {
	query := `SELECT ` + policyColumns + ` FROM moderation_policies`
	if activeOnly {
		query += ` WHERE active`
	}
	query += ` ORDER BY report_type,
		CASE min_severity WHEN 'high' THEN 3 WHEN 'medium' THEN 2 ELSE 1 END DESC`

	rows, err := r.db(ctx).Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var policies []*domain.ModerationPolicy
	for rows.Next() {
		policy, err := scanPolicy(rows)
		if err != nil {
			return nil, err
		}
		policies = append(policies, policy)
	}
	return policies, rows.Err()
}

// Update persists changes to an existing policy.
func (r *PolicyRepository) Update(ctx context.Context, policy *domain.ModerationPolicy) (*domain.ModerationPolicy, error) {
	row := r.db(ctx).QueryRow(ctx, `
		UPDATE moderation_policies
		SET report_type = $2, min_severity = $3, action = $4, mute_hours = $5, active = $6, updated_at = $7
		WHERE id = $1
		RETURNING `+policyColumns,
		policy.ID, policy.ReportType, policy.MinSeverity, policy.Action,
		policy.MuteHours, policy.Active, policy.UpdatedAt,
	)

	updated, err := scanPolicy(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrPolicyNotFound
		}
		return nil, err
	}
	return updated, nil
}

// Delete removes a policy.
func (r *PolicyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db(ctx).Exec(ctx, `DELETE FROM moderation_policies WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrPolicyNotFound
	}
	return nil
}
