package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bedic/places-backend/internal/core/domain"
	apperrors "github.com/bedic/places-backend/internal/core/errors"
	"github.com/bedic/places-backend/internal/core/ports"
)

// ReportRepository is the secondary adapter for report persistence.
type ReportRepository struct {
	pool *pgxpool.Pool
}

var _ ports.ReportRepository = (*ReportRepository)(nil)

// NewReportRepository creates a new report repository.
func NewReportRepository(pool *pgxpool.Pool) ports.ReportRepository {
	return &ReportRepository{pool: pool}
}

func (r *ReportRepository) db(ctx context.Context) querier {
	return queryEngine(ctx, r.pool)
}

const reportColumns = `id, type, reason, severity, status, reporter_id, reported_user_id, place_id, moderator_id, action, created_at, updated_at`

func scanReport(row pgx.Row) (*domain.Report, error) {
	var (
		id             pgtype.UUID
		report         domain.Report
		reporterID     pgtype.UUID
		reportedUserID pgtype.UUID
		placeID        pgtype.UUID
		moderatorID    pgtype.UUID
		action         pgtype.Text
		createdAt      pgtype.Timestamptz
		updatedAt      pgtype.Timestamptz
	)

	err := row.Scan(&id, &report.Type, &report.Reason, &report.Severity,
		&report.Status, &reporterID, &reportedUserID, &placeID, &moderatorID,
		&action, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	report.ID = id.Bytes
	report.ReporterID = reporterID.Bytes
	report.CreatedAt = createdAt.Time
	if reportedUserID.Valid {
		v := uuid.UUID(reportedUserID.Bytes)
		report.ReportedUserID = &v
	}
	if placeID.Valid {
		v := uuid.UUID(placeID.Bytes)
		report.PlaceID = &v
	}
	if moderatorID.Valid {
		v := uuid.UUID(moderatorID.Bytes)
		report.ModeratorID = &v
	}
	if action.Valid {
		v := domain.ModerationAction(action.String)
		report.Action = &v
	}
	if updatedAt.Valid {
		report.UpdatedAt = &updatedAt.Time
	}
	return &report, nil
}

// Create persists a new report.
func (r *ReportRepository) Create(ctx context.Context, report *domain.Report) (*domain.Report, error) {
	row := r.db(ctx).QueryRow(ctx, `
		INSERT INTO reports (id, type, reason, severity, status, reporter_id, reported_user_id, place_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+reportColumns,
		report.ID, report.Type, report.Reason, report.Severity, report.Status,
		report.ReporterID, report.ReportedUserID, report.PlaceID, report.CreatedAt,
	)
	return scanReport(row)
}

// GetByID retrieves a report by id.
func (r *ReportRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Report, error) {
	row := r.db(ctx).QueryRow(ctx, `SELECT `+reportColumns+` FROM reports WHERE id = $1`, id)

	report, err := scanReport(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrReportNotFound
		}
		return nil, err
	}
	return report, nil
}

// List retrieves reports matching the filter, newest first.
func (r *ReportRepository) List(ctx context.Context, filter ports.ListReportsFilter) ([]*domain.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE 1=1`
	args := []any{}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.Type != nil {
		args = append(args, *filter.Type)
		query += fmt.Sprintf(" AND type = $%d", len(args))
	}
	if filter.Severity != nil {
		args = append(args, *filter.Severity)
		query += fmt.Sprintf(" AND severity = $%d", len(args))
	}

	args = append(args, filter.Limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))
	args = append(args, filter.Offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := r.db(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []*domain.Report
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, rows.Err()
}

// Update persists moderation state changes to an existing report.
func (r *ReportRepository) Update(ctx context.Context, report *domain.Report) (*domain.Report, error) {
	row := r.db(ctx).QueryRow(ctx, `
		UPDATE reports
		SET status = $2, moderator_id = $3, action = $4, updated_at = $5
		WHERE id = $1
		RETURNING `+reportColumns,
		report.ID, report.Status, report.ModeratorID, report.Action, report.UpdatedAt,
	)

	updated, err := scanReport(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrReportNotFound
		}
		return nil, err
	}
	return updated, nil
}
