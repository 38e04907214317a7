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

// NotificationRepository is the secondary adapter for the notification inbox.
type NotificationRepository struct {
	pool *pgxpool.Pool
}

var _ ports.NotificationRepository = (*NotificationRepository)(nil)

// NewNotificationRepository creates a new notification repository.
func NewNotificationRepository(pool *pgxpool.Pool) ports.NotificationRepository {
	return &NotificationRepository{pool: pool}
}

func (r *NotificationRepository) db(ctx context.Context) querier {
	return queryEngine(ctx, r.pool)
}

const notificationColumns = `id, user_id, kind, title, message, read, created_at`

func scanNotification(row pgx.Row) (*domain.Notification, error) {
	var (
		id           pgtype.UUID
		userID       pgtype.UUID
		notification domain.Notification
		createdAt    pgtype.Timestamptz
	)

	err := row.Scan(&id, &userID, &notification.Kind, &notification.Title,
		&notification.Message, &notification.Read, &createdAt)
	if err != nil {
		return nil, err
	}

	notification.ID = id.Bytes
	notification.UserID = userID.Bytes
	notification.CreatedAt = createdAt.Time
	return &notification, nil
}

// Create persists a new notification.
func (r *NotificationRepository) Create(ctx context.Context, notification *domain.Notification) (*domain.Notification, error) {
	row := r.db(ctx).QueryRow(ctx, `
		INSERT INTO notifications (id, user_id, kind, title, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+notificationColumns,
		notification.ID, notification.UserID, notification.Kind,
		notification.Title, notification.Message, notification.CreatedAt,
	)
	return scanNotification(row)
}

// GetByID retrieves a notification by id.
func (r *NotificationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Notification, error) {
	row := r.db(ctx).QueryRow(ctx, `SELECT `+notificationColumns+` FROM notifications WHERE id = $1`, id)

	notification, err := scanNotification(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotificationNotFound
		}
		return nil, err
	}
	return notification, nil
}

// ListByUser retrieves a user's notifications, newest first.
func (r *NotificationRepository) ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit, offset int) ([]*domain.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE user_id = $1`
	if unreadOnly {
		query += ` AND NOT read`
	}
	query += ` ORDER BY created_at DESC LIMIT $2 OFFSET $3`

	rows, err := r.db(ctx).Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []*domain.Notification
	for rows.Next() {
		notification, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, notification)
	}
	return notifications, rows.Err()
}

// MarkRead flags a notification as read.
func (r *NotificationRepository) MarkRead(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db(ctx).Exec(ctx, `UPDATE notifications SET read = TRUE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotificationNotFound
	}
	return nil
}
