package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/bedic/places-backend/internal/core/domain"
)

// UserRepository defines the port for user persistence.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) (*domain.User, error)
	List(ctx context.Context, limit, offset int) ([]*domain.User, error)
}

// ListPlacesFilter narrows place listings.
type ListPlacesFilter struct {
	Category *domain.PlaceCategory
	City     *string
	Verified *bool
	OwnerID  *uuid.UUID
	Limit    int
	Offset   int
}

// PlaceRepository defines the port for place persistence.
type PlaceRepository interface {
	Create(ctx context.Context, place *domain.Place) (*domain.Place, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Place, error)
	List(ctx context.Context, filter ListPlacesFilter) ([]*domain.Place, error)
	Update(ctx context.Context, place *domain.Place) (*domain.Place, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteDuplicates removes places sharing name and city with an older
	// row, keeping the oldest. Returns the number of rows removed.
	DeleteDuplicates(ctx context.Context) (int64, error)
}

// ListReportsFilter narrows report listings.
type ListReportsFilter struct {
	Status   *domain.ReportStatus
	Type     *domain.ReportType
	Severity *domain.ReportSeverity
	Limit    int
	Offset   int
}

// ReportRepository defines the port for report persistence.
type ReportRepository interface {
	Create(ctx context.Context, report *domain.Report) (*domain.Report, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Report, error)
	List(ctx context.Context, filter ListReportsFilter) ([]*domain.Report, error)
	Update(ctx context.Context, report *domain.Report) (*domain.Report, error)
}

// PolicyRepository defines the port for moderation policy persistence.
type PolicyRepository interface {
	Create(ctx context.Context, policy *domain.ModerationPolicy) (*domain.ModerationPolicy, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ModerationPolicy, error)
	List(ctx context.Context, activeOnly bool) ([]*domain.ModerationPolicy, error)
	Update(ctx context.Context, policy *domain.ModerationPolicy) (*domain.ModerationPolicy, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// NotificationRepository defines the port for notification persistence.
type NotificationRepository interface {
	Create(ctx context.Context, notification *domain.Notification) (*domain.Notification, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Notification, error)
	ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit, offset int) ([]*domain.Notification, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
}

// TransactionManager defines the port for running atomic operations.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
