package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/bedic/places-backend/internal/core/domain"
)

// AuthService defines the port for authentication business logic.
type AuthService interface {
	Register(ctx context.Context, params domain.UserRegistrationParams) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*domain.User, error)
}

// CreatePlaceParams defines the input for registering a new place.
type CreatePlaceParams struct {
	Place   domain.PlaceParams
	ActorID uuid.UUID
}

// UpdatePlaceParams defines the input for editing a place.
type UpdatePlaceParams struct {
	PlaceID uuid.UUID
	Place   domain.PlaceParams
	ActorID uuid.UUID
	Role    domain.Role
}

// PlaceService defines the core business operations for places.
type PlaceService interface {
	CreatePlace(ctx context.Context, params CreatePlaceParams) (*domain.Place, error)
	GetPlace(ctx context.Context, placeID uuid.UUID) (*domain.Place, error)
	ListPlaces(ctx context.Context, filter ListPlacesFilter) ([]*domain.Place, error)
	UpdatePlace(ctx context.Context, params UpdatePlaceParams) (*domain.Place, error)
	VerifyPlace(ctx context.Context, placeID, actorID uuid.UUID, role domain.Role) (*domain.Place, error)
	DeletePlace(ctx context.Context, placeID, actorID uuid.UUID, role domain.Role) error
}

// CreateReportParams defines the input for filing a report.
type CreateReportParams struct {
	Report domain.ReportParams
}

// ModerateReportParams defines the input for resolving a report. Action may
// be empty, in which case the matching active moderation policy decides.
type ModerateReportParams struct {
	ReportID    uuid.UUID
	ModeratorID uuid.UUID
	Role        domain.Role
	Action      domain.ModerationAction
	MuteHours   int
}

// ReportService defines the core business operations for reports.
type ReportService interface {
	CreateReport(ctx context.Context, params CreateReportParams) (*domain.Report, error)
	GetReport(ctx context.Context, reportID uuid.UUID, role domain.Role) (*domain.Report, error)
	ListReports(ctx context.Context, filter ListReportsFilter, role domain.Role) ([]*domain.Report, error)
	MarkReviewed(ctx context.Context, reportID uuid.UUID, role domain.Role) (*domain.Report, error)
	ModerateReport(ctx context.Context, params ModerateReportParams) (*domain.Report, error)
}

// PolicyService defines the port for moderation policy management.
type PolicyService interface {
	CreatePolicy(ctx context.Context, params domain.PolicyParams, role domain.Role) (*domain.ModerationPolicy, error)
	GetPolicy(ctx context.Context, policyID uuid.UUID, role domain.Role) (*domain.ModerationPolicy, error)
	ListPolicies(ctx context.Context, role domain.Role) ([]*domain.ModerationPolicy, error)
	UpdatePolicy(ctx context.Context, policyID uuid.UUID, params domain.PolicyParams, role domain.Role) (*domain.ModerationPolicy, error)
	DeletePolicy(ctx context.Context, policyID uuid.UUID, role domain.Role) error
}

// SendNotificationParams defines the input for pushing a pre-shaped
// notification to a single user.
type SendNotificationParams struct {
	UserID    uuid.UUID
	Kind      domain.NotificationKind
	ActorName string // commenter, attendee, etc.
	Subject   string // place or event name, depending on kind
}

// NotificationService defines the port for the user notification inbox.
type NotificationService interface {
	Send(ctx context.Context, params SendNotificationParams) (*domain.Notification, error)
	ListNotifications(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit, offset int) ([]*domain.Notification, error)
	MarkRead(ctx context.Context, notificationID, userID uuid.UUID) error
}

// AdminService defines the port for admin-only user management.
type AdminService interface {
	ListUsers(ctx context.Context, role domain.Role, limit, offset int) ([]*domain.User, error)
	UpdateUserRole(ctx context.Context, actorRole domain.Role, userID uuid.UUID, newRole domain.Role) (*domain.User, error)
	MuteUser(ctx context.Context, actorRole domain.Role, userID uuid.UUID, hours int) (*domain.User, error)
	BanUser(ctx context.Context, actorRole domain.Role, userID uuid.UUID) (*domain.User, error)
}

// MaintenanceService defines the port for batch cleanup jobs.
type MaintenanceService interface {
	DeduplicatePlaces(ctx context.Context, role domain.Role) (int64, error)
}

// EventBroadcaster defines the port for routing a domain event through the
// realtime fan-out table. Payload must marshal to the event kind's wire
// shape; malformed payloads are rejected, never broadcast.
type EventBroadcaster interface {
	Publish(kind domain.EventKind, payload any) error
}

// Notifier defines the port for the realtime emission API: direct pushes to
// an identity, a role group, or everyone, plus the pre-shaped notification
// helpers. All methods are fire-and-forget.
type Notifier interface {
	EmitToIdentity(userID uuid.UUID, kind domain.EventKind, payload any)
	EmitToRole(role domain.Role, kind domain.EventKind, payload any)
	EmitToAll(kind domain.EventKind, payload any)

	NotifyRecommendation(userID uuid.UUID, placeName string)
	NotifyNewComment(userID uuid.UUID, authorName, placeName string)
	NotifyCommentReply(userID uuid.UUID, authorName string)
	NotifyCommentLike(userID uuid.UUID, authorName string)
	NotifyCommentDislike(userID uuid.UUID, authorName string)
	NotifyEventRSVP(userID uuid.UUID, attendeeName, eventName string)
}
