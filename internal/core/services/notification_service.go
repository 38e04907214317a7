package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/bedic/places-backend/internal/core/domain"
	apperrors "github.com/bedic/places-backend/internal/core/errors"
	"github.com/bedic/places-backend/internal/core/ports"
)

// NotificationService implements the user notification inbox. Every send
// persists a row and pushes a best-effort realtime copy; the row is the
// source of truth.
type NotificationService struct {
	notificationRepo ports.NotificationRepository
	notifier         ports.Notifier
	broadcaster      ports.EventBroadcaster
}

var _ ports.NotificationService = (*NotificationService)(nil)

// NewNotificationService creates a new notification service
func NewNotificationService(
	notificationRepo ports.NotificationRepository,
	notifier ports.Notifier,
	broadcaster ports.EventBroadcaster,
) ports.NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		notifier:         notifier,
		broadcaster:      broadcaster,
	}
}

// Send persists a pre-shaped notification and pushes it to the recipient's
// live connections.
func (s *NotificationService) Send(ctx context.Context, params ports.SendNotificationParams) (*domain.Notification, error) {
	title, message, err := notificationContent(params)
	if err != nil {
		return nil, err
	}

	notification := domain.NewNotification(params.UserID, params.Kind, title, message)
	created, err := s.notificationRepo.Create(ctx, notification)
	if err != nil {
		return nil, err
	}

	s.push(params)

	return created, nil
}

// push forwards the notification to the matching emission helper.
func (s *NotificationService) push(params ports.SendNotificationParams) {
	switch params.Kind {
	case domain.NotifyRecommendation:
		s.notifier.NotifyRecommendation(params.UserID, params.Subject)
	case domain.NotifyNewComment:
		s.notifier.NotifyNewComment(params.UserID, params.ActorName, params.Subject)
	case domain.NotifyCommentReply:
		s.notifier.NotifyCommentReply(params.UserID, params.ActorName)
	case domain.NotifyCommentLike:
		s.notifier.NotifyCommentLike(params.UserID, params.ActorName)
	case domain.NotifyCommentDislike:
		s.notifier.NotifyCommentDislike(params.UserID, params.ActorName)
	case domain.NotifyEventRSVP:
		s.notifier.NotifyEventRSVP(params.UserID, params.ActorName, params.Subject)
	}
}

// notificationContent maps a send request to its stored title and message.
func notificationContent(params ports.SendNotificationParams) (string, string, error) {
	switch params.Kind {
	case domain.NotifyRecommendation:
		title, message := domain.RecommendationContent(params.Subject)
		return title, message, nil
	case domain.NotifyNewComment:
		title, message := domain.NewCommentContent(params.ActorName, params.Subject)
		return title, message, nil
	case domain.NotifyCommentReply:
		title, message := domain.CommentReplyContent(params.ActorName)
		return title, message, nil
	case domain.NotifyCommentLike:
		title, message := domain.CommentLikeContent(params.ActorName)
		return title, message, nil
	case domain.NotifyCommentDislike:
		title, message := domain.CommentDislikeContent(params.ActorName)
		return title, message, nil
	case domain.NotifyEventRSVP:
		title, message := domain.EventRSVPContent(params.ActorName, params.Subject)
		return title, message, nil
	}
	return "", "", apperrors.ErrBadRequest
}

// ListNotifications returns a user's notifications, newest first.
func (s *NotificationService) ListNotifications(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit, offset int) ([]*domain.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.notificationRepo.ListByUser(ctx, userID, unreadOnly, limit, offset)
}

// MarkRead marks one of the user's own notifications as read and echoes a
// read receipt to the user's other devices.
func (s *NotificationService) MarkRead(ctx context.Context, notificationID, userID uuid.UUID) error {
	notification, err := s.notificationRepo.GetByID(ctx, notificationID)
	if err != nil {
		return err
	}

	if notification.UserID != userID {
		return apperrors.ErrForbidden
	}

	if err := s.notificationRepo.MarkRead(ctx, notificationID); err != nil {
		return err
	}

	_ = s.broadcaster.Publish(domain.EventNotificationRead, domain.NotificationReadPayload{
		NotificationID: notificationID.String(),
		UserID:         userID.String(),
	})

	return nil
}
