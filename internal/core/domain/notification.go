package domain

import (
	"time"

	"github.com/google/uuid"
)

// NotificationKind tags the stored (and pushed) user notifications.
type NotificationKind string

const (
	NotifyRecommendation NotificationKind = "recommendation"
	NotifyNewComment     NotificationKind = "comment:new"
	NotifyCommentReply   NotificationKind = "comment:reply"
	NotifyCommentLike    NotificationKind = "comment:like"
	NotifyCommentDislike NotificationKind = "comment:dislike"
	NotifyEventRSVP      NotificationKind = "event:rsvp"
	NotifySanction       NotificationKind = "sanction"
	NotifySystem         NotificationKind = "system"
)

// Notification is a persisted per-user notice. The realtime push is
// best-effort; the row is what the client's inbox reads and marks as read.
type Notification struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Kind      NotificationKind
	Title     string
	Message   string
	Read      bool
	CreatedAt time.Time
}

// NewNotification builds an unread notification for a user.
func NewNotification(userID uuid.UUID, kind NotificationKind, title, message string) *Notification {
	return &Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Kind:      kind,
		Title:     title,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}
}
