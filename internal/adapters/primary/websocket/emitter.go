package websocket

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/bedic/places-backend/internal/core/domain"
	"github.com/bedic/places-backend/internal/core/ports"
)

// Emitter is the emission API for the rest of the application: direct
// pushes to a user, a role group, or everyone, bypassing the inbound event
// path. All methods are fire-and-forget; a target group with no members is
// a no-op.
type Emitter struct {
	hub    *Hub
	logger *slog.Logger
}

// Ensure Emitter implements the Notifier interface.
var _ ports.Notifier = (*Emitter)(nil)

// NewEmitter creates an emitter bound to a hub.
func NewEmitter(hub *Hub, logger *slog.Logger) *Emitter {
	return &Emitter{
		hub:    hub,
		logger: logger.With("component", "event_emitter"),
	}
}

// EmitToIdentity pushes an event to all of one user's connections.
func (e *Emitter) EmitToIdentity(userID uuid.UUID, kind domain.EventKind, payload any) {
	e.hub.Broadcast(domain.IdentityGroup(userID.String()), domain.NewEvent(kind, payload))
}

// EmitToRole pushes an event to every connection holding a role.
func (e *Emitter) EmitToRole(role domain.Role, kind domain.EventKind, payload any) {
	e.hub.Broadcast(domain.RoleGroup(role), domain.NewEvent(kind, payload))
}

// EmitToAll pushes an event to every connection.
func (e *Emitter) EmitToAll(kind domain.EventKind, payload any) {
	e.hub.BroadcastAll(domain.NewEvent(kind, payload))
}

// Pre-shaped notifications. Each is a fixed payload template over
// EmitToIdentity; the text comes from the shared notification copy so the
// push matches the persisted inbox row.

// NotifyRecommendation pushes a place recommendation to a user.
func (e *Emitter) NotifyRecommendation(userID uuid.UUID, placeName string) {
	title, message := domain.RecommendationContent(placeName)
	e.emitNotification(userID, domain.NotifyRecommendation, title, message)
}

// NotifyNewComment tells a place owner about a new comment.
func (e *Emitter) NotifyNewComment(userID uuid.UUID, authorName, placeName string) {
	title, message := domain.NewCommentContent(authorName, placeName)
	e.emitNotification(userID, domain.NotifyNewComment, title, message)
}

// NotifyCommentReply tells a commenter about a reply.
func (e *Emitter) NotifyCommentReply(userID uuid.UUID, authorName string) {
	title, message := domain.CommentReplyContent(authorName)
	e.emitNotification(userID, domain.NotifyCommentReply, title, message)
}

// NotifyCommentLike tells a commenter about a like.
func (e *Emitter) NotifyCommentLike(userID uuid.UUID, authorName string) {
	title, message := domain.CommentLikeContent(authorName)
	e.emitNotification(userID, domain.NotifyCommentLike, title, message)
}

// NotifyCommentDislike tells a commenter about a dislike.
func (e *Emitter) NotifyCommentDislike(userID uuid.UUID, authorName string) {
	title, message := domain.CommentDislikeContent(authorName)
	e.emitNotification(userID, domain.NotifyCommentDislike, title, message)
}

// NotifyEventRSVP tells an event organizer about an attendee.
func (e *Emitter) NotifyEventRSVP(userID uuid.UUID, attendeeName, eventName string) {
	title, message := domain.EventRSVPContent(attendeeName, eventName)
	e.emitNotification(userID, domain.NotifyEventRSVP, title, message)
}

func (e *Emitter) emitNotification(userID uuid.UUID, kind domain.NotificationKind, title, message string) {
	e.EmitToIdentity(userID, domain.EventNotification, NotificationPayload{
		Kind:    kind,
		Title:   title,
		Message: message,
	})
}
