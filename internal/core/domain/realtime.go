package domain

import (
	"time"
)

// EventKind enumerates the realtime event vocabulary. Inbound kinds may be
// emitted by connected clients or by HTTP write paths; the remaining kinds
// are outbound-only.
type EventKind string

const (
	EventReportCreated    EventKind = "report:created"
	EventReportUpdated    EventKind = "report:updated"
	EventReportModerated  EventKind = "report:moderated"
	EventPlaceCreated     EventKind = "place:created"
	EventPlaceUpdated     EventKind = "place:updated"
	EventPlaceVerified    EventKind = "place:verified"
	EventPlaceDeleted     EventKind = "place:deleted"
	EventUserMuted        EventKind = "user:muted"
	EventUserBanned       EventKind = "user:banned"
	EventNotificationRead EventKind = "notification:read"

	// Outbound-only kinds.
	EventNotification EventKind = "notification:new"
	EventRejected     EventKind = "event:rejected"

	// Application-level keep-alive frames. Answered at the connection edge,
	// never routed or broadcast.
	EventPing EventKind = "PING"
	EventPong EventKind = "PONG"
)

// ParseEventKind maps a wire string to an inbound event kind. The set is
// closed; anything else is rejected at the edge.
func ParseEventKind(s string) (EventKind, bool) {
	switch k := EventKind(s); k {
	case EventReportCreated, EventReportUpdated, EventReportModerated,
		EventPlaceCreated, EventPlaceUpdated, EventPlaceVerified, EventPlaceDeleted,
		EventUserMuted, EventUserBanned, EventNotificationRead:
		return k, true
	}
	return "", false
}

// Event is the wire message pushed to subscribers. Timestamp is assigned
// server-side at emission, never taken from the client.
type Event struct {
	Kind      EventKind `json:"kind"`
	Payload   any       `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
}

// NewEvent stamps an outbound event with the current server time.
func NewEvent(kind EventKind, payload any) Event {
	return Event{
		Kind:      kind,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// Group naming. Every connection is a member of exactly one identity group
// and one role group for its lifetime.

// IdentityGroup returns the broadcast group for a single user's connections.
func IdentityGroup(userID string) string {
	return "identity:" + userID
}

// RoleGroup returns the broadcast group for all connections with a role.
func RoleGroup(role Role) string {
	return "role:" + string(role)
}

// Inbound payload shapes, one per event kind. Validated at the router
// before any broadcast; a payload that fails validation is never forwarded.
// IDs are carried as opaque strings on the wire.

// ReportCreatedPayload accompanies report:created.
type ReportCreatedPayload struct {
	ID       string `json:"id" validate:"required"`
	Type     string `json:"type" validate:"required"`
	Reason   string `json:"reason" validate:"required"`
	Severity string `json:"severity" validate:"required"`
}

// ReportUpdatedPayload accompanies report:updated.
type ReportUpdatedPayload struct {
	ReportID string `json:"reportId" validate:"required"`
	Status   string `json:"status,omitempty"`
	Message  string `json:"message,omitempty"`
}

// ReportModeratedPayload accompanies report:moderated.
type ReportModeratedPayload struct {
	ReportID       string `json:"reportId" validate:"required"`
	Status         string `json:"status" validate:"required"`
	Action         string `json:"action" validate:"required,oneof=ban mute warn dismiss"`
	ModeratorID    string `json:"moderatorId" validate:"required"`
	ReportedUserID string `json:"reportedUserId,omitempty"`
	Reason         string `json:"reason,omitempty"`
}

// PlaceCreatedPayload accompanies place:created.
type PlaceCreatedPayload struct {
	ID       string `json:"id" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Category string `json:"category" validate:"required"`
}

// PlaceUpdatedPayload accompanies place:updated. OwnerID is optional;
// without it no owner notice is produced.
type PlaceUpdatedPayload struct {
	ID      string `json:"id" validate:"required"`
	OwnerID string `json:"ownerId,omitempty"`
	Name    string `json:"name,omitempty"`
}

// PlaceVerifiedPayload accompanies place:verified.
type PlaceVerifiedPayload struct {
	PlaceID string `json:"placeId" validate:"required"`
	OwnerID string `json:"ownerId,omitempty"`
	Name    string `json:"name,omitempty"`
}

// PlaceDeletedPayload accompanies place:deleted.
type PlaceDeletedPayload struct {
	PlaceID string `json:"placeId" validate:"required"`
	OwnerID string `json:"ownerId,omitempty"`
}

// UserMutedPayload accompanies user:muted.
type UserMutedPayload struct {
	UserID string `json:"userId" validate:"required"`
	Hours  int    `json:"hours" validate:"required,gt=0"`
}

// UserBannedPayload accompanies user:banned.
type UserBannedPayload struct {
	UserID string `json:"userId" validate:"required"`
}

// NotificationReadPayload accompanies notification:read.
type NotificationReadPayload struct {
	NotificationID string `json:"notificationId" validate:"required"`
	UserID         string `json:"userId" validate:"required"`
}
