package websocket

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/bedic/places-backend/internal/core/domain"
	apperrors "github.com/bedic/places-backend/internal/core/errors"
	"github.com/bedic/places-backend/internal/core/ports"
)

// Router translates inbound domain events into group broadcasts. Each event
// kind has a fixed recipient list and a payload shape per audience; the
// broadcasts for one event are issued in table order. Payloads are validated
// before any broadcast - a malformed event is rejected back to its origin
// and never forwarded.
type Router struct {
	hub      *Hub
	validate *validator.Validate
	logger   *slog.Logger
}

// Ensure Router implements the EventBroadcaster interface.
var _ ports.EventBroadcaster = (*Router)(nil)

// NewRouter creates the event router for a hub.
func NewRouter(hub *Hub, logger *slog.Logger) *Router {
	return &Router{
		hub:      hub,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger.With("component", "event_router"),
	}
}

// --- Outbound payload shapes ---

// ReportSummary is the reduced report view sent to moderators.
type ReportSummary struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Reason   string `json:"reason"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// ModerationSummary is the reduced moderation outcome sent to moderators.
type ModerationSummary struct {
	ReportID    string `json:"reportId"`
	Status      string `json:"status"`
	Action      string `json:"action"`
	ModeratorID string `json:"moderatorId"`
	Message     string `json:"message"`
}

// PlaceSummary is the reduced place view sent to support agents.
type PlaceSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Message  string `json:"message"`
}

// OwnerNotice is the terse notice sent to a place's owner.
type OwnerNotice struct {
	PlaceID string `json:"placeId"`
	Message string `json:"message"`
}

// SanctionNotice is the terse notice sent to a sanctioned user.
type SanctionNotice struct {
	ReportID string `json:"reportId,omitempty"`
	Hours    int    `json:"hours,omitempty"`
	Message  string `json:"message"`
}

// MuteInfo is the mute summary sent to moderators.
type MuteInfo struct {
	UserID  string `json:"userId"`
	Hours   int    `json:"hours"`
	Message string `json:"message"`
}

// BanInfo is the ban summary sent to moderators.
type BanInfo struct {
	UserID  string `json:"userId"`
	Message string `json:"message"`
}

// ReadReceipt echoes a notification:read back to the reader's devices.
type ReadReceipt struct {
	NotificationID string `json:"notificationId"`
	UserID         string `json:"userId"`
}

// Rejection is sent to the originating connection when an inbound event
// cannot be routed.
type Rejection struct {
	Kind   string `json:"kind,omitempty"`
	Reason string `json:"reason"`
}

// NotificationPayload carries a pre-shaped user notification.
type NotificationPayload struct {
	ID      string                  `json:"id,omitempty"`
	Kind    domain.NotificationKind `json:"notificationKind"`
	Title   string                  `json:"title"`
	Message string                  `json:"message"`
}

// --- Dispatch ---

// Publish routes a server-originated event through the fan-out table. The
// payload must marshal to the event kind's wire shape. Malformed payloads
// return ErrMalformedEvent and nothing is broadcast.
func (r *Router) Publish(kind domain.EventKind, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrMalformedEvent, err)
	}
	return r.dispatch(nil, kind, raw)
}

// DispatchFrom routes an event arriving on a live connection. Failures are
// reported back to the origin as an event:rejected message.
func (r *Router) DispatchFrom(origin *Client, kind domain.EventKind, payload json.RawMessage) {
	if err := r.dispatch(origin, kind, payload); err != nil {
		r.logger.Warn("inbound event rejected",
			"event_kind", kind,
			"conn_id", origin.ConnID,
			"error", err,
		)
		origin.enqueue(domain.NewEvent(domain.EventRejected, Rejection{
			Kind:   string(kind),
			Reason: err.Error(),
		}))
	}
}

// rejectUnknown reports an unroutable frame back to its origin.
func (r *Router) rejectUnknown(origin *Client, kind string) {
	origin.enqueue(domain.NewEvent(domain.EventRejected, Rejection{
		Kind:   kind,
		Reason: apperrors.ErrUnknownEvent.Error(),
	}))
}

// producerAllowed is the closed table of which roles may emit which event
// kinds from a client connection. Server-side publishers bypass it.
func producerAllowed(kind domain.EventKind, role domain.Role) bool {
	switch kind {
	case domain.EventReportCreated:
		// Anyone may file a report.
		return true
	case domain.EventReportUpdated, domain.EventReportModerated,
		domain.EventUserMuted, domain.EventUserBanned:
		return role.CanModerate()
	case domain.EventPlaceCreated, domain.EventPlaceUpdated,
		domain.EventPlaceVerified, domain.EventPlaceDeleted:
		return role.CanManagePlaces()
	case domain.EventNotificationRead:
		// Ownership of the receipt is checked against the payload.
		return true
	}
	return false
}

// dispatch validates and fans out one event. origin is nil for server-side
// publishers.
func (r *Router) dispatch(origin *Client, kind domain.EventKind, raw json.RawMessage) error {
	if origin != nil && !producerAllowed(kind, origin.Role) {
		return apperrors.ErrEventNotAllowed
	}

	switch kind {
	case domain.EventReportCreated:
		return r.handleReportCreated(raw)
	case domain.EventReportUpdated:
		return r.handleReportUpdated(raw)
	case domain.EventReportModerated:
		return r.handleReportModerated(raw)
	case domain.EventPlaceCreated:
		return r.handlePlaceCreated(raw)
	case domain.EventPlaceUpdated:
		return r.handlePlaceUpdated(raw)
	case domain.EventPlaceVerified:
		return r.handlePlaceVerified(raw)
	case domain.EventPlaceDeleted:
		return r.handlePlaceDeleted(raw)
	case domain.EventUserMuted:
		return r.handleUserMuted(raw)
	case domain.EventUserBanned:
		return r.handleUserBanned(raw)
	case domain.EventNotificationRead:
		return r.handleNotificationRead(origin, raw)
	}
	return apperrors.ErrUnknownEvent
}

// decodePayload unmarshals and validates an inbound payload.
func decodePayload[T any](v *validator.Validate, raw json.RawMessage) (T, error) {
	var p T
	if err := json.Unmarshal(raw, &p); err != nil {
		return p, fmt.Errorf("%w: %v", apperrors.ErrMalformedEvent, err)
	}
	if err := v.Struct(&p); err != nil {
		return p, fmt.Errorf("%w: %v", apperrors.ErrMalformedEvent, err)
	}
	return p, nil
}

// --- Per-kind handlers ---

// report:created -> moderators get a reduced summary, admins the full payload.
func (r *Router) handleReportCreated(raw json.RawMessage) error {
	p, err := decodePayload[domain.ReportCreatedPayload](r.validate, raw)
	if err != nil {
		return err
	}

	summary := ReportSummary{
		ID:       p.ID,
		Type:     p.Type,
		Reason:   p.Reason,
		Severity: p.Severity,
		Message:  fmt.Sprintf("Nuevo reporte recibido: %s", p.Reason),
	}
	r.hub.Broadcast(domain.RoleGroup(domain.RoleModerator), domain.NewEvent(domain.EventReportCreated, summary))
	r.hub.Broadcast(domain.RoleGroup(domain.RoleAdmin), domain.NewEvent(domain.EventReportCreated, raw))
	return nil
}

// report:updated -> unchanged payload to moderators and admins.
func (r *Router) handleReportUpdated(raw json.RawMessage) error {
	if _, err := decodePayload[domain.ReportUpdatedPayload](r.validate, raw); err != nil {
		return err
	}

	r.hub.Broadcast(domain.RoleGroup(domain.RoleModerator), domain.NewEvent(domain.EventReportUpdated, raw))
	r.hub.Broadcast(domain.RoleGroup(domain.RoleAdmin), domain.NewEvent(domain.EventReportUpdated, raw))
	return nil
}

// report:moderated -> summary to moderators, full payload to admins, and a
// sanction notice to the reported user when the action is ban or mute.
func (r *Router) handleReportModerated(raw json.RawMessage) error {
	p, err := decodePayload[domain.ReportModeratedPayload](r.validate, raw)
	if err != nil {
		return err
	}

	summary := ModerationSummary{
		ReportID:    p.ReportID,
		Status:      p.Status,
		Action:      p.Action,
		ModeratorID: p.ModeratorID,
		Message:     fmt.Sprintf("Reporte resuelto con acción: %s", p.Action),
	}
	r.hub.Broadcast(domain.RoleGroup(domain.RoleModerator), domain.NewEvent(domain.EventReportModerated, summary))
	r.hub.Broadcast(domain.RoleGroup(domain.RoleAdmin), domain.NewEvent(domain.EventReportModerated, raw))

	if p.ReportedUserID != "" && domain.ModerationAction(p.Action).IsSanction() {
		notice := SanctionNotice{ReportID: p.ReportID, Message: "Has sido silenciado"}
		if domain.ModerationAction(p.Action) == domain.ActionBan {
			notice.Message = "Has sido baneado"
		}
		r.hub.Broadcast(domain.IdentityGroup(p.ReportedUserID), domain.NewEvent(domain.EventReportModerated, notice))
	}
	return nil
}

// place:created -> support agents get a reduced summary, admins the full
// payload.
func (r *Router) handlePlaceCreated(raw json.RawMessage) error {
	p, err := decodePayload[domain.PlaceCreatedPayload](r.validate, raw)
	if err != nil {
		return err
	}

	summary := PlaceSummary{
		ID:       p.ID,
		Name:     p.Name,
		Category: p.Category,
		Message:  fmt.Sprintf("Nuevo lugar registrado: %s", p.Name),
	}
	r.hub.Broadcast(domain.RoleGroup(domain.RoleSupportAgent), domain.NewEvent(domain.EventPlaceCreated, summary))
	r.hub.Broadcast(domain.RoleGroup(domain.RoleAdmin), domain.NewEvent(domain.EventPlaceCreated, raw))
	return nil
}

// place:updated -> support agents and admins get the payload; the owner, if
// present, gets a terse notice.
func (r *Router) handlePlaceUpdated(raw json.RawMessage) error {
	p, err := decodePayload[domain.PlaceUpdatedPayload](r.validate, raw)
	if err != nil {
		return err
	}

	r.hub.Broadcast(domain.RoleGroup(domain.RoleSupportAgent), domain.NewEvent(domain.EventPlaceUpdated, raw))
	r.hub.Broadcast(domain.RoleGroup(domain.RoleAdmin), domain.NewEvent(domain.EventPlaceUpdated, raw))

	if p.OwnerID != "" {
		notice := OwnerNotice{PlaceID: p.ID, Message: "Tu lugar ha sido actualizado"}
		r.hub.Broadcast(domain.IdentityGroup(p.OwnerID), domain.NewEvent(domain.EventPlaceUpdated, notice))
	}
	return nil
}

// place:verified -> support agents and admins get the payload; the owner
// gets a congratulatory notice.
func (r *Router) handlePlaceVerified(raw json.RawMessage) error {
	p, err := decodePayload[domain.PlaceVerifiedPayload](r.validate, raw)
	if err != nil {
		return err
	}

	r.hub.Broadcast(domain.RoleGroup(domain.RoleSupportAgent), domain.NewEvent(domain.EventPlaceVerified, raw))
	r.hub.Broadcast(domain.RoleGroup(domain.RoleAdmin), domain.NewEvent(domain.EventPlaceVerified, raw))

	if p.OwnerID != "" {
		notice := OwnerNotice{PlaceID: p.PlaceID, Message: "¡Felicidades! Tu lugar ha sido verificado"}
		r.hub.Broadcast(domain.IdentityGroup(p.OwnerID), domain.NewEvent(domain.EventPlaceVerified, notice))
	}
	return nil
}

// place:deleted -> support agents and admins get the payload; the owner, if
// present, gets a terse notice.
func (r *Router) handlePlaceDeleted(raw json.RawMessage) error {
	p, err := decodePayload[domain.PlaceDeletedPayload](r.validate, raw)
	if err != nil {
		return err
	}

	r.hub.Broadcast(domain.RoleGroup(domain.RoleSupportAgent), domain.NewEvent(domain.EventPlaceDeleted, raw))
	r.hub.Broadcast(domain.RoleGroup(domain.RoleAdmin), domain.NewEvent(domain.EventPlaceDeleted, raw))

	if p.OwnerID != "" {
		notice := OwnerNotice{PlaceID: p.PlaceID, Message: "Tu lugar ha sido eliminado"}
		r.hub.Broadcast(domain.IdentityGroup(p.OwnerID), domain.NewEvent(domain.EventPlaceDeleted, notice))
	}
	return nil
}

// user:muted -> moderators and the muted user both get the hours remaining,
// phrased for their audience.
func (r *Router) handleUserMuted(raw json.RawMessage) error {
	p, err := decodePayload[domain.UserMutedPayload](r.validate, raw)
	if err != nil {
		return err
	}

	info := MuteInfo{
		UserID:  p.UserID,
		Hours:   p.Hours,
		Message: fmt.Sprintf("Usuario silenciado por %d horas", p.Hours),
	}
	r.hub.Broadcast(domain.RoleGroup(domain.RoleModerator), domain.NewEvent(domain.EventUserMuted, info))

	notice := SanctionNotice{
		Hours:   p.Hours,
		Message: fmt.Sprintf("Has sido silenciado por %d horas", p.Hours),
	}
	r.hub.Broadcast(domain.IdentityGroup(p.UserID), domain.NewEvent(domain.EventUserMuted, notice))
	return nil
}

// user:banned -> moderators and the banned user both get a ban notice.
func (r *Router) handleUserBanned(raw json.RawMessage) error {
	p, err := decodePayload[domain.UserBannedPayload](r.validate, raw)
	if err != nil {
		return err
	}

	info := BanInfo{UserID: p.UserID, Message: "Usuario baneado"}
	r.hub.Broadcast(domain.RoleGroup(domain.RoleModerator), domain.NewEvent(domain.EventUserBanned, info))

	notice := SanctionNotice{Message: "Has sido baneado"}
	r.hub.Broadcast(domain.IdentityGroup(p.UserID), domain.NewEvent(domain.EventUserBanned, notice))
	return nil
}

// notification:read -> echo the receipt to the reader's own devices with a
// server timestamp. A connection may only emit receipts for itself.
func (r *Router) handleNotificationRead(origin *Client, raw json.RawMessage) error {
	p, err := decodePayload[domain.NotificationReadPayload](r.validate, raw)
	if err != nil {
		return err
	}

	if origin != nil && origin.UserID.String() != p.UserID {
		return apperrors.ErrEventNotAllowed
	}

	receipt := ReadReceipt{NotificationID: p.NotificationID, UserID: p.UserID}
	r.hub.Broadcast(domain.IdentityGroup(p.UserID), domain.NewEvent(domain.EventNotificationRead, receipt))
	return nil
}
