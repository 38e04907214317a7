package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/samber/lo"

	mw "github.com/bedic/places-backend/internal/adapters/primary/http/middleware"
	"github.com/bedic/places-backend/internal/adapters/primary/validation"
	"github.com/bedic/places-backend/internal/auth"
	"github.com/bedic/places-backend/internal/core/domain"
	"github.com/bedic/places-backend/internal/core/ports"
)

const maxNotificationsPerPage = 100

// NotificationHandler handles HTTP requests for the notification inbox.
type NotificationHandler struct {
	notificationService ports.NotificationService
	errorHandler        *ErrorHandler
	logger              *slog.Logger
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notificationService ports.NotificationService, errorHandler *ErrorHandler, logger *slog.Logger) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
		errorHandler:        errorHandler,
		logger:              logger.With("handler", "notification"),
	}
}

// RegisterRoutes sets up the routing for all notification endpoints.
func (h *NotificationHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleListNotifications)
	r.Patch("/{notificationID}/read", h.HandleMarkRead)
}

// NotificationDTO defines the JSON response for notifications.
type NotificationDTO struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Read      bool   `json:"read"`
	CreatedAt string `json:"createdAt"`
}

func toNotificationDTO(notification *domain.Notification) NotificationDTO {
	return NotificationDTO{
		ID:        notification.ID.String(),
		Kind:      string(notification.Kind),
		Title:     notification.Title,
		Message:   notification.Message,
		Read:      notification.Read,
		CreatedAt: notification.CreatedAt.Format(time.RFC3339),
	}
}

// HandleListNotifications handles GET /notifications
func (h *NotificationHandler) HandleListNotifications(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	pagination := validation.ParsePagination(r, maxNotificationsPerPage)
	unreadOnly := validation.ParseBoolQueryParam(r, "unread", false)

	notifications, err := h.notificationService.ListNotifications(
		r.Context(), claims.UserID, unreadOnly, pagination.Limit+1, pagination.Offset)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WritePaginatedSimple(w, lo.Map(notifications, func(notification *domain.Notification, _ int) NotificationDTO {
		return toNotificationDTO(notification)
	}), pagination.Limit, pagination.Offset)
}

// HandleMarkRead handles PATCH /notifications/{notificationID}/read
func (h *NotificationHandler) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	idParam := chi.URLParam(r, "notificationID")
	notificationID, err := uuid.Parse(idParam)
	if err != nil {
		v := validation.NewValidator()
		v.Custom("notificationID", false, "Invalid notification ID")
		h.errorHandler.Handle(w, r, v.Errors())
		return
	}

	if err := h.notificationService.MarkRead(r.Context(), notificationID, claims.UserID); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("notification read",
		"notification_id", notificationID,
		"user_id", claims.UserID,
	)

	WriteNoContent(w)
}

func (h *NotificationHandler) getClaims(w http.ResponseWriter, r *http.Request) (*auth.Claims, bool) {
	claims, ok := mw.GetClaims(r.Context())
	if !ok {
		WriteJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error: "Not authorized",
			Code:  "UNAUTHORIZED",
		})
		return nil, false
	}
	return claims, true
}
