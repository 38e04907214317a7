package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/samber/lo"

	mw "github.com/bedic/places-backend/internal/adapters/primary/http/middleware"
	"github.com/bedic/places-backend/internal/adapters/primary/validation"
	wsAdapter "github.com/bedic/places-backend/internal/adapters/primary/websocket"
	"github.com/bedic/places-backend/internal/auth"
	"github.com/bedic/places-backend/internal/core/domain"
	"github.com/bedic/places-backend/internal/core/ports"
)

const maxUsersPerPage = 100

// AdminHandler handles user administration, sanctions, live connection
// inspection and maintenance jobs.
type AdminHandler struct {
	adminService       ports.AdminService
	maintenanceService ports.MaintenanceService
	hub                *wsAdapter.Hub
	errorHandler       *ErrorHandler
	logger             *slog.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(
	adminService ports.AdminService,
	maintenanceService ports.MaintenanceService,
	hub *wsAdapter.Hub,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *AdminHandler {
	return &AdminHandler{
		adminService:       adminService,
		maintenanceService: maintenanceService,
		hub:                hub,
		errorHandler:       errorHandler,
		logger:             logger.With("handler", "admin"),
	}
}

// RegisterRoutes sets up the routing for all admin endpoints.
func (h *AdminHandler) RegisterRoutes(r chi.Router) {
	r.Route("/users", func(r chi.Router) {
		r.Get("/", h.HandleListUsers)
		r.Patch("/{userID}/role", h.HandleUpdateUserRole)
		r.Post("/{userID}/mute", h.HandleMuteUser)
		r.Post("/{userID}/ban", h.HandleBanUser)
	})

	r.Get("/connections", h.HandleListConnections)
	r.Post("/maintenance/dedup", h.HandleDeduplicatePlaces)
}

// UpdateUserRoleRequest defines the expected JSON body for role changes
type UpdateUserRoleRequest struct {
	Role string `json:"role"`
}

// Validate validates the update user role request
func (r *UpdateUserRoleRequest) Validate() error {
	v := validation.NewValidator()

	v.Required("role", r.Role).
		OneOf("role", r.Role, []string{"user", "moderator", "admin", "support_agent"})

	if v.HasErrors() {
		return v.Errors()
	}
	return nil
}

// MuteUserRequest defines the expected JSON body for muting a user
type MuteUserRequest struct {
	Hours int `json:"hours"`
}

// Validate validates the mute user request
func (r *MuteUserRequest) Validate() error {
	v := validation.NewValidator()

	v.Min("hours", r.Hours, 1)

	if v.HasErrors() {
		return v.Errors()
	}
	return nil
}

// ConnectionDTO describes one live websocket connection.
type ConnectionDTO struct {
	ConnID string `json:"connId"`
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

// ConnectionsResponse lists live connections with the total count.
type ConnectionsResponse struct {
	Count       int             `json:"count"`
	Connections []ConnectionDTO `json:"connections"`
}

// DedupResponse reports how many duplicate places were removed.
type DedupResponse struct {
	Removed int64 `json:"removed"`
}

// HandleListUsers handles GET /admin/users
func (h *AdminHandler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	pagination := validation.ParsePagination(r, maxUsersPerPage)

	users, err := h.adminService.ListUsers(r.Context(), claims.Role, pagination.Limit, pagination.Offset)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteList(w, lo.Map(users, func(user *domain.User, _ int) UserDTO {
		return toUserDTO(user)
	}))
}

// HandleUpdateUserRole handles PATCH /admin/users/{userID}/role
func (h *AdminHandler) HandleUpdateUserRole(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	userID, err := h.parseUserID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	req, err := validation.DecodeAndValidate[UpdateUserRoleRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := req.Validate(); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	user, err := h.adminService.UpdateUserRole(r.Context(), claims.Role, userID, domain.Role(req.Role))
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("user role updated",
		"target_user_id", userID,
		"new_role", req.Role,
		"user_id", claims.UserID,
	)

	WriteJSON(w, http.StatusOK, toUserDTO(user))
}

// HandleMuteUser handles POST /admin/users/{userID}/mute
func (h *AdminHandler) HandleMuteUser(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	userID, err := h.parseUserID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	req, err := validation.DecodeAndValidate[MuteUserRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := req.Validate(); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	user, err := h.adminService.MuteUser(r.Context(), claims.Role, userID, req.Hours)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("user muted",
		"target_user_id", userID,
		"hours", req.Hours,
		"user_id", claims.UserID,
	)

	WriteJSON(w, http.StatusOK, toUserDTO(user))
}

// HandleBanUser handles POST /admin/users/{userID}/ban
func (h *AdminHandler) HandleBanUser(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	userID, err := h.parseUserID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	user, err := h.adminService.BanUser(r.Context(), claims.Role, userID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("user banned",
		"target_user_id", userID,
		"user_id", claims.UserID,
	)

	WriteJSON(w, http.StatusOK, toUserDTO(user))
}

// HandleListConnections handles GET /admin/connections
func (h *AdminHandler) HandleListConnections(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	if claims.Role != domain.RoleAdmin {
		WriteJSON(w, http.StatusForbidden, ErrorResponse{
			Error: "You do not have permission to perform this action",
			Code:  "FORBIDDEN",
		})
		return
	}

	infos := h.hub.ListConnections()

	WriteJSON(w, http.StatusOK, ConnectionsResponse{
		Count: h.hub.CountConnections(),
		Connections: lo.Map(infos, func(info wsAdapter.ConnectionInfo, _ int) ConnectionDTO {
			return ConnectionDTO{
				ConnID: info.ConnID.String(),
				UserID: info.UserID.String(),
				Role:   string(info.Role),
			}
		}),
	})
}

// HandleDeduplicatePlaces handles POST /admin/maintenance/dedup
func (h *AdminHandler) HandleDeduplicatePlaces(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	removed, err := h.maintenanceService.DeduplicatePlaces(r.Context(), claims.Role)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("places deduplicated",
		"removed", removed,
		"user_id", claims.UserID,
	)

	WriteJSON(w, http.StatusOK, DedupResponse{Removed: removed})
}

func (h *AdminHandler) parseUserID(r *http.Request) (uuid.UUID, error) {
	idParam := chi.URLParam(r, "userID")
	userID, err := uuid.Parse(idParam)
	if err != nil {
		v := validation.NewValidator()
		v.Custom("userID", false, "Invalid user ID")
		return uuid.Nil, v.Errors()
	}
	return userID, nil
}

func (h *AdminHandler) getClaims(w http.ResponseWriter, r *http.Request) (*auth.Claims, bool) {
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
