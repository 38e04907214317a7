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

// PolicyHandler handles HTTP requests for moderation policies.
type PolicyHandler struct {
	policyService ports.PolicyService
	errorHandler  *ErrorHandler
	logger        *slog.Logger
}

// NewPolicyHandler creates a new policy handler
func NewPolicyHandler(policyService ports.PolicyService, errorHandler *ErrorHandler, logger *slog.Logger) *PolicyHandler {
	return &PolicyHandler{
		policyService: policyService,
		errorHandler:  errorHandler,
		logger:        logger.With("handler", "policy"),
	}
}

// RegisterRoutes sets up the routing for all policy endpoints.
func (h *PolicyHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleListPolicies)
	r.Post("/", h.HandleCreatePolicy)

	r.Route("/{policyID}", func(r chi.Router) {
		r.Get("/", h.HandleGetPolicy)
		r.Put("/", h.HandleUpdatePolicy)
		r.Delete("/", h.HandleDeletePolicy)
	})
}

// PolicyRequest defines the expected JSON body for creating or updating a policy
type PolicyRequest struct {
	ReportType  string `json:"reportType"`
	MinSeverity string `json:"minSeverity"`
	Action      string `json:"action"`
	MuteHours   int    `json:"muteHours"`
	Active      bool   `json:"active"`
}

// Validate validates the policy request
func (r *PolicyRequest) Validate() error {
	v := validation.NewValidator()

	v.Required("reportType", r.ReportType).
		OneOf("reportType", r.ReportType, reportTypes)

	v.Required("minSeverity", r.MinSeverity).
		OneOf("minSeverity", r.MinSeverity, reportSeverities)

	v.Required("action", r.Action).
		OneOf("action", r.Action, moderationActions)

	if r.Action == "mute" {
		v.Min("muteHours", r.MuteHours, 1)
	}

	if v.HasErrors() {
		return v.Errors()
	}
	return nil
}

func (r *PolicyRequest) toParams() domain.PolicyParams {
	return domain.PolicyParams{
		ReportType:  domain.ReportType(r.ReportType),
		MinSeverity: domain.ReportSeverity(r.MinSeverity),
		Action:      domain.ModerationAction(r.Action),
		MuteHours:   r.MuteHours,
		Active:      r.Active,
	}
}

// PolicyDTO defines the JSON response for moderation policies.
type PolicyDTO struct {
	ID          string  `json:"id"`
	ReportType  string  `json:"reportType"`
	MinSeverity string  `json:"minSeverity"`
	Action      string  `json:"action"`
	MuteHours   int     `json:"muteHours"`
	Active      bool    `json:"active"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   *string `json:"updatedAt"`
}

func toPolicyDTO(policy *domain.ModerationPolicy) PolicyDTO {
	var updatedAt *string
	if policy.UpdatedAt != nil {
		value := policy.UpdatedAt.Format(time.RFC3339)
		updatedAt = &value
	}

	return PolicyDTO{
		ID:          policy.ID.String(),
		ReportType:  string(policy.ReportType),
		MinSeverity: string(policy.MinSeverity),
		Action:      string(policy.Action),
		MuteHours:   policy.MuteHours,
		Active:      policy.Active,
		CreatedAt:   policy.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   updatedAt,
	}
}

// HandleListPolicies handles GET /policies
func (h *PolicyHandler) HandleListPolicies(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	policies, err := h.policyService.ListPolicies(r.Context(), claims.Role)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteList(w, lo.Map(policies, func(policy *domain.ModerationPolicy, _ int) PolicyDTO {
		return toPolicyDTO(policy)
	}))
}

// HandleCreatePolicy handles POST /policies
func (h *PolicyHandler) HandleCreatePolicy(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	req, err := validation.DecodeAndValidate[PolicyRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := req.Validate(); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	policy, err := h.policyService.CreatePolicy(r.Context(), req.toParams(), claims.Role)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("policy created",
		"policy_id", policy.ID,
		"user_id", claims.UserID,
	)

	WriteCreated(w, toPolicyDTO(policy))
}

// HandleGetPolicy handles GET /policies/{policyID}
func (h *PolicyHandler) HandleGetPolicy(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	policyID, err := h.parsePolicyID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	policy, err := h.policyService.GetPolicy(r.Context(), policyID, claims.Role)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, toPolicyDTO(policy))
}

// HandleUpdatePolicy handles PUT /policies/{policyID}
func (h *PolicyHandler) HandleUpdatePolicy(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	policyID, err := h.parsePolicyID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	req, err := validation.DecodeAndValidate[PolicyRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := req.Validate(); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	policy, err := h.policyService.UpdatePolicy(r.Context(), policyID, req.toParams(), claims.Role)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("policy updated",
		"policy_id", policyID,
		"user_id", claims.UserID,
	)

	WriteJSON(w, http.StatusOK, toPolicyDTO(policy))
}

// HandleDeletePolicy handles DELETE /policies/{policyID}
func (h *PolicyHandler) HandleDeletePolicy(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	policyID, err := h.parsePolicyID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := h.policyService.DeletePolicy(r.Context(), policyID, claims.Role); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("policy deleted",
		"policy_id", policyID,
		"user_id", claims.UserID,
	)

	WriteNoContent(w)
}

func (h *PolicyHandler) getClaims(w http.ResponseWriter, r *http.Request) (*auth.Claims, bool) {
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

func (h *PolicyHandler) parsePolicyID(r *http.Request) (uuid.UUID, error) {
	idParam := chi.URLParam(r, "policyID")
	policyID, err := uuid.Parse(idParam)
	if err != nil {
		v := validation.NewValidator()
		v.Custom("policyID", false, "Invalid policy ID")
		return uuid.Nil, v.Errors()
	}
	return policyID, nil
}
