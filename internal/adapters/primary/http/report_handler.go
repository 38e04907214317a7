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

const maxReportsPerPage = 100

var (
	reportTypes      = []string{"spam", "abuse", "fake_place", "inappropriate", "other"}
	reportSeverities = []string{"low", "medium", "high"}
	moderationActions = []string{"ban", "mute", "warn", "dismiss"}
)

// ReportHandler handles HTTP requests for reports and moderation.
type ReportHandler struct {
	reportService ports.ReportService
	errorHandler  *ErrorHandler
	logger        *slog.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportService ports.ReportService, errorHandler *ErrorHandler, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		errorHandler:  errorHandler,
		logger:        logger.With("handler", "report"),
	}
}

// RegisterRoutes sets up the routing for all report endpoints.
func (h *ReportHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleListReports)
	r.Post("/", h.HandleCreateReport)

	r.Route("/{reportID}", func(r chi.Router) {
		r.Get("/", h.HandleGetReport)
		r.Patch("/review", h.HandleMarkReviewed)
		r.Patch("/moderate", h.HandleModerateReport)
	})
}

// --- Request/Response DTOs ---

// CreateReportRequest defines the expected JSON body for filing a report
type CreateReportRequest struct {
	Type           string  `json:"type"`
	Reason         string  `json:"reason"`
	Severity       string  `json:"severity"`
	ReportedUserID *string `json:"reportedUserId"`
	PlaceID        *string `json:"placeId"`
}

// Validate validates the create report request
func (r *CreateReportRequest) Validate() error {
	v := validation.NewValidator()

	v.Required("type", r.Type).
		OneOf("type", r.Type, reportTypes)

	v.Required("reason", r.Reason).
		MaxLength("reason", r.Reason, domain.MaxReportReasonLength)

	v.Required("severity", r.Severity).
		OneOf("severity", r.Severity, reportSeverities)

	if r.ReportedUserID != nil {
		v.UUID("reportedUserId", *r.ReportedUserID)
	}
	if r.PlaceID != nil {
		v.UUID("placeId", *r.PlaceID)
	}
	v.Custom("target", r.ReportedUserID != nil || r.PlaceID != nil, "A report needs a reported user or a place")

	if v.HasErrors() {
		return v.Errors()
	}
	return nil
}

// ModerateReportRequest defines the expected JSON body for resolving a report.
// Action may be omitted to let the matching moderation policy decide.
type ModerateReportRequest struct {
	Action    string `json:"action"`
	MuteHours int    `json:"muteHours"`
}

// Validate validates the moderate report request
func (r *ModerateReportRequest) Validate() error {
	v := validation.NewValidator()

	v.OneOf("action", r.Action, moderationActions)
	v.Custom("muteHours", r.MuteHours >= 0, "Must not be negative")

	if v.HasErrors() {
		return v.Errors()
	}
	return nil
}

// ReportDTO defines the JSON response for reports.
type ReportDTO struct {
	ID             string  `json:"id"`
	Type           string  `json:"type"`
	Reason         string  `json:"reason"`
	Severity       string  `json:"severity"`
	Status         string  `json:"status"`
	ReporterID     string  `json:"reporterId"`
	ReportedUserID *string `json:"reportedUserId"`
	PlaceID        *string `json:"placeId"`
	ModeratorID    *string `json:"moderatorId"`
	Action         *string `json:"action"`
	CreatedAt      string  `json:"createdAt"`
	UpdatedAt      *string `json:"updatedAt"`
}

func toReportDTO(report *domain.Report) ReportDTO {
	uuidString := func(id *uuid.UUID) *string {
		if id == nil {
			return nil
		}
		value := id.String()
		return &value
	}

	var action *string
	if report.Action != nil {
		value := string(*report.Action)
		action = &value
	}

	var updatedAt *string
	if report.UpdatedAt != nil {
		value := report.UpdatedAt.Format(time.RFC3339)
		updatedAt = &value
	}

	return ReportDTO{
		ID:             report.ID.String(),
		Type:           string(report.Type),
		Reason:         report.Reason,
		Severity:       string(report.Severity),
		Status:         string(report.Status),
		ReporterID:     report.ReporterID.String(),
		ReportedUserID: uuidString(report.ReportedUserID),
		PlaceID:        uuidString(report.PlaceID),
		ModeratorID:    uuidString(report.ModeratorID),
		Action:         action,
		CreatedAt:      report.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      updatedAt,
	}
}

// --- Handlers ---

// HandleListReports handles GET /reports
func (h *ReportHandler) HandleListReports(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	pagination := validation.ParsePagination(r, maxReportsPerPage)

	v := validation.NewValidator()

	var status *domain.ReportStatus
	if statusStr := validation.ParseStringQueryParam(r, "status"); statusStr != nil {
		v.OneOf("status", *statusStr, []string{"open", "reviewed", "resolved"})
		parsed := domain.ReportStatus(*statusStr)
		status = &parsed
	}

	var reportType *domain.ReportType
	if typeStr := validation.ParseStringQueryParam(r, "type"); typeStr != nil {
		v.OneOf("type", *typeStr, reportTypes)
		parsed := domain.ReportType(*typeStr)
		reportType = &parsed
	}

	var severity *domain.ReportSeverity
	if severityStr := validation.ParseStringQueryParam(r, "severity"); severityStr != nil {
		v.OneOf("severity", *severityStr, reportSeverities)
		parsed := domain.ReportSeverity(*severityStr)
		severity = &parsed
	}

	if v.HasErrors() {
		h.errorHandler.Handle(w, r, v.Errors())
		return
	}

	filter := ports.ListReportsFilter{
		Status:   status,
		Type:     reportType,
		Severity: severity,
		Limit:    pagination.Limit + 1,
		Offset:   pagination.Offset,
	}

	reports, err := h.reportService.ListReports(r.Context(), filter, claims.Role)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WritePaginatedSimple(w, lo.Map(reports, func(report *domain.Report, _ int) ReportDTO {
		return toReportDTO(report)
	}), pagination.Limit, pagination.Offset)
}

// HandleCreateReport handles POST /reports
func (h *ReportHandler) HandleCreateReport(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	req, err := validation.DecodeAndValidate[CreateReportRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := req.Validate(); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	parseOptionalUUID := func(s *string) *uuid.UUID {
		if s == nil {
			return nil
		}
		id, err := uuid.Parse(*s)
		if err != nil {
			return nil
		}
		return &id
	}

	report, err := h.reportService.CreateReport(r.Context(), ports.CreateReportParams{
		Report: domain.ReportParams{
			Type:           domain.ReportType(req.Type),
			Reason:         req.Reason,
			Severity:       domain.ReportSeverity(req.Severity),
			ReporterID:     claims.UserID,
			ReportedUserID: parseOptionalUUID(req.ReportedUserID),
			PlaceID:        parseOptionalUUID(req.PlaceID),
		},
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("report created",
		"report_id", report.ID,
		"user_id", claims.UserID,
	)

	WriteCreated(w, toReportDTO(report))
}

// HandleGetReport handles GET /reports/{reportID}
func (h *ReportHandler) HandleGetReport(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	reportID, err := h.parseReportID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	report, err := h.reportService.GetReport(r.Context(), reportID, claims.Role)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, toReportDTO(report))
}

// HandleMarkReviewed handles PATCH /reports/{reportID}/review
func (h *ReportHandler) HandleMarkReviewed(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	reportID, err := h.parseReportID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	report, err := h.reportService.MarkReviewed(r.Context(), reportID, claims.Role)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("report reviewed",
		"report_id", reportID,
		"user_id", claims.UserID,
	)

	WriteJSON(w, http.StatusOK, toReportDTO(report))
}

// HandleModerateReport handles PATCH /reports/{reportID}/moderate
func (h *ReportHandler) HandleModerateReport(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	reportID, err := h.parseReportID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	req, err := validation.DecodeAndValidate[ModerateReportRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := req.Validate(); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	report, err := h.reportService.ModerateReport(r.Context(), ports.ModerateReportParams{
		ReportID:    reportID,
		ModeratorID: claims.UserID,
		Role:        claims.Role,
		Action:      domain.ModerationAction(req.Action),
		MuteHours:   req.MuteHours,
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("report moderated",
		"report_id", reportID,
		"action", req.Action,
		"user_id", claims.UserID,
	)

	WriteJSON(w, http.StatusOK, toReportDTO(report))
}

// --- Helper methods ---

func (h *ReportHandler) getClaims(w http.ResponseWriter, r *http.Request) (*auth.Claims, bool) {
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

func (h *ReportHandler) parseReportID(r *http.Request) (uuid.UUID, error) {
	idParam := chi.URLParam(r, "reportID")
	reportID, err := uuid.Parse(idParam)
	if err != nil {
		v := validation.NewValidator()
		v.Custom("reportID", false, "Invalid report ID")
		return uuid.Nil, v.Errors()
	}
	return reportID, nil
}
