package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/bedic/places-backend/internal/core/domain"
	apperrors "github.com/bedic/places-backend/internal/core/errors"
	"github.com/bedic/places-backend/internal/core/ports"
)

// Fallback mute length when neither the moderator nor a policy names one.
const defaultMuteHours = 24

// ReportService implements the moderation workflow for reports
type ReportService struct {
	reportRepo  ports.ReportRepository
	userRepo    ports.UserRepository
	policyRepo  ports.PolicyRepository
	txManager   ports.TransactionManager
	broadcaster ports.EventBroadcaster
}

var _ ports.ReportService = (*ReportService)(nil)

// NewReportService creates a new report service
func NewReportService(
	reportRepo ports.ReportRepository,
	userRepo ports.UserRepository,
	policyRepo ports.PolicyRepository,
	txManager ports.TransactionManager,
	broadcaster ports.EventBroadcaster,
) ports.ReportService {
	return &ReportService{
		reportRepo:  reportRepo,
		userRepo:    userRepo,
		policyRepo:  policyRepo,
		txManager:   txManager,
		broadcaster: broadcaster,
	}
}

// CreateReport files a new report. Muted users cannot file reports.
func (s *ReportService) CreateReport(ctx context.Context, params ports.CreateReportParams) (*domain.Report, error) {
	reporter, err := s.userRepo.GetByID(ctx, params.Report.ReporterID)
	if err != nil {
		return nil, err
	}
	if reporter.Banned {
		return nil, apperrors.ErrUserBanned
	}
	if reporter.IsMuted(time.Now().UTC()) {
		return nil, apperrors.ErrUserMuted
	}

	report, err := domain.NewReport(params.Report)
	if err != nil {
		return nil, err
	}

	created, err := s.reportRepo.Create(ctx, report)
	if err != nil {
		return nil, err
	}

	_ = s.broadcaster.Publish(domain.EventReportCreated, domain.ReportCreatedPayload{
		ID:       created.ID.String(),
		Type:     string(created.Type),
		Reason:   created.Reason,
		Severity: string(created.Severity),
	})

	return created, nil
}

// GetReport retrieves a single report. Moderators and admins only.
func (s *ReportService) GetReport(ctx context.Context, reportID uuid.UUID, role domain.Role) (*domain.Report, error) {
	if !role.CanModerate() {
		return nil, apperrors.ErrForbidden
	}
	return s.reportRepo.GetByID(ctx, reportID)
}

// ListReports lists reports matching the filter. Moderators and admins only.
func (s *ReportService) ListReports(ctx context.Context, filter ports.ListReportsFilter, role domain.Role) ([]*domain.Report, error) {
	if !role.CanModerate() {
		return nil, apperrors.ErrForbidden
	}
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.reportRepo.List(ctx, filter)
}

// MarkReviewed moves an open report to reviewed without resolving it.
func (s *ReportService) MarkReviewed(ctx context.Context, reportID uuid.UUID, role domain.Role) (*domain.Report, error) {
	if !role.CanModerate() {
		return nil, apperrors.ErrForbidden
	}

	report, err := s.reportRepo.GetByID(ctx, reportID)
	if err != nil {
		return nil, err
	}

	if err := report.MarkReviewed(); err != nil {
		return nil, err
	}

	updated, err := s.reportRepo.Update(ctx, report)
	if err != nil {
		return nil, err
	}

	_ = s.broadcaster.Publish(domain.EventReportUpdated, domain.ReportUpdatedPayload{
		ReportID: updated.ID.String(),
		Status:   string(updated.Status),
	})

	return updated, nil
}

// ModerateReport resolves a report. When no action is given, the matching
// active moderation policy decides; with no matching policy the report is
// dismissed. Ban and mute actions sanction the reported user.
func (s *ReportService) ModerateReport(ctx context.Context, params ports.ModerateReportParams) (*domain.Report, error) {
	if !params.Role.CanModerate() {
		return nil, apperrors.ErrForbidden
	}

	report, err := s.reportRepo.GetByID(ctx, params.ReportID)
	if err != nil {
		return nil, err
	}

	action := params.Action
	muteHours := params.MuteHours
	if action == "" {
		policyAction, policyHours := s.resolvePolicy(ctx, report)
		action = policyAction
		if muteHours <= 0 {
			muteHours = policyHours
		}
	}
	if action == domain.ActionMute && muteHours <= 0 {
		muteHours = defaultMuteHours
	}

	if err := report.Moderate(params.ModeratorID, action); err != nil {
		return nil, err
	}

	// The report resolution and the sanction it carries commit together.
	var updated *domain.Report
	err = s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		updated, err = s.reportRepo.Update(ctx, report)
		if err != nil {
			return err
		}

		if action.IsSanction() && updated.ReportedUserID != nil {
			return s.applySanction(ctx, *updated.ReportedUserID, action, muteHours)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	_ = s.broadcaster.Publish(domain.EventReportModerated, domain.ReportModeratedPayload{
		ReportID:       updated.ID.String(),
		Status:         string(updated.Status),
		Action:         string(action),
		ModeratorID:    params.ModeratorID.String(),
		ReportedUserID: reportedUserString(updated),
		Reason:         updated.Reason,
	})

	return updated, nil
}

// resolvePolicy picks the action for a report from the active policies.
func (s *ReportService) resolvePolicy(ctx context.Context, report *domain.Report) (domain.ModerationAction, int) {
	policies, err := s.policyRepo.List(ctx, true)
	if err != nil {
		return domain.ActionDismiss, 0
	}

	for _, policy := range policies {
		if policy.Matches(report.Type, report.Severity) {
			return policy.Action, policy.MuteHours
		}
	}
	return domain.ActionDismiss, 0
}

// applySanction updates the sanctioned user's account.
func (s *ReportService) applySanction(ctx context.Context, userID uuid.UUID, action domain.ModerationAction, muteHours int) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	switch action {
	case domain.ActionBan:
		user.Ban(now)
	case domain.ActionMute:
		user.Mute(now, muteHours)
	}

	_, err = s.userRepo.Update(ctx, user)
	return err
}

// reportedUserString renders the reported user id for event payloads.
func reportedUserString(report *domain.Report) string {
	if report.ReportedUserID == nil {
		return ""
	}
	return report.ReportedUserID.String()
}
