package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bedic/places-backend/internal/core/domain"
	apperrors "github.com/bedic/places-backend/internal/core/errors"
	"github.com/bedic/places-backend/internal/core/mocks"
	"github.com/bedic/places-backend/internal/core/ports"
)

type reportServiceFixture struct {
	reportRepo  *mocks.MockReportRepository
	userRepo    *mocks.MockUserRepository
	policyRepo  *mocks.MockPolicyRepository
	txManager   *mocks.MockTransactionManager
	broadcaster *mocks.MockEventBroadcaster
	service     ports.ReportService
}

func newReportServiceFixture() *reportServiceFixture {
	f := &reportServiceFixture{
		reportRepo:  mocks.NewMockReportRepository(),
		userRepo:    mocks.NewMockUserRepository(),
		policyRepo:  mocks.NewMockPolicyRepository(),
		txManager:   mocks.NewMockTransactionManager(),
		broadcaster: mocks.NewMockEventBroadcaster(),
	}
	f.txManager.On("WithTransaction", mock.Anything, mock.Anything).Return(nil).Maybe()
	f.service = NewReportService(f.reportRepo, f.userRepo, f.policyRepo, f.txManager, f.broadcaster)
	return f
}

func activeUser() *domain.User {
	return &domain.User{
		ID:        uuid.New(),
		FullName:  "Laura Gómez",
		Email:     "laura@example.com",
		Role:      domain.RoleUser,
		CreatedAt: time.Now().UTC(),
	}
}

func openReport(reportedUserID *uuid.UUID) *domain.Report {
	return &domain.Report{
		ID:             uuid.New(),
		Type:           domain.ReportSpam,
		Reason:         "spam",
		Severity:       domain.SeverityHigh,
		Status:         domain.ReportOpen,
		ReporterID:     uuid.New(),
		ReportedUserID: reportedUserID,
		CreatedAt:      time.Now().UTC(),
	}
}

func TestReportService_CreateReport(t *testing.T) {
	f := newReportServiceFixture()
	reporter := activeUser()
	reported := uuid.New()

	f.userRepo.On("GetByID", mock.Anything, reporter.ID).Return(reporter, nil)
	f.reportRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Report")).
		Return(openReport(&reported), nil)
	f.broadcaster.On("Publish", domain.EventReportCreated, mock.Anything).Return(nil)

	report, err := f.service.CreateReport(context.Background(), ports.CreateReportParams{
		Report: domain.ReportParams{
			Type:           domain.ReportSpam,
			Reason:         "spam",
			Severity:       domain.SeverityHigh,
			ReporterID:     reporter.ID,
			ReportedUserID: &reported,
		},
	})

	require.NoError(t, err)
	assert.Equal(t, domain.ReportOpen, report.Status)
	f.broadcaster.AssertCalled(t, "Publish", domain.EventReportCreated, mock.Anything)
}

func TestReportService_CreateReport_BannedReporter(t *testing.T) {
	f := newReportServiceFixture()
	reporter := activeUser()
	reporter.Banned = true

	f.userRepo.On("GetByID", mock.Anything, reporter.ID).Return(reporter, nil)

	_, err := f.service.CreateReport(context.Background(), ports.CreateReportParams{
		Report: domain.ReportParams{
			Type:       domain.ReportSpam,
			Reason:     "spam",
			Severity:   domain.SeverityLow,
			ReporterID: reporter.ID,
			PlaceID:    ptr(uuid.New()),
		},
	})

	assert.ErrorIs(t, err, apperrors.ErrUserBanned)
	f.reportRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestReportService_CreateReport_MutedReporter(t *testing.T) {
	f := newReportServiceFixture()
	reporter := activeUser()
	until := time.Now().UTC().Add(2 * time.Hour)
	reporter.MutedUntil = &until

	f.userRepo.On("GetByID", mock.Anything, reporter.ID).Return(reporter, nil)

	_, err := f.service.CreateReport(context.Background(), ports.CreateReportParams{
		Report: domain.ReportParams{
			Type:       domain.ReportAbuse,
			Reason:     "insultos",
			Severity:   domain.SeverityMedium,
			ReporterID: reporter.ID,
			PlaceID:    ptr(uuid.New()),
		},
	})

	assert.ErrorIs(t, err, apperrors.ErrUserMuted)
}

func TestReportService_CreateReport_RequiresTarget(t *testing.T) {
	f := newReportServiceFixture()
	reporter := activeUser()

	f.userRepo.On("GetByID", mock.Anything, reporter.ID).Return(reporter, nil)

	_, err := f.service.CreateReport(context.Background(), ports.CreateReportParams{
		Report: domain.ReportParams{
			Type:       domain.ReportSpam,
			Reason:     "spam",
			Severity:   domain.SeverityLow,
			ReporterID: reporter.ID,
		},
	})

	require.Error(t, err)
	var verrs *apperrors.ValidationErrors
	assert.ErrorAs(t, err, &verrs)
}

func TestReportService_GetReport_RequiresModerator(t *testing.T) {
	f := newReportServiceFixture()

	_, err := f.service.GetReport(context.Background(), uuid.New(), domain.RoleUser)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = f.service.GetReport(context.Background(), uuid.New(), domain.RoleSupportAgent)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestReportService_ListReports_NormalizesPagination(t *testing.T) {
	f := newReportServiceFixture()

	f.reportRepo.On("List", mock.Anything, mock.MatchedBy(func(filter ports.ListReportsFilter) bool {
		return filter.Limit == 20 && filter.Offset == 0
	})).Return([]*domain.Report{}, nil)

	_, err := f.service.ListReports(context.Background(), ports.ListReportsFilter{Limit: 5000, Offset: -3}, domain.RoleModerator)
	require.NoError(t, err)
}

func TestReportService_MarkReviewed(t *testing.T) {
	f := newReportServiceFixture()
	report := openReport(nil)

	f.reportRepo.On("GetByID", mock.Anything, report.ID).Return(report, nil)
	f.reportRepo.On("Update", mock.Anything, mock.MatchedBy(func(r *domain.Report) bool {
		return r.Status == domain.ReportReviewed
	})).Return(report, nil)
	f.broadcaster.On("Publish", domain.EventReportUpdated, mock.Anything).Return(nil)

	updated, err := f.service.MarkReviewed(context.Background(), report.ID, domain.RoleModerator)
	require.NoError(t, err)
	assert.Equal(t, domain.ReportReviewed, updated.Status)
}

func TestReportService_MarkReviewed_AlreadyReviewed(t *testing.T) {
	f := newReportServiceFixture()
	report := openReport(nil)
	report.Status = domain.ReportReviewed

	f.reportRepo.On("GetByID", mock.Anything, report.ID).Return(report, nil)

	_, err := f.service.MarkReviewed(context.Background(), report.ID, domain.RoleAdmin)
	assert.ErrorIs(t, err, apperrors.ErrInvalidReportStatus)
}

func TestReportService_ModerateReport_ExplicitBan(t *testing.T) {
	f := newReportServiceFixture()
	reported := activeUser()
	report := openReport(&reported.ID)
	moderatorID := uuid.New()

	f.reportRepo.On("GetByID", mock.Anything, report.ID).Return(report, nil)
	f.reportRepo.On("Update", mock.Anything, mock.AnythingOfType("*domain.Report")).Return(report, nil)
	f.userRepo.On("GetByID", mock.Anything, reported.ID).Return(reported, nil)
	f.userRepo.On("Update", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.Banned
	})).Return(reported, nil)
	f.broadcaster.On("Publish", domain.EventReportModerated, mock.Anything).Return(nil)

	updated, err := f.service.ModerateReport(context.Background(), ports.ModerateReportParams{
		ReportID:    report.ID,
		ModeratorID: moderatorID,
		Role:        domain.RoleModerator,
		Action:      domain.ActionBan,
	})

	require.NoError(t, err)
	assert.Equal(t, domain.ReportResolved, updated.Status)
	f.userRepo.AssertCalled(t, "Update", mock.Anything, mock.Anything)
	f.policyRepo.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestReportService_ModerateReport_PolicyFallbackMute(t *testing.T) {
	f := newReportServiceFixture()
	reported := activeUser()
	report := openReport(&reported.ID)

	policy, err := domain.NewModerationPolicy(domain.PolicyParams{
		ReportType:  domain.ReportSpam,
		MinSeverity: domain.SeverityMedium,
		Action:      domain.ActionMute,
		MuteHours:   48,
		Active:      true,
	})
	require.NoError(t, err)

	f.reportRepo.On("GetByID", mock.Anything, report.ID).Return(report, nil)
	f.reportRepo.On("Update", mock.Anything, mock.AnythingOfType("*domain.Report")).Return(report, nil)
	f.policyRepo.On("List", mock.Anything, true).Return([]*domain.ModerationPolicy{policy}, nil)
	f.userRepo.On("GetByID", mock.Anything, reported.ID).Return(reported, nil)
	f.userRepo.On("Update", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.IsMuted(time.Now().UTC()) && u.MuteHoursRemaining(time.Now().UTC()) == 48
	})).Return(reported, nil)
	f.broadcaster.On("Publish", domain.EventReportModerated, mock.Anything).Return(nil)

	_, err = f.service.ModerateReport(context.Background(), ports.ModerateReportParams{
		ReportID:    report.ID,
		ModeratorID: uuid.New(),
		Role:        domain.RoleAdmin,
	})

	require.NoError(t, err)
	f.userRepo.AssertCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestReportService_ModerateReport_NoPolicyDismisses(t *testing.T) {
	f := newReportServiceFixture()
	reported := activeUser()
	report := openReport(&reported.ID)

	f.reportRepo.On("GetByID", mock.Anything, report.ID).Return(report, nil)
	f.reportRepo.On("Update", mock.Anything, mock.MatchedBy(func(r *domain.Report) bool {
		return r.Action != nil && *r.Action == domain.ActionDismiss
	})).Return(report, nil)
	f.policyRepo.On("List", mock.Anything, true).Return([]*domain.ModerationPolicy{}, nil)
	f.broadcaster.On("Publish", domain.EventReportModerated, mock.Anything).Return(nil)

	_, err := f.service.ModerateReport(context.Background(), ports.ModerateReportParams{
		ReportID:    report.ID,
		ModeratorID: uuid.New(),
		Role:        domain.RoleModerator,
	})

	require.NoError(t, err)
	f.userRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestReportService_ModerateReport_Forbidden(t *testing.T) {
	f := newReportServiceFixture()

	_, err := f.service.ModerateReport(context.Background(), ports.ModerateReportParams{
		ReportID:    uuid.New(),
		ModeratorID: uuid.New(),
		Role:        domain.RoleUser,
		Action:      domain.ActionBan,
	})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestReportService_ModerateReport_AlreadyResolved(t *testing.T) {
	f := newReportServiceFixture()
	report := openReport(nil)
	report.Status = domain.ReportResolved

	f.reportRepo.On("GetByID", mock.Anything, report.ID).Return(report, nil)

	_, err := f.service.ModerateReport(context.Background(), ports.ModerateReportParams{
		ReportID:    report.ID,
		ModeratorID: uuid.New(),
		Role:        domain.RoleAdmin,
		Action:      domain.ActionWarn,
	})
	assert.ErrorIs(t, err, apperrors.ErrReportAlreadyResolved)
}

func ptr[T any](v T) *T {
	return &v
}
