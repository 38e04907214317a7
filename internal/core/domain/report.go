package domain

import (
	"time"

	"github.com/google/uuid"

	apperrors "github.com/bedic/places-backend/internal/core/errors"
)

const MaxReportReasonLength = 1000

// ReportType classifies what is being reported.
type ReportType string

const (
	ReportSpam         ReportType = "spam"
	ReportAbuse        ReportType = "abuse"
	ReportFakePlace    ReportType = "fake_place"
	ReportInappropriate ReportType = "inappropriate"
	ReportOtherType    ReportType = "other"
)

// ValidReportType reports whether t is a known report type.
func ValidReportType(t ReportType) bool {
	switch t {
	case ReportSpam, ReportAbuse, ReportFakePlace, ReportInappropriate, ReportOtherType:
		return true
	}
	return false
}

// ReportSeverity grades how urgent a report is.
type ReportSeverity string

const (
	SeverityLow    ReportSeverity = "low"
	SeverityMedium ReportSeverity = "medium"
	SeverityHigh   ReportSeverity = "high"
)

// ValidSeverity reports whether s is a known severity.
func ValidSeverity(s ReportSeverity) bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return true
	}
	return false
}

// SeverityRank orders severities for policy threshold comparisons.
func SeverityRank(s ReportSeverity) int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	}
	return 0
}

// ReportStatus is the moderation lifecycle state of a report.
type ReportStatus string

const (
	ReportOpen     ReportStatus = "open"
	ReportReviewed ReportStatus = "reviewed"
	ReportResolved ReportStatus = "resolved"
)

// ModerationAction is the outcome a moderator applies to a report.
type ModerationAction string

const (
	ActionBan     ModerationAction = "ban"
	ActionMute    ModerationAction = "mute"
	ActionWarn    ModerationAction = "warn"
	ActionDismiss ModerationAction = "dismiss"
)

// ValidAction reports whether a is a known moderation action.
func ValidAction(a ModerationAction) bool {
	switch a {
	case ActionBan, ActionMute, ActionWarn, ActionDismiss:
		return true
	}
	return false
}

// IsSanction reports whether the action restricts the reported user's account.
func (a ModerationAction) IsSanction() bool {
	return a == ActionBan || a == ActionMute
}

// Report is a user-submitted complaint about a place or another user.
type Report struct {
	ID             uuid.UUID
	Type           ReportType
	Reason         string
	Severity       ReportSeverity
	Status         ReportStatus
	ReporterID     uuid.UUID
	ReportedUserID *uuid.UUID
	PlaceID        *uuid.UUID
	ModeratorID    *uuid.UUID
	Action         *ModerationAction
	CreatedAt      time.Time
	UpdatedAt      *time.Time
}

// ReportParams holds caller-supplied fields for filing a report.
type ReportParams struct {
	Type           ReportType
	Reason         string
	Severity       ReportSeverity
	ReporterID     uuid.UUID
	ReportedUserID *uuid.UUID
	PlaceID        *uuid.UUID
}

// Validate checks report creation parameters.
func (p *ReportParams) Validate() error {
	errs := apperrors.NewValidationErrors()

	if !ValidReportType(p.Type) {
		errs.Add("type", "Unknown report type")
	}
	if p.Reason == "" {
		errs.Add("reason", "Reason is required")
	} else if len(p.Reason) > MaxReportReasonLength {
		errs.Add("reason", "Reason must be 1000 characters or less")
	}
	if !ValidSeverity(p.Severity) {
		errs.Add("severity", "Unknown severity")
	}
	if p.ReporterID == uuid.Nil {
		errs.Add("reporterId", "Reporter is required")
	}
	if p.ReportedUserID == nil && p.PlaceID == nil {
		errs.Add("target", "A report needs a reported user or a place")
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}

// NewReport builds an open report from validated parameters.
func NewReport(params ReportParams) (*Report, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	return &Report{
		ID:             uuid.New(),
		Type:           params.Type,
		Reason:         params.Reason,
		Severity:       params.Severity,
		Status:         ReportOpen,
		ReporterID:     params.ReporterID,
		ReportedUserID: params.ReportedUserID,
		PlaceID:        params.PlaceID,
		CreatedAt:      time.Now().UTC(),
	}, nil
}

// Moderate records a moderation decision. A resolved report cannot be
// moderated again.
func (r *Report) Moderate(moderatorID uuid.UUID, action ModerationAction) error {
	if r.Status == ReportResolved {
		return apperrors.ErrReportAlreadyResolved
	}
	if !ValidAction(action) {
		return apperrors.ErrInvalidModerationAction
	}

	r.ModeratorID = &moderatorID
	r.Action = &action
	r.Status = ReportResolved
	now := time.Now().UTC()
	r.UpdatedAt = &now
	return nil
}

// MarkReviewed moves an open report to reviewed without a final decision.
func (r *Report) MarkReviewed() error {
	if r.Status != ReportOpen {
		return apperrors.ErrInvalidReportStatus
	}
	r.Status = ReportReviewed
	now := time.Now().UTC()
	r.UpdatedAt = &now
	return nil
}
