package domain

import (
	"time"

	"github.com/google/uuid"

	apperrors "github.com/bedic/places-backend/internal/core/errors"
)

// ModerationPolicy maps a report type and severity threshold to a default
// action. When a moderator resolves a report without choosing an action,
// the matching active policy decides.
type ModerationPolicy struct {
	ID          uuid.UUID
	ReportType  ReportType
	MinSeverity ReportSeverity
	Action      ModerationAction
	MuteHours   int
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

// PolicyParams holds caller-supplied fields for creating or updating a policy.
type PolicyParams struct {
	ReportType  ReportType
	MinSeverity ReportSeverity
	Action      ModerationAction
	MuteHours   int
	Active      bool
}

// Validate checks policy parameters.
func (p *PolicyParams) Validate() error {
	errs := apperrors.NewValidationErrors()

	if !ValidReportType(p.ReportType) {
		errs.Add("reportType", "Unknown report type")
	}
	if !ValidSeverity(p.MinSeverity) {
		errs.Add("minSeverity", "Unknown severity")
	}
	if !ValidAction(p.Action) {
		errs.Add("action", "Unknown moderation action")
	}
	if p.Action == ActionMute && p.MuteHours <= 0 {
		errs.Add("muteHours", "Mute policies need a positive mute duration")
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}

// NewModerationPolicy builds a policy from validated parameters.
func NewModerationPolicy(params PolicyParams) (*ModerationPolicy, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	return &ModerationPolicy{
		ID:          uuid.New(),
		ReportType:  params.ReportType,
		MinSeverity: params.MinSeverity,
		Action:      params.Action,
		MuteHours:   params.MuteHours,
		Active:      params.Active,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// Matches reports whether the policy applies to a report of the given type
// and severity.
func (p *ModerationPolicy) Matches(t ReportType, s ReportSeverity) bool {
	return p.Active && p.ReportType == t && SeverityRank(s) >= SeverityRank(p.MinSeverity)
}

// Update applies new parameters to the policy.
func (p *ModerationPolicy) Update(params PolicyParams) error {
	if err := params.Validate(); err != nil {
		return err
	}

	p.ReportType = params.ReportType
	p.MinSeverity = params.MinSeverity
	p.Action = params.Action
	p.MuteHours = params.MuteHours
	p.Active = params.Active
	now := time.Now().UTC()
	p.UpdatedAt = &now
	return nil
}
