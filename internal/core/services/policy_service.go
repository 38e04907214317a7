package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/bedic/places-backend/internal/core/domain"
	apperrors "github.com/bedic/places-backend/internal/core/errors"
	"github.com/bedic/places-backend/internal/core/ports"
)

// PolicyService implements moderation policy management. All operations are
// admin-only.
type PolicyService struct {
	policyRepo ports.PolicyRepository
}

var _ ports.PolicyService = (*PolicyService)(nil)

// NewPolicyService creates a new policy service
func NewPolicyService(policyRepo ports.PolicyRepository) ports.PolicyService {
	return &PolicyService{policyRepo: policyRepo}
}

func (s *PolicyService) CreatePolicy(ctx context.Context, params domain.PolicyParams, role domain.Role) (*domain.ModerationPolicy, error) {
	if role != domain.RoleAdmin {
		return nil, apperrors.ErrForbidden
	}

	policy, err := domain.NewModerationPolicy(params)
	if err != nil {
		return nil, err
	}

	return s.policyRepo.Create(ctx, policy)
}

func (s *PolicyService) GetPolicy(ctx context.Context, policyID uuid.UUID, role domain.Role) (*domain.ModerationPolicy, error) {
	if role != domain.RoleAdmin {
		return nil, apperrors.ErrForbidden
	}
	return s.policyRepo.GetByID(ctx, policyID)
}

func (s *PolicyService) ListPolicies(ctx context.Context, role domain.Role) ([]*domain.ModerationPolicy, error) {
	if role != domain.RoleAdmin {
		return nil, apperrors.ErrForbidden
	}
	return s.policyRepo.List(ctx, false)
}

func (s *PolicyService) UpdatePolicy(ctx context.Context, policyID uuid.UUID, params domain.PolicyParams, role domain.Role) (*domain.ModerationPolicy, error) {
	if role != domain.RoleAdmin {
		return nil, apperrors.ErrForbidden
	}

	policy, err := s.policyRepo.GetByID(ctx, policyID)
	if err != nil {
		return nil, err
	}

	if err := policy.Update(params); err != nil {
		return nil, err
	}

	return s.policyRepo.Update(ctx, policy)
}

func (s *PolicyService) DeletePolicy(ctx context.Context, policyID uuid.UUID, role domain.Role) error {
	if role != domain.RoleAdmin {
		return apperrors.ErrForbidden
	}
	return s.policyRepo.Delete(ctx, policyID)
}
