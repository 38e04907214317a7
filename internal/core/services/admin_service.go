package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/bedic/places-backend/internal/core/domain"
	apperrors "github.com/bedic/places-backend/internal/core/errors"
	"github.com/bedic/places-backend/internal/core/ports"
)

// AdminService implements user administration and direct sanctions.
type AdminService struct {
	userRepo    ports.UserRepository
	broadcaster ports.EventBroadcaster
}

var _ ports.AdminService = (*AdminService)(nil)

// NewAdminService creates a new admin service
func NewAdminService(userRepo ports.UserRepository, broadcaster ports.EventBroadcaster) ports.AdminService {
	return &AdminService{
		userRepo:    userRepo,
		broadcaster: broadcaster,
	}
}

// ListUsers returns all accounts. Admins only.
func (s *AdminService) ListUsers(ctx context.Context, role domain.Role, limit, offset int) ([]*domain.User, error) {
	if role != domain.RoleAdmin {
		return nil, apperrors.ErrForbidden
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.userRepo.List(ctx, limit, offset)
}

// UpdateUserRole changes a user's role. Admins only.
func (s *AdminService) UpdateUserRole(ctx context.Context, actorRole domain.Role, userID uuid.UUID, newRole domain.Role) (*domain.User, error) {
	if actorRole != domain.RoleAdmin {
		return nil, apperrors.ErrForbidden
	}
	if !domain.ValidRole(newRole) {
		return nil, apperrors.ErrBadRequest
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Role = newRole
	now := time.Now().UTC()
	user.UpdatedAt = &now

	return s.userRepo.Update(ctx, user)
}

// MuteUser silences a user for the given number of hours. Moderators and
// admins only.
func (s *AdminService) MuteUser(ctx context.Context, actorRole domain.Role, userID uuid.UUID, hours int) (*domain.User, error) {
	if !actorRole.CanModerate() {
		return nil, apperrors.ErrForbidden
	}
	if hours <= 0 {
		return nil, apperrors.ErrBadRequest
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Mute(time.Now().UTC(), hours)
	updated, err := s.userRepo.Update(ctx, user)
	if err != nil {
		return nil, err
	}

	_ = s.broadcaster.Publish(domain.EventUserMuted, domain.UserMutedPayload{
		UserID: updated.ID.String(),
		Hours:  hours,
	})

	return updated, nil
}

// BanUser permanently bans a user. Moderators and admins only.
func (s *AdminService) BanUser(ctx context.Context, actorRole domain.Role, userID uuid.UUID) (*domain.User, error) {
	if !actorRole.CanModerate() {
		return nil, apperrors.ErrForbidden
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Ban(time.Now().UTC())
	updated, err := s.userRepo.Update(ctx, user)
	if err != nil {
		return nil, err
	}

	_ = s.broadcaster.Publish(domain.EventUserBanned, domain.UserBannedPayload{
		UserID: updated.ID.String(),
	})

	return updated, nil
}
