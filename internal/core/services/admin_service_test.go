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

type adminServiceFixture struct {
	userRepo    *mocks.MockUserRepository
	broadcaster *mocks.MockEventBroadcaster
	service     ports.AdminService
}

func newAdminServiceFixture() *adminServiceFixture {
	f := &adminServiceFixture{
		userRepo:    mocks.NewMockUserRepository(),
		broadcaster: mocks.NewMockEventBroadcaster(),
	}
	f.service = NewAdminService(f.userRepo, f.broadcaster)
	return f
}

func TestAdminService_ListUsers_AdminOnly(t *testing.T) {
	f := newAdminServiceFixture()

	_, err := f.service.ListUsers(context.Background(), domain.RoleModerator, 20, 0)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	f.userRepo.On("List", mock.Anything, 20, 0).Return([]*domain.User{}, nil)
	_, err = f.service.ListUsers(context.Background(), domain.RoleAdmin, 20, 0)
	require.NoError(t, err)
}

func TestAdminService_ListUsers_NormalizesPagination(t *testing.T) {
	f := newAdminServiceFixture()

	f.userRepo.On("List", mock.Anything, 20, 0).Return([]*domain.User{}, nil)

	_, err := f.service.ListUsers(context.Background(), domain.RoleAdmin, 0, -5)
	require.NoError(t, err)
}

func TestAdminService_UpdateUserRole(t *testing.T) {
	f := newAdminServiceFixture()
	user := activeUser()

	f.userRepo.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	f.userRepo.On("Update", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.Role == domain.RoleModerator
	})).Return(user, nil)

	_, err := f.service.UpdateUserRole(context.Background(), domain.RoleAdmin, user.ID, domain.RoleModerator)
	require.NoError(t, err)
}

func TestAdminService_UpdateUserRole_UnknownRole(t *testing.T) {
	f := newAdminServiceFixture()

	_, err := f.service.UpdateUserRole(context.Background(), domain.RoleAdmin, uuid.New(), domain.Role("overlord"))
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
}

func TestAdminService_UpdateUserRole_Forbidden(t *testing.T) {
	f := newAdminServiceFixture()

	_, err := f.service.UpdateUserRole(context.Background(), domain.RoleModerator, uuid.New(), domain.RoleUser)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestAdminService_MuteUser(t *testing.T) {
	f := newAdminServiceFixture()
	user := activeUser()

	f.userRepo.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	f.userRepo.On("Update", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.IsMuted(time.Now().UTC())
	})).Return(user, nil)
	f.broadcaster.On("Publish", domain.EventUserMuted, mock.MatchedBy(func(payload any) bool {
		p, ok := payload.(domain.UserMutedPayload)
		return ok && p.UserID == user.ID.String() && p.Hours == 12
	})).Return(nil)

	_, err := f.service.MuteUser(context.Background(), domain.RoleModerator, user.ID, 12)
	require.NoError(t, err)
	f.broadcaster.AssertExpectations(t)
}

func TestAdminService_MuteUser_InvalidHours(t *testing.T) {
	f := newAdminServiceFixture()

	_, err := f.service.MuteUser(context.Background(), domain.RoleAdmin, uuid.New(), 0)
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
}

func TestAdminService_BanUser(t *testing.T) {
	f := newAdminServiceFixture()
	user := activeUser()

	f.userRepo.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	f.userRepo.On("Update", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.Banned
	})).Return(user, nil)
	f.broadcaster.On("Publish", domain.EventUserBanned, mock.MatchedBy(func(payload any) bool {
		p, ok := payload.(domain.UserBannedPayload)
		return ok && p.UserID == user.ID.String()
	})).Return(nil)

	_, err := f.service.BanUser(context.Background(), domain.RoleAdmin, user.ID)
	require.NoError(t, err)
	f.broadcaster.AssertExpectations(t)
}

func TestAdminService_BanUser_Forbidden(t *testing.T) {
	f := newAdminServiceFixture()

	_, err := f.service.BanUser(context.Background(), domain.RoleSupportAgent, uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	f.userRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}
