package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bedic/places-backend/internal/core/domain"
	apperrors "github.com/bedic/places-backend/internal/core/errors"
	"github.com/bedic/places-backend/internal/core/mocks"
)

func validRegistration() domain.UserRegistrationParams {
	return domain.UserRegistrationParams{
		FullName: "Laura Gómez",
		Email:    "laura@example.com",
		Password: "Segura123",
	}
}

func TestAuthService_Register(t *testing.T) {
	userRepo := mocks.NewMockUserRepository()
	service := NewAuthService(userRepo)

	userRepo.On("GetByEmail", mock.Anything, "laura@example.com").Return(nil, apperrors.ErrUserNotFound)
	userRepo.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.Email == "laura@example.com" && u.Role == domain.RoleUser && u.HashedPassword != "Segura123"
	})).Return(&domain.User{Email: "laura@example.com", Role: domain.RoleUser}, nil)

	user, err := service.Register(context.Background(), validRegistration())
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, user.Role)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	userRepo := mocks.NewMockUserRepository()
	service := NewAuthService(userRepo)

	userRepo.On("GetByEmail", mock.Anything, "laura@example.com").Return(activeUser(), nil)

	_, err := service.Register(context.Background(), validRegistration())
	assert.ErrorIs(t, err, apperrors.ErrUserExists)
	userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthService_Register_WeakPassword(t *testing.T) {
	userRepo := mocks.NewMockUserRepository()
	service := NewAuthService(userRepo)

	userRepo.On("GetByEmail", mock.Anything, mock.Anything).Return(nil, apperrors.ErrUserNotFound)

	params := validRegistration()
	params.Password = "corta"

	_, err := service.Register(context.Background(), params)
	require.Error(t, err)

	var verrs *apperrors.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.Errors, "password")
}

func TestAuthService_Login(t *testing.T) {
	userRepo := mocks.NewMockUserRepository()
	service := NewAuthService(userRepo)

	user, err := domain.NewUser(validRegistration())
	require.NoError(t, err)
	userRepo.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)

	loggedIn, err := service.Login(context.Background(), user.Email, "Segura123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	userRepo := mocks.NewMockUserRepository()
	service := NewAuthService(userRepo)

	user, err := domain.NewUser(validRegistration())
	require.NoError(t, err)
	userRepo.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)

	_, err = service.Login(context.Background(), user.Email, "Incorrecta1")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestAuthService_Login_UnknownEmailDoesNotLeak(t *testing.T) {
	userRepo := mocks.NewMockUserRepository()
	service := NewAuthService(userRepo)

	userRepo.On("GetByEmail", mock.Anything, "nadie@example.com").Return(nil, apperrors.ErrUserNotFound)

	_, err := service.Login(context.Background(), "nadie@example.com", "Segura123")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestAuthService_Login_BannedUser(t *testing.T) {
	userRepo := mocks.NewMockUserRepository()
	service := NewAuthService(userRepo)

	user, err := domain.NewUser(validRegistration())
	require.NoError(t, err)
	user.Banned = true
	userRepo.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)

	_, err = service.Login(context.Background(), user.Email, "Segura123")
	assert.ErrorIs(t, err, apperrors.ErrUserBanned)
}
