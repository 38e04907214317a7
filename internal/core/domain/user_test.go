package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	user, err := NewUser(UserRegistrationParams{
		FullName: "Laura Gómez",
		Email:    "laura@example.com",
		Password: "Segura123",
	})

	require.NoError(t, err)
	assert.Equal(t, RoleUser, user.Role)
	assert.False(t, user.Banned)
	assert.Nil(t, user.MutedUntil)
	assert.NotEqual(t, "Segura123", user.HashedPassword)
	assert.True(t, user.CheckPassword("Segura123"))
	assert.False(t, user.CheckPassword("Incorrecta1"))
}

func TestNewUser_Validation(t *testing.T) {
	tests := []struct {
		name   string
		params UserRegistrationParams
		field  string
	}{
		{
			name:   "missing full name",
			params: UserRegistrationParams{Email: "a@example.com", Password: "Segura123"},
			field:  "fullName",
		},
		{
			name:   "missing email",
			params: UserRegistrationParams{FullName: "Ana", Password: "Segura123"},
			field:  "email",
		},
		{
			name:   "malformed email",
			params: UserRegistrationParams{FullName: "Ana", Email: "not-an-email", Password: "Segura123"},
			field:  "email",
		},
		{
			name:   "short password",
			params: UserRegistrationParams{FullName: "Ana", Email: "a@example.com", Password: "Ab1"},
			field:  "password",
		},
		{
			name:   "password without uppercase",
			params: UserRegistrationParams{FullName: "Ana", Email: "a@example.com", Password: "segura123"},
			field:  "password",
		},
		{
			name:   "password without number",
			params: UserRegistrationParams{FullName: "Ana", Email: "a@example.com", Password: "SeguraSegura"},
			field:  "password",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewUser(tt.params)
			require.Error(t, err)
		})
	}
}

func TestUser_MuteAndBan(t *testing.T) {
	user := &User{}
	now := time.Now().UTC()

	assert.False(t, user.IsMuted(now))
	assert.Equal(t, 0, user.MuteHoursRemaining(now))

	user.Mute(now, 24)
	assert.True(t, user.IsMuted(now))
	assert.Equal(t, 24, user.MuteHoursRemaining(now))
	assert.False(t, user.IsMuted(now.Add(25*time.Hour)), "mute expires")

	// Partial hours round up.
	assert.Equal(t, 24, user.MuteHoursRemaining(now.Add(30*time.Minute)))

	user.Ban(now)
	assert.True(t, user.Banned)
	require.NotNil(t, user.UpdatedAt)
}

func TestRolePermissions(t *testing.T) {
	assert.True(t, RoleModerator.CanModerate())
	assert.True(t, RoleAdmin.CanModerate())
	assert.False(t, RoleUser.CanModerate())
	assert.False(t, RoleSupportAgent.CanModerate())

	assert.True(t, RoleSupportAgent.CanManagePlaces())
	assert.True(t, RoleAdmin.CanManagePlaces())
	assert.False(t, RoleUser.CanManagePlaces())
	assert.False(t, RoleModerator.CanManagePlaces())
}
