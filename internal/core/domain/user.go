package domain

import (
	"net/mail"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/bedic/places-backend/internal/core/errors"
)

// Validation constants
const (
	MinPasswordLength = 8
	MaxPasswordLength = 128
	MaxFullNameLength = 255
	MaxEmailLength    = 255
)

// Role is the coarse authorization tag assigned at registration and carried
// in the JWT claims and in websocket group membership.
type Role string

const (
	RoleUser         Role = "user"
	RoleModerator    Role = "moderator"
	RoleAdmin        Role = "admin"
	RoleSupportAgent Role = "support_agent"
)

// ValidRole reports whether r is one of the known roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleUser, RoleModerator, RoleAdmin, RoleSupportAgent:
		return true
	}
	return false
}

// CanModerate reports whether the role may review and moderate reports.
func (r Role) CanModerate() bool {
	return r == RoleModerator || r == RoleAdmin
}

// CanManagePlaces reports whether the role may verify or delete any place.
func (r Role) CanManagePlaces() bool {
	return r == RoleSupportAgent || r == RoleAdmin
}

type User struct {
	ID             uuid.UUID
	FullName       string
	Email          string
	HashedPassword string
	Role           Role
	MutedUntil     *time.Time
	Banned         bool
	CreatedAt      time.Time
	UpdatedAt      *time.Time
}

// IsMuted reports whether the user is currently under an active mute.
func (u *User) IsMuted(now time.Time) bool {
	return u.MutedUntil != nil && now.Before(*u.MutedUntil)
}

// MuteHoursRemaining returns the whole hours left on an active mute,
// rounded up. Zero when the user is not muted.
func (u *User) MuteHoursRemaining(now time.Time) int {
	if !u.IsMuted(now) {
		return 0
	}
	remaining := u.MutedUntil.Sub(now)
	hours := int(remaining / time.Hour)
	if remaining%time.Hour > 0 {
		hours++
	}
	return hours
}

// Mute sets a mute expiring the given number of hours from now.
func (u *User) Mute(now time.Time, hours int) {
	until := now.Add(time.Duration(hours) * time.Hour)
	u.MutedUntil = &until
	u.UpdatedAt = &now
}

// Ban marks the user as banned.
func (u *User) Ban(now time.Time) {
	u.Banned = true
	u.UpdatedAt = &now
}

// UserRegistrationParams holds parameters for user registration
type UserRegistrationParams struct {
	FullName string
	Email    string
	Password string
}

// Validate validates user registration parameters
func (p *UserRegistrationParams) Validate() error {
	errs := apperrors.NewValidationErrors()

	if p.FullName == "" {
		errs.Add("fullName", "Full name is required")
	} else if len(p.FullName) > MaxFullNameLength {
		errs.Add("fullName", "Full name must be 255 characters or less")
	}

	if p.Email == "" {
		errs.Add("email", "Email is required")
	} else if len(p.Email) > MaxEmailLength {
		errs.Add("email", "Email must be 255 characters or less")
	} else if !isValidEmail(p.Email) {
		errs.Add("email", "Invalid email format")
	}

	if passwordErrs := ValidatePassword(p.Password); len(passwordErrs) > 0 {
		for _, err := range passwordErrs {
			errs.Add("password", err)
		}
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}

// NewUser creates a user with a freshly hashed password and the plain
// "user" role. Elevated roles are granted by an admin afterwards.
func NewUser(params UserRegistrationParams) (*User, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	return &User{
		ID:             uuid.New(),
		FullName:       params.FullName,
		Email:          params.Email,
		HashedPassword: string(hashed),
		Role:           RoleUser,
		CreatedAt:      time.Now().UTC(),
	}, nil
}

// CheckPassword compares a plaintext password against the stored hash.
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.HashedPassword), []byte(password)) == nil
}

// ValidatePassword returns human-readable problems with a candidate password.
func ValidatePassword(password string) []string {
	var problems []string

	if password == "" {
		return []string{"Password is required"}
	}
	if len(password) < MinPasswordLength {
		problems = append(problems, "Password must be at least 8 characters")
	}
	if len(password) > MaxPasswordLength {
		problems = append(problems, "Password must be 128 characters or less")
	}

	var hasUpper, hasLower, hasNumber bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsNumber(r):
			hasNumber = true
		}
	}

	if !hasUpper {
		problems = append(problems, "Password must contain an uppercase letter")
	}
	if !hasLower {
		problems = append(problems, "Password must contain a lowercase letter")
	}
	if !hasNumber {
		problems = append(problems, "Password must contain a number")
	}

	return problems
}

func isValidEmail(email string) bool {
	_, err := mail.ParseAddress(email)
	return err == nil
}
