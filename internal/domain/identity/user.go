package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/monartisan/backend/internal/domain/shared"
	"github.com/monartisan/backend/internal/domain/shared/valueobject"
	"golang.org/x/crypto/bcrypt"
)

// UserRole is the role of a user inside an artisan account
type UserRole string

const (
	UserRoleOwner    UserRole = "OWNER"
	UserRoleEmployee UserRole = "EMPLOYEE"
)

// IsValid checks if the role is valid
func (r UserRole) IsValid() bool {
	return r == UserRoleOwner || r == UserRoleEmployee
}

// UserStatus represents the status of a user
type UserStatus string

const (
	UserStatusActive   UserStatus = "ACTIVE"
	UserStatusDisabled UserStatus = "DISABLED"
)

// Password cost for bcrypt
const bcryptCost = 12

var (
	hasLetterRegex = regexp.MustCompile(`[a-zA-Z]`)
	hasNumberRegex = regexp.MustCompile(`[0-9]`)
)

// User is a person logging into an artisan account
type User struct {
	shared.TenantAggregateRoot
	Email             string
	PasswordHash      string
	DisplayName       string
	Role              UserRole
	Status            UserStatus
	LastLoginAt       *time.Time
	PasswordChangedAt *time.Time
}

// NewUser creates a new active user
func NewUser(tenantID uuid.UUID, email, password, displayName string, role UserRole) (*User, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	if !role.IsValid() {
		return nil, shared.NewDomainError("INVALID_ROLE", "Invalid user role")
	}
	displayName = strings.TrimSpace(displayName)
	if len(displayName) > 200 {
		return nil, shared.NewDomainError("INVALID_DISPLAY_NAME", "Display name cannot exceed 200 characters")
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	now := time.Now()
	u := &User{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Email:               strings.ToLower(strings.TrimSpace(email)),
		PasswordHash:        hash,
		DisplayName:         displayName,
		Role:                role,
		Status:              UserStatusActive,
		PasswordChangedAt:   &now,
	}
	u.AddDomainEvent(NewUserCreatedEvent(u))
	return u, nil
}

// VerifyPassword verifies if the provided password matches
func (u *User) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// ChangePassword changes the password after checking the current one
func (u *User) ChangePassword(oldPassword, newPassword string) error {
	if !u.VerifyPassword(oldPassword) {
		return shared.NewDomainError("INVALID_PASSWORD", "Current password is incorrect")
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	hash, err := hashPassword(newPassword)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}
	now := time.Now()
	u.PasswordHash = hash
	u.PasswordChangedAt = &now
	u.UpdatedAt = now
	u.IncrementVersion()
	return nil
}

// CanLogin reports whether the user may authenticate
func (u *User) CanLogin() bool {
	return u.Status == UserStatusActive
}

// RecordLogin stamps a successful login
func (u *User) RecordLogin() {
	now := time.Now()
	u.LastLoginAt = &now
	u.UpdatedAt = now
}

// Disable prevents the user from logging in. The owner cannot be disabled.
func (u *User) Disable() error {
	if u.Role == UserRoleOwner {
		return shared.NewDomainError("CANNOT_DISABLE_OWNER", "The account owner cannot be disabled")
	}
	if u.Status == UserStatusDisabled {
		return shared.NewDomainError("ALREADY_DISABLED", "User is already disabled")
	}
	u.Status = UserStatusDisabled
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
	u.AddDomainEvent(NewUserDisabledEvent(u))
	return nil
}

// Enable re-activates a disabled user
func (u *User) Enable() error {
	if u.Status == UserStatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "User is already active")
	}
	u.Status = UserStatusActive
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
	return nil
}

// IsOwner returns true for the account owner
func (u *User) IsOwner() bool {
	return u.Role == UserRoleOwner
}

func validateEmail(email string) error {
	if _, err := valueobject.NormalizeEmail(email); err != nil {
		return shared.NewDomainError("INVALID_EMAIL", err.Error())
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	if len(password) > 72 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 72 characters")
	}
	if !hasLetterRegex.MatchString(password) || !hasNumberRegex.MatchString(password) {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must contain at least one letter and one number")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
