package account

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clinic/clinic/internal/platform/auth"
)

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 6

// Account is a registered user. PasswordHash never leaves the service layer.
type Account struct {
	ID             uuid.UUID
	Name           string
	Email          string
	PasswordHash   string
	Phone          string
	Role           string
	Specialization *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Profile is the client-facing projection of an Account.
type Profile struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	Role           string    `json:"role"`
	Specialization *string   `json:"specialization,omitempty"`
}

func (a *Account) ToProfile() Profile {
	return Profile{
		ID:             a.ID,
		Name:           a.Name,
		Email:          a.Email,
		Phone:          a.Phone,
		Role:           a.Role,
		Specialization: a.Specialization,
	}
}

// IsDoctor reports whether the account can be booked for visits.
func (a *Account) IsDoctor() bool {
	return a.Role == auth.RoleDoctor
}

// NormalizeEmail trims and lower-cases an email for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type RegisterRequest struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	Phone          string `json:"phone"`
	Role           string `json:"role"`
	Specialization string `json:"specialization"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult is returned by successful registration and login.
type AuthResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      Profile   `json:"user"`
}

// NewAccount builds the account to persist from a validated request.
// Specialization is kept for doctors only.
func NewAccount(req RegisterRequest, passwordHash string) *Account {
	a := &Account{
		Name:         strings.TrimSpace(req.Name),
		Email:        NormalizeEmail(req.Email),
		PasswordHash: passwordHash,
		Phone:        strings.TrimSpace(req.Phone),
		Role:         req.Role,
	}
	if a.Role == auth.RoleDoctor {
		if spec := strings.TrimSpace(req.Specialization); spec != "" {
			a.Specialization = &spec
		}
	}
	return a
}
