package account

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clinic/clinic/internal/platform/apierr"
	"github.com/clinic/clinic/internal/platform/auth"
)

// TokenIssuer signs bearer tokens for an account.
type TokenIssuer interface {
	Issue(accountID uuid.UUID, role string) (string, time.Time, error)
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) bool
	CompareDummy(password string) bool
}

type Service struct {
	accounts AccountRepository
	hasher   PasswordHasher
	tokens   TokenIssuer
}

func NewService(accounts AccountRepository, hasher PasswordHasher, tokens TokenIssuer) *Service {
	return &Service{accounts: accounts, hasher: hasher, tokens: tokens}
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" || req.Password == "" ||
		strings.TrimSpace(req.Phone) == "" || req.Role == "" {
		return nil, apierr.Validation("All required fields must be provided")
	}
	if !auth.IsRole(req.Role) {
		return nil, apierr.Validation("Invalid role", "role must be one of patient, doctor, finance")
	}

	exists, err := s.accounts.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apierr.Conflict("User already exists")
	}
	if len(req.Password) < MinPasswordLength {
		return nil, apierr.Validation("Password must be at least 6 characters long")
	}

	hash, err := s.hasher.Hash(req.Password)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		return nil, apierr.Validation("Password must be at most 72 bytes long")
	}
	if err != nil {
		return nil, err
	}

	a := NewAccount(req, hash)
	if err := s.accounts.Create(ctx, a); err != nil {
		// Lost a race with a concurrent registration of the same email.
		if errors.Is(err, ErrDuplicateEmail) {
			return nil, apierr.Conflict("User already exists")
		}
		return nil, apierr.FromStore(err)
	}
	return s.issue(a)
}

// Login verifies credentials. Unknown emails and wrong passwords produce the
// same error after the same amount of hashing work.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*AuthResult, error) {
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return nil, apierr.Validation("Email and password are required")
	}

	a, err := s.accounts.GetByEmail(ctx, NormalizeEmail(req.Email))
	if errors.Is(err, ErrNotFound) {
		s.hasher.CompareDummy(req.Password)
		return nil, apierr.Unauthorized("Invalid credentials")
	}
	if err != nil {
		return nil, err
	}
	if !s.hasher.Compare(a.PasswordHash, req.Password) {
		return nil, apierr.Unauthorized("Invalid credentials")
	}
	return s.issue(a)
}

func (s *Service) issue(a *Account) (*AuthResult, error) {
	token, exp, err := s.tokens.Issue(a.ID, a.Role)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, ExpiresAt: exp, User: a.ToProfile()}, nil
}

// List returns account profiles sorted by name, optionally for one role.
func (s *Service) List(ctx context.Context, role string) ([]Profile, error) {
	if role != "" && !auth.IsRole(role) {
		return nil, apierr.Validation("Invalid userType", "userType must be one of patient, doctor, finance")
	}
	accounts, err := s.accounts.List(ctx, role)
	if err != nil {
		return nil, err
	}
	out := make([]Profile, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, a.ToProfile())
	}
	return out, nil
}

// Get returns a single account.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Account, error) {
	a, err := s.accounts.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, apierr.NotFound("User not found")
	}
	return a, err
}
