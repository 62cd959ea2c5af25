package app

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/partshub/api/internal/auth"
	"github.com/partshub/api/internal/clock"
	"github.com/partshub/api/internal/users/domain"
	"github.com/partshub/api/internal/users/ports"
)

// Service bundles account use cases: self-service registration and profile
// management plus the administrator's user CRUD.
type Service struct {
	repo   ports.UserRepository
	tokens *auth.TokenManager
	clock  clock.Clock
}

func NewService(repo ports.UserRepository, tokens *auth.TokenManager, clk clock.Clock) *Service {
	return &Service{repo: repo, tokens: tokens, clock: clk}
}

// RegisterInput captures a self-service registration payload.
type RegisterInput struct {
	FirstName   string
	LastName    string
	Email       string
	Password    string
	CompanyName string
	NIP         string
	Address     *domain.Address
}

func (in RegisterInput) validate() error {
	switch {
	case in.FirstName == "":
		return domain.ErrFirstNameRequired
	case in.LastName == "":
		return domain.ErrLastNameRequired
	case in.Email == "":
		return domain.ErrEmailRequired
	case in.Password == "":
		return domain.ErrPasswordRequired
	case in.Address == nil:
		return domain.ErrAddressRequired
	}
	if in.NIP != "" && !domain.ValidateNIP(in.NIP) {
		return domain.ErrInvalidNIP
	}
	return nil
}

// Register creates a regular user account and signs them in.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*domain.User, string, error) {
	if err := input.validate(); err != nil {
		return nil, "", err
	}

	email := domain.NormalizeEmail(input.Email)
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil, "", domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, "", err
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, "", err
	}

	now := s.clock.Now()
	user := domain.User{
		ID:           uuid.NewString(),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		CompanyName:  input.CompanyName,
		NIP:          input.NIP,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		Address:      input.Address,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Issue(user.ID, string(user.Role))
	if err != nil {
		return nil, "", err
	}

	return &user, token, nil
}

// Login verifies credentials and issues a bearer token. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	if email == "" || password == "" {
		return nil, "", auth.ErrInvalidCredentials
	}

	user, err := s.repo.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, "", auth.ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := auth.CheckPassword(user.PasswordHash, password); err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Issue(user.ID, string(user.Role))
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// GetUser retrieves a single account.
func (s *Service) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateProfile applies a self-service patch to the caller's own account.
// Email, password and role cannot be changed this way.
func (s *Service) UpdateProfile(ctx context.Context, userID string, patch domain.Patch) (*domain.User, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	patch.Apply(user)
	user.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, *user); err != nil {
		return nil, err
	}

	return user, nil
}

// ListUsers returns all accounts, newest first. Admin only.
func (s *Service) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.repo.List(ctx)
}

// CreateUserInput captures an administrator's account creation payload.
type CreateUserInput struct {
	RegisterInput
	Role string
}

// CreateUser creates an account on behalf of an administrator, optionally
// with the admin role. Admin-created accounts may omit the address.
func (s *Service) CreateUser(ctx context.Context, input CreateUserInput) (*domain.User, error) {
	if input.Address == nil {
		input.Address = &domain.Address{}
	}
	if err := input.RegisterInput.validate(); err != nil {
		return nil, err
	}

	email := domain.NormalizeEmail(input.Email)
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	user := domain.User{
		ID:           uuid.NewString(),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		CompanyName:  input.CompanyName,
		NIP:          input.NIP,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.ParseRole(input.Role),
		Address:      input.Address,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return &user, nil
}

// UpdateUser applies an administrator patch, including role changes.
func (s *Service) UpdateUser(ctx context.Context, id string, patch domain.AdminPatch) (*domain.User, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	patch.Apply(user)
	user.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, *user); err != nil {
		return nil, err
	}

	return user, nil
}

// DeleteUser removes an account.
func (s *Service) DeleteUser(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
