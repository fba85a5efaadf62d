package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

// UserService manages admin accounts. Writes to PRODUCT_ADMIN users flow
// back into the owning product's admin mirror.
type UserService struct {
	users      repository.UserRepository
	profiles   repository.ProfileRepository
	bcryptCost int
}

// UserInput describes a user create/update payload.
type UserInput struct {
	Email     string
	Password  string
	Name      string
	Role      string
	ProductID string
}

// ProfileInput describes the cosmetic display settings payload.
type ProfileInput struct {
	DisplayName string
	Avatar      string
}

// NewUserService constructs the service.
func NewUserService(users repository.UserRepository, profiles repository.ProfileRepository, bcryptCost int) *UserService {
	return &UserService{users: users, profiles: profiles, bcryptCost: bcryptCost}
}

// ListUsers returns all users.
func (s *UserService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}

// CreateUser provisions a new account and syncs the product mirror.
func (s *UserService) CreateUser(ctx context.Context, input UserInput) (*domain.User, error) {
	user, err := s.build(input, nil)
	if err != nil {
		return nil, err
	}
	if user.PasswordHash == "" {
		return nil, apperrors.NewValidationError("password required", nil)
	}
	return s.save(ctx, user)
}

// UpdateUser applies changes to an existing account and re-syncs the
// product mirror. An empty password keeps the current credential.
func (s *UserService) UpdateUser(ctx context.Context, id string, input UserInput) (*domain.User, error) {
	existing, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"id": id})
		}
		return nil, err
	}

	user, err := s.build(input, existing)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, user)
}

// DeleteUser removes an account and clears any product mirror pointing at it.
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", map[string]any{"id": id})
		}
		return err
	}
	return nil
}

// GetProfile returns the user's display settings. Users without a stored
// profile get an empty one rather than a 404; profiles are cosmetic.
func (s *UserService) GetProfile(ctx context.Context, id string) (*domain.Profile, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"id": id})
		}
		return nil, err
	}

	profile, err := s.profiles.GetByEmail(ctx, user.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &domain.Profile{Email: user.Email}, nil
		}
		return nil, err
	}
	return profile, nil
}

// SaveProfile upserts the user's display settings.
func (s *UserService) SaveProfile(ctx context.Context, id string, input ProfileInput) (*domain.Profile, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"id": id})
		}
		return nil, err
	}

	profile := &domain.Profile{
		Email:       user.Email,
		DisplayName: strings.TrimSpace(input.DisplayName),
		Avatar:      strings.TrimSpace(input.Avatar),
	}
	if err := s.profiles.Upsert(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *UserService) save(ctx context.Context, user *domain.User) (*domain.User, error) {
	mirrored, err := s.users.SaveWithMirror(ctx, user)
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, apperrors.NewDuplicate("email already in use", map[string]any{"email": user.Email})
		}
		return nil, err
	}
	if !mirrored {
		return nil, apperrors.NewPartialSync("user saved but product mirror missing", map[string]any{
			"userId":    user.ID,
			"productId": derefString(user.ProductID),
		})
	}
	return user, nil
}

func (s *UserService) build(input UserInput, existing *domain.User) (*domain.User, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	if email == "" && existing != nil {
		email = existing.Email
	}
	if email == "" {
		return nil, apperrors.NewValidationError("email required", nil)
	}

	roleRaw := strings.TrimSpace(input.Role)
	if roleRaw == "" && existing != nil {
		roleRaw = string(existing.Role)
	}
	role, err := domain.ParseUserRole(roleRaw)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error(), nil)
	}

	var productID *string
	if trimmed := strings.TrimSpace(input.ProductID); trimmed != "" {
		productID = &trimmed
	} else if existing != nil && input.ProductID == "" {
		productID = existing.ProductID
	}
	if role == domain.RoleProductAdmin && productID == nil {
		return nil, apperrors.NewValidationError("productId required for PRODUCT_ADMIN", nil)
	}
	if role == domain.RoleSuperAdmin {
		productID = nil
	}

	hash := ""
	if password := strings.TrimSpace(input.Password); password != "" {
		hash, err = auth.HashPassword(password, s.bcryptCost)
		if err != nil {
			return nil, err
		}
	} else if existing != nil {
		hash = existing.PasswordHash
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(input.Name),
		Role:         role,
		ProductID:    productID,
	}
	if existing != nil {
		user.ID = existing.ID
		if user.Name == "" {
			user.Name = existing.Name
		}
	}
	return user, nil
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
