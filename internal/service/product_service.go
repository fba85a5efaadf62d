package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

// ProductService manages products and keeps their admin users in sync.
type ProductService struct {
	products   repository.ProductRepository
	dispatcher events.Dispatcher
	bcryptCost int
}

// ProductInput describes a product create/update payload.
type ProductInput struct {
	ID            string
	Name          string
	Description   string
	Icon          string
	AdminEmail    string
	AdminPassword string
}

// NewProductService constructs the service.
func NewProductService(products repository.ProductRepository, dispatcher events.Dispatcher, bcryptCost int) *ProductService {
	return &ProductService{products: products, dispatcher: dispatcher, bcryptCost: bcryptCost}
}

// ListProducts returns all products.
func (s *ProductService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.products.List(ctx)
}

// CreateProduct persists a new product and, when an admin email is given,
// its PRODUCT_ADMIN user in the same transaction.
func (s *ProductService) CreateProduct(ctx context.Context, input ProductInput) (*domain.Product, error) {
	product, admin, err := s.build(input, true)
	if err != nil {
		return nil, err
	}

	exists, err := s.products.Exists(ctx, product.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.NewDuplicate("product id already exists", map[string]any{"id": product.ID})
	}

	if err := s.products.SaveWithAdmin(ctx, product, admin); err != nil {
		return nil, mapAdminSaveErr(err, input.AdminEmail)
	}

	s.publishSynced(ctx, product)
	return product, nil
}

// UpdateProduct updates an existing product, re-syncing the admin user.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, input ProductInput) (*domain.Product, error) {
	existing, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("product", map[string]any{"id": id})
		}
		return nil, err
	}

	input.ID = existing.ID
	product, admin, err := s.build(input, false)
	if err != nil {
		return nil, err
	}

	if err := s.products.SaveWithAdmin(ctx, product, admin); err != nil {
		return nil, mapAdminSaveErr(err, input.AdminEmail)
	}

	s.publishSynced(ctx, product)
	return product, nil
}

// DeleteProduct removes a product and cascades to its admin user. Products
// without an admin email skip the user lookup entirely.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	found, err := s.products.DeleteCascade(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return apperrors.NewNotFound("product", map[string]any{"id": id})
	}
	return nil
}

func mapAdminSaveErr(err error, adminEmail string) error {
	if repository.IsUniqueViolation(err) {
		return apperrors.NewDuplicate("admin email already in use", map[string]any{"email": adminEmail})
	}
	if errors.Is(err, repository.ErrAdminPasswordRequired) {
		return apperrors.NewValidationError("adminPassword required for a new admin user",
			map[string]any{"adminEmail": adminEmail})
	}
	return err
}

func (s *ProductService) build(input ProductInput, creating bool) (*domain.Product, *domain.User, error) {
	id := strings.TrimSpace(input.ID)
	name := strings.TrimSpace(input.Name)
	missing := map[string]any{}
	if id == "" {
		missing["id"] = "required"
	}
	if name == "" {
		missing["name"] = "required"
	}
	if len(missing) > 0 {
		return nil, nil, apperrors.NewValidationError("missing required fields", missing)
	}

	adminEmail := strings.TrimSpace(strings.ToLower(input.AdminEmail))
	if creating && adminEmail != "" && strings.TrimSpace(input.AdminPassword) == "" {
		return nil, nil, apperrors.NewValidationError("adminPassword required when adminEmail is set",
			map[string]any{"adminEmail": adminEmail})
	}

	product := &domain.Product{
		ID:          id,
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		Icon:        strings.TrimSpace(input.Icon),
		AdminEmail:  adminEmail,
	}

	var admin *domain.User
	if adminEmail != "" {
		hash := ""
		if password := strings.TrimSpace(input.AdminPassword); password != "" {
			hashed, err := auth.HashPassword(password, s.bcryptCost)
			if err != nil {
				return nil, nil, err
			}
			hash = hashed
		}
		productID := product.ID
		admin = &domain.User{
			Email:        adminEmail,
			PasswordHash: hash,
			Name:         name + " Admin",
			Role:         domain.RoleProductAdmin,
			ProductID:    &productID,
		}
	}

	return product, admin, nil
}

func (s *ProductService) publishSynced(ctx context.Context, product *domain.Product) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Timestamp: time.Now(),
		Type:      events.EventProductSynced,
		Payload: events.ProductSyncedPayload{
			ProductID:  product.ID,
			AdminEmail: product.AdminEmail,
		},
	})
}
