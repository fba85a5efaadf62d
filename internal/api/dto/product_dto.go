package dto

import (
	"time"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// ProductRequest is the POST /api/products and PUT /api/products/:id payload.
type ProductRequest struct {
	ID            string `json:"id" validate:"required"`
	Name          string `json:"name" validate:"required"`
	Description   string `json:"description"`
	Icon          string `json:"icon"`
	AdminEmail    string `json:"adminEmail" validate:"omitempty,email"`
	AdminPassword string `json:"adminPassword"`
}

// ProductResponse is the wire shape of a product. Credentials never leave
// the users table; only the admin email mirror is exposed.
type ProductResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Icon        string    `json:"icon,omitempty"`
	AdminEmail  string    `json:"adminEmail,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NewProductResponse maps a domain product onto the wire shape.
func NewProductResponse(product *domain.Product) ProductResponse {
	return ProductResponse{
		ID:          product.ID,
		Name:        product.Name,
		Description: product.Description,
		Icon:        product.Icon,
		AdminEmail:  product.AdminEmail,
		CreatedAt:   product.CreatedAt,
		UpdatedAt:   product.UpdatedAt,
	}
}
