package dto

import (
	"time"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// CreateUserRequest is the POST /api/users payload.
type CreateUserRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	Name      string `json:"name"`
	Role      string `json:"role" validate:"required"`
	ProductID string `json:"productId"`
}

// UpdateUserRequest is the PUT /api/users/:id payload. Empty fields keep
// their current values; an empty password keeps the current credential.
type UpdateUserRequest struct {
	Email     string `json:"email" validate:"omitempty,email"`
	Password  string `json:"password" validate:"omitempty,min=8"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	ProductID string `json:"productId"`
}

// UserResponse is the wire shape of a user. The password hash stays server
// side.
type UserResponse struct {
	ID        string          `json:"id"`
	Email     string          `json:"email"`
	Name      string          `json:"name,omitempty"`
	Role      domain.UserRole `json:"role"`
	ProductID string          `json:"productId,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// ProfileRequest is the PUT /api/users/:id/profile payload.
type ProfileRequest struct {
	DisplayName string `json:"displayName"`
	Avatar      string `json:"avatar"`
}

// ProfileResponse is the wire shape of a profile.
type ProfileResponse struct {
	Email       string     `json:"email"`
	DisplayName string     `json:"displayName,omitempty"`
	Avatar      string     `json:"avatar,omitempty"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

// NewProfileResponse maps a domain profile onto the wire shape.
func NewProfileResponse(profile *domain.Profile) ProfileResponse {
	resp := ProfileResponse{
		Email:       profile.Email,
		DisplayName: profile.DisplayName,
		Avatar:      profile.Avatar,
	}
	if !profile.UpdatedAt.IsZero() {
		updatedAt := profile.UpdatedAt
		resp.UpdatedAt = &updatedAt
	}
	return resp
}

// NewUserResponse maps a domain user onto the wire shape.
func NewUserResponse(user *domain.User) UserResponse {
	resp := UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
	if user.ProductID != nil {
		resp.ProductID = *user.ProductID
	}
	return resp
}
