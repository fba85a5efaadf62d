package dto

import (
	"time"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// UpdatePasswordRequest is the POST /api/passwords/update payload.
type UpdatePasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8"`
	UpdatedBy   string `json:"updatedBy"`
}

// PasswordLogResponse is the wire shape of an audit row. Hashes are not
// exposed; the row proves the change happened and who made it.
type PasswordLogResponse struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	UpdatedBy   string    `json:"updatedBy,omitempty"`
	ProductID   string    `json:"productId,omitempty"`
	ProductName string    `json:"productName,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewPasswordLogResponse maps an audit row onto the wire shape.
func NewPasswordLogResponse(log *domain.PasswordLog) PasswordLogResponse {
	return PasswordLogResponse{
		ID:          log.ID,
		Email:       log.Email,
		UpdatedBy:   log.UpdatedBy,
		ProductID:   log.ProductID,
		ProductName: log.ProductName,
		Timestamp:   log.CreatedAt,
	}
}
