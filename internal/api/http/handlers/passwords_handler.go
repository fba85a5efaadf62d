package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/service"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

// PasswordsHandler manages the audited password change flow.
type PasswordsHandler struct {
	service *service.PasswordService
}

// NewPasswordsHandler constructs handler.
func NewPasswordsHandler(passwordService *service.PasswordService) *PasswordsHandler {
	return &PasswordsHandler{service: passwordService}
}

// Update POST /api/passwords/update.
func (h *PasswordsHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdatePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return apperrors.NewValidationError(err.Error(), nil)
	}

	if err := h.service.ChangePassword(c.UserContext(), service.PasswordChangeInput{
		Email:       req.Email,
		OldPassword: req.OldPassword,
		NewPassword: req.NewPassword,
		UpdatedBy:   req.UpdatedBy,
	}); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "password updated"})
}

// Logs GET /api/passwords/logs.
func (h *PasswordsHandler) Logs(c *fiber.Ctx) error {
	logs, err := h.service.ListLogs(c.UserContext(), c.Query("email"), c.Query("productId"), c.QueryInt("limit"))
	if err != nil {
		return err
	}
	items := make([]dto.PasswordLogResponse, 0, len(logs))
	for i := range logs {
		items = append(items, dto.NewPasswordLogResponse(&logs[i]))
	}
	return c.JSON(items)
}
