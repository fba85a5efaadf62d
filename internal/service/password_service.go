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

// PasswordService runs the audited credential change flow: validate the old
// password, append the audit row, commit the new hash, sync the product
// mirror. Audit row and credential commit share one transaction.
type PasswordService struct {
	users      repository.UserRepository
	products   repository.ProductRepository
	logs       repository.PasswordLogRepository
	dispatcher events.Dispatcher
	bcryptCost int
}

// PasswordChangeInput describes a password update request.
type PasswordChangeInput struct {
	Email       string
	OldPassword string
	NewPassword string
	UpdatedBy   string
}

// NewPasswordService constructs the service.
func NewPasswordService(users repository.UserRepository, products repository.ProductRepository,
	logs repository.PasswordLogRepository, dispatcher events.Dispatcher, bcryptCost int) *PasswordService {
	return &PasswordService{
		users:      users,
		products:   products,
		logs:       logs,
		dispatcher: dispatcher,
		bcryptCost: bcryptCost,
	}
}

// ChangePassword updates a user's credential with a full audit trail.
func (s *PasswordService) ChangePassword(ctx context.Context, input PasswordChangeInput) error {
	if strings.TrimSpace(input.NewPassword) == "" {
		return apperrors.NewValidationError("newPassword required", nil)
	}

	user, err := s.users.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", map[string]any{"email": input.Email})
		}
		return err
	}

	if err := auth.ComparePassword(user.PasswordHash, input.OldPassword); err != nil {
		return apperrors.NewInvalidCredentials()
	}

	newHash, err := auth.HashPassword(input.NewPassword, s.bcryptCost)
	if err != nil {
		return err
	}

	log := &domain.PasswordLog{
		Email:           user.Email,
		OldPasswordHash: user.PasswordHash,
		NewPasswordHash: newHash,
		UpdatedBy:       strings.TrimSpace(input.UpdatedBy),
	}
	if user.ProductID != nil {
		log.ProductID = *user.ProductID
		if product, err := s.products.GetByID(ctx, *user.ProductID); err == nil {
			log.ProductName = product.Name
		}
	}

	mirrored, err := s.users.ChangePasswordWithAudit(ctx, user, newHash, log)
	if err != nil {
		return err
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Timestamp: time.Now(),
			Type:      events.EventPasswordChanged,
			Payload: events.PasswordChangedPayload{
				Email:     user.Email,
				UpdatedBy: log.UpdatedBy,
				ProductID: log.ProductID,
			},
		})
	}

	if !mirrored {
		// Credential and audit row are committed; only the product mirror is
		// stale. Surfaced distinctly so the client can trigger reconciliation.
		return apperrors.NewPartialSync("password updated but product mirror missing", map[string]any{
			"email":     user.Email,
			"productId": log.ProductID,
		})
	}
	return nil
}

// ListLogs returns audit rows newest first.
func (s *PasswordService) ListLogs(ctx context.Context, email, productID string, limit int) ([]domain.PasswordLog, error) {
	filter := repository.PasswordLogFilter{Limit: limit}
	if trimmed := strings.TrimSpace(email); trimmed != "" {
		filter.Email = &trimmed
	}
	if trimmed := strings.TrimSpace(productID); trimmed != "" {
		filter.ProductID = &trimmed
	}
	return s.logs.List(ctx, filter)
}
