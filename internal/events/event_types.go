package events

import (
	"time"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated   EventType = "ticket_created"
	EventTicketUpdated   EventType = "ticket_updated"
	EventTicketOverdue   EventType = "ticket_overdue"
	EventProductSynced   EventType = "product_synced"
	EventPasswordChanged EventType = "password_changed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Actor     string      `json:"actor,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	TicketID  string                `json:"ticket_id"`
	Code      string                `json:"code"`
	ProductID string                `json:"product_id"`
	Priority  domain.TicketPriority `json:"priority"`
	Title     string                `json:"title"`
}

// TicketUpdatedPayload payload.
type TicketUpdatedPayload struct {
	TicketID  string              `json:"ticket_id"`
	Code      string              `json:"code"`
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// TicketOverduePayload payload. Emitted exactly once per overdue
// transition; the sweep reports only rows it actually flipped.
type TicketOverduePayload struct {
	TicketID  string `json:"ticket_id"`
	Code      string `json:"code"`
	ProductID string `json:"product_id"`
}

// ProductSyncedPayload payload.
type ProductSyncedPayload struct {
	ProductID  string `json:"product_id"`
	AdminEmail string `json:"admin_email,omitempty"`
}

// PasswordChangedPayload payload. Carries no credential material.
type PasswordChangedPayload struct {
	Email     string `json:"email"`
	UpdatedBy string `json:"updated_by"`
	ProductID string `json:"product_id,omitempty"`
}
