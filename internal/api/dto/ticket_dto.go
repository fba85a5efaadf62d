package dto

import (
	"time"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// CreateTicketRequest is the POST /api/tickets payload.
type CreateTicketRequest struct {
	Title           string `json:"title" validate:"required"`
	Description     string `json:"description" validate:"required"`
	Product         string `json:"product" validate:"required"`
	Priority        string `json:"priority"`
	Status          string `json:"status"`
	CustomerName    string `json:"customerName" validate:"required"`
	CustomerContact string `json:"customerContact"`
	Source          string `json:"source"`
	StartDate       string `json:"startDate"`
	StartTime       string `json:"startTime"`
	EndDate         string `json:"endDate"`
	EndTime         string `json:"endTime"`
}

// UpdateTicketRequest is the PUT /api/tickets/:id payload; nil fields are
// left untouched.
type UpdateTicketRequest struct {
	Title           *string `json:"title"`
	Description     *string `json:"description"`
	Product         *string `json:"product"`
	Priority        *string `json:"priority"`
	Status          *string `json:"status"`
	CustomerName    *string `json:"customerName"`
	CustomerContact *string `json:"customerContact"`
	Source          *string `json:"source"`
	StartDate       *string `json:"startDate"`
	StartTime       *string `json:"startTime"`
	EndDate         *string `json:"endDate"`
	EndTime         *string `json:"endTime"`
}

// SyncTicketRequest is one row of the POST /api/tickets/sync payload.
type SyncTicketRequest struct {
	Code string `json:"code" validate:"required"`
	CreateTicketRequest
}

// SyncTicketsRequest is the POST /api/tickets/sync payload.
type SyncTicketsRequest struct {
	Tickets []SyncTicketRequest `json:"tickets" validate:"required,dive"`
}

// SyncTicketsResponse summarizes a bulk import.
type SyncTicketsResponse struct {
	Created int      `json:"created"`
	Updated int      `json:"updated"`
	Failed  []string `json:"failed,omitempty"`
}

// TicketResponse is the wire shape of a ticket.
type TicketResponse struct {
	ID              string                `json:"id"`
	Code            string                `json:"code"`
	Title           string                `json:"title"`
	Description     string                `json:"description"`
	Product         string                `json:"product"`
	Priority        domain.TicketPriority `json:"priority"`
	Status          domain.TicketStatus   `json:"status"`
	CustomerName    string                `json:"customerName"`
	CustomerContact string                `json:"customerContact,omitempty"`
	Source          string                `json:"source,omitempty"`
	StartDate       string                `json:"startDate,omitempty"`
	StartTime       string                `json:"startTime,omitempty"`
	EndDate         string                `json:"endDate,omitempty"`
	EndTime         string                `json:"endTime,omitempty"`
	CreatedAt       time.Time             `json:"createdAt"`
	UpdatedAt       time.Time             `json:"updatedAt"`
}

// NewTicketResponse maps a domain ticket onto the wire shape.
func NewTicketResponse(ticket *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:              ticket.ID,
		Code:            ticket.Code,
		Title:           ticket.Title,
		Description:     ticket.Description,
		Product:         ticket.ProductID,
		Priority:        ticket.Priority,
		Status:          ticket.Status,
		CustomerName:    ticket.CustomerName,
		CustomerContact: ticket.CustomerContact,
		Source:          ticket.Source,
		StartDate:       ticket.StartDate,
		StartTime:       ticket.StartTime,
		EndDate:         ticket.EndDate,
		EndTime:         ticket.EndTime,
		CreatedAt:       ticket.CreatedAt,
		UpdatedAt:       ticket.UpdatedAt,
	}
}
