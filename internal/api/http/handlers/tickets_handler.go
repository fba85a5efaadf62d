package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/service"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// List GET /api/tickets.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	tickets, err := h.service.ListTickets(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, dto.NewTicketResponse(&tickets[i]))
	}
	return c.JSON(items)
}

// Create POST /api/tickets.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return apperrors.NewValidationError(err.Error(), nil)
	}

	ticket, err := h.service.CreateTicket(c.UserContext(), createInput(req))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewTicketResponse(ticket))
}

// Update PUT /api/tickets/:id. The key may be a ticket id or its code.
func (h *TicketsHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	patch := service.TicketUpdateInput{
		Title:           req.Title,
		Description:     req.Description,
		ProductID:       req.Product,
		Priority:        req.Priority,
		Status:          req.Status,
		CustomerName:    req.CustomerName,
		CustomerContact: req.CustomerContact,
		Source:          req.Source,
		StartDate:       req.StartDate,
		StartTime:       req.StartTime,
		EndDate:         req.EndDate,
		EndTime:         req.EndTime,
	}
	ticket, err := h.service.UpdateTicket(c.UserContext(), c.Params("id"), patch)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewTicketResponse(ticket))
}

// Delete DELETE /api/tickets/:id.
func (h *TicketsHandler) Delete(c *fiber.Ctx) error {
	if err := h.service.DeleteTicket(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "ticket deleted"})
}

// Sync POST /api/tickets/sync.
func (h *TicketsHandler) Sync(c *fiber.Ctx) error {
	var req dto.SyncTicketsRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if len(req.Tickets) == 0 {
		return apperrors.NewValidationError("tickets required", nil)
	}

	inputs := make([]service.TicketSyncInput, 0, len(req.Tickets))
	for _, row := range req.Tickets {
		inputs = append(inputs, service.TicketSyncInput{
			Code:              row.Code,
			TicketCreateInput: createInput(row.CreateTicketRequest),
		})
	}
	result, err := h.service.SyncTickets(c.UserContext(), inputs)
	if err != nil {
		return err
	}
	return c.JSON(dto.SyncTicketsResponse{
		Created: result.Created,
		Updated: result.Updated,
		Failed:  result.Failed,
	})
}

// Seed GET /api/tickets/seed.
func (h *TicketsHandler) Seed(c *fiber.Ctx) error {
	seeded, err := h.service.SeedDemoTickets(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"seeded": seeded})
}

func createInput(req dto.CreateTicketRequest) service.TicketCreateInput {
	return service.TicketCreateInput{
		Title:           req.Title,
		Description:     req.Description,
		ProductID:       req.Product,
		Priority:        req.Priority,
		Status:          req.Status,
		CustomerName:    req.CustomerName,
		CustomerContact: req.CustomerContact,
		Source:          req.Source,
		StartDate:       req.StartDate,
		StartTime:       req.StartTime,
		EndDate:         req.EndDate,
		EndTime:         req.EndTime,
	}
}
