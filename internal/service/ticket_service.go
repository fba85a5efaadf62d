package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/observability"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

const (
	sweepLockKey = "helpdesk:sweep:overdue"
	codeFormat   = "%s-%04d"
	// createRetries bounds how often a duplicate code is retried with a
	// fresh sequence number.
	createRetries = 3
)

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets    repository.TicketRepository
	products   repository.ProductRepository
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	redis      *redis.Client
	lockTTL    time.Duration
	now        func() time.Time
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo  repository.TicketRepository
	ProductRepo repository.ProductRepository
	Dispatcher  events.Dispatcher
	Metrics     *observability.Metrics
	Redis       *redis.Client
	LockTTL     time.Duration
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title           string
	Description     string
	ProductID       string
	Priority        string
	Status          string
	CustomerName    string
	CustomerContact string
	Source          string
	StartDate       string
	StartTime       string
	EndDate         string
	EndTime         string
}

// TicketUpdateInput describes a partial update; nil fields are untouched.
type TicketUpdateInput struct {
	Title           *string
	Description     *string
	ProductID       *string
	Priority        *string
	Status          *string
	CustomerName    *string
	CustomerContact *string
	Source          *string
	StartDate       *string
	StartTime       *string
	EndDate         *string
	EndTime         *string
}

// TicketSyncInput is one client-captured ticket row for bulk import.
type TicketSyncInput struct {
	Code string
	TicketCreateInput
}

// SyncResult summarizes a bulk import.
type SyncResult struct {
	Created int
	Updated int
	Failed  []string
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	lockTTL := deps.LockTTL
	if lockTTL <= 0 {
		lockTTL = 30 * time.Second
	}
	return &TicketService{
		tickets:    deps.TicketRepo,
		products:   deps.ProductRepo,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		redis:      deps.Redis,
		lockTTL:    lockTTL,
		now:        time.Now,
	}
}

// CreateTicket validates input, allocates a code and persists the ticket.
func (s *TicketService) CreateTicket(ctx context.Context, input TicketCreateInput) (*domain.Ticket, error) {
	ticket, err := s.buildTicket(input)
	if err != nil {
		return nil, err
	}

	prefix := s.codePrefix(ctx, ticket.ProductID)
	for attempt := 0; attempt < createRetries; attempt++ {
		seq, err := s.tickets.NextSequence(ctx, ticket.ProductID)
		if err != nil {
			return nil, err
		}
		ticket.Code = fmt.Sprintf(codeFormat, prefix, seq)

		err = s.tickets.Create(ctx, ticket)
		if err == nil {
			s.publishEvent(ctx, events.Event{
				Type: events.EventTicketCreated,
				Payload: events.TicketCreatedPayload{
					TicketID:  ticket.ID,
					Code:      ticket.Code,
					ProductID: ticket.ProductID,
					Priority:  ticket.Priority,
					Title:     ticket.Title,
				},
			})
			return ticket, nil
		}
		if !repository.IsUniqueViolation(err) {
			return nil, err
		}
		// Counter and tickets can drift after a bulk import; take the next
		// sequence value and try again.
	}
	return nil, apperrors.NewDuplicate("ticket code collision", map[string]any{"code": ticket.Code})
}

// ListTickets returns all tickets newest first, sweeping expired ones to
// OVERDUE beforehand.
func (s *TicketService) ListTickets(ctx context.Context) ([]domain.Ticket, error) {
	if _, err := s.SweepOverdue(ctx); err != nil {
		return nil, err
	}
	return s.tickets.List(ctx)
}

// SweepOverdue flips every expired non-terminal ticket to OVERDUE and
// returns how many rows this caller flipped. The per-row status guard in the
// repository makes each transition exactly-once even when sweeps race; the
// Redis lock only spares concurrent readers the duplicate scan.
func (s *TicketService) SweepOverdue(ctx context.Context) (int, error) {
	if !s.acquireSweepLock(ctx) {
		return 0, nil
	}
	defer s.releaseSweepLock(ctx)

	candidates, err := s.tickets.ListSweepCandidates(ctx)
	if err != nil {
		return 0, err
	}

	now := s.now()
	flipped := 0
	for i := range candidates {
		ticket := &candidates[i]
		if !ticket.OverdueAt(now) {
			continue
		}
		claimed, err := s.tickets.ClaimOverdue(ctx, ticket.ID, ticket.EndDate, ticket.EndTime)
		if err != nil {
			return flipped, err
		}
		if !claimed {
			continue
		}
		flipped++
		s.publishEvent(ctx, events.Event{
			Type: events.EventTicketOverdue,
			Payload: events.TicketOverduePayload{
				TicketID:  ticket.ID,
				Code:      ticket.Code,
				ProductID: ticket.ProductID,
			},
		})
	}

	s.metrics.RecordSweepFlips(flipped)
	return flipped, nil
}

// UpdateTicket applies a partial update, resolving the key by id or code.
func (s *TicketService) UpdateTicket(ctx context.Context, idOrCode string, patch TicketUpdateInput) (*domain.Ticket, error) {
	ticket, err := s.resolve(ctx, idOrCode)
	if err != nil {
		return nil, err
	}

	oldStatus := ticket.Status
	if err := applyPatch(ticket, patch); err != nil {
		return nil, err
	}

	if err := s.tickets.Update(ctx, ticket); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"key": idOrCode})
		}
		return nil, err
	}

	if ticket.Status != oldStatus {
		s.publishEvent(ctx, events.Event{
			Type: events.EventTicketUpdated,
			Payload: events.TicketUpdatedPayload{
				TicketID:  ticket.ID,
				Code:      ticket.Code,
				OldStatus: oldStatus,
				NewStatus: ticket.Status,
			},
		})
	}
	return ticket, nil
}

// DeleteTicket removes a ticket by id or code.
func (s *TicketService) DeleteTicket(ctx context.Context, idOrCode string) error {
	ticket, err := s.resolve(ctx, idOrCode)
	if err != nil {
		return err
	}
	if err := s.tickets.Delete(ctx, ticket.ID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("ticket", map[string]any{"key": idOrCode})
		}
		return err
	}
	return nil
}

// SyncTickets bulk-upserts client-captured tickets by code.
func (s *TicketService) SyncTickets(ctx context.Context, inputs []TicketSyncInput) (*SyncResult, error) {
	result := &SyncResult{}
	for _, input := range inputs {
		code := strings.TrimSpace(input.Code)
		if code == "" {
			result.Failed = append(result.Failed, "missing code")
			continue
		}
		ticket, err := s.buildTicket(input.TicketCreateInput)
		if err != nil {
			result.Failed = append(result.Failed, fmt.Sprintf("%s: %v", code, err))
			continue
		}
		ticket.Code = code
		created, err := s.tickets.UpsertByCode(ctx, ticket)
		if err != nil {
			result.Failed = append(result.Failed, fmt.Sprintf("%s: %v", code, err))
			continue
		}
		if created {
			result.Created++
		} else {
			result.Updated++
		}
	}
	return result, nil
}

// SeedDemoTickets inserts sample tickets once; it is a no-op when any
// tickets already exist.
func (s *TicketService) SeedDemoTickets(ctx context.Context) (int, error) {
	count, err := s.tickets.CountAll(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	seeded := 0
	for _, input := range demoTickets(s.now()) {
		if _, err := s.CreateTicket(ctx, input); err != nil {
			return seeded, err
		}
		seeded++
	}
	return seeded, nil
}

func (s *TicketService) buildTicket(input TicketCreateInput) (*domain.Ticket, error) {
	missing := map[string]any{}
	if strings.TrimSpace(input.Title) == "" {
		missing["title"] = "required"
	}
	if strings.TrimSpace(input.Description) == "" {
		missing["description"] = "required"
	}
	if strings.TrimSpace(input.ProductID) == "" {
		missing["product"] = "required"
	}
	if strings.TrimSpace(input.CustomerName) == "" {
		missing["customerName"] = "required"
	}
	if len(missing) > 0 {
		return nil, apperrors.NewValidationError("missing required fields", missing)
	}

	priority := domain.TicketPriorityMedium
	if input.Priority != "" {
		parsed, err := domain.ParseTicketPriority(input.Priority)
		if err != nil {
			return nil, apperrors.NewValidationError(err.Error(), nil)
		}
		priority = parsed
	}

	status := domain.TicketStatusNew
	if input.Status != "" {
		parsed, err := domain.ParseTicketStatus(input.Status)
		if err != nil {
			return nil, apperrors.NewValidationError(err.Error(), nil)
		}
		status = parsed
	}

	return &domain.Ticket{
		Title:           strings.TrimSpace(input.Title),
		Description:     strings.TrimSpace(input.Description),
		ProductID:       strings.TrimSpace(input.ProductID),
		Priority:        priority,
		Status:          status,
		CustomerName:    strings.TrimSpace(input.CustomerName),
		CustomerContact: strings.TrimSpace(input.CustomerContact),
		Source:          strings.TrimSpace(input.Source),
		StartDate:       strings.TrimSpace(input.StartDate),
		StartTime:       strings.TrimSpace(input.StartTime),
		EndDate:         strings.TrimSpace(input.EndDate),
		EndTime:         strings.TrimSpace(input.EndTime),
	}, nil
}

// codePrefix derives the ticket code prefix from the product name, falling
// back to matching the raw product id when the product row is absent (the
// product reference is by value, not an enforced FK).
func (s *TicketService) codePrefix(ctx context.Context, productID string) string {
	name := productID
	if product, err := s.products.GetByID(ctx, productID); err == nil {
		name = product.Name
	}
	return prefixForName(name)
}

func prefixForName(name string) string {
	lowered := strings.ToLower(name)
	switch {
	case strings.Contains(lowered, "joki"):
		return "JKI"
	case strings.Contains(lowered, "orbit"):
		return "ORB"
	case strings.Contains(lowered, "catatmak"):
		return "CMK"
	}
	return "TKT"
}

// resolve finds a ticket by primary id when the key is UUID-shaped,
// otherwise by code.
func (s *TicketService) resolve(ctx context.Context, idOrCode string) (*domain.Ticket, error) {
	var (
		ticket *domain.Ticket
		err    error
	)
	if _, parseErr := uuid.Parse(idOrCode); parseErr == nil {
		ticket, err = s.tickets.GetByID(ctx, idOrCode)
	} else {
		ticket, err = s.tickets.GetByCode(ctx, idOrCode)
	}
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"key": idOrCode})
		}
		return nil, err
	}
	return ticket, nil
}

func applyPatch(ticket *domain.Ticket, patch TicketUpdateInput) error {
	if patch.Title != nil {
		ticket.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		ticket.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.ProductID != nil {
		ticket.ProductID = strings.TrimSpace(*patch.ProductID)
	}
	if patch.Priority != nil {
		parsed, err := domain.ParseTicketPriority(*patch.Priority)
		if err != nil {
			return apperrors.NewValidationError(err.Error(), nil)
		}
		ticket.Priority = parsed
	}
	if patch.Status != nil {
		parsed, err := domain.ParseTicketStatus(*patch.Status)
		if err != nil {
			return apperrors.NewValidationError(err.Error(), nil)
		}
		ticket.Status = parsed
	}
	if patch.CustomerName != nil {
		ticket.CustomerName = strings.TrimSpace(*patch.CustomerName)
	}
	if patch.CustomerContact != nil {
		ticket.CustomerContact = strings.TrimSpace(*patch.CustomerContact)
	}
	if patch.Source != nil {
		ticket.Source = strings.TrimSpace(*patch.Source)
	}
	if patch.StartDate != nil {
		ticket.StartDate = strings.TrimSpace(*patch.StartDate)
	}
	if patch.StartTime != nil {
		ticket.StartTime = strings.TrimSpace(*patch.StartTime)
	}
	if patch.EndDate != nil {
		ticket.EndDate = strings.TrimSpace(*patch.EndDate)
	}
	if patch.EndTime != nil {
		ticket.EndTime = strings.TrimSpace(*patch.EndTime)
	}
	return nil
}

func (s *TicketService) acquireSweepLock(ctx context.Context) bool {
	if s.redis == nil {
		return true
	}
	acquired, err := s.redis.SetNX(ctx, sweepLockKey, 1, s.lockTTL).Result()
	if err != nil {
		// Redis being down never blocks the sweep; the row guard keeps it
		// correct.
		return true
	}
	return acquired
}

func (s *TicketService) releaseSweepLock(ctx context.Context) {
	if s.redis == nil {
		return
	}
	_ = s.redis.Del(ctx, sweepLockKey).Err()
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = s.now()
	_ = s.dispatcher.Publish(ctx, event)
}

func demoTickets(now time.Time) []TicketCreateInput {
	today := now.Format("2006-01-02")
	nextWeek := now.AddDate(0, 0, 7).Format("2006-01-02")
	return []TicketCreateInput{
		{
			Title:        "Payment not confirmed",
			Description:  "Customer paid via transfer but the order still shows unpaid.",
			ProductID:    "joki",
			Priority:     "high",
			CustomerName: "Rina S",
			Source:       "whatsapp",
			StartDate:    today,
			StartTime:    "09:00",
			EndDate:      nextWeek,
			EndTime:      "17:00",
		},
		{
			Title:        "Dashboard shows stale numbers",
			Description:  "Report widgets lag roughly a day behind the raw data.",
			ProductID:    "orbit",
			Priority:     "medium",
			CustomerName: "Budi H",
			Source:       "email",
			StartDate:    today,
			StartTime:    "10:30",
			EndDate:      nextWeek,
			EndTime:      "12:00",
		},
		{
			Title:        "Cannot export monthly notes",
			Description:  "Export button spins forever on large workspaces.",
			ProductID:    "catatmak",
			Priority:     "low",
			CustomerName: "Sari W",
			Source:       "in_app",
			StartDate:    today,
			StartTime:    "13:00",
			EndDate:      nextWeek,
			EndTime:      "17:00",
		},
	}
}
