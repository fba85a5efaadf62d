package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk/internal/domain"
)

const ticketColumns = `id, code, title, description, product_id, priority, status,
               customer_name, customer_contact, source,
               start_date, start_time, end_date, end_time, created_at, updated_at`

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	GetByCode(ctx context.Context, code string) (*domain.Ticket, error)
	List(ctx context.Context) ([]domain.Ticket, error)
	ListSweepCandidates(ctx context.Context) ([]domain.Ticket, error)
	ClaimOverdue(ctx context.Context, id, endDate, endTime string) (bool, error)
	NextSequence(ctx context.Context, productID string) (int, error)
	CountAll(ctx context.Context) (int64, error)
	UpsertByCode(ctx context.Context, ticket *domain.Ticket) (bool, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (code, title, description, product_id, priority, status,
                             customer_name, customer_contact, source,
                             start_date, start_time, end_date, end_time)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.Code,
		ticket.Title,
		ticket.Description,
		ticket.ProductID,
		ticket.Priority,
		ticket.Status,
		ticket.CustomerName,
		ticket.CustomerContact,
		ticket.Source,
		ticket.StartDate,
		ticket.StartTime,
		ticket.EndDate,
		ticket.EndTime,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET title=$1, description=$2, product_id=$3, priority=$4, status=$5,
            customer_name=$6, customer_contact=$7, source=$8,
            start_date=$9, start_time=$10, end_date=$11, end_time=$12, updated_at=NOW()
        WHERE id=$13`
	cmd, err := r.pool.Exec(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.ProductID,
		ticket.Priority,
		ticket.Status,
		ticket.CustomerName,
		ticket.CustomerContact,
		ticket.Source,
		ticket.StartDate,
		ticket.StartTime,
		ticket.EndDate,
		ticket.EndTime,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM tickets WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	const query = `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *ticketRepository) GetByCode(ctx context.Context, code string) (*domain.Ticket, error) {
	const query = `SELECT ` + ticketColumns + ` FROM tickets WHERE code=$1`
	return r.fetchSingle(ctx, query, code)
}

func (r *ticketRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := scanTicket(r.pool.QueryRow(ctx, query, arg), &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) List(ctx context.Context) ([]domain.Ticket, error) {
	const query = `SELECT ` + ticketColumns + ` FROM tickets ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

// ListSweepCandidates returns non-terminal tickets with a schedule window
// set. Deadline parsing happens in the domain layer; the sweep flips rows
// through ClaimOverdue so concurrent sweepers cannot double-fire.
func (r *ticketRepository) ListSweepCandidates(ctx context.Context) ([]domain.Ticket, error) {
	const query = `SELECT ` + ticketColumns + ` FROM tickets
        WHERE status NOT IN ('OVERDUE', 'DONE', 'CLOSED') AND end_date <> ''`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

// ClaimOverdue flips a single ticket to OVERDUE. The status guard makes the
// transition exactly-once: a racing sweeper's update matches zero rows. The
// window columns are re-asserted so an update that rescheduled the ticket
// after the candidate scan wins over the sweep.
func (r *ticketRepository) ClaimOverdue(ctx context.Context, id, endDate, endTime string) (bool, error) {
	const query = `
        UPDATE tickets SET status='OVERDUE', updated_at=NOW()
        WHERE id=$1 AND status NOT IN ('OVERDUE', 'DONE', 'CLOSED')
          AND end_date=$2 AND end_time=$3`
	cmd, err := r.pool.Exec(ctx, query, id, endDate, endTime)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

// NextSequence atomically increments the per-product ticket counter.
func (r *ticketRepository) NextSequence(ctx context.Context, productID string) (int, error) {
	const query = `
        INSERT INTO ticket_sequences (product_id, value) VALUES ($1, 1)
        ON CONFLICT (product_id) DO UPDATE SET value = ticket_sequences.value + 1
        RETURNING value`
	var value int
	if err := r.pool.QueryRow(ctx, query, productID).Scan(&value); err != nil {
		return 0, err
	}
	return value, nil
}

func (r *ticketRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tickets`).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// UpsertByCode inserts the ticket or updates the existing row with the same
// code. Returns true when a new row was created.
func (r *ticketRepository) UpsertByCode(ctx context.Context, ticket *domain.Ticket) (bool, error) {
	const query = `
        INSERT INTO tickets (code, title, description, product_id, priority, status,
                             customer_name, customer_contact, source,
                             start_date, start_time, end_date, end_time)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
        ON CONFLICT (code) DO UPDATE SET
            title=EXCLUDED.title, description=EXCLUDED.description,
            product_id=EXCLUDED.product_id, priority=EXCLUDED.priority,
            status=EXCLUDED.status, customer_name=EXCLUDED.customer_name,
            customer_contact=EXCLUDED.customer_contact, source=EXCLUDED.source,
            start_date=EXCLUDED.start_date, start_time=EXCLUDED.start_time,
            end_date=EXCLUDED.end_date, end_time=EXCLUDED.end_time,
            updated_at=NOW()
        RETURNING id, created_at, updated_at, (created_at = updated_at)`
	var created bool
	if err := r.pool.QueryRow(ctx, query,
		ticket.Code,
		ticket.Title,
		ticket.Description,
		ticket.ProductID,
		ticket.Priority,
		ticket.Status,
		ticket.CustomerName,
		ticket.CustomerContact,
		ticket.Source,
		ticket.StartDate,
		ticket.StartTime,
		ticket.EndDate,
		ticket.EndTime,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt, &created); err != nil {
		return false, err
	}
	return created, nil
}

func scanTicket(row pgx.Row, ticket *domain.Ticket) error {
	return row.Scan(
		&ticket.ID,
		&ticket.Code,
		&ticket.Title,
		&ticket.Description,
		&ticket.ProductID,
		&ticket.Priority,
		&ticket.Status,
		&ticket.CustomerName,
		&ticket.CustomerContact,
		&ticket.Source,
		&ticket.StartDate,
		&ticket.StartTime,
		&ticket.EndDate,
		&ticket.EndTime,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	)
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := scanTicket(rows, &ticket); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
