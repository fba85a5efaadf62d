package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/repository"
)

// recordingDispatcher captures published events for assertions.
type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

var _ events.Dispatcher = (*recordingDispatcher)(nil)

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) byType(eventType events.EventType) []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	var result []events.Event
	for _, event := range d.events {
		if event.Type == eventType {
			result = append(result, event)
		}
	}
	return result
}

func uniqueViolation() error {
	return &pgconn.PgError{Code: "23505"}
}

// fakeStore backs the in-memory repositories so cross-entity transactions
// behave like the real SQL ones.
type fakeStore struct {
	mu       sync.Mutex
	tickets  map[string]*domain.Ticket
	products map[string]*domain.Product
	users    map[string]*domain.User
	profiles map[string]*domain.Profile
	logs     []domain.PasswordLog
	seqs     map[string]int
	clock    time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		tickets:  make(map[string]*domain.Ticket),
		products: make(map[string]*domain.Product),
		users:    make(map[string]*domain.User),
		profiles: make(map[string]*domain.Profile),
		seqs:     make(map[string]int),
		clock:    time.Now(),
	}
}

// tick produces strictly increasing timestamps for creation ordering.
func (s *fakeStore) tick() time.Time {
	s.clock = s.clock.Add(time.Millisecond)
	return s.clock
}

func (s *fakeStore) userByEmail(email string) *domain.User {
	for _, user := range s.users {
		if strings.EqualFold(user.Email, email) {
			return user
		}
	}
	return nil
}

type fakeTicketRepo struct {
	store *fakeStore
}

var _ repository.TicketRepository = (*fakeTicketRepo)(nil)

func (r *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, existing := range r.store.tickets {
		if existing.Code == ticket.Code {
			return uniqueViolation()
		}
	}
	ticket.ID = uuid.NewString()
	ticket.CreatedAt = r.store.tick()
	ticket.UpdatedAt = ticket.CreatedAt
	copied := *ticket
	r.store.tickets[ticket.ID] = &copied
	return nil
}

func (r *fakeTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	ticket.UpdatedAt = r.store.tick()
	copied := *ticket
	r.store.tickets[ticket.ID] = &copied
	return nil
}

func (r *fakeTicketRepo) Delete(_ context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.tickets[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.store.tickets, id)
	return nil
}

func (r *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	ticket, ok := r.store.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *ticket
	return &copied, nil
}

func (r *fakeTicketRepo) GetByCode(_ context.Context, code string) (*domain.Ticket, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, ticket := range r.store.tickets {
		if ticket.Code == code {
			copied := *ticket
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeTicketRepo) List(_ context.Context) ([]domain.Ticket, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	result := make([]domain.Ticket, 0, len(r.store.tickets))
	for _, ticket := range r.store.tickets {
		result = append(result, *ticket)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *fakeTicketRepo) ListSweepCandidates(_ context.Context) ([]domain.Ticket, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var result []domain.Ticket
	for _, ticket := range r.store.tickets {
		if !ticket.Status.Terminal() && ticket.EndDate != "" {
			result = append(result, *ticket)
		}
	}
	return result, nil
}

func (r *fakeTicketRepo) ClaimOverdue(_ context.Context, id, endDate, endTime string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	ticket, ok := r.store.tickets[id]
	if !ok || ticket.Status.Terminal() || ticket.EndDate != endDate || ticket.EndTime != endTime {
		return false, nil
	}
	ticket.Status = domain.TicketStatusOverdue
	ticket.UpdatedAt = r.store.tick()
	return true, nil
}

func (r *fakeTicketRepo) NextSequence(_ context.Context, productID string) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.seqs[productID]++
	return r.store.seqs[productID], nil
}

func (r *fakeTicketRepo) CountAll(_ context.Context) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return int64(len(r.store.tickets)), nil
}

func (r *fakeTicketRepo) UpsertByCode(_ context.Context, ticket *domain.Ticket) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for id, existing := range r.store.tickets {
		if existing.Code == ticket.Code {
			ticket.ID = id
			ticket.CreatedAt = existing.CreatedAt
			ticket.UpdatedAt = r.store.tick()
			copied := *ticket
			r.store.tickets[id] = &copied
			return false, nil
		}
	}
	ticket.ID = uuid.NewString()
	ticket.CreatedAt = r.store.tick()
	ticket.UpdatedAt = ticket.CreatedAt
	copied := *ticket
	r.store.tickets[ticket.ID] = &copied
	return true, nil
}

type fakeProductRepo struct {
	store *fakeStore
	// adminLookups counts DeleteCascade admin-user searches, proving that
	// products without an admin email skip the lookup.
	adminLookups int
	// adminErr fails the admin leg of SaveWithAdmin; the product write must
	// roll back with it, like the SQL transaction does.
	adminErr error
}

var _ repository.ProductRepository = (*fakeProductRepo)(nil)

func (r *fakeProductRepo) List(_ context.Context) ([]domain.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	result := make([]domain.Product, 0, len(r.store.products))
	for _, product := range r.store.products {
		result = append(result, *product)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (r *fakeProductRepo) GetByID(_ context.Context, id string) (*domain.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	product, ok := r.store.products[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *product
	return &copied, nil
}

func (r *fakeProductRepo) Exists(_ context.Context, id string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	_, ok := r.store.products[id]
	return ok, nil
}

func (r *fakeProductRepo) SaveWithAdmin(_ context.Context, product *domain.Product, admin *domain.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	existing, ok := r.store.products[product.ID]
	if ok {
		product.CreatedAt = existing.CreatedAt
	} else {
		product.CreatedAt = r.store.tick()
	}
	product.UpdatedAt = r.store.tick()

	// The admin leg runs first so its failure leaves no product row behind,
	// matching the rollback of the real transaction.
	if admin != nil {
		if r.adminErr != nil {
			return r.adminErr
		}
		current := r.store.userByEmail(admin.Email)
		if current != nil {
			admin.ID = current.ID
			if admin.PasswordHash == "" {
				admin.PasswordHash = current.PasswordHash
			}
		} else {
			if admin.PasswordHash == "" {
				return repository.ErrAdminPasswordRequired
			}
			admin.ID = uuid.NewString()
		}
		copied := *admin
		r.store.users[admin.ID] = &copied
		product.AdminUserID = &admin.ID
	}

	copied := *product
	r.store.products[product.ID] = &copied
	return nil
}

func (r *fakeProductRepo) DeleteCascade(_ context.Context, id string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	product, ok := r.store.products[id]
	if !ok {
		return false, nil
	}
	if product.AdminEmail != "" {
		r.adminLookups++
		if user := r.store.userByEmail(product.AdminEmail); user != nil && user.Role == domain.RoleProductAdmin {
			delete(r.store.users, user.ID)
		}
	}
	delete(r.store.products, id)
	return true, nil
}

type fakeUserRepo struct {
	store *fakeStore
}

var _ repository.UserRepository = (*fakeUserRepo)(nil)

func (r *fakeUserRepo) List(_ context.Context) ([]domain.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	result := make([]domain.User, 0, len(r.store.users))
	for _, user := range r.store.users {
		result = append(result, *user)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	user, ok := r.store.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	user := r.store.userByEmail(email)
	if user == nil {
		return nil, pgx.ErrNoRows
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) SaveWithMirror(_ context.Context, user *domain.User) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if user.ID == "" {
		if r.store.userByEmail(user.Email) != nil {
			return false, uniqueViolation()
		}
		user.ID = uuid.NewString()
		user.CreatedAt = r.store.tick()
	} else if _, ok := r.store.users[user.ID]; !ok {
		return false, pgx.ErrNoRows
	}
	user.UpdatedAt = r.store.tick()
	copied := *user
	r.store.users[user.ID] = &copied

	if user.Role == domain.RoleProductAdmin && user.ProductID != nil {
		product, ok := r.store.products[*user.ProductID]
		if !ok {
			return false, nil
		}
		product.AdminEmail = user.Email
		product.AdminUserID = &user.ID
	}
	return true, nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.users[id]; !ok {
		return pgx.ErrNoRows
	}
	for _, product := range r.store.products {
		if product.AdminUserID != nil && *product.AdminUserID == id {
			product.AdminEmail = ""
			product.AdminUserID = nil
		}
	}
	delete(r.store.users, id)
	return nil
}

func (r *fakeUserRepo) ChangePasswordWithAudit(_ context.Context, user *domain.User, newHash string, log *domain.PasswordLog) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	stored, ok := r.store.users[user.ID]
	if !ok {
		return false, pgx.ErrNoRows
	}

	log.ID = uuid.NewString()
	log.CreatedAt = r.store.tick()
	r.store.logs = append(r.store.logs, *log)

	stored.PasswordHash = newHash
	stored.UpdatedAt = r.store.tick()

	if stored.Role == domain.RoleProductAdmin && stored.ProductID != nil {
		product, ok := r.store.products[*stored.ProductID]
		if !ok {
			return false, nil
		}
		product.AdminEmail = stored.Email
		product.AdminUserID = &stored.ID
	}
	return true, nil
}

type fakeProfileRepo struct {
	store *fakeStore
}

var _ repository.ProfileRepository = (*fakeProfileRepo)(nil)

func (r *fakeProfileRepo) GetByEmail(_ context.Context, email string) (*domain.Profile, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	profile, ok := r.store.profiles[strings.ToLower(email)]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *profile
	return &copied, nil
}

func (r *fakeProfileRepo) Upsert(_ context.Context, profile *domain.Profile) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	profile.UpdatedAt = r.store.tick()
	copied := *profile
	r.store.profiles[strings.ToLower(profile.Email)] = &copied
	return nil
}

type fakePasswordLogRepo struct {
	store *fakeStore
}

var _ repository.PasswordLogRepository = (*fakePasswordLogRepo)(nil)

func (r *fakePasswordLogRepo) List(_ context.Context, filter repository.PasswordLogFilter) ([]domain.PasswordLog, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var result []domain.PasswordLog
	for i := len(r.store.logs) - 1; i >= 0; i-- {
		entry := r.store.logs[i]
		if filter.Email != nil && !strings.EqualFold(entry.Email, *filter.Email) {
			continue
		}
		if filter.ProductID != nil && entry.ProductID != *filter.ProductID {
			continue
		}
		result = append(result, entry)
	}
	return result, nil
}
