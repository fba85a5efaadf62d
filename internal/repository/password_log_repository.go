package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// PasswordLogFilter narrows audit queries.
type PasswordLogFilter struct {
	Email     *string
	ProductID *string
	Limit     int
}

// PasswordLogRepository reads the append-only audit trail. Rows are written
// only through UserRepository.ChangePasswordWithAudit; there is no update or
// delete path.
type PasswordLogRepository interface {
	List(ctx context.Context, filter PasswordLogFilter) ([]domain.PasswordLog, error)
}

type passwordLogRepository struct {
	pool *pgxpool.Pool
}

// NewPasswordLogRepository instantiates repository.
func NewPasswordLogRepository(pool *pgxpool.Pool) PasswordLogRepository {
	return &passwordLogRepository{pool: pool}
}

func (r *passwordLogRepository) List(ctx context.Context, filter PasswordLogFilter) ([]domain.PasswordLog, error) {
	base := `SELECT id, email, old_password_hash, new_password_hash, updated_by, product_id, product_name, created_at
             FROM password_logs`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Email != nil {
		args = append(args, *filter.Email)
		clauses = append(clauses, fmt.Sprintf("LOWER(email)=LOWER($%d)", len(args)))
	}
	if filter.ProductID != nil {
		args = append(args, *filter.ProductID)
		clauses = append(clauses, fmt.Sprintf("product_id=$%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY created_at DESC LIMIT %d`,
		base, strings.Join(clauses, " AND "), limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.PasswordLog
	for rows.Next() {
		var entry domain.PasswordLog
		if err := rows.Scan(
			&entry.ID,
			&entry.Email,
			&entry.OldPasswordHash,
			&entry.NewPasswordHash,
			&entry.UpdatedBy,
			&entry.ProductID,
			&entry.ProductName,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
