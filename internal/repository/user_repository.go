package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk/internal/domain"
)

const userColumns = `id, email, password_hash, name, role, product_id, created_at, updated_at`

// UserRepository encapsulates user persistence, including the reverse
// product-mirror synchronization and the audited password change.
type UserRepository interface {
	List(ctx context.Context) ([]domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// SaveWithMirror upserts the user and, for product admins, refreshes the
	// owning product's admin mirror in the same transaction. The returned
	// flag is false when the referenced product row does not exist.
	SaveWithMirror(ctx context.Context, user *domain.User) (bool, error)
	// Delete removes the user and clears any product admin mirror pointing
	// at it.
	Delete(ctx context.Context, id string) error
	// ChangePasswordWithAudit appends the audit row and commits the new hash
	// atomically, then refreshes the product mirror. The returned flag is
	// false when the user is a product admin whose product row is missing;
	// the credential change is committed regardless.
	ChangePasswordWithAudit(ctx context.Context, user *domain.User, newHash string, log *domain.PasswordLog) (bool, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) List(ctx context.Context) ([]domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.User
	for rows.Next() {
		var user domain.User
		if err := scanUser(rows, &user); err != nil {
			return nil, err
		}
		result = append(result, user)
	}
	return result, rows.Err()
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	var user domain.User
	if err := scanUser(r.pool.QueryRow(ctx, query, id), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE LOWER(email)=LOWER($1)`
	var user domain.User
	if err := scanUser(r.pool.QueryRow(ctx, query, email), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) SaveWithMirror(ctx context.Context, user *domain.User) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if user.ID == "" {
		const insert = `
            INSERT INTO users (email, password_hash, name, role, product_id)
            VALUES ($1,$2,$3,$4,$5)
            RETURNING id, created_at, updated_at`
		if err := tx.QueryRow(ctx, insert,
			user.Email, user.PasswordHash, user.Name, user.Role, user.ProductID,
		).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return false, err
		}
	} else {
		const update = `
            UPDATE users SET email=$1, password_hash=$2, name=$3, role=$4, product_id=$5, updated_at=NOW()
            WHERE id=$6`
		cmd, err := tx.Exec(ctx, update,
			user.Email, user.PasswordHash, user.Name, user.Role, user.ProductID, user.ID)
		if err != nil {
			return false, err
		}
		if cmd.RowsAffected() == 0 {
			return false, pgx.ErrNoRows
		}
	}

	mirrored := true
	if user.Role == domain.RoleProductAdmin && user.ProductID != nil {
		const mirror = `UPDATE products SET admin_email=$1, admin_user_id=$2, updated_at=NOW() WHERE id=$3`
		cmd, err := tx.Exec(ctx, mirror, user.Email, user.ID, *user.ProductID)
		if err != nil {
			return false, err
		}
		mirrored = cmd.RowsAffected() > 0
	}

	return mirrored, tx.Commit(ctx)
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx,
		`UPDATE products SET admin_email='', admin_user_id=NULL WHERE admin_user_id=$1`, id); err != nil {
		return err
	}

	cmd, err := tx.Exec(ctx, `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return tx.Commit(ctx)
}

func (r *userRepository) ChangePasswordWithAudit(ctx context.Context, user *domain.User, newHash string, log *domain.PasswordLog) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	// Audit row first: the credential change never commits without it.
	const insertLog = `
        INSERT INTO password_logs (email, old_password_hash, new_password_hash, updated_by, product_id, product_name)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`
	if err := tx.QueryRow(ctx, insertLog,
		log.Email,
		log.OldPasswordHash,
		log.NewPasswordHash,
		log.UpdatedBy,
		log.ProductID,
		log.ProductName,
	).Scan(&log.ID, &log.CreatedAt); err != nil {
		return false, err
	}

	cmd, err := tx.Exec(ctx, `UPDATE users SET password_hash=$1, updated_at=NOW() WHERE id=$2`, newHash, user.ID)
	if err != nil {
		return false, err
	}
	if cmd.RowsAffected() == 0 {
		return false, pgx.ErrNoRows
	}

	mirrored := true
	if user.Role == domain.RoleProductAdmin && user.ProductID != nil {
		const mirror = `UPDATE products SET admin_email=$1, admin_user_id=$2, updated_at=NOW() WHERE id=$3`
		mirrorCmd, err := tx.Exec(ctx, mirror, user.Email, user.ID, *user.ProductID)
		if err != nil {
			return false, err
		}
		mirrored = mirrorCmd.RowsAffected() > 0
	}

	return mirrored, tx.Commit(ctx)
}

func scanUser(row pgx.Row, user *domain.User) error {
	return row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Name,
		&user.Role,
		&user.ProductID,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
}
