package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk/internal/domain"
)

const productColumns = `id, name, description, icon, admin_email, admin_user_id, created_at, updated_at`

// ProductRepository encapsulates product persistence, including the
// transactional admin-user synchronization.
type ProductRepository interface {
	List(ctx context.Context) ([]domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	Exists(ctx context.Context, id string) (bool, error)
	// SaveWithAdmin persists the product and its admin user in one
	// transaction. A nil admin writes only the product row.
	SaveWithAdmin(ctx context.Context, product *domain.Product, admin *domain.User) error
	// DeleteCascade removes the product and its linked admin user. Returns
	// false when no product row matched. Missing admin users are not an
	// error.
	DeleteCascade(ctx context.Context, id string) (bool, error)
}

type productRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository instantiates repository.
func NewProductRepository(pool *pgxpool.Pool) ProductRepository {
	return &productRepository{pool: pool}
}

func (r *productRepository) List(ctx context.Context) ([]domain.Product, error) {
	const query = `SELECT ` + productColumns + ` FROM products ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		var product domain.Product
		if err := scanProduct(rows, &product); err != nil {
			return nil, err
		}
		result = append(result, product)
	}
	return result, rows.Err()
}

func (r *productRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	const query = `SELECT ` + productColumns + ` FROM products WHERE id=$1`
	var product domain.Product
	if err := scanProduct(r.pool.QueryRow(ctx, query, id), &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id=$1)`, id).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *productRepository) SaveWithAdmin(ctx context.Context, product *domain.Product, admin *domain.User) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const upsertProduct = `
        INSERT INTO products (id, name, description, icon, admin_email)
        VALUES ($1,$2,$3,$4,$5)
        ON CONFLICT (id) DO UPDATE SET
            name=EXCLUDED.name, description=EXCLUDED.description,
            icon=EXCLUDED.icon, admin_email=EXCLUDED.admin_email, updated_at=NOW()
        RETURNING created_at, updated_at`
	if err := tx.QueryRow(ctx, upsertProduct,
		product.ID,
		product.Name,
		product.Description,
		product.Icon,
		product.AdminEmail,
	).Scan(&product.CreatedAt, &product.UpdatedAt); err != nil {
		return err
	}

	if admin != nil {
		if admin.PasswordHash == "" {
			var exists bool
			if err := tx.QueryRow(ctx,
				`SELECT EXISTS (SELECT 1 FROM users WHERE LOWER(email)=LOWER($1))`,
				admin.Email).Scan(&exists); err != nil {
				return err
			}
			if !exists {
				return ErrAdminPasswordRequired
			}
		}

		const upsertAdmin = `
            INSERT INTO users (email, password_hash, name, role, product_id)
            VALUES ($1,$2,$3,$4,$5)
            ON CONFLICT (email) DO UPDATE SET
                password_hash=CASE WHEN EXCLUDED.password_hash <> '' THEN EXCLUDED.password_hash
                                   ELSE users.password_hash END,
                name=EXCLUDED.name, role=EXCLUDED.role,
                product_id=EXCLUDED.product_id, updated_at=NOW()
            RETURNING id`
		if err := tx.QueryRow(ctx, upsertAdmin,
			admin.Email,
			admin.PasswordHash,
			admin.Name,
			admin.Role,
			admin.ProductID,
		).Scan(&admin.ID); err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, `UPDATE products SET admin_user_id=$1 WHERE id=$2`, admin.ID, product.ID); err != nil {
			return err
		}
		product.AdminUserID = &admin.ID
	}

	return tx.Commit(ctx)
}

func (r *productRepository) DeleteCascade(ctx context.Context, id string) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var adminEmail string
	if err := tx.QueryRow(ctx, `SELECT admin_email FROM products WHERE id=$1`, id).Scan(&adminEmail); err != nil {
		if err == pgx.ErrNoRows {
			return false, nil
		}
		return false, err
	}

	if adminEmail != "" {
		if _, err := tx.Exec(ctx, `DELETE FROM users WHERE LOWER(email)=LOWER($1) AND role=$2`,
			adminEmail, domain.RoleProductAdmin); err != nil {
			return false, err
		}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM products WHERE id=$1`, id); err != nil {
		return false, err
	}

	return true, tx.Commit(ctx)
}

func scanProduct(row pgx.Row, product *domain.Product) error {
	return row.Scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&product.Icon,
		&product.AdminEmail,
		&product.AdminUserID,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
}
