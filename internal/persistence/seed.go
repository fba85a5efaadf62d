package persistence

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/domain"
)

// defaultAccount is a bootstrap credential provisioned at startup so the
// deployment always has at least one working admin login.
type defaultAccount struct {
	Email     string
	Password  string
	Name      string
	Role      domain.UserRole
	ProductID string
}

var defaultAccounts = []defaultAccount{
	{Email: "superadmin@helpdesk.local", Password: "ChangeMe123!", Name: "Super Admin", Role: domain.RoleSuperAdmin},
	{Email: "admin@joki.helpdesk.local", Password: "ChangeMe123!", Name: "Joki Admin", Role: domain.RoleProductAdmin, ProductID: "joki"},
	{Email: "admin@orbit.helpdesk.local", Password: "ChangeMe123!", Name: "Orbit Admin", Role: domain.RoleProductAdmin, ProductID: "orbit"},
	{Email: "admin@catatmak.helpdesk.local", Password: "ChangeMe123!", Name: "Catatmak Admin", Role: domain.RoleProductAdmin, ProductID: "catatmak"},
}

// SeedDefaultUsers provisions the bootstrap accounts once. Existing emails
// are left untouched, so the step is safe to run on every start. This
// replaces the old login-path lazy provisioning.
func SeedDefaultUsers(ctx context.Context, pool *pgxpool.Pool, bcryptCost int, logger *zap.Logger) error {
	if pool == nil {
		logger.Warn("no postgres pool available; skipping default user seed")
		return nil
	}

	const query = `
        INSERT INTO users (email, password_hash, name, role, product_id)
        VALUES ($1, $2, $3, $4, NULLIF($5, ''))
        ON CONFLICT (email) DO NOTHING`

	seeded := 0
	for _, account := range defaultAccounts {
		hash, err := auth.HashPassword(account.Password, bcryptCost)
		if err != nil {
			return fmt.Errorf("hash bootstrap password for %s: %w", account.Email, err)
		}
		cmd, err := pool.Exec(ctx, query, account.Email, hash, account.Name, account.Role, account.ProductID)
		if err != nil {
			return fmt.Errorf("seed user %s: %w", account.Email, err)
		}
		seeded += int(cmd.RowsAffected())
	}

	logger.Info("default users seeded", zap.Int("created", seeded), zap.Int("total", len(defaultAccounts)))
	return nil
}
