package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolationCode = "23505"

// ErrAdminPasswordRequired is returned when a product write names an admin
// email with no existing user and no password to provision one with. A blank
// password only ever means "keep the current hash".
var ErrAdminPasswordRequired = errors.New("admin password required for a new admin user")

// IsUniqueViolation reports whether the error is a Postgres unique
// constraint failure (duplicate product id, user email, or ticket code).
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}
