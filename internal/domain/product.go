package domain

import "time"

// Product is a tenant whose tickets are managed in isolation. The admin
// credential lives on the linked User; the product row mirrors only the
// admin email for cheap list reads.
type Product struct {
	ID          string
	Name        string
	Description string
	Icon        string
	AdminEmail  string
	AdminUserID *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasAdmin reports whether an admin account is linked.
func (p *Product) HasAdmin() bool {
	return p.AdminEmail != ""
}
