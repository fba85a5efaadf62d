package domain

import (
	"fmt"
	"strings"
	"time"
)

// UserRole scopes what a user can see.
type UserRole string

const (
	// RoleSuperAdmin has global visibility across all products.
	RoleSuperAdmin UserRole = "SUPER_ADMIN"
	// RoleProductAdmin is scoped to a single product's tickets.
	RoleProductAdmin UserRole = "PRODUCT_ADMIN"
)

// ParseUserRole normalizes a role value.
func ParseUserRole(raw string) (UserRole, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "SUPER_ADMIN":
		return RoleSuperAdmin, nil
	case "PRODUCT_ADMIN":
		return RoleProductAdmin, nil
	}
	return "", fmt.Errorf("unknown user role %q", raw)
}

// User is the single source of truth for admin identities and credentials.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	Role         UserRole
	ProductID    *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
