package domain

import "time"

// Profile holds cosmetic display settings keyed by email, decoupled from
// the auth records.
type Profile struct {
	Email       string
	DisplayName string
	Avatar      string
	UpdatedAt   time.Time
}
