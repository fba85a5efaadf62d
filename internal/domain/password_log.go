package domain

import "time"

// PasswordLog is an append-only audit row recorded before a credential
// change commits. Only bcrypt hashes are stored, never plaintext.
type PasswordLog struct {
	ID              string
	Email           string
	OldPasswordHash string
	NewPasswordHash string
	UpdatedBy       string
	ProductID       string
	ProductName     string
	CreatedAt       time.Time
}
