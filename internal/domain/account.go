package domain

import (
	"strings"
	"time"
)

// Account is the owner of zero or more wallets. Accounts are created at
// signup and never deleted in-app.
type Account struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

// NormalizeEmail is applied both at signup and at recipient lookup so that
// equality is on the normalized form, backed by a unique index on the column.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsPlausibleEmail is the minimal syntactic check used for transfer
// recipients. It is deliberately weak: non-empty and contains "@". It says
// nothing about deliverability.
func IsPlausibleEmail(email string) bool {
	return email != "" && strings.Contains(email, "@")
}
