package entity

import (
	"time"
)

// Account is the aggregate root for the account domain.
// Password is kept exactly as submitted on creation.
//
// Rows are never removed; Active=false marks a soft-deleted account.
type Account struct {
	ID        int64
	Name      string
	Email     string
	Password  string
	BirthDate Date
	Phone     *string
	Active    bool
	CreatedAt time.Time
	UpdatedAt *time.Time
}

// Clone returns a deep copy so callers can mutate it without touching stored state.
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	c := *a
	if a.Phone != nil {
		p := *a.Phone
		c.Phone = &p
	}
	if a.UpdatedAt != nil {
		u := *a.UpdatedAt
		c.UpdatedAt = &u
	}
	return &c
}
