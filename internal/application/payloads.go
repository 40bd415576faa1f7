package application

import (
	"strings"
	"time"

	"github.com/oksasatya/user-accounts/internal/domain/entity"
)

// CreatePayload is the input of the create workflow.
type CreatePayload struct {
	Name      string      `json:"name" validate:"required,min=3,max=100"`
	Email     string      `json:"email" validate:"required,email"`
	Password  string      `json:"password" validate:"required"`
	BirthDate entity.Date `json:"birthDate" validate:"required,adult"`
	Phone     *string     `json:"phone" validate:"omitempty,phone_br"`
}

// UpdatePayload is the input of the update workflow. Password cannot be changed here.
type UpdatePayload struct {
	Name      string      `json:"name" validate:"required,min=3,max=100"`
	Email     string      `json:"email" validate:"required,email"`
	BirthDate entity.Date `json:"birthDate" validate:"required,adult"`
	Phone     *string     `json:"phone" validate:"omitempty,phone_br"`
	Active    *bool       `json:"active" validate:"required"`
}

// AccountView is the read model returned to callers.
// Password and UpdatedAt are deliberately absent.
type AccountView struct {
	ID        int64       `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	BirthDate entity.Date `json:"birthDate"`
	Phone     *string     `json:"phone"`
	Active    bool        `json:"active"`
	CreatedAt time.Time   `json:"createdAt"`
}

func toView(a *entity.Account) AccountView {
	return AccountView{
		ID:        a.ID,
		Name:      a.Name,
		Email:     a.Email,
		BirthDate: a.BirthDate,
		Phone:     a.Phone,
		Active:    a.Active,
		CreatedAt: a.CreatedAt,
	}
}

// NormalizeEmail lowercases and trims an email before storage or comparison.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// trimPhone trims the phone number; blank values become nil.
func trimPhone(p *string) *string {
	if p == nil {
		return nil
	}
	t := strings.TrimSpace(*p)
	if t == "" {
		return nil
	}
	return &t
}

func (p CreatePayload) trimmed() CreatePayload {
	p.Name = strings.TrimSpace(p.Name)
	p.Email = strings.TrimSpace(p.Email)
	p.Phone = trimPhone(p.Phone)
	return p
}

func (p UpdatePayload) trimmed() UpdatePayload {
	p.Name = strings.TrimSpace(p.Name)
	p.Email = strings.TrimSpace(p.Email)
	p.Phone = trimPhone(p.Phone)
	return p
}
