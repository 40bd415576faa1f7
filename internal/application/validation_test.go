package application

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/user-accounts/internal/domain/entity"
	"github.com/oksasatya/user-accounts/pkg/validation"
)

var today = time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return today }

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func validCreate() CreatePayload {
	return CreatePayload{
		Name:      "Ana Silva",
		Email:     "ana@example.com",
		Password:  "secret",
		BirthDate: entity.NewDate(1990, time.May, 20),
		Phone:     strPtr("(11) 91234-5678"),
	}
}

func validUpdate() UpdatePayload {
	return UpdatePayload{
		Name:      "Ana Souza",
		Email:     "ana@example.com",
		BirthDate: entity.NewDate(1990, time.May, 20),
		Active:    boolPtr(true),
	}
}

func fieldMessages(errs []validation.FieldError) map[string]string {
	out := map[string]string{}
	for _, e := range errs {
		out[e.Field] = e.Message
	}
	return out
}

func TestValidateCreateAcceptsValidPayload(t *testing.T) {
	v := NewValidator(fixedClock)
	assert.Empty(t, v.ValidateCreate(validCreate()))
}

func TestValidateCreateCollectsEveryViolation(t *testing.T) {
	v := NewValidator(fixedClock)
	p := CreatePayload{
		Name:      "Al",
		Email:     "not-an-email",
		BirthDate: entity.NewDate(2010, time.January, 1),
		Phone:     strPtr("abcdef"),
	}

	got := fieldMessages(v.ValidateCreate(p))
	assert.Equal(t, map[string]string{
		"name":      "must be at least 3 characters long",
		"email":     "must be a valid email",
		"password":  "is required",
		"birthDate": "must be at least 18 years old",
		"phone":     "must match (XX) XXXXX-XXXX",
	}, got)
}

func TestValidateCreateRequiredFields(t *testing.T) {
	v := NewValidator(fixedClock)
	got := fieldMessages(v.ValidateCreate(CreatePayload{Name: "   "}))
	assert.Equal(t, "is required", got["name"])
	assert.Equal(t, "is required", got["email"])
	assert.Equal(t, "is required", got["birthDate"])
	assert.NotContains(t, got, "phone")
}

func TestValidateNameLength(t *testing.T) {
	v := NewValidator(fixedClock)

	p := validCreate()
	p.Name = "Ana"
	assert.Empty(t, v.ValidateCreate(p))

	long := make([]byte, 101)
	for i := range long {
		long[i] = 'a'
	}
	p.Name = string(long)
	assert.Equal(t, "must be at most 100 characters long", fieldMessages(v.ValidateCreate(p))["name"])

	p.Name = string(long[:100])
	assert.Empty(t, v.ValidateCreate(p))
}

func TestValidateAgeBoundary(t *testing.T) {
	v := NewValidator(fixedClock)

	p := validCreate()
	p.BirthDate = entity.NewDate(2006, time.June, 15)
	assert.Empty(t, v.ValidateCreate(p), "turns 18 today")

	p.BirthDate = entity.NewDate(2006, time.June, 16)
	assert.Equal(t, "must be at least 18 years old", fieldMessages(v.ValidateCreate(p))["birthDate"])
}

func TestAge(t *testing.T) {
	cases := []struct {
		birth entity.Date
		today time.Time
		want  int
	}{
		{entity.NewDate(1990, time.May, 20), today, 34},
		{entity.NewDate(2006, time.June, 15), today, 18},
		{entity.NewDate(2006, time.June, 16), today, 17},
		{entity.NewDate(2000, time.February, 29), time.Date(2018, time.February, 28, 0, 0, 0, 0, time.UTC), 17},
		{entity.NewDate(2000, time.February, 29), time.Date(2018, time.March, 1, 0, 0, 0, 0, time.UTC), 18},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Age(tc.birth, tc.today), tc.birth.String())
	}
}

func TestValidatePhone(t *testing.T) {
	v := NewValidator(fixedClock)
	for _, phone := range []string{"(11) 91234-5678", "11912345678", "+55 11 91234-5678", "1234-5678", "(11) 1234-5678"} {
		p := validCreate()
		p.Phone = strPtr(phone)
		assert.Empty(t, v.ValidateCreate(p), phone)
	}
	for _, phone := range []string{"abcdef", "123", "(11) 91234-56789"} {
		p := validCreate()
		p.Phone = strPtr(phone)
		assert.Equal(t, "must match (XX) XXXXX-XXXX", fieldMessages(v.ValidateCreate(p))["phone"], phone)
	}
}

func TestValidatePhoneAbsentOrBlank(t *testing.T) {
	v := NewValidator(fixedClock)

	p := validCreate()
	p.Phone = nil
	assert.Empty(t, v.ValidateCreate(p))

	p.Phone = strPtr("   ")
	assert.Empty(t, v.ValidateCreate(p))
}

func TestValidateUpdate(t *testing.T) {
	v := NewValidator(fixedClock)
	require.Empty(t, v.ValidateUpdate(validUpdate()))

	p := validUpdate()
	p.Active = boolPtr(false)
	assert.Empty(t, v.ValidateUpdate(p), "false is a value")

	p.Active = nil
	assert.Equal(t, "is required", fieldMessages(v.ValidateUpdate(p))["active"])
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Fields: []validation.FieldError{
		{Field: "name", Message: "is required"},
		{Field: "email", Message: "must be a valid email"},
	}}
	assert.Equal(t, "validation failed: name: is required; email: must be a valid email", err.Error())
}
