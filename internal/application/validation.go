package application

import (
	"reflect"
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/oksasatya/user-accounts/internal/domain/entity"
	"github.com/oksasatya/user-accounts/pkg/validation"
)

// MinimumAge is the youngest age allowed to hold an account.
const MinimumAge = 18

// Optional +55 country code, optional area code, optional leading 9, 4 digits, separator, 4 digits.
var phonePattern = regexp.MustCompile(`^(\+55\s?)?(\(?\d{2}\)?\s?)?9?\d{4}-?\s?\d{4}$`)

func init() {
	validation.RegisterMessage("adult", "must be at least 18 years old")
	validation.RegisterMessage("phone_br", "must match (XX) XXXXX-XXXX")
}

// Validator checks create and update payloads. It performs no I/O.
type Validator struct {
	v   *validator.Validate
	now func() time.Time
}

// NewValidator builds a Validator; now defaults to time.Now.
func NewValidator(now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}
	val := &Validator{v: validation.New(), now: now}
	val.v.RegisterCustomTypeFunc(dateValue, entity.Date{})
	_ = val.v.RegisterValidation("adult", val.isAdult)
	_ = val.v.RegisterValidation("phone_br", isPhone)
	return val
}

// ValidateCreate returns every violation of p, or nil when p is valid.
func (val *Validator) ValidateCreate(p CreatePayload) []validation.FieldError {
	return validation.ToDetails(val.v.Struct(p.trimmed()))
}

// ValidateUpdate returns every violation of p, or nil when p is valid.
func (val *Validator) ValidateUpdate(p UpdatePayload) []validation.FieldError {
	return validation.ToDetails(val.v.Struct(p.trimmed()))
}

// Age counts full years between birth and today.
func Age(birth entity.Date, today time.Time) int {
	y, m, d := today.Date()
	age := y - birth.Year()
	if m < birth.Month() || (m == birth.Month() && d < birth.Day()) {
		age--
	}
	return age
}

func (val *Validator) isAdult(fl validator.FieldLevel) bool {
	t, ok := fl.Field().Interface().(time.Time)
	if !ok {
		return false
	}
	return Age(entity.DateOf(t), val.now()) >= MinimumAge
}

func isPhone(fl validator.FieldLevel) bool {
	return phonePattern.MatchString(fl.Field().String())
}

func dateValue(field reflect.Value) interface{} {
	if d, ok := field.Interface().(entity.Date); ok {
		return d.Time
	}
	return nil
}
