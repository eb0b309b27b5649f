// Package validation holds the field rules shared by the signup/login HTTP
// handlers and the client-side forms. Both sides must report identical
// messages, so the rules live in one place.
package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Rule names carried on FieldError.
const (
	RuleRequired  = "required"
	RuleEmail     = "email"
	RuleTenDigits = "tendigits"
	RuleMin       = "min"
	RuleMatch     = "eqfield"
	RuleAccepted  = "eq"
)

// SignupForm carries every signup field.
type SignupForm struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	ContactNumber   string `json:"contactNumber" validate:"required,tendigits"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
	TermsAccepted   bool   `json:"termsAccepted" validate:"eq=true"`
}

// LoginForm carries the login fields.
type LoginForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// FieldError is a single user-facing message bound to a form field.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// FieldErrors is ordered by form field order.
type FieldErrors []FieldError

// First returns the message for field, or "" when the field is valid.
func (fe FieldErrors) First(field string) string {
	for _, e := range fe {
		if e.Field == field {
			return e.Message
		}
	}
	return ""
}

// Without drops errors produced by rule.
func (fe FieldErrors) Without(rule string) FieldErrors {
	out := make(FieldErrors, 0, len(fe))
	for _, e := range fe {
		if e.Rule != rule {
			out = append(out, e)
		}
	}
	return out
}

// Map returns field -> message, suitable for error details.
func (fe FieldErrors) Map() map[string]any {
	out := make(map[string]any, len(fe))
	for _, e := range fe {
		out[e.Field] = e.Message
	}
	return out
}

var tenDigits = regexp.MustCompile(`^[0-9]{10}$`)

var messages = map[string]map[string]string{
	"name": {
		RuleRequired: "Name is required",
	},
	"email": {
		RuleRequired: "Email is required",
		RuleEmail:    "Invalid email address",
	},
	"contactNumber": {
		RuleRequired:  "Contact number is required",
		RuleTenDigits: "Must be a valid 10-digit phone number",
	},
	"password": {
		RuleRequired: "Password is required",
		RuleMin:      "Password must be at least 6 characters",
	},
	"confirmPassword": {
		RuleRequired: "Confirm Password is required",
		RuleMatch:    "Passwords must match",
	},
	"termsAccepted": {
		RuleAccepted: "You must accept the Terms of Service",
	},
}

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
		_ = v.RegisterValidation(RuleTenDigits, func(fl validator.FieldLevel) bool {
			return tenDigits.MatchString(fl.Field().String())
		})
		validate = v
	})
	return validate
}

// ValidateSignup checks every signup rule.
func ValidateSignup(form SignupForm) FieldErrors {
	return run(form)
}

// ValidateLogin checks the login rules.
func ValidateLogin(form LoginForm) FieldErrors {
	return run(form)
}

// IsTenDigits reports whether s is exactly ten ASCII digits.
func IsTenDigits(s string) bool {
	return tenDigits.MatchString(s)
}

func run(form any) FieldErrors {
	err := instance().Struct(form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return FieldErrors{{Field: "", Rule: "invalid", Message: err.Error()}}
	}
	out := make(FieldErrors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{
			Field:   fe.Field(),
			Rule:    fe.Tag(),
			Message: message(fe.Field(), fe.Tag()),
		})
	}
	return out
}

func message(field, rule string) string {
	if msg, ok := messages[field][rule]; ok {
		return msg
	}
	return field + " is invalid"
}
