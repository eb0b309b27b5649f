package client

import (
	"strconv"

	"github.com/spec-kit/account-service/internal/validation"
)

// Form field names, matching the JSON names used on the wire.
const (
	FieldName            = "name"
	FieldEmail           = "email"
	FieldContactNumber   = "contactNumber"
	FieldPassword        = "password"
	FieldConfirmPassword = "confirmPassword"
	FieldTermsAccepted   = "termsAccepted"
)

type formKind int

const (
	signupForm formKind = iota
	loginForm
)

// FormState is an immutable snapshot of a form: field values plus the set of
// fields the user has touched. Every mutation returns a new FormState.
type FormState struct {
	kind    formKind
	values  map[string]string
	touched map[string]bool
}

// NewSignupFormState returns an empty signup form.
func NewSignupFormState() FormState {
	return newFormState(signupForm)
}

// NewLoginFormState returns an empty login form.
func NewLoginFormState() FormState {
	return newFormState(loginForm)
}

func newFormState(kind formKind) FormState {
	return FormState{kind: kind, values: map[string]string{}, touched: map[string]bool{}}
}

// Fields lists the form's fields in display order.
func (s FormState) Fields() []string {
	if s.kind == loginForm {
		return []string{FieldEmail, FieldPassword}
	}
	return []string{FieldName, FieldEmail, FieldContactNumber, FieldPassword, FieldConfirmPassword, FieldTermsAccepted}
}

// With returns a copy with field set to value and marked touched.
func (s FormState) With(field, value string) FormState {
	next := s.clone()
	next.values[field] = value
	next.touched[field] = true
	return next
}

// TouchAll returns a copy with every field marked touched, as on submit.
func (s FormState) TouchAll() FormState {
	next := s.clone()
	for _, f := range s.Fields() {
		next.touched[f] = true
	}
	return next
}

// Value returns the current value of field.
func (s FormState) Value(field string) string {
	return s.values[field]
}

// Touched reports whether field has been edited or the form submitted.
func (s FormState) Touched(field string) bool {
	return s.touched[field]
}

// Validate runs the shared field rules against the current values.
func (s FormState) Validate() validation.FieldErrors {
	if s.kind == loginForm {
		return validation.ValidateLogin(s.Login())
	}
	return validation.ValidateSignup(s.Signup())
}

// VisibleErrors returns the first message per touched field.
func (s FormState) VisibleErrors() map[string]string {
	out := map[string]string{}
	for _, fe := range s.Validate() {
		if !s.touched[fe.Field] {
			continue
		}
		if _, seen := out[fe.Field]; !seen {
			out[fe.Field] = fe.Message
		}
	}
	return out
}

// Signup converts the values to a signup payload.
func (s FormState) Signup() validation.SignupForm {
	accepted, _ := strconv.ParseBool(s.values[FieldTermsAccepted])
	return validation.SignupForm{
		Name:            s.values[FieldName],
		Email:           s.values[FieldEmail],
		ContactNumber:   s.values[FieldContactNumber],
		Password:        s.values[FieldPassword],
		ConfirmPassword: s.values[FieldConfirmPassword],
		TermsAccepted:   accepted,
	}
}

// Login converts the values to a login payload.
func (s FormState) Login() validation.LoginForm {
	return validation.LoginForm{
		Email:    s.values[FieldEmail],
		Password: s.values[FieldPassword],
	}
}

func (s FormState) clone() FormState {
	next := FormState{
		kind:    s.kind,
		values:  make(map[string]string, len(s.values)+1),
		touched: make(map[string]bool, len(s.touched)+1),
	}
	for k, v := range s.values {
		next.values[k] = v
	}
	for k, v := range s.touched {
		next.touched[k] = v
	}
	return next
}
